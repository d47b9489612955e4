package events

import (
	"log/slog"
	"sync"
)

// Publisher is the event surface exposed to services. A nil *Bus is a
// valid Publisher that drops every event.
type Publisher interface {
	Publish(event Event)
}

// Handler receives published events.
type Handler func(event Event)

// Bus is a synchronous in-process event bus. Handlers run on the
// publishing goroutine in subscription order.
type Bus struct {
	mu       sync.RWMutex
	handlers []Handler
	logger   *slog.Logger
}

// NewBus builds a bus that logs handler panics through logger. A nil
// logger falls back to slog.Default.
func NewBus(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{logger: logger}
}

// Subscribe registers a handler for all subsequent events.
func (b *Bus) Subscribe(handler Handler) {
	if b == nil || handler == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, handler)
}

// Publish delivers the event to every subscriber. A panicking handler is
// recovered and logged; remaining handlers still run.
func (b *Bus) Publish(event Event) {
	if b == nil || event == nil {
		return
	}
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers))
	copy(handlers, b.handlers)
	b.mu.RUnlock()

	for _, handler := range handlers {
		b.deliver(handler, event)
	}
}

func (b *Bus) deliver(handler Handler, event Event) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("event handler panicked",
				slog.String("event", event.Kind()),
				slog.Any("panic", r))
		}
	}()
	handler(event)
}
