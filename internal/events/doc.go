// Package events carries domain events raised by template, mapping, and
// resolver operations.
//
// Publication is synchronous and in-process: handlers run on the
// publishing goroutine, in subscription order, and a panicking handler is
// recovered and logged so one misbehaving subscriber cannot take down the
// operation that raised the event. All workflow code depends only on the
// small Publisher interface, so callers that do not care about events can
// pass a nil bus.
package events
