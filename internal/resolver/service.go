package resolver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"slate/internal/config"
	"slate/internal/events"
	"slate/internal/logging"
	"slate/internal/pathspec"
	"slate/internal/store"
)

// Request names the coordinates of one forward resolution.
type Request struct {
	Studio     string
	EntityType pathspec.EntityType
	DataType   pathspec.DataType
	Project    string
	EntityName string
	Extras     map[string]any
}

// Service resolves, analyzes, and converts pipeline paths against the
// studio mappings in the store.
type Service struct {
	store         store.Store
	bus           events.Publisher
	logger        *slog.Logger
	projectRoot   string
	defaultStudio string

	mu       sync.Mutex
	patterns map[string]*regexp.Regexp
}

// New builds a resolver service. bus may be nil when no event delivery
// is wanted.
func New(cfg *config.Config, st store.Store, bus events.Publisher, logger *slog.Logger) *Service {
	if logger == nil {
		logger = logging.NewNop()
	}
	svc := &Service{
		store:    st,
		bus:      bus,
		logger:   logging.WithComponent(logger, "resolver"),
		patterns: make(map[string]*regexp.Regexp),
	}
	if cfg != nil {
		svc.projectRoot = cfg.Paths.ProjectRoot
		svc.defaultStudio = cfg.Resolver.DefaultStudio
	}
	return svc
}

// Path formats the template mapped to the request's (entity type, data
// type) pair. The configured project root, PROJECT, and the entity name
// bindings are merged under the caller's extras, so an extra can
// override any of them.
func (s *Service) Path(ctx context.Context, req Request) (string, error) {
	studio, mapping, err := s.loadMapping(ctx, req.Studio)
	if err != nil {
		return "", err
	}

	tmpl := mapping.TemplateFor(req.EntityType, req.DataType)
	if tmpl == nil {
		return "", &pathspec.PathResolutionError{
			EntityType: string(req.EntityType),
			DataType:   string(req.DataType),
			Reason:     fmt.Sprintf("studio %q has no template for this combination", studio),
		}
	}

	bindings := s.bindings(req)
	path, err := tmpl.FormatEffective(bindings)
	if err != nil {
		return "", &pathspec.PathResolutionError{
			EntityType: string(req.EntityType),
			DataType:   string(req.DataType),
			Reason:     err.Error(),
			Err:        err,
		}
	}

	s.logger.Debug("resolved path",
		slog.String("studio", studio),
		slog.String("entity_type", string(req.EntityType)),
		slog.String("data_type", string(req.DataType)),
		slog.String("path", path))
	s.publish(events.PathResolved{
		Meta:       events.NewMeta(),
		Studio:     studio,
		EntityType: string(req.EntityType),
		DataType:   string(req.DataType),
		EntityName: req.EntityName,
		Path:       path,
		Bindings:   bindings,
	})
	return path, nil
}

// CreateFolders resolves the request and materializes the directory on
// disk, anchored at the configured project root when one is set. A path
// already under the root (the root was bound as PROJECT) is used as-is.
// The created absolute path is returned.
func (s *Service) CreateFolders(ctx context.Context, req Request) (string, error) {
	path, err := s.Path(ctx, req)
	if err != nil {
		return "", err
	}

	target := path
	if s.projectRoot != "" && !strings.HasPrefix(path, s.projectRoot) {
		target = filepath.Join(s.projectRoot, strings.TrimPrefix(path, "/"))
	}
	if err := os.MkdirAll(target, 0o755); err != nil {
		return "", fmt.Errorf("create folders %q: %w", target, err)
	}

	studio := req.Studio
	if studio == "" {
		studio = s.defaultStudio
	}
	s.logger.Info("created folders", slog.String("path", target))
	s.publish(events.FoldersCreated{Meta: events.NewMeta(), Studio: studio, Path: target})
	return target, nil
}

func (s *Service) bindings(req Request) map[string]any {
	merged := make(map[string]any, len(req.Extras)+4)
	if s.projectRoot != "" {
		merged["PROJECT"] = s.projectRoot
	}
	if req.Project != "" {
		merged["PROJECT"] = req.Project
	}
	if req.EntityName != "" {
		merged["ENTITY_NAME"] = req.EntityName
		switch req.EntityType {
		case pathspec.EntityAsset:
			merged["ASSET_NAME"] = req.EntityName
		case pathspec.EntityShot:
			merged["SHOT_NAME"] = req.EntityName
		}
	}
	for name, value := range req.Extras {
		merged[name] = value
	}
	return merged
}

func (s *Service) loadMapping(ctx context.Context, studio string) (string, *pathspec.Mapping, error) {
	if studio == "" {
		studio = s.defaultStudio
	}
	if studio == "" {
		return "", nil, &pathspec.ContextError{Message: "no studio given and no default studio configured"}
	}
	mapping, err := s.store.LoadMapping(ctx, studio)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", nil, fmt.Errorf("studio mapping %q not found", studio)
		}
		return "", nil, err
	}
	return studio, mapping, nil
}

func (s *Service) publish(event events.Event) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(event)
}
