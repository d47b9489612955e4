package resolver

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"

	"slate/internal/events"
	"slate/internal/pathspec"
)

// Match is the result of a successful backward analysis: the slot that
// produced the path and the variable values extracted from it.
type Match struct {
	Studio     string
	EntityType pathspec.EntityType
	DataType   pathspec.DataType
	Template   string
	Variables  map[string]string
}

var escapedPlaceholder = regexp.MustCompile(`\\\{([A-Z][A-Z0-9_]*)\\\}`)

// Analyze probes the studio's populated slots in their fixed order and
// returns the first whose template matches the whole path. A path that
// matches no slot returns ok=false with no error.
func (s *Service) Analyze(ctx context.Context, studio, path string) (Match, bool, error) {
	studio, mapping, err := s.loadMapping(ctx, studio)
	if err != nil {
		return Match{}, false, err
	}

	for _, slot := range mapping.AnalysisSlots() {
		re, err := s.slotPattern(slot.Template)
		if err != nil {
			// A repeated placeholder cannot compile to named groups;
			// such a slot can never match, so keep probing the rest.
			s.logger.Debug("skipping unmatchable slot",
				slog.String("studio", studio),
				slog.String("template", slot.Template.Name),
				slog.String("error", err.Error()))
			continue
		}
		submatch := re.FindStringSubmatch(path)
		if submatch == nil {
			continue
		}

		variables := make(map[string]string)
		for i, name := range re.SubexpNames() {
			if i == 0 || name == "" {
				continue
			}
			variables[name] = submatch[i]
		}
		return Match{
			Studio:     studio,
			EntityType: slot.Entity,
			DataType:   slot.Data,
			Template:   slot.Template.Name,
			Variables:  variables,
		}, true, nil
	}
	return Match{}, false, nil
}

// Convert re-expresses a path from one studio's conventions in
// another's. The source path must match a source slot, the target studio
// must populate the same slot, and every variable the target template
// needs must be recoverable from the source path.
func (s *Service) Convert(ctx context.Context, sourceStudio, targetStudio, path string) (string, error) {
	match, ok, err := s.Analyze(ctx, sourceStudio, path)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", &pathspec.PathResolutionError{
			EntityType: "unknown",
			DataType:   "unknown",
			Reason:     fmt.Sprintf("path does not match any template of studio %q", sourceStudio),
		}
	}

	targetStudio, target, err := s.loadMapping(ctx, targetStudio)
	if err != nil {
		return "", err
	}
	tmpl := target.TemplateFor(match.EntityType, match.DataType)
	if tmpl == nil {
		return "", &pathspec.PathResolutionError{
			EntityType: string(match.EntityType),
			DataType:   string(match.DataType),
			Reason:     fmt.Sprintf("studio %q has no template for this combination", targetStudio),
		}
	}

	bindings := make(map[string]any, len(match.Variables))
	for name, value := range match.Variables {
		bindings[name] = value
	}
	converted, err := tmpl.FormatEffective(bindings)
	if err != nil {
		return "", &pathspec.PathResolutionError{
			EntityType: string(match.EntityType),
			DataType:   string(match.DataType),
			Reason:     fmt.Sprintf("target studio %q: %s", targetStudio, err),
			Err:        err,
		}
	}

	s.logger.Debug("converted path",
		slog.String("source_studio", match.Studio),
		slog.String("target_studio", targetStudio),
		slog.String("source_path", path),
		slog.String("target_path", converted))
	s.publish(events.PathConverted{
		Meta:         events.NewMeta(),
		SourceStudio: match.Studio,
		TargetStudio: targetStudio,
		SourcePath:   path,
		TargetPath:   converted,
	})
	return converted, nil
}

// slotPattern compiles a template's effective string into an anchored
// matcher, each placeholder becoming a named group that stops at path
// separators. Compiled patterns are cached by their source string.
func (s *Service) slotPattern(tmpl *pathspec.Template) (*regexp.Regexp, error) {
	effective := tmpl.EffectiveTemplate()

	s.mu.Lock()
	defer s.mu.Unlock()
	if re, ok := s.patterns[effective]; ok {
		return re, nil
	}

	escaped := regexp.QuoteMeta(effective)
	source := "^" + escapedPlaceholder.ReplaceAllString(escaped, `(?P<$1>[^/]+)`) + "$"
	re, err := regexp.Compile(source)
	if err != nil {
		return nil, fmt.Errorf("compile pattern for template %q: %w", tmpl.Name, err)
	}
	s.patterns[effective] = re
	return re, nil
}
