package transform

import (
	"context"

	"go.trai.ch/polish/internal/adapters/shell"
	"go.trai.ch/polish/internal/core/domain"
	"go.trai.ch/polish/internal/core/ports"
	"go.trai.ch/polish/internal/engine/memo"
	"go.trai.ch/zerr"
)

// Cache names, as reported to memo observers.
const (
	StyleCacheName  = "style"
	EngineCacheName = "lint_engine"
)

// Pipeline implements ports.Transformer with external commands.
// Style configurations are cached per document path and lint engines per
// workspace root; both caches are owned by the caller.
type Pipeline struct {
	logger   ports.Logger
	tracer   ports.Tracer
	settings ports.SettingsLoader
	runner   CommandRunner
	styles   *memo.Cache[StyleConfig]
	engines  *memo.Cache[*LintEngine]
}

// NewPipeline creates a Pipeline.
func NewPipeline(
	logger ports.Logger,
	tracer ports.Tracer,
	settings ports.SettingsLoader,
	runner CommandRunner,
	styles *memo.Cache[StyleConfig],
	engines *memo.Cache[*LintEngine],
) *Pipeline {
	return &Pipeline{
		logger:   logger,
		tracer:   tracer,
		settings: settings,
		runner:   runner,
		styles:   styles,
		engines:  engines,
	}
}

// Transform formats text and then applies lint autofixes.
// A formatter failure fails the pipeline. A linter failure is logged and
// the formatted text is returned.
func (p *Pipeline) Transform(ctx context.Context, text string, item domain.WorkItem) (string, error) {
	settings := p.loadSettings(item)

	formatted, err := p.format(ctx, settings.Formatter, text, item)
	if err != nil {
		return "", err
	}

	fixed, err := p.lint(ctx, settings.Linter, formatted, item)
	if err != nil {
		p.logger.Error(zerr.With(zerr.Wrap(err, domain.ErrLinterFailed.Error()), "path", item.Path))
		return formatted, nil
	}
	return fixed, nil
}

func (p *Pipeline) loadSettings(item domain.WorkItem) domain.Settings {
	settings, err := p.settings.Load(item.Dir())
	if err != nil {
		p.logger.Warn("using default settings: " + err.Error())
		return domain.DefaultSettings()
	}
	return settings
}

func (p *Pipeline) format(ctx context.Context, spec domain.CommandSpec, text string, item domain.WorkItem) (string, error) {
	ctx, span := p.tracer.Start(ctx, "format")
	defer span.End()
	span.SetAttribute("polish.path", item.Path)

	style, found := p.resolveStyle(item)

	args := spec.Args(item.Path)
	if found {
		span.SetAttribute("polish.style_config", style.Path)
		if spec.ConfigFlag != "" {
			args = append(args, spec.ConfigFlag, style.Path)
		} else {
			args = append(args, style.Flags()...)
		}
	}

	res, err := p.runner.Run(ctx, shell.Command{Args: args, Dir: item.Dir(), Stdin: text})
	out, err := decodeOutput(spec.Output, text, res, err)
	if err != nil {
		span.RecordError(err)
		return "", zerr.With(zerr.Wrap(err, domain.ErrFormatterFailed.Error()), "path", item.Path)
	}
	return out, nil
}

// resolveStyle falls back to formatter defaults when resolution fails.
// A config file with unreadable options is kept by path; the formatter
// reads it itself.
func (p *Pipeline) resolveStyle(item domain.WorkItem) (StyleConfig, bool) {
	entry, err := p.styles.GetOrResolve(item.Key(), func(path string) (StyleConfig, bool, error) {
		cfg, found, err := ResolveStyle(path, item.Root)
		if err != nil && found {
			p.logger.Warn(zerr.With(err, "path", item.Path).Error())
			return cfg, true, nil
		}
		return cfg, found, err
	})
	if err != nil {
		p.logger.Warn(zerr.With(err, "path", item.Path).Error())
		return StyleConfig{}, false
	}
	return entry.Value, entry.Found
}

func (p *Pipeline) lint(ctx context.Context, spec domain.CommandSpec, text string, item domain.WorkItem) (string, error) {
	ctx, span := p.tracer.Start(ctx, "lint")
	defer span.End()

	root := item.Dir()
	entry, err := p.engines.GetOrResolve(root, func(root string) (*LintEngine, bool, error) {
		engine, err := NewLintEngine(root, spec)
		return engine, engine != nil, err
	})
	if err != nil {
		span.RecordError(err)
		return "", err
	}
	if !entry.Found {
		span.SetAttribute("polish.lint_skipped", true)
		return text, nil
	}

	out, err := entry.Value.Fix(ctx, p.runner, text, item)
	if err != nil {
		span.RecordError(err)
		return "", err
	}
	return out, nil
}
