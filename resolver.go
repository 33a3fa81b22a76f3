package viewpath

import (
	"context"
	"fmt"
	"io/fs"
	"slices"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "impractical.co/viewpath"

// Strategy selects the fallback a Resolver uses after the controller's own
// view paths come up empty.
type Strategy string

const (
	// StrategyGenericPaths falls back to the controller's ordered
	// generic view paths, for declared actions only.
	StrategyGenericPaths Strategy = "generic_paths"

	// StrategyPluginDir falls back to a single plugin directory, for
	// controllers that opt in through GenericViewUser.
	StrategyPluginDir Strategy = "plugin_dir"

	// StrategyNone disables the fallback entirely.
	StrategyNone Strategy = "none"
)

// ParseStrategy turns a configured strategy name into a Strategy. An empty
// name means StrategyGenericPaths.
func ParseStrategy(name string) (Strategy, error) {
	switch Strategy(name) {
	case "", StrategyGenericPaths:
		return StrategyGenericPaths, nil
	case StrategyPluginDir, StrategyNone:
		return Strategy(name), nil
	}
	return "", fmt.Errorf("unknown strategy %q", name)
}

// ResolverOption configures a Resolver before it's built.
type ResolverOption func(*resolverConfig)

type resolverConfig struct {
	viewPaths         []string
	strategy          Strategy
	pluginDir         string
	handlerExtensions []string
	defaultExtension  string
	extra             []Locator
}

// WithViewPaths sets the primary view paths, searched in order.
func WithViewPaths(paths ...string) ResolverOption {
	return func(cfg *resolverConfig) {
		cfg.viewPaths = slices.Clone(paths)
	}
}

// WithStrategy selects the fallback strategy.
func WithStrategy(strategy Strategy) ResolverOption {
	return func(cfg *resolverConfig) {
		cfg.strategy = strategy
	}
}

// WithPluginDir sets the directory StrategyPluginDir scans.
func WithPluginDir(dir string) ResolverOption {
	return func(cfg *resolverConfig) {
		cfg.pluginDir = dir
	}
}

// WithHandlerExtensions sets the extensions tried when a Request doesn't have
// one.
func WithHandlerExtensions(extensions ...string) ResolverOption {
	return func(cfg *resolverConfig) {
		cfg.handlerExtensions = slices.Clone(extensions)
	}
}

// WithDefaultExtension sets the extension used when none of the handler
// extensions match.
func WithDefaultExtension(ext string) ResolverOption {
	return func(cfg *resolverConfig) {
		cfg.defaultExtension = ext
	}
}

// WithLocators appends Locators to the end of the Resolver's Chain, after the
// fallback.
func WithLocators(locators ...Locator) ResolverOption {
	return func(cfg *resolverConfig) {
		cfg.extra = append(cfg.extra, locators...)
	}
}

// Resolver maps a Request to a template file within an fs.FS. It is a Chain
// of the primary ViewPathLocator, the configured fallback, and any extra
// Locators, plus an ExtensionFinder for requests without an extension.
//
// A Resolver holds no mutable state and can safely be used by multiple
// goroutines. Nothing is cached; every call looks at the fs.FS again.
type Resolver struct {
	fsys       fs.FS
	strategy   Strategy
	views      *ViewPathLocator
	extensions *ExtensionFinder
	chain      Chain
	tracer     trace.Tracer
}

var _ Locator = &Resolver{}

// NewResolver builds a Resolver over fsys.
func NewResolver(fsys fs.FS, opts ...ResolverOption) *Resolver {
	cfg := resolverConfig{strategy: StrategyGenericPaths}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}
	views := NewViewPathLocator(fsys, cfg.viewPaths...)
	chain := Chain{views}
	switch cfg.strategy {
	case StrategyPluginDir:
		chain = append(chain, NewPluginDirLocator(fsys, cfg.pluginDir))
	case StrategyNone:
	default:
		cfg.strategy = StrategyGenericPaths
		chain = append(chain, NewGenericLocator(fsys))
	}
	chain = append(chain, cfg.extra...)
	return &Resolver{
		fsys:       fsys,
		strategy:   cfg.strategy,
		views:      views,
		extensions: NewExtensionFinder(views, cfg.defaultExtension, cfg.handlerExtensions...),
		chain:      chain,
		tracer:     otel.Tracer(tracerName),
	}
}

// FS returns the fs.FS templates are resolved within.
func (r *Resolver) FS() fs.FS {
	return r.fsys
}

// Strategy returns the fallback strategy in use.
func (r *Resolver) Strategy() Strategy {
	return r.strategy
}

// Resolve returns the path of the template the Request refers to, or "" if
// none of the Locators could find it. If the Request has no Extension, one is
// worked out first.
func (r *Resolver) Resolve(ctx context.Context, req Request) string {
	ctx, span := r.tracer.Start(ctx, "viewpath.Resolve", trace.WithAttributes(
		attribute.String("viewpath.controller", req.controllerPath(ctx)),
		attribute.String("viewpath.action", req.Action),
		attribute.String("viewpath.template", req.TemplatePath),
		attribute.String("viewpath.strategy", string(r.strategy)),
	))
	defer span.End()

	if req.Extension == "" {
		req.Extension = r.extensions.Find(ctx, req.TemplatePath)
	} else {
		req.Extension = trimExtension(req.Extension)
	}
	span.SetAttributes(attribute.String("viewpath.extension", req.Extension))

	found, ok := r.chain.Locate(ctx, req)
	span.SetAttributes(attribute.Bool("viewpath.found", ok))
	if !ok {
		requestLogger(ctx, req).Debug("template not found", "extension", req.Extension)
		return ""
	}
	span.SetAttributes(attribute.String("viewpath.path", found))
	return found
}

// Locate makes a Resolver usable as a Locator, so it can be nested in other
// Chains or handed to a Site.
func (r *Resolver) Locate(ctx context.Context, req Request) (string, bool) {
	found := r.Resolve(ctx, req)
	return found, found != ""
}
