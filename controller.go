package viewpath

import (
	"context"
	"slices"
)

// Controller is the owner of a set of actions and the views that render
// them.
type Controller interface {
	// ControllerPath returns the directory, relative to each view path,
	// that holds this controller's templates. For a widgets controller
	// that's usually "widgets".
	ControllerPath(context.Context) string

	// ActionMethods returns the actions the controller explicitly
	// declares. Only these actions are allowed to fall back to generic
	// view paths.
	ActionMethods(context.Context) []string
}

// GenericViewPather is an optional interface for Controllers. Those fulfilling
// it list the directories that should be searched, in order, for a template
// when the controller's own view paths don't have one.
//
// Controllers that don't implement it, like mailers, never use generic view
// paths.
type GenericViewPather interface {
	GenericViewPaths(context.Context) []string
}

// GenericViewUser is an optional interface for Controllers. It gates the
// StrategyPluginDir fallback: only controllers reporting true are resolved
// against the plugin directory.
type GenericViewUser interface {
	UsesGenericViews(context.Context) bool
}

var _ Controller = Base{}
var _ GenericViewPather = Base{}
var _ GenericViewUser = Base{}

// Base is an immutable Controller implementation that can be embedded in
// other Controller implementations. Children are derived from a parent with
// Extend, so generic view paths are inherited the way any other configuration
// is, instead of through shared mutable state.
//
// The zero value is a controller with no path, no actions and no generic view
// paths.
type Base struct {
	path         string
	actions      []string
	genericPaths []string
	usesGeneric  bool
}

// BaseOption configures a Base when it's built with NewBase or Extend.
type BaseOption func(*Base)

// WithActions declares actions on the controller, in addition to any it
// inherited.
func WithActions(actions ...string) BaseOption {
	return func(b *Base) {
		for _, action := range actions {
			if action == "" || slices.Contains(b.actions, action) {
				continue
			}
			b.actions = append(b.actions, action)
		}
	}
}

// WithGenericViewPaths replaces the controller's generic view paths. Passing
// no paths clears any inherited ones.
func WithGenericViewPaths(paths ...string) BaseOption {
	return func(b *Base) {
		b.genericPaths = slices.Clone(paths)
	}
}

// WithGenericViews sets whether the controller opts into the plugin directory
// fallback.
func WithGenericViews(uses bool) BaseOption {
	return func(b *Base) {
		b.usesGeneric = uses
	}
}

// NewBase returns a Base for the controller whose templates live under path.
func NewBase(path string, opts ...BaseOption) Base {
	b := Base{path: path}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&b)
	}
	return b
}

// Extend returns a child of b with its templates under path. The child starts
// with b's actions, generic view paths and plugin setting, and opts are
// applied on top. b is not modified.
func (b Base) Extend(path string, opts ...BaseOption) Base {
	child := Base{
		path:         path,
		actions:      slices.Clone(b.actions),
		genericPaths: slices.Clone(b.genericPaths),
		usesGeneric:  b.usesGeneric,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&child)
	}
	return child
}

// ControllerPath returns the directory this controller's templates live in.
func (b Base) ControllerPath(_ context.Context) string {
	return b.path
}

// ActionMethods returns a copy of the actions declared on the controller.
func (b Base) ActionMethods(_ context.Context) []string {
	return slices.Clone(b.actions)
}

// GenericViewPaths returns a copy of the controller's generic view paths.
func (b Base) GenericViewPaths(_ context.Context) []string {
	return slices.Clone(b.genericPaths)
}

// UsesGenericViews reports whether the controller opted into the plugin
// directory fallback.
func (b Base) UsesGenericViews(_ context.Context) bool {
	return b.usesGeneric
}

// declaresAction reports whether action is one of controller's explicitly
// declared actions.
func declaresAction(ctx context.Context, controller Controller, action string) bool {
	if controller == nil || action == "" {
		return false
	}
	return slices.Contains(controller.ActionMethods(ctx), action)
}
