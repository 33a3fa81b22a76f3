// Package pongo2loader lets pongo2 templates be resolved through a
// viewpath.Resolver, so Django-style templates get the same controller view
// paths and generic fallbacks as html/template ones.
package pongo2loader

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"path"
	"strings"

	"github.com/flosch/pongo2/v6"

	"impractical.co/viewpath"
)

var _ pongo2.TemplateLoader = &Loader{}

// Loader is a pongo2.TemplateLoader for one controller action. Template names
// given to pongo2, in FromFile, include or extends, are template paths
// without an extension, like "widgets/index" or "layouts/application".
type Loader struct {
	ctx        context.Context
	resolver   *viewpath.Resolver
	controller viewpath.Controller
	action     string
}

// New returns a Loader resolving names for controller's action. ctx is used
// for logging and tracing of every lookup pongo2 makes.
func New(ctx context.Context, resolver *viewpath.Resolver, controller viewpath.Controller, action string) *Loader {
	return &Loader{
		ctx:        ctx,
		resolver:   resolver,
		controller: controller,
		action:     action,
	}
}

// Abs resolves name to a path within the Resolver's fs.FS. Names that
// can't be resolved are returned cleaned, and Get reports them as missing.
//
// base, the template doing the include or extends, is ignored: every name
// is a template path relative to the view paths, never to the including
// template's directory.
func (l *Loader) Abs(_, name string) string {
	templatePath := strings.Trim(path.Clean("/"+name), "/")
	found := l.resolver.Resolve(l.ctx, viewpath.Request{
		Controller:   l.controller,
		Action:       l.action,
		TemplatePath: templatePath,
	})
	if found == "" {
		return templatePath
	}
	return found
}

// Get returns the contents of the template at path, as returned by Abs.
func (l *Loader) Get(path string) (io.Reader, error) {
	contents, err := fs.ReadFile(l.resolver.FS(), path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", viewpath.ErrMissingTemplate, err)
	}
	return bytes.NewReader(contents), nil
}

// Render resolves the controller's action template through a fresh
// pongo2.TemplateSet and executes it with data.
func Render(ctx context.Context, w io.Writer, resolver *viewpath.Resolver, controller viewpath.Controller, action string, data pongo2.Context) error {
	return RenderTemplate(ctx, w, resolver, controller, action, "", data)
}

// RenderTemplate is like Render, but renders the template at name, like
// "widgets/show", instead of "<controller path>/<action>". An empty name
// renders the action's own template. The generic fallback still depends on
// controller declaring action.
func RenderTemplate(ctx context.Context, w io.Writer, resolver *viewpath.Resolver, controller viewpath.Controller, action, name string, data pongo2.Context) error {
	if controller == nil || action == "" {
		return viewpath.ErrNoTemplatePath
	}
	name = strings.Trim(name, "/")
	if name == "" {
		name = path.Join(controller.ControllerPath(ctx), action)
	}
	loader := New(ctx, resolver, controller, action)
	set := pongo2.NewSet(controller.ControllerPath(ctx)+"#"+action, loader)
	tmpl, err := set.FromFile(name)
	if err != nil {
		return fmt.Errorf("pongo2loader: load %s for %s#%s: %w", name, controller.ControllerPath(ctx), action, err)
	}
	if err := tmpl.ExecuteWriter(data, w); err != nil {
		return fmt.Errorf("pongo2loader: execute %s for %s#%s: %w", name, controller.ControllerPath(ctx), action, err)
	}
	return nil
}
