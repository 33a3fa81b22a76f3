package viewpath

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"maps"
	"path"
	"slices"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var (
	// ErrNoTemplatePath is returned when a Page doesn't identify a
	// template at all: no controller or action, and no TemplateName.
	ErrNoTemplatePath = errors.New("need a controller and action or a template name")

	// ErrMissingTemplate is returned when no Locator could find the
	// template a Page refers to.
	ErrMissingTemplate = errors.New("missing template")
)

// Page is an interface for a controller action that can be passed to Render.
// It should contain all the information needed to render the action's
// template; the Page itself is available to the template as .Page.
type Page interface {
	// Controller returns the controller the action belongs to. It may
	// be nil for pages that aren't tied to a controller, like error
	// pages; those need to implement TemplateNamer.
	Controller(context.Context) Controller

	// Action returns the name of the action being rendered.
	Action(context.Context) string
}

// TemplateNamer is an interface that Pages can optionally implement to render
// a template other than "<controller path>/<action>".
type TemplateNamer interface {
	// TemplateName returns the template path, relative to the view
	// paths and without an extension, like "widgets/show".
	TemplateName(context.Context) string
}

// Layouter is an interface that Pages can optionally implement to be wrapped
// in a layout. The layout is resolved the same way the action's template is,
// and is the template that actually gets executed; it should use blocks that
// the action's template fills in.
type Layouter interface {
	// Layout returns the layout's template path, relative to the view
	// paths and without an extension, like "layouts/application".
	Layout(context.Context) string
}

// FuncMapExtender is an interface that Sites and Pages can fulfill to add to
// the map of functions available to them when rendering.
type FuncMapExtender interface {
	// FuncMap returns an html/template.FuncMap containing all the
	// functions that the Site or Page is adding to the FuncMap.
	FuncMap(context.Context) template.FuncMap
}

// RenderData is the data that is passed to a template when rendering it.
type RenderData[SiteType Site, PageType Page] struct {
	// Site is an instance of the Site type, containing all the
	// configuration and information about a Site. This can be used to
	// avoid passing global configuration options to every single page.
	Site SiteType

	// Page is the information for a specific action, embedded in that
	// action's Page type.
	Page PageType

	// Template is the path the action's template resolved to.
	Template string

	// Layout is the path the layout resolved to, if the Page has one.
	Layout string
}

// Render renders the passed Page to the Writer. If it can't, a server error
// page is written instead. If the Site implements ServerErrorPager, that will
// be rendered; if not, a simple text page indicating a server error will be
// written.
//
// A template that can't be found is just another rendering error: it's logged
// as ErrMissingTemplate and the server error page is rendered.
func Render[SiteType Site, PageType Page](ctx context.Context, out io.Writer, site SiteType, page PageType) {
	defer func() {
		// if the ResponseWriter can be closed, let's try to close it
		if closer, ok := out.(io.Closer); ok {
			err := closer.Close()
			// if there's an error closing it, logging it's about all we can do
			if err != nil {
				logger(ctx).ErrorContext(ctx, "error closing response writer", "error", err)
			}
		}
	}()

	err := basicRender(ctx, out, site, page)
	if err == nil {
		return
	}

	logger(ctx).ErrorContext(ctx, "error rendering page", "error", err)

	if pager, ok := Site(site).(ServerErrorPager); ok {
		err = basicRender(ctx, out, site, pager.ServerErrorPage(ctx))
		if err != nil {
			logger(ctx).ErrorContext(ctx, "error rendering server error page", "error", err)
		}
		return
	}

	_, err = out.Write([]byte("Server error."))
	if err != nil {
		logger(ctx).ErrorContext(ctx, "error writing server error message", "error", err)
	}
}

// Execute renders page to out like Render does, but returns any error instead
// of rendering a server error page, and leaves out open.
func Execute[SiteType Site, PageType Page](ctx context.Context, out io.Writer, site SiteType, page PageType) error {
	return basicRender(ctx, out, site, page)
}

// RenderPartial renders the partial called name for page. A bare name, like
// "form", is looked up as "_form" in the page's controller directory; a name
// with a directory, like "shared/form", as "shared/_form". Partials fall back
// to generic view paths under the same rules as the action itself.
func RenderPartial[SiteType Site, PageType Page](ctx context.Context, out io.Writer, site SiteType, page PageType, name string) error {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "viewpath.RenderPartial")
	defer span.End()

	controller := page.Controller(ctx)
	dir, base := path.Split(strings.Trim(name, "/"))
	dir = strings.TrimSuffix(dir, "/")
	if dir == "" && controller != nil {
		dir = controller.ControllerPath(ctx)
	}
	if base == "" {
		return fmt.Errorf("error rendering partial for %T: %w", page, ErrNoTemplatePath)
	}
	if !strings.HasPrefix(base, "_") {
		base = "_" + base
	}
	req := Request{
		Controller:   controller,
		Action:       page.Action(ctx),
		TemplatePath: path.Join(dir, base),
	}
	found, ok := site.TemplateLocator(ctx).Locate(ctx, req)
	if !ok {
		err := fmt.Errorf("error rendering partial %q for %T: %w", req.TemplatePath, page, ErrMissingTemplate)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	span.SetAttributes(attribute.String("viewpath.path", found))

	tmpl, err := getTemplate(ctx, site, page, found)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	data := RenderData[SiteType, PageType]{
		Site:     site,
		Page:     page,
		Template: found,
	}
	err = tmpl.ExecuteTemplate(out, found, data)
	if err != nil {
		return fmt.Errorf("error executing partial %q for %T: %w", found, page, err)
	}
	return nil
}

func basicRender[SiteType Site, PageType Page](ctx context.Context, output io.Writer, site SiteType, page PageType) error {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "viewpath.Render")
	defer span.End()

	controller := page.Controller(ctx)
	action := page.Action(ctx)
	tmplPath := templateName(ctx, page)
	if tmplPath == "" {
		return fmt.Errorf("error rendering %T: %w", page, ErrNoTemplatePath)
	}
	locator := site.TemplateLocator(ctx)
	found, ok := locator.Locate(ctx, Request{
		Controller:   controller,
		Action:       action,
		TemplatePath: tmplPath,
	})
	if !ok {
		err := fmt.Errorf("error rendering %q for %T: %w", tmplPath, page, ErrMissingTemplate)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	paths := []string{found}
	executed := found

	var layout string
	if layouter, ok := Page(page).(Layouter); ok && layouter.Layout(ctx) != "" {
		layoutPath := layouter.Layout(ctx)
		layout, ok = locator.Locate(ctx, Request{
			Controller:   controller,
			Action:       action,
			TemplatePath: layoutPath,
		})
		if !ok {
			err := fmt.Errorf("error rendering layout %q for %T: %w", layoutPath, page, ErrMissingTemplate)
			span.SetStatus(codes.Error, err.Error())
			return err
		}
		paths = append([]string{layout}, paths...)
		executed = layout
	}
	span.SetAttributes(
		attribute.String("viewpath.path", found),
		attribute.String("viewpath.layout", layout),
	)

	tmpl, err := getTemplate(ctx, site, page, paths...)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	data := RenderData[SiteType, PageType]{
		Site:     site,
		Page:     page,
		Template: found,
		Layout:   layout,
	}
	err = tmpl.ExecuteTemplate(output, executed, data)
	if err != nil {
		return fmt.Errorf("error executing template %q for %T: %w", executed, page, err)
	}
	return nil
}

// templateName returns the template path a Page renders, without an
// extension.
func templateName(ctx context.Context, page Page) string {
	if namer, ok := page.(TemplateNamer); ok {
		if name := strings.Trim(namer.TemplateName(ctx), "/"); name != "" {
			return name
		}
	}
	controller := page.Controller(ctx)
	action := page.Action(ctx)
	if controller == nil || action == "" {
		return ""
	}
	return path.Join(controller.ControllerPath(ctx), action)
}

// getTemplate returns the parsed templates for paths with the site's and
// page's functions bound. Cached templates are keyed by the paths and the
// names of the functions they were parsed with, and are never executed
// themselves; every caller gets a clone bound to its own functions.
func getTemplate(ctx context.Context, site Site, page Page, paths ...string) (*template.Template, error) {
	if len(paths) < 1 {
		return nil, ErrNoTemplatePath
	}
	funcMap := getFuncMap(ctx, site, page)
	key := templateKey(funcMap, paths...)
	cache, cacheable := site.(TemplateCacher)
	var parsed *template.Template
	if cacheable {
		parsed = cache.GetCachedTemplate(ctx, key)
	}
	if parsed == nil {
		var err error
		parsed, err = parseTemplates(site.TemplateDir(ctx), funcMap, paths...)
		if err != nil {
			return nil, fmt.Errorf("error parsing templates %v for page %T: %w", paths, page, err)
		}
		if !cacheable {
			return parsed, nil
		}
		cache.SetCachedTemplate(ctx, key, parsed)
	}
	clone, err := parsed.Clone()
	if err != nil {
		return nil, fmt.Errorf("error cloning templates %v for page %T: %w", paths, page, err)
	}
	return clone.Funcs(funcMap), nil
}

func templateKey(funcMap template.FuncMap, paths ...string) string {
	names := slices.Sorted(maps.Keys(funcMap))
	return strings.Join(paths, "\x00") + "\x01" + strings.Join(names, "\x00")
}

func getFuncMap(ctx context.Context, site Site, page Page) template.FuncMap {
	results := template.FuncMap{}
	if fm, ok := site.(FuncMapExtender); ok {
		maps.Copy(results, fm.FuncMap(ctx))
	}
	if fm, ok := page.(FuncMapExtender); ok {
		maps.Copy(results, fm.FuncMap(ctx))
	}
	return results
}

// parseTemplates parses each file into its own template, named after its path,
// all sharing one set so blocks defined in one can fill blocks in another.
func parseTemplates(fsys fs.FS, funcs template.FuncMap, files ...string) (*template.Template, error) {
	tmpl := template.New("").Funcs(funcs)
	for _, file := range files {
		contents, err := fs.ReadFile(fsys, file)
		if err != nil {
			return nil, fmt.Errorf("error reading %q: %w", file, err)
		}
		_, err = tmpl.New(file).Parse(string(contents))
		if err != nil {
			return nil, fmt.Errorf("error parsing %q: %w", file, err)
		}
	}
	return tmpl, nil
}
