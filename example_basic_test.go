package viewpath_test

import (
	"context"
	"log/slog"
	"os"

	"impractical.co/viewpath"
)

type MySite struct {
	// anonymously embedding a *CachedSite makes MySite a Site implementation
	*viewpath.CachedSite

	// a configurable title for our site
	Title string
}

// WidgetsIndex is the index action of a widgets controller that never wrote
// its own index template.
type WidgetsIndex struct {
	Widgets viewpath.Base
	Names   []string
}

func (p WidgetsIndex) Controller(_ context.Context) viewpath.Controller {
	return p.Widgets
}

func (WidgetsIndex) Action(_ context.Context) string {
	return "index"
}

func (WidgetsIndex) Layout(_ context.Context) string {
	return "layouts/application"
}

func ExampleRender_basic() {
	// normally you'd use something like embed.FS or os.DirFS for this
	// for example purposes, we're just hardcoding values
	var templates = staticFS{
		"app/views/layouts/application.html.tmpl": `<title>{{ .Site.Title }}</title>{{ block "content" . }}{{ end }}`,
		"app/generic/index.html.tmpl":             `{{ define "content" }}<ul>{{ range .Page.Names }}<li>{{ . }}</li>{{ end }}</ul>{{ end }}`,
	}

	// usually the context comes from the request, but here we're building it from scratch and adding a logger
	ctx := viewpath.LoggingContext(context.Background(), slog.Default())

	resolver := viewpath.NewResolver(templates, viewpath.WithViewPaths("app/views"))
	site := MySite{
		CachedSite: viewpath.NewCachedSite(templates, resolver),
		Title:      "My Example Site",
	}

	// every controller built from admin shares the generic index
	admin := viewpath.NewBase("admin", viewpath.WithGenericViewPaths("app/generic"))
	page := WidgetsIndex{
		Widgets: admin.Extend("widgets", viewpath.WithActions("index")),
		Names:   []string{"sprocket", "gear"},
	}
	viewpath.Render(ctx, os.Stdout, site, page)

	//Output:
	// <title>My Example Site</title><ul><li>sprocket</li><li>gear</li></ul>
}
