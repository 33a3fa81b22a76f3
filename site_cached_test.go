package viewpath_test

import (
	"bytes"
	"context"
	"log/slog"
	"slices"
	"strings"
	"testing"
	"testing/fstest"

	"impractical.co/viewpath"
)

type CachedSitePage struct {
	controller viewpath.Base
	action     string
}

func (p CachedSitePage) Controller(_ context.Context) viewpath.Controller {
	return p.controller
}

func (p CachedSitePage) Action(_ context.Context) string {
	return p.action
}

func TestCachedSite(t *testing.T) {
	t.Parallel()

	ctx := viewpath.LoggingContext(context.Background(), slog.Default())
	templateFS := fstest.MapFS{
		"app/views/widgets/index.html.tmpl": {Data: []byte(`widgets index`)},
		"app/generic/show.html.tmpl":        {Data: []byte(`generic show`)},
		"app/generic/edit.html.tmpl":        {Data: []byte(`generic edit`)},
	}
	widgets := viewpath.NewBase("widgets",
		viewpath.WithActions("index", "show", "edit"),
		viewpath.WithGenericViewPaths("app/generic"),
	)
	site := viewpath.NewCachedSite(templateFS, viewpath.NewResolver(templateFS))
	renderChangeAndRerender(t, ctx, templateFS, CachedSitePage{widgets, "index"}, site, "app/views/widgets/index.html.tmpl", "widgets index")
	renderChangeAndRerender(t, ctx, templateFS, CachedSitePage{widgets, "show"}, site, "app/generic/show.html.tmpl", "generic show")
	renderChangeAndRerender(t, ctx, templateFS, CachedSitePage{widgets, "edit"}, site, "app/generic/edit.html.tmpl", "generic edit")
}

func TestCachedSiteResolvesEveryRender(t *testing.T) {
	t.Parallel()

	ctx := viewpath.LoggingContext(context.Background(), slog.Default())
	templateFS := fstest.MapFS{
		"app/generic/index.html.tmpl": {Data: []byte(`generic index`)},
	}
	widgets := viewpath.NewBase("widgets",
		viewpath.WithActions("index"),
		viewpath.WithGenericViewPaths("app/generic"),
	)
	site := viewpath.NewCachedSite(templateFS, nil)
	page := CachedSitePage{widgets, "index"}

	var out bytes.Buffer
	viewpath.Render(ctx, &out, site, page)
	if output := out.String(); output != "generic index" {
		t.Fatalf("Expected to get %q, got %q", "generic index", output)
	}

	// a controller template showing up later wins over the cached
	// generic one, because resolution isn't cached
	templateFS["app/views/widgets/index.html.tmpl"] = &fstest.MapFile{Data: []byte(`widgets index`)}
	out.Reset()
	viewpath.Render(ctx, &out, site, page)
	if output := out.String(); output != "widgets index" {
		t.Errorf("Expected to get %q after adding a controller template, got %q", "widgets index", output)
	}
}

func renderChangeAndRerender(t *testing.T, ctx context.Context, fs fstest.MapFS, page viewpath.Page, site viewpath.Site, file, expected string) {
	t.Helper()

	var out bytes.Buffer
	viewpath.Render(ctx, &out, site, page)
	if output := out.String(); output != expected {
		t.Errorf("Expected to get %q, got %q", expected, output)
	}
	out.Reset()
	oldData := slices.Clone(fs[file].Data)
	fs[file].Data = []byte(strings.ReplaceAll(string(fs[file].Data), expected, "changed-"+expected))
	viewpath.Render(ctx, &out, site, page)
	if output := out.String(); output != expected {
		t.Errorf("Expected to get %q after modifying underlying data, got %q", expected, output)
	}
	fs[file].Data = oldData
}
