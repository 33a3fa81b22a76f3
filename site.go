package viewpath

import (
	"context"
	"html/template"
	"io/fs"
	"sync"
)

// Site is an interface for the singleton that will be used to render
// controller actions. Consumers should use it to store any clients or
// cross-request state they need, and use it to render Pages.
//
// A Site needs to be able to surface the templates it relies on as an fs.FS,
// and the Locator that finds them.
type Site interface {
	// TemplateDir returns an fs.FS containing every template the Site
	// can render, including the generic view paths.
	//
	// Paths returned by TemplateLocator are paths within this fs.FS.
	TemplateDir(ctx context.Context) fs.FS

	// TemplateLocator returns the Locator used to turn a controller
	// action into a template path.
	TemplateLocator(ctx context.Context) Locator
}

// TemplateCacher is an optional interface for Sites. Those fulfilling it can
// cache their template parsing, keyed by the paths the templates resolved to
// and the names of the functions they were parsed with, to save on the
// overhead of parsing the template each time. Cached templates are cloned
// before execution, so they must not be executed by the cacher. Resolution
// itself still happens on every render; only parsing is skipped.
type TemplateCacher interface {
	// GetCachedTemplate returns the *template.Template specified by the
	// passed key. It should return nil if the template hasn't been cached
	// yet.
	GetCachedTemplate(ctx context.Context, key string) *template.Template

	// SetCachedTemplate stores the passed *template.Template under the
	// passed key, for later retrieval with GetCachedTemplate.
	//
	// Any errors encountered should be logged, but as this is a
	// best-effort operation, will not be surfaced outside the function.
	SetCachedTemplate(ctx context.Context, key string, tmpl *template.Template)
}

// ServerErrorPager defines an interface that Sites can optionally implement.
// If a Site implements ServerErrorPager and Render encounters an error,
// including a missing template, the output of ServerErrorPage will be
// rendered.
type ServerErrorPager interface {
	ServerErrorPage(ctx context.Context) Page
}

var _ Site = &CachedSite{}
var _ TemplateCacher = &CachedSite{}

// CachedSite is an implementation of the Site interface that can be embedded
// in other Site implementations. It fulfills the Site interface and the
// TemplateCacher interface, caching parsed templates in memory and exposing
// the fs.FS and Locator passed to it in NewCachedSite. A CachedSite must be
// instantiated through NewCachedSite, its empty value is not usable.
type CachedSite struct {
	// cache parsed templates to avoid re-parsing them for every request
	// but allow us to assign funcmaps to them from the page
	templateCache   map[string]*template.Template
	templateCacheMu sync.RWMutex

	templateDir fs.FS
	locator     Locator
}

// NewCachedSite returns a CachedSite instance that is ready to be used. If
// locator is nil, a Resolver over templates with the default options is used.
func NewCachedSite(templates fs.FS, locator Locator) *CachedSite {
	if locator == nil {
		locator = NewResolver(templates)
	}
	return &CachedSite{
		templateCache: map[string]*template.Template{},
		templateDir:   templates,
		locator:       locator,
	}
}

// GetCachedTemplate returns the cached template associated with the passed
// key, if one exists. If no template is cached for that key, it returns nil.
//
// It can safely be used by multiple goroutines.
func (s *CachedSite) GetCachedTemplate(_ context.Context, key string) *template.Template {
	s.templateCacheMu.RLock()
	defer s.templateCacheMu.RUnlock()
	return s.templateCache[key]
}

// SetCachedTemplate caches a template for the given key.
//
// It can safely be used by multiple goroutines.
func (s *CachedSite) SetCachedTemplate(_ context.Context, key string, tmpl *template.Template) {
	s.templateCacheMu.Lock()
	defer s.templateCacheMu.Unlock()
	s.templateCache[key] = tmpl
}

// TemplateDir returns the fs.FS passed to NewCachedSite.
func (s *CachedSite) TemplateDir(_ context.Context) fs.FS {
	return s.templateDir
}

// TemplateLocator returns the Locator passed to NewCachedSite.
func (s *CachedSite) TemplateLocator(_ context.Context) Locator {
	return s.locator
}
