package viewpath

import (
	"context"
	"io/fs"
	"path"
	"slices"
)

// DefaultViewPath is where controller templates live when no view paths are
// configured.
const DefaultViewPath = "app/views"

// ViewPathLocator finds templates in an ordered list of view paths. It is the
// primary lookup: a controller's own templates, like "widgets/index.html.tmpl"
// under "app/views".
type ViewPathLocator struct {
	fsys  fs.FS
	paths []string
}

var _ Locator = &ViewPathLocator{}

// NewViewPathLocator returns a ViewPathLocator searching paths, in order,
// within fsys. If no paths are given, DefaultViewPath is used.
func NewViewPathLocator(fsys fs.FS, paths ...string) *ViewPathLocator {
	if len(paths) < 1 {
		paths = []string{DefaultViewPath}
	}
	cleaned := make([]string, 0, len(paths))
	for _, p := range paths {
		cleaned = append(cleaned, cleanDir(p))
	}
	return &ViewPathLocator{
		fsys:  fsys,
		paths: cleaned,
	}
}

// Paths returns a copy of the view paths being searched.
func (l *ViewPathLocator) Paths() []string {
	return slices.Clone(l.paths)
}

// Locate returns the first view path containing the requested template file.
func (l *ViewPathLocator) Locate(ctx context.Context, req Request) (string, bool) {
	if req.TemplatePath == "" {
		return "", false
	}
	file := req.File()
	for _, dir := range l.paths {
		candidate := path.Join(dir, file)
		if isFile(l.fsys, candidate) {
			return candidate, true
		}
	}
	requestLogger(ctx, req).Debug("template not in view paths", "view_paths", l.paths)
	return "", false
}

// exists reports whether file is present in any of the view paths. It's used
// to work out which handler extension a template was written with.
func (l *ViewPathLocator) exists(file string) bool {
	for _, dir := range l.paths {
		if isFile(l.fsys, path.Join(dir, file)) {
			return true
		}
	}
	return false
}
