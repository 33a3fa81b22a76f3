package viewpath

import (
	"context"
	"io/fs"
	"path"
	"strings"
)

// GenericLocator is the fallback for StrategyGenericPaths. It searches the
// requesting controller's generic view paths, in order, for a file named
// after the template's basename.
//
// A controller is only eligible if it implements GenericViewPather and the
// action being rendered is one of its ActionMethods. For anything else,
// GenericLocator finds nothing, whatever is on disk.
type GenericLocator struct {
	fsys fs.FS
}

var _ Locator = &GenericLocator{}

// NewGenericLocator returns a GenericLocator that resolves generic view paths
// within fsys.
func NewGenericLocator(fsys fs.FS) *GenericLocator {
	return &GenericLocator{fsys: fsys}
}

// Locate returns the first generic view path file matching the request.
//
// In each directory, "<basename>.<extension>" is tried first, then the
// partial spelling "_<basename>.<extension>".
func (l *GenericLocator) Locate(ctx context.Context, req Request) (string, bool) {
	log := requestLogger(ctx, req)
	paths, ok := eligibleGenericPaths(ctx, req)
	if !ok {
		log.Debug("request not eligible for generic view paths")
		return "", false
	}
	base := req.Basename()
	if base == "" || base == "." || base == "/" {
		return "", false
	}
	names := []string{Request{TemplatePath: base, Extension: req.Extension}.File()}
	if !strings.HasPrefix(base, "_") {
		names = append(names, Request{TemplatePath: "_" + base, Extension: req.Extension}.File())
	}
	for _, dir := range paths {
		dir = cleanDir(dir)
		for _, name := range names {
			candidate := path.Join(dir, name)
			if isFile(l.fsys, candidate) {
				log.Debug("found template in generic view path", "path", candidate)
				return candidate, true
			}
		}
	}
	log.Debug("template not in generic view paths", "generic_view_paths", paths)
	return "", false
}

// eligibleGenericPaths returns the generic view paths for the request's
// controller, if the request is allowed to use them at all.
func eligibleGenericPaths(ctx context.Context, req Request) ([]string, bool) {
	pather, ok := req.Controller.(GenericViewPather)
	if !ok {
		return nil, false
	}
	if !declaresAction(ctx, req.Controller, req.Action) {
		return nil, false
	}
	paths := pather.GenericViewPaths(ctx)
	if len(paths) < 1 {
		return nil, false
	}
	return paths, true
}
