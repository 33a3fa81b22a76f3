package viewpath

import (
	"context"
	"io/fs"
	"path"
	"strings"
)

// Request is a single template lookup, scoped to one render.
type Request struct {
	// Controller is the controller rendering the template. It may be nil,
	// in which case only locators that don't depend on the controller can
	// answer.
	Controller Controller

	// Action is the name of the action being rendered.
	Action string

	// TemplatePath is the template's path relative to a view path,
	// without an extension, like "widgets/index" or "widgets/_form".
	TemplatePath string

	// Extension is the template's file extension, without the leading
	// dot, like "html.tmpl".
	Extension string
}

// File returns the template path with its extension appended.
func (r Request) File() string {
	if r.Extension == "" {
		return r.TemplatePath
	}
	return r.TemplatePath + "." + r.Extension
}

// Basename returns the last element of the template path, without an
// extension.
func (r Request) Basename() string {
	return path.Base(r.TemplatePath)
}

func (r Request) controllerPath(ctx context.Context) string {
	if r.Controller == nil {
		return ""
	}
	return r.Controller.ControllerPath(ctx)
}

// Locator is a pluggable template lookup step. A Chain tries multiple
// Locators in order.
type Locator interface {
	// Locate returns the path of the template the Request refers to,
	// and true, if the Locator can find it. Otherwise it returns "" and
	// false, and the next Locator gets a turn.
	//
	// Locators never surface errors; anything that goes wrong means the
	// template wasn't found.
	Locate(ctx context.Context, req Request) (string, bool)
}

// LocatorFunc adapts an ordinary function to the Locator interface.
type LocatorFunc func(ctx context.Context, req Request) (string, bool)

// Locate calls f.
func (f LocatorFunc) Locate(ctx context.Context, req Request) (string, bool) {
	return f(ctx, req)
}

// Chain is an ordered list of Locators. The first one to find the template
// wins, and the Locators after it are never consulted.
type Chain []Locator

var _ Locator = Chain(nil)

// Locate asks each Locator in the Chain in turn.
func (c Chain) Locate(ctx context.Context, req Request) (string, bool) {
	for _, locator := range c {
		if locator == nil {
			continue
		}
		found, ok := locator.Locate(ctx, req)
		if ok && found != "" {
			return found, true
		}
	}
	return "", false
}

// isFile reports whether name exists in fsys and is a regular file.
func isFile(fsys fs.FS, name string) bool {
	if fsys == nil || !fs.ValidPath(name) {
		return false
	}
	info, err := fs.Stat(fsys, name)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}

// cleanDir turns a configured directory into something usable as an fs.FS
// path: slash separated, no leading slash, "." for the root.
func cleanDir(dir string) string {
	dir = strings.TrimPrefix(path.Clean("/"+strings.ReplaceAll(dir, "\\", "/")), "/")
	if dir == "" {
		return "."
	}
	return dir
}
