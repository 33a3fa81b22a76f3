package viewpath

import (
	"context"
	"io/fs"
	"path"
	"regexp"
)

// DefaultPluginDir is the directory PluginDirLocator scans when none is
// configured.
const DefaultPluginDir = "vendor/plugins/active_scaffold/frontends/default/views"

// PluginDirLocator is the fallback for StrategyPluginDir. It scans a single
// plugin directory for an entry whose name starts with the template's
// basename, optionally prefixed with an underscore, followed by the
// extension.
//
// Only controllers implementing GenericViewUser and reporting true are
// eligible. Unlike GenericLocator, the action doesn't have to be declared.
type PluginDirLocator struct {
	fsys fs.FS
	dir  string
}

var _ Locator = &PluginDirLocator{}

// NewPluginDirLocator returns a PluginDirLocator scanning dir within fsys. An
// empty dir means DefaultPluginDir.
func NewPluginDirLocator(fsys fs.FS, dir string) *PluginDirLocator {
	if dir == "" {
		dir = DefaultPluginDir
	}
	return &PluginDirLocator{
		fsys: fsys,
		dir:  cleanDir(dir),
	}
}

// Dir returns the directory being scanned.
func (l *PluginDirLocator) Dir() string {
	return l.dir
}

// Locate returns the first entry of the plugin directory, in lexical order,
// that matches the request.
func (l *PluginDirLocator) Locate(ctx context.Context, req Request) (string, bool) {
	log := requestLogger(ctx, req)
	user, ok := req.Controller.(GenericViewUser)
	if !ok || !user.UsesGenericViews(ctx) {
		log.Debug("controller doesn't use the plugin directory")
		return "", false
	}
	if l.fsys == nil {
		return "", false
	}
	entries, err := fs.ReadDir(l.fsys, l.dir)
	if err != nil {
		log.Debug("error reading plugin directory", "dir", l.dir, "error", err)
		return "", false
	}
	matcher := pluginMatcher(req.Basename(), req.Extension)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if matcher.MatchString(entry.Name()) {
			found := path.Join(l.dir, entry.Name())
			log.Debug("found template in plugin directory", "path", found)
			return found, true
		}
	}
	log.Debug("template not in plugin directory", "dir", l.dir)
	return "", false
}

// pluginMatcher builds the `^_?<name>\.?<extension>` pattern entries are
// matched against. It isn't anchored at the end, so "index" with "html"
// matches "index.html.tmpl" too.
func pluginMatcher(name, extension string) *regexp.Regexp {
	return regexp.MustCompile(`^_?` + regexp.QuoteMeta(name) + `\.?` + regexp.QuoteMeta(extension))
}
