// Package viewpath resolves controller action templates against an fs.FS,
// with a shared fallback location for templates that apply to every
// controller.
//
// viewpath is organized around Controllers, Locators, and a Resolver. A
// Controller names the directory its views live in and the actions it
// explicitly declares. A Locator maps a Request (the controller, the action,
// a template path and an extension) to a concrete file, or reports that it
// couldn't find one. A Resolver is an ordered Chain of Locators: the
// controller's own view paths first, then a fallback, and the first hit wins.
//
// The fallback is what this package exists for. A UI plugin can ship default
// templates in one or more generic view paths, and any controller that lists
// those paths picks them up without carrying its own copies. Generic view
// paths are only ever consulted for actions the controller explicitly
// declares, so requests that would otherwise fall through to implicit
// rendering (mailers, stray partials) are never answered from the shared
// directories.
//
// Two fallback strategies exist, selected when the Resolver is built:
// StrategyGenericPaths searches the controller's ordered generic view paths
// for an exact file name, and StrategyPluginDir scans a single plugin
// directory for a name match. They are deliberately kept separate.
//
// Every failure to find a template collapses to an empty result. Render turns
// that into ErrMissingTemplate and the Site's server error page, the same way
// any other rendering error is handled.
//
// To render an action, pass a Page to Render along with a Site. The Site
// provides the fs.FS the templates live in and the Locator used to find them.
// The page itself will be made available as .Page within the template, and the
// Site will be available as .Site.
package viewpath
