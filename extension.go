package viewpath

import (
	"context"
	"slices"
	"strings"
)

// DefaultExtension is the extension assumed for a template when none of the
// handler extensions match a file in the view paths.
const DefaultExtension = "html.tmpl"

// DefaultHandlerExtensions are the template extensions tried, in order, when a
// Request doesn't name one.
var DefaultHandlerExtensions = []string{"html.tmpl", "tmpl", "html"}

// ExtensionFinder works out which extension a template was written with.
type ExtensionFinder struct {
	views      *ViewPathLocator
	extensions []string
	fallback   string
}

// NewExtensionFinder returns an ExtensionFinder trying extensions against
// views, and settling on fallback when none of them exist. Empty arguments
// mean DefaultHandlerExtensions and DefaultExtension.
func NewExtensionFinder(views *ViewPathLocator, fallback string, extensions ...string) *ExtensionFinder {
	if len(extensions) < 1 {
		extensions = DefaultHandlerExtensions
	}
	cleaned := make([]string, 0, len(extensions))
	for _, ext := range extensions {
		ext = trimExtension(ext)
		if ext == "" || slices.Contains(cleaned, ext) {
			continue
		}
		cleaned = append(cleaned, ext)
	}
	fallback = trimExtension(fallback)
	if fallback == "" {
		fallback = DefaultExtension
	}
	return &ExtensionFinder{
		views:      views,
		extensions: cleaned,
		fallback:   fallback,
	}
}

// Find returns the first handler extension for which templatePath exists in
// the view paths. It never returns an empty string: if nothing exists, the
// fallback extension is returned so that fallback locators still have a file
// name to look for.
func (f *ExtensionFinder) Find(ctx context.Context, templatePath string) string {
	if f.views != nil {
		for _, ext := range f.extensions {
			if f.views.exists(templatePath + "." + ext) {
				return ext
			}
		}
	}
	logger(ctx).Debug("no handler extension matched, using fallback",
		"template", templatePath,
		"extension", f.fallback)
	return f.fallback
}

func trimExtension(ext string) string {
	return strings.TrimPrefix(strings.TrimSpace(ext), ".")
}
