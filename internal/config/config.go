package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"impractical.co/viewpath"
)

// Config describes where templates live and how controllers fall back to
// generic view paths.
//
// Every path is relative to Root. Absolute paths are accepted as long as they
// are inside Root, and are rewritten relative to it on load.
type Config struct {
	Root              string             `yaml:"root" toml:"root"`
	ViewPaths         []string           `yaml:"view_paths" toml:"view_paths"`
	Strategy          string             `yaml:"strategy" toml:"strategy"`
	PluginDir         string             `yaml:"plugin_dir" toml:"plugin_dir"`
	DefaultExtension  string             `yaml:"default_extension" toml:"default_extension"`
	HandlerExtensions []string           `yaml:"handler_extensions" toml:"handler_extensions"`
	Controllers       []ControllerConfig `yaml:"controllers" toml:"controllers"`
}

// ControllerConfig describes one controller. A controller with a Parent
// starts from the parent's actions, generic view paths and plugin setting.
//
// A nil GenericViewPaths inherits the parent's; an empty list clears them.
type ControllerConfig struct {
	Name             string   `yaml:"name" toml:"name"`
	Path             string   `yaml:"path" toml:"path"`
	Parent           string   `yaml:"parent" toml:"parent"`
	Actions          []string `yaml:"actions" toml:"actions"`
	GenericViewPaths []string `yaml:"generic_view_paths" toml:"generic_view_paths"`
	UsesGenericViews *bool    `yaml:"uses_generic_views" toml:"uses_generic_views"`
}

// Load reads the config file at path, YAML or TOML depending on its
// extension, fills in defaults and validates it. A relative Root is taken
// relative to the config file's directory.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}
	cfg, err := Parse(data, filepath.Ext(path))
	if err != nil {
		return Config{}, fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	if !filepath.IsAbs(cfg.Root) {
		cfg.Root = filepath.Join(filepath.Dir(path), cfg.Root)
	}
	if err := cfg.normalize(); err != nil {
		return Config{}, fmt.Errorf("config invalid (%s): %w", path, err)
	}
	if err := Validate(cfg); err != nil {
		return Config{}, fmt.Errorf("config invalid (%s): %w", path, err)
	}
	return cfg, nil
}

// Parse decodes data in the format named by ext (".yaml", ".yml" or
// ".toml") and fills in defaults. It doesn't touch the filesystem or
// validate.
func Parse(data []byte, ext string) (Config, error) {
	var cfg Config
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, err
		}
	case ".toml":
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return Config{}, err
		}
	default:
		return Config{}, fmt.Errorf("unsupported config format %q", ext)
	}
	applyDefaults(&cfg)
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if strings.TrimSpace(cfg.Root) == "" {
		cfg.Root = "."
	}
	if len(cfg.ViewPaths) == 0 {
		cfg.ViewPaths = []string{viewpath.DefaultViewPath}
	}
	if cfg.Strategy == "" {
		cfg.Strategy = string(viewpath.StrategyGenericPaths)
	}
	if cfg.PluginDir == "" {
		cfg.PluginDir = viewpath.DefaultPluginDir
	}
	if cfg.DefaultExtension == "" {
		cfg.DefaultExtension = viewpath.DefaultExtension
	}
	if len(cfg.HandlerExtensions) == 0 {
		cfg.HandlerExtensions = append([]string(nil), viewpath.DefaultHandlerExtensions...)
	}
	for i := range cfg.Controllers {
		if cfg.Controllers[i].Path == "" {
			cfg.Controllers[i].Path = cfg.Controllers[i].Name
		}
	}
}

// normalize rewrites absolute paths relative to Root.
func (cfg *Config) normalize() error {
	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		return fmt.Errorf("root %q: %w", cfg.Root, err)
	}
	cfg.Root = root
	for i, p := range cfg.ViewPaths {
		if cfg.ViewPaths[i], err = relativeTo(root, p); err != nil {
			return err
		}
	}
	if cfg.PluginDir, err = relativeTo(root, cfg.PluginDir); err != nil {
		return err
	}
	for i := range cfg.Controllers {
		for j, p := range cfg.Controllers[i].GenericViewPaths {
			if cfg.Controllers[i].GenericViewPaths[j], err = relativeTo(root, p); err != nil {
				return fmt.Errorf("controller %q: %w", cfg.Controllers[i].Name, err)
			}
		}
	}
	return nil
}

// relativeTo returns p relative to root, in slash form. Both absolute and
// relative paths must stay inside root.
func relativeTo(root, p string) (string, error) {
	rel := filepath.Clean(p)
	if filepath.IsAbs(p) {
		var err error
		rel, err = filepath.Rel(root, p)
		if err != nil {
			return "", fmt.Errorf("path %q: %w", p, err)
		}
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path %q is outside root %q", p, root)
	}
	return filepath.ToSlash(rel), nil
}

// Validate checks that cfg can be turned into a Resolver and controllers.
func Validate(cfg Config) error {
	if _, err := viewpath.ParseStrategy(cfg.Strategy); err != nil {
		return err
	}
	byName := make(map[string]ControllerConfig, len(cfg.Controllers))
	for i, controller := range cfg.Controllers {
		name := strings.TrimSpace(controller.Name)
		if name == "" {
			return fmt.Errorf("controller[%d] missing name", i)
		}
		if _, ok := byName[name]; ok {
			return fmt.Errorf("controller %q defined more than once", name)
		}
		byName[name] = controller
	}
	for _, controller := range cfg.Controllers {
		if controller.Parent == "" {
			continue
		}
		if _, ok := byName[controller.Parent]; !ok {
			return fmt.Errorf("controller %q has unknown parent %q", controller.Name, controller.Parent)
		}
		if _, err := lineage(byName, controller.Name); err != nil {
			return err
		}
	}
	return nil
}

// lineage returns the controllers from the root ancestor down to name.
func lineage(byName map[string]ControllerConfig, name string) ([]ControllerConfig, error) {
	var chain []ControllerConfig
	seen := map[string]struct{}{}
	for current := name; current != ""; {
		if _, ok := seen[current]; ok {
			return nil, fmt.Errorf("controller %q has a parent cycle", name)
		}
		seen[current] = struct{}{}
		controller, ok := byName[current]
		if !ok {
			return nil, fmt.Errorf("unknown controller %q", current)
		}
		chain = append([]ControllerConfig{controller}, chain...)
		current = controller.Parent
	}
	return chain, nil
}

// FS returns the filesystem rooted at Root.
func (cfg Config) FS() fs.FS {
	return os.DirFS(cfg.Root)
}

// Resolver builds a viewpath.Resolver over fsys using cfg's view paths,
// strategy and extensions.
func (cfg Config) Resolver(fsys fs.FS) (*viewpath.Resolver, error) {
	strategy, err := viewpath.ParseStrategy(cfg.Strategy)
	if err != nil {
		return nil, err
	}
	return viewpath.NewResolver(fsys,
		viewpath.WithViewPaths(cfg.ViewPaths...),
		viewpath.WithStrategy(strategy),
		viewpath.WithPluginDir(cfg.PluginDir),
		viewpath.WithDefaultExtension(cfg.DefaultExtension),
		viewpath.WithHandlerExtensions(cfg.HandlerExtensions...),
	), nil
}

// Controller builds the controller called name, composed with its ancestors.
func (cfg Config) Controller(name string) (viewpath.Base, error) {
	if strings.TrimSpace(name) == "" {
		return viewpath.Base{}, errors.New("missing controller name")
	}
	byName := make(map[string]ControllerConfig, len(cfg.Controllers))
	for _, controller := range cfg.Controllers {
		byName[controller.Name] = controller
	}
	chain, err := lineage(byName, name)
	if err != nil {
		return viewpath.Base{}, err
	}
	var base viewpath.Base
	for i, controller := range chain {
		opts := []viewpath.BaseOption{viewpath.WithActions(controller.Actions...)}
		if controller.GenericViewPaths != nil {
			opts = append(opts, viewpath.WithGenericViewPaths(controller.GenericViewPaths...))
		}
		if controller.UsesGenericViews != nil {
			opts = append(opts, viewpath.WithGenericViews(*controller.UsesGenericViews))
		}
		if i == 0 {
			base = viewpath.NewBase(controller.Path, opts...)
			continue
		}
		base = base.Extend(controller.Path, opts...)
	}
	return base, nil
}
