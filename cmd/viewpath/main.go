package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/flosch/pongo2/v6"
	"github.com/lmittmann/tint"

	"impractical.co/viewpath"
	"impractical.co/viewpath/internal/config"
	"impractical.co/viewpath/pongo2loader"
)

// EnvLogLevel overrides the log level: debug, info, warn or error.
const EnvLogLevel = "VIEWPATH_LOG_LEVEL"

var (
	errNotFound      = errors.New("template not found")
	errExtWithRender = errors.New("-ext can't be used with -render; extensions are detected when rendering")
)

type options struct {
	configPath string
	controller string
	action     string
	template   string
	extension  string
	render     bool
	engine     string
	data       string
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "viewpath.yaml", "config file (.yaml, .yml or .toml)")
	flag.StringVar(&opts.controller, "controller", "", "controller name from the config")
	flag.StringVar(&opts.action, "action", "", "action being rendered")
	flag.StringVar(&opts.template, "template", "", "template path (defaults to <controller path>/<action>)")
	flag.StringVar(&opts.extension, "ext", "", "template extension (detected when empty, not allowed with -render)")
	flag.BoolVar(&opts.render, "render", false, "render the template instead of printing its path")
	flag.StringVar(&opts.engine, "engine", "gotemplate", "engine used with -render: gotemplate or pongo2")
	flag.StringVar(&opts.data, "data", "", "JSON object made available to the template")
	flag.Parse()

	log := slog.New(tint.NewHandler(os.Stderr, &tint.Options{Level: logLevel(os.Getenv(EnvLogLevel))}))
	ctx := viewpath.LoggingContext(context.Background(), log)

	if err := run(ctx, os.Stdout, opts); err != nil {
		log.Error("viewpath failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, out io.Writer, opts options) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	resolver, err := cfg.Resolver(cfg.FS())
	if err != nil {
		return err
	}
	controller, err := cfg.Controller(opts.controller)
	if err != nil {
		return err
	}
	if !opts.render {
		return resolve(ctx, out, resolver, controller, opts)
	}
	if opts.extension != "" {
		return errExtWithRender
	}
	data := map[string]any{}
	if opts.data != "" {
		if err := json.Unmarshal([]byte(opts.data), &data); err != nil {
			return fmt.Errorf("parse -data: %w", err)
		}
	}
	switch opts.engine {
	case "pongo2":
		return pongo2loader.RenderTemplate(ctx, out, resolver, controller, opts.action, opts.template, pongo2.Context(data))
	case "gotemplate", "":
		site := viewpath.NewCachedSite(resolver.FS(), resolver)
		page := cliPage{controller: controller, action: opts.action, template: opts.template, Data: data}
		return viewpath.Execute(ctx, out, site, page)
	}
	return fmt.Errorf("unknown engine %q", opts.engine)
}

func resolve(ctx context.Context, out io.Writer, resolver *viewpath.Resolver, controller viewpath.Controller, opts options) error {
	templatePath := opts.template
	if templatePath == "" {
		templatePath = strings.Trim(controller.ControllerPath(ctx)+"/"+opts.action, "/")
	}
	found := resolver.Resolve(ctx, viewpath.Request{
		Controller:   controller,
		Action:       opts.action,
		TemplatePath: templatePath,
		Extension:    opts.extension,
	})
	if found == "" {
		return fmt.Errorf("%w: %s", errNotFound, templatePath)
	}
	_, err := fmt.Fprintln(out, found)
	return err
}

type cliPage struct {
	controller viewpath.Controller
	action     string
	template   string

	Data map[string]any
}

func (p cliPage) Controller(_ context.Context) viewpath.Controller {
	return p.controller
}

func (p cliPage) Action(_ context.Context) string {
	return p.action
}

func (p cliPage) TemplateName(_ context.Context) string {
	return p.template
}

func logLevel(raw string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
