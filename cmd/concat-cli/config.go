package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
)

const (
	envTemplateDir = "CONCAT_TEMPLATE_DIR"
	envExtension   = "CONCAT_EXTENSION"
	envLogLevel    = "CONCAT_LOG_LEVEL"
)

type config struct {
	template     string
	templateFile string
	templateDir  string
	extension    string
	dataPath     string
	output       string
	interactive  bool
	logLevel     string
	globals      globalVars
}

// globalVars collects repeated -global key=value flags.
type globalVars map[string]any

func (g *globalVars) String() string {
	if g == nil || len(*g) == 0 {
		return ""
	}
	return fmt.Sprint(map[string]any(*g))
}

func (g *globalVars) Set(raw string) error {
	key, value, ok := strings.Cut(raw, "=")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return fmt.Errorf("global %q: expected key=value", raw)
	}
	if *g == nil {
		*g = make(globalVars)
	}
	(*g)[key] = value
	return nil
}

// parseConfig reads flags, falling back to environment values for the
// settings that have one. lookup is usually os.LookupEnv.
func parseConfig(args []string, lookup func(string) (string, bool), stderr io.Writer) (config, error) {
	env := func(key, fallback string) string {
		if lookup == nil {
			return fallback
		}
		if value, ok := lookup(key); ok && strings.TrimSpace(value) != "" {
			return strings.TrimSpace(value)
		}
		return fallback
	}

	var cfg config
	fs := flag.NewFlagSet("concat-cli", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&cfg.template, "template", "", "inline template source or the name of a template in -template-dir")
	fs.StringVar(&cfg.templateFile, "template-file", "", "template file to render")
	fs.StringVar(&cfg.templateDir, "template-dir", env(envTemplateDir, ""), "directory named templates are loaded from")
	fs.StringVar(&cfg.extension, "extension", env(envExtension, ".tpl"), "extension appended to template names")
	fs.StringVar(&cfg.dataPath, "data", "", "YAML or JSON file with the template context")
	fs.StringVar(&cfg.output, "output", "", "output file (stdout if empty)")
	fs.BoolVar(&cfg.interactive, "interactive", false, "prompt for values and options instead of rendering a template")
	fs.Var(&cfg.globals, "global", "key=value made available to every template (repeatable)")
	fs.StringVar(&cfg.logLevel, "log-level", env(envLogLevel, "info"), "log level (debug, info, warn, error)")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: concat-cli [flags]\n\nRender templates using the concat helper.\n\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return config{}, err
	}
	if err := cfg.validate(); err != nil {
		fmt.Fprintf(stderr, "concat-cli: %v\n", err)
		fs.Usage()
		return config{}, err
	}
	return cfg, nil
}

func (c config) validate() error {
	if c.interactive {
		return nil
	}
	if c.template == "" && c.templateFile == "" {
		return errors.New("one of -template, -template-file or -interactive is required")
	}
	if c.template != "" && c.templateFile != "" {
		return errors.New("-template and -template-file are mutually exclusive")
	}
	return nil
}
