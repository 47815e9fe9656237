package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/goliatone/go-concat/pkg/concat"
	"github.com/goliatone/go-concat/pkg/render/template/gotemplate"
)

type app struct {
	cfg    config
	logger zerolog.Logger
	stdout io.Writer
	driver promptDriver
}

func (a *app) run(ctx context.Context) error {
	if a.cfg.interactive {
		_, err := runInteractive(ctx, a.driver)
		return err
	}

	options := []gotemplate.Option{
		gotemplate.WithLogger(a.logger),
		gotemplate.WithExtension(a.cfg.extension),
		gotemplate.WithGlobalData(a.cfg.globals),
	}
	if a.cfg.templateDir != "" {
		options = append(options, gotemplate.WithBaseDir(a.cfg.templateDir))
	}
	engine, err := gotemplate.New(options...)
	if err != nil {
		return fmt.Errorf("create engine: %w", err)
	}

	data, err := loadData(a.cfg.dataPath)
	if err != nil {
		return err
	}

	source := a.cfg.template
	render := engine.Render
	if a.cfg.templateFile != "" {
		raw, err := os.ReadFile(a.cfg.templateFile)
		if err != nil {
			return fmt.Errorf("read template: %w", err)
		}
		source = string(raw)
		render = engine.RenderString
	}

	a.logger.Debug().
		Str("template", a.cfg.template).
		Str("template_file", a.cfg.templateFile).
		Str("data", a.cfg.dataPath).
		Msg("rendering")

	out, err := render(source, data)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}

	if a.cfg.output == "" {
		_, err := fmt.Fprintln(a.stdout, out)
		return err
	}
	if err := os.WriteFile(a.cfg.output, []byte(out), 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	a.logger.Info().Str("path", a.cfg.output).Int("bytes", len(out)).Msg("output written")
	return nil
}

func loadData(path string) (*concat.Mapping, error) {
	if path == "" {
		return concat.NewMapping(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read data: %w", err)
	}
	data, err := concat.Decode(raw, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("decode data %s: %w", path, err)
	}
	return data, nil
}
