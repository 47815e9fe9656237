package gotemplate

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"reflect"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"
	"github.com/rs/zerolog"

	"github.com/goliatone/go-concat/pkg/render/template"
)

const defaultExtension = ".tpl"

var errNilEngine = errors.New("gotemplate: engine is nil")

// Option configures the Engine before construction.
type Option func(*config)

type config struct {
	baseDir   string
	templates fs.FS
	extension string
	funcs     map[string]any
	globals   map[string]any
	logger    zerolog.Logger
}

// WithBaseDir loads named templates from a directory on disk.
func WithBaseDir(dir string) Option {
	return func(cfg *config) {
		cfg.baseDir = strings.TrimSpace(dir)
	}
}

// WithFS loads named templates from an fs.FS. It is consulted after the base
// directory when both are set.
func WithFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templates = files
	}
}

// WithExtension overrides the extension appended to template names.
func WithExtension(ext string) Option {
	return func(cfg *config) {
		ext = strings.TrimSpace(ext)
		if ext == "" {
			return
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		cfg.extension = ext
	}
}

// WithTemplateFunc registers template functions. Values typed as pongo2
// filter functions are registered as filters instead.
func WithTemplateFunc(funcs map[string]any) Option {
	return func(cfg *config) {
		cfg.funcs = mergeInto(cfg.funcs, funcs)
	}
}

// WithGlobalData seeds values visible to every template. Ordered mappings
// keep their order for the concat helper.
func WithGlobalData(data map[string]any) Option {
	return func(cfg *config) {
		cfg.globals = mergeInto(cfg.globals, data)
	}
}

// WithLogger attaches a logger for template loading diagnostics. The engine
// is silent by default.
func WithLogger(logger zerolog.Logger) Option {
	return func(cfg *config) {
		cfg.logger = logger
	}
}

func mergeInto(dst, src map[string]any) map[string]any {
	if len(src) == 0 {
		return dst
	}
	if dst == nil {
		dst = make(map[string]any, len(src))
	}
	for key, value := range src {
		if key = strings.TrimSpace(key); key != "" {
			dst[key] = value
		}
	}
	return dst
}

func (cfg *config) loaders() ([]pongo2.TemplateLoader, error) {
	var loaders []pongo2.TemplateLoader
	if cfg.baseDir != "" {
		local, err := pongo2.NewLocalFileSystemLoader(cfg.baseDir)
		if err != nil {
			return nil, fmt.Errorf("gotemplate: create local loader: %w", err)
		}
		loaders = append(loaders, local)
	}
	if cfg.templates != nil {
		loaders = append(loaders, pongo2.NewFSLoader(cfg.templates))
	}
	if len(loaders) == 0 {
		// String templates still render; named lookups fail with not found.
		loaders = append(loaders, pongo2.NewFSLoader(emptyFS{}))
	}
	return loaders, nil
}

type emptyFS struct{}

func (emptyFS) Open(name string) (fs.File, error) {
	return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
}

// Engine is a pongo2 template set with the concat helper installed as the
// "concat" and "concatblock" tags and the "concat" function. Ordered mappings
// in render data reach the helper in insertion order.
type Engine struct {
	mu sync.RWMutex

	set         *pongo2.TemplateSet
	cache       map[string]*pongo2.Template
	ext         string
	globalOrder *orderIndex
	logger      zerolog.Logger
}

var _ template.TemplateRenderer = (*Engine)(nil)

// New builds an Engine. Without a base directory or FS only string templates
// can be rendered.
func New(options ...Option) (*Engine, error) {
	cfg := &config{
		extension: defaultExtension,
		logger:    zerolog.Nop(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(cfg)
		}
	}

	if err := registerHelpers(); err != nil {
		return nil, fmt.Errorf("gotemplate: register helpers: %w", err)
	}
	loaders, err := cfg.loaders()
	if err != nil {
		return nil, err
	}

	e := &Engine{
		set:         pongo2.NewSet(template.HelperName, loaders...),
		cache:       make(map[string]*pongo2.Template),
		ext:         cfg.extension,
		globalOrder: newOrderIndex(nil),
		logger:      cfg.logger,
	}
	if e.set.Globals == nil {
		e.set.Globals = make(pongo2.Context)
	}
	e.set.Globals[template.HelperName] = concatFunc

	for name, fn := range cfg.funcs {
		if err := e.addFunc(name, fn); err != nil {
			return nil, err
		}
	}
	if cfg.globals != nil {
		if err := e.GlobalContext(cfg.globals); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// Render treats name as template source when it contains template markup and
// as a template name otherwise.
func (e *Engine) Render(name string, data any, out ...io.Writer) (string, error) {
	if strings.Contains(name, "{{") || strings.Contains(name, "{%") {
		return e.RenderString(name, data, out...)
	}
	return e.RenderTemplate(name, data, out...)
}

// RenderTemplate renders a named template, appending the engine extension
// when name lacks it. Parsed templates are cached.
func (e *Engine) RenderTemplate(name string, data any, out ...io.Writer) (string, error) {
	if e == nil || e.set == nil {
		return "", errNilEngine
	}
	path := name
	if !strings.HasSuffix(path, e.ext) {
		path += e.ext
	}

	tmpl, err := e.lookup(path)
	if err != nil {
		return "", err
	}
	rendered, err := e.execute(tmpl, data, out)
	if err != nil {
		e.logger.Debug().Err(err).Str("template", path).Msg("template execution failed")
		return "", fmt.Errorf("gotemplate: execute template %q: %w", path, err)
	}
	return rendered, nil
}

// RenderString parses and renders templateContent. The parsed template is not
// cached.
func (e *Engine) RenderString(templateContent string, data any, out ...io.Writer) (string, error) {
	if e == nil || e.set == nil {
		return "", errNilEngine
	}
	tmpl, err := e.set.FromString(templateContent)
	if err != nil {
		return "", fmt.Errorf("gotemplate: parse template string: %w", err)
	}
	rendered, err := e.execute(tmpl, data, out)
	if err != nil {
		return "", fmt.Errorf("gotemplate: execute template string: %w", err)
	}
	return rendered, nil
}

// execute renders with a fresh order index layered over the globals' one and
// copies the result to every non-nil writer.
func (e *Engine) execute(tmpl *pongo2.Template, data any, out []io.Writer) (string, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	order := newOrderIndex(e.globalOrder)
	ctx, err := order.context(data)
	if err != nil {
		return "", fmt.Errorf("convert data: %w", err)
	}
	ctx[orderIndexKey] = order
	if _, shadowed := ctx[template.HelperName]; !shadowed {
		ctx[template.HelperName] = order.concatCall
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteWriter(ctx, &buf); err != nil {
		return "", err
	}

	rendered := buf.String()
	for _, w := range out {
		if w == nil {
			continue
		}
		if _, err := io.WriteString(w, rendered); err != nil {
			return "", fmt.Errorf("write output: %w", err)
		}
	}
	return rendered, nil
}

// RegisterFilter installs fn as a process wide pongo2 filter. Names already
// taken are rejected.
func (e *Engine) RegisterFilter(name string, fn func(input any, param any) (any, error)) error {
	name = strings.TrimSpace(name)
	if name == "" || fn == nil {
		return errors.New("gotemplate: filter name and function required")
	}
	if pongo2.FilterExists(name) {
		return fmt.Errorf("gotemplate: filter %q already exists", name)
	}
	return pongo2.RegisterFilter(name, func(in *pongo2.Value, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
		var arg any
		if param != nil {
			arg = param.Interface()
		}
		result, err := fn(in.Interface(), arg)
		if err != nil {
			return nil, &pongo2.Error{Sender: "filter:" + name, OrigError: err}
		}
		return pongo2.AsValue(result), nil
	})
}

// GlobalContext merges data into the values every template sees. data must
// be a mapping or a struct.
func (e *Engine) GlobalContext(data any) error {
	if e == nil || e.set == nil {
		return errNilEngine
	}
	if data == nil {
		return nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	values, err := e.globalOrder.context(data)
	if err != nil {
		return fmt.Errorf("gotemplate: global data: %w", err)
	}
	e.set.Globals.Update(values)
	return nil
}

// addFunc exposes fn to templates: pongo2 filter functions become filters,
// any other function becomes a global.
func (e *Engine) addFunc(name string, fn any) error {
	if fn == nil {
		return nil
	}
	switch filter := fn.(type) {
	case pongo2.FilterFunction:
		return registerFilterOnce(name, filter)
	case func(*pongo2.Value, *pongo2.Value) (*pongo2.Value, *pongo2.Error):
		return registerFilterOnce(name, filter)
	}
	if reflect.TypeOf(fn).Kind() != reflect.Func {
		return fmt.Errorf("gotemplate: template func %q is a %T, not a function", name, fn)
	}

	e.mu.Lock()
	e.set.Globals[name] = fn
	e.mu.Unlock()
	return nil
}

func registerFilterOnce(name string, filter pongo2.FilterFunction) error {
	if pongo2.FilterExists(name) {
		return nil
	}
	if err := pongo2.RegisterFilter(name, filter); err != nil {
		return fmt.Errorf("gotemplate: register filter %q: %w", name, err)
	}
	return nil
}

func (e *Engine) lookup(path string) (*pongo2.Template, error) {
	e.mu.RLock()
	tmpl, ok := e.cache[path]
	e.mu.RUnlock()
	if ok {
		return tmpl, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if tmpl, ok := e.cache[path]; ok {
		return tmpl, nil
	}

	tmpl, err := e.set.FromFile(path)
	if err != nil {
		e.logger.Debug().Err(err).Str("template", path).Msg("template load failed")
		return nil, fmt.Errorf("gotemplate: load template %q: %w", path, err)
	}
	e.logger.Debug().Str("template", path).Msg("template cached")
	e.cache[path] = tmpl
	return tmpl, nil
}
