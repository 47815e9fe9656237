package concat

import (
	core "github.com/goliatone/go-concat/pkg/concat"
	"github.com/goliatone/go-concat/pkg/render/template/gotemplate"
)

// Options aliases the helper options so callers need only the root package.
type Options = core.Options

// Mapping aliases the insertion ordered mapping accepted by the helper.
type Mapping = core.Mapping

// Entry aliases a single mapping entry.
type Entry = core.Entry

// Scope aliases the value handed to a block renderer.
type Scope = core.Scope

// BlockRenderer aliases the block callback signature.
type BlockRenderer = core.BlockRenderer

// EngineOption aliases the template engine options.
type EngineOption = gotemplate.Option

// Concat joins args using the raw named options, rendering each value through
// block when one is given.
func Concat(args []any, options map[string]any, block BlockRenderer) (string, error) {
	return core.Concat(args, options, block)
}

// NewEngine returns a template engine with the concat tags, the concat
// function and the sanitize filter registered.
func NewEngine(options ...EngineOption) (*gotemplate.Engine, error) {
	return gotemplate.New(options...)
}
