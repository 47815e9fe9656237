package gotemplate

import (
	"fmt"

	gotpl "github.com/goliatone/go-template"

	"github.com/goliatone/go-concat/pkg/render/template"
)

var _ template.TemplateRenderer = (*gotpl.Engine)(nil)

// NewHost builds a github.com/goliatone/go-template engine with the concat
// tags and the concat function installed, so the helper is available next to
// that engine's own filters (trim, lowerfirst) and render hooks.
//
// go-template converts render data through JSON: mapping keys reach the
// helper in sorted order and numbers become floats. Use Engine when
// insertion order matters.
func NewHost(options ...gotpl.Option) (*gotpl.Engine, error) {
	if err := registerHelpers(); err != nil {
		return nil, fmt.Errorf("gotemplate: register helpers: %w", err)
	}
	opts := make([]gotpl.Option, 0, len(options)+1)
	opts = append(opts, gotpl.WithTemplateFunc(map[string]any{
		template.HelperName: concatFunc,
	}))
	opts = append(opts, options...)
	return gotpl.NewRenderer(opts...)
}
