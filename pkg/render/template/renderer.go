package template

import (
	"io"
)

// HelperName is the name the concat helper is registered under in host
// engines: the inline tag, the global function and the prefix of the block
// tag ("concatblock").
const HelperName = "concat"

// TemplateRenderer mirrors the github.com/goliatone/go-template engine
// contract. Engines implementing it expose the concat helper to every
// template they render.
type TemplateRenderer interface {
	Render(name string, data any, out ...io.Writer) (string, error)
	RenderTemplate(name string, data any, out ...io.Writer) (string, error)
	RenderString(templateContent string, data any, out ...io.Writer) (string, error)
	RegisterFilter(name string, fn func(input any, param any) (any, error)) error
	GlobalContext(data any) error
}
