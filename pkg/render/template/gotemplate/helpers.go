package gotemplate

import (
	"errors"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"
	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-concat/pkg/concat"
	"github.com/goliatone/go-concat/pkg/render/template"
)

const (
	blockTagName    = template.HelperName + "block"
	blockEndTagName = "end" + blockTagName
	thisBinding     = "this"

	sanitizeFilterName = "sanitize"
)

var (
	helpersOnce sync.Once
	helpersErr  error

	sanitizePolicyOnce sync.Once
	sanitizePolicy     *bluemonday.Policy
)

// registerHelpers installs the concat tags and the sanitize filter. pongo2
// keeps tags and filters in process-wide registries so this runs once.
func registerHelpers() error {
	helpersOnce.Do(func() {
		helpersErr = errors.Join(
			registerTag(template.HelperName, concatTagParser),
			registerTag(blockTagName, concatBlockTagParser),
			registerFilterOnce(sanitizeFilterName, filterSanitize),
		)
	})
	return helpersErr
}

func registerTag(name string, parser pongo2.TagParser) error {
	if err := pongo2.RegisterTag(name, parser); err != nil {
		return pongo2.ReplaceTag(name, parser)
	}
	return nil
}

// concatFunc backs {{ concat(a, b) }} in template sets that do not seed a
// per-render order index. Function calls cannot take named arguments so the
// defaults apply.
func concatFunc(args ...any) (string, error) {
	return concat.Concatenate(args, concat.DefaultOptions(), nil)
}

type concatOption struct {
	name  string
	value pongo2.IEvaluator
}

type tagConcatNode struct {
	position *pongo2.Token
	args     []pongo2.IEvaluator
	options  []concatOption
	wrapper  *pongo2.NodeWrapper
}

// Execute evaluates the arguments, renders the optional block once per value
// in a fresh child context and writes the joined result.
func (node *tagConcatNode) Execute(ctx *pongo2.ExecutionContext, writer pongo2.TemplateWriter) *pongo2.Error {
	order := orderIndexFor(ctx)
	args := make([]any, 0, len(node.args))
	for _, arg := range node.args {
		value, err := arg.Evaluate(ctx)
		if err != nil {
			return err
		}
		args = append(args, order.restore(value.Interface()))
	}

	raw := make(map[string]any, len(node.options))
	for _, option := range node.options {
		value, err := option.value.Evaluate(ctx)
		if err != nil {
			return err
		}
		raw[option.name] = value.Interface()
	}
	opts := concat.ParseOptions(raw)
	if ctx.Autoescape {
		opts.Escape = escapeHTML
	}

	var block concat.BlockRenderer
	if node.wrapper != nil {
		block = func(scope concat.Scope) (string, error) {
			return node.renderBlock(ctx, order, scope)
		}
	}

	out, err := concat.Concatenate(args, opts, block)
	if err != nil {
		var perr *pongo2.Error
		if errors.As(err, &perr) {
			return perr
		}
		return ctx.OrigError(err, node.position)
	}

	if _, err := writer.WriteString(out); err != nil {
		return ctx.OrigError(err, node.position)
	}
	return nil
}

// renderBlock runs the body in a child context with the value bound to
// "this" and, for mappings, each entry bound by name.
func (node *tagConcatNode) renderBlock(parent *pongo2.ExecutionContext, order *orderIndex, scope concat.Scope) (string, error) {
	blockCtx := pongo2.NewChildExecutionContext(parent)
	for key, value := range scope.Fields {
		flat, err := order.flatten(value)
		if err != nil {
			return "", err
		}
		blockCtx.Private[key] = flat
	}
	this, err := order.flatten(scope.This)
	if err != nil {
		return "", err
	}
	blockCtx.Private[thisBinding] = this

	var buf strings.Builder
	if err := node.wrapper.Execute(blockCtx, &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// concatTagParser parses {% concat a b c separator=", " distinct=true %}.
func concatTagParser(doc *pongo2.Parser, start *pongo2.Token, arguments *pongo2.Parser) (pongo2.INodeTag, *pongo2.Error) {
	node := &tagConcatNode{position: start}
	if err := parseConcatArguments(node, arguments); err != nil {
		return nil, err
	}
	return node, nil
}

// concatBlockTagParser parses {% concatblock ... %}body{% endconcatblock %}.
func concatBlockTagParser(doc *pongo2.Parser, start *pongo2.Token, arguments *pongo2.Parser) (pongo2.INodeTag, *pongo2.Error) {
	node := &tagConcatNode{position: start}
	if err := parseConcatArguments(node, arguments); err != nil {
		return nil, err
	}

	wrapper, endargs, err := doc.WrapUntilTag(blockEndTagName)
	if err != nil {
		return nil, err
	}
	if endargs.Count() > 0 {
		return nil, endargs.Error("Arguments not allowed here.", nil)
	}
	node.wrapper = wrapper
	return node, nil
}

func parseConcatArguments(node *tagConcatNode, arguments *pongo2.Parser) *pongo2.Error {
	for arguments.Remaining() > 0 {
		if arguments.PeekType(pongo2.TokenIdentifier) != nil && arguments.PeekN(1, pongo2.TokenSymbol, "=") != nil {
			name := arguments.MatchType(pongo2.TokenIdentifier)
			arguments.Match(pongo2.TokenSymbol, "=")
			value, err := arguments.ParseExpression()
			if err != nil {
				return err
			}
			node.options = append(node.options, concatOption{name: name.Val, value: value})
			continue
		}

		if len(node.options) > 0 {
			return arguments.Error("Positional arguments must come before named options.", nil)
		}
		arg, err := arguments.ParseExpression()
		if err != nil {
			return err
		}
		node.args = append(node.args, arg)
	}
	return nil
}

func escapeHTML(s string) string {
	value, err := pongo2.ApplyFilter("escape", pongo2.AsValue(s), nil)
	if err != nil {
		return s
	}
	return value.String()
}

// filterSanitize strips markup outside the user generated content policy and
// marks the result safe so autoescaping leaves the allowed tags alone.
func filterSanitize(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	if in.IsNil() {
		return pongo2.AsValue(""), nil
	}
	cleaned := strings.TrimSpace(sanitizer().Sanitize(in.String()))
	return pongo2.AsSafeValue(cleaned), nil
}

func sanitizer() *bluemonday.Policy {
	sanitizePolicyOnce.Do(func() {
		sanitizePolicy = bluemonday.UGCPolicy()
	})
	return sanitizePolicy
}
