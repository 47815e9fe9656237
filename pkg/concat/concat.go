package concat

import (
	"errors"
	"strings"
)

// Scope is the binding context handed to a BlockRenderer. This holds the
// current value as given, so ordered containers stay ordered. Fields holds the
// entries of a mapping value by name; nested values are not converted.
type Scope struct {
	This   any
	Fields map[string]any
}

// BlockRenderer renders the nested block template for one value. Hosts
// implement it on top of their own rendering machinery.
type BlockRenderer func(scope Scope) (string, error)

// Concat parses raw named options and concatenates args.
func Concat(args []any, options map[string]any, block BlockRenderer) (string, error) {
	return Concatenate(args, ParseOptions(options), block)
}

// Concatenate flattens args into a single string. Every argument is classified
// before anything is rendered so a bad argument never yields partial output.
// Block render failures are returned as *BlockRenderError.
func Concatenate(args []any, opts Options, block BlockRenderer) (string, error) {
	values := make([]Value, 0, len(args))
	for i, arg := range args {
		value, err := Classify(arg)
		if err != nil {
			return "", argumentError(err, i)
		}
		values = append(values, value)
	}

	buf := outputBuffer{quote: opts.QuoteMark(), escape: opts.Escape}
	for i, value := range values {
		if err := buf.add(value, opts, block); err != nil {
			var blockErr *BlockRenderError
			if errors.As(err, &blockErr) {
				return "", err
			}
			return "", argumentError(err, i)
		}
	}

	items := buf.items
	if opts.Distinct {
		items = Distinct(items)
	}
	return Join(items, opts.Separator), nil
}

// Distinct drops repeated elements, keeping the first occurrence and the
// relative order of the survivors.
func Distinct(items []string) []string {
	if len(items) == 0 {
		return items
	}
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		if _, exists := seen[item]; exists {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}

// Join inserts sep between consecutive items.
func Join(items []string, sep string) string {
	return strings.Join(items, sep)
}

type outputBuffer struct {
	quote  string
	escape func(string) string
	items  []string
}

// pushRaw escapes a value that did not come from the block renderer and
// pushes it.
func (b *outputBuffer) pushRaw(s string, dropEmpty bool) {
	if b.escape != nil {
		s = b.escape(s)
	}
	b.push(s, dropEmpty)
}

// push quotes s and appends it. With dropEmpty set, values that are still
// empty after quoting are discarded.
func (b *outputBuffer) push(s string, dropEmpty bool) {
	if b.quote != "" {
		s = b.quote + s + b.quote
	}
	if dropEmpty && s == "" {
		return
	}
	b.items = append(b.items, s)
}

func (b *outputBuffer) add(value Value, opts Options, block BlockRenderer) error {
	renderAll := block != nil && opts.RenderAll

	switch value.Kind() {
	case KindNull:
		return nil
	case KindString:
		if !renderAll {
			b.pushRaw(value.Str(), true)
			return nil
		}
		return b.render(block, value.Str())
	case KindSequence:
		for _, item := range value.Seq() {
			if renderAll {
				if err := b.render(block, item); err != nil {
					return err
				}
				continue
			}
			s, err := displayString(item)
			if err != nil {
				return err
			}
			b.pushRaw(s, false)
		}
		return nil
	case KindMapping:
		for _, entry := range value.Map().Entries() {
			if block == nil {
				b.pushRaw(entry.Key, false)
				continue
			}
			if err := b.render(block, entry.Value); err != nil {
				return err
			}
		}
		return nil
	}
	return nil
}

func (b *outputBuffer) render(block BlockRenderer, value any) error {
	out, err := block(scopeFor(value))
	if err != nil {
		return &BlockRenderError{Err: err}
	}
	b.push(out, true)
	return nil
}

func scopeFor(value any) Scope {
	scope := Scope{This: value}
	if classified, err := Classify(value); err == nil && classified.Kind() == KindMapping {
		entries := classified.Map().Entries()
		scope.Fields = make(map[string]any, len(entries))
		for _, entry := range entries {
			scope.Fields[entry.Key] = entry.Value
		}
	}
	return scope
}
