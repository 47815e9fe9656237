package concat

import (
	"strconv"
	"strings"
)

// Named option keys accepted by ParseOptions.
const (
	OptionSeparator   = "separator"
	OptionDistinct    = "distinct"
	OptionQuotes      = "quotes"
	OptionSingleQuote = "single_quote"
	OptionRenderAll   = "render_all"
)

// DefaultSeparator joins elements when no separator option is given.
const DefaultSeparator = ","

const (
	quoteDouble = `"`
	quoteSingle = `'`
)

// Options control a single concatenation.
type Options struct {
	// Separator is inserted between consecutive elements.
	Separator string
	// Distinct keeps only the first occurrence of each element.
	Distinct bool
	// Quotes wraps every element in double quotation marks.
	Quotes bool
	// SingleQuote switches Quotes to single quotation marks. It has no effect
	// on its own.
	SingleQuote bool
	// RenderAll sends strings and sequence elements through the block
	// renderer too, not just mapping values.
	RenderAll bool
	// Escape, when set, is applied to every element that did not come out of
	// the block renderer, before quoting. Hosts use it for output escaping.
	Escape func(string) string
}

// DefaultOptions returns the options used when nothing is specified.
func DefaultOptions() Options {
	return Options{Separator: DefaultSeparator}
}

// QuoteMark returns the quotation character wrapped around each element, or
// an empty string when quoting is off.
func (o Options) QuoteMark() string {
	if !o.Quotes {
		return ""
	}
	if o.SingleQuote {
		return quoteSingle
	}
	return quoteDouble
}

// ParseOptions reads named helper options. Parsing is lenient: unknown names
// are ignored and malformed values fall back to their defaults instead of
// failing the call.
func ParseOptions(raw map[string]any) Options {
	opts := DefaultOptions()
	if len(raw) == 0 {
		return opts
	}

	if value, ok := raw[OptionSeparator]; ok && value != nil {
		if sep, ok := scalarString(value); ok {
			opts.Separator = sep
		}
	}
	opts.Distinct = parseFlag(raw, OptionDistinct)
	opts.Quotes = parseFlag(raw, OptionQuotes)
	opts.SingleQuote = parseFlag(raw, OptionSingleQuote)
	opts.RenderAll = parseFlag(raw, OptionRenderAll)
	return opts
}

func parseFlag(raw map[string]any, name string) bool {
	value, ok := raw[name]
	if !ok {
		return false
	}
	flag, ok := toBool(value)
	if !ok {
		return false
	}
	return flag
}

func toBool(value any) (bool, bool) {
	switch v := value.(type) {
	case bool:
		return v, true
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "1", "yes", "on", "t", "y":
			return true, true
		case "false", "0", "no", "off", "f", "n", "":
			return false, true
		}
		return false, false
	case int:
		return v != 0, true
	case int64:
		return v != 0, true
	case int32:
		return v != 0, true
	case uint:
		return v != 0, true
	case uint64:
		return v != 0, true
	case float64:
		return v != 0, true
	case float32:
		return v != 0, true
	}

	if s, ok := scalarString(value); ok {
		b, err := strconv.ParseBool(s)
		if err != nil {
			return false, false
		}
		return b, true
	}
	return false, false
}
