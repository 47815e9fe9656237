// Package concat joins strings, sequences and ordered mappings into a single
// delimited string. It is the engine-agnostic core behind the "concat"
// template helper: hosts classify their argument values, parse named options
// with ParseOptions and hand an optional BlockRenderer for nested templates.
//
// Processing happens in three steps. Arguments are flattened into an output
// buffer in argument order (sequence elements by index, mapping entries by
// insertion order), each element is optionally quoted, duplicates are
// optionally removed keeping the first occurrence, and the survivors are
// joined with the separator.
//
// Mappings contribute their keys unless a block renderer is supplied, in which
// case every value is rendered through the block. Strings and sequence
// elements only go through the block when Options.RenderAll is set.
package concat
