// Package template defines the renderer-agnostic template contract that host
// engines satisfy to expose the concat helper. See the gotemplate subpackage
// for the pongo2-backed implementation.
package template
