// Package columns discovers table columns from an item schema.
//
// A property becomes a column when its UX annotation sets render_as to
// "column" and its display mode is not hidden. Object properties without the
// marker are walked recursively so nested fields can surface as columns under
// a merged header group. Computed fields with the marker become synthetic
// string columns whose value is produced by their display_format template.
package columns
