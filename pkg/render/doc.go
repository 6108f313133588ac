// Package render resolves a data value and its annotated schema into a tree
// of render instructions.
//
// Resolution is a pure function of (data, schema, path, UX override, state).
// The Resolver applies a fixed precedence: the null short-circuit, compound
// render_as chains and sibling groups, tab roles, special renderers (including
// the table column plan), display_format templates, inputs, type-based
// containers, input_schema composition, and finally the display-mode fallback.
// The resulting Node values carry their Path, the only stable identity a
// consumer should rely on.
package render
