// Package template evaluates display_format strings against a data item and
// optional workflow state. Two dialects are available: Jinja (gonja, the
// default) and Django (pongo2). Evaluation never fails; errors are rendered
// inline as "[Template Error: ...]".
package template
