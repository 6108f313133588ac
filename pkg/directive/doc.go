// Package directive parses compound `render_as` values.
//
// Grammar:
//
//	render_as := chain
//	chain     := token ("." chain)?
//	token     := atom ("[" siblings "]")?
//	siblings  := token ("," siblings)?
//	atom      := identifier
//
// A chain nests left to right: "tab.media" renders a tab whose child is the
// media renderer. A bracket group lists sibling renderers attached as children
// of the token; the reserved sibling `input_schema` groups the remaining
// siblings under an input-schema composer. Parsing is strict: unmatched
// brackets, empty tokens, stray separators and dots inside a sibling list are
// reported as *SyntaxError.
package directive
