package ux

import "strings"

// DisplayMode is the normalised tri-state of the `display` annotation.
type DisplayMode string

const (
	DisplayVisible     DisplayMode = "visible"
	DisplayHidden      DisplayMode = "hidden"
	DisplayPassthrough DisplayMode = "passthrough"
)

// NormalizeDisplay maps a raw display annotation onto a DisplayMode. Absent or
// unrecognised values resolve to DisplayVisible. Booleans are accepted so
// `display: false` behaves like `display: "hidden"`.
func NormalizeDisplay(raw any) DisplayMode {
	switch v := raw.(type) {
	case nil:
		return DisplayVisible
	case DisplayMode:
		return NormalizeDisplay(string(v))
	case bool:
		if v {
			return DisplayVisible
		}
		return DisplayHidden
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case string(DisplayHidden):
			return DisplayHidden
		case string(DisplayPassthrough):
			return DisplayPassthrough
		default:
			return DisplayVisible
		}
	default:
		return DisplayVisible
	}
}

// Hidden reports whether the mode removes the value from the render tree.
func (m DisplayMode) Hidden() bool {
	return m == DisplayHidden
}

// ShouldShortCircuit implements the null-data rule: a nil value resolves to
// nothing unless the node is an input, since inputs manage their own value.
func ShouldShortCircuit(data any, cfg Config) bool {
	return data == nil && strings.TrimSpace(cfg.InputType) == ""
}
