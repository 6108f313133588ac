package ux

import "testing"

func TestNormalizeDisplay(t *testing.T) {
	cases := []struct {
		name string
		raw  any
		want DisplayMode
	}{
		{name: "absent", raw: nil, want: DisplayVisible},
		{name: "visible", raw: "visible", want: DisplayVisible},
		{name: "hidden", raw: "hidden", want: DisplayHidden},
		{name: "hidden mixed case", raw: "  Hidden ", want: DisplayHidden},
		{name: "passthrough", raw: "passthrough", want: DisplayPassthrough},
		{name: "unknown", raw: "sometimes", want: DisplayVisible},
		{name: "false", raw: false, want: DisplayHidden},
		{name: "true", raw: true, want: DisplayVisible},
		{name: "number", raw: 3.0, want: DisplayVisible},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := NormalizeDisplay(tc.raw); got != tc.want {
				t.Fatalf("NormalizeDisplay(%v) = %q, want %q", tc.raw, got, tc.want)
			}
		})
	}
}

func TestShouldShortCircuit(t *testing.T) {
	if !ShouldShortCircuit(nil, Config{}) {
		t.Fatalf("nil data without input_type should short-circuit")
	}
	if ShouldShortCircuit(nil, Config{InputType: "text"}) {
		t.Fatalf("inputs must render without data")
	}
	if ShouldShortCircuit("", Config{}) {
		t.Fatalf("empty string is data")
	}
}
