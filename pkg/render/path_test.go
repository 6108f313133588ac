package render

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestPath_StringAndParse(t *testing.T) {
	cases := []struct {
		path Path
		want string
	}{
		{path: Path{}, want: ""},
		{path: Path{}.Key("items").Index(0).Key("name"), want: "items[0].name"},
		{path: Path{}.Index(2), want: "[2]"},
		{path: Path{}.Key("meta").Key("content.type"), want: `meta["content.type"]`},
		{path: Path{}.Key("rows").Key("0"), want: `rows["0"]`},
	}
	for _, tc := range cases {
		t.Run(tc.want, func(t *testing.T) {
			if got := tc.path.String(); got != tc.want {
				t.Fatalf("string mismatch: want %q got %q", tc.want, got)
			}
			parsed, err := ParsePath(tc.want)
			if err != nil {
				t.Fatalf("parse %q: %v", tc.want, err)
			}
			if diff := cmp.Diff(tc.path, parsed); diff != "" {
				t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParsePath_AlternateForms(t *testing.T) {
	want := Path{}.Key("items").Index(3).Key("a/b")
	for _, raw := range []string{"#/items/3/a~1b", "/items/3/a~1b", `$.items[3]["a/b"]`} {
		got, err := ParsePath(raw)
		if err != nil {
			t.Fatalf("parse %q: %v", raw, err)
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("%q mismatch (-want +got):\n%s", raw, diff)
		}
	}
}

func TestParsePath_Invalid(t *testing.T) {
	for _, raw := range []string{"a..b", "a.", "a[x]", "a[1", "a[0]b", `a["x]`} {
		if _, err := ParsePath(raw); err == nil {
			t.Fatalf("expected error for %q", raw)
		}
	}
}

func TestPath_JSON(t *testing.T) {
	path := Path{}.Key("items").Index(1)
	payload, err := json.Marshal(path)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(payload) != `["items",1]` {
		t.Fatalf("payload mismatch: %s", payload)
	}

	var fromArray, fromString Path
	if err := json.Unmarshal(payload, &fromArray); err != nil {
		t.Fatalf("unmarshal array: %v", err)
	}
	if err := json.Unmarshal([]byte(`"items[1]"`), &fromString); err != nil {
		t.Fatalf("unmarshal string: %v", err)
	}
	if !fromArray.Equal(path) || !fromString.Equal(path) {
		t.Fatalf("decoded paths mismatch: %v %v", fromArray, fromString)
	}
}
