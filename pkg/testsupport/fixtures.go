package testsupport

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Object builds an insertion-ordered object from alternating key/value pairs.
// It panics on malformed input to keep table-driven fixtures concise.
func Object(pairs ...any) *orderedmap.OrderedMap[string, any] {
	if len(pairs)%2 != 0 {
		panic("testsupport: Object requires key/value pairs")
	}
	out := orderedmap.New[string, any]()
	for idx := 0; idx < len(pairs); idx += 2 {
		key, ok := pairs[idx].(string)
		if !ok {
			panic(fmt.Sprintf("testsupport: key at %d is %T, want string", idx, pairs[idx]))
		}
		out.Set(key, pairs[idx+1])
	}
	return out
}

// MustReadFixture reads a fixture file relative to the calling package.
func MustReadFixture(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read fixture %s: %v", path, err)
	}
	return data
}

// MustUnmarshal decodes a JSON fixture into a plain Go value.
func MustUnmarshal(t *testing.T, path string) any {
	t.Helper()
	var out any
	if err := json.Unmarshal(MustReadFixture(t, path), &out); err != nil {
		t.Fatalf("unmarshal fixture %s: %v", path, err)
	}
	return out
}

// WriteGolden writes arbitrary data to a golden file when UPDATE_GOLDENS is set.
func WriteGolden(t *testing.T, path string, value any) {
	t.Helper()

	if os.Getenv("UPDATE_GOLDENS") == "" {
		return
	}
	payload, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		t.Fatalf("marshal golden: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
}

// CompareGolden returns a diff string if the values differ.
func CompareGolden(want, got any) string {
	return cmp.Diff(want, got)
}

// MustReadGolden reads a golden file and returns its raw bytes.
func MustReadGolden(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}
