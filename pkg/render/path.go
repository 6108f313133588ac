package render

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Segment is one step of a Path: an object key or an array index.
type Segment struct {
	Key     string
	Index   int
	IsIndex bool
}

// Path is the sequence of keys and indexes from the resolution root.
type Path []Segment

// Key returns a copy of p extended by an object key.
func (p Path) Key(key string) Path {
	return p.with(Segment{Key: key})
}

// Index returns a copy of p extended by an array index.
func (p Path) Index(idx int) Path {
	return p.with(Segment{Index: idx, IsIndex: true})
}

func (p Path) with(segment Segment) Path {
	out := make(Path, len(p), len(p)+1)
	copy(out, p)
	return append(out, segment)
}

// Equal reports whether both paths name the same location.
func (p Path) Equal(other Path) bool {
	if len(p) != len(other) {
		return false
	}
	for idx := range p {
		if p[idx] != other[idx] {
			return false
		}
	}
	return true
}

// HasPrefix reports whether prefix is an ancestor of (or equal to) p.
func (p Path) HasPrefix(prefix Path) bool {
	return len(prefix) <= len(p) && p[:len(prefix)].Equal(prefix)
}

// String renders the path as `items[0].name`. Keys that are not plain
// identifiers are quoted in brackets: `meta["content-type"]`.
func (p Path) String() string {
	var b strings.Builder
	for _, segment := range p {
		switch {
		case segment.IsIndex:
			b.WriteString("[")
			b.WriteString(strconv.Itoa(segment.Index))
			b.WriteString("]")
		case isPlainKey(segment.Key):
			if b.Len() > 0 {
				b.WriteString(".")
			}
			b.WriteString(segment.Key)
		default:
			b.WriteString("[")
			b.WriteString(strconv.Quote(segment.Key))
			b.WriteString("]")
		}
	}
	return b.String()
}

// MarshalJSON encodes the path as an array of strings and integers.
func (p Path) MarshalJSON() ([]byte, error) {
	out := make([]any, len(p))
	for idx, segment := range p {
		if segment.IsIndex {
			out[idx] = segment.Index
		} else {
			out[idx] = segment.Key
		}
	}
	return json.Marshal(out)
}

// UnmarshalJSON accepts either the array form produced by MarshalJSON or a
// string understood by ParsePath.
func (p *Path) UnmarshalJSON(raw []byte) error {
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		parsed, err := ParsePath(text)
		if err != nil {
			return err
		}
		*p = parsed
		return nil
	}

	var items []any
	if err := json.Unmarshal(raw, &items); err != nil {
		return fmt.Errorf("render: path must be a string or array: %w", err)
	}
	out := make(Path, 0, len(items))
	for _, item := range items {
		switch value := item.(type) {
		case string:
			out = append(out, Segment{Key: value})
		case float64:
			if value < 0 || value != float64(int(value)) {
				return fmt.Errorf("render: invalid path index %v", value)
			}
			out = append(out, Segment{Index: int(value), IsIndex: true})
		default:
			return fmt.Errorf("render: invalid path segment %v", item)
		}
	}
	*p = out
	return nil
}

// ParsePath parses the String form (`items[0].name`, `meta["a.b"]`) as well
// as JSON pointers (`#/items/0/name`, `/items/0`) and `$.`-rooted paths. In
// pointer form purely numeric segments become indexes.
func ParsePath(raw string) (Path, error) {
	clean := strings.TrimSpace(raw)
	switch {
	case clean == "", clean == "$", clean == "#", clean == "/":
		return Path{}, nil
	case strings.HasPrefix(clean, "#/"), strings.HasPrefix(clean, "/"):
		return parsePointer(strings.TrimPrefix(strings.TrimPrefix(clean, "#"), "/")), nil
	case strings.HasPrefix(clean, "$."):
		clean = strings.TrimPrefix(clean, "$.")
	case strings.HasPrefix(clean, "$["):
		clean = strings.TrimPrefix(clean, "$")
	}
	return parseDotted(clean)
}

func parsePointer(pointer string) Path {
	out := Path{}
	for _, part := range strings.Split(pointer, "/") {
		part = strings.ReplaceAll(part, "~1", "/")
		part = strings.ReplaceAll(part, "~0", "~")
		if idx, err := strconv.Atoi(part); err == nil && idx >= 0 {
			out = append(out, Segment{Index: idx, IsIndex: true})
			continue
		}
		out = append(out, Segment{Key: part})
	}
	return out
}

func parseDotted(input string) (Path, error) {
	out := Path{}
	pos := 0
	expectKey := true
	for pos < len(input) {
		switch ch := input[pos]; {
		case ch == '.':
			if expectKey {
				return nil, fmt.Errorf("render: empty path segment at offset %d in %q", pos, input)
			}
			pos++
			expectKey = true
			if pos == len(input) {
				return nil, fmt.Errorf("render: trailing '.' in %q", input)
			}
		case ch == '[':
			end, segment, err := parseBracket(input, pos)
			if err != nil {
				return nil, err
			}
			out = append(out, segment)
			pos = end
			expectKey = false
		default:
			if !expectKey {
				return nil, fmt.Errorf("render: expected '.' or '[' at offset %d in %q", pos, input)
			}
			start := pos
			for pos < len(input) && input[pos] != '.' && input[pos] != '[' {
				pos++
			}
			out = append(out, Segment{Key: input[start:pos]})
			expectKey = false
		}
	}
	return out, nil
}

func parseBracket(input string, start int) (int, Segment, error) {
	closeIdx := strings.IndexByte(input[start:], ']')
	if closeIdx < 0 {
		return 0, Segment{}, fmt.Errorf("render: missing ']' in %q", input)
	}
	body := input[start+1 : start+closeIdx]
	if strings.HasPrefix(body, `"`) {
		// quoted keys may contain ']' so re-scan for the closing quote
		quoted, err := strconv.QuotedPrefix(input[start+1:])
		if err != nil {
			return 0, Segment{}, fmt.Errorf("render: invalid quoted key in %q: %w", input, err)
		}
		end := start + 1 + len(quoted)
		if end >= len(input) || input[end] != ']' {
			return 0, Segment{}, fmt.Errorf("render: missing ']' after quoted key in %q", input)
		}
		key, _ := strconv.Unquote(quoted)
		return end + 1, Segment{Key: key}, nil
	}
	idx, err := strconv.Atoi(strings.TrimSpace(body))
	if err != nil || idx < 0 {
		return 0, Segment{}, fmt.Errorf("render: invalid index %q in %q", body, input)
	}
	return start + closeIdx + 1, Segment{Index: idx, IsIndex: true}, nil
}

func isPlainKey(key string) bool {
	if key == "" {
		return false
	}
	if _, err := strconv.Atoi(key); err == nil {
		return false
	}
	for _, r := range key {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
		default:
			return false
		}
	}
	return true
}
