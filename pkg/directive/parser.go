package directive

import (
	"errors"
	"fmt"
	"strings"
)

// Reserved atoms with dedicated resolution branches.
const (
	AtomTab             = "tab"
	AtomTabs            = "tabs"
	AtomContentPanel    = "content-panel"
	AtomMedia           = "media"
	AtomImageGeneration = "image_generation"
	AtomVideoGeneration = "video_generation"
	AtomAudioGeneration = "audio_generation"
	AtomTable           = "table"
	AtomColumn          = "column"
	AtomInputSchema     = "input_schema"
)

// ErrSyntax is the sentinel wrapped by every *SyntaxError.
var ErrSyntax = errors.New("directive: syntax error")

// SyntaxError reports a malformed directive with the byte offset of the
// offending character.
type SyntaxError struct {
	Input   string
	Offset  int
	Message string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("directive: %s at offset %d in %q", e.Message, e.Offset, e.Input)
}

func (e *SyntaxError) Unwrap() error {
	return ErrSyntax
}

// Token is one renderer reference with its optional sibling list.
type Token struct {
	Atom     string
	Siblings []Token
}

// Chain is a dot-separated sequence of tokens, outermost first.
type Chain []Token

// IsCompound reports whether raw uses dot nesting or bracket siblings.
func IsCompound(raw string) bool {
	return strings.ContainsAny(raw, ".[")
}

// IsSpecial reports whether atom names a terminal special renderer.
func IsSpecial(atom string) bool {
	switch atom {
	case AtomContentPanel, AtomMedia, AtomImageGeneration, AtomVideoGeneration, AtomAudioGeneration, AtomTable:
		return true
	default:
		return false
	}
}

// HasSiblings reports whether the token carries a bracket group.
func (t Token) HasSiblings() bool {
	return len(t.Siblings) > 0
}

// String renders the token in canonical form.
func (t Token) String() string {
	if len(t.Siblings) == 0 {
		return t.Atom
	}
	parts := make([]string, len(t.Siblings))
	for idx, sibling := range t.Siblings {
		parts[idx] = sibling.String()
	}
	return t.Atom + "[" + strings.Join(parts, ",") + "]"
}

// String renders the chain in canonical form.
func (c Chain) String() string {
	parts := make([]string, len(c))
	for idx, token := range c {
		parts[idx] = token.String()
	}
	return strings.Join(parts, ".")
}

// Parse parses a render_as value. Surrounding whitespace around atoms and
// separators is ignored. An empty input yields an empty chain.
func Parse(input string) (Chain, error) {
	p := &parser{input: input}
	p.skipSpace()
	if p.done() {
		return nil, nil
	}

	chain, err := p.chain()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if !p.done() {
		return nil, p.errorf("unexpected %q", p.peek())
	}
	return chain, nil
}

type parser struct {
	input string
	pos   int
}

func (p *parser) chain() (Chain, error) {
	var out Chain
	for {
		token, err := p.token()
		if err != nil {
			return nil, err
		}
		out = append(out, token)

		p.skipSpace()
		if p.peek() != '.' {
			return out, nil
		}
		p.pos++
	}
}

func (p *parser) token() (Token, error) {
	p.skipSpace()
	atom, err := p.atom()
	if err != nil {
		return Token{}, err
	}
	token := Token{Atom: atom}

	p.skipSpace()
	if p.peek() != '[' {
		return token, nil
	}
	p.pos++

	siblings, err := p.siblings()
	if err != nil {
		return Token{}, err
	}
	token.Siblings = siblings
	return token, nil
}

func (p *parser) siblings() ([]Token, error) {
	var out []Token
	for {
		p.skipSpace()
		if p.done() {
			return nil, p.errorf("missing closing ']'")
		}
		token, err := p.token()
		if err != nil {
			return nil, err
		}
		out = append(out, token)

		p.skipSpace()
		switch p.peek() {
		case ',':
			p.pos++
		case ']':
			p.pos++
			return out, nil
		case 0:
			return nil, p.errorf("missing closing ']'")
		case '.':
			return nil, p.errorf("unexpected '.' inside sibling list")
		default:
			return nil, p.errorf("unexpected %q inside sibling list", p.peek())
		}
	}
}

func (p *parser) atom() (string, error) {
	start := p.pos
	for !p.done() && isIdentRune(p.input[p.pos], p.pos == start) {
		p.pos++
	}
	if p.pos == start {
		if p.done() {
			return "", p.errorf("empty token")
		}
		switch ch := p.peek(); ch {
		case '.', ',', ']', '[':
			return "", p.errorf("empty token before %q", ch)
		default:
			return "", p.errorf("invalid character %q", ch)
		}
	}
	return p.input[start:p.pos], nil
}

func (p *parser) skipSpace() {
	for !p.done() {
		switch p.input[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

func (p *parser) peek() byte {
	if p.done() {
		return 0
	}
	return p.input[p.pos]
}

func (p *parser) done() bool {
	return p.pos >= len(p.input)
}

func (p *parser) errorf(format string, args ...any) error {
	return &SyntaxError{
		Input:   p.input,
		Offset:  p.pos,
		Message: fmt.Sprintf(format, args...),
	}
}

func isIdentRune(ch byte, first bool) bool {
	switch {
	case ch >= 'a' && ch <= 'z', ch >= 'A' && ch <= 'Z', ch == '_':
		return true
	case ch >= '0' && ch <= '9', ch == '-':
		return !first
	default:
		return false
	}
}
