package template

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/flosch/pongo2/v6"
)

// Django executes templates with pongo2. Compiled templates are cached by
// source.
type Django struct {
	set *pongo2.TemplateSet

	mu    sync.RWMutex
	cache map[string]*pongo2.Template
}

// bannedDjangoTags would let a display_format template pull in other files.
var bannedDjangoTags = []string{"include", "ssi", "extends", "import"}

var errNoTemplateFiles = errors.New("template: file templates are disabled")

// NewDjango constructs a Django engine with the trim and lowerfirst filters
// registered. Templates are strings only: the set has no filesystem loader and
// the file-loading tags are banned.
func NewDjango() *Django {
	registerDefaultFilters()
	set := pongo2.NewSet("uxrender", noFileLoader{})
	for _, tag := range bannedDjangoTags {
		if err := set.BanTag(tag); err != nil {
			panic(fmt.Sprintf("template: ban tag %q: %v", tag, err))
		}
	}
	return &Django{
		set:   set,
		cache: make(map[string]*pongo2.Template),
	}
}

type noFileLoader struct{}

func (noFileLoader) Abs(_, name string) string { return name }

func (noFileLoader) Get(string) (io.Reader, error) { return nil, errNoTemplateFiles }

func (d *Django) Name() string { return string(DialectDjango) }

// Execute compiles (or reuses) source and renders it against ctx.
func (d *Django) Execute(source string, ctx map[string]any) (string, error) {
	tpl, err := d.compile(source)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tpl.ExecuteWriter(pongo2.Context(ctx), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (d *Django) compile(source string) (*pongo2.Template, error) {
	d.mu.RLock()
	tpl, ok := d.cache[source]
	d.mu.RUnlock()
	if ok {
		return tpl, nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if tpl, ok := d.cache[source]; ok {
		return tpl, nil
	}
	compiled, err := d.set.FromString(source)
	if err != nil {
		return nil, err
	}
	d.cache[source] = compiled
	return compiled, nil
}

var filtersOnce sync.Once

func registerDefaultFilters() {
	filtersOnce.Do(func() {
		if !pongo2.FilterExists("trim") {
			_ = pongo2.RegisterFilter("trim", filterTrim)
		}
		if !pongo2.FilterExists("lowerfirst") {
			_ = pongo2.RegisterFilter("lowerfirst", filterLowerFirst)
		}
	})
}

func filterTrim(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	if in.Len() <= 0 {
		return pongo2.AsValue(""), nil
	}
	return pongo2.AsValue(strings.TrimSpace(in.String())), nil
}

func filterLowerFirst(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	if in.Len() <= 0 {
		return pongo2.AsValue(""), nil
	}
	t := in.String()
	idx := strings.IndexFunc(t, func(r rune) bool { return !strings.ContainsRune(" \t\n\r", r) })
	if idx < 0 {
		return pongo2.AsValue(t), nil
	}
	r, size := utf8.DecodeRuneInString(t[idx:])
	return pongo2.AsValue(t[:idx] + strings.ToLower(string(r)) + t[idx+size:]), nil
}
