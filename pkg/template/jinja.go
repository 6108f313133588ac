package template

import (
	"errors"
	"fmt"
	"sync"

	"github.com/nikolalohinski/gonja"
	"github.com/nikolalohinski/gonja/config"
	"github.com/nikolalohinski/gonja/nodes"
	"github.com/nikolalohinski/gonja/parser"
)

// Statements that would let a template reach outside its own source.
var disabledJinjaStatements = []string{"include", "extends", "import", "from"}

type compiledJinja interface {
	Execute(ctx map[string]interface{}) (string, error)
}

// Jinja executes templates with gonja. Compiled templates are cached by source.
type Jinja struct {
	once    sync.Once
	env     *gonja.Environment
	initErr error

	mu    sync.RWMutex
	cache map[string]compiledJinja
}

// NewJinja constructs a Jinja engine. The environment is built lazily on first
// use.
func NewJinja() *Jinja {
	return &Jinja{cache: make(map[string]compiledJinja)}
}

func (j *Jinja) Name() string { return string(DialectJinja) }

// Execute compiles (or reuses) source and renders it against ctx.
func (j *Jinja) Execute(source string, ctx map[string]any) (string, error) {
	tpl, err := j.compile(source)
	if err != nil {
		return "", err
	}
	return tpl.Execute(ctx)
}

// Cached returns the number of compiled templates held by the engine.
func (j *Jinja) Cached() int {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return len(j.cache)
}

func (j *Jinja) compile(source string) (compiledJinja, error) {
	env, err := j.environment()
	if err != nil {
		return nil, err
	}

	j.mu.RLock()
	tpl, ok := j.cache[source]
	j.mu.RUnlock()
	if ok {
		return tpl, nil
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	if tpl, ok := j.cache[source]; ok {
		return tpl, nil
	}
	compiled, err := env.FromString(source)
	if err != nil {
		return nil, err
	}
	j.cache[source] = compiled
	return compiled, nil
}

func (j *Jinja) environment() (*gonja.Environment, error) {
	j.once.Do(func() {
		env := gonja.NewEnvironment(config.DefaultConfig, gonja.DefaultLoader)
		for _, keyword := range disabledJinjaStatements {
			if !env.Statements.Exists(keyword) {
				continue
			}
			name := keyword
			err := env.Statements.Replace(name, func(*parser.Parser, *parser.Parser) (nodes.Statement, error) {
				return nil, fmt.Errorf("keyword[%s] has been disabled", name)
			})
			if err != nil {
				j.initErr = fmt.Errorf("template: init jinja env: %w", err)
				return
			}
		}
		j.env = env
	})
	if j.env == nil && j.initErr == nil {
		return nil, errors.New("template: jinja env unavailable")
	}
	return j.env, j.initErr
}
