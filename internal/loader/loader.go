package loader

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"github.com/SachiraChin/workflowmanager-showcase-sub003/pkg/schema"
)

// Options configures how a Loader resolves sources.
type Options struct {
	// FileSystem enables loading fs-kind sources.
	FileSystem fs.FS

	// HTTPClient allows callers to inject custom HTTP behaviour. Nil means URL
	// sources are disabled unless AllowHTTP is true.
	HTTPClient *http.Client

	// AllowHTTP enables URL sources with a default client when HTTPClient is
	// nil.
	AllowHTTP bool

	// RequestTimeout caps remote fetch durations.
	RequestTimeout time.Duration
}

// Option mutates Options prior to construction.
type Option func(*Options)

// WithFileSystem injects an fs.FS for fs-kind sources.
func WithFileSystem(files fs.FS) Option {
	return func(opts *Options) {
		opts.FileSystem = files
	}
}

// WithHTTPClient injects a custom HTTP client for URL sources.
func WithHTTPClient(client *http.Client) Option {
	return func(opts *Options) {
		opts.HTTPClient = client
	}
}

// WithHTTP enables URL sources using a default client and an optional timeout.
func WithHTTP(timeout time.Duration) Option {
	return func(opts *Options) {
		opts.AllowHTTP = true
		opts.RequestTimeout = timeout
	}
}

// Loader fetches schema and data documents from files, an fs.FS, or HTTP.
type Loader struct {
	fs        fs.FS
	http      *http.Client
	allowHTTP bool
	timeout   time.Duration
}

// New constructs a Loader.
func New(options ...Option) *Loader {
	cfg := Options{}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	timeout := cfg.RequestTimeout

	var httpClient *http.Client
	switch {
	case cfg.HTTPClient != nil:
		clone := *cfg.HTTPClient
		if timeout > 0 && clone.Timeout == 0 {
			clone.Timeout = timeout
		}
		httpClient = &clone
	case cfg.AllowHTTP:
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Loader{
		fs:        cfg.FileSystem,
		http:      httpClient,
		allowHTTP: httpClient != nil,
		timeout:   timeout,
	}
}

// Load fetches a document from src.
func (l *Loader) Load(ctx context.Context, src schema.Source) (schema.Document, error) {
	if src == nil {
		return schema.Document{}, errors.New("loader: source is nil")
	}

	var (
		data []byte
		err  error
	)

	switch src.Kind() {
	case schema.SourceKindFile:
		data, err = loadFile(ctx, src.Location())
	case schema.SourceKindFS:
		data, err = loadFromFS(ctx, l.fs, src.Location())
	case schema.SourceKindURL:
		if !l.allowHTTP {
			return schema.Document{}, errors.New("loader: http support disabled")
		}
		data, err = loadHTTP(ctx, l.http, src.Location(), l.timeout)
	default:
		err = fmt.Errorf("loader: unsupported source kind %q", src.Kind())
	}
	if err != nil {
		return schema.Document{}, err
	}

	return schema.NewDocument(src, data)
}

// LoadSchema loads src and parses it into a schema tree.
func (l *Loader) LoadSchema(ctx context.Context, src schema.Source, parser *schema.Parser) (*schema.Node, error) {
	doc, err := l.Load(ctx, src)
	if err != nil {
		return nil, err
	}
	if parser == nil {
		parser = schema.NewParser()
	}
	return parser.ParseDocument(doc)
}

// LoadData loads src and decodes it, keeping object key order.
func (l *Loader) LoadData(ctx context.Context, src schema.Source) (any, error) {
	doc, err := l.Load(ctx, src)
	if err != nil {
		return nil, err
	}
	value, err := schema.DecodeDocument(doc)
	if err != nil {
		return nil, fmt.Errorf("loader: %s: %w", doc.Location(), err)
	}
	return value, nil
}

// SourceFor maps a CLI-style location to a Source: http(s) URLs become URL
// sources, anything else a file path.
func SourceFor(location string) (schema.Source, error) {
	if isURL(location) {
		return schema.SourceFromURL(location)
	}
	if location == "" {
		return nil, errors.New("loader: location is required")
	}
	return schema.SourceFromFile(location), nil
}
