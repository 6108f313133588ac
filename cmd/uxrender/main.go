package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"

	"github.com/SachiraChin/workflowmanager-showcase-sub003/internal/config"
	"github.com/SachiraChin/workflowmanager-showcase-sub003/internal/engine"
	"github.com/SachiraChin/workflowmanager-showcase-sub003/internal/loader"
	"github.com/SachiraChin/workflowmanager-showcase-sub003/pkg/interact"
	"github.com/SachiraChin/workflowmanager-showcase-sub003/pkg/openapi"
	"github.com/SachiraChin/workflowmanager-showcase-sub003/pkg/output"
	"github.com/SachiraChin/workflowmanager-showcase-sub003/pkg/render"
	"github.com/SachiraChin/workflowmanager-showcase-sub003/pkg/schema"
	"github.com/SachiraChin/workflowmanager-showcase-sub003/pkg/ux"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		log.Fatalf("uxrender: %v", err)
	}
}

type options struct {
	configDir   string
	schema      string
	component   string
	data        string
	state       string
	path        string
	format      string
	styled      bool
	interactive bool
	output      string
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("uxrender", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.configDir, "config", ".", "directory holding uxrender.toml")
	fs.StringVar(&opts.schema, "schema", "", "schema document path or URL (JSON or YAML)")
	fs.StringVar(&opts.component, "component", "", "treat -schema as an OpenAPI document and render this component schema")
	fs.StringVar(&opts.data, "data", "", "data document path or URL (JSON or YAML)")
	fs.StringVar(&opts.state, "state", "", "optional state document exposed to templates as `state`")
	fs.StringVar(&opts.path, "path", "", "data path of the root value, e.g. items[0]")
	fs.StringVar(&opts.format, "format", "json", "output format (json|text)")
	fs.BoolVar(&opts.styled, "styled", false, "style text output for a terminal")
	fs.BoolVar(&opts.interactive, "interactive", false, "prompt for input values and print them as JSON")
	fs.StringVar(&opts.output, "output", "", "output file (stdout if empty)")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if opts.schema == "" {
		fs.Usage()
		return opts, errors.New("-schema is required")
	}
	return opts, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	cfg, err := config.LoadDir(opts.configDir)
	if err != nil {
		return err
	}
	logger := cfg.Log.Logger(stderr)

	e, err := engine.New(cfg, logger)
	if err != nil {
		return err
	}

	loaderOpts := []loader.Option{}
	if cfg.Loader.AllowHTTP {
		loaderOpts = append(loaderOpts, loader.WithHTTP(cfg.Loader.TimeoutDuration()))
	}
	docs := loader.New(loaderOpts...)

	node, err := loadSchema(ctx, docs, e, opts)
	if err != nil {
		return err
	}

	var data any
	if opts.data != "" {
		if data, err = loadDocument(ctx, docs, opts.data); err != nil {
			return err
		}
	}

	var state map[string]any
	if opts.state != "" {
		raw, err := loadDocument(ctx, docs, opts.state)
		if err != nil {
			return err
		}
		plain, ok := ux.Plain(raw).(map[string]any)
		if !ok {
			return fmt.Errorf("state document %s must be an object", opts.state)
		}
		state = plain
	}

	path, err := render.ParsePath(opts.path)
	if err != nil {
		return fmt.Errorf("invalid -path: %w", err)
	}

	tree := e.Resolver().Resolve(data, node, path, render.WithState(state))
	logger.Debug("resolved", "schema", opts.schema, "kind", tree.Kind())

	var out []byte
	if opts.interactive {
		values, err := interact.New(interact.WithParser(e.Parser())).Collect(ctx, tree)
		if err != nil {
			return err
		}
		if out, err = json.MarshalIndent(values, "", "  "); err != nil {
			return err
		}
		out = append(out, '\n')
	} else {
		writer, err := output.Default().Get(opts.format)
		if err != nil {
			return err
		}
		if out, err = writer.Write(ctx, tree, output.Options{Styled: opts.styled, Indent: true}); err != nil {
			return err
		}
	}

	if opts.output != "" {
		if err := os.WriteFile(opts.output, out, 0o644); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		fmt.Fprintf(stderr, "output written to %s\n", opts.output)
		return nil
	}
	_, err = stdout.Write(out)
	return err
}

func loadSchema(ctx context.Context, docs *loader.Loader, e *engine.Engine, opts options) (*schema.Node, error) {
	src, err := loader.SourceFor(opts.schema)
	if err != nil {
		return nil, err
	}
	if opts.component == "" {
		return docs.LoadSchema(ctx, src, e.Parser())
	}
	doc, err := docs.Load(ctx, src)
	if err != nil {
		return nil, err
	}
	spec, err := openapi.Load(ctx, doc, openapi.WithParser(e.Parser()))
	if err != nil {
		return nil, err
	}
	return spec.Schema(opts.component)
}

func loadDocument(ctx context.Context, docs *loader.Loader, location string) (any, error) {
	src, err := loader.SourceFor(location)
	if err != nil {
		return nil, err
	}
	return docs.LoadData(ctx, src)
}
