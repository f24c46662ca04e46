// Command pagectl runs one page of a mapper statement and prints it.
//
// Usage:
//
//	pagectl -config pager.yaml -stmt orders.list [-page N] [-size N]
//	        [-p key=value ...] [-format json|yaml|msgpack] [-all] [-watch] [-v]
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"

	"github.com/syssam/pager/config"
	"github.com/syssam/pager/mapper"
	"github.com/syssam/pager/paging"
)

// params collects repeated -p key=value flags.
type params map[string]any

func (p params) String() string {
	pairs := make([]string, 0, len(p))
	for k, v := range p {
		pairs = append(pairs, fmt.Sprintf("%s=%v", k, v))
	}
	return strings.Join(pairs, ",")
}

func (p params) Set(s string) error {
	k, v, ok := strings.Cut(s, "=")
	if !ok || k == "" {
		return fmt.Errorf("expected key=value, got %q", s)
	}
	p[k] = v
	return nil
}

type options struct {
	config  string
	stmt    string
	page    int
	size    int
	params  params
	format  string
	all     bool
	watch   bool
	verbose bool
	limit   int
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "pagectl: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	o := &options{params: params{}}
	fs := flag.NewFlagSet("pagectl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.config, "config", "pager.yaml", "Configuration file")
	fs.StringVar(&o.stmt, "stmt", "", "Statement id to run")
	fs.IntVar(&o.page, "page", 1, "Page number, starting at 1")
	fs.IntVar(&o.size, "size", 0, "Page size (default: default_page_size)")
	fs.Var(o.params, "p", "Statement parameter as key=value (repeatable)")
	fs.StringVar(&o.format, "format", "json", "Output format: json, yaml or msgpack")
	fs.BoolVar(&o.all, "all", false, "Fetch every page concurrently")
	fs.IntVar(&o.limit, "parallel", 4, "Concurrent page fetches with -all")
	fs.BoolVar(&o.watch, "watch", false, "Re-run when a mapper file changes")
	fs.BoolVar(&o.verbose, "v", false, "Log queries at debug level")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if o.stmt == "" {
		return nil, errors.New("-stmt is required")
	}
	switch o.format {
	case "json", "yaml", "msgpack":
	default:
		return nil, fmt.Errorf("unknown format %q", o.format)
	}
	return o, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	o, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}
	level := slog.LevelWarn
	if o.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	cfg, err := config.Load(o.config)
	if err != nil {
		return err
	}
	stmts, err := cfg.Statements()
	if err != nil {
		return err
	}
	drv, err := cfg.Open()
	if err != nil {
		return err
	}
	defer drv.Close()
	exec := cfg.Executor(stmts, logger)
	size := cfg.NewPage(o.page, o.size).PageSize()

	once := func() error {
		var (
			out any
			err error
		)
		if o.all {
			out, err = paging.FetchAll(ctx, exec, drv, o.stmt, map[string]any(o.params), size, o.limit)
		} else {
			out, err = paging.Query(ctx, exec, drv, o.stmt, map[string]any(o.params), paging.NewPage(o.page, size))
		}
		if err != nil {
			return err
		}
		return encode(stdout, o.format, out)
	}
	if err := once(); err != nil || !o.watch {
		return err
	}
	logger.Info("watching mapper files", slog.Any("files", cfg.Mappers))
	err = mapper.Watch(ctx, stmts, cfg.Mappers, func(err error) {
		if err == nil {
			err = once()
		}
		if err != nil {
			logger.Error("reload failed", slog.Any("error", err))
		}
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func encode(w io.Writer, format string, v any) error {
	switch format {
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case "msgpack":
		return msgpack.NewEncoder(w).Encode(v)
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
}
