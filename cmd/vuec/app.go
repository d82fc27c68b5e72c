package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"goa.design/clue/log"

	"github.com/recera/vuec/cmd/vuec/internal/config"
	"github.com/recera/vuec/internal/cache"
	"github.com/recera/vuec/pkg/compiler"
)

// cacheFormat is mixed into cache keys; bump it when Result changes shape.
const cacheFormat = "result/v1"

// app is the state shared by the subcommands.
type app struct {
	configPath string
	debug      bool

	cfg   *config.Config
	out   io.Writer
	cache *cache.Cache
}

func (a *app) options() compiler.Options {
	return compiler.Options{
		MergeText:  a.cfg.MergeText(),
		Trace:      a.cfg.Passes.Trace,
		Directives: a.cfg.Directives,
	}
}

// openCache opens the result cache unless disabled. Tracing bypasses the
// cache so every hook is logged.
func (a *app) openCache(ctx context.Context, disabled bool) error {
	cc := a.cfg.Cache
	if disabled || !cc.Enabled || a.cfg.Passes.Trace {
		return nil
	}
	cfg := cache.DefaultConfig()
	if cc.Dir != "" {
		cfg.Dir = cc.Dir
	}
	cfg.MaxEntries = cc.MaxEntries

	c, err := cache.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to open cache: %w", err)
	}
	log.Debug(ctx, log.KV{K: "msg", V: "cache opened"}, log.KV{K: "dir", V: c.Dir()})
	a.cache = c
	return nil
}

func (a *app) close() error {
	if a.cache == nil {
		return nil
	}
	err := a.cache.Close()
	a.cache = nil
	return err
}

// compilePath compiles a single document or every document under a
// directory.
func (a *app) compilePath(ctx context.Context, path string) ([]*compiler.Result, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	opts := a.options()

	if a.cache == nil {
		if info.IsDir() {
			return compiler.ProcessDirectory(ctx, path, opts)
		}
		res, err := compiler.ProcessFile(ctx, path, opts)
		if err != nil {
			return nil, err
		}
		return []*compiler.Result{res}, nil
	}

	files := []string{path}
	if info.IsDir() {
		if files, err = compiler.FindDocuments(path); err != nil {
			return nil, err
		}
	}
	results := make([]*compiler.Result, 0, len(files))
	for _, file := range files {
		res, err := a.compileCached(ctx, file, opts)
		if err != nil {
			return results, fmt.Errorf("failed to process %s: %w", file, err)
		}
		results = append(results, res)
	}
	return results, nil
}

func (a *app) compileCached(ctx context.Context, path string, opts compiler.Options) (*compiler.Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	key := cache.Key(
		cacheFormat,
		path,
		string(data),
		strconv.FormatBool(opts.MergeText),
		strings.Join(opts.Directives, ","),
	)

	if cached, ok := a.cache.Get(key); ok {
		var res compiler.Result
		if err := json.Unmarshal(cached, &res); err == nil {
			log.Debug(ctx, log.KV{K: "msg", V: "cache hit"}, log.KV{K: "file", V: path})
			return &res, nil
		}
		// Unreadable entries are recompiled and overwritten.
	}

	res, err := compiler.CompileDocument(ctx, path, data, opts)
	if err != nil {
		return nil, err
	}
	encoded, err := json.Marshal(res)
	if err != nil {
		return nil, fmt.Errorf("failed to encode result: %w", err)
	}
	if err := a.cache.Put(key, encoded); err != nil {
		log.Warn(ctx, log.KV{K: "msg", V: "cache write failed"}, log.KV{K: "err", V: err.Error()})
	}
	return res, nil
}
