// Package compiler ties document loading, directive conversion and the
// transform passes into a single compile step.
package compiler

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"goa.design/clue/log"

	"github.com/recera/vuec/pkg/compiler/converter"
	"github.com/recera/vuec/pkg/compiler/diag"
	"github.com/recera/vuec/pkg/compiler/ir"
	"github.com/recera/vuec/pkg/compiler/transformer"
)

// DocumentExt is the file extension of YAML IR documents.
const DocumentExt = ".vir.yaml"

// Options controls a compilation.
type Options struct {
	// MergeText merges adjacent text nodes before entity collection.
	MergeText bool
	// Trace logs every transform hook at debug level.
	Trace bool
	// Directives names the builtin converters to enable. Nil enables all.
	Directives []string
}

// DefaultOptions returns the options used when none are configured.
func DefaultOptions() Options {
	return Options{MergeText: true}
}

func (o Options) registry() *converter.Registry {
	if o.Directives == nil {
		return converter.DefaultRegistry()
	}
	return converter.RegistryFor(o.Directives)
}

// Diagnostic is a reported compilation problem in serializable form.
type Diagnostic struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
	Line    int    `json:"line"`
	Column  int    `json:"column"`
	Warning bool   `json:"warning,omitempty"`
}

func newDiagnostic(err *diag.CompilationError) Diagnostic {
	msg := err.Kind.Message()
	if err.AdditionalMessage != "" {
		msg += " " + err.AdditionalMessage
	}
	return Diagnostic{
		Kind:    err.Kind.String(),
		Message: msg,
		Line:    err.Location.Start.Line,
		Column:  err.Location.Start.Column,
		Warning: err.Kind.IsWarning(),
	}
}

// Result is what a compilation collected.
type Result struct {
	File        string       `json:"file,omitempty"`
	Helpers     []string     `json:"helpers"`
	Components  []string     `json:"components"`
	Directives  []string     `json:"directives"`
	Diagnostics []Diagnostic `json:"diagnostics,omitempty"`
	MergedTexts int          `json:"mergedTexts,omitempty"`
}

// Errors returns the number of diagnostics that are not warnings.
func (r *Result) Errors() int {
	n := 0
	for _, d := range r.Diagnostics {
		if !d.Warning {
			n++
		}
	}
	return n
}

// Compile runs the transform passes over root and reports what the tree
// needs from the runtime.
func Compile(ctx context.Context, root *ir.Root, opts Options) (*Result, error) {
	if root == nil {
		return nil, fmt.Errorf("compile: nil root")
	}

	var (
		passes []transformer.Pass
		merger *transformer.TextMerger
	)
	if opts.Trace {
		passes = append(passes, transformer.NewTracer(ctx))
	}
	if opts.MergeText {
		merger = transformer.NewTextMerger()
		passes = append(passes, merger)
	}
	collector := transformer.NewEntityCollector()
	passes = append(passes, collector)

	transformer.New(passes...).Transform(root)

	res := &Result{
		Helpers:    collector.Helpers().Names(),
		Components: nonNil(collector.Components()),
		Directives: nonNil(collector.Directives()),
	}
	if merger != nil {
		res.MergedTexts = merger.Merged()
	}
	return res, nil
}

// CompileDocument loads a YAML IR document and compiles it. Diagnostics
// reported while converting directives are logged and attached to the
// result.
func CompileDocument(ctx context.Context, name string, data []byte, opts Options) (*Result, error) {
	var diags diag.Collector
	eh := diag.NewLogHandler(ctx, name, &diags)

	root, err := LoadDocument(name, data, opts.registry(), eh)
	if err != nil {
		return nil, err
	}
	res, err := Compile(ctx, root, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	res.File = name
	for _, e := range diags.Errors() {
		res.Diagnostics = append(res.Diagnostics, newDiagnostic(e))
	}

	log.Info(ctx,
		log.KV{K: "msg", V: "compiled"},
		log.KV{K: "file", V: name},
		log.KV{K: "helpers", V: len(res.Helpers)},
		log.KV{K: "diagnostics", V: len(res.Diagnostics)},
	)
	return res, nil
}

// ProcessFile reads and compiles one document.
func ProcessFile(ctx context.Context, path string, opts Options) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return CompileDocument(ctx, path, data, opts)
}

// ProcessDirectory compiles every document under dir, in path order.
func ProcessDirectory(ctx context.Context, dir string, opts Options) ([]*Result, error) {
	files, err := FindDocuments(dir)
	if err != nil {
		return nil, err
	}

	results := make([]*Result, 0, len(files))
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		res, err := ProcessFile(ctx, file, opts)
		if err != nil {
			return results, fmt.Errorf("failed to process %s: %w", file, err)
		}
		results = append(results, res)
	}
	return results, nil
}

// FindDocuments lists the documents under dir recursively, sorted.
func FindDocuments(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && IsDocument(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to find documents: %w", err)
	}
	sort.Strings(files)
	return files, nil
}

// IsDocument reports whether path names a YAML IR document.
func IsDocument(path string) bool {
	return strings.HasSuffix(path, DocumentExt)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
