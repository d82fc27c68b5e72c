// Package diag carries compile diagnostics: source positions, the closed set
// of error kinds, and the error sink converters report into.
package diag

import (
	"context"
	"fmt"
	"sync"

	"goa.design/clue/log"
)

// Position is a point in the template source.
type Position struct {
	Offset int `json:"offset" yaml:"offset"`
	Line   int `json:"line" yaml:"line"`
	Column int `json:"column" yaml:"column"`
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// SourceLocation is a half-open span in the template source.
type SourceLocation struct {
	Start Position `json:"start" yaml:"start"`
	End   Position `json:"end" yaml:"end"`
}

// ErrorKind enumerates the diagnostics the core can report.
type ErrorKind int

const (
	VModelNoExpression ErrorKind = iota
	VModelMalformedExpression
	VModelOnScopeVariable
	VHtmlNoExpression
	VHtmlWithChildren
	VTextNoExpression
	VTextWithChildren
	VShowNoExpression
)

var kindMessages = map[ErrorKind]string{
	VModelNoExpression:        "v-model is missing expression.",
	VModelMalformedExpression: "v-model value must be a valid JavaScript member expression.",
	VModelOnScopeVariable:     "v-model cannot be used on v-for or v-slot scope variables because they are not writable.",
	VHtmlNoExpression:         "v-html is missing expression.",
	VHtmlWithChildren:         "v-html will override element children.",
	VTextNoExpression:         "v-text is missing expression.",
	VTextWithChildren:         "v-text will override element children.",
	VShowNoExpression:         "v-show is missing expression.",
}

var kindNames = map[ErrorKind]string{
	VModelNoExpression:        "VModelNoExpression",
	VModelMalformedExpression: "VModelMalformedExpression",
	VModelOnScopeVariable:     "VModelOnScopeVariable",
	VHtmlNoExpression:         "VHtmlNoExpression",
	VHtmlWithChildren:         "VHtmlWithChildren",
	VTextNoExpression:         "VTextNoExpression",
	VTextWithChildren:         "VTextWithChildren",
	VShowNoExpression:         "VShowNoExpression",
}

// String returns the kind's identifier.
func (k ErrorKind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Message returns the human readable description of the kind.
func (k ErrorKind) Message() string {
	return kindMessages[k]
}

// IsWarning reports whether the kind degrades output without dropping it.
func (k ErrorKind) IsWarning() bool {
	return k == VHtmlWithChildren || k == VTextWithChildren
}

// CompilationError is a diagnostic tied to a source location.
type CompilationError struct {
	Kind              ErrorKind
	Location          SourceLocation
	AdditionalMessage string
}

// NewError creates a diagnostic of the given kind with a zero location.
func NewError(kind ErrorKind) *CompilationError {
	return &CompilationError{Kind: kind}
}

// WithLocation sets the diagnostic location and returns the receiver.
func (e *CompilationError) WithLocation(loc SourceLocation) *CompilationError {
	e.Location = loc
	return e
}

// WithMessage attaches extra context and returns the receiver.
func (e *CompilationError) WithMessage(msg string) *CompilationError {
	e.AdditionalMessage = msg
	return e
}

func (e *CompilationError) Error() string {
	msg := e.Kind.Message()
	if e.AdditionalMessage != "" {
		msg += " " + e.AdditionalMessage
	}
	return fmt.Sprintf("%s: %s", e.Location.Start, msg)
}

// ErrorHandler is the sink diagnostics are reported to.
type ErrorHandler interface {
	OnError(err *CompilationError)
}

// ErrorHandlerFunc adapts a function to ErrorHandler.
type ErrorHandlerFunc func(err *CompilationError)

// OnError implements ErrorHandler.
func (f ErrorHandlerFunc) OnError(err *CompilationError) {
	f(err)
}

// Collector records every diagnostic it receives.
type Collector struct {
	mu     sync.Mutex
	errors []*CompilationError
}

// OnError implements ErrorHandler.
func (c *Collector) OnError(err *CompilationError) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errors = append(c.errors, err)
}

// Errors returns the recorded diagnostics in report order.
func (c *Collector) Errors() []*CompilationError {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*CompilationError, len(c.errors))
	copy(out, c.errors)
	return out
}

// Len returns the number of recorded diagnostics.
func (c *Collector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.errors)
}

// LogHandler logs diagnostics and forwards them to Next when set.
type LogHandler struct {
	ctx  context.Context
	file string
	Next ErrorHandler
}

// NewLogHandler returns a handler logging into the clue logger carried by ctx.
func NewLogHandler(ctx context.Context, file string, next ErrorHandler) *LogHandler {
	return &LogHandler{ctx: ctx, file: file, Next: next}
}

// OnError implements ErrorHandler.
func (h *LogHandler) OnError(err *CompilationError) {
	fields := []log.Fielder{
		log.KV{K: "msg", V: err.Kind.Message()},
		log.KV{K: "kind", V: err.Kind.String()},
		log.KV{K: "file", V: h.file},
		log.KV{K: "line", V: err.Location.Start.Line},
		log.KV{K: "column", V: err.Location.Start.Column},
	}
	if err.Kind.IsWarning() {
		log.Warn(h.ctx, fields...)
	} else {
		log.Error(h.ctx, err, fields...)
	}
	if h.Next != nil {
		h.Next.OnError(err)
	}
}
