// Package converter desugars directive applications on elements into
// props and runtime directives.
//
// A converter is a pure function of the directive, its owning element and
// an error sink. Malformed input is a normal outcome: the converter reports
// one diagnostic and returns a Dropped result.
package converter

import (
	"strings"

	"github.com/recera/vuec/pkg/compiler/diag"
	"github.com/recera/vuec/pkg/compiler/ir"
)

// ElementType classifies the element a directive is attached to.
type ElementType uint8

const (
	Plain ElementType = iota
	Component
	Template
	SlotOutlet
)

func (t ElementType) String() string {
	switch t {
	case Plain:
		return "plain"
	case Component:
		return "component"
	case Template:
		return "template"
	case SlotOutlet:
		return "slot"
	}
	return "unknown"
}

// Element is the subset of a parsed element converters look at.
type Element struct {
	Tag      string
	TagType  ElementType
	Children int
	Location diag.SourceLocation
}

// IsComponent reports whether the element is a component rather than a
// native element.
func (e *Element) IsComponent() bool {
	return e.TagType == Component
}

// DirectiveArg is a directive argument. Dynamic arguments (`v-x:[arg]`)
// hold an expression, static ones a literal name.
type DirectiveArg struct {
	Value   string
	Dynamic bool
}

// AttributeValue is the quoted value of a directive.
type AttributeValue struct {
	Content  string
	Location diag.SourceLocation
}

// Directive is a raw directive application as produced by the parser.
type Directive struct {
	Name       string
	Argument   *DirectiveArg
	Modifiers  []string
	Expression *AttributeValue
	HeadLoc    diag.SourceLocation
	Location   diag.SourceLocation
}

// ResultKind tells whether a conversion produced output.
type ResultKind uint8

const (
	Converted ResultKind = iota
	Dropped
)

// Result is the outcome of converting one directive.
type Result struct {
	Kind ResultKind
	// Value is the props payload; nil when the directive only contributes
	// a runtime directive.
	Value ir.Expr
	// RuntimeDir, when set, is kept on the vnode as a runtime directive.
	RuntimeDir *ir.RuntimeDir
	// NeedRuntime asks the caller to keep the directive as a user
	// directive resolved by name. Ignored when RuntimeDir is set.
	NeedRuntime bool
}

// DroppedResult is the result of a directive that produced no output.
func DroppedResult() Result {
	return Result{Kind: Dropped}
}

// ConvertedResult returns a result carrying value and no runtime directive.
func ConvertedResult(value ir.Expr) Result {
	return Result{Kind: Converted, Value: value}
}

// Converter converts one directive application.
type Converter func(dir *Directive, elem *Element, eh diag.ErrorHandler) Result

// DirectiveConverter binds a converter to the directive name it handles.
type DirectiveConverter struct {
	Name    string
	Convert Converter
}

// Registry maps directive names to converters.
type Registry struct {
	converters map[string]Converter
	order      []string
}

// NewRegistry builds a registry from converters. Later entries replace
// earlier ones with the same name.
func NewRegistry(convs ...DirectiveConverter) *Registry {
	r := &Registry{converters: make(map[string]Converter, len(convs))}
	for _, c := range convs {
		r.Register(c)
	}
	return r
}

// Register adds or replaces a converter.
func (r *Registry) Register(c DirectiveConverter) {
	if _, ok := r.converters[c.Name]; !ok {
		r.order = append(r.order, c.Name)
	}
	r.converters[c.Name] = c.Convert
}

// Lookup finds the converter for an exact directive name.
func (r *Registry) Lookup(name string) (Converter, bool) {
	c, ok := r.converters[name]
	return c, ok
}

// Names returns the registered directive names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Builtins are the converters shipped with the compiler.
var Builtins = []DirectiveConverter{VModel, VHtml, VText, VShow}

// DefaultRegistry returns a registry with all builtin converters.
func DefaultRegistry() *Registry {
	return NewRegistry(Builtins...)
}

// RegistryFor returns a registry with only the named builtin converters.
func RegistryFor(names []string) *Registry {
	r := NewRegistry()
	for _, n := range names {
		for _, b := range Builtins {
			if b.Name == n {
				r.Register(b)
			}
		}
	}
	return r
}

// nonEmptyExpr returns the trimmed directive value, or "" when the value is
// absent or blank.
func nonEmptyExpr(dir *Directive) string {
	if dir.Expression == nil {
		return ""
	}
	return strings.TrimSpace(dir.Expression.Content)
}

func report(eh diag.ErrorHandler, kind diag.ErrorKind, loc diag.SourceLocation) {
	if eh == nil {
		return
	}
	eh.OnError(diag.NewError(kind).WithLocation(loc))
}
