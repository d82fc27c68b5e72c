package ir

import (
	"strconv"
	"strings"

	"github.com/recera/vuec/pkg/compiler/flags"
)

// Expr is a JavaScript expression slot. The transform engine treats
// expressions as opaque leaves; passes inspect them by type switch.
type Expr interface {
	isExpr()
}

// Src is raw source emitted verbatim.
type Src struct {
	Code string
}

// Num is a numeric literal.
type Num struct {
	Value int
}

// StrLit is a string literal; Value is unquoted.
type StrLit struct {
	Value string
}

// Simple is a user expression that may need context prefixing.
type Simple struct {
	Code   string
	Static flags.StaticLevel
}

// Param is a function parameter introduced by the template (slot props,
// v-for aliases).
type Param struct {
	Name string
}

// Compound concatenates its parts.
type Compound struct {
	Parts []Expr
}

// Prop is one key/value entry of a Props object.
type Prop struct {
	Key   Expr
	Value Expr
}

// Props is an object literal.
type Props struct {
	Entries []Prop
}

// Call invokes a runtime helper.
type Call struct {
	Helper flags.RuntimeHelper
	Args   []Expr
}

// Symbol references a runtime helper without calling it.
type Symbol struct {
	Helper flags.RuntimeHelper
}

// Array is an array literal.
type Array struct {
	Elems []Expr
}

func (*Src) isExpr()      {}
func (*Num) isExpr()      {}
func (*StrLit) isExpr()   {}
func (*Simple) isExpr()   {}
func (*Param) isExpr()    {}
func (*Compound) isExpr() {}
func (*Props) isExpr()    {}
func (*Call) isExpr()     {}
func (*Symbol) isExpr()   {}
func (*Array) isExpr()    {}

// Str returns a string literal expression.
func Str(s string) *StrLit {
	return &StrLit{Value: s}
}

// NewSimple returns a non-static user expression.
func NewSimple(code string) *Simple {
	return &Simple{Code: code, Static: flags.NotStatic}
}

// Source renders e as JavaScript source. It is a debugging and test aid;
// code generation proper lives outside the core.
func Source(e Expr) string {
	var b strings.Builder
	writeSource(&b, e)
	return b.String()
}

func writeSource(b *strings.Builder, e Expr) {
	switch e := e.(type) {
	case *Src:
		b.WriteString(e.Code)
	case *Num:
		b.WriteString(strconv.Itoa(e.Value))
	case *StrLit:
		b.WriteString(strconv.Quote(e.Value))
	case *Simple:
		b.WriteString(e.Code)
	case *Param:
		b.WriteString(e.Name)
	case *Compound:
		for _, p := range e.Parts {
			writeSource(b, p)
		}
	case *Props:
		b.WriteByte('{')
		for i, p := range e.Entries {
			if i > 0 {
				b.WriteString(", ")
			}
			if _, static := p.Key.(*StrLit); static {
				writeSource(b, p.Key)
			} else {
				b.WriteByte('[')
				writeSource(b, p.Key)
				b.WriteByte(']')
			}
			b.WriteString(": ")
			writeSource(b, p.Value)
		}
		b.WriteByte('}')
	case *Call:
		b.WriteString("_" + e.Helper.String() + "(")
		writeList(b, e.Args)
		b.WriteByte(')')
	case *Symbol:
		b.WriteString("_" + e.Helper.String())
	case *Array:
		b.WriteByte('[')
		writeList(b, e.Elems)
		b.WriteByte(']')
	}
}

func writeList(b *strings.Builder, es []Expr) {
	for i, e := range es {
		if i > 0 {
			b.WriteString(", ")
		}
		writeSource(b, e)
	}
}
