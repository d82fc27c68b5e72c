package converter

import (
	"github.com/recera/vuec/pkg/compiler/diag"
	"github.com/recera/vuec/pkg/compiler/flags"
	"github.com/recera/vuec/pkg/compiler/ir"
)

// VText sets textContent from the display string of an expression.
var VText = DirectiveConverter{Name: "text", Convert: convertVText}

func convertVText(dir *Directive, elem *Element, eh diag.ErrorHandler) Result {
	val := nonEmptyExpr(dir)
	if val == "" {
		report(eh, diag.VTextNoExpression, dir.HeadLoc)
		return DroppedResult()
	}
	if elem != nil && elem.Children > 0 {
		report(eh, diag.VTextWithChildren, dir.Location)
	}
	return ConvertedResult(&ir.Props{Entries: []ir.Prop{{
		Key: ir.Str("textContent"),
		Value: &ir.Call{
			Helper: flags.ToDisplayString,
			Args:   []ir.Expr{ir.NewSimple(val)},
		},
	}}})
}
