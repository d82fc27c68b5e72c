package converter

import (
	"github.com/recera/vuec/pkg/compiler/diag"
	"github.com/recera/vuec/pkg/compiler/ir"
)

// VHtml sets innerHTML from an expression.
var VHtml = DirectiveConverter{Name: "html", Convert: convertVHtml}

func convertVHtml(dir *Directive, elem *Element, eh diag.ErrorHandler) Result {
	val := nonEmptyExpr(dir)
	if val == "" {
		report(eh, diag.VHtmlNoExpression, dir.HeadLoc)
		return DroppedResult()
	}
	if elem != nil && elem.Children > 0 {
		report(eh, diag.VHtmlWithChildren, dir.Location)
	}
	return ConvertedResult(&ir.Props{Entries: []ir.Prop{{
		Key:   ir.Str("innerHTML"),
		Value: ir.NewSimple(val),
	}}})
}
