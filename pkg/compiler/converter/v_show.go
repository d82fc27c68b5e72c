package converter

import (
	"github.com/recera/vuec/pkg/compiler/diag"
	"github.com/recera/vuec/pkg/compiler/flags"
	"github.com/recera/vuec/pkg/compiler/ir"
)

// VShow keeps the directive at runtime as the builtin vShow.
var VShow = DirectiveConverter{Name: "show", Convert: convertVShow}

func convertVShow(dir *Directive, _ *Element, eh diag.ErrorHandler) Result {
	val := nonEmptyExpr(dir)
	if val == "" {
		report(eh, diag.VShowNoExpression, dir.HeadLoc)
		return DroppedResult()
	}
	return Result{
		Kind: Converted,
		RuntimeDir: &ir.RuntimeDir{
			Name: &ir.Symbol{Helper: flags.VShow},
			Expr: ir.NewSimple(val),
		},
	}
}
