package converter

import (
	"github.com/recera/vuec/pkg/compiler/diag"
	"github.com/recera/vuec/pkg/compiler/flags"
	"github.com/recera/vuec/pkg/compiler/ir"
	"github.com/recera/vuec/pkg/compiler/util"
)

// VModel desugars two-way binding into a value prop and, on components,
// a modifiers prop.
var VModel = DirectiveConverter{Name: "model", Convert: convertVModel}

func convertVModel(dir *Directive, elem *Element, eh diag.ErrorHandler) Result {
	val := nonEmptyExpr(dir)
	if val == "" {
		report(eh, diag.VModelNoExpression, dir.HeadLoc)
		return DroppedResult()
	}
	if !isAssignable(val) {
		report(eh, diag.VModelMalformedExpression, dir.HeadLoc)
		return DroppedResult()
	}
	// TODO: reject v-for and v-slot scope variables (VModelOnScopeVariable)
	// once scope tracking is available to converters.

	var propName ir.Expr = ir.Str("modelValue")
	if arg := dir.Argument; arg != nil {
		if arg.Dynamic {
			propName = ir.NewSimple(arg.Value)
		} else {
			propName = ir.Str(arg.Value)
		}
	}

	props := []ir.Prop{{
		Key:   propName,
		Value: &ir.Simple{Code: val, Static: flags.NotStatic},
	}}
	if mods, ok := componentModifiersProp(dir, elem); ok {
		props = append(props, mods)
	}
	return ConvertedResult(&ir.Props{Entries: props})
}

func isAssignable(expr string) bool {
	return util.IsSimpleIdentifier(expr) || util.IsMemberExpression(expr)
}

// componentModifiersProp builds the `<prop>Modifiers` object. Native
// elements apply modifiers through their runtime model directive instead.
func componentModifiersProp(dir *Directive, elem *Element) (ir.Prop, bool) {
	if len(dir.Modifiers) == 0 || elem == nil || !elem.IsComponent() {
		return ir.Prop{}, false
	}

	var key ir.Expr = ir.Str(util.SuffixModifiers("modelValue"))
	if arg := dir.Argument; arg != nil {
		if arg.Dynamic {
			key = &ir.Compound{Parts: []ir.Expr{
				ir.NewSimple(arg.Value),
				&ir.Src{Code: " + 'Modifiers'"},
			}}
		} else {
			key = ir.Str(util.SuffixModifiers(arg.Value))
		}
	}

	entries := make([]ir.Prop, len(dir.Modifiers))
	for i, m := range dir.Modifiers {
		entries[i] = ir.Prop{Key: ir.Str(m), Value: &ir.Src{Code: "true"}}
	}
	return ir.Prop{Key: key, Value: &ir.Props{Entries: entries}}, true
}
