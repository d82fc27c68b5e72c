package converter

import (
	"github.com/recera/vuec/pkg/compiler/diag"
	"github.com/recera/vuec/pkg/compiler/ir"
)

// Conversion collects what an element's directives turned into.
type Conversion struct {
	// Props are the object entries contributed by converters, in
	// directive order.
	Props []ir.Prop
	// Spreads are non-object payloads merged into props as a whole.
	Spreads []ir.Expr
	// Directives are kept as runtime directives on the vnode.
	Directives []ir.RuntimeDir
	// Dropped counts directives that produced no output.
	Dropped int
}

// PropsExpr returns the converted props as one expression, or nil when no
// directive contributed props.
func (c *Conversion) PropsExpr() ir.Expr {
	if len(c.Props) == 0 && len(c.Spreads) == 0 {
		return nil
	}
	if len(c.Spreads) == 0 {
		return &ir.Props{Entries: c.Props}
	}
	parts := make([]ir.Expr, 0, len(c.Spreads)+1)
	if len(c.Props) > 0 {
		parts = append(parts, &ir.Props{Entries: c.Props})
	}
	parts = append(parts, c.Spreads...)
	return &ir.Array{Elems: parts}
}

// ConvertElement runs every directive on elem through the registry in
// order. Directives without a converter are kept as user directives
// resolved by name at runtime.
func ConvertElement(dirs []Directive, elem *Element, r *Registry, eh diag.ErrorHandler) Conversion {
	var out Conversion
	for i := range dirs {
		dir := &dirs[i]
		conv, ok := r.Lookup(dir.Name)
		if !ok {
			out.Directives = append(out.Directives, userDirective(dir))
			continue
		}

		res := conv(dir, elem, eh)
		if res.Kind == Dropped {
			out.Dropped++
			continue
		}
		switch v := res.Value.(type) {
		case nil:
		case *ir.Props:
			out.Props = append(out.Props, v.Entries...)
		default:
			out.Spreads = append(out.Spreads, v)
		}
		switch {
		case res.RuntimeDir != nil:
			out.Directives = append(out.Directives, *res.RuntimeDir)
		case res.NeedRuntime:
			out.Directives = append(out.Directives, userDirective(dir))
		}
	}
	return out
}

func userDirective(dir *Directive) ir.RuntimeDir {
	rd := ir.RuntimeDir{Name: ir.Str(dir.Name)}
	if val := nonEmptyExpr(dir); val != "" {
		rd.Expr = ir.NewSimple(val)
	}
	if arg := dir.Argument; arg != nil {
		if arg.Dynamic {
			rd.Arg = ir.NewSimple(arg.Value)
		} else {
			rd.Arg = ir.Str(arg.Value)
		}
	}
	if len(dir.Modifiers) > 0 {
		mods := make([]ir.Prop, len(dir.Modifiers))
		for i, m := range dir.Modifiers {
			mods[i] = ir.Prop{Key: ir.Str(m), Value: &ir.Src{Code: "true"}}
		}
		rd.Mods = &ir.Props{Entries: mods}
	}
	return rd
}
