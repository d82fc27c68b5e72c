package transformer

import (
	"github.com/recera/vuec/pkg/compiler/flags"
	"github.com/recera/vuec/pkg/compiler/ir"
)

// EntityCollector records the runtime helpers and the component and
// directive assets a tree depends on. It only uses exit hooks so every
// decision is made after the node's subtree has been processed.
type EntityCollector struct {
	NopPass

	helpers    flags.HelperCollector
	components []string
	directives []string
}

// NewEntityCollector returns an empty collector.
func NewEntityCollector() *EntityCollector {
	return &EntityCollector{}
}

// Helpers returns the collected helper set.
func (c *EntityCollector) Helpers() flags.HelperCollector {
	return c.helpers
}

// Components returns component names to resolve, in first-seen order.
func (c *EntityCollector) Components() []string {
	return c.components
}

// Directives returns user directive names to resolve, in first-seen order.
func (c *EntityCollector) Directives() []string {
	return c.directives
}

func (c *EntityCollector) ExitRoot(r *ir.Root) {
	if len(r.Body) > 1 {
		c.helpers.Collect(flags.Fragment)
	}
}

func (c *EntityCollector) ExitExpr(e *ir.Expr) {
	c.collectExpr(*e)
}

// collectExpr gathers the helpers referenced anywhere inside e. Converters
// nest calls in props objects, which the engine visits as a single slot.
func (c *EntityCollector) collectExpr(e ir.Expr) {
	switch e := e.(type) {
	case *ir.Call:
		c.helpers.Collect(e.Helper)
		for _, a := range e.Args {
			c.collectExpr(a)
		}
	case *ir.Symbol:
		c.helpers.Collect(e.Helper)
	case *ir.Compound:
		for _, p := range e.Parts {
			c.collectExpr(p)
		}
	case *ir.Props:
		for _, p := range e.Entries {
			c.collectExpr(p.Key)
			c.collectExpr(p.Value)
		}
	case *ir.Array:
		for _, el := range e.Elems {
			c.collectExpr(el)
		}
	}
}

// ExitIf marks the comment placeholder rendered when no branch matches.
// v-if wrappers around alterable slots take this rule and the loop rule
// below too, although createSlots renders neither; the extra helpers are
// unused imports, never missing ones.
func (c *EntityCollector) ExitIf(i *ir.If) {
	if !i.HasElse() {
		c.helpers.Collect(flags.CreateComment)
	}
}

// ExitFor marks the keyed block fragment every loop compiles to.
func (c *EntityCollector) ExitFor(*ir.For) {
	c.helpers.Collect(flags.OpenBlock)
	c.helpers.Collect(flags.CreateElementBlock)
	c.helpers.Collect(flags.RenderList)
	c.helpers.Collect(flags.Fragment)
}

func (c *EntityCollector) ExitVNode(v *ir.VNodeCall) {
	if len(v.Directives) > 0 {
		c.helpers.Collect(flags.WithDirectives)
	}
	if v.IsBlock {
		c.helpers.Collect(flags.OpenBlock)
	}
	c.helpers.Collect(ir.VNodeCallHelper(v))

	if tag, ok := v.Tag.(*ir.StrLit); ok && v.IsComponent {
		c.components = appendUnique(c.components, tag.Value)
		c.helpers.Collect(flags.ResolveComponent)
	}
	for _, d := range v.Directives {
		if name, ok := d.Name.(*ir.StrLit); ok {
			c.directives = appendUnique(c.directives, name.Value)
			c.helpers.Collect(flags.ResolveDirective)
		}
	}
}

func (c *EntityCollector) ExitSlotOutlet(*ir.RenderSlotCall) {
	c.helpers.Collect(flags.RenderSlot)
}

func (c *EntityCollector) ExitVSlot(s *ir.VSlotUse) {
	if len(s.AlterableSlots) > 0 {
		c.helpers.Collect(flags.CreateSlots)
	}
	c.helpers.Collect(flags.WithCtx)
}

func (c *EntityCollector) ExitComment(*ir.CommentCall) {
	c.helpers.Collect(flags.CreateComment)
}

func appendUnique(list []string, s string) []string {
	for _, v := range list {
		if v == s {
			return list
		}
	}
	return append(list, s)
}
