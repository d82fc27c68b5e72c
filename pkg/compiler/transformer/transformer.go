// Package transformer rewrites an IR tree in place by running a set of
// passes over it in a single depth-first traversal.
//
// For every node the engine calls the matching enter hook of each pass in
// registration order, descends into the node's expressions and children in
// a fixed field order, then calls the exit hooks in reverse order. A pass
// registered later therefore sees the tree after every earlier pass has
// entered the node, and exits before them.
package transformer

import (
	"fmt"

	"github.com/recera/vuec/pkg/compiler/ir"
)

// Transformer changes an IR tree in place.
type Transformer interface {
	Transform(root *ir.Root)
}

// NoopTransformer leaves the tree untouched.
type NoopTransformer struct{}

// Transform implements Transformer.
func (NoopTransformer) Transform(*ir.Root) {}

// Pass is one unit of tree-walking logic. Hooks receive the node being
// visited and may mutate it. Expression hooks receive the slot holding the
// expression so a pass can replace it. Embed NopPass to implement only the
// hooks a pass needs.
type Pass interface {
	EnterRoot(r *ir.Root)
	ExitRoot(r *ir.Root)
	EnterChildren(cs *[]ir.Node)
	ExitChildren(cs *[]ir.Node)
	EnterText(t *ir.TextCall)
	ExitText(t *ir.TextCall)
	EnterIf(i *ir.If)
	ExitIf(i *ir.If)
	EnterFor(f *ir.For)
	ExitFor(f *ir.For)
	EnterVNode(v *ir.VNodeCall)
	ExitVNode(v *ir.VNodeCall)
	EnterSlotOutlet(r *ir.RenderSlotCall)
	ExitSlotOutlet(r *ir.RenderSlotCall)
	EnterVSlot(s *ir.VSlotUse)
	ExitVSlot(s *ir.VSlotUse)
	EnterExpr(e *ir.Expr)
	ExitExpr(e *ir.Expr)
	EnterComment(c *ir.CommentCall)
	ExitComment(c *ir.CommentCall)
}

// NopPass implements every Pass hook as a no-op.
type NopPass struct{}

func (NopPass) EnterRoot(*ir.Root)                 {}
func (NopPass) ExitRoot(*ir.Root)                  {}
func (NopPass) EnterChildren(*[]ir.Node)           {}
func (NopPass) ExitChildren(*[]ir.Node)            {}
func (NopPass) EnterText(*ir.TextCall)             {}
func (NopPass) ExitText(*ir.TextCall)              {}
func (NopPass) EnterIf(*ir.If)                     {}
func (NopPass) ExitIf(*ir.If)                      {}
func (NopPass) EnterFor(*ir.For)                   {}
func (NopPass) ExitFor(*ir.For)                    {}
func (NopPass) EnterVNode(*ir.VNodeCall)           {}
func (NopPass) ExitVNode(*ir.VNodeCall)            {}
func (NopPass) EnterSlotOutlet(*ir.RenderSlotCall) {}
func (NopPass) ExitSlotOutlet(*ir.RenderSlotCall)  {}
func (NopPass) EnterVSlot(*ir.VSlotUse)            {}
func (NopPass) ExitVSlot(*ir.VSlotUse)             {}
func (NopPass) EnterExpr(*ir.Expr)                 {}
func (NopPass) ExitExpr(*ir.Expr)                  {}
func (NopPass) EnterComment(*ir.CommentCall)       {}
func (NopPass) ExitComment(*ir.CommentCall)        {}

// Engine drives an ordered list of passes over a tree. An Engine and its
// passes belong to one compilation and are not safe for concurrent use.
type Engine struct {
	passes []Pass
}

// New returns an engine running passes in the given order.
func New(passes ...Pass) *Engine {
	return &Engine{passes: passes}
}

// Passes returns the registered passes in registration order.
func (t *Engine) Passes() []Pass {
	return t.passes
}

// Transform implements Transformer. It walks the tree exactly once.
func (t *Engine) Transform(root *ir.Root) {
	t.enter(func(p Pass) { p.EnterRoot(root) })
	t.transformChildren(&root.Body)
	t.exit(func(p Pass) { p.ExitRoot(root) })
}

func (t *Engine) enter(f func(p Pass)) {
	for _, p := range t.passes {
		f(p)
	}
}

func (t *Engine) exit(f func(p Pass)) {
	for i := len(t.passes) - 1; i >= 0; i-- {
		f(t.passes[i])
	}
}

func (t *Engine) transformChildren(cs *[]ir.Node) {
	t.enter(func(p Pass) { p.EnterChildren(cs) })
	for i := 0; i < len(*cs); i++ {
		t.transformIR((*cs)[i])
	}
	t.exit(func(p Pass) { p.ExitChildren(cs) })
}

func (t *Engine) transformIR(n ir.Node) {
	switch n := n.(type) {
	case *ir.TextCall:
		t.transformText(n)
	case *ir.If:
		t.transformIf(n)
	case *ir.For:
		t.transformFor(n)
	case *ir.VNodeCall:
		t.transformVNode(n)
	case *ir.RenderSlotCall:
		t.transformSlotOutlet(n)
	case *ir.CommentCall:
		t.transformComment(n)
	case *ir.VSlotUse:
		t.transformVSlot(n)
	case *ir.AlterableSlot:
		panic("transformer: alterable slot outside of v-slot")
	default:
		panic(fmt.Sprintf("transformer: unknown node type %T", n))
	}
}

func (t *Engine) transformText(n *ir.TextCall) {
	t.enter(func(p Pass) { p.EnterText(n) })
	for i := range n.Texts {
		t.transformExpr(&n.Texts[i])
	}
	t.exit(func(p Pass) { p.ExitText(n) })
}

func (t *Engine) transformIf(n *ir.If) {
	t.enter(func(p Pass) { p.EnterIf(n) })
	for i := range n.Branches {
		b := &n.Branches[i]
		if b.Condition != nil {
			t.transformExpr(&b.Condition)
		}
		t.transformIR(b.Child)
	}
	t.exit(func(p Pass) { p.ExitIf(n) })
}

func (t *Engine) transformFor(n *ir.For) {
	t.enter(func(p Pass) { p.EnterFor(n) })
	t.transformExpr(&n.Source)
	// Loop aliases are bindings, not expressions, and are not visited.
	t.transformIR(n.Child)
	t.exit(func(p Pass) { p.ExitFor(n) })
}

func (t *Engine) transformVNode(n *ir.VNodeCall) {
	t.enter(func(p Pass) { p.EnterVNode(n) })
	t.transformExpr(&n.Tag)
	if n.Props != nil {
		t.transformExpr(&n.Props)
	}
	t.transformChildren(&n.Children)
	for i := range n.Directives {
		t.transformRuntimeDir(&n.Directives[i])
	}
	t.exit(func(p Pass) { p.ExitVNode(n) })
}

func (t *Engine) transformRuntimeDir(d *ir.RuntimeDir) {
	t.transformExpr(&d.Name)
	if d.Expr != nil {
		t.transformExpr(&d.Expr)
	}
	if d.Arg != nil {
		t.transformExpr(&d.Arg)
	}
	if d.Mods != nil {
		t.transformExpr(&d.Mods)
	}
}

func (t *Engine) transformSlotOutlet(n *ir.RenderSlotCall) {
	t.enter(func(p Pass) { p.EnterSlotOutlet(n) })
	t.transformExpr(&n.SlotName)
	if n.SlotProps != nil {
		t.transformExpr(&n.SlotProps)
	}
	t.transformChildren(&n.Fallbacks)
	t.exit(func(p Pass) { p.ExitSlotOutlet(n) })
}

func (t *Engine) transformVSlot(n *ir.VSlotUse) {
	t.enter(func(p Pass) { p.EnterVSlot(n) })
	// Slot params are bindings and are not visited.
	for i := range n.StableSlots {
		s := &n.StableSlots[i]
		t.transformExpr(&s.Name)
		t.transformChildren(&s.Body)
	}
	for _, s := range n.AlterableSlots {
		t.transformAlterable(s)
	}
	t.exit(func(p Pass) { p.ExitVSlot(n) })
}

// transformAlterable visits an entry of a v-slot's alterable list. Those
// entries are v-if/v-for wrappers around slots, or slots themselves.
func (t *Engine) transformAlterable(n ir.Node) {
	switch n := n.(type) {
	case *ir.AlterableSlot:
		t.transformExpr(&n.Name)
		t.transformChildren(&n.Body)
	case *ir.If:
		t.enter(func(p Pass) { p.EnterIf(n) })
		for i := range n.Branches {
			b := &n.Branches[i]
			if b.Condition != nil {
				t.transformExpr(&b.Condition)
			}
			t.transformAlterable(b.Child)
		}
		t.exit(func(p Pass) { p.ExitIf(n) })
	case *ir.For:
		t.enter(func(p Pass) { p.EnterFor(n) })
		t.transformExpr(&n.Source)
		t.transformAlterable(n.Child)
		t.exit(func(p Pass) { p.ExitFor(n) })
	default:
		t.transformIR(n)
	}
}

func (t *Engine) transformExpr(e *ir.Expr) {
	t.enter(func(p Pass) { p.EnterExpr(e) })
	t.exit(func(p Pass) { p.ExitExpr(e) })
}

func (t *Engine) transformComment(n *ir.CommentCall) {
	t.enter(func(p Pass) { p.EnterComment(n) })
	t.exit(func(p Pass) { p.ExitComment(n) })
}
