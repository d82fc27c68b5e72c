// Package ir defines the intermediate representation produced by template
// conversion and consumed by the transformer and the code generator.
//
// A Node is one of eight shapes. Children are held by value in slices, so
// insertion order is render order and rewrites replace slice elements in
// place.
package ir

import "github.com/recera/vuec/pkg/compiler/flags"

// Root is the top of a template's IR tree.
type Root struct {
	Body []Node
}

// Node is a member of the IR node union.
type Node interface {
	isNode()
}

// TextCall is a run of text and interpolations rendered as one text vnode.
type TextCall struct {
	Texts []Expr
	// FastPath is set when the text is the only child of an element and
	// can be set as textContent directly.
	FastPath bool
	// NeedPatch is set when the text contains dynamic parts.
	NeedPatch bool
}

// IfBranch is one arm of an If node. A nil Condition is the else arm and
// must be last.
type IfBranch struct {
	Condition Expr
	Child     Node
	Key       int
}

// If is a v-if/v-else-if/v-else chain.
type If struct {
	Branches []IfBranch
}

// HasElse reports whether the chain ends in an unconditional branch.
func (i *If) HasElse() bool {
	for _, b := range i.Branches {
		if b.Condition == nil {
			return true
		}
	}
	return false
}

// ForParse holds the v-for loop aliases. Any of them may be nil.
type ForParse struct {
	Value Expr
	Key   Expr
	Index Expr
}

// For is a v-for loop.
type For struct {
	Source   Expr
	Parse    ForParse
	Child    Node
	IsStable bool
}

// RuntimeDir is a directive applied at runtime via withDirectives.
type RuntimeDir struct {
	Name Expr
	Expr Expr
	Arg  Expr
	Mods Expr
}

// VNodeCall creates an element or component vnode.
type VNodeCall struct {
	Tag          Expr
	Props        Expr
	Children     []Node
	PatchFlag    int
	DynamicProps []string
	Directives   []RuntimeDir
	IsBlock      bool
	IsComponent  bool
	// DisableTracking marks blocks that must not track dynamic children,
	// such as unkeyed fragments produced by v-for.
	DisableTracking bool
}

// RenderSlotCall renders a slot outlet (<slot>).
type RenderSlotCall struct {
	SlotObj   Expr
	SlotName  Expr
	SlotProps Expr
	Fallbacks []Node
	NoSlotted bool
}

// CommentCall emits a comment vnode.
type CommentCall struct {
	Text string
}

// Slot is a slot body passed to a component.
type Slot struct {
	Name  Expr
	Param Expr
	Body  []Node
}

// VSlotUse is the slots object passed to a component. Stable slots are
// always present; alterable slots sit under v-if or v-for and are built
// with createSlots.
type VSlotUse struct {
	StableSlots    []Slot
	AlterableSlots []Node
}

// AlterableSlot is a slot nested inside a VSlotUse's alterable list. It is
// only valid there.
type AlterableSlot struct {
	Slot
}

func (*TextCall) isNode()       {}
func (*If) isNode()             {}
func (*For) isNode()            {}
func (*VNodeCall) isNode()      {}
func (*RenderSlotCall) isNode() {}
func (*CommentCall) isNode()    {}
func (*VSlotUse) isNode()       {}
func (*AlterableSlot) isNode()  {}

// Kind returns a short name for the node's shape.
func Kind(n Node) string {
	switch n.(type) {
	case *TextCall:
		return "text"
	case *If:
		return "if"
	case *For:
		return "for"
	case *VNodeCall:
		return "vnode"
	case *RenderSlotCall:
		return "slot-outlet"
	case *CommentCall:
		return "comment"
	case *VSlotUse:
		return "v-slot"
	case *AlterableSlot:
		return "alterable-slot"
	}
	return "unknown"
}

// VNodeCallHelper selects the creation helper for a vnode call.
func VNodeCallHelper(v *VNodeCall) flags.RuntimeHelper {
	switch {
	case v.IsBlock && v.IsComponent:
		return flags.CreateBlock
	case v.IsBlock:
		return flags.CreateElementBlock
	case v.IsComponent:
		return flags.CreateVNode
	default:
		return flags.CreateElementVNode
	}
}
