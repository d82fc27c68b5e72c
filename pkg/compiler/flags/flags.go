// Package flags defines the closed sets of symbolic IDs shared by the
// compiler stages: runtime helpers and static levels.
package flags

import "strings"

// RuntimeHelper identifies a runtime support function the generated render
// code imports. The numeric order is the order helpers are emitted in.
type RuntimeHelper uint8

const (
	Fragment RuntimeHelper = iota
	Teleport
	Suspense
	KeepAlive
	BaseTransition
	OpenBlock
	CreateBlock
	CreateElementBlock
	CreateVNode
	CreateElementVNode
	CreateComment
	CreateText
	CreateStatic
	ResolveComponent
	ResolveDynamicComponent
	ResolveDirective
	ResolveFilter
	WithDirectives
	RenderList
	RenderSlot
	CreateSlots
	ToDisplayString
	MergeProps
	NormalizeClass
	NormalizeStyle
	NormalizeProps
	GuardReactiveProps
	ToHandlers
	Camelize
	Capitalize
	ToHandlerKey
	SetBlockTracking
	PushScopeId
	PopScopeId
	WithCtx
	Unref
	IsRef
	WithMemo
	IsMemoSame
	VShow

	helperCount
)

var helperNames = [helperCount]string{
	Fragment:                "Fragment",
	Teleport:                "Teleport",
	Suspense:                "Suspense",
	KeepAlive:               "KeepAlive",
	BaseTransition:          "BaseTransition",
	OpenBlock:               "openBlock",
	CreateBlock:             "createBlock",
	CreateElementBlock:      "createElementBlock",
	CreateVNode:             "createVNode",
	CreateElementVNode:      "createElementVNode",
	CreateComment:           "createCommentVNode",
	CreateText:              "createTextVNode",
	CreateStatic:            "createStaticVNode",
	ResolveComponent:        "resolveComponent",
	ResolveDynamicComponent: "resolveDynamicComponent",
	ResolveDirective:        "resolveDirective",
	ResolveFilter:           "resolveFilter",
	WithDirectives:          "withDirectives",
	RenderList:              "renderList",
	RenderSlot:              "renderSlot",
	CreateSlots:             "createSlots",
	ToDisplayString:         "toDisplayString",
	MergeProps:              "mergeProps",
	NormalizeClass:          "normalizeClass",
	NormalizeStyle:          "normalizeStyle",
	NormalizeProps:          "normalizeProps",
	GuardReactiveProps:      "guardReactiveProps",
	ToHandlers:              "toHandlers",
	Camelize:                "camelize",
	Capitalize:              "capitalize",
	ToHandlerKey:            "toHandlerKey",
	SetBlockTracking:        "setBlockTracking",
	PushScopeId:             "pushScopeId",
	PopScopeId:              "popScopeId",
	WithCtx:                 "withCtx",
	Unref:                   "unref",
	IsRef:                   "isRef",
	WithMemo:                "withMemo",
	IsMemoSame:              "isMemoSame",
	VShow:                   "vShow",
}

// String returns the exported runtime name of the helper.
func (h RuntimeHelper) String() string {
	if h >= helperCount {
		return "unknown"
	}
	return helperNames[h]
}

// Valid reports whether h is a member of the helper set.
func (h RuntimeHelper) Valid() bool {
	return h < helperCount
}

// HelperFromName looks a helper up by its runtime name.
func HelperFromName(name string) (RuntimeHelper, bool) {
	for i, n := range helperNames {
		if n == name {
			return RuntimeHelper(i), true
		}
	}
	return 0, false
}

// HelperCollector is the set of helpers a compilation depends on.
// The zero value is an empty set.
type HelperCollector uint64

// Collect adds h to the set. Collecting twice is a no-op.
func (c *HelperCollector) Collect(h RuntimeHelper) {
	*c |= 1 << h
}

// Contains reports whether h has been collected.
func (c HelperCollector) Contains(h RuntimeHelper) bool {
	return c&(1<<h) != 0
}

// Union returns the set of helpers present in either collector.
func (c HelperCollector) Union(o HelperCollector) HelperCollector {
	return c | o
}

// Len returns the number of collected helpers.
func (c HelperCollector) Len() int {
	n := 0
	for v := c; v != 0; v &= v - 1 {
		n++
	}
	return n
}

// IsEmpty reports whether nothing has been collected.
func (c HelperCollector) IsEmpty() bool {
	return c == 0
}

// Helpers returns the collected helpers in emission order.
func (c HelperCollector) Helpers() []RuntimeHelper {
	out := make([]RuntimeHelper, 0, c.Len())
	for h := RuntimeHelper(0); h < helperCount; h++ {
		if c.Contains(h) {
			out = append(out, h)
		}
	}
	return out
}

// Names returns the runtime names of the collected helpers in emission order.
func (c HelperCollector) Names() []string {
	hs := c.Helpers()
	out := make([]string, len(hs))
	for i, h := range hs {
		out[i] = h.String()
	}
	return out
}

func (c HelperCollector) String() string {
	return "{" + strings.Join(c.Names(), ", ") + "}"
}

// StaticLevel grades how much of an expression or node is known at compile
// time. Higher levels allow more aggressive hoisting.
type StaticLevel uint8

const (
	NotStatic StaticLevel = iota
	CanSkipPatch
	CanHoist
	CanStringify
)

func (l StaticLevel) String() string {
	switch l {
	case NotStatic:
		return "not-static"
	case CanSkipPatch:
		return "can-skip-patch"
	case CanHoist:
		return "can-hoist"
	case CanStringify:
		return "can-stringify"
	}
	return "unknown"
}
