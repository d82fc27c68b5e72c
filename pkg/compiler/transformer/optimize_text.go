package transformer

import "github.com/recera/vuec/pkg/compiler/ir"

// TextMerger folds runs of adjacent text calls into the first call of the
// run, so the code generator emits one text vnode per run.
type TextMerger struct {
	NopPass
	merged int
}

// NewTextMerger returns a text merging pass.
func NewTextMerger() *TextMerger {
	return &TextMerger{}
}

// Merged returns how many text calls were folded into a predecessor.
func (m *TextMerger) Merged() int {
	return m.merged
}

func (m *TextMerger) EnterChildren(cs *[]ir.Node) {
	children := *cs
	if len(children) < 2 {
		return
	}
	out := children[:0]
	var last *ir.TextCall
	for _, child := range children {
		t, ok := child.(*ir.TextCall)
		if !ok {
			last = nil
			out = append(out, child)
			continue
		}
		if last == nil {
			last = t
			out = append(out, child)
			continue
		}
		last.Texts = append(last.Texts, t.Texts...)
		last.FastPath = last.FastPath && t.FastPath
		last.NeedPatch = last.NeedPatch || t.NeedPatch
		m.merged++
	}
	for i := len(out); i < len(children); i++ {
		children[i] = nil
	}
	*cs = out
}
