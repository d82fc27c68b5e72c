package transformer

import (
	"context"

	"goa.design/clue/log"

	"github.com/recera/vuec/pkg/compiler/ir"
)

// Tracer logs every hook it receives at debug level. Register it first to
// see enter events before, and exit events after, all other passes.
type Tracer struct {
	ctx   context.Context
	depth int
	count int
}

// NewTracer returns a tracing pass logging into the clue logger in ctx.
func NewTracer(ctx context.Context) *Tracer {
	return &Tracer{ctx: ctx}
}

// Events returns the number of hooks traced so far.
func (t *Tracer) Events() int {
	return t.count
}

func (t *Tracer) enter(kind string) {
	t.log("enter", kind)
	t.depth++
}

func (t *Tracer) exit(kind string) {
	t.depth--
	t.log("exit", kind)
}

func (t *Tracer) log(event, kind string) {
	t.count++
	log.Debug(t.ctx,
		log.KV{K: "msg", V: "transform"},
		log.KV{K: "event", V: event},
		log.KV{K: "node", V: kind},
		log.KV{K: "depth", V: t.depth},
	)
}

func (t *Tracer) EnterRoot(*ir.Root)                 { t.enter("root") }
func (t *Tracer) ExitRoot(*ir.Root)                  { t.exit("root") }
func (t *Tracer) EnterChildren(*[]ir.Node)           { t.enter("children") }
func (t *Tracer) ExitChildren(*[]ir.Node)            { t.exit("children") }
func (t *Tracer) EnterText(*ir.TextCall)             { t.enter("text") }
func (t *Tracer) ExitText(*ir.TextCall)              { t.exit("text") }
func (t *Tracer) EnterIf(*ir.If)                     { t.enter("if") }
func (t *Tracer) ExitIf(*ir.If)                      { t.exit("if") }
func (t *Tracer) EnterFor(*ir.For)                   { t.enter("for") }
func (t *Tracer) ExitFor(*ir.For)                    { t.exit("for") }
func (t *Tracer) EnterVNode(*ir.VNodeCall)           { t.enter("vnode") }
func (t *Tracer) ExitVNode(*ir.VNodeCall)            { t.exit("vnode") }
func (t *Tracer) EnterSlotOutlet(*ir.RenderSlotCall) { t.enter("slot-outlet") }
func (t *Tracer) ExitSlotOutlet(*ir.RenderSlotCall)  { t.exit("slot-outlet") }
func (t *Tracer) EnterVSlot(*ir.VSlotUse)            { t.enter("v-slot") }
func (t *Tracer) ExitVSlot(*ir.VSlotUse)             { t.exit("v-slot") }
func (t *Tracer) EnterExpr(*ir.Expr)                 { t.enter("expr") }
func (t *Tracer) ExitExpr(*ir.Expr)                  { t.exit("expr") }
func (t *Tracer) EnterComment(*ir.CommentCall)       { t.enter("comment") }
func (t *Tracer) ExitComment(*ir.CommentCall)        { t.exit("comment") }
