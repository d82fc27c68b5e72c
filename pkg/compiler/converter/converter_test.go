package converter

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recera/vuec/pkg/compiler/diag"
	"github.com/recera/vuec/pkg/compiler/flags"
	"github.com/recera/vuec/pkg/compiler/ir"
)

func TestRegistry(t *testing.T) {
	r := DefaultRegistry()
	assert.Equal(t, []string{"model", "html", "text", "show"}, r.Names())

	_, ok := r.Lookup("model")
	assert.True(t, ok)
	_, ok = r.Lookup("v-model")
	assert.False(t, ok, "lookup is by exact name")

	r = RegistryFor([]string{"show", "nope"})
	assert.Equal(t, []string{"show"}, r.Names())

	called := false
	r.Register(DirectiveConverter{Name: "show", Convert: func(*Directive, *Element, diag.ErrorHandler) Result {
		called = true
		return DroppedResult()
	}})
	conv, _ := r.Lookup("show")
	conv(&Directive{}, &Element{}, nil)
	assert.True(t, called)
	assert.Equal(t, []string{"show"}, r.Names())
}

func TestVHtml(t *testing.T) {
	var errs diag.Collector
	dir := &Directive{Name: "html", Expression: &AttributeValue{Content: "raw"}}

	res := VHtml.Convert(dir, &Element{Tag: "div", Children: 2}, &errs)
	require.Equal(t, Converted, res.Kind)
	assert.Equal(t, `{"innerHTML": raw}`, ir.Source(res.Value))
	require.Equal(t, 1, errs.Len())
	assert.Equal(t, diag.VHtmlWithChildren, errs.Errors()[0].Kind)

	res = VHtml.Convert(&Directive{Name: "html"}, &Element{Tag: "div"}, &errs)
	assert.Equal(t, Dropped, res.Kind)
	assert.Equal(t, diag.VHtmlNoExpression, errs.Errors()[1].Kind)
}

func TestVText(t *testing.T) {
	var errs diag.Collector
	dir := &Directive{Name: "text", Expression: &AttributeValue{Content: "msg"}}

	res := VText.Convert(dir, &Element{Tag: "span"}, &errs)
	require.Equal(t, Converted, res.Kind)
	assert.Zero(t, errs.Len())
	want := &ir.Props{Entries: []ir.Prop{{
		Key:   ir.Str("textContent"),
		Value: &ir.Call{Helper: flags.ToDisplayString, Args: []ir.Expr{ir.NewSimple("msg")}},
	}}}
	if diff := cmp.Diff(want, res.Value); diff != "" {
		t.Errorf("props mismatch (-want +got):\n%s", diff)
	}

	res = VText.Convert(&Directive{Name: "text", Expression: &AttributeValue{Content: " "}}, &Element{}, &errs)
	assert.Equal(t, Dropped, res.Kind)
	require.Equal(t, 1, errs.Len())
	assert.Equal(t, diag.VTextNoExpression, errs.Errors()[0].Kind)
}

func TestVShow(t *testing.T) {
	var errs diag.Collector
	res := VShow.Convert(&Directive{Name: "show", Expression: &AttributeValue{Content: "visible"}}, &Element{}, &errs)

	require.Equal(t, Converted, res.Kind)
	assert.Nil(t, res.Value)
	require.NotNil(t, res.RuntimeDir)
	assert.Equal(t, &ir.Symbol{Helper: flags.VShow}, res.RuntimeDir.Name)
	assert.Equal(t, ir.NewSimple("visible"), res.RuntimeDir.Expr)

	loc := diag.SourceLocation{Start: diag.Position{Line: 3, Column: 7}, End: diag.Position{Line: 3, Column: 13}}
	res = VShow.Convert(&Directive{Name: "show", HeadLoc: loc}, &Element{}, &errs)
	assert.Equal(t, Dropped, res.Kind)
	require.Equal(t, 1, errs.Len())
	assert.Equal(t, diag.VShowNoExpression, errs.Errors()[0].Kind)
	assert.Equal(t, loc, errs.Errors()[0].Location)
}

func TestConvertElement(t *testing.T) {
	var errs diag.Collector
	elem := &Element{Tag: "MyInput", TagType: Component}
	dirs := []Directive{
		{Name: "model", Expression: &AttributeValue{Content: "form.name"}, Modifiers: []string{"trim"}},
		{Name: "show", Expression: &AttributeValue{Content: "open"}},
		{Name: "focus", Argument: &DirectiveArg{Value: "delay"}, Modifiers: []string{"once"}},
		{Name: "model", Expression: &AttributeValue{Content: "1 + 1"}},
		{Name: "tooltip", Expression: &AttributeValue{Content: "tip"}, Argument: &DirectiveArg{Value: "side", Dynamic: true}},
	}

	conv := ConvertElement(dirs, elem, DefaultRegistry(), &errs)

	assert.Equal(t, 1, conv.Dropped)
	require.Equal(t, 1, errs.Len())
	assert.Equal(t, diag.VModelMalformedExpression, errs.Errors()[0].Kind)
	assert.Equal(t, `{"modelValue": form.name, "modelModifiers": {"trim": true}}`, ir.Source(conv.PropsExpr()))

	want := []ir.RuntimeDir{
		{Name: &ir.Symbol{Helper: flags.VShow}, Expr: ir.NewSimple("open")},
		{
			Name: ir.Str("focus"),
			Arg:  ir.Str("delay"),
			Mods: &ir.Props{Entries: []ir.Prop{{Key: ir.Str("once"), Value: &ir.Src{Code: "true"}}}},
		},
		{Name: ir.Str("tooltip"), Expr: ir.NewSimple("tip"), Arg: ir.NewSimple("side")},
	}
	if diff := cmp.Diff(want, conv.Directives); diff != "" {
		t.Errorf("runtime directives mismatch (-want +got):\n%s", diff)
	}
}

func TestConvertElement_NeedRuntimeAndSpreads(t *testing.T) {
	r := NewRegistry(DirectiveConverter{
		Name: "bind",
		Convert: func(dir *Directive, _ *Element, _ diag.ErrorHandler) Result {
			return Result{Kind: Converted, Value: ir.NewSimple(dir.Expression.Content), NeedRuntime: true}
		},
	})
	dirs := []Directive{{Name: "bind", Expression: &AttributeValue{Content: "attrs"}}}

	conv := ConvertElement(dirs, &Element{Tag: "div"}, r, nil)

	assert.Equal(t, "[attrs]", ir.Source(conv.PropsExpr()))
	require.Len(t, conv.Directives, 1)
	assert.Equal(t, ir.Str("bind"), conv.Directives[0].Name)

	var empty Conversion
	assert.Nil(t, empty.PropsExpr())
}
