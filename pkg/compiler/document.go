package compiler

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/recera/vuec/pkg/compiler/converter"
	"github.com/recera/vuec/pkg/compiler/diag"
	"github.com/recera/vuec/pkg/compiler/flags"
	"github.com/recera/vuec/pkg/compiler/ir"
)

// An IR document is a YAML description of a parsed template. Each node is
// a mapping with exactly one of the keys below.
//
//	body:
//	  - element:
//	      tag: MyInput
//	      component: true
//	      directives:
//	        - {name: model, exp: form.name, modifiers: [trim]}
//	      children:
//	        - text: "Hello {{ user.name }}"
//	  - if:
//	      - {cond: ok, then: {comment: yes}}
//	      - {then: {text: "no"}}
//	  - for: {source: items, value: item, body: {element: {tag: li}}}
//	  - slot: {name: footer, fallback: [{text: none}]}
type document struct {
	Body []docNode `yaml:"body"`
}

type docNode struct {
	Text    *string        `yaml:"text"`
	Comment *string        `yaml:"comment"`
	If      []docBranch    `yaml:"if"`
	For     *docFor        `yaml:"for"`
	Element *docElement    `yaml:"element"`
	Slot    *docSlotOutlet `yaml:"slot"`
}

type docBranch struct {
	Cond *string  `yaml:"cond"`
	Then *docNode `yaml:"then"`
}

type docFor struct {
	Source string   `yaml:"source"`
	Value  string   `yaml:"value"`
	Key    string   `yaml:"key"`
	Index  string   `yaml:"index"`
	Stable bool     `yaml:"stable"`
	Body   *docNode `yaml:"body"`
}

type docAttr struct {
	Name  string `yaml:"name"`
	Value string `yaml:"value"`
	Bind  bool   `yaml:"bind"`
}

type docDirective struct {
	Name      string   `yaml:"name"`
	Exp       *string  `yaml:"exp"`
	Arg       *string  `yaml:"arg"`
	Dynamic   bool     `yaml:"dynamic"`
	Modifiers []string `yaml:"modifiers"`
	Line      int      `yaml:"line"`
	Column    int      `yaml:"column"`
}

type docElement struct {
	Tag        string         `yaml:"tag"`
	Component  bool           `yaml:"component"`
	Block      bool           `yaml:"block"`
	Attrs      []docAttr      `yaml:"attrs"`
	Directives []docDirective `yaml:"directives"`
	Children   []docNode      `yaml:"children"`
	Slots      *docSlots      `yaml:"slots"`
}

type docSlots struct {
	Stable    []docSlot `yaml:"stable"`
	Alterable []docSlot `yaml:"alterable"`
}

type docSlot struct {
	Name  string    `yaml:"name"`
	Param string    `yaml:"param"`
	If    string    `yaml:"if"`
	For   string    `yaml:"for"`
	Body  []docNode `yaml:"body"`
}

type docSlotOutlet struct {
	Name     string    `yaml:"name"`
	Props    string    `yaml:"props"`
	Fallback []docNode `yaml:"fallback"`
}

// loader turns a decoded document into IR, converting directives on the
// way. Data-driven problems go to eh; structural problems are errors.
type loader struct {
	name     string
	registry *converter.Registry
	eh       diag.ErrorHandler
}

// LoadDocument decodes a YAML IR document into a tree.
func LoadDocument(name string, data []byte, registry *converter.Registry, eh diag.ErrorHandler) (*ir.Root, error) {
	var doc document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if registry == nil {
		registry = converter.DefaultRegistry()
	}

	l := &loader{name: name, registry: registry, eh: eh}
	body, err := l.nodes(doc.Body, "body")
	if err != nil {
		return nil, err
	}
	return &ir.Root{Body: body}, nil
}

func (l *loader) errorf(path, format string, args ...any) error {
	return fmt.Errorf("%s: %s: %s", l.name, path, fmt.Sprintf(format, args...))
}

func (l *loader) nodes(ns []docNode, path string) ([]ir.Node, error) {
	out := make([]ir.Node, 0, len(ns))
	for i := range ns {
		n, err := l.node(&ns[i], fmt.Sprintf("%s[%d]", path, i))
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

func (l *loader) node(n *docNode, path string) (ir.Node, error) {
	if n == nil {
		return nil, l.errorf(path, "missing node")
	}
	set := 0
	for _, ok := range []bool{n.Text != nil, n.Comment != nil, n.If != nil, n.For != nil, n.Element != nil, n.Slot != nil} {
		if ok {
			set++
		}
	}
	if set != 1 {
		return nil, l.errorf(path, "expected exactly one of text, comment, if, for, element, slot")
	}

	switch {
	case n.Text != nil:
		return textCall(*n.Text), nil
	case n.Comment != nil:
		return &ir.CommentCall{Text: *n.Comment}, nil
	case n.If != nil:
		return l.ifNode(n.If, path+".if")
	case n.For != nil:
		return l.forNode(n.For, path+".for")
	case n.Element != nil:
		return l.element(n.Element, path+".element")
	default:
		return l.slotOutlet(n.Slot, path+".slot")
	}
}

// textCall splits text into literal runs and {{ }} interpolations.
func textCall(s string) *ir.TextCall {
	t := &ir.TextCall{}
	for s != "" {
		open := strings.Index(s, "{{")
		if open < 0 {
			break
		}
		end := strings.Index(s[open:], "}}")
		if end < 0 {
			break
		}
		if open > 0 {
			t.Texts = append(t.Texts, ir.Str(s[:open]))
		}
		expr := strings.TrimSpace(s[open+2 : open+end])
		t.Texts = append(t.Texts, &ir.Call{
			Helper: flags.ToDisplayString,
			Args:   []ir.Expr{ir.NewSimple(expr)},
		})
		t.NeedPatch = true
		s = s[open+end+2:]
	}
	if s != "" {
		t.Texts = append(t.Texts, ir.Str(s))
	}
	return t
}

func (l *loader) ifNode(bs []docBranch, path string) (ir.Node, error) {
	if len(bs) == 0 {
		return nil, l.errorf(path, "if needs at least one branch")
	}
	n := &ir.If{Branches: make([]ir.IfBranch, 0, len(bs))}
	for i, b := range bs {
		bp := fmt.Sprintf("%s[%d]", path, i)
		if b.Cond == nil && i != len(bs)-1 {
			return nil, l.errorf(bp, "else branch must be last")
		}
		child, err := l.node(b.Then, bp+".then")
		if err != nil {
			return nil, err
		}
		branch := ir.IfBranch{Child: child, Key: i}
		if b.Cond != nil {
			branch.Condition = ir.NewSimple(*b.Cond)
		}
		n.Branches = append(n.Branches, branch)
	}
	return n, nil
}

func (l *loader) forNode(f *docFor, path string) (ir.Node, error) {
	if strings.TrimSpace(f.Source) == "" {
		return nil, l.errorf(path, "for needs a source")
	}
	child, err := l.node(f.Body, path+".body")
	if err != nil {
		return nil, err
	}
	return &ir.For{
		Source: ir.NewSimple(f.Source),
		Parse: ir.ForParse{
			Value: param(f.Value),
			Key:   param(f.Key),
			Index: param(f.Index),
		},
		Child:    child,
		IsStable: f.Stable,
	}, nil
}

func param(name string) ir.Expr {
	if name == "" {
		return nil
	}
	return &ir.Param{Name: name}
}

func (l *loader) element(e *docElement, path string) (ir.Node, error) {
	if e.Tag == "" {
		return nil, l.errorf(path, "element needs a tag")
	}
	children, err := l.nodes(e.Children, path+".children")
	if err != nil {
		return nil, err
	}

	elem := &converter.Element{Tag: e.Tag, Children: len(children)}
	if e.Component {
		elem.TagType = converter.Component
	}
	dirs := make([]converter.Directive, len(e.Directives))
	for i, d := range e.Directives {
		dirs[i] = directive(d)
	}
	conv := converter.ConvertElement(dirs, elem, l.registry, l.eh)

	props := make([]ir.Prop, 0, len(e.Attrs)+len(conv.Props))
	for _, a := range e.Attrs {
		var val ir.Expr = ir.Str(a.Value)
		if a.Bind {
			val = ir.NewSimple(a.Value)
		}
		props = append(props, ir.Prop{Key: ir.Str(a.Name), Value: val})
	}
	conv.Props = append(props, conv.Props...)

	v := &ir.VNodeCall{
		Tag:         ir.Str(e.Tag),
		Props:       conv.PropsExpr(),
		Children:    children,
		Directives:  conv.Directives,
		IsBlock:     e.Block,
		IsComponent: e.Component,
	}
	if e.Slots != nil {
		if !e.Component {
			return nil, l.errorf(path, "slots are only allowed on components")
		}
		slots, err := l.slots(e.Slots, path+".slots")
		if err != nil {
			return nil, err
		}
		v.Children = append(v.Children, slots)
	}
	return v, nil
}

func directive(d docDirective) converter.Directive {
	loc := diag.SourceLocation{
		Start: diag.Position{Line: d.Line, Column: d.Column},
		End:   diag.Position{Line: d.Line, Column: d.Column + len(d.Name) + 2},
	}
	dir := converter.Directive{
		Name:      d.Name,
		Modifiers: d.Modifiers,
		HeadLoc:   loc,
		Location:  loc,
	}
	if d.Exp != nil {
		dir.Expression = &converter.AttributeValue{Content: *d.Exp, Location: loc}
	}
	if d.Arg != nil {
		dir.Argument = &converter.DirectiveArg{Value: *d.Arg, Dynamic: d.Dynamic}
	}
	return dir
}

func (l *loader) slots(s *docSlots, path string) (*ir.VSlotUse, error) {
	use := &ir.VSlotUse{}
	for i, st := range s.Stable {
		sp := fmt.Sprintf("%s.stable[%d]", path, i)
		slot, err := l.slot(st, sp)
		if err != nil {
			return nil, err
		}
		use.StableSlots = append(use.StableSlots, slot)
	}
	for i, al := range s.Alterable {
		sp := fmt.Sprintf("%s.alterable[%d]", path, i)
		slot, err := l.slot(al, sp)
		if err != nil {
			return nil, err
		}
		var n ir.Node = &ir.AlterableSlot{Slot: slot}
		switch {
		case al.If != "" && al.For != "":
			return nil, l.errorf(sp, "alterable slot takes either if or for")
		case al.If != "":
			n = &ir.If{Branches: []ir.IfBranch{{Condition: ir.NewSimple(al.If), Child: n}}}
		case al.For != "":
			n = &ir.For{Source: ir.NewSimple(al.For), Child: n}
		}
		use.AlterableSlots = append(use.AlterableSlots, n)
	}
	return use, nil
}

func (l *loader) slot(s docSlot, path string) (ir.Slot, error) {
	if s.Name == "" {
		return ir.Slot{}, l.errorf(path, "slot needs a name")
	}
	body, err := l.nodes(s.Body, path+".body")
	if err != nil {
		return ir.Slot{}, err
	}
	return ir.Slot{Name: ir.Str(s.Name), Param: param(s.Param), Body: body}, nil
}

func (l *loader) slotOutlet(s *docSlotOutlet, path string) (ir.Node, error) {
	fallbacks, err := l.nodes(s.Fallback, path+".fallback")
	if err != nil {
		return nil, err
	}
	name := s.Name
	if name == "" {
		name = "default"
	}
	r := &ir.RenderSlotCall{
		SlotObj:   &ir.Src{Code: "$slots"},
		SlotName:  ir.Str(name),
		Fallbacks: fallbacks,
	}
	if s.Props != "" {
		r.SlotProps = ir.NewSimple(s.Props)
	}
	return r, nil
}
