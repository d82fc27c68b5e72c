// Package util holds expression-analysis primitives shared by converters.
package util

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/js"
)

var simpleIdentifierRe = regexp.MustCompile(`^[A-Za-z_$][\w$]*$`)

// IsSimpleIdentifier reports whether s is a plain JavaScript identifier.
func IsSimpleIdentifier(s string) bool {
	return simpleIdentifierRe.MatchString(s)
}

// IsMemberExpression reports whether s parses as a single JavaScript
// expression that is an identifier or a property access, optional chains
// included. Calls, literals and operators are rejected since their result
// is not assignable.
func IsMemberExpression(s string) bool {
	if !utf8.ValidString(s) || strings.TrimSpace(s) == "" {
		return false
	}
	ast, err := js.Parse(parse.NewInputString(s), js.Options{})
	if err != nil || len(ast.List) != 1 {
		return false
	}
	stmt, ok := ast.List[0].(*js.ExprStmt)
	if !ok {
		return false
	}
	expr := stmt.Value
	for {
		g, ok := expr.(*js.GroupExpr)
		if !ok {
			break
		}
		expr = g.X
	}
	switch expr.(type) {
	case *js.Var, *js.DotExpr, *js.IndexExpr:
		return true
	}
	return false
}

// SuffixModifiers returns the modifiers prop key for a model prop name.
func SuffixModifiers(prop string) string {
	if prop == "modelValue" || prop == "model-value" {
		return "modelModifiers"
	}
	return prop + "Modifiers"
}
