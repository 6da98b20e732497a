// Package buildutil reads call arguments from buildtools syntax trees.
package buildutil

import (
	"strconv"

	"github.com/bazelbuild/buildtools/build"
)

// Arg returns the expression bound to the keyword argument name, or nil.
func Arg(call *build.CallExpr, name string) build.Expr {
	for _, arg := range call.List {
		assign, ok := arg.(*build.AssignExpr)
		if !ok {
			continue
		}
		if lhs, ok := assign.LHS.(*build.Ident); ok && lhs.Name == name {
			return assign.RHS
		}
	}
	return nil
}

// Has reports whether the keyword argument name is present.
func Has(call *build.CallExpr, name string) bool {
	return Arg(call, name) != nil
}

// String returns a string keyword argument. With an empty name it returns
// the first positional argument when that is a string.
func String(call *build.CallExpr, name string) string {
	var expr build.Expr
	if name == "" {
		if len(call.List) > 0 {
			expr = call.List[0]
		}
	} else {
		expr = Arg(call, name)
	}
	if str, ok := expr.(*build.StringExpr); ok {
		return str.Value
	}
	return ""
}

// StringDict returns a dict keyword argument whose keys and values are all
// strings. ok is false when the argument is missing, not a dict, or holds a
// non-string entry.
func StringDict(call *build.CallExpr, name string) (map[string]string, bool) {
	dict, isDict := Arg(call, name).(*build.DictExpr)
	if !isDict {
		return nil, false
	}
	out := make(map[string]string, len(dict.List))
	for _, kv := range dict.List {
		key, keyOK := kv.Key.(*build.StringExpr)
		value, valueOK := kv.Value.(*build.StringExpr)
		if !keyOK || !valueOK {
			return nil, false
		}
		out[key.Value] = value.Value
	}
	return out, true
}

// Dict returns a dict keyword argument converted with [Value], or nil.
func Dict(call *build.CallExpr, name string) map[string]any {
	m, _ := Value(Arg(call, name)).(map[string]any)
	return m
}

// List returns a list keyword argument converted with [Value], or nil.
func List(call *build.CallExpr, name string) []any {
	l, _ := Value(Arg(call, name)).([]any)
	return l
}

// Value converts a literal expression to plain Go values: strings, ints,
// booleans, nil for None, []any and map[string]any. Other identifiers come
// back as their name; any other expression is returned as is.
func Value(expr build.Expr) any {
	switch e := expr.(type) {
	case nil:
		return nil
	case *build.StringExpr:
		return e.Value
	case *build.LiteralExpr:
		if val, err := strconv.Atoi(e.Token); err == nil {
			return val
		}
		return e.Token
	case *build.Ident:
		switch e.Name {
		case "True":
			return true
		case "False":
			return false
		case "None":
			return nil
		}
		return e.Name
	case *build.ListExpr:
		out := make([]any, 0, len(e.List))
		for _, item := range e.List {
			out = append(out, Value(item))
		}
		return out
	case *build.DictExpr:
		out := make(map[string]any, len(e.List))
		for _, kv := range e.List {
			if key, ok := kv.Key.(*build.StringExpr); ok {
				out[key.Value] = Value(kv.Value)
			}
		}
		return out
	default:
		return expr
	}
}

// FuncName returns the name of a plain function call, or "" for method
// calls such as foo.bar().
func FuncName(call *build.CallExpr) string {
	if ident, ok := call.X.(*build.Ident); ok {
		return ident.Name
	}
	return ""
}
