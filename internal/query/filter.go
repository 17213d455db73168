// Package query filters decoded characters with boolean expressions such as
// `level >= 80 && class == "Sorceress" && !hardcore`.
package query

import (
	"fmt"
	"sort"

	"github.com/casbin/govaluate"
	"github.com/d2vault/d2vault/internal/d2s"
)

// Filter is a compiled expression. It is safe for concurrent use.
type Filter struct {
	src  string
	expr *govaluate.EvaluableExpression
}

// Compile parses expr and rejects references to unknown parameters.
func Compile(expr string) (*Filter, error) {
	e, err := govaluate.NewEvaluableExpression(expr)
	if err != nil {
		return nil, fmt.Errorf("parse filter %q: %w", expr, err)
	}
	for _, v := range e.Vars() {
		if _, ok := params[v]; !ok {
			return nil, fmt.Errorf("filter %q: unknown parameter %q", expr, v)
		}
	}
	return &Filter{src: expr, expr: e}, nil
}

func (f *Filter) String() string {
	return f.src
}

// Match evaluates the filter against s. An expression that does not yield a
// boolean is an error.
func (f *Filter) Match(s *d2s.Save) (bool, error) {
	result, err := f.expr.Eval(parameters{s})
	if err != nil {
		return false, fmt.Errorf("evaluate filter %q: %w", f.src, err)
	}
	ok, isBool := result.(bool)
	if !isBool {
		return false, fmt.Errorf("filter %q yields %T, want bool", f.src, result)
	}
	return ok, nil
}

var params = map[string]func(s *d2s.Save) interface{}{
	"name":        func(s *d2s.Save) interface{} { return s.DisplayName() },
	"class":       func(s *d2s.Save) interface{} { return d2s.ClassName(int(s.Class)) },
	"level":       func(s *d2s.Save) interface{} { return float64(s.Level) },
	"experience":  func(s *d2s.Save) interface{} { return float64(s.Stats.Experience) },
	"gold":        func(s *d2s.Save) interface{} { return float64(s.Stats.Gold) },
	"stash":       func(s *d2s.Save) interface{} { return float64(s.Stats.GoldBank) },
	"strength":    func(s *d2s.Save) interface{} { return float64(s.Stats.Strength) },
	"energy":      func(s *d2s.Save) interface{} { return float64(s.Stats.Energy) },
	"dexterity":   func(s *d2s.Save) interface{} { return float64(s.Stats.Dexterity) },
	"vitality":    func(s *d2s.Save) interface{} { return float64(s.Stats.Vitality) },
	"hardcore":    func(s *d2s.Save) interface{} { return s.Hardcore() },
	"expansion":   func(s *d2s.Save) interface{} { return s.Expansion() },
	"died":        func(s *d2s.Save) interface{} { return s.Died() },
	"items":       func(s *d2s.Save) interface{} { return float64(s.Items.Len()) },
	"item_errors": func(s *d2s.Save) interface{} { return float64(s.Items.Errors) },
	"merc":        func(s *d2s.Save) interface{} { return s.Merc.Hired() },
	"golem":       func(s *d2s.Save) interface{} { return s.Golem.Exists },
}

// Params lists the parameter names a filter may reference.
func Params() []string {
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// parameters resolves names lazily against one save.
type parameters struct {
	s *d2s.Save
}

func (p parameters) Get(name string) (interface{}, error) {
	fn, ok := params[name]
	if !ok {
		return nil, fmt.Errorf("unknown parameter %q", name)
	}
	return fn(p.s), nil
}
