package ruleset

import (
	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/livp123/netxconf/internal/iptables"
	"github.com/livp123/netxconf/pkg/errors"
)

// Query is a compiled boolean filter over rule fields, for example
// `protocol == "tcp" && destinationPort in ["22", "443"]`.
// Every field name is defined; an absent field evaluates to nil. The
// variables chain, table and index are also available.
// Query 是针对规则字段编译后的布尔过滤表达式。
type Query struct {
	src     string
	program *vm.Program
}

// Match is one rule selected by a query.
type Match struct {
	Table string        `json:"table"`
	Index int           `json:"index"`
	Rule  iptables.Rule `json:"rule"`
}

func compileEnv() map[string]any {
	env := map[string]any{
		"chain": "",
		"table": "",
		"index": 0,
	}
	for _, f := range iptables.Fields() {
		env[f.String()] = nil
	}
	return env
}

// CompileQuery compiles src. Syntax errors, unknown names and non-boolean
// results fail with errors.ErrInvalidQuery.
// CompileQuery 编译查询表达式。
func CompileQuery(src string) (*Query, error) {
	program, err := expr.Compile(src, expr.Env(compileEnv()), expr.AsBool())
	if err != nil {
		return nil, errors.NewQueryError(src, err)
	}
	return &Query{src: src, program: program}, nil
}

func (q *Query) String() string { return q.src }

// Matches evaluates the query for one rule. A runtime error, such as calling
// a string function on an absent field, counts as no match.
func (q *Query) Matches(table string, index int, r iptables.Rule) bool {
	env := map[string]any{
		"chain": r.Chain,
		"table": table,
		"index": index,
	}
	for _, f := range iptables.Fields() {
		if v, ok := r.Get(f).Get(); ok {
			env[f.String()] = v
		} else {
			env[f.String()] = nil
		}
	}
	out, err := expr.Run(q.program, env)
	if err != nil {
		return false
	}
	matched, ok := out.(bool)
	return ok && matched
}

// Filter returns the rules of doc that match, in document order.
// Filter 按文档顺序返回匹配的规则。
func (q *Query) Filter(doc *iptables.Document) []Match {
	var out []Match
	for _, name := range doc.Names() {
		t, _ := doc.Table(name)
		for i, r := range t.Rules {
			if q.Matches(name, i, r) {
				out = append(out, Match{Table: name, Index: i, Rule: r})
			}
		}
	}
	return out
}

// Select compiles src and filters doc in one call.
func Select(doc *iptables.Document, src string) ([]Match, error) {
	q, err := CompileQuery(src)
	if err != nil {
		return nil, err
	}
	return q.Filter(doc), nil
}
