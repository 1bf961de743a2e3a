package iptables

import (
	"encoding/json"
	"fmt"
)

// Table is one "*name ... COMMIT" block.
// Table 表示一个 "*name ... COMMIT" 块。
type Table struct {
	// Chains holds raw declaration lines such as ":INPUT ACCEPT [0:0]".
	Chains []string `json:"chains"`
	Rules  []Rule   `json:"rules"`
}

// AppendRule adds r to the end of the table.
func (t *Table) AppendRule(r Rule) {
	t.Rules = append(t.Rules, r)
}

// InsertRule places r at index i, shifting later rules down.
func (t *Table) InsertRule(i int, r Rule) error {
	if i < 0 || i > len(t.Rules) {
		return fmt.Errorf("rule index %d out of range [0,%d]", i, len(t.Rules))
	}
	t.Rules = append(t.Rules, Rule{})
	copy(t.Rules[i+1:], t.Rules[i:])
	t.Rules[i] = r
	return nil
}

// ReplaceRule swaps the rule at index i.
func (t *Table) ReplaceRule(i int, r Rule) error {
	if i < 0 || i >= len(t.Rules) {
		return fmt.Errorf("rule index %d out of range [0,%d)", i, len(t.Rules))
	}
	t.Rules[i] = r
	return nil
}

// DeleteRule removes the rule at index i.
func (t *Table) DeleteRule(i int) error {
	if i < 0 || i >= len(t.Rules) {
		return fmt.Errorf("rule index %d out of range [0,%d)", i, len(t.Rules))
	}
	t.Rules = append(t.Rules[:i], t.Rules[i+1:]...)
	return nil
}

// RulesInChain returns the rules appended to chain, in table order.
func (t *Table) RulesInChain(chain string) []Rule {
	var out []Rule
	for _, r := range t.Rules {
		if r.Chain == chain {
			out = append(out, r)
		}
	}
	return out
}

// Document is an ordered set of tables keyed by name.
// Document 是按名称索引的有序表集合。
type Document struct {
	names  []string
	tables map[string]*Table

	// DuplicateTables lists names that appeared more than once during parse.
	// The last block won.
	DuplicateTables []string
}

// NewDocument returns an empty document.
func NewDocument() *Document {
	return &Document{tables: make(map[string]*Table)}
}

// Names returns table names in insertion order.
func (d *Document) Names() []string {
	return append([]string(nil), d.names...)
}

// Table returns the named table.
func (d *Document) Table(name string) (*Table, bool) {
	t, ok := d.tables[name]
	return t, ok
}

// Set stores t under name. A new name goes to the end; an existing name keeps
// its position and the table is replaced.
func (d *Document) Set(name string, t *Table) {
	if d.tables == nil {
		d.tables = make(map[string]*Table)
	}
	if _, ok := d.tables[name]; !ok {
		d.names = append(d.names, name)
	}
	d.tables[name] = t
}

// Delete removes the named table and reports whether it existed.
func (d *Document) Delete(name string) bool {
	if _, ok := d.tables[name]; !ok {
		return false
	}
	delete(d.tables, name)
	for i, n := range d.names {
		if n == name {
			d.names = append(d.names[:i], d.names[i+1:]...)
			break
		}
	}
	return true
}

func (d *Document) Len() int { return len(d.names) }

// RuleCount sums rules over all tables.
func (d *Document) RuleCount() int {
	n := 0
	for _, t := range d.tables {
		n += len(t.Rules)
	}
	return n
}

// Equal compares table order, chains and rule fields.
func (d *Document) Equal(o *Document) bool {
	if d.Len() != o.Len() {
		return false
	}
	for i, name := range d.names {
		if o.names[i] != name {
			return false
		}
		a, b := d.tables[name], o.tables[name]
		if len(a.Chains) != len(b.Chains) || len(a.Rules) != len(b.Rules) {
			return false
		}
		for j := range a.Chains {
			if a.Chains[j] != b.Chains[j] {
				return false
			}
		}
		for j := range a.Rules {
			if !a.Rules[j].Equal(b.Rules[j]) {
				return false
			}
		}
	}
	return true
}

type namedTable struct {
	Name string `json:"name"`
	*Table
}

// MarshalJSON encodes the document as an ordered list of named tables.
func (d *Document) MarshalJSON() ([]byte, error) {
	out := make([]namedTable, 0, len(d.names))
	for _, name := range d.names {
		out = append(out, namedTable{Name: name, Table: d.tables[name]})
	}
	return json.Marshal(out)
}

func (d *Document) UnmarshalJSON(data []byte) error {
	var in []namedTable
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*d = Document{tables: make(map[string]*Table)}
	for _, nt := range in {
		if nt.Table == nil {
			nt.Table = &Table{}
		}
		if _, dup := d.tables[nt.Name]; dup {
			d.DuplicateTables = append(d.DuplicateTables, nt.Name)
		}
		d.Set(nt.Name, nt.Table)
	}
	return nil
}
