package iptables

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/livp123/netxconf/pkg/errors"
)

// ValidateRule reports values EncodeRule could not write in a form
// ExtractFields reads back.
// ValidateRule 检查规则值能否在编码后被重新解析。
func ValidateRule(r Rule) error {
	if !isToken(r.Chain) {
		return errors.NewFormatError(fmt.Sprintf("invalid chain name %q", r.Chain))
	}
	for _, f := range Fields() {
		v, ok := r.Get(f).Get()
		if !ok {
			continue
		}
		if err := validateValue(specFor(f), v); err != nil {
			return errors.NewFormatError(fmt.Sprintf("chain %s: %s: %v", r.Chain, f, err))
		}
	}
	return nil
}

func validateValue(spec fieldSpec, v string) error {
	if spec.shape == shapeQuoted {
		if strings.ContainsAny(v, "\r\n") {
			return fmt.Errorf("value may not span lines")
		}
		return nil
	}
	if !isToken(v) {
		return fmt.Errorf("%q is not a single token", v)
	}
	if got, ok := spec.accept(v); !ok || got != v {
		switch spec.shape {
		case shapeInteger:
			return fmt.Errorf("%q is not an integer", v)
		case shapeModule:
			return fmt.Errorf("module %q has its own field", v)
		}
		return fmt.Errorf("%q is not accepted", v)
	}
	return nil
}

// isToken reports whether v survives tokenize as one bare token that is not
// mistaken for a flag.
func isToken(v string) bool {
	if v == "" || strings.HasPrefix(v, "-") || strings.ContainsRune(v, '"') {
		return false
	}
	return strings.IndexFunc(v, unicode.IsSpace) < 0
}

// ValidateDocument checks that EncodeDocument(doc) parses back into the same
// tables: at least one table, table names that form a "*name" marker, chain
// declarations that start with ":" and rules that pass ValidateRule.
// ValidateDocument 检查文档编码后能否按相同的表结构重新解析。
func ValidateDocument(doc *Document) error {
	if doc == nil || doc.Len() == 0 {
		return errors.NewFormatError("document has no tables")
	}
	for _, name := range doc.Names() {
		if name == "" || strings.ContainsRune(name, '*') || strings.IndexFunc(name, unicode.IsSpace) >= 0 {
			return errors.NewFormatError(fmt.Sprintf("invalid table name %q", name))
		}
		t, _ := doc.Table(name)
		if t == nil {
			return errors.NewFormatError(fmt.Sprintf("table %s is empty", name))
		}
		for _, c := range t.Chains {
			if !strings.HasPrefix(c, ":") || len(c) < 2 || strings.ContainsAny(c, "\r\n") {
				return errors.NewFormatError(fmt.Sprintf("table %s: invalid chain declaration %q", name, c))
			}
		}
		for i, r := range t.Rules {
			if err := ValidateRule(r); err != nil {
				return fmt.Errorf("table %s rule %d: %w", name, i, err)
			}
		}
	}
	return nil
}
