package iptables

import (
	"strconv"
	"strings"
	"unicode"
)

// valueShape describes the token that must follow a flag.
type valueShape int

const (
	// shapeBare is any single whitespace-delimited token.
	shapeBare valueShape = iota
	// shapeQuoted is a double-quoted string. A bare token is accepted too,
	// since iptables-save leaves single-word comments unquoted.
	shapeQuoted
	// shapeInteger is a decimal or hex integer, optionally with a /mask.
	shapeInteger
	// shapeModule is a -m module name other than the ones owning a field.
	shapeModule
)

// fieldSpec is one entry of the rule grammar.
// fieldSpec 是规则文法中的一项。
type fieldSpec struct {
	field Field
	flag  string
	shape valueShape
	// module is the -m module the flag belongs to, re-emitted on encode.
	module string
}

// grammar maps every extracted field to its flag. Lookup is independent per
// entry, so flags may appear in any order in the source line. A field with
// two entries takes the first entry that matches.
var grammar = []fieldSpec{
	{field: FieldProtocol, flag: "-p", shape: shapeBare},
	{field: FieldSource, flag: "-s", shape: shapeBare},
	{field: FieldSourcePort, flag: "--sport", shape: shapeBare},
	{field: FieldDestination, flag: "-d", shape: shapeBare},
	{field: FieldDestinationPort, flag: "--dport", shape: shapeBare},
	{field: FieldDestinationIP, flag: "--to-destination", shape: shapeBare},
	{field: FieldMatch, flag: "-m", shape: shapeModule},
	{field: FieldState, flag: "--state", shape: shapeBare, module: "state"},
	{field: FieldLimit, flag: "--limit", shape: shapeBare, module: "limit"},
	{field: FieldJump, flag: "-j", shape: shapeBare},
	{field: FieldGoto, flag: "-g", shape: shapeBare},
	{field: FieldInInterface, flag: "-i", shape: shapeBare},
	{field: FieldOutInterface, flag: "-o", shape: shapeBare},
	{field: FieldLogPrefix, flag: "--log-prefix", shape: shapeQuoted},
	{field: FieldTOS, flag: "--set-tos", shape: shapeInteger},
	{field: FieldTOS, flag: "--tos", shape: shapeInteger, module: "tos"},
	{field: FieldComment, flag: "--comment", shape: shapeQuoted, module: "comment"},
}

// reservedModules carry dedicated fields and are never reported as Match.
var reservedModules = map[string]bool{
	"state":   true,
	"comment": true,
	"limit":   true,
	"tos":     true,
}

// tosMatch is the grammar entry EncodeRule uses for TOS unless the rule
// jumps to the TOS target.
var tosMatch = fieldSpec{field: FieldTOS, flag: "--tos", shape: shapeInteger, module: "tos"}

// specFor returns the first grammar entry of f.
func specFor(f Field) fieldSpec {
	for _, s := range grammar {
		if s.field == f {
			return s
		}
	}
	panic("iptables: no grammar entry for " + f.String())
}

// ExtractFields reads one rule line into a Rule. It never fails: flags that
// are missing leave their field absent and tokens no entry claims end up in
// Rule.Unparsed. For a flag given twice only the first usable occurrence is
// kept.
// ExtractFields 将一行规则解析为 Rule，从不失败。
func ExtractFields(line string) Rule {
	line = strings.TrimSpace(line)
	tokens := tokenize(line)
	used := make([]bool, len(tokens))

	r := Rule{Raw: line}
	if len(tokens) >= 2 && tokens[0] == "-A" {
		r.Chain = tokens[1]
		used[0], used[1] = true, true
	}

	for _, spec := range grammar {
		if r.slot(spec.field).IsSet() {
			continue
		}
		idx, value, ok := spec.find(tokens)
		if !ok {
			continue
		}
		*r.slot(spec.field) = Some(value)
		used[idx], used[idx+1] = true, true
		if spec.module != "" {
			markModule(tokens, used, spec.module)
		}
	}

	for i, tok := range tokens {
		if !used[i] {
			r.Unparsed = append(r.Unparsed, tok)
		}
	}
	return r
}

// find returns the index of the first flag occurrence whose value has the
// expected shape.
func (s fieldSpec) find(tokens []string) (int, string, bool) {
	for i := 0; i+1 < len(tokens); i++ {
		if tokens[i] != s.flag {
			continue
		}
		if v, ok := s.accept(tokens[i+1]); ok {
			return i, v, true
		}
	}
	return 0, "", false
}

func (s fieldSpec) accept(tok string) (string, bool) {
	switch s.shape {
	case shapeQuoted:
		if isQuoted(tok) {
			return unquote(tok), true
		}
		if strings.HasPrefix(tok, `"`) {
			return "", false
		}
		return tok, true
	case shapeInteger:
		if isInteger(tok) {
			return tok, true
		}
		return "", false
	case shapeModule:
		if reservedModules[tok] {
			return "", false
		}
		return tok, true
	default:
		return tok, true
	}
}

func markModule(tokens []string, used []bool, module string) {
	for i := 0; i+1 < len(tokens); i++ {
		if tokens[i] == "-m" && tokens[i+1] == module {
			used[i], used[i+1] = true, true
			return
		}
	}
}

// isInteger accepts "16", "0x10" and "0x10/0x3f".
func isInteger(tok string) bool {
	value, mask, hasMask := strings.Cut(tok, "/")
	if _, err := strconv.ParseUint(value, 0, 32); err != nil {
		return false
	}
	if hasMask {
		if _, err := strconv.ParseUint(mask, 0, 32); err != nil {
			return false
		}
	}
	return true
}

func isQuoted(tok string) bool {
	if len(tok) < 2 || tok[0] != '"' || tok[len(tok)-1] != '"' {
		return false
	}
	// an odd run of backslashes escapes the closing quote
	n := 0
	for i := len(tok) - 2; i > 0 && tok[i] == '\\'; i-- {
		n++
	}
	return n%2 == 0
}

func unquote(tok string) string {
	inner := tok[1 : len(tok)-1]
	if !strings.Contains(inner, `\`) {
		return inner
	}
	var b strings.Builder
	escaped := false
	for _, c := range inner {
		if escaped {
			b.WriteRune(c)
			escaped = false
			continue
		}
		if c == '\\' {
			escaped = true
			continue
		}
		b.WriteRune(c)
	}
	return b.String()
}

func quote(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`)
	return `"` + r.Replace(s) + `"`
}

// tokenize splits on whitespace, keeping double-quoted runs (with their
// quotes) as one token.
func tokenize(line string) []string {
	var (
		tokens  []string
		cur     strings.Builder
		inQuote bool
		escaped bool
		started bool
	)
	flush := func() {
		if started {
			tokens = append(tokens, cur.String())
			cur.Reset()
			started = false
		}
	}
	for _, c := range line {
		switch {
		case escaped:
			cur.WriteRune(c)
			escaped = false
		case c == '\\' && inQuote:
			cur.WriteRune(c)
			escaped = true
		case c == '"':
			cur.WriteRune(c)
			inQuote = !inQuote
			started = true
		case unicode.IsSpace(c) && !inQuote:
			flush()
		default:
			cur.WriteRune(c)
			started = true
		}
	}
	flush()
	return tokens
}
