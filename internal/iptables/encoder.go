package iptables

import (
	"strings"
)

// canonicalOrder is the emit order of rule fields. Destination is not part
// of it and is never written back.
var canonicalOrder = []Field{
	FieldProtocol,
	FieldSource,
	FieldSourcePort,
	FieldDestinationPort,
	FieldMatch,
	FieldState,
	FieldInInterface,
	FieldOutInterface,
	FieldLimit,
	FieldJump,
	FieldGoto,
	FieldDestinationIP,
	FieldLogPrefix,
	FieldTOS,
	FieldComment,
}

// CanonicalOrder returns the fields EncodeRule writes, in order.
func CanonicalOrder() []Field {
	return append([]Field(nil), canonicalOrder...)
}

// EncodeRule renders r as an "-A" line in canonical field order. The output
// is not guaranteed to match the line r was parsed from byte for byte.
// EncodeRule 按规范字段顺序输出规则行。
func EncodeRule(r Rule) string {
	var b strings.Builder
	b.WriteString("-A ")
	b.WriteString(r.Chain)
	b.WriteByte(' ')
	for _, f := range canonicalOrder {
		v, ok := r.Get(f).Get()
		if !ok {
			continue
		}
		spec := encodeSpec(r, f)
		if spec.module != "" {
			b.WriteString("-m " + spec.module + " ")
		}
		if spec.shape == shapeQuoted {
			v = quote(v)
		}
		b.WriteString(spec.flag + " " + v + " ")
	}
	return strings.TrimRight(b.String(), " ")
}

// encodeSpec picks the flag a field is written with. TOS is a target option
// (--set-tos) under -j TOS and the tos match (-m tos --tos) otherwise.
func encodeSpec(r Rule, f Field) fieldSpec {
	if f == FieldTOS && r.Jump.Or("") != "TOS" {
		return tosMatch
	}
	return specFor(f)
}

// EncodeTable renders one table block terminated by COMMIT.
func EncodeTable(name string, t *Table) string {
	lines := make([]string, 0, len(t.Chains)+len(t.Rules)+2)
	lines = append(lines, "*"+name)
	lines = append(lines, t.Chains...)
	for _, r := range t.Rules {
		lines = append(lines, EncodeRule(r))
	}
	lines = append(lines, "COMMIT")
	return strings.Join(lines, "\n")
}

// EncodeDocument renders all tables in order, separated by one blank line,
// with a single trailing newline. The framing is what iptables-restore reads.
// EncodeDocument 按顺序输出所有表，表之间以一个空行分隔。
func EncodeDocument(doc *Document) string {
	blocks := make([]string, 0, doc.Len())
	for _, name := range doc.names {
		blocks = append(blocks, EncodeTable(name, doc.tables[name]))
	}
	return strings.Join(blocks, "\n\n") + "\n"
}
