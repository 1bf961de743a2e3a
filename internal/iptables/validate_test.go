package iptables

import (
	"encoding/json"
	"testing"

	"github.com/livp123/netxconf/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestValidateRule_RejectsValuesLostOnReparse tests values that would not
// survive encode then parse
// TestValidateRule_RejectsValuesLostOnReparse 测试编码后无法重新解析的值
func TestValidateRule_RejectsValuesLostOnReparse(t *testing.T) {
	tests := []struct {
		name  string
		chain string
		field Field
		value string
	}{
		{"empty chain", "", FieldJump, "ACCEPT"},
		{"chain with space", "MY CHAIN", FieldJump, "ACCEPT"},
		{"reserved module state", "INPUT", FieldMatch, "state"},
		{"reserved module comment", "INPUT", FieldMatch, "comment"},
		{"reserved module limit", "INPUT", FieldMatch, "limit"},
		{"reserved module tos", "INPUT", FieldMatch, "tos"},
		{"symbolic tos", "INPUT", FieldTOS, "Minimize-Delay"},
		{"empty protocol", "INPUT", FieldProtocol, ""},
		{"protocol with space", "INPUT", FieldProtocol, "tcp udp"},
		{"value looks like a flag", "INPUT", FieldJump, "-j"},
		{"quote in bare value", "INPUT", FieldInInterface, `eth"0`},
		{"multi-line comment", "INPUT", FieldComment, "a\nb"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRule(tt.chain, map[Field]string{tt.field: tt.value})
			assert.ErrorIs(t, ValidateRule(r), errors.ErrFormat)
		})
	}
}

func TestValidateRule_AcceptedValuesRoundTrip(t *testing.T) {
	rules := []Rule{
		NewRule("INPUT", map[Field]string{
			FieldProtocol:        "tcp",
			FieldDestinationPort: "22",
			FieldMatch:           "conntrack",
			FieldState:           "NEW,ESTABLISHED",
			FieldLimit:           "5/min",
			FieldJump:            "LOG",
			FieldLogPrefix:       "ssh: ",
			FieldComment:         `say "hi"`,
		}),
		NewRule("OUTPUT", map[Field]string{FieldJump: "TOS", FieldTOS: "0x10/0x3f"}),
		NewRule("PREROUTING", map[Field]string{FieldTOS: "16", FieldJump: "ACCEPT"}),
		NewRule("INPUT", map[Field]string{FieldComment: ""}),
	}
	for _, r := range rules {
		line := EncodeRule(r)
		require.NoError(t, ValidateRule(r), line)
		back := ExtractFields(line)
		assert.True(t, r.Equal(back), "%s: got %v", line, back.Values())
		assert.Empty(t, back.Unparsed, line)
	}
}

func TestValidateDocument(t *testing.T) {
	valid := NewDocument()
	valid.Set("filter", &Table{
		Chains: []string{":INPUT ACCEPT [0:0]"},
		Rules:  []Rule{NewRule("INPUT", map[Field]string{FieldJump: "ACCEPT"})},
	})
	require.NoError(t, ValidateDocument(valid))

	build := func(name string, table *Table) *Document {
		doc := NewDocument()
		doc.Set(name, table)
		return doc
	}
	tests := []struct {
		name string
		doc  *Document
	}{
		{"nil", nil},
		{"no tables", NewDocument()},
		{"empty name", build("", &Table{})},
		{"name with space", build("my table", &Table{})},
		{"name with marker", build("fil*ter", &Table{})},
		{"nil table", build("filter", nil)},
		{"chain without colon", build("filter", &Table{Chains: []string{"INPUT ACCEPT"}})},
		{"rule without chain", build("filter", &Table{Rules: []Rule{NewRule("", map[Field]string{FieldJump: "DROP"})}})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, ValidateDocument(tt.doc), errors.ErrFormat)
		})
	}
}

func TestValidateDocument_JSONUploads(t *testing.T) {
	for _, body := range []string{`[]`, `null`, `[{"name":"","rules":[{"chain":"INPUT","jump":"ACCEPT"}]}]`} {
		t.Run(body, func(t *testing.T) {
			doc := NewDocument()
			require.NoError(t, json.Unmarshal([]byte(body), doc))
			assert.ErrorIs(t, ValidateDocument(doc), errors.ErrFormat)
		})
	}
}
