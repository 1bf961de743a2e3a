package iptables

import (
	"encoding/json"
)

// Opt is an optional string slot. The zero value is absent, which is
// different from a present empty string.
// Opt 是一个可选字符串槽位，零值表示不存在。
type Opt struct {
	value string
	set   bool
}

// Some returns a present value.
func Some(v string) Opt { return Opt{value: v, set: true} }

// None returns an absent value.
func None() Opt { return Opt{} }

func (o Opt) Get() (string, bool) { return o.value, o.set }

func (o Opt) IsSet() bool { return o.set }

// IsZero reports absence; used by the omitzero json tag.
func (o Opt) IsZero() bool { return !o.set }

// Or returns the value or def when absent.
func (o Opt) Or(def string) string {
	if !o.set {
		return def
	}
	return o.value
}

func (o Opt) MarshalJSON() ([]byte, error) {
	if !o.set {
		return []byte("null"), nil
	}
	return json.Marshal(o.value)
}

func (o *Opt) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*o = Opt{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*o = Some(s)
	return nil
}

// Field names one optional slot of a Rule.
// Field 标识 Rule 的一个可选字段。
type Field int

const (
	FieldProtocol Field = iota
	FieldSource
	FieldSourcePort
	FieldDestination
	FieldDestinationPort
	FieldDestinationIP
	FieldMatch
	FieldState
	FieldLimit
	FieldJump
	FieldGoto
	FieldInInterface
	FieldOutInterface
	FieldLogPrefix
	FieldTOS
	FieldComment
	numFields
)

var fieldNames = [numFields]string{
	FieldProtocol:        "protocol",
	FieldSource:          "source",
	FieldSourcePort:      "sourcePort",
	FieldDestination:     "destination",
	FieldDestinationPort: "destinationPort",
	FieldDestinationIP:   "destinationIp",
	FieldMatch:           "match",
	FieldState:           "state",
	FieldLimit:           "limit",
	FieldJump:            "jump",
	FieldGoto:            "goto",
	FieldInInterface:     "inInterface",
	FieldOutInterface:    "outInterface",
	FieldLogPrefix:       "logPrefix",
	FieldTOS:             "tos",
	FieldComment:         "comment",
}

func (f Field) String() string {
	if f < 0 || f >= numFields {
		return "unknown"
	}
	return fieldNames[f]
}

// Fields returns every optional field in declaration order.
func Fields() []Field {
	out := make([]Field, 0, numFields)
	for f := Field(0); f < numFields; f++ {
		out = append(out, f)
	}
	return out
}

// FieldByName resolves the json name of a field.
func FieldByName(name string) (Field, bool) {
	for f, n := range fieldNames {
		if n == name {
			return Field(f), true
		}
	}
	return 0, false
}

// Rule is one "-A" line of an iptables-save table. Rules are values: the
// With* methods return modified copies and never touch the receiver.
// Rule 表示 iptables-save 表中的一条 "-A" 规则行。
type Rule struct {
	Chain string `json:"chain"`

	Protocol        Opt `json:"protocol,omitzero"`
	Source          Opt `json:"source,omitzero"`
	SourcePort      Opt `json:"sourcePort,omitzero"`
	Destination     Opt `json:"destination,omitzero"`
	DestinationPort Opt `json:"destinationPort,omitzero"`
	DestinationIP   Opt `json:"destinationIp,omitzero"`
	Match           Opt `json:"match,omitzero"`
	State           Opt `json:"state,omitzero"`
	Limit           Opt `json:"limit,omitzero"`
	Jump            Opt `json:"jump,omitzero"`
	Goto            Opt `json:"goto,omitzero"`
	InInterface     Opt `json:"inInterface,omitzero"`
	OutInterface    Opt `json:"outInterface,omitzero"`
	LogPrefix       Opt `json:"logPrefix,omitzero"`
	TOS             Opt `json:"tos,omitzero"`
	Comment         Opt `json:"comment,omitzero"`

	// Raw is the source line. It is informational only; encoding reads the
	// structured fields.
	Raw string `json:"rule,omitempty"`
	// Unparsed lists source tokens no field claimed. They are lost on encode.
	Unparsed []string `json:"unparsed,omitempty"`
}

// NewRule builds a rule on chain from field/value pairs.
// NewRule 根据字段/值对构建一条规则。
func NewRule(chain string, values map[Field]string) Rule {
	r := Rule{Chain: chain}
	for f, v := range values {
		*r.slot(f) = Some(v)
	}
	return r
}

func (r *Rule) slot(f Field) *Opt {
	switch f {
	case FieldProtocol:
		return &r.Protocol
	case FieldSource:
		return &r.Source
	case FieldSourcePort:
		return &r.SourcePort
	case FieldDestination:
		return &r.Destination
	case FieldDestinationPort:
		return &r.DestinationPort
	case FieldDestinationIP:
		return &r.DestinationIP
	case FieldMatch:
		return &r.Match
	case FieldState:
		return &r.State
	case FieldLimit:
		return &r.Limit
	case FieldJump:
		return &r.Jump
	case FieldGoto:
		return &r.Goto
	case FieldInInterface:
		return &r.InInterface
	case FieldOutInterface:
		return &r.OutInterface
	case FieldLogPrefix:
		return &r.LogPrefix
	case FieldTOS:
		return &r.TOS
	case FieldComment:
		return &r.Comment
	}
	panic("iptables: unknown field " + f.String())
}

// Get returns the slot for f.
func (r Rule) Get(f Field) Opt {
	return *r.slot(f)
}

// With returns a copy of r with f set to v.
func (r Rule) With(f Field, v string) Rule {
	*r.slot(f) = Some(v)
	r.Unparsed = append([]string(nil), r.Unparsed...)
	return r
}

// Without returns a copy of r with f absent.
func (r Rule) Without(f Field) Rule {
	*r.slot(f) = None()
	r.Unparsed = append([]string(nil), r.Unparsed...)
	return r
}

// WithChain returns a copy of r appended to another chain.
func (r Rule) WithChain(chain string) Rule {
	r.Chain = chain
	r.Unparsed = append([]string(nil), r.Unparsed...)
	return r
}

// Values returns the present fields keyed by json name.
func (r Rule) Values() map[string]string {
	out := make(map[string]string)
	for _, f := range Fields() {
		if v, ok := r.Get(f).Get(); ok {
			out[f.String()] = v
		}
	}
	return out
}

// Equal compares chain and fields. Raw and Unparsed are ignored.
// Equal 比较链和字段，忽略 Raw 与 Unparsed。
func (r Rule) Equal(o Rule) bool {
	if r.Chain != o.Chain {
		return false
	}
	for _, f := range Fields() {
		if r.Get(f) != o.Get(f) {
			return false
		}
	}
	return true
}
