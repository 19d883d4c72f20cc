package graph

import (
	"encoding/json"
	"fmt"
	"sort"
)

// ValueKind identifies the scalar kind held by a Value.
type ValueKind int

const (
	KindNull ValueKind = iota
	KindString
	KindNumber
	KindBool
)

// Value is a tagged scalar property value. Property maps carry mixed scalar
// types; modeling them as a tagged union keeps merge semantics well-defined
// instead of relying on an untyped map.
type Value struct {
	kind    ValueKind
	str     string
	num     float64
	boolean bool
}

// String creates a string Value
func String(s string) Value { return Value{kind: KindString, str: s} }

// Number creates a numeric Value
func Number(f float64) Value { return Value{kind: KindNumber, num: f} }

// Bool creates a boolean Value
func Bool(b bool) Value { return Value{kind: KindBool, boolean: b} }

// Null creates a null Value
func Null() Value { return Value{kind: KindNull} }

// Kind returns the kind tag of the value
func (v Value) Kind() ValueKind { return v.kind }

// AsString returns the string content and whether the value is a string
func (v Value) AsString() (string, bool) { return v.str, v.kind == KindString }

// AsNumber returns the numeric content and whether the value is a number
func (v Value) AsNumber() (float64, bool) { return v.num, v.kind == KindNumber }

// AsBool returns the boolean content and whether the value is a boolean
func (v Value) AsBool() (bool, bool) { return v.boolean, v.kind == KindBool }

// Native converts the value to the representation used for database
// parameters and JSON responses.
func (v Value) Native() interface{} {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return v.num
	case KindBool:
		return v.boolean
	default:
		return nil
	}
}

// MarshalJSON implements json.Marshaler
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Native())
}

// UnmarshalJSON implements json.Unmarshaler
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*v = ValueFrom(raw)
	return nil
}

// ValueFrom coerces an arbitrary scalar into a Value. Non-scalar values are
// stringified so that property maps stay scalar-only.
func ValueFrom(raw interface{}) Value {
	switch val := raw.(type) {
	case nil:
		return Null()
	case string:
		return String(val)
	case bool:
		return Bool(val)
	case float64:
		return Number(val)
	case float32:
		return Number(float64(val))
	case int:
		return Number(float64(val))
	case int64:
		return Number(float64(val))
	default:
		return String(fmt.Sprint(val))
	}
}

// Properties is an open string-keyed map of scalar values attached to nodes
// and relationships.
type Properties map[string]Value

// PropertiesFrom converts a raw map (driver records, decoded JSON) into
// Properties.
func PropertiesFrom(raw map[string]interface{}) Properties {
	if raw == nil {
		return Properties{}
	}
	props := make(Properties, len(raw))
	for key, val := range raw {
		props[key] = ValueFrom(val)
	}
	return props
}

// Native converts the map to the representation used for database parameters.
func (p Properties) Native() map[string]interface{} {
	native := make(map[string]interface{}, len(p))
	for key, val := range p {
		native[key] = val.Native()
	}
	return native
}

// Clone returns a shallow copy of the map
func (p Properties) Clone() Properties {
	clone := make(Properties, len(p))
	for key, val := range p {
		clone[key] = val
	}
	return clone
}

// Merge applies other on top of p. Incoming keys win on conflict, existing
// keys not present in other are kept.
func (p Properties) Merge(other Properties) {
	for key, val := range other {
		p[key] = val
	}
}

// Keys returns the property keys in sorted order
func (p Properties) Keys() []string {
	keys := make([]string, 0, len(p))
	for key := range p {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
