// Package jsonval provides the JSON value model and decoder used for every
// Slack API response. Object member order is preserved and duplicate keys
// are kept, so lookups match what the API actually sent.
package jsonval

// Kind identifies the variant held by a Value.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

// Member is one key/value pair of an object, in document order.
type Member struct {
	Key   string
	Value Value
}

// Value is a fully materialized JSON document node.
type Value struct {
	kind    Kind
	boolVal bool
	numVal  float64
	strVal  string
	arrVal  []Value
	objVal  []Member
}

// Constructors for each variant.

func Null() Value                  { return Value{kind: KindNull} }
func Bool(b bool) Value            { return Value{kind: KindBool, boolVal: b} }
func Number(n float64) Value       { return Value{kind: KindNumber, numVal: n} }
func String(s string) Value        { return Value{kind: KindString, strVal: s} }
func Array(items []Value) Value    { return Value{kind: KindArray, arrVal: items} }
func Object(members []Member) Value { return Value{kind: KindObject, objVal: members} }

// Kind returns the variant of v.
func (v Value) Kind() Kind { return v.kind }

// Get returns the value of the first member with the given key.
// Returns false for an absent key or when v is not an object.
func (v Value) Get(key string) (Value, bool) {
	if v.kind != KindObject {
		return Value{}, false
	}
	for _, m := range v.objVal {
		if m.Key == key {
			return m.Value, true
		}
	}
	return Value{}, false
}

// AsString returns the string value, or false when v is not a string.
func (v Value) AsString() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.strVal, true
}

// AsBool returns the boolean value, or false when v is not a bool.
func (v Value) AsBool() (bool, bool) {
	if v.kind != KindBool {
		return false, false
	}
	return v.boolVal, true
}

// AsNumber returns the numeric value, or false when v is not a number.
func (v Value) AsNumber() (float64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	return v.numVal, true
}

// AsArray returns the element slice, or false when v is not an array.
func (v Value) AsArray() ([]Value, bool) {
	if v.kind != KindArray {
		return nil, false
	}
	return v.arrVal, true
}

// Members returns the object members in document order, or false when v is
// not an object.
func (v Value) Members() ([]Member, bool) {
	if v.kind != KindObject {
		return nil, false
	}
	return v.objVal, true
}

// GetString is Get followed by AsString; the common case for Slack fields.
func (v Value) GetString(key string) (string, bool) {
	child, ok := v.Get(key)
	if !ok {
		return "", false
	}
	return child.AsString()
}

// GetBool is Get followed by AsBool.
func (v Value) GetBool(key string) (bool, bool) {
	child, ok := v.Get(key)
	if !ok {
		return false, false
	}
	return child.AsBool()
}

// Equal reports structural equality of two values. Object member order and
// duplicate keys are significant.
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindNull:
		return true
	case KindBool:
		return a.boolVal == b.boolVal
	case KindNumber:
		return a.numVal == b.numVal
	case KindString:
		return a.strVal == b.strVal
	case KindArray:
		if len(a.arrVal) != len(b.arrVal) {
			return false
		}
		for i := range a.arrVal {
			if !Equal(a.arrVal[i], b.arrVal[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if len(a.objVal) != len(b.objVal) {
			return false
		}
		for i := range a.objVal {
			if a.objVal[i].Key != b.objVal[i].Key {
				return false
			}
			if !Equal(a.objVal[i].Value, b.objVal[i].Value) {
				return false
			}
		}
		return true
	}
	return false
}
