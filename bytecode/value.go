package bytecode

import (
	"fmt"
	"strings"
)

// ValueKind identifies the type of a Value. The byte values are the wire
// encoding tags and must not be renumbered.
type ValueKind byte

const (
	KindNumber    ValueKind = 0x01 // 64-bit float
	KindBoolean   ValueKind = 0x02
	KindAtom      ValueKind = 0x03 // interned symbol-like string
	KindUnit      ValueKind = 0x04
	KindUndefined ValueKind = 0x05
	KindArray     ValueKind = 0x06
	KindObject    ValueKind = 0x07
	KindFunction  ValueKind = 0x08 // function reference by name
	KindString    ValueKind = 0x09
	KindComplex   ValueKind = 0x0A // pair of 64-bit floats
	KindTuple     ValueKind = 0x0B
)

// String returns a human-readable name for ValueKind.
func (k ValueKind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindBoolean:
		return "boolean"
	case KindAtom:
		return "atom"
	case KindUnit:
		return "unit"
	case KindUndefined:
		return "undefined"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	case KindFunction:
		return "function"
	case KindString:
		return "string"
	case KindComplex:
		return "complex"
	case KindTuple:
		return "tuple"
	default:
		return fmt.Sprintf("ValueKind(0x%02X)", byte(k))
	}
}

// Property is a named object member with its descriptor flags.
// Properties are ordered; the wire format preserves insertion order.
type Property struct {
	Key          string
	Value        Value
	Writable     bool
	Enumerable   bool
	Configurable bool
}

// Value is a constant operand for OpLoadConst and pattern literals.
// Values are immutable once constructed.
type Value struct {
	Kind    ValueKind
	Num     float64    // KindNumber
	Bool    bool       // KindBoolean
	Str     string     // KindAtom, KindString, KindFunction
	Complex complex128 // KindComplex
	Items   []Value    // KindArray, KindTuple
	Props   []Property // KindObject
}

// Number creates a number value.
func Number(n float64) Value {
	return Value{Kind: KindNumber, Num: n}
}

// Boolean creates a boolean value.
func Boolean(b bool) Value {
	return Value{Kind: KindBoolean, Bool: b}
}

// Atom creates an atom value.
func Atom(s string) Value {
	return Value{Kind: KindAtom, Str: s}
}

// StringValue creates a string value.
func StringValue(s string) Value {
	return Value{Kind: KindString, Str: s}
}

// Complex creates a complex number value.
func Complex(c complex128) Value {
	return Value{Kind: KindComplex, Complex: c}
}

// Unit creates the unit value.
func Unit() Value {
	return Value{Kind: KindUnit}
}

// Undefined creates the undefined value.
func Undefined() Value {
	return Value{Kind: KindUndefined}
}

// Array creates an array value.
func Array(items ...Value) Value {
	return Value{Kind: KindArray, Items: items}
}

// Tuple creates a tuple value.
func Tuple(items ...Value) Value {
	return Value{Kind: KindTuple, Items: items}
}

// Object creates an object value from ordered properties.
func Object(props ...Property) Value {
	return Value{Kind: KindObject, Props: props}
}

// Prop creates an object property with all descriptor flags set.
func Prop(key string, v Value) Property {
	return Property{Key: key, Value: v, Writable: true, Enumerable: true, Configurable: true}
}

// FunctionRef creates a reference to a named function. The interpreter
// resolves the name at load time.
func FunctionRef(name string) Value {
	return Value{Kind: KindFunction, Str: name}
}

// Equal reports whether two values are structurally equal.
func (v Value) Equal(other Value) bool {
	if v.Kind != other.Kind {
		return false
	}
	switch v.Kind {
	case KindNumber:
		return v.Num == other.Num
	case KindBoolean:
		return v.Bool == other.Bool
	case KindAtom, KindString, KindFunction:
		return v.Str == other.Str
	case KindComplex:
		return v.Complex == other.Complex
	case KindUnit, KindUndefined:
		return true
	case KindArray, KindTuple:
		if len(v.Items) != len(other.Items) {
			return false
		}
		for i := range v.Items {
			if !v.Items[i].Equal(other.Items[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if len(v.Props) != len(other.Props) {
			return false
		}
		for i := range v.Props {
			a, b := v.Props[i], other.Props[i]
			if a.Key != b.Key || !a.Value.Equal(b.Value) ||
				a.Writable != b.Writable || a.Enumerable != b.Enumerable ||
				a.Configurable != b.Configurable {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// String returns a source-like rendering of the value.
func (v Value) String() string {
	switch v.Kind {
	case KindNumber:
		return fmt.Sprintf("%g", v.Num)
	case KindBoolean:
		if v.Bool {
			return "true"
		}
		return "false"
	case KindAtom:
		return ":" + v.Str
	case KindString:
		return fmt.Sprintf("%q", v.Str)
	case KindFunction:
		return "&" + v.Str
	case KindComplex:
		return fmt.Sprintf("%g", v.Complex)
	case KindUnit:
		return "()"
	case KindUndefined:
		return "undefined"
	case KindArray, KindTuple:
		open, close := "[", "]"
		if v.Kind == KindTuple {
			open, close = "(", ")"
		}
		parts := make([]string, len(v.Items))
		for i, it := range v.Items {
			parts[i] = it.String()
		}
		return open + strings.Join(parts, ", ") + close
	case KindObject:
		parts := make([]string, len(v.Props))
		for i, p := range v.Props {
			parts[i] = p.Key + ": " + p.Value.String()
		}
		return "{" + strings.Join(parts, ", ") + "}"
	default:
		return v.Kind.String()
	}
}
