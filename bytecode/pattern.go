package bytecode

// PatternKind identifies the type of a match pattern. The byte values are
// the wire encoding tags.
type PatternKind byte

const (
	PatternValue      PatternKind = 0x01 // matches a literal value
	PatternWildcard   PatternKind = 0x02 // matches anything
	PatternTuple      PatternKind = 0x03 // matches a tuple element-wise
	PatternArray      PatternKind = 0x04 // matches an array element-wise
	PatternTaggedEnum PatternKind = 0x05 // matches a tagged variant
)

// Pattern describes one shape an OpMatch instruction can test against.
type Pattern struct {
	Kind  PatternKind
	Value Value     // PatternValue
	Subs  []Pattern // PatternTuple, PatternArray
	Tag   string    // PatternTaggedEnum
	Inner *Pattern  // PatternTaggedEnum
}

// MatchArm pairs a pattern with the relative jump offset taken when the
// pattern matches. Offsets follow the same convention as plain jumps:
// target index = match instruction index + offset.
type MatchArm struct {
	Pattern Pattern
	Offset  int
}

// ValuePattern matches a literal value.
func ValuePattern(v Value) Pattern {
	return Pattern{Kind: PatternValue, Value: v}
}

// WildcardPattern matches any value.
func WildcardPattern() Pattern {
	return Pattern{Kind: PatternWildcard}
}

// TuplePattern matches a tuple whose elements match the sub-patterns.
func TuplePattern(subs ...Pattern) Pattern {
	return Pattern{Kind: PatternTuple, Subs: subs}
}

// ArrayPattern matches an array whose elements match the sub-patterns.
func ArrayPattern(subs ...Pattern) Pattern {
	return Pattern{Kind: PatternArray, Subs: subs}
}

// TaggedEnumPattern matches a tagged variant whose payload matches inner.
func TaggedEnumPattern(tag string, inner Pattern) Pattern {
	return Pattern{Kind: PatternTaggedEnum, Tag: tag, Inner: &inner}
}
