package bytecode

import (
	"errors"
	"math"
	"testing"
)

func TestInstructionValidate(t *testing.T) {
	tests := []struct {
		name string
		in   Instruction
		want error
	}{
		{"valid add", Add(0, 1, 2), nil},
		{"valid jump", Jump(-5), nil},
		{"valid load const", LoadConst(3, Number(1)), nil},
		{"valid call", Call(0, 1, 2, 3), nil},
		{"negative register", Move(-1, 0), ErrEncoding},
		{"negative source", Move(0, -1), ErrEncoding},
		{"register too large", Return(math.MaxUint32 + 1), ErrEncoding},
		{"offset too small", Jump(math.MinInt32 - 1), ErrEncoding},
		{"offset too large", JumpIfFalse(0, math.MaxInt32+1), ErrEncoding},
		{"negative arg register", Call(0, 1, -2), ErrEncoding},
		{"negative field register", ObjectInit(0, FieldFromRegister("x", -1)), ErrEncoding},
		{"arm offset out of range", Match(0, MatchArm{Pattern: WildcardPattern(), Offset: math.MaxInt32 + 1}), ErrEncoding},
		{"unknown opcode", Instruction{Op: 0xFE}, ErrUnknownOpcode},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.in.Validate()
			if tc.want == nil {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tc.want) {
				t.Errorf("Validate() = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestInstructionValidateIgnoresUnusedOperands(t *testing.T) {
	// Only the fixed operands of an opcode's shape are range-checked; a
	// stale C on a two-register instruction does not fail validation.
	in := Move(0, 1)
	in.C = -7
	if err := in.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
}

func TestInstructionEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b Instruction
		want bool
	}{
		{"same add", Add(0, 1, 2), Add(0, 1, 2), true},
		{"different op", Add(0, 1, 2), Sub(0, 1, 2), false},
		{"different register", Add(0, 1, 2), Add(0, 1, 3), false},
		{"different offset", Jump(3), Jump(4), false},
		{"same const", LoadConst(0, Atom("ok")), LoadConst(0, Atom("ok")), true},
		{"different const", LoadConst(0, Atom("ok")), LoadConst(0, Atom("no")), false},
		{"same args", Call(0, 1, 2, 3), Call(0, 1, 2, 3), true},
		{"different args", Call(0, 1, 2, 3), Call(0, 1, 2), false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.a.Equal(tc.b); got != tc.want {
				t.Errorf("Equal() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestInstructionString(t *testing.T) {
	tests := []struct {
		in   Instruction
		want string
	}{
		{LoadConst(1, Number(42)), "LOAD_CONST r1 42"},
		{LoadConst(6, Atom("completed")), "LOAD_CONST r6 :completed"},
		{Move(0, 1), "MOVE r0 r1"},
		{Add(2, 0, 1), "ADD r2 r0 r1"},
		{Jump(-7), "JUMP -7"},
		{Jump(3), "JUMP +3"},
		{JumpIfFalse(4, 2), "JUMP_IF_FALSE r4 +2"},
		{Call(0, 1, 2, 3), "CALL r0 r1 [r2 r3]"},
		{Return(5), "RETURN r5"},
		{Nop(), "NOP"},
		{Yield(), "YIELD"},
	}
	for _, tc := range tests {
		if got := tc.in.String(); got != tc.want {
			t.Errorf("String() = %q, want %q", got, tc.want)
		}
	}
}

func TestValueString(t *testing.T) {
	tests := []struct {
		v    Value
		want string
	}{
		{Number(1.5), "1.5"},
		{Boolean(true), "true"},
		{Atom("ok"), ":ok"},
		{StringValue("hi"), `"hi"`},
		{Unit(), "()"},
		{Undefined(), "undefined"},
		{Array(Number(1), Number(2)), "[1, 2]"},
		{Tuple(Atom("ok"), Number(0)), "(:ok, 0)"},
		{FunctionRef("main"), "&main"},
		{Object(Prop("x", Number(1))), "{x: 1}"},
	}
	for _, tc := range tests {
		if got := tc.v.String(); got != tc.want {
			t.Errorf("String() = %q, want %q", got, tc.want)
		}
	}
}

func TestValueEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b Value
		want bool
	}{
		{"numbers", Number(3), Number(3), true},
		{"number vs boolean", Number(1), Boolean(true), false},
		{"atoms", Atom("x"), Atom("x"), true},
		{"atom vs string", Atom("x"), StringValue("x"), false},
		{"units", Unit(), Unit(), true},
		{"nested arrays", Array(Array(Number(1))), Array(Array(Number(1))), true},
		{"array length", Array(Number(1)), Array(Number(1), Number(2)), false},
		{"tuples", Tuple(Number(1)), Tuple(Number(1)), true},
		{"objects", Object(Prop("a", Number(1))), Object(Prop("a", Number(1))), true},
		{"object key", Object(Prop("a", Number(1))), Object(Prop("b", Number(1))), false},
		{"complex", Complex(complex(1, 2)), Complex(complex(1, 2)), true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.a.Equal(tc.b); got != tc.want {
				t.Errorf("Equal() = %v, want %v", got, tc.want)
			}
		})
	}
}
