package bytecode

import (
	"fmt"
	"strings"
)

// ObjectField is one key/value entry of an OpObjectInit instruction.
// The value comes either from a register or from an inline constant.
type ObjectField struct {
	Key          string
	FromRegister bool
	Register     int   // when FromRegister
	Value        Value // when !FromRegister
	Writable     bool
	Enumerable   bool
	Configurable bool
}

// FieldFromRegister creates an object field sourced from a register.
func FieldFromRegister(key string, reg int) ObjectField {
	return ObjectField{Key: key, FromRegister: true, Register: reg,
		Writable: true, Enumerable: false, Configurable: true}
}

// FieldFromValue creates an object field sourced from an inline constant.
func FieldFromValue(key string, v Value) ObjectField {
	return ObjectField{Key: key, FromRegister: false, Value: v,
		Writable: true, Enumerable: false, Configurable: true}
}

// Instruction is one register-machine operation. Instructions are immutable
// values: patching a jump replaces the whole entry at an index, it never
// mutates in place.
//
// A, B and C hold the fixed register operands in wire order. Offset holds
// the signed relative jump delta for the offset-bearing opcodes, measured
// in instruction units from the jump's own index.
type Instruction struct {
	Op      Opcode
	A, B, C int
	Offset  int
	Args    []int         // argument registers for OpCall and OpSpawn
	Const   Value         // constant payload for OpLoadConst
	Fields  []ObjectField // OpObjectInit
	Arms    []MatchArm    // OpMatch
}

// LoadConst loads a constant value into dst.
func LoadConst(dst int, v Value) Instruction {
	return Instruction{Op: OpLoadConst, A: dst, Const: v}
}

// Move copies src into dst.
func Move(dst, src int) Instruction {
	return Instruction{Op: OpMove, A: dst, B: src}
}

// Add stores a + b into dst.
func Add(dst, a, b int) Instruction {
	return Instruction{Op: OpAdd, A: dst, B: a, C: b}
}

// Sub stores a - b into dst.
func Sub(dst, a, b int) Instruction {
	return Instruction{Op: OpSub, A: dst, B: a, C: b}
}

// Mul stores a * b into dst.
func Mul(dst, a, b int) Instruction {
	return Instruction{Op: OpMul, A: dst, B: a, C: b}
}

// Div stores a / b into dst.
func Div(dst, a, b int) Instruction {
	return Instruction{Op: OpDiv, A: dst, B: a, C: b}
}

// GetProp reads obj[key] into dst.
func GetProp(dst, obj, key int) Instruction {
	return Instruction{Op: OpGetProp, A: dst, B: obj, C: key}
}

// SetProp writes value into obj[key].
func SetProp(obj, key, value int) Instruction {
	return Instruction{Op: OpSetProp, A: obj, B: key, C: value}
}

// Call invokes the function in fn with argument registers args, storing the
// result in dst.
func Call(dst, fn int, args ...int) Instruction {
	return Instruction{Op: OpCall, A: dst, B: fn, Args: args}
}

// Return returns the value in reg from the current function.
func Return(reg int) Instruction {
	return Instruction{Op: OpReturn, A: reg}
}

// Jump transfers control by offset instructions, relative to the jump's
// own index.
func Jump(offset int) Instruction {
	return Instruction{Op: OpJump, Offset: offset}
}

// JumpIfTrue jumps by offset when cond holds a truthy value.
func JumpIfTrue(cond, offset int) Instruction {
	return Instruction{Op: OpJumpIfTrue, A: cond, Offset: offset}
}

// JumpIfFalse jumps by offset when cond holds a falsy value.
func JumpIfFalse(cond, offset int) Instruction {
	return Instruction{Op: OpJumpIfFalse, A: cond, Offset: offset}
}

// Spawn starts a new process running the function in fn, storing the
// process handle in dst.
func Spawn(dst, fn int, args ...int) Instruction {
	return Instruction{Op: OpSpawn, A: dst, B: fn, Args: args}
}

// Send delivers the message in msg to the process in proc.
func Send(proc, msg int) Instruction {
	return Instruction{Op: OpSend, A: proc, B: msg}
}

// Receive blocks for the next message and stores it in dst.
func Receive(dst int) Instruction {
	return Instruction{Op: OpReceive, A: dst}
}

// ReceiveWithTimeout receives into dst, giving up after the duration in the
// timeout register and recording success or failure in result.
func ReceiveWithTimeout(dst, timeout, result int) Instruction {
	return Instruction{Op: OpReceiveWithTimeout, A: dst, B: timeout, C: result}
}

// Link links the current process to the process in proc.
func Link(proc int) Instruction {
	return Instruction{Op: OpLink, A: proc}
}

// Match tests the value in reg against each arm's pattern in order, jumping
// by the first matching arm's offset.
func Match(reg int, arms ...MatchArm) Instruction {
	return Instruction{Op: OpMatch, A: reg, Arms: arms}
}

// Yield hands control back to the scheduler.
func Yield() Instruction {
	return Instruction{Op: OpYield}
}

// Nop does nothing.
func Nop() Instruction {
	return Instruction{Op: OpNop}
}

// Equal stores a == b into dst.
func Equal(dst, a, b int) Instruction {
	return Instruction{Op: OpEqual, A: dst, B: a, C: b}
}

// NotEqual stores a != b into dst.
func NotEqual(dst, a, b int) Instruction {
	return Instruction{Op: OpNotEqual, A: dst, B: a, C: b}
}

// LessThan stores a < b into dst.
func LessThan(dst, a, b int) Instruction {
	return Instruction{Op: OpLessThan, A: dst, B: a, C: b}
}

// LessEqual stores a <= b into dst.
func LessEqual(dst, a, b int) Instruction {
	return Instruction{Op: OpLessEqual, A: dst, B: a, C: b}
}

// GreaterThan stores a > b into dst.
func GreaterThan(dst, a, b int) Instruction {
	return Instruction{Op: OpGreaterThan, A: dst, B: a, C: b}
}

// GreaterEqual stores a >= b into dst.
func GreaterEqual(dst, a, b int) Instruction {
	return Instruction{Op: OpGreaterEqual, A: dst, B: a, C: b}
}

// And stores a && b into dst.
func And(dst, a, b int) Instruction {
	return Instruction{Op: OpAnd, A: dst, B: a, C: b}
}

// Or stores a || b into dst.
func Or(dst, a, b int) Instruction {
	return Instruction{Op: OpOr, A: dst, B: a, C: b}
}

// Not stores !src into dst.
func Not(dst, src int) Instruction {
	return Instruction{Op: OpNot, A: dst, B: src}
}

// ObjectInit builds an object from the given fields and stores it in dst.
func ObjectInit(dst int, fields ...ObjectField) Instruction {
	return Instruction{Op: OpObjectInit, A: dst, Fields: fields}
}

// Equal reports whether two instructions are structurally equal.
func (in Instruction) Equal(other Instruction) bool {
	if in.Op != other.Op || in.A != other.A || in.B != other.B ||
		in.C != other.C || in.Offset != other.Offset {
		return false
	}
	if len(in.Args) != len(other.Args) {
		return false
	}
	for i := range in.Args {
		if in.Args[i] != other.Args[i] {
			return false
		}
	}
	if in.Op == OpLoadConst && !in.Const.Equal(other.Const) {
		return false
	}
	// Fields and Arms are compared by length only; object/match instructions
	// are not produced or rewritten by the control-flow builders.
	return len(in.Fields) == len(other.Fields) && len(in.Arms) == len(other.Arms)
}

// String returns a one-line assembly-like rendering.
func (in Instruction) String() string {
	info := GetOpcodeInfo(in.Op)
	switch in.Op {
	case OpLoadConst:
		return fmt.Sprintf("%s r%d %s", info.Name, in.A, in.Const)
	case OpJump:
		return fmt.Sprintf("%s %+d", info.Name, in.Offset)
	case OpJumpIfTrue, OpJumpIfFalse:
		return fmt.Sprintf("%s r%d %+d", info.Name, in.A, in.Offset)
	case OpCall, OpSpawn:
		parts := make([]string, len(in.Args))
		for i, a := range in.Args {
			parts[i] = fmt.Sprintf("r%d", a)
		}
		return fmt.Sprintf("%s r%d r%d [%s]", info.Name, in.A, in.B, strings.Join(parts, " "))
	case OpYield, OpNop:
		return info.Name
	default:
		switch info.RegOps {
		case 1:
			return fmt.Sprintf("%s r%d", info.Name, in.A)
		case 2:
			return fmt.Sprintf("%s r%d r%d", info.Name, in.A, in.B)
		case 3:
			return fmt.Sprintf("%s r%d r%d r%d", info.Name, in.A, in.B, in.C)
		default:
			return info.Name
		}
	}
}
