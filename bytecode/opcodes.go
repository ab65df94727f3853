package bytecode

import "fmt"

// Opcode identifies an IonVM instruction. The byte values are the wire
// encoding tags and must not be renumbered.
type Opcode byte

const (
	// ========================================================================
	// Memory (0x01-0x02)
	// ========================================================================

	OpLoadConst Opcode = 0x01 // Load constant into register: dst, value
	OpMove      Opcode = 0x02 // Copy register: dst, src

	// ========================================================================
	// Arithmetic (0x03-0x06)
	// ========================================================================

	OpAdd Opcode = 0x03 // dst, a, b
	OpSub Opcode = 0x04 // dst, a, b
	OpMul Opcode = 0x05 // dst, a, b
	OpDiv Opcode = 0x06 // dst, a, b

	// ========================================================================
	// Properties (0x07-0x08)
	// ========================================================================

	OpGetProp Opcode = 0x07 // dst, obj, key
	OpSetProp Opcode = 0x08 // obj, key, value

	// ========================================================================
	// Calls and control flow (0x09-0x0D)
	// ========================================================================

	OpCall        Opcode = 0x09 // dst, func, argc, args...
	OpReturn      Opcode = 0x0A // reg
	OpJump        Opcode = 0x0B // offset (instruction units, relative to the jump's own index)
	OpJumpIfTrue  Opcode = 0x0C // cond, offset
	OpJumpIfFalse Opcode = 0x0D // cond, offset

	// ========================================================================
	// Processes (0x0E-0x11, 0x1E)
	// ========================================================================

	OpSpawn              Opcode = 0x0E // dst, func, argc, args...
	OpSend               Opcode = 0x0F // proc, msg
	OpReceive            Opcode = 0x10 // dst
	OpLink               Opcode = 0x11 // proc
	OpReceiveWithTimeout Opcode = 0x1E // dst, timeout, result

	// ========================================================================
	// Pattern matching (0x12)
	// ========================================================================

	OpMatch Opcode = 0x12 // value, arm count, (pattern, offset)...

	// ========================================================================
	// Scheduling (0x13-0x14)
	// ========================================================================

	OpYield Opcode = 0x13
	OpNop   Opcode = 0x14

	// ========================================================================
	// Comparison (0x15-0x1A)
	// ========================================================================

	OpEqual        Opcode = 0x15 // dst, a, b
	OpNotEqual     Opcode = 0x16 // dst, a, b
	OpLessThan     Opcode = 0x17 // dst, a, b
	OpLessEqual    Opcode = 0x18 // dst, a, b
	OpGreaterThan  Opcode = 0x19 // dst, a, b
	OpGreaterEqual Opcode = 0x1A // dst, a, b

	// ========================================================================
	// Logical (0x1B-0x1D)
	// ========================================================================

	OpAnd Opcode = 0x1B // dst, a, b
	OpOr  Opcode = 0x1C // dst, a, b
	OpNot Opcode = 0x1D // dst, src

	// ========================================================================
	// Objects (0x1F)
	// ========================================================================

	OpObjectInit Opcode = 0x1F // dst, field count, fields...
)

// OpcodeInfo provides metadata about each opcode for debugging and validation.
type OpcodeInfo struct {
	Name      string // Human-readable name
	RegOps    int    // Fixed register operands encoded as u32 (-1 = variable shape)
	HasOffset bool   // Instruction carries a signed relative jump offset
}

// opcodeInfoTable maps opcodes to their metadata.
var opcodeInfoTable = map[Opcode]OpcodeInfo{
	OpLoadConst:          {"LOAD_CONST", -1, false},
	OpMove:               {"MOVE", 2, false},
	OpAdd:                {"ADD", 3, false},
	OpSub:                {"SUB", 3, false},
	OpMul:                {"MUL", 3, false},
	OpDiv:                {"DIV", 3, false},
	OpGetProp:            {"GET_PROP", 3, false},
	OpSetProp:            {"SET_PROP", 3, false},
	OpCall:               {"CALL", -1, false},
	OpReturn:             {"RETURN", 1, false},
	OpJump:               {"JUMP", 0, true},
	OpJumpIfTrue:         {"JUMP_IF_TRUE", 1, true},
	OpJumpIfFalse:        {"JUMP_IF_FALSE", 1, true},
	OpSpawn:              {"SPAWN", -1, false},
	OpSend:               {"SEND", 2, false},
	OpReceive:            {"RECEIVE", 1, false},
	OpLink:               {"LINK", 1, false},
	OpMatch:              {"MATCH", -1, true},
	OpYield:              {"YIELD", 0, false},
	OpNop:                {"NOP", 0, false},
	OpEqual:              {"EQUAL", 3, false},
	OpNotEqual:           {"NOT_EQUAL", 3, false},
	OpLessThan:           {"LESS_THAN", 3, false},
	OpLessEqual:          {"LESS_EQUAL", 3, false},
	OpGreaterThan:        {"GREATER_THAN", 3, false},
	OpGreaterEqual:       {"GREATER_EQUAL", 3, false},
	OpAnd:                {"AND", 3, false},
	OpOr:                 {"OR", 3, false},
	OpNot:                {"NOT", 2, false},
	OpReceiveWithTimeout: {"RECEIVE_WITH_TIMEOUT", 3, false},
	OpObjectInit:         {"OBJECT_INIT", -1, false},
}

// GetOpcodeInfo returns metadata for an opcode.
// Returns a placeholder with name "UNKNOWN" if the opcode is not recognized.
func GetOpcodeInfo(op Opcode) OpcodeInfo {
	if info, ok := opcodeInfoTable[op]; ok {
		return info
	}
	return OpcodeInfo{Name: fmt.Sprintf("UNKNOWN(0x%02X)", byte(op))}
}

// String returns the human-readable name of an opcode.
func (op Opcode) String() string {
	return GetOpcodeInfo(op).Name
}

// IsJump returns true if this opcode carries a relative jump offset.
// Only OpJump, OpJumpIfTrue and OpJumpIfFalse are offset-bearing; OpMatch
// carries offsets in its arm table but is not patchable by the control-flow
// builders.
func (op Opcode) IsJump() bool {
	return op == OpJump || op == OpJumpIfTrue || op == OpJumpIfFalse
}

// IsKnown returns true if the opcode is part of the public instruction
// vocabulary.
func (op Opcode) IsKnown() bool {
	_, ok := opcodeInfoTable[op]
	return ok
}

// AllOpcodes returns a slice of all defined opcodes.
// Useful for testing that all opcodes have metadata.
func AllOpcodes() []Opcode {
	opcodes := make([]Opcode, 0, len(opcodeInfoTable))
	for op := range opcodeInfoTable {
		opcodes = append(opcodes, op)
	}
	return opcodes
}

// OpcodeCount returns the number of defined opcodes.
func OpcodeCount() int {
	return len(opcodeInfoTable)
}
