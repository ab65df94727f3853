package bytecode

import (
	"errors"
	"fmt"
	"math"
)

// Encoding errors. All operand-range violations wrap ErrEncoding so callers
// can test with errors.Is.
var (
	ErrEncoding       = errors.New("operand outside encodable range")
	ErrUnknownOpcode  = errors.New("unknown opcode")
	ErrUnknownKind    = errors.New("unknown value kind")
	ErrUnknownPattern = errors.New("unknown pattern kind")
)

// checkRegister validates that a register or count operand fits the
// unsigned 32-bit wire field.
func checkRegister(what string, r int) error {
	if r < 0 || r > math.MaxUint32 {
		return fmt.Errorf("%w: %s %d does not fit u32", ErrEncoding, what, r)
	}
	return nil
}

// checkOffset validates that a jump offset fits the signed 32-bit wire field.
func checkOffset(offset int) error {
	if offset < math.MinInt32 || offset > math.MaxInt32 {
		return fmt.Errorf("%w: jump offset %d does not fit i32", ErrEncoding, offset)
	}
	return nil
}

// Validate checks that every operand of the instruction fits its wire field.
func (in Instruction) Validate() error {
	info, ok := opcodeInfoTable[in.Op]
	if !ok {
		return fmt.Errorf("%w: 0x%02X", ErrUnknownOpcode, byte(in.Op))
	}

	regs := []int{in.A, in.B, in.C}
	fixed := info.RegOps
	if fixed < 0 {
		switch in.Op {
		case OpLoadConst, OpObjectInit, OpMatch:
			fixed = 1
		case OpCall, OpSpawn:
			fixed = 2
		}
	}
	for i := 0; i < fixed; i++ {
		if err := checkRegister("register", regs[i]); err != nil {
			return err
		}
	}
	if info.HasOffset {
		if err := checkOffset(in.Offset); err != nil {
			return err
		}
	}
	for _, a := range in.Args {
		if err := checkRegister("argument register", a); err != nil {
			return err
		}
	}
	for _, f := range in.Fields {
		if f.FromRegister {
			if err := checkRegister("field register", f.Register); err != nil {
				return err
			}
		}
	}
	for _, arm := range in.Arms {
		if err := checkOffset(arm.Offset); err != nil {
			return err
		}
	}
	return nil
}
