package bytecode

import (
	"bytes"
	"errors"
	"fmt"
)

// ErrRegisterBudget is returned when a function references a register
// beyond its declared budget.
var ErrRegisterBudget = errors.New("register index exceeds function budget")

// Function is a named, fixed-arity unit wrapping an instruction sequence
// plus a declared count of additional scratch registers. The interpreter
// allocates Arity + ExtraRegs registers for each activation; parameters
// arrive in registers 0..Arity-1.
type Function struct {
	Name         string // empty for anonymous functions
	Arity        int
	ExtraRegs    int
	Instructions []Instruction
}

// NewFunction creates a function container.
func NewFunction(name string, arity, extraRegs int, instructions []Instruction) *Function {
	return &Function{
		Name:         name,
		Arity:        arity,
		ExtraRegs:    extraRegs,
		Instructions: instructions,
	}
}

// RegisterBudget returns the total number of registers available to the
// function at run time.
func (fn *Function) RegisterBudget() int {
	return fn.Arity + fn.ExtraRegs
}

// MaxRegister returns the highest register index referenced by any
// instruction, or -1 if no instruction references a register.
func (fn *Function) MaxRegister() int {
	max := -1
	for _, in := range fn.Instructions {
		for _, r := range in.registerOperands() {
			if r > max {
				max = r
			}
		}
	}
	return max
}

// CheckRegisterBudget verifies that every referenced register fits within
// the declared budget. Sizing the budget is the caller's responsibility;
// this check catches the mismatch before the function is serialized.
func (fn *Function) CheckRegisterBudget() error {
	if max := fn.MaxRegister(); max >= fn.RegisterBudget() {
		return fmt.Errorf("%w: r%d referenced, budget is %d registers",
			ErrRegisterBudget, max, fn.RegisterBudget())
	}
	return nil
}

// Serialize encodes the function as a single-function container.
func (fn *Function) Serialize() ([]byte, error) {
	var buf bytes.Buffer
	if err := NewWriter(&buf).WriteFunction(fn); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// registerOperands returns the register indices an instruction references,
// in operand order. Jump offsets and counts are not registers.
func (in Instruction) registerOperands() []int {
	info := GetOpcodeInfo(in.Op)
	switch in.Op {
	case OpLoadConst, OpMatch:
		return []int{in.A}
	case OpCall, OpSpawn:
		regs := []int{in.A, in.B}
		return append(regs, in.Args...)
	case OpJump:
		return nil
	case OpJumpIfTrue, OpJumpIfFalse:
		return []int{in.A}
	case OpObjectInit:
		regs := []int{in.A}
		for _, f := range in.Fields {
			if f.FromRegister {
				regs = append(regs, f.Register)
			}
		}
		return regs
	default:
		switch info.RegOps {
		case 1:
			return []int{in.A}
		case 2:
			return []int{in.A, in.B}
		case 3:
			return []int{in.A, in.B, in.C}
		default:
			return nil
		}
	}
}
