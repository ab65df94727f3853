package controlflow

import "github.com/ionlang/ionbc/bytecode"

// Condition represents a boolean test needed before a branch, in one of two
// forms: a value already resident in a register, or a sequence of
// instructions that must run first, after which a designated register holds
// the boolean result.
//
// The computed form is the device that gives short-circuit behavior: its
// instructions are emitted only on the control path that actually needs the
// test, so their side effects never run when an earlier branch already
// decided the outcome.
type Condition struct {
	instrs []bytecode.Instruction
	reg    int
}

// FromRegister creates a condition from a register holding a pre-evaluated
// boolean.
func FromRegister(reg int) Condition {
	return Condition{reg: reg}
}

// FromInstructions creates a condition from instructions that evaluate to a
// boolean stored in resultReg. The instructions must be final: they may not
// contain jumps that need resolving against the surrounding construct.
func FromInstructions(instrs []bytecode.Instruction, resultReg int) Condition {
	return Condition{
		instrs: append([]bytecode.Instruction(nil), instrs...),
		reg:    resultReg,
	}
}

// ResultRegister returns the register holding the condition's boolean
// result at the point the branch is tested.
func (c Condition) ResultRegister() int {
	return c.reg
}

// Instructions returns the instructions that must run before the test.
// It is empty for the register form.
func (c Condition) Instructions() []bytecode.Instruction {
	return c.instrs
}

// validate checks that every operand the condition contributes to the
// output is encodable.
func (c Condition) validate() error {
	if err := checkRegister(c.reg); err != nil {
		return err
	}
	for _, in := range c.instrs {
		if err := in.Validate(); err != nil {
			return err
		}
	}
	return nil
}
