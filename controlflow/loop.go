package controlflow

import (
	"fmt"

	"github.com/ionlang/ionbc/bytecode"
)

// loopPhase is the construction state of a LoopBuilder.
type loopPhase uint8

const (
	loopEmpty loopPhase = iota // no condition set yet
	loopBody                   // the loop body is open
	loopThen                   // the then arm (normal exit) is open
	loopElse                   // the else arm (break exit) is open
	loopBuilt                  // Build was called, builder is spent
)

// Break and continue markers are internal-only instruction variants. Their
// byte values sit outside the public opcode vocabulary and must never
// survive into Build's output.
const (
	opBreakMarker    bytecode.Opcode = 0xFE
	opContinueMarker bytecode.Opcode = 0xFF
)

// LoopBuilder lowers a while loop with optional then and else arms into a
// flat instruction sequence with a back-edge and patched exits.
//
// The then arm runs when the loop exits normally (the condition became
// false); the else arm runs when the loop exits via break. A continue
// returns to re-evaluating the condition, so a computed condition's
// instructions run again on every continue.
//
// Construction is ordered: StartLoop, then Append/AddBreak/AddContinue for
// the body, then optionally StartThen and StartElse (Append feeds whichever
// arm is open), then Build. Builders are single-use.
type LoopBuilder struct {
	phase loopPhase
	cond  Condition
	body  []bytecode.Instruction
	then  []bytecode.Instruction
	els   []bytecode.Instruction
}

// NewLoopBuilder creates an empty loop builder.
func NewLoopBuilder() *LoopBuilder {
	return &LoopBuilder{}
}

// StartLoop sets the loop condition and opens the body.
func (b *LoopBuilder) StartLoop(cond Condition) error {
	switch b.phase {
	case loopEmpty:
	case loopBuilt:
		return usageError("StartLoop called after Build")
	default:
		return usageError("StartLoop called twice")
	}
	if err := cond.validate(); err != nil {
		return err
	}
	b.cond = cond
	b.phase = loopBody
	return nil
}

// Append adds an instruction to the currently open region: the loop body,
// or the then/else arm once StartThen/StartElse has been called.
func (b *LoopBuilder) Append(in bytecode.Instruction) error {
	if err := in.Validate(); err != nil {
		return err
	}
	switch b.phase {
	case loopBody:
		b.body = append(b.body, in)
	case loopThen:
		b.then = append(b.then, in)
	case loopElse:
		b.els = append(b.els, in)
	case loopBuilt:
		return usageError("Append called after Build")
	default:
		return usageError("Append called before StartLoop")
	}
	return nil
}

// AddBreak records a break at the current point of the loop body. The
// generated jump exits to the else arm.
func (b *LoopBuilder) AddBreak() error {
	if b.phase != loopBody {
		return usageError("AddBreak outside the loop body")
	}
	b.body = append(b.body, bytecode.Instruction{Op: opBreakMarker})
	return nil
}

// AddContinue records a continue at the current point of the loop body.
// The generated jump returns to the loop head, re-evaluating the condition.
func (b *LoopBuilder) AddContinue() error {
	if b.phase != loopBody {
		return usageError("AddContinue outside the loop body")
	}
	b.body = append(b.body, bytecode.Instruction{Op: opContinueMarker})
	return nil
}

// StartThen opens the then arm, executed on normal loop exit. No body
// instructions, breaks or continues may be added afterwards.
func (b *LoopBuilder) StartThen() error {
	switch b.phase {
	case loopEmpty:
		return usageError("StartThen called before StartLoop")
	case loopThen:
		return usageError("StartThen called twice")
	case loopElse:
		return usageError("StartThen called after StartElse")
	case loopBuilt:
		return usageError("StartThen called after Build")
	}
	b.phase = loopThen
	return nil
}

// StartElse opens the else arm, executed on break exit. The then arm may be
// skipped when the loop has none.
func (b *LoopBuilder) StartElse() error {
	switch b.phase {
	case loopEmpty:
		return usageError("StartElse called before StartLoop")
	case loopElse:
		return usageError("StartElse called twice")
	case loopBuilt:
		return usageError("StartElse called after Build")
	}
	b.phase = loopElse
	return nil
}

// Build lowers the loop and returns the finished, fully patched sequence.
//
// Layout: condition instructions, exit test (jump-if-false to the then
// arm), body, back-edge to the loop head, then arm, skip-else jump (only
// when the else arm is non-empty), else arm. Break markers resolve to the
// else arm's start, continue markers to the loop head, so a break skips the
// then arm entirely and a continue re-runs the condition.
//
// Offsets follow the interpreter's convention: target index = jump index +
// offset.
func (b *LoopBuilder) Build() ([]bytecode.Instruction, error) {
	switch b.phase {
	case loopEmpty:
		return nil, usageError("Build called with no loop started")
	case loopBuilt:
		return nil, usageError("Build called twice")
	}
	b.phase = loopBuilt

	// Emission pass. The loop head is address 0 of the construct.
	const head = 0
	var out []bytecode.Instruction
	out = append(out, b.cond.Instructions()...)

	exitIdx := len(out)
	out = append(out, bytecode.JumpIfFalse(b.cond.ResultRegister(), 0))

	bodyStart := len(out)
	out = append(out, b.body...)

	backIdx := len(out)
	out = append(out, bytecode.Jump(0))

	thenStart := len(out)
	out = append(out, b.then...)

	skipIdx := -1
	if len(b.els) > 0 {
		skipIdx = len(out)
		out = append(out, bytecode.Jump(0))
	}

	elseStart := len(out)
	out = append(out, b.els...)

	end := len(out)

	// Patch pass: resolve the exit test, the back-edge, the break and
	// continue markers, and the skip-else jump. Replacement never changes
	// the instruction count.
	patch := func(index, target int, make func(offset int) bytecode.Instruction) error {
		offset := target - index
		if err := checkOffset(offset); err != nil {
			return err
		}
		out[index] = make(offset)
		return nil
	}

	condReg := b.cond.ResultRegister()
	if err := patch(exitIdx, thenStart, func(off int) bytecode.Instruction {
		return bytecode.JumpIfFalse(condReg, off)
	}); err != nil {
		return nil, err
	}
	if err := patch(backIdx, head, bytecode.Jump); err != nil {
		return nil, err
	}
	for i := bodyStart; i < backIdx; i++ {
		switch out[i].Op {
		case opBreakMarker:
			if err := patch(i, elseStart, bytecode.Jump); err != nil {
				return nil, err
			}
		case opContinueMarker:
			if err := patch(i, head, bytecode.Jump); err != nil {
				return nil, err
			}
		}
	}
	if skipIdx >= 0 {
		if err := patch(skipIdx, end, bytecode.Jump); err != nil {
			return nil, err
		}
	}

	// Post-condition: no internal marker may survive to the output.
	for i, in := range out {
		if in.Op == opBreakMarker || in.Op == opContinueMarker {
			return nil, fmt.Errorf("internal: unresolved loop marker at index %d", i)
		}
	}

	return out, nil
}
