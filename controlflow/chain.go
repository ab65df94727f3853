package controlflow

import "github.com/ionlang/ionbc/bytecode"

// chainPhase is the construction state of a ChainBuilder.
type chainPhase uint8

const (
	chainEmpty  chainPhase = iota // no branch started yet
	chainBranch                   // a branch body is open
	chainElse                     // the trailing else body is open
	chainBuilt                    // Build was called, builder is spent
)

// branch is one (condition, body) pair of a chain.
type branch struct {
	cond Condition
	body []bytecode.Instruction
}

// jump targets used during lowering.
type targetKind uint8

const (
	targetNextBranch targetKind = iota // start of branch patch.branch's condition
	targetElse                         // start of the else arm
	targetEnd                          // one past the last emitted instruction
)

// jumpPatch records a placeholder jump and what it must eventually reach.
type jumpPatch struct {
	index  int        // index of the placeholder in the emitted sequence
	kind   targetKind
	branch int // next-branch index, for targetNextBranch
}

// ChainBuilder lowers an if / else-if / else chain into a flat instruction
// sequence with relative jumps and short-circuit condition evaluation.
//
// Construction is ordered: Start opens the first branch, AddBranch each
// further branch, Append adds instructions to the currently open body,
// FinishWithElse opens the trailing else body, and Build produces the
// finished sequence. Builders are single-use; any call after Build fails
// with ErrUsage.
//
//	b := controlflow.NewChainBuilder()
//	b.Start(controlflow.FromRegister(0))
//	b.Append(bytecode.LoadConst(1, bytecode.Number(1)))
//	b.FinishWithElse()
//	b.Append(bytecode.LoadConst(1, bytecode.Number(2)))
//	instrs, err := b.Build()
type ChainBuilder struct {
	phase    chainPhase
	branches []branch
	elseBody []bytecode.Instruction
}

// NewChainBuilder creates an empty chain builder.
func NewChainBuilder() *ChainBuilder {
	return &ChainBuilder{}
}

// Start opens the chain with its first condition.
func (b *ChainBuilder) Start(cond Condition) error {
	switch b.phase {
	case chainEmpty:
	case chainBuilt:
		return usageError("Start called after Build")
	default:
		return usageError("Start called twice; use AddBranch for further branches")
	}
	if err := cond.validate(); err != nil {
		return err
	}
	b.branches = append(b.branches, branch{cond: cond})
	b.phase = chainBranch
	return nil
}

// AddBranch appends another condition/body pair to the chain.
func (b *ChainBuilder) AddBranch(cond Condition) error {
	switch b.phase {
	case chainEmpty:
		return usageError("AddBranch called before Start")
	case chainElse:
		return usageError("AddBranch called after FinishWithElse")
	case chainBuilt:
		return usageError("AddBranch called after Build")
	}
	if err := cond.validate(); err != nil {
		return err
	}
	b.branches = append(b.branches, branch{cond: cond})
	return nil
}

// Append adds an instruction to the currently open body.
func (b *ChainBuilder) Append(in bytecode.Instruction) error {
	if err := in.Validate(); err != nil {
		return err
	}
	switch b.phase {
	case chainBranch:
		last := &b.branches[len(b.branches)-1]
		last.body = append(last.body, in)
		return nil
	case chainElse:
		b.elseBody = append(b.elseBody, in)
		return nil
	case chainBuilt:
		return usageError("Append called after Build")
	default:
		return usageError("Append called before Start")
	}
}

// FinishWithElse opens the trailing else body. Subsequent Append calls add
// to it; no further branches may be added.
func (b *ChainBuilder) FinishWithElse() error {
	switch b.phase {
	case chainEmpty:
		return usageError("FinishWithElse called before Start")
	case chainElse:
		return usageError("FinishWithElse called twice")
	case chainBuilt:
		return usageError("FinishWithElse called after Build")
	}
	b.phase = chainElse
	return nil
}

// Build lowers the chain and returns the finished, fully patched sequence.
//
// The layout for each branch is: the condition's instructions (if any), a
// jump-if-false past the branch, the body, and an exit jump to the overall
// end (omitted for the last branch when no else arm exists). Condition
// instructions of branch k are placed after branch k-1's exit jump, so they
// are unreachable whenever an earlier condition was true.
//
// Offsets follow the interpreter's convention: target index = jump index +
// offset.
func (b *ChainBuilder) Build() ([]bytecode.Instruction, error) {
	switch b.phase {
	case chainEmpty:
		return nil, usageError("Build called with no branch started")
	case chainBuilt:
		return nil, usageError("Build called twice")
	}
	hasElse := b.phase == chainElse
	b.phase = chainBuilt

	// Emission pass: lay out branches with placeholder jumps, recording
	// what each placeholder must reach.
	var (
		out     []bytecode.Instruction
		patches []jumpPatch
	)
	for i, br := range b.branches {
		out = append(out, br.cond.Instructions()...)

		condIdx := len(out)
		out = append(out, bytecode.JumpIfFalse(br.cond.ResultRegister(), 0))

		last := i == len(b.branches)-1
		switch {
		case !last:
			patches = append(patches, jumpPatch{index: condIdx, kind: targetNextBranch, branch: i + 1})
		case hasElse:
			patches = append(patches, jumpPatch{index: condIdx, kind: targetElse})
		default:
			patches = append(patches, jumpPatch{index: condIdx, kind: targetEnd})
		}

		out = append(out, br.body...)

		if !last || hasElse {
			exitIdx := len(out)
			out = append(out, bytecode.Jump(0))
			patches = append(patches, jumpPatch{index: exitIdx, kind: targetEnd})
		}
	}
	if hasElse {
		out = append(out, b.elseBody...)
	}

	// Address resolution pass: emission is deterministic and
	// length-preserving, so every named address falls out of replaying the
	// same layout rule.
	branchStarts := make([]int, len(b.branches))
	idx := 0
	for i, br := range b.branches {
		branchStarts[i] = idx
		idx += len(br.cond.Instructions()) + 1 + len(br.body)
		if i < len(b.branches)-1 || hasElse {
			idx++ // exit jump
		}
	}
	elseStart := idx
	end := idx + len(b.elseBody)

	// Patch pass: rewrite placeholder operands in place. The instruction
	// count never changes, so previously computed addresses stay valid.
	for _, p := range patches {
		var target int
		switch p.kind {
		case targetNextBranch:
			target = branchStarts[p.branch]
		case targetElse:
			target = elseStart
		case targetEnd:
			target = end
		}
		offset := target - p.index
		if err := checkOffset(offset); err != nil {
			return nil, err
		}
		switch prev := out[p.index]; prev.Op {
		case bytecode.OpJumpIfFalse:
			out[p.index] = bytecode.JumpIfFalse(prev.A, offset)
		case bytecode.OpJump:
			out[p.index] = bytecode.Jump(offset)
		}
	}

	return out, nil
}
