package controlflow

import (
	"testing"

	"github.com/ionlang/ionbc/bytecode"
)

// traceResult is the outcome of running a lowered sequence through the
// test evaluator.
type traceResult struct {
	regs     map[int]bytecode.Value
	trace    []int // executed instruction indices, in order
	returned bool
	ret      bytecode.Value
}

// executed reports whether the instruction at index ran at least once.
func (r traceResult) executed(index int) bool {
	for _, i := range r.trace {
		if i == index {
			return true
		}
	}
	return false
}

// executedCount returns how many times the instruction at index ran.
func (r traceResult) executedCount(index int) int {
	n := 0
	for _, i := range r.trace {
		if i == index {
			n++
		}
	}
	return n
}

func truthy(v bytecode.Value) bool {
	switch v.Kind {
	case bytecode.KindBoolean:
		return v.Bool
	case bytecode.KindNumber:
		return v.Num != 0
	case bytecode.KindUnit, bytecode.KindUndefined:
		return false
	default:
		return true
	}
}

// runTrace executes a lowered instruction sequence over a register file,
// recording every executed instruction index. The program counter follows
// the interpreter's update order: it is incremented before dispatch, and a
// taken jump sets it to pc + offset - 1, so offsets are relative to the
// jump's own index.
//
// Only the opcodes the control-flow tests need are implemented; anything
// else fails the test.
func runTrace(t *testing.T, instrs []bytecode.Instruction, init map[int]bytecode.Value) traceResult {
	t.Helper()

	regs := make(map[int]bytecode.Value)
	for r, v := range init {
		regs[r] = v
	}
	num := func(r int) float64 {
		v := regs[r]
		if v.Kind != bytecode.KindNumber {
			t.Fatalf("register r%d holds %s, want number", r, v.Kind)
		}
		return v.Num
	}

	res := traceResult{regs: regs}
	pc := 0
	for steps := 0; pc >= 0 && pc < len(instrs); steps++ {
		if steps > 100000 {
			t.Fatalf("trace did not terminate after %d steps", steps)
		}
		in := instrs[pc]
		res.trace = append(res.trace, pc)
		pc++

		switch in.Op {
		case bytecode.OpLoadConst:
			regs[in.A] = in.Const
		case bytecode.OpMove:
			regs[in.A] = regs[in.B]
		case bytecode.OpAdd:
			regs[in.A] = bytecode.Number(num(in.B) + num(in.C))
		case bytecode.OpSub:
			regs[in.A] = bytecode.Number(num(in.B) - num(in.C))
		case bytecode.OpEqual:
			regs[in.A] = bytecode.Boolean(regs[in.B].Equal(regs[in.C]))
		case bytecode.OpNotEqual:
			regs[in.A] = bytecode.Boolean(!regs[in.B].Equal(regs[in.C]))
		case bytecode.OpLessThan:
			regs[in.A] = bytecode.Boolean(num(in.B) < num(in.C))
		case bytecode.OpGreaterThan:
			regs[in.A] = bytecode.Boolean(num(in.B) > num(in.C))
		case bytecode.OpJump:
			pc = pc + in.Offset - 1
		case bytecode.OpJumpIfTrue:
			if truthy(regs[in.A]) {
				pc = pc + in.Offset - 1
			}
		case bytecode.OpJumpIfFalse:
			if !truthy(regs[in.A]) {
				pc = pc + in.Offset - 1
			}
		case bytecode.OpReturn:
			res.returned = true
			res.ret = regs[in.A]
			return res
		case bytecode.OpNop, bytecode.OpYield:
		default:
			t.Fatalf("trace evaluator: unsupported opcode %s at index %d", in.Op, res.trace[len(res.trace)-1])
		}
	}
	return res
}

// reachable returns the set of instruction indices reachable from entry by
// following fallthrough and jump edges. Conditional jumps contribute both
// edges; Return terminates a path. The overall end address (len(instrs)) is
// included when any path falls off the end.
func reachable(instrs []bytecode.Instruction, entry int) map[int]bool {
	seen := make(map[int]bool)
	stack := []int{entry}
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if i < 0 || seen[i] {
			continue
		}
		seen[i] = true
		if i >= len(instrs) {
			continue
		}
		switch in := instrs[i]; in.Op {
		case bytecode.OpJump:
			stack = append(stack, i+in.Offset)
		case bytecode.OpJumpIfTrue, bytecode.OpJumpIfFalse:
			stack = append(stack, i+in.Offset, i+1)
		case bytecode.OpReturn:
		default:
			stack = append(stack, i+1)
		}
	}
	return seen
}
