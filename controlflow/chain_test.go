package controlflow

import (
	"errors"
	"testing"

	"github.com/ionlang/ionbc/bytecode"
)

// buildTwoBranchElseChain lowers the chain used by several tests:
//
//	if r0 == 1      { r5 := 10 }    (computed condition, result in r2)
//	else if r0 > 99 { r5 := 20 }    (computed condition, result in r4)
//	else            { r5 := 30 }
//
// Layout (instruction indices):
//
//	0  LOAD_CONST r1 1        branch 1 condition
//	1  EQUAL r2 r0 r1
//	2  JUMP_IF_FALSE r2 +3    -> 5 (branch 2 condition)
//	3  LOAD_CONST r5 10       branch 1 body
//	4  JUMP +7                -> 11 (end)
//	5  LOAD_CONST r3 99       branch 2 condition
//	6  GREATER_THAN r4 r0 r3
//	7  JUMP_IF_FALSE r4 +3    -> 10 (else)
//	8  LOAD_CONST r5 20       branch 2 body
//	9  JUMP +2                -> 11 (end)
//	10 LOAD_CONST r5 30       else body
func buildTwoBranchElseChain(t *testing.T) []bytecode.Instruction {
	t.Helper()
	b := NewChainBuilder()

	cond1 := FromInstructions([]bytecode.Instruction{
		bytecode.LoadConst(1, bytecode.Number(1)),
		bytecode.Equal(2, 0, 1),
	}, 2)
	if err := b.Start(cond1); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := b.Append(bytecode.LoadConst(5, bytecode.Number(10))); err != nil {
		t.Fatalf("Append: %v", err)
	}

	cond2 := FromInstructions([]bytecode.Instruction{
		bytecode.LoadConst(3, bytecode.Number(99)),
		bytecode.GreaterThan(4, 0, 3),
	}, 4)
	if err := b.AddBranch(cond2); err != nil {
		t.Fatalf("AddBranch: %v", err)
	}
	if err := b.Append(bytecode.LoadConst(5, bytecode.Number(20))); err != nil {
		t.Fatalf("Append: %v", err)
	}

	if err := b.FinishWithElse(); err != nil {
		t.Fatalf("FinishWithElse: %v", err)
	}
	if err := b.Append(bytecode.LoadConst(5, bytecode.Number(30))); err != nil {
		t.Fatalf("Append: %v", err)
	}

	out, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return out
}

func TestChainSingleBranchNoElse(t *testing.T) {
	// if r0 { r1 := 1; return r1 }
	b := NewChainBuilder()
	if err := b.Start(FromRegister(0)); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := b.Append(bytecode.LoadConst(1, bytecode.Number(1))); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := b.Append(bytecode.Return(1)); err != nil {
		t.Fatalf("Append: %v", err)
	}

	out, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if len(out) != 3 {
		t.Fatalf("len(out) = %d, want 3", len(out))
	}
	if out[0].Op != bytecode.OpJumpIfFalse || out[0].A != 0 {
		t.Errorf("out[0] = %s, want JUMP_IF_FALSE r0", out[0])
	}
	// The false edge skips exactly the two body instructions, landing on
	// the overall end address.
	if got := 0 + out[0].Offset; got != len(out) {
		t.Errorf("jump target = %d, want %d (end)", got, len(out))
	}
	if out[1].Op != bytecode.OpLoadConst || out[1].A != 1 {
		t.Errorf("out[1] = %s, want LOAD_CONST r1 1", out[1])
	}
	if out[2].Op != bytecode.OpReturn || out[2].A != 1 {
		t.Errorf("out[2] = %s, want RETURN r1", out[2])
	}
}

func TestChainWithElseLayout(t *testing.T) {
	out := buildTwoBranchElseChain(t)

	if len(out) != 11 {
		t.Fatalf("len(out) = %d, want 11", len(out))
	}

	// Every placeholder must have been rewritten to its concrete target.
	jumps := []struct {
		index  int
		op     bytecode.Opcode
		target int
	}{
		{2, bytecode.OpJumpIfFalse, 5},  // false -> next branch's condition
		{4, bytecode.OpJump, 11},        // exit -> end
		{7, bytecode.OpJumpIfFalse, 10}, // false -> else
		{9, bytecode.OpJump, 11},        // exit -> end
	}
	for _, j := range jumps {
		in := out[j.index]
		if in.Op != j.op {
			t.Errorf("out[%d].Op = %s, want %s", j.index, in.Op, j.op)
			continue
		}
		if got := j.index + in.Offset; got != j.target {
			t.Errorf("out[%d] target = %d, want %d", j.index, got, j.target)
		}
	}

	// Considering both edges of each conditional jump, every instruction
	// and the end address are reachable from the chain's entry.
	seen := reachable(out, 0)
	for i := 0; i <= len(out); i++ {
		if !seen[i] {
			t.Errorf("index %d unreachable from entry", i)
		}
	}
}

func TestChainShortCircuit(t *testing.T) {
	out := buildTwoBranchElseChain(t)

	// Static check: on the path where branch 1's condition is true (the
	// conditional jump's fallthrough edge), branch 2's condition
	// instructions and the else body are unreachable.
	onTruePath := make(map[int]bool)
	pc := 0
	for pc < len(out) {
		onTruePath[pc] = true
		switch in := out[pc]; in.Op {
		case bytecode.OpJumpIfFalse:
			pc++ // condition true: fall through
		case bytecode.OpJump:
			pc += in.Offset
		default:
			pc++
		}
	}
	for _, idx := range []int{5, 6, 8, 10} {
		if onTruePath[idx] {
			t.Errorf("index %d reachable on branch-1-true path", idx)
		}
	}

	// Dynamic check: with r0 = 1 the trace executes branch 1's body and
	// never touches branch 2's condition evaluation or the else body.
	res := runTrace(t, out, map[int]bytecode.Value{0: bytecode.Number(1)})
	if !res.executed(3) {
		t.Error("branch 1 body not executed")
	}
	for _, idx := range []int{5, 6, 8, 10} {
		if res.executed(idx) {
			t.Errorf("index %d executed despite branch 1 being true", idx)
		}
	}
	if got := res.regs[5]; !got.Equal(bytecode.Number(10)) {
		t.Errorf("r5 = %s, want 10", got)
	}
}

func TestChainMutualExclusivity(t *testing.T) {
	// Two register conditions plus else; exactly one body must run for
	// every truth assignment, and all paths converge on the end address.
	cases := []struct {
		c0, c1 bool
		want   float64
	}{
		{true, true, 10},
		{true, false, 10},
		{false, true, 20},
		{false, false, 30},
	}
	for _, tc := range cases {
		b := NewChainBuilder()
		if err := b.Start(FromRegister(0)); err != nil {
			t.Fatalf("Start: %v", err)
		}
		b.Append(bytecode.LoadConst(9, bytecode.Number(10)))
		if err := b.AddBranch(FromRegister(1)); err != nil {
			t.Fatalf("AddBranch: %v", err)
		}
		b.Append(bytecode.LoadConst(9, bytecode.Number(20)))
		if err := b.FinishWithElse(); err != nil {
			t.Fatalf("FinishWithElse: %v", err)
		}
		b.Append(bytecode.LoadConst(9, bytecode.Number(30)))

		out, err := b.Build()
		if err != nil {
			t.Fatalf("Build: %v", err)
		}

		res := runTrace(t, out, map[int]bytecode.Value{
			0: bytecode.Boolean(tc.c0),
			1: bytecode.Boolean(tc.c1),
		})
		if got := res.regs[9]; !got.Equal(bytecode.Number(tc.want)) {
			t.Errorf("c0=%v c1=%v: r9 = %s, want %g", tc.c0, tc.c1, got, tc.want)
		}

		bodies := 0
		for _, idx := range res.trace {
			if out[idx].Op == bytecode.OpLoadConst && out[idx].A == 9 {
				bodies++
			}
		}
		if bodies != 1 {
			t.Errorf("c0=%v c1=%v: %d bodies executed, want exactly 1", tc.c0, tc.c1, bodies)
		}
		if last := res.trace[len(res.trace)-1]; last+deltaAt(out, last) != len(out) && last != len(out)-1 {
			t.Errorf("c0=%v c1=%v: trace does not converge on end", tc.c0, tc.c1)
		}
	}
}

// deltaAt returns the jump delta of the instruction at index, or 1 for
// fallthrough instructions.
func deltaAt(out []bytecode.Instruction, index int) int {
	if out[index].Op == bytecode.OpJump {
		return out[index].Offset
	}
	return 1
}

func TestChainRoundTripAddressing(t *testing.T) {
	out := buildTwoBranchElseChain(t)

	// target = source + offset must land inside the construct (the end
	// address included) for every emitted jump.
	for i, in := range out {
		if !in.Op.IsJump() {
			continue
		}
		target := i + in.Offset
		if target < 0 || target > len(out) {
			t.Errorf("out[%d] target = %d, outside [0, %d]", i, target, len(out))
		}
		if in.Offset == 0 {
			t.Errorf("out[%d] still carries a placeholder offset", i)
		}
	}
}

func TestChainUsageErrors(t *testing.T) {
	cond := FromRegister(0)

	t.Run("start twice", func(t *testing.T) {
		b := NewChainBuilder()
		b.Start(cond)
		if err := b.Start(cond); !errors.Is(err, ErrUsage) {
			t.Errorf("err = %v, want ErrUsage", err)
		}
	})

	t.Run("add branch before start", func(t *testing.T) {
		b := NewChainBuilder()
		if err := b.AddBranch(cond); !errors.Is(err, ErrUsage) {
			t.Errorf("err = %v, want ErrUsage", err)
		}
	})

	t.Run("append before start", func(t *testing.T) {
		b := NewChainBuilder()
		if err := b.Append(bytecode.Nop()); !errors.Is(err, ErrUsage) {
			t.Errorf("err = %v, want ErrUsage", err)
		}
	})

	t.Run("else before start", func(t *testing.T) {
		b := NewChainBuilder()
		if err := b.FinishWithElse(); !errors.Is(err, ErrUsage) {
			t.Errorf("err = %v, want ErrUsage", err)
		}
	})

	t.Run("else twice", func(t *testing.T) {
		b := NewChainBuilder()
		b.Start(cond)
		b.FinishWithElse()
		if err := b.FinishWithElse(); !errors.Is(err, ErrUsage) {
			t.Errorf("err = %v, want ErrUsage", err)
		}
	})

	t.Run("add branch after else", func(t *testing.T) {
		b := NewChainBuilder()
		b.Start(cond)
		b.FinishWithElse()
		if err := b.AddBranch(cond); !errors.Is(err, ErrUsage) {
			t.Errorf("err = %v, want ErrUsage", err)
		}
	})

	t.Run("build with no branch", func(t *testing.T) {
		b := NewChainBuilder()
		if _, err := b.Build(); !errors.Is(err, ErrUsage) {
			t.Errorf("err = %v, want ErrUsage", err)
		}
	})

	t.Run("build twice", func(t *testing.T) {
		b := NewChainBuilder()
		b.Start(cond)
		if _, err := b.Build(); err != nil {
			t.Fatalf("first Build: %v", err)
		}
		if _, err := b.Build(); !errors.Is(err, ErrUsage) {
			t.Errorf("err = %v, want ErrUsage", err)
		}
	})

	t.Run("construction after build", func(t *testing.T) {
		b := NewChainBuilder()
		b.Start(cond)
		b.Build()
		if err := b.Start(cond); !errors.Is(err, ErrUsage) {
			t.Errorf("Start after Build: err = %v, want ErrUsage", err)
		}
		if err := b.Append(bytecode.Nop()); !errors.Is(err, ErrUsage) {
			t.Errorf("Append after Build: err = %v, want ErrUsage", err)
		}
		if err := b.FinishWithElse(); !errors.Is(err, ErrUsage) {
			t.Errorf("FinishWithElse after Build: err = %v, want ErrUsage", err)
		}
	})
}

func TestChainEncodingErrors(t *testing.T) {
	t.Run("condition register out of range", func(t *testing.T) {
		b := NewChainBuilder()
		if err := b.Start(FromRegister(-1)); !errors.Is(err, bytecode.ErrEncoding) {
			t.Errorf("err = %v, want ErrEncoding", err)
		}
	})

	t.Run("body instruction out of range", func(t *testing.T) {
		b := NewChainBuilder()
		if err := b.Start(FromRegister(0)); err != nil {
			t.Fatalf("Start: %v", err)
		}
		if err := b.Append(bytecode.Return(-1)); !errors.Is(err, bytecode.ErrEncoding) {
			t.Errorf("err = %v, want ErrEncoding", err)
		}
	})

	t.Run("computed condition out of range", func(t *testing.T) {
		b := NewChainBuilder()
		bad := FromInstructions([]bytecode.Instruction{bytecode.Move(-3, 0)}, 1)
		if err := b.Start(bad); !errors.Is(err, bytecode.ErrEncoding) {
			t.Errorf("err = %v, want ErrEncoding", err)
		}
	})
}

func TestChainBranchOrderPreserved(t *testing.T) {
	// Entries are appended strictly in source order; the lowered sequence
	// must test the conditions in that order.
	b := NewChainBuilder()
	b.Start(FromRegister(0))
	b.Append(bytecode.LoadConst(9, bytecode.Number(1)))
	b.AddBranch(FromRegister(1))
	b.Append(bytecode.LoadConst(9, bytecode.Number(2)))
	b.AddBranch(FromRegister(2))
	b.Append(bytecode.LoadConst(9, bytecode.Number(3)))

	out, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	var testedRegs []int
	for _, in := range out {
		if in.Op == bytecode.OpJumpIfFalse {
			testedRegs = append(testedRegs, in.A)
		}
	}
	if len(testedRegs) != 3 {
		t.Fatalf("found %d condition tests, want 3", len(testedRegs))
	}
	for i, r := range testedRegs {
		if r != i {
			t.Errorf("condition test %d uses r%d, want r%d", i, r, i)
		}
	}
}
