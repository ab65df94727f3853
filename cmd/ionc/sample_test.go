package main

import (
	"testing"

	"github.com/ionlang/ionbc/bytecode"
)

func checkSampleFunction(t *testing.T, fn *bytecode.Function) {
	t.Helper()
	if err := fn.CheckRegisterBudget(); err != nil {
		t.Errorf("%s: %v", fn.Name, err)
	}
	for i, in := range fn.Instructions {
		if !in.Op.IsKnown() {
			t.Errorf("%s: unknown opcode 0x%02X at %d", fn.Name, byte(in.Op), i)
		}
		if in.Op.IsJump() {
			if target := i + in.Offset; target < 0 || target > len(fn.Instructions) {
				t.Errorf("%s: jump at %d targets %d, outside [0, %d]",
					fn.Name, i, target, len(fn.Instructions))
			}
		}
	}
	data, err := fn.Serialize()
	if err != nil {
		t.Fatalf("%s: Serialize: %v", fn.Name, err)
	}
	got, err := bytecode.DecodeFunction(data)
	if err != nil {
		t.Fatalf("%s: DecodeFunction: %v", fn.Name, err)
	}
	if len(got.Instructions) != len(fn.Instructions) {
		t.Errorf("%s: round trip changed instruction count %d -> %d",
			fn.Name, len(fn.Instructions), len(got.Instructions))
	}
}

func TestBuildClassify(t *testing.T) {
	fn, err := buildClassify()
	if err != nil {
		t.Fatalf("buildClassify: %v", err)
	}
	if fn.Arity != 1 {
		t.Errorf("Arity = %d, want 1", fn.Arity)
	}
	checkSampleFunction(t, fn)

	// Chain with two branches plus else: two conditional jumps, two exit
	// jumps, and a trailing return.
	var condJumps int
	for _, in := range fn.Instructions {
		if in.Op == bytecode.OpJumpIfFalse {
			condJumps++
		}
	}
	if condJumps != 2 {
		t.Errorf("found %d conditional jumps, want 2", condJumps)
	}
	if last := fn.Instructions[len(fn.Instructions)-1]; last.Op != bytecode.OpReturn {
		t.Errorf("last instruction = %s, want RETURN", last)
	}
}

func TestBuildSumTo(t *testing.T) {
	fn, err := buildSumTo()
	if err != nil {
		t.Fatalf("buildSumTo: %v", err)
	}
	checkSampleFunction(t, fn)

	// The loop's back-edge must target the condition evaluation, which
	// starts after the two init instructions.
	var hasBackEdge bool
	for i, in := range fn.Instructions {
		if in.Op == bytecode.OpJump && i+in.Offset == 2 {
			hasBackEdge = true
		}
	}
	if !hasBackEdge {
		t.Error("no back-edge targeting the loop head")
	}
}
