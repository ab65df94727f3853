package bytecode

import (
	"fmt"
	"strings"
)

// Disassemble returns a human-readable listing of the function. Jump
// instructions are annotated with their resolved target index.
func (fn *Function) Disassemble() string {
	var sb strings.Builder

	name := fn.Name
	if name == "" {
		name = "<anonymous>"
	}
	sb.WriteString(fmt.Sprintf("; === %s ===\n", name))
	sb.WriteString(fmt.Sprintf("; arity=%d extra_regs=%d budget=%d\n",
		fn.Arity, fn.ExtraRegs, fn.RegisterBudget()))
	sb.WriteString("\n")

	for i, in := range fn.Instructions {
		sb.WriteString(fmt.Sprintf("%04d  %s\n", i, disassembleInstruction(i, in)))
	}
	return sb.String()
}

// DisassembleInstructions returns a listing for a bare instruction
// sequence, one line per instruction.
func DisassembleInstructions(instrs []Instruction) []string {
	lines := make([]string, len(instrs))
	for i, in := range instrs {
		lines[i] = fmt.Sprintf("%04d  %s", i, disassembleInstruction(i, in))
	}
	return lines
}

func disassembleInstruction(index int, in Instruction) string {
	if in.Op.IsJump() {
		return fmt.Sprintf("%s (-> %04d)", in, index+in.Offset)
	}
	if in.Op == OpMatch {
		var sb strings.Builder
		sb.WriteString(fmt.Sprintf("MATCH r%d", in.A))
		for _, arm := range in.Arms {
			sb.WriteString(fmt.Sprintf(" [%s -> %04d]", patternString(arm.Pattern), index+arm.Offset))
		}
		return sb.String()
	}
	return in.String()
}

func patternString(p Pattern) string {
	switch p.Kind {
	case PatternValue:
		return p.Value.String()
	case PatternWildcard:
		return "_"
	case PatternTuple, PatternArray:
		open, close := "(", ")"
		if p.Kind == PatternArray {
			open, close = "[", "]"
		}
		parts := make([]string, len(p.Subs))
		for i, sub := range p.Subs {
			parts[i] = patternString(sub)
		}
		return open + strings.Join(parts, ", ") + close
	case PatternTaggedEnum:
		inner := "_"
		if p.Inner != nil {
			inner = patternString(*p.Inner)
		}
		return p.Tag + "(" + inner + ")"
	default:
		return fmt.Sprintf("pattern(0x%02X)", byte(p.Kind))
	}
}
