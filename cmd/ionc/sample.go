package main

import (
	"flag"
	"fmt"

	"github.com/ionlang/ionbc/bytecode"
	"github.com/ionlang/ionbc/controlflow"
	"github.com/ionlang/ionbc/ionpack"
	"github.com/ionlang/ionbc/project"
)

// runSample builds a demonstration pack whose functions are lowered with
// the control-flow builders. When an ionproject.toml is found, its pack
// settings provide the defaults.
func runSample(args []string) error {
	fs := flag.NewFlagSet("sample", flag.ExitOnError)
	out := fs.String("o", "", "Output pack path (default from ionproject.toml, or sample.ionpack)")
	fs.Parse(args)

	name, version := "sample", "0.1.0"
	if cfg, err := project.FindAndLoad("."); err != nil {
		return err
	} else if cfg != nil {
		log.Infof("using project config in %s", cfg.Dir)
		name, version = cfg.Project.Name, cfg.Project.Version
		if *out == "" {
			*out = cfg.OutputPath()
		}
	}
	if *out == "" {
		*out = "sample.ionpack"
	}

	classify, err := buildClassify()
	if err != nil {
		return fmt.Errorf("build classify: %w", err)
	}
	sumTo, err := buildSumTo()
	if err != nil {
		return fmt.Errorf("build sum_to: %w", err)
	}

	b := ionpack.NewBuilder(name, version)
	b.MainClass("Demo").EntryPoint("classify").
		Description("control-flow lowering demonstration")
	if err := b.AddFunctions("Demo", []*bytecode.Function{classify, sumTo}); err != nil {
		return err
	}
	b.AddSource("demo.ion", demoSource)

	if err := b.WriteFile(*out); err != nil {
		return err
	}
	log.Infof("wrote %s (%d functions)", *out, 2)
	fmt.Printf("wrote %s\n", *out)
	return nil
}

const demoSource = `fn classify(n) {
    if n < 0 { :negative }
    else if n == 0 { :zero }
    else { :positive }
}

fn sum_to(limit) {
    let i = 0
    let sum = 0
    while i < limit {
        i = i + 1
        sum = sum + i
        if sum > 100 { break }
    } then {
        :completed
    } else {
        :capped
    }
    sum
}
`

// buildClassify lowers classify(n): an if / else-if / else chain over
// computed conditions. Each condition is evaluated only when every earlier
// condition was false.
func buildClassify() (*bytecode.Function, error) {
	cb := controlflow.NewChainBuilder()

	negative := controlflow.FromInstructions([]bytecode.Instruction{
		bytecode.LoadConst(1, bytecode.Number(0)),
		bytecode.LessThan(2, 0, 1),
	}, 2)
	if err := cb.Start(negative); err != nil {
		return nil, err
	}
	if err := cb.Append(bytecode.LoadConst(3, bytecode.Atom("negative"))); err != nil {
		return nil, err
	}

	zero := controlflow.FromInstructions([]bytecode.Instruction{
		bytecode.LoadConst(4, bytecode.Number(0)),
		bytecode.Equal(5, 0, 4),
	}, 5)
	if err := cb.AddBranch(zero); err != nil {
		return nil, err
	}
	if err := cb.Append(bytecode.LoadConst(3, bytecode.Atom("zero"))); err != nil {
		return nil, err
	}

	if err := cb.FinishWithElse(); err != nil {
		return nil, err
	}
	if err := cb.Append(bytecode.LoadConst(3, bytecode.Atom("positive"))); err != nil {
		return nil, err
	}

	instrs, err := cb.Build()
	if err != nil {
		return nil, err
	}
	instrs = append(instrs, bytecode.Return(3))

	fn := bytecode.NewFunction("classify", 1, 5, instrs)
	if err := fn.CheckRegisterBudget(); err != nil {
		return nil, err
	}
	return fn, nil
}

// buildSumTo lowers sum_to(limit): a while loop with a computed condition,
// a break once the running sum passes 100, and then/else arms recording how
// the loop exited.
func buildSumTo() (*bytecode.Function, error) {
	lb := controlflow.NewLoopBuilder()

	cond := controlflow.FromInstructions([]bytecode.Instruction{
		bytecode.LessThan(3, 1, 0),
	}, 3)
	if err := lb.StartLoop(cond); err != nil {
		return nil, err
	}

	body := []bytecode.Instruction{
		bytecode.LoadConst(4, bytecode.Number(1)),
		bytecode.Add(1, 1, 4),
		bytecode.Add(2, 2, 1),
		bytecode.LoadConst(5, bytecode.Number(100)),
		bytecode.GreaterThan(6, 2, 5),
		bytecode.JumpIfFalse(6, 2),
	}
	for _, in := range body {
		if err := lb.Append(in); err != nil {
			return nil, err
		}
	}
	if err := lb.AddBreak(); err != nil {
		return nil, err
	}

	if err := lb.StartThen(); err != nil {
		return nil, err
	}
	if err := lb.Append(bytecode.LoadConst(7, bytecode.Atom("completed"))); err != nil {
		return nil, err
	}
	if err := lb.StartElse(); err != nil {
		return nil, err
	}
	if err := lb.Append(bytecode.LoadConst(7, bytecode.Atom("capped"))); err != nil {
		return nil, err
	}

	loop, err := lb.Build()
	if err != nil {
		return nil, err
	}

	instrs := []bytecode.Instruction{
		bytecode.LoadConst(1, bytecode.Number(0)), // i
		bytecode.LoadConst(2, bytecode.Number(0)), // sum
	}
	instrs = append(instrs, loop...)
	instrs = append(instrs, bytecode.Return(2))

	fn := bytecode.NewFunction("sum_to", 1, 7, instrs)
	if err := fn.CheckRegisterBudget(); err != nil {
		return nil, err
	}
	return fn, nil
}
