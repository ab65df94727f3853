package main

import (
	"bytes"
	"flag"
	"fmt"
	"os"

	"github.com/ionlang/ionbc/bytecode"
	"github.com/ionlang/ionbc/ionpack"
)

// runDis disassembles a .ionc function container: either a bare single
// function or a multi-function IONBC stream.
func runDis(args []string) error {
	fs := flag.NewFlagSet("dis", flag.ExitOnError)
	fs.Parse(args)
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: ionc dis <file.ionc>")
	}
	path := fs.Arg(0)

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var fns []*bytecode.Function
	if bytes.HasPrefix(data, bytecode.StreamMagic) {
		if fns, err = bytecode.NewReader(data).ReadFunctions(); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	} else {
		fn, err := bytecode.DecodeFunction(data)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		fns = []*bytecode.Function{fn}
	}

	log.Infof("disassembling %s (%d functions)", path, len(fns))
	for i, fn := range fns {
		if i > 0 {
			fmt.Println()
		}
		fmt.Print(fn.Disassemble())
	}
	return nil
}

// runInspect prints a pack's manifest, function index and class list.
func runInspect(args []string) error {
	fs := flag.NewFlagSet("inspect", flag.ExitOnError)
	fs.Parse(args)
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: ionc inspect <pack.ionpack>")
	}
	path := fs.Arg(0)

	r, err := ionpack.Open(path)
	if err != nil {
		return err
	}
	defer r.Close()

	fmt.Println("--- manifest ---")
	fmt.Print(r.Manifest().Render())

	fmt.Println("\n--- classes ---")
	for _, name := range r.ClassNames() {
		fmt.Println(name)
	}

	ix := r.Index()
	if ix == nil {
		fmt.Println("\n(no function index)")
		return nil
	}
	fmt.Println("\n--- functions ---")
	fmt.Printf("%-16s %-16s %6s %10s %13s\n", "CLASS", "FUNCTION", "ARITY", "REGISTERS", "INSTRUCTIONS")
	for _, e := range ix.Entries {
		name := e.Function
		if name == "" {
			name = "<anonymous>"
		}
		fmt.Printf("%-16s %-16s %6d %10d %13d\n", e.Class, name, e.Arity, e.Registers, e.Instructions)
	}
	return nil
}
