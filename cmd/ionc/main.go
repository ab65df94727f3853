// ionc - IonVM bytecode toolchain CLI: build, disassemble and inspect packs
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/tliron/commonlog"

	_ "github.com/tliron/commonlog/simple"
)

var log = commonlog.GetLogger("ionc")

func main() {
	verbosity := flag.Int("v", 0, "Log verbosity (0 = quiet)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: ionc [options] <command> [args]\n\n")
		fmt.Fprintf(os.Stderr, "Commands:\n")
		fmt.Fprintf(os.Stderr, "  sample   Build a demonstration .ionpack\n")
		fmt.Fprintf(os.Stderr, "  dis      Disassemble a compiled .ionc function container\n")
		fmt.Fprintf(os.Stderr, "  inspect  Print the manifest and function index of a pack\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  ionc sample -o demo.ionpack\n")
		fmt.Fprintf(os.Stderr, "  ionc dis classes/Main.ionc\n")
		fmt.Fprintf(os.Stderr, "  ionc inspect demo.ionpack\n")
	}
	flag.Parse()

	commonlog.Configure(*verbosity, nil)

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	var err error
	switch cmd := args[0]; cmd {
	case "sample":
		err = runSample(args[1:])
	case "dis":
		err = runDis(args[1:])
	case "inspect":
		err = runInspect(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", cmd)
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
