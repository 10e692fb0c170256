// Command bril2riscv is the CLI driver: `run` interprets a program,
// `build` lowers it through the optimizing pipeline and emits RISC-V
// assembly to stdout, and `repl` starts an interactive session.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"

	"github.com/wizardengineer/bril2riscv/internal/asmsyntax"
	"github.com/wizardengineer/bril2riscv/internal/emit"
	"github.com/wizardengineer/bril2riscv/internal/errors"
	"github.com/wizardengineer/bril2riscv/internal/flat"
	"github.com/wizardengineer/bril2riscv/internal/interp"
	"github.com/wizardengineer/bril2riscv/internal/ir"
	"github.com/wizardengineer/bril2riscv/internal/machine"
	"github.com/wizardengineer/bril2riscv/internal/recordsyntax"
	"github.com/wizardengineer/bril2riscv/internal/regalloc"
	"github.com/wizardengineer/bril2riscv/internal/validate"
	"github.com/wizardengineer/bril2riscv/repl"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "run":
		runCmd(os.Args[2:])
	case "build":
		buildCmd(os.Args[2:])
	case "repl":
		repl.Start(os.Stdin, os.Stdout)
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("usage: bril2riscv run [--dyn-inst] <file> [args...]")
	fmt.Println("       bril2riscv build <file>")
	fmt.Println("       bril2riscv repl")
}

func runCmd(args []string) {
	dynInst := false
	rest := make([]string, 0, len(args))
	for _, a := range args {
		if a == "--dyn-inst" {
			dynInst = true
			continue
		}
		rest = append(rest, a)
	}
	if len(rest) < 1 {
		usage()
		os.Exit(1)
	}

	prog, err := load(rest[0])
	if err != nil {
		reportAndExit(err)
	}
	if err := validate.Check(prog); err != nil {
		reportAndExit(err)
	}

	main := prog.FuncByName("main")
	cliArgs := rest[1:]
	if err := validate.CheckCallArgs(main, cliArgs); err != nil {
		reportAndExit(err)
	}

	values := make([]interp.Value, len(cliArgs))
	for i, raw := range cliArgs {
		values[i] = parseValue(main.Args[i].Type, raw)
	}

	it := interp.New(prog, os.Stdout)
	if err := it.Run(values); err != nil {
		reportAndExit(err)
	}
	if dynInst {
		fmt.Fprintf(os.Stderr, "dynamic instructions: %d\n", it.DynInstCount())
	}
}

func buildCmd(args []string) {
	if len(args) < 1 {
		usage()
		os.Exit(1)
	}

	prog, err := load(args[0])
	if err != nil {
		reportAndExit(err)
	}
	if err := validate.Check(prog); err != nil {
		reportAndExit(err)
	}

	program, err := ir.BuildProgram(prog)
	if err != nil {
		reportAndExit(err)
	}

	for _, fn := range program.Functions {
		dom := ir.ComputeDominance(fn)
		ir.FormSSA(fn, dom)
	}

	pipeline := ir.NewPipeline()
	pipeline.Run(program)

	for _, fn := range program.Functions {
		ir.DestructSSA(fn)
	}

	machineFns, err := machine.SelectProgram(program)
	if err != nil {
		reportAndExit(err)
	}
	for _, fn := range machineFns {
		regalloc.Allocate(fn)
	}

	if err := emit.Program(os.Stdout, machineFns); err != nil {
		reportAndExit(err)
	}
}

// loadedPath and loadedSource remember the last file read by load, so
// reportAndExit can render a caret-style report for errors that carry a
// source Position.
var loadedPath, loadedSource string

// load picks the record or textual adapter by file extension.
func load(path string) (*flat.Program, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	loadedPath, loadedSource = path, string(source)

	if len(path) > 5 && path[len(path)-5:] == ".json" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return recordsyntax.Decode(f)
	}

	parsed, err := asmsyntax.ParseString(path, string(source))
	if err != nil {
		return nil, err
	}
	return asmsyntax.Lower(parsed)
}

func parseValue(t flat.Type, raw string) interp.Value {
	switch t {
	case flat.TypeBool:
		return interp.BoolValue(raw == "true")
	case flat.TypeFloat:
		var f float64
		fmt.Sscanf(raw, "%g", &f)
		return interp.FloatValue(f)
	case flat.TypeChar:
		r := []rune(raw)
		return interp.CharValue(r[0])
	default:
		var n int64
		fmt.Sscanf(raw, "%d", &n)
		return interp.IntValue(n)
	}
}

func reportAndExit(err error) {
	if ce, ok := err.(errors.CompilerError); ok {
		if ce.Position.Line > 0 && loadedSource != "" {
			fmt.Println(errors.NewErrorReporter(loadedPath, loadedSource).FormatError(ce))
		} else {
			color.Red("%s", ce.Error())
		}
	} else {
		color.Red("error: %s", err)
	}
	os.Exit(1)
}
