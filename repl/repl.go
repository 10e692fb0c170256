// Package repl is an interactive read-eval-print loop over the textual
// assembly syntax and the interpreter: it reads a program terminated by a
// blank line, interprets it, and prints its output, a dynamic-instruction
// profiling line, and any runtime error.
package repl

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/wizardengineer/bril2riscv/internal/asmsyntax"
	"github.com/wizardengineer/bril2riscv/internal/interp"
	"github.com/wizardengineer/bril2riscv/internal/validate"
)

const PROMPT = ">> "

// Start runs the loop, reading from in and writing prompts/output to out.
func Start(in io.Reader, out io.Writer) {
	scanner := bufio.NewScanner(in)

	for {
		fmt.Fprint(out, PROMPT)
		lines, ok := readUntilBlank(scanner)
		if !ok {
			return
		}
		if strings.TrimSpace(lines) == "" {
			continue
		}

		if err := evalOne(lines, out); err != nil {
			fmt.Fprintf(out, "error: %s\n", err)
		}
	}
}

// readUntilBlank accumulates lines until a blank line or EOF. It returns
// ok=false only when nothing at all was read before EOF, signaling the
// loop should stop.
func readUntilBlank(scanner *bufio.Scanner) (string, bool) {
	var b strings.Builder
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			return b.String(), true
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	if b.Len() > 0 {
		return b.String(), true
	}
	return "", false
}

func evalOne(source string, out io.Writer) error {
	parsed, err := asmsyntax.ParseString("<repl>", source)
	if err != nil {
		return err
	}
	prog, err := asmsyntax.Lower(parsed)
	if err != nil {
		return err
	}
	if err := validate.Check(prog); err != nil {
		return err
	}

	it := interp.New(prog, out)
	if err := it.Run(nil); err != nil {
		return err
	}
	fmt.Fprintf(out, "(%d dynamic instructions)\n", it.DynInstCount())
	return nil
}
