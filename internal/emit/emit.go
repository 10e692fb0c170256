// Package emit renders a slice of allocated machine.Function values as
// textual RISC-V assembly, per spec.md §4.10.
package emit

import (
	"fmt"
	"io"
	"strings"

	"github.com/wizardengineer/bril2riscv/internal/machine"
)

// Program writes every function in fns to w as one assembly listing:
// a single .text section, then per function a .globl directive, its
// entry label, spill-slot prologue, each block under a dotted local
// label, and a matching epilogue before any Ret.
func Program(w io.Writer, fns []*machine.Function) error {
	var b strings.Builder
	b.WriteString(".section .text\n")
	b.WriteString(".p2align 2\n")

	for _, fn := range fns {
		writeFunction(&b, fn)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func writeFunction(b *strings.Builder, fn *machine.Function) {
	fmt.Fprintf(b, ".globl %s\n", fn.Name)
	fmt.Fprintf(b, "%s:\n", fn.Name)

	frameBytes := fn.SpillSlots * 8
	if frameBytes > 0 {
		fmt.Fprintf(b, "  addi sp, sp, -%d\n", frameBytes)
	}

	for _, block := range fn.Blocks {
		fmt.Fprintf(b, ".%s.%s:\n", fn.Name, block.Name)
		for _, instr := range block.Instrs {
			if _, ok := instr.(*machine.RetInstr); ok {
				if frameBytes > 0 {
					fmt.Fprintf(b, "  addi sp, sp, %d\n", frameBytes)
				}
			}
			fmt.Fprintf(b, "  %s\n", mnemonic(fn, instr))
		}
	}
	b.WriteString("\n")
}

// mnemonic renders one instruction, resolving intra-function jump/branch
// targets to the function-qualified dotted block labels emitted above.
func mnemonic(fn *machine.Function, instr machine.Instr) string {
	switch v := instr.(type) {
	case *machine.JmpInstr:
		return fmt.Sprintf("j .%s.%s", fn.Name, v.Label)
	case *machine.BeqzInstr:
		return fmt.Sprintf("beqz %s, .%s.%s", v.Cond, fn.Name, v.Label)
	case *machine.CallInstr:
		return instr.String()
	default:
		return instr.String()
	}
}
