package ir

import (
	"strings"
	"testing"
)

func TestPrintIncludesFunctionAndBlockLabels(t *testing.T) {
	fn := &Function{
		Name: "main",
		Blocks: []*BasicBlock{
			{Label: "entry", Instrs: []Instr{&ConstInstr{Dest: "x", Literal: flatInt(1)}}, Succs: []int{1}},
			{Label: "exit", Instrs: []Instr{&RetInstr{}}},
		},
	}
	out := Print(&Program{Functions: []*Function{fn}})

	for _, want := range []string{"@main", ".entry:", ".exit:", "x = const 1", "ret"} {
		if !strings.Contains(out, want) {
			t.Errorf("printed output missing %q:\n%s", want, out)
		}
	}
}
