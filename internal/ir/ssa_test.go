package ir

import (
	"testing"

	"github.com/wizardengineer/bril2riscv/internal/flat"
)

func flatInt(n int64) flat.Literal {
	return flat.Literal{Type: flat.TypeInt, Int: n}
}

// TestFormSSARenamesDiamondDefs builds the diamond from spec.md §8 with a
// variable x defined differently on each branch and joined under a phi,
// and checks that renaming produces distinct SSA names per definition and
// a correctly wired phi at the join block.
func TestFormSSARenamesDiamondDefs(t *testing.T) {
	fn := &Function{
		Blocks: []*BasicBlock{
			{Label: "entry", Instrs: []Instr{&BrInstr{Cond: "cond", Then: "left", Else: "right"}}},
			{Label: "left", Instrs: []Instr{&ConstInstr{Dest: "x", Literal: flatInt(1)}, &JmpInstr{Label: "join"}}},
			{Label: "right", Instrs: []Instr{&ConstInstr{Dest: "x", Literal: flatInt(2)}, &JmpInstr{Label: "join"}}},
			{Label: "join", Instrs: []Instr{&PrintInstr{Values: []string{"x"}}, &RetInstr{}}},
		},
	}
	fn.Blocks[0].Succs = []int{1, 2}
	fn.Blocks[1].Preds = []int{0}
	fn.Blocks[1].Succs = []int{3}
	fn.Blocks[2].Preds = []int{0}
	fn.Blocks[2].Succs = []int{3}
	fn.Blocks[3].Preds = []int{1, 2}

	dom := ComputeDominance(fn)
	FormSSA(fn, dom)

	join := fn.Blocks[3]
	phi, ok := join.Instrs[0].(*PhiInstr)
	if !ok {
		t.Fatalf("join block should start with a phi, got %T", join.Instrs[0])
	}
	if originalName(phi.Dest) != "x" {
		t.Errorf("phi dest should version the original name x, got %s", phi.Dest)
	}
	if len(phi.Sources) != 2 || phi.Sources[0] == "" || phi.Sources[1] == "" {
		t.Fatalf("phi sources should be filled in for both preds, got %v", phi.Sources)
	}
	if phi.Sources[0] == phi.Sources[1] {
		t.Errorf("the two branches define x separately; phi sources should differ, got %v", phi.Sources)
	}

	printInstr := join.Instrs[1].(*PrintInstr)
	if printInstr.Values[0] != phi.Dest {
		t.Errorf("print should read the phi's renamed dest %s, got %s", phi.Dest, printInstr.Values[0])
	}

	leftDef := fn.Blocks[1].Instrs[0].(*ConstInstr).Dest
	rightDef := fn.Blocks[2].Instrs[0].(*ConstInstr).Dest
	if leftDef == rightDef {
		t.Errorf("the two definitions of x should get distinct SSA names, got %s and %s", leftDef, rightDef)
	}
}

func TestVersionedName(t *testing.T) {
	if versionedName("x", 0) != "x" {
		t.Errorf("version 0 should be the bare name")
	}
	if versionedName("x", 3) != "x.3" {
		t.Errorf("version 3 should be x.3, got %s", versionedName("x", 3))
	}
}

func TestOriginalName(t *testing.T) {
	cases := map[string]string{
		"x":     "x",
		"x.1":   "x",
		"x.12":  "x",
		"x.y":   "x.y",
		"x..1":  "x.",
	}
	for in, want := range cases {
		if got := originalName(in); got != want {
			t.Errorf("originalName(%q) = %q, want %q", in, got, want)
		}
	}
}
