package ir

import (
	"testing"

	"github.com/wizardengineer/bril2riscv/internal/flat"
)

func TestInstrDefsUses(t *testing.T) {
	cases := []struct {
		name  string
		instr Instr
		defs  []string
		uses  []string
		term  bool
		sideFx bool
	}{
		{"const", &ConstInstr{Dest: "x", Literal: flatInt(1)}, []string{"x"}, nil, false, false},
		{"binary", &BinaryInstr{Op: flat.OpAdd, Dest: "c", Lhs: "a", Rhs: "b"}, []string{"c"}, []string{"a", "b"}, false, false},
		{"not", &NotInstr{Dest: "y", Src: "x"}, []string{"y"}, []string{"x"}, false, false},
		{"id", &AssignInstr{Dest: "y", Src: "x"}, []string{"y"}, []string{"x"}, false, false},
		{"br", &BrInstr{Cond: "c", Then: "t", Else: "e"}, nil, []string{"c"}, true, true},
		{"jmp", &JmpInstr{Label: "l"}, nil, nil, true, true},
		{"ret", &RetInstr{Args: []string{"v"}}, nil, []string{"v"}, true, true},
		{"print", &PrintInstr{Values: []string{"v"}}, nil, []string{"v"}, false, true},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := c.instr.Defs(); !equalStrings(got, c.defs) {
				t.Errorf("Defs() = %v, want %v", got, c.defs)
			}
			if got := c.instr.Uses(); !equalStrings(got, c.uses) {
				t.Errorf("Uses() = %v, want %v", got, c.uses)
			}
			if c.instr.IsTerminator() != c.term {
				t.Errorf("IsTerminator() = %v, want %v", c.instr.IsTerminator(), c.term)
			}
			if c.instr.HasSideEffect() != c.sideFx {
				t.Errorf("HasSideEffect() = %v, want %v", c.instr.HasSideEffect(), c.sideFx)
			}
		})
	}
}

func TestCallInstrDefsNilWhenNoDest(t *testing.T) {
	call := &CallInstr{Func: "f", Args: []string{"a"}}
	if call.Defs() != nil {
		t.Errorf("a call with no dest should have no defs, got %v", call.Defs())
	}
	if !call.HasSideEffect() {
		t.Error("a call is always side-effecting, regardless of dest")
	}
}

func TestPhiInstrUsesSkipsEmptySources(t *testing.T) {
	phi := &PhiInstr{Dest: "x.2", Sources: []string{"x.1", "", "x.0"}}
	uses := phi.Uses()
	if !equalStrings(uses, []string{"x.1", "x.0"}) {
		t.Errorf("Uses() should skip unfilled predecessor slots, got %v", uses)
	}
}

func TestBlockByLabel(t *testing.T) {
	fn := &Function{Blocks: []*BasicBlock{{Label: "entry"}, {Label: "loop"}}}
	if fn.BlockByLabel("loop") != 1 {
		t.Errorf("BlockByLabel(loop) = %d, want 1", fn.BlockByLabel("loop"))
	}
	if fn.BlockByLabel("missing") != -1 {
		t.Errorf("BlockByLabel(missing) should be -1")
	}
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
