package ir

import "testing"

// TestComputeLivenessSanity checks the spec.md §8 sanity property that
// live_in of a block is a subset of live_out of every predecessor, over
// a function with a loop back-edge so the fixed point needs more than
// one backward sweep to converge.
func TestComputeLivenessSanity(t *testing.T) {
	// entry: i = const 0
	// loop:  cond = lt i, n; br cond body, exit
	// body:  i = add i, one; jmp loop
	// exit:  print i; ret
	fn := &Function{
		Blocks: []*BasicBlock{
			{Label: "entry", Instrs: []Instr{&ConstInstr{Dest: "i", Literal: flatInt(0)}}},
			{Label: "loop", Instrs: []Instr{
				&BinaryInstr{Op: "lt", Dest: "cond", Lhs: "i", Rhs: "n"},
				&BrInstr{Cond: "cond", Then: "body", Else: "exit"},
			}},
			{Label: "body", Instrs: []Instr{
				&BinaryInstr{Op: "add", Dest: "i", Lhs: "i", Rhs: "one"},
				&JmpInstr{Label: "loop"},
			}},
			{Label: "exit", Instrs: []Instr{&PrintInstr{Values: []string{"i"}}, &RetInstr{}}},
		},
	}
	fn.Blocks[0].Succs = []int{1}
	fn.Blocks[1].Preds = []int{0, 2}
	fn.Blocks[1].Succs = []int{2, 3}
	fn.Blocks[2].Preds = []int{1}
	fn.Blocks[2].Succs = []int{1}
	fn.Blocks[3].Preds = []int{1}

	live := ComputeLiveness(fn)

	for b, block := range fn.Blocks {
		for _, pred := range block.Preds {
			for name := range live.LiveIn[b] {
				if !live.LiveOut[pred][name] {
					t.Errorf("live_in[%d] has %q, which is missing from live_out[%d] (a predecessor)", b, name, pred)
				}
			}
		}
	}

	if !live.LiveIn[1]["n"] {
		t.Errorf("n should be live entering the loop header, live_in[loop] = %v", live.LiveIn[1])
	}
	if !live.LiveIn[0]["n"] {
		t.Errorf("n is never defined in this function (an implicit argument), so it should stay live back to entry; live_in[entry] = %v", live.LiveIn[0])
	}
}
