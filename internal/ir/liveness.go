package ir

// Liveness holds, per block index, the set of variable names live
// entering and leaving that block, per spec.md §4.7.
type Liveness struct {
	LiveIn  []map[string]bool
	LiveOut []map[string]bool
}

// ComputeLiveness runs the backward dataflow fixed point described in
// spec.md §4.7: live_out[b] is the union of live_in over b's successors;
// live_in[b] = use_b ∪ (live_out[b] \ def_b), computed by walking b's
// instructions bottom-up so a def kills liveness before the same
// instruction's uses gen it.
func ComputeLiveness(fn *Function) *Liveness {
	n := len(fn.Blocks)
	live := &Liveness{
		LiveIn:  make([]map[string]bool, n),
		LiveOut: make([]map[string]bool, n),
	}
	for i := range live.LiveIn {
		live.LiveIn[i] = map[string]bool{}
		live.LiveOut[i] = map[string]bool{}
	}

	changed := true
	for changed {
		changed = false
		for b := n - 1; b >= 0; b-- {
			block := fn.Blocks[b]

			out := map[string]bool{}
			for _, s := range block.Succs {
				for name := range live.LiveIn[s] {
					out[name] = true
				}
			}

			in := map[string]bool{}
			for name := range out {
				in[name] = true
			}
			for i := len(block.Instrs) - 1; i >= 0; i-- {
				instr := block.Instrs[i]
				for _, d := range instr.Defs() {
					delete(in, d)
				}
				for _, u := range instr.Uses() {
					in[u] = true
				}
			}

			if !setEqual(in, live.LiveIn[b]) || !setEqual(out, live.LiveOut[b]) {
				changed = true
			}
			live.LiveIn[b] = in
			live.LiveOut[b] = out
		}
	}

	return live
}

func setEqual(a, b map[string]bool) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if !b[k] {
			return false
		}
	}
	return true
}
