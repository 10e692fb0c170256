package interp

import "github.com/wizardengineer/bril2riscv/internal/flat"

// function is a flat.Function with variable names pre-"numified" to
// small integer ids and labels resolved to instruction indices, per
// spec.md §4.11 ("the interpreter operates on pre-numified blocks with
// successor indices precomputed for branches").
type function struct {
	name       string
	args       []flat.Arg
	returnType *flat.Type
	instrs     []*flat.Op // label instructions are dropped; labelIndex
	           // maps to the Op-stream index that follows them
	varID      map[string]int
	numVars    int
	labelIndex map[string]int
}

func (f *function) id(name string) int {
	id, ok := f.varID[name]
	if !ok {
		id = f.numVars
		f.numVars++
		f.varID[name] = id
	}
	return id
}

// program is a compiled flat.Program, ready to run.
type program struct {
	functions map[string]*function
}

// compile numifies every function in prog, assigning ids to arguments
// first (so callee argument positions line up with the caller's
// evaluated argument order) and then to every other destination in
// first-appearance order.
func compile(prog *flat.Program) *program {
	out := &program{functions: make(map[string]*function)}
	for _, fn := range prog.Functions {
		out.functions[fn.Name] = compileFunction(fn)
	}
	return out
}

func compileFunction(fn *flat.Function) *function {
	cf := &function{
		name:       fn.Name,
		args:       fn.Args,
		returnType: fn.ReturnType,
		varID:      make(map[string]int),
		labelIndex: make(map[string]int),
	}
	for _, a := range fn.Args {
		cf.id(a.Name)
	}

	for _, instr := range fn.Instrs {
		if instr.IsLabel() {
			cf.labelIndex[instr.Label] = len(cf.instrs)
			continue
		}
		op := instr.Op
		if op.Dest != "" {
			cf.id(op.Dest)
		}
		cf.instrs = append(cf.instrs, op)
	}
	return cf
}
