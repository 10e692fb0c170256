package recordsyntax

import (
	"strings"
	"testing"

	"github.com/wizardengineer/bril2riscv/internal/flat"
)

const straightLineRecord = `{
  "functions": [
    {
      "name": "main",
      "instrs": [
        {"op": "const", "dest": "a", "type": "int", "value": 1},
        {"op": "const", "dest": "b", "type": "int", "value": 2},
        {"op": "add", "dest": "c", "args": ["a", "b"]},
        {"op": "print", "args": ["c"]},
        {"op": "ret"}
      ]
    }
  ]
}`

func TestDecodeLowersStraightLineProgram(t *testing.T) {
	prog, err := Decode(strings.NewReader(straightLineRecord))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(prog.Functions) != 1 {
		t.Fatalf("expected 1 function, got %d", len(prog.Functions))
	}

	fn := prog.Functions[0]
	if len(fn.Instrs) != 5 {
		t.Fatalf("expected 5 instructions, got %d", len(fn.Instrs))
	}

	constA := fn.Instrs[0].Op
	if constA.Kind != flat.OpConst || constA.Dest != "a" || constA.Literal.Int != 1 {
		t.Errorf("unexpected first const: %+v", constA)
	}

	add := fn.Instrs[2].Op
	if add.Kind != flat.OpAdd || add.Dest != "c" || len(add.Args) != 2 {
		t.Errorf("unexpected add: %+v", add)
	}
}

func TestDecodeLowersArgsAndReturnType(t *testing.T) {
	const record = `{
  "functions": [
    {
      "name": "add",
      "args": [{"name": "x", "type": "int"}, {"name": "y", "type": "int"}],
      "type": "int",
      "instrs": [
        {"op": "add", "dest": "r", "args": ["x", "y"]},
        {"op": "ret", "args": ["r"]}
      ]
    }
  ]
}`
	prog, err := Decode(strings.NewReader(record))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	fn := prog.Functions[0]
	if len(fn.Args) != 2 || fn.Args[0].Name != "x" || fn.Args[0].Type != flat.TypeInt {
		t.Fatalf("unexpected args: %+v", fn.Args)
	}
	if fn.ReturnType == nil || *fn.ReturnType != flat.TypeInt {
		t.Fatalf("expected return type int, got %v", fn.ReturnType)
	}
}

func TestDecodeLowersLabelsAndBranches(t *testing.T) {
	const record = `{
  "functions": [
    {
      "name": "main",
      "instrs": [
        {"op": "const", "dest": "cond", "type": "bool", "value": true},
        {"op": "br", "args": ["cond"], "labels": ["then", "else"]},
        {"label": "then"},
        {"op": "jmp", "labels": ["done"]},
        {"label": "else"},
        {"label": "done"},
        {"op": "ret"}
      ]
    }
  ]
}`
	prog, err := Decode(strings.NewReader(record))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	fn := prog.Functions[0]

	var br, jmp *flat.Op
	for _, instr := range fn.Instrs {
		if instr.IsLabel() {
			continue
		}
		switch instr.Op.Kind {
		case flat.OpBr:
			br = instr.Op
		case flat.OpJmp:
			jmp = instr.Op
		}
	}
	if br == nil || br.ThenLabel != "then" || br.ElseLabel != "else" {
		t.Fatalf("unexpected br lowering: %+v", br)
	}
	if jmp == nil || jmp.Label != "done" {
		t.Fatalf("unexpected jmp lowering: %+v", jmp)
	}
}

func TestDecodeLowersCallFuncName(t *testing.T) {
	const record = `{
  "functions": [
    {
      "name": "main",
      "instrs": [
        {"op": "call", "dest": "r", "funcs": ["fact"], "args": ["n"]},
        {"op": "ret", "args": ["r"]}
      ]
    }
  ]
}`
	prog, err := Decode(strings.NewReader(record))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	call := prog.Functions[0].Instrs[0].Op
	if call.FuncName != "fact" || len(call.Args) != 1 || call.Args[0] != "n" {
		t.Errorf("unexpected call lowering: %+v", call)
	}
}

func TestDecodeRejectsBrWithoutTwoLabels(t *testing.T) {
	const record = `{
  "functions": [
    {"name": "main", "instrs": [{"op": "br", "args": ["cond"], "labels": ["only"]}]}
  ]
}`
	if _, err := Decode(strings.NewReader(record)); err == nil {
		t.Fatal("expected an error for br with only one label")
	}
}

func TestDecodeRejectsMalformedJSON(t *testing.T) {
	if _, err := Decode(strings.NewReader("{not json")); err == nil {
		t.Fatal("expected an error for malformed JSON")
	}
}

func TestDecodeRejectsUnrecognizedType(t *testing.T) {
	const record = `{
  "functions": [
    {"name": "main", "args": [{"name": "x", "type": "string"}], "instrs": []}
  ]
}`
	if _, err := Decode(strings.NewReader(record)); err == nil {
		t.Fatal("expected an error for an unrecognized argument type")
	}
}
