package asmsyntax

import (
	"testing"

	"github.com/wizardengineer/bril2riscv/internal/errors"
	"github.com/wizardengineer/bril2riscv/internal/flat"
)

const straightLineSource = `
@main() {
	a = const 1;
	b = const 2;
	c = add a b;
	print c;
	ret;
}
`

func TestParseStringParsesAFunctionWithArithmeticAndPrint(t *testing.T) {
	prog, err := ParseString("test.asm", straightLineSource)
	if err != nil {
		t.Fatalf("ParseString: %v", err)
	}
	if len(prog.Functions) != 1 {
		t.Fatalf("expected 1 function, got %d", len(prog.Functions))
	}
	fn := prog.Functions[0]
	if fn.Name != "main" {
		t.Errorf("expected function name %q, got %q", "main", fn.Name)
	}
	if len(fn.Lines) != 5 {
		t.Fatalf("expected 5 lines, got %d", len(fn.Lines))
	}
}

func TestParseStringParsesParamsAndReturnType(t *testing.T) {
	const source = `
@add(x: int, y: int): int {
	r = add x y;
	ret r;
}
`
	prog, err := ParseString("test.asm", source)
	if err != nil {
		t.Fatalf("ParseString: %v", err)
	}
	fn := prog.Functions[0]
	if len(fn.Params) != 2 {
		t.Fatalf("expected 2 params, got %d", len(fn.Params))
	}
	if fn.Params[0].Name != "x" || fn.Params[0].Type != "int" {
		t.Errorf("unexpected first param: %+v", fn.Params[0])
	}
	if fn.Ret == nil || *fn.Ret != "int" {
		t.Errorf("expected return type int, got %v", fn.Ret)
	}
}

func TestParseStringParsesLabelsAndControlFlow(t *testing.T) {
	const source = `
@main() {
	cond = const true;
	br cond then else;
.else:
	v = const 0;
	jmp done;
.then:
	v = const 1;
.done:
	print v;
	ret;
}
`
	prog, err := ParseString("test.asm", source)
	if err != nil {
		t.Fatalf("ParseString: %v", err)
	}
	fn := prog.Functions[0]

	var labels []string
	for _, line := range fn.Lines {
		if line.Label != nil {
			labels = append(labels, *line.Label)
		}
	}
	want := []string{".else:", ".then:", ".done:"}
	if len(labels) != len(want) {
		t.Fatalf("expected labels %v, got %v", want, labels)
	}
	for i := range want {
		if labels[i] != want[i] {
			t.Errorf("label %d: expected %q, got %q", i, want[i], labels[i])
		}
	}
}

func TestParseStringRejectsMalformedSource(t *testing.T) {
	if _, err := ParseString("test.asm", "@main( { ret; }"); err == nil {
		t.Fatal("expected a parse error for malformed source")
	}
}

func TestLowerProducesFlatProgramMatchingSource(t *testing.T) {
	prog, err := ParseString("test.asm", straightLineSource)
	if err != nil {
		t.Fatalf("ParseString: %v", err)
	}
	flatProg, err := Lower(prog)
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}
	if len(flatProg.Functions) != 1 {
		t.Fatalf("expected 1 lowered function, got %d", len(flatProg.Functions))
	}

	fn := flatProg.Functions[0]
	var sawAdd, sawPrint, sawRet bool
	for _, instr := range fn.Instrs {
		if instr.IsLabel() {
			continue
		}
		switch instr.Op.Kind {
		case flat.OpAdd:
			if instr.Op.Dest != "c" || len(instr.Op.Args) != 2 {
				t.Errorf("unexpected add lowering: %+v", instr.Op)
			}
			sawAdd = true
		case flat.OpPrint:
			sawPrint = true
		case flat.OpRet:
			sawRet = true
		}
	}
	if !sawAdd || !sawPrint || !sawRet {
		t.Errorf("missing lowered instruction kinds: add=%v print=%v ret=%v", sawAdd, sawPrint, sawRet)
	}
}

func TestLowerRejectsWrongArityForBinaryOp(t *testing.T) {
	one := "1"
	_, err := lowerInstr("main", 0, &Instr{Op: "add", Operands: []*Operand{{Int: &one}}})
	if err == nil {
		t.Fatal("expected an arity error for add with one operand")
	}
}

func TestLowerRejectsWrongArityForBr(t *testing.T) {
	cond := "cond"
	_, err := lowerInstr("main", 0, &Instr{Op: "br", Operands: []*Operand{{Ident: &cond}}})
	if err == nil {
		t.Fatal("expected an arity error for br with only one operand")
	}
}

func TestLowerResolvesCallArgsAfterFunctionName(t *testing.T) {
	callee := "fact"
	n := "n"
	op, err := lowerInstr("main", 0, &Instr{Op: "call", Operands: []*Operand{{Ident: &callee}, {Ident: &n}}})
	if err != nil {
		t.Fatalf("lowerInstr: %v", err)
	}
	if op.FuncName != "fact" {
		t.Errorf("expected callee %q, got %q", "fact", op.FuncName)
	}
	if len(op.Args) != 1 || op.Args[0] != "n" {
		t.Errorf("expected call args [n], got %v", op.Args)
	}
}

func TestLowerLiteralParsesEachScalarKind(t *testing.T) {
	pos := errors.Position{Function: "main"}

	intLit := "42"
	lit, err := lowerLiteral(&Operand{Int: &intLit}, pos)
	if err != nil || lit.Type != flat.TypeInt || lit.Int != 42 {
		t.Errorf("unexpected int literal: %+v, err=%v", lit, err)
	}

	floatLit := "1.5"
	lit, err = lowerLiteral(&Operand{Float: &floatLit}, pos)
	if err != nil || lit.Type != flat.TypeFloat || lit.Float != 1.5 {
		t.Errorf("unexpected float literal: %+v, err=%v", lit, err)
	}

	charLit := "'a'"
	lit, err = lowerLiteral(&Operand{Char: &charLit}, pos)
	if err != nil || lit.Type != flat.TypeChar || lit.Char != 'a' {
		t.Errorf("unexpected char literal: %+v, err=%v", lit, err)
	}

	trueLit := "true"
	lit, err = lowerLiteral(&Operand{Ident: &trueLit}, pos)
	if err != nil || lit.Type != flat.TypeBool || !lit.Bool {
		t.Errorf("unexpected bool literal: %+v, err=%v", lit, err)
	}
}
