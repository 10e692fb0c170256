package asmsyntax

import (
	"strconv"
	"strings"

	"github.com/wizardengineer/bril2riscv/internal/errors"
	"github.com/wizardengineer/bril2riscv/internal/flat"
)

// Lower converts a parsed textual program into the flat representation
// shared with the record adapter. Labels are kept as bare names; the
// leading '.' and trailing ':' of a Label token are stripped here rather
// than in the lexer, so the same name is usable both as a definition and
// a reference.
func Lower(prog *Program) (*flat.Program, error) {
	out := &flat.Program{}
	for _, fn := range prog.Functions {
		lowered, err := lowerFunction(fn)
		if err != nil {
			return nil, err
		}
		out.Functions = append(out.Functions, lowered)
	}
	return out, nil
}

func lowerFunction(fn *Function) (*flat.Function, error) {
	out := &flat.Function{Name: fn.Name}
	for _, p := range fn.Params {
		out.Args = append(out.Args, flat.Arg{Name: p.Name, Type: typeFromToken(p.Type)})
	}
	if fn.Ret != nil {
		t := typeFromToken(*fn.Ret)
		out.ReturnType = &t
	}

	for idx, line := range fn.Lines {
		if line.Label != nil {
			out.Instrs = append(out.Instrs, flat.Instr{Label: strings.TrimPrefix(strings.TrimSuffix(*line.Label, ":"), ".")})
			continue
		}
		op, err := lowerInstr(fn.Name, idx, line.Instr)
		if err != nil {
			return nil, err
		}
		out.Instrs = append(out.Instrs, flat.Instr{Op: op})
	}
	return out, nil
}

func typeFromToken(tok string) flat.Type {
	switch tok {
	case "bool":
		return flat.TypeBool
	case "float":
		return flat.TypeFloat
	case "char":
		return flat.TypeChar
	default:
		return flat.TypeInt
	}
}

// binaryOps lists the ops that take exactly two plain value-reference
// operands (vs. labels/literals consumed specially), mirroring
// spec.md §6's op table.
var binaryOps = map[string]bool{
	"add": true, "sub": true, "mul": true, "div": true,
	"eq": true, "lt": true, "gt": true, "le": true, "ge": true,
	"and": true, "or": true,
	"fadd": true, "fsub": true, "fmul": true, "fdiv": true,
	"feq": true, "flt": true, "fgt": true, "fle": true, "fge": true,
	"ceq": true, "clt": true, "cgt": true, "cle": true, "cge": true,
	"ptradd": true, "store": true,
}

var unaryOps = map[string]bool{
	"not": true, "id": true, "load": true, "free": true, "alloc": true,
	"char2int": true, "int2char": true, "float2bits": true, "bits2float": true,
	"get": true,
}

func lowerInstr(fnName string, idx int, instr *Instr) (*flat.Op, error) {
	op := &flat.Op{Kind: flat.OpKind(instr.Op), FuncPos: fnName, InstrPos: idx}
	if instr.Dest != nil {
		op.Dest = *instr.Dest
	}

	pos := errors.Position{
		Function:   fnName,
		InstrIndex: idx,
		Filename:   instr.Pos.Filename,
		Line:       instr.Pos.Line,
		Column:     instr.Pos.Column,
	}

	switch instr.Op {
	case "const":
		if len(instr.Operands) != 1 {
			return nil, errors.ParseError("const takes exactly one literal operand", pos)
		}
		lit, err := lowerLiteral(instr.Operands[0], pos)
		if err != nil {
			return nil, err
		}
		op.Literal = lit

	case "br":
		if len(instr.Operands) != 3 {
			return nil, errors.ParseError("br takes a condition and two labels", pos)
		}
		op.Args = []string{operandName(instr.Operands[0])}
		op.ThenLabel = operandName(instr.Operands[1])
		op.ElseLabel = operandName(instr.Operands[2])

	case "jmp":
		if len(instr.Operands) != 1 {
			return nil, errors.ParseError("jmp takes exactly one label", pos)
		}
		op.Label = operandName(instr.Operands[0])

	case "call":
		if len(instr.Operands) < 1 {
			return nil, errors.ParseError("call requires a function name", pos)
		}
		op.FuncName = operandName(instr.Operands[0])
		for _, o := range instr.Operands[1:] {
			op.Args = append(op.Args, operandName(o))
		}

	case "ret", "print":
		for _, o := range instr.Operands {
			op.Args = append(op.Args, operandName(o))
		}

	case "nop", "speculate", "commit", "guard", "undef":
		for _, o := range instr.Operands {
			op.Args = append(op.Args, operandName(o))
		}

	case "set":
		if len(instr.Operands) != 2 {
			return nil, errors.ParseError("set takes a shadow slot and a value", pos)
		}
		op.Args = []string{operandName(instr.Operands[0]), operandName(instr.Operands[1])}

	default:
		if binaryOps[instr.Op] {
			if len(instr.Operands) != 2 {
				return nil, errors.ParseError(instr.Op+" takes exactly two operands", pos)
			}
			op.Args = []string{operandName(instr.Operands[0]), operandName(instr.Operands[1])}
		} else if unaryOps[instr.Op] {
			if len(instr.Operands) != 1 {
				return nil, errors.ParseError(instr.Op+" takes exactly one operand", pos)
			}
			op.Args = []string{operandName(instr.Operands[0])}
		} else {
			return nil, errors.ParseError("unrecognized op "+instr.Op, pos)
		}
	}
	return op, nil
}

func operandName(o *Operand) string {
	switch {
	case o.Ident != nil:
		return *o.Ident
	case o.Int != nil:
		return *o.Int
	case o.Float != nil:
		return *o.Float
	case o.Char != nil:
		return *o.Char
	default:
		return ""
	}
}

func lowerLiteral(o *Operand, pos errors.Position) (flat.Literal, error) {
	switch {
	case o.Int != nil:
		n, err := strconv.ParseInt(*o.Int, 10, 64)
		if err != nil {
			return flat.Literal{}, errors.ParseError("invalid integer literal "+*o.Int, pos)
		}
		return flat.Literal{Type: flat.TypeInt, Int: n}, nil
	case o.Float != nil:
		f, err := strconv.ParseFloat(*o.Float, 64)
		if err != nil {
			return flat.Literal{}, errors.ParseError("invalid float literal "+*o.Float, pos)
		}
		return flat.Literal{Type: flat.TypeFloat, Float: f}, nil
	case o.Char != nil:
		r := []rune(strings.Trim(*o.Char, "'"))
		if len(r) != 1 {
			return flat.Literal{}, errors.ParseError("invalid char literal "+*o.Char, pos)
		}
		return flat.Literal{Type: flat.TypeChar, Char: r[0]}, nil
	case o.Ident != nil && (*o.Ident == "true" || *o.Ident == "false"):
		return flat.Literal{Type: flat.TypeBool, Bool: *o.Ident == "true"}, nil
	default:
		return flat.Literal{}, errors.ParseError("unrecognized literal", pos)
	}
}
