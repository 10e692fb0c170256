// Package recordsyntax decodes the records-oriented wire format described
// in spec.md §6 (function records with name/args/type/instrs) into the
// shared flat.Program representation, for .json inputs and programmatic
// embedding. It is the JSON twin of internal/asmsyntax's textual grammar;
// both adapters are thin and defer validation to internal/validate.
package recordsyntax

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/wizardengineer/bril2riscv/internal/errors"
	"github.com/wizardengineer/bril2riscv/internal/flat"
)

// programRecord mirrors spec.md §6's program record shape one-to-one;
// encoding/json handles this directly, so no third-party decoder earns
// its keep here (see DESIGN.md).
type programRecord struct {
	Functions []functionRecord `json:"functions"`
}

type functionRecord struct {
	Name   string         `json:"name"`
	Args   []argRecord    `json:"args,omitempty"`
	Type   *string        `json:"type,omitempty"`
	Instrs []instrRecord  `json:"instrs"`
}

type argRecord struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// instrRecord is either a bare label record {"label": "..."} or an op
// record discriminated by "op".
type instrRecord struct {
	Label string `json:"label,omitempty"`

	Op      string          `json:"op,omitempty"`
	Dest    string          `json:"dest,omitempty"`
	Type    string          `json:"type,omitempty"`
	Args    []string        `json:"args,omitempty"`
	Funcs   []string        `json:"funcs,omitempty"`
	Labels  []string        `json:"labels,omitempty"`
	Value   json.RawMessage `json:"value,omitempty"`
}

// Decode reads a single JSON program record from r.
func Decode(r io.Reader) (*flat.Program, error) {
	var rec programRecord
	dec := json.NewDecoder(r)
	if err := dec.Decode(&rec); err != nil {
		return nil, errors.ParseError(fmt.Sprintf("malformed program record: %s", err), errors.Position{})
	}
	return lower(&rec)
}

func lower(rec *programRecord) (*flat.Program, error) {
	out := &flat.Program{}
	for _, fn := range rec.Functions {
		lowered, err := lowerFunction(&fn)
		if err != nil {
			return nil, err
		}
		out.Functions = append(out.Functions, lowered)
	}
	return out, nil
}

func lowerFunction(fn *functionRecord) (*flat.Function, error) {
	out := &flat.Function{Name: fn.Name}
	for _, a := range fn.Args {
		t, err := parseType(a.Type, errors.Position{Function: fn.Name})
		if err != nil {
			return nil, err
		}
		out.Args = append(out.Args, flat.Arg{Name: a.Name, Type: t})
	}
	if fn.Type != nil {
		t, err := parseType(*fn.Type, errors.Position{Function: fn.Name})
		if err != nil {
			return nil, err
		}
		out.ReturnType = &t
	}

	for idx, instr := range fn.Instrs {
		pos := errors.Position{Function: fn.Name, InstrIndex: idx}
		if instr.Label != "" {
			out.Instrs = append(out.Instrs, flat.Instr{Label: instr.Label})
			continue
		}
		op, err := lowerOp(&instr, idx, fn.Name, pos)
		if err != nil {
			return nil, err
		}
		out.Instrs = append(out.Instrs, flat.Instr{Op: op})
	}
	return out, nil
}

func parseType(s string, pos errors.Position) (flat.Type, error) {
	switch s {
	case "int":
		return flat.TypeInt, nil
	case "bool":
		return flat.TypeBool, nil
	case "float":
		return flat.TypeFloat, nil
	case "char":
		return flat.TypeChar, nil
	default:
		return 0, errors.ParseError("unrecognized type "+s, pos)
	}
}

func lowerOp(rec *instrRecord, idx int, fnName string, pos errors.Position) (*flat.Op, error) {
	op := &flat.Op{
		Kind:     flat.OpKind(rec.Op),
		Dest:     rec.Dest,
		Args:     rec.Args,
		FuncPos:  fnName,
		InstrPos: idx,
	}

	switch op.Kind {
	case flat.OpConst:
		if len(rec.Labels) == 0 && rec.Type != "" {
			lit, err := decodeLiteral(rec.Type, rec.Value, pos)
			if err != nil {
				return nil, err
			}
			op.Literal = lit
		}
	case flat.OpBr:
		if len(rec.Labels) != 2 {
			return nil, errors.ParseError("br requires exactly two labels", pos)
		}
		op.ThenLabel, op.ElseLabel = rec.Labels[0], rec.Labels[1]
	case flat.OpJmp:
		if len(rec.Labels) != 1 {
			return nil, errors.ParseError("jmp requires exactly one label", pos)
		}
		op.Label = rec.Labels[0]
	case flat.OpCall:
		if len(rec.Funcs) != 1 {
			return nil, errors.ParseError("call requires exactly one function name", pos)
		}
		op.FuncName = rec.Funcs[0]
	}
	return op, nil
}

func decodeLiteral(typ string, raw json.RawMessage, pos errors.Position) (flat.Literal, error) {
	switch typ {
	case "int":
		var n int64
		if err := json.Unmarshal(raw, &n); err != nil {
			return flat.Literal{}, errors.ParseError("malformed int literal", pos)
		}
		return flat.Literal{Type: flat.TypeInt, Int: n}, nil
	case "bool":
		var b bool
		if err := json.Unmarshal(raw, &b); err != nil {
			return flat.Literal{}, errors.ParseError("malformed bool literal", pos)
		}
		return flat.Literal{Type: flat.TypeBool, Bool: b}, nil
	case "float":
		var f float64
		if err := json.Unmarshal(raw, &f); err != nil {
			return flat.Literal{}, errors.ParseError("malformed float literal", pos)
		}
		return flat.Literal{Type: flat.TypeFloat, Float: f}, nil
	case "char":
		var s string
		if err := json.Unmarshal(raw, &s); err != nil || len([]rune(s)) != 1 {
			return flat.Literal{}, errors.ParseError("malformed char literal", pos)
		}
		return flat.Literal{Type: flat.TypeChar, Char: []rune(s)[0]}, nil
	default:
		return flat.Literal{}, errors.ParseError("unrecognized literal type "+typ, pos)
	}
}
