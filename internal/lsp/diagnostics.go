package lsp

import (
	"github.com/alecthomas/participle/v2"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/wizardengineer/bril2riscv/internal/errors"
)

// ConvertParseError turns a participle syntax error into a single LSP
// diagnostic.
func ConvertParseError(err error) []protocol.Diagnostic {
	pe, ok := err.(participle.Error)
	if !ok {
		return []protocol.Diagnostic{{
			Range:    zeroRange(),
			Severity: ptrSeverity(protocol.DiagnosticSeverityError),
			Source:   ptrString("bril2riscv"),
			Message:  err.Error(),
		}}
	}

	pos := pe.Position()
	return []protocol.Diagnostic{{
		Range: protocol.Range{
			Start: protocol.Position{Line: uint32(max0(pos.Line - 1)), Character: uint32(max0(pos.Column - 1))},
			End:   protocol.Position{Line: uint32(max0(pos.Line - 1)), Character: uint32(pos.Column + 5)},
		},
		Severity: ptrSeverity(protocol.DiagnosticSeverityError),
		Source:   ptrString("bril2riscv-parser"),
		Message:  pe.Message(),
	}}
}

// ConvertCompilerError turns a validation error into an LSP diagnostic.
func ConvertCompilerError(err error) []protocol.Diagnostic {
	ce, ok := err.(errors.CompilerError)
	if !ok {
		return []protocol.Diagnostic{{
			Range:    zeroRange(),
			Severity: ptrSeverity(protocol.DiagnosticSeverityError),
			Source:   ptrString("bril2riscv-validate"),
			Message:  err.Error(),
		}}
	}

	line := max0(ce.Position.Line - 1)
	col := max0(ce.Position.Column - 1)
	length := ce.Length
	if length <= 0 {
		length = 1
	}

	return []protocol.Diagnostic{{
		Range: protocol.Range{
			Start: protocol.Position{Line: uint32(line), Character: uint32(col)},
			End:   protocol.Position{Line: uint32(line), Character: uint32(col + length)},
		},
		Severity: ptrSeverity(protocol.DiagnosticSeverityError),
		Source:   ptrString("bril2riscv-validate"),
		Message:  ce.Message,
	}}
}

func zeroRange() protocol.Range {
	return protocol.Range{
		Start: protocol.Position{Line: 0, Character: 0},
		End:   protocol.Position{Line: 0, Character: 1},
	}
}

func max0(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
