package errors

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorReporterFormatsSourcePosition(t *testing.T) {
	source := "a = const 1\nb = const 2\nc = add a bb\nprint c\nret"
	reporter := NewErrorReporter("prog.ir", source)

	err := UnresolvedLabel("exitt", []string{"exit"}, Position{Line: 3, Column: 11})
	formatted := reporter.FormatError(err)

	assert.Contains(t, formatted, "error["+ErrorUnresolvedLabel+"]")
	assert.Contains(t, formatted, "exitt")
	assert.Contains(t, formatted, "prog.ir:3:11")
	assert.Contains(t, formatted, "did you mean")
	assert.Contains(t, formatted, "exit")
}

func TestErrorReporterFormatsInstructionPosition(t *testing.T) {
	reporter := NewErrorReporter("<program>", "")
	err := DivisionByZero(Position{Function: "main", InstrIndex: 4})
	formatted := reporter.FormatError(err)

	assert.Contains(t, formatted, "error["+ErrorDivisionByZero+"]")
	assert.Contains(t, formatted, "division by zero")
	assert.Contains(t, formatted, "function main, instruction 4")
}

func TestMemLeakError(t *testing.T) {
	err := MemLeak(2, Position{Function: "main", InstrIndex: 10})
	assert.Equal(t, ErrorMemLeak, err.Code)
	assert.Contains(t, err.Message, "2 allocation")
}

func TestUnimplementedError(t *testing.T) {
	err := Unimplemented("speculate", Position{Function: "main", InstrIndex: 1})
	assert.Equal(t, ErrorUnimplemented, err.Code)
	assert.Contains(t, err.Message, "speculate")
	assert.Len(t, err.Notes, 1)
}

func TestBadNumFuncArgs(t *testing.T) {
	err := BadNumFuncArgs(2, 1)
	assert.Equal(t, ErrorBadNumFuncArgs, err.Code)
	assert.Contains(t, err.Message, "expects 2")
	assert.Contains(t, err.Message, "got 1")
}

func TestLevenshteinDistance(t *testing.T) {
	assert.Equal(t, 0, levenshteinDistance("hello", "hello"))
	assert.Equal(t, 1, levenshteinDistance("hello", "hallo"))
	assert.Equal(t, 1, levenshteinDistance("hello", "helo"))
	assert.Equal(t, 5, levenshteinDistance("hello", ""))
	assert.Equal(t, 3, levenshteinDistance("kitten", "sitting"))
}

func TestFindSimilarNames(t *testing.T) {
	candidates := []string{"loop", "exit", "body", "done"}
	similar := findSimilarNames("exitt", candidates)
	assert.Contains(t, similar, "exit")
	assert.NotContains(t, similar, "body")

	assert.Empty(t, findSimilarNames("completelyunrelated", candidates))
}

func TestErrorLevels(t *testing.T) {
	reporter := NewErrorReporter("test.ir", "test")
	pos := Position{Line: 1, Column: 1}

	errorErr := CompilerError{Level: Error, Message: "test error", Position: pos}
	warningErr := CompilerError{Level: Warning, Message: "test warning", Position: pos}

	errorFormatted := reporter.FormatError(errorErr)
	warningFormatted := reporter.FormatError(warningErr)

	assert.Contains(t, errorFormatted, "error:")
	assert.Contains(t, warningFormatted, "warning:")
	assert.True(t, strings.Contains(errorFormatted, "test error"))
}

func TestGetErrorDescription(t *testing.T) {
	assert.Contains(t, GetErrorDescription(ErrorDivisionByZero), "division")
	assert.Equal(t, "unknown error code", GetErrorDescription("E9999"))
}
