package errors

import (
	"fmt"
	"strings"
)

// ErrorBuilder provides a fluent interface for creating errors with
// suggestions.
type ErrorBuilder struct {
	err CompilerError
}

// NewError starts a new error of the given code at the given position.
func NewError(code, message string, pos Position) *ErrorBuilder {
	return &ErrorBuilder{
		err: CompilerError{
			Level:    Error,
			Code:     code,
			Message:  message,
			Position: pos,
			Length:   1,
		},
	}
}

func (b *ErrorBuilder) WithSuggestion(message string) *ErrorBuilder {
	b.err.Suggestions = append(b.err.Suggestions, Suggestion{Message: message})
	return b
}

func (b *ErrorBuilder) WithNote(note string) *ErrorBuilder {
	b.err.Notes = append(b.err.Notes, note)
	return b
}

func (b *ErrorBuilder) WithHelp(help string) *ErrorBuilder {
	b.err.HelpText = help
	return b
}

func (b *ErrorBuilder) Build() CompilerError {
	return b.err
}

// ParseError reports a malformed input record.
func ParseError(message string, pos Position) CompilerError {
	return NewError(ErrorParse, message, pos).Build()
}

// UnresolvedLabel reports a branch/jump target with no matching label,
// suggesting the closest-spelled label in the function when one exists.
func UnresolvedLabel(target string, known []string, pos Position) CompilerError {
	builder := NewError(ErrorUnresolvedLabel, fmt.Sprintf("unresolved label %q", target), pos)
	if similar := findSimilarNames(target, known); len(similar) > 0 {
		builder = builder.WithSuggestion(fmt.Sprintf("did you mean %q?", similar[0]))
	}
	return builder.WithHelp("every br/jmp target must be a label defined in the same function").Build()
}

// DivisionByZero reports an integer division by zero.
func DivisionByZero(pos Position) CompilerError {
	return NewError(ErrorDivisionByZero, "division by zero", pos).Build()
}

// TypeCoercion reports an out-of-range scalar conversion (e.g. int2char).
func TypeCoercion(message string, pos Position) CompilerError {
	return NewError(ErrorTypeCoercion, message, pos).Build()
}

// InvalidMemoryAccess reports an out-of-bounds or negative heap offset.
func InvalidMemoryAccess(base, offset int64, pos Position) CompilerError {
	return NewError(ErrorInvalidMemoryAccess,
		fmt.Sprintf("invalid memory access at base %d, offset %d", base, offset), pos).Build()
}

// IllegalFree reports a free of a non-base or unknown pointer.
func IllegalFree(base int64, offset int64, pos Position) CompilerError {
	return NewError(ErrorIllegalFree,
		fmt.Sprintf("illegal free of base %d, offset %d", base, offset), pos).
		WithHelp("free requires offset == 0 and a base returned by alloc").Build()
}

// UsingUninitializedMemory reports a read of a never-written heap cell.
func UsingUninitializedMemory(pos Position) CompilerError {
	return NewError(ErrorUsingUninitializedMemory, "read of uninitialized memory", pos).Build()
}

// MemLeak reports a non-empty heap at normal program exit.
func MemLeak(liveAllocations int, pos Position) CompilerError {
	return NewError(ErrorMemLeak,
		fmt.Sprintf("memory leak: %d allocation(s) never freed", liveAllocations), pos).Build()
}

// Unimplemented reports a speculative-execution opcode.
func Unimplemented(op string, pos Position) CompilerError {
	return NewError(ErrorUnimplemented, fmt.Sprintf("%q is not implemented", op), pos).
		WithNote("speculate/commit/guard were left unspecified by the source implementation").Build()
}

// BadNumFuncArgs reports a CLI-argument-count mismatch against main.
func BadNumFuncArgs(expected, actual int) CompilerError {
	return NewError(ErrorBadNumFuncArgs,
		fmt.Sprintf("main expects %d argument(s), got %d", expected, actual), Position{}).Build()
}

// BadFuncArgType reports a CLI argument that failed to parse as its type.
func BadFuncArgType(argName, wantType, value string) CompilerError {
	return NewError(ErrorBadFuncArgType,
		fmt.Sprintf("argument %q expects type %s, could not parse %q", argName, wantType, value), Position{}).Build()
}

// NoMainFunction reports a program with no function named "main".
func NoMainFunction() CompilerError {
	return NewError(ErrorNoMainFunction, "program has no function named \"main\"", Position{}).Build()
}

// UnsupportedBackend reports a value kind the instruction selector or
// register allocator does not support (float/char).
func UnsupportedBackend(message string, pos Position) CompilerError {
	return NewError(ErrorUnsupportedBackend, message, pos).
		WithNote("the back end only supports int and bool values; the interpreter supports float and char").Build()
}

// findSimilarNames returns candidates within Levenshtein distance 2 of
// target, closest first.
func findSimilarNames(target string, candidates []string) []string {
	type scored struct {
		name string
		dist int
	}
	var matches []scored
	for _, c := range candidates {
		if d := levenshteinDistance(target, c); d <= 2 && len(c) > 1 {
			matches = append(matches, scored{c, d})
		}
	}
	for i := 1; i < len(matches); i++ {
		for j := i; j > 0 && matches[j-1].dist > matches[j].dist; j-- {
			matches[j-1], matches[j] = matches[j], matches[j-1]
		}
	}
	names := make([]string, len(matches))
	for i, m := range matches {
		names[i] = m.name
	}
	return names
}

// levenshteinDistance computes edit distance between two strings.
func levenshteinDistance(a, b string) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	matrix := make([][]int, len(a)+1)
	for i := range matrix {
		matrix[i] = make([]int, len(b)+1)
	}
	for i := 0; i <= len(a); i++ {
		matrix[i][0] = i
	}
	for j := 0; j <= len(b); j++ {
		matrix[0][j] = j
	}

	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			cost := 0
			if a[i-1] != b[j-1] {
				cost = 1
			}
			matrix[i][j] = min3(
				matrix[i-1][j]+1,
				matrix[i][j-1]+1,
				matrix[i-1][j-1]+cost,
			)
		}
	}

	return matrix[len(a)][len(b)]
}

func min3(a, b, c int) int {
	if a < b {
		if a < c {
			return a
		}
		return c
	}
	if b < c {
		return b
	}
	return c
}

// JoinNames is a small helper used by callers composing multi-name notes.
func JoinNames(names []string) string {
	return strings.Join(names, "', '")
}
