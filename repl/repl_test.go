package repl

import (
	"bufio"
	"strings"
	"testing"
)

func TestReadUntilBlankStopsAtBlankLine(t *testing.T) {
	scanner := bufio.NewScanner(strings.NewReader("line one\nline two\n\nrest\n"))
	got, ok := readUntilBlank(scanner)
	if !ok {
		t.Fatal("expected ok=true when a blank line terminates the block")
	}
	if got != "line one\nline two\n" {
		t.Errorf("unexpected accumulated text: %q", got)
	}
}

func TestReadUntilBlankReturnsWhatWasReadBeforeEOF(t *testing.T) {
	scanner := bufio.NewScanner(strings.NewReader("only line, no trailing blank"))
	got, ok := readUntilBlank(scanner)
	if !ok {
		t.Fatal("expected ok=true when content was read before EOF")
	}
	if got != "only line, no trailing blank\n" {
		t.Errorf("unexpected accumulated text: %q", got)
	}
}

func TestReadUntilBlankReturnsFalseOnImmediateEOF(t *testing.T) {
	scanner := bufio.NewScanner(strings.NewReader(""))
	_, ok := readUntilBlank(scanner)
	if ok {
		t.Fatal("expected ok=false when nothing at all was read")
	}
}

func TestEvalOnePrintsOutputAndInstructionCount(t *testing.T) {
	const source = "@main() {\n\ta = const 1;\n\tb = const 2;\n\tc = add a b;\n\tprint c;\n\tret;\n}\n"

	var out strings.Builder
	if err := evalOne(source, &out); err != nil {
		t.Fatalf("evalOne: %v", err)
	}
	got := out.String()
	if !strings.Contains(got, "3\n") {
		t.Errorf("expected printed sum 3, got %q", got)
	}
	if !strings.Contains(got, "dynamic instructions") {
		t.Errorf("expected a dynamic-instruction count line, got %q", got)
	}
}

func TestEvalOneSurfacesValidationErrors(t *testing.T) {
	const source = "@main() {\n\tjmp nowhere;\n\tret;\n}\n"
	var out strings.Builder
	if err := evalOne(source, &out); err == nil {
		t.Fatal("expected an error for an unresolved jump label")
	}
}

func TestStartReadsOneBlockAndEchoesOutput(t *testing.T) {
	const input = "@main() {\n\ta = const 5;\n\tprint a;\n\tret;\n}\n\n"
	var out strings.Builder
	Start(strings.NewReader(input), &out)

	got := out.String()
	if !strings.Contains(got, "5\n") {
		t.Errorf("expected the REPL to print 5, got %q", got)
	}
	if !strings.Contains(got, PROMPT) {
		t.Errorf("expected the REPL to print its prompt, got %q", got)
	}
}
