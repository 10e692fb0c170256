package asmsyntax

import "github.com/alecthomas/participle/v2/lexer"

// Program is a sequence of function definitions.
type Program struct {
	Functions []*Function `@@*`
}

// Function is one `@name(params): ret { lines }` definition.
type Function struct {
	Name   string   `"@" @Ident "("`
	Params []*Param `[ @@ { "," @@ } ] ")"`
	Ret    *string  `[ ":" @("int" | "bool" | "float" | "char") ]`
	Lines  []*Line  `"{" @@* "}"`
}

// Param is one (name, type) function parameter.
type Param struct {
	Name string `@Ident ":"`
	Type string `@("int" | "bool" | "float" | "char")`
}

// Line is either a bare label definition or an instruction.
type Line struct {
	Label *string `  @Label`
	Instr *Instr   `| @@`
}

// Instr is the generic shape every op parses into: an optional assigned
// destination, the op keyword, and a list of operands whose meaning
// (argument name, label target, literal, callee name) is resolved by
// Lower according to the op's arity.
type Instr struct {
	Pos      lexer.Position
	Dest     *string    `[ @Ident "=" ]`
	Op       string     `@Ident`
	Operands []*Operand `{ @@ }`
	Semi     string     `";"`
}

// Operand is a single token in an instruction's operand list.
type Operand struct {
	Int   *string `  @Integer`
	Float *string `| @Float`
	Char  *string `| @Char`
	Ident *string `| @Ident`
}
