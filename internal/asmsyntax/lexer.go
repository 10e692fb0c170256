// Package asmsyntax is the textual front-end adapter: a small participle
// grammar for a human-writable assembly-like rendering of flat
// instructions (`a = const 1;`, `c = add a b;`, `br cond then else;`,
// labels written `.loop:`).
package asmsyntax

import (
	"github.com/alecthomas/participle/v2/lexer"
)

var AsmLexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		{"Comment", `//[^\n]*`, nil},
		{"Label", `\.[a-zA-Z_][a-zA-Z0-9_]*:`, nil},
		{"Float", `[0-9]+\.[0-9]+`, nil},
		{"Integer", `[0-9]+`, nil},
		{"Char", `'(\\.|[^'\\])'`, nil},
		{"Ident", `[a-zA-Z_][a-zA-Z0-9_]*`, nil},
		{"Punct", `[@(){}:,;=]`, nil},
		{"Whitespace", `[ \t\r\n]+`, nil},
	},
})
