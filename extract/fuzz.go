package extract

import "strings"

// Fuzz is a go-fuzz entry point for ParseMacroConstant, the one place
// in this package that parses raw text instead of an already-resolved
// AST node. data is split on whitespace into a macro token stream, the
// same shape cfront.Entity.MacroTokens returns.
func Fuzz(data []byte) int {
	tokens := strings.Fields(string(data))
	if _, ok := ParseMacroConstant(tokens); ok {
		return 1
	}
	return 0
}
