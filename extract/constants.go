package extract

import (
	"math"
	"strconv"
	"strings"

	"github.com/youyuanwu/bnd/cfront"
	"github.com/youyuanwu/bnd/model"
)

// collectConstants walks root's direct children for `#define` macros
// in scope whose token stream evaluates to a single numeric literal.
// Macros that expand to expressions, strings, or take parameters
// cannot be represented and are silently skipped (spec.md §4.1).
func (b *builder) collectConstants(root cfront.Entity) []*model.ConstantDef {
	var out []*model.ConstantDef
	for _, child := range root.Children() {
		if child.Kind() != cfront.EntityMacroDefinition {
			continue
		}
		if loc, ok := child.Location(); ok && !b.scope.inScope(loc.File) {
			continue
		}
		value, ok := ParseMacroConstant(child.MacroTokens())
		if !ok {
			continue
		}
		out = append(out, &model.ConstantDef{Name: child.Name(), Value: value})
	}
	return out
}

// ParseMacroConstant evaluates a macro's token stream as a single C
// integer or floating-point literal, optionally negated. This is the
// only part of extract that parses raw, untrusted text rather than an
// already-resolved AST node, which is why SPEC_FULL.md designates it
// as the package's fuzz target, the same way saferwall/pe's fuzz.go
// feeds raw bytes straight at its binary-format parser instead of at
// anything downstream of it.
func ParseMacroConstant(tokens []string) (model.ConstantValue, bool) {
	tokens = trimParens(tokens)
	if len(tokens) == 0 || len(tokens) > 2 {
		return nil, false
	}

	negative := false
	lit := tokens[0]
	if len(tokens) == 2 {
		if tokens[0] != "-" && tokens[0] != "+" {
			return nil, false
		}
		negative = tokens[0] == "-"
		lit = tokens[1]
	}
	return parseLiteral(lit, negative)
}

func trimParens(tokens []string) []string {
	for len(tokens) >= 2 && tokens[0] == "(" && tokens[len(tokens)-1] == ")" {
		tokens = tokens[1 : len(tokens)-1]
	}
	return tokens
}

func parseLiteral(lit string, negative bool) (model.ConstantValue, bool) {
	if lit == "" {
		return nil, false
	}

	if looksLikeFloat(lit) {
		f, err := strconv.ParseFloat(strings.TrimRight(lit, "fFlL"), 64)
		if err != nil {
			return nil, false
		}
		if negative {
			f = -f
		}
		return model.Float(f), true
	}

	// The integer suffix (U/L/LL in any combination) is stripped but, like
	// extract.rs's sonar-backed collector, never consulted again: whether a
	// literal becomes Signed or Unsigned is decided by magnitude alone, not
	// by radix or suffix, so "0xFF", "010", and "10U" all parse as the
	// unsigned 64-bit magnitude first and only promote to model.Unsigned
	// when that magnitude overflows int64.
	body, _ := trimIntSuffix(lit)
	base := 10
	switch {
	case strings.HasPrefix(body, "0x") || strings.HasPrefix(body, "0X"):
		base = 16
		body = body[2:]
	case len(body) > 1 && body[0] == '0':
		base = 8
		body = body[1:]
	}
	if body == "" {
		return nil, false
	}

	u, err := strconv.ParseUint(body, base, 64)
	if err != nil {
		return nil, false
	}
	if negative {
		return model.Signed(-int64(u)), true
	}
	if u <= math.MaxInt64 {
		return model.Signed(int64(u)), true
	}
	return model.Unsigned(u), true
}

// looksLikeFloat reports whether lit contains a decimal point or
// exponent marker and is not a hex integer literal (which legitimately
// contains 'e'/'E' as hex digits).
func looksLikeFloat(lit string) bool {
	if strings.HasPrefix(lit, "0x") || strings.HasPrefix(lit, "0X") {
		return false
	}
	return strings.ContainsAny(lit, ".eE")
}

// trimIntSuffix strips trailing u/U/l/L markers, in any order and
// combination as C permits ("10UL", "10LU", "10ULL"), and reports
// whether an unsigned marker was present.
func trimIntSuffix(lit string) (string, bool) {
	unsigned := false
	for len(lit) > 0 {
		switch lit[len(lit)-1] {
		case 'u', 'U':
			unsigned = true
			lit = lit[:len(lit)-1]
		case 'l', 'L':
			lit = lit[:len(lit)-1]
		default:
			return lit, unsigned
		}
	}
	return lit, unsigned
}
