package cdecl

import (
	"strings"
)

// dotdotdot is the reserved sentinel substituted for every literal
// "..." before parsing. It stands in for the variadic trailing marker
// and for the elided tail inside a field list. It is recognized
// structurally at those two positions and never resolved as a genuine
// type.
const dotdotdot = "__dotdotdot__"

// preprocess rewrites src so the front end can parse it: every known
// typedef name is re-declared as a dummy int typedef (only its
// typedef-ness matters to the grammar, not its actual type), the
// sentinel is declared the same way, and every "..." in src is
// replaced by the sentinel. The registrar later skips everything up to
// and including the sentinel typedef.
func (c *Compiler) preprocess(src string) string {
	var sb strings.Builder
	for _, name := range c.decls.typedefNames() {
		sb.WriteString("typedef int ")
		sb.WriteString(name)
		sb.WriteString(";\n")
	}
	sb.WriteString("typedef int ")
	sb.WriteString(dotdotdot)
	sb.WriteString(";\n")
	sb.WriteString(strings.ReplaceAll(src, "...", dotdotdot))
	return sb.String()
}
