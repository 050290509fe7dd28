package matcher

import (
	"strings"

	"github.com/television/television/internal/util"
)

// Atom is one term of a parsed query. Atoms are separated by unescaped
// spaces; quoted whitespace stays inside an atom.
//
//	foo     fuzzy match
//	'foo    exact substring
//	!foo    exclude lines matching foo
//	^foo    display must start with foo
//	foo$    display must end with foo
//	^foo$   display must equal foo
type Atom struct {
	Text   string
	Negate bool
	Prefix bool
	Suffix bool
	Exact  bool

	// caseSensitive is the smart-case decision for this atom: explicit
	// match when the text contains an uppercase letter.
	caseSensitive bool
}

// Anchored reports whether the atom carries a ^ or $ anchor.
func (a Atom) Anchored() bool {
	return a.Prefix || a.Suffix
}

// ParseQuery splits a query string into atoms. Unescaped spaces separate
// atoms; double-quoted regions keep their whitespace. A dangling quote
// extends to the end of the string.
func ParseQuery(s string, exactMode bool) []Atom {
	var atoms []Atom

	for _, tok := range splitAtoms(s) {
		if tok == "" {
			continue
		}

		a := Atom{Exact: exactMode}

		if strings.HasPrefix(tok, "!") {
			a.Negate = true
			tok = tok[1:]
		}
		if strings.HasPrefix(tok, "'") {
			a.Exact = true
			tok = tok[1:]
		}
		if strings.HasPrefix(tok, "^") {
			a.Prefix = true
			tok = tok[1:]
		}
		if strings.HasSuffix(tok, "$") && !strings.HasSuffix(tok, `\$`) {
			a.Suffix = true
			tok = tok[:len(tok)-1]
		}
		tok = strings.ReplaceAll(tok, `\$`, "$")

		if tok == "" {
			continue
		}
		a.Text = tok
		a.caseSensitive = util.ContainsUpper(tok)
		atoms = append(atoms, a)
	}

	return atoms
}

// splitAtoms splits on unescaped, unquoted spaces.
func splitAtoms(s string) []string {
	var (
		out    []string
		cur    strings.Builder
		quoted bool
	)

	flush := func() {
		if cur.Len() > 0 {
			out = append(out, cur.String())
			cur.Reset()
		}
	}

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '\\' && i+1 < len(s) && s[i+1] == ' ':
			cur.WriteByte(' ')
			i++
		case c == '"':
			quoted = !quoted
		case c == ' ' && !quoted:
			flush()
		default:
			cur.WriteByte(c)
		}
	}
	flush()
	return out
}
