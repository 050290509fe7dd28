package matcher

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/television/television/internal/util"
)

// Scoring bonuses. Contiguous runs and word starts dominate; long skips
// between matched runes cost a little each.
const (
	bonusMatch      = 16
	bonusContiguous = 8
	bonusWordStart  = 8
	bonusCamelCase  = 6
	penaltySkip     = 1
	maxSkipPenalty  = 32
)

// matchAtom matches a single atom against a display string. It returns
// the score contribution and the matched byte ranges. Negation is handled
// by the caller; this reports whether the text itself matches.
func matchAtom(a Atom, display string) (int, [][]int, bool) {
	switch {
	case a.Prefix && a.Suffix:
		if equalsFold(display, a.Text, a.caseSensitive) {
			return bonusMatch * utf8.RuneCountInString(a.Text) * 2, [][]int{{0, len(display)}}, true
		}
		return 0, nil, false
	case a.Prefix:
		if hasPrefixFold(display, a.Text, a.caseSensitive) {
			n := prefixByteLen(display, a.Text)
			return bonusMatch*utf8.RuneCountInString(a.Text) + bonusWordStart, [][]int{{0, n}}, true
		}
		return 0, nil, false
	case a.Suffix:
		if hasSuffixFold(display, a.Text, a.caseSensitive) {
			n := prefixByteLen(display[len(display)-suffixByteLen(display, a.Text):], a.Text)
			start := len(display) - n
			return bonusMatch * utf8.RuneCountInString(a.Text), [][]int{{start, len(display)}}, true
		}
		return 0, nil, false
	case a.Exact:
		return matchExact(a, display)
	default:
		return matchFuzzy(a, display)
	}
}

// matchExact finds the atom as a contiguous substring. Earlier and
// shorter lines score higher; the bonus model is skipped.
func matchExact(a Atom, display string) (int, [][]int, bool) {
	var i int
	if a.caseSensitive {
		i = strings.Index(display, a.Text)
	} else {
		i = strings.Index(strings.ToLower(display), strings.ToLower(a.Text))
	}
	if i < 0 {
		return 0, nil, false
	}

	score := bonusMatch * utf8.RuneCountInString(a.Text)
	score -= min(i, maxSkipPenalty)
	return score, [][]int{{i, i + len(a.Text)}}, true
}

// matchFuzzy walks the display string left to right, consuming query
// runes in order. Adjacent matches, word starts and camelCase boundaries
// earn bonuses; skipped stretches cost a penalty.
func matchFuzzy(a Atom, display string) (int, [][]int, bool) {
	var (
		score   int
		ranges  [][]int
		base    int
		prevEnd = -1
		skipped int
	)

	txt := display
	queryRunes := a.Text

	for len(queryRunes) > 0 {
		r, n := utf8.DecodeRuneInString(queryRunes)
		if r == utf8.RuneError {
			return 0, nil, false
		}
		queryRunes = queryRunes[n:]

		var i int
		if a.caseSensitive {
			i = strings.IndexRune(txt, r)
		} else {
			i = util.CaseInsensitiveIndex(txt, r)
		}
		if i == -1 {
			return 0, nil, false
		}

		matched, w := utf8.DecodeRuneInString(txt[i:])
		start := base + i
		end := start + w

		score += bonusMatch
		switch {
		case start == prevEnd:
			score += bonusContiguous
		case start == 0 || isWordBoundary(prevRuneBefore(display, start)):
			score += bonusWordStart
		case unicode.IsUpper(matched) && unicode.IsLower(prevRuneBefore(display, start)):
			score += bonusCamelCase
		}

		if start > prevEnd && prevEnd >= 0 {
			skipped += start - prevEnd
		} else if prevEnd < 0 {
			skipped += start
		}

		if len(ranges) > 0 && ranges[len(ranges)-1][1] == start {
			ranges[len(ranges)-1][1] = end
		} else {
			ranges = append(ranges, []int{start, end})
		}

		txt = txt[i+w:]
		base = end
		prevEnd = end
	}

	score -= min(skipped*penaltySkip, maxSkipPenalty)
	return score, ranges, true
}

// contains reports whether the atom text occurs in display under the
// atom's case policy. Used for negation, where ranges are irrelevant.
func contains(a Atom, display string) bool {
	switch {
	case a.Prefix && a.Suffix:
		return equalsFold(display, a.Text, a.caseSensitive)
	case a.Prefix:
		return hasPrefixFold(display, a.Text, a.caseSensitive)
	case a.Suffix:
		return hasSuffixFold(display, a.Text, a.caseSensitive)
	case a.Exact:
		_, _, ok := matchExact(a, display)
		return ok
	default:
		_, _, ok := matchFuzzy(a, display)
		return ok
	}
}

func isWordBoundary(r rune) bool {
	return r == 0 || unicode.IsSpace(r) || strings.ContainsRune("/-_.:,;()[]{}", r)
}

// prevRuneBefore returns the rune ending at byte offset i, or 0 at the
// start of the string.
func prevRuneBefore(s string, i int) rune {
	if i <= 0 {
		return 0
	}
	r, _ := utf8.DecodeLastRuneInString(s[:i])
	return r
}

func equalsFold(s, t string, caseSensitive bool) bool {
	if caseSensitive {
		return s == t
	}
	return strings.EqualFold(s, t)
}

func hasPrefixFold(s, prefix string, caseSensitive bool) bool {
	if caseSensitive {
		return strings.HasPrefix(s, prefix)
	}
	if len(s) < len(prefix) {
		return false
	}
	return strings.EqualFold(s[:prefixByteLen(s, prefix)], prefix)
}

func hasSuffixFold(s, suffix string, caseSensitive bool) bool {
	if caseSensitive {
		return strings.HasSuffix(s, suffix)
	}
	n := suffixByteLen(s, suffix)
	if n < 0 {
		return false
	}
	return strings.EqualFold(s[len(s)-n:], suffix)
}

// prefixByteLen returns the byte length of the prefix of s covering the
// same number of runes as t. ASCII folding keeps byte lengths equal; for
// multibyte text we count runes.
func prefixByteLen(s, t string) int {
	tr := utf8.RuneCountInString(t)
	n := 0
	for i := 0; i < tr; i++ {
		_, w := utf8.DecodeRuneInString(s[n:])
		if w == 0 {
			return len(s)
		}
		n += w
	}
	return n
}

func suffixByteLen(s, t string) int {
	tr := utf8.RuneCountInString(t)
	n := 0
	rest := s
	for i := 0; i < tr; i++ {
		_, w := utf8.DecodeLastRuneInString(rest)
		if w == 0 {
			return -1
		}
		n += w
		rest = rest[:len(rest)-w]
	}
	return n
}
