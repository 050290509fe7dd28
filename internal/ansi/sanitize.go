package ansi

import "strings"

// SanitizePreview removes control sequences from preview output that would
// corrupt the host terminal if replayed inside a panel: private mode
// set/reset (DECSET/DECRST), cursor addressing, screen clears, OSC title
// writes. SGR color/style sequences pass through untouched so the draw
// layer can convert them.
func SanitizePreview(input string) string {
	if !strings.ContainsFunc(input, func(r rune) bool {
		return r < 0x20 && r != '\t' && r != '\n'
	}) {
		return input
	}

	var out strings.Builder
	out.Grow(len(input))

	i := 0
	for i < len(input) {
		c := input[i]
		if c != '\x1b' {
			// Drop raw C0 controls other than tab and newline; they move
			// the cursor or ring the bell
			if c < 0x20 && c != '\t' && c != '\n' {
				i++
				continue
			}
			out.WriteByte(c)
			i++
			continue
		}

		if i+1 >= len(input) {
			break
		}

		switch input[i+1] {
		case '[':
			// CSI: scan parameters, keep only SGR ('m')
			j := i + 2
			for j < len(input) && input[j] >= 0x20 && input[j] <= 0x3F {
				j++
			}
			if j >= len(input) {
				return out.String()
			}
			if input[j] == 'm' {
				out.WriteString(input[i : j+1])
			}
			i = j + 1
		case ']':
			// OSC: consume through BEL or ST
			j := i + 2
			for j < len(input) {
				if input[j] == '\a' {
					j++
					break
				}
				if input[j] == '\x1b' && j+1 < len(input) && input[j+1] == '\\' {
					j += 2
					break
				}
				j++
			}
			i = j
		default:
			// Two-byte escape (RIS, DECSC, ...): drop both bytes
			i += 2
		}
	}

	return out.String()
}
