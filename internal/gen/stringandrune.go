//    NarrativeScope
//    Copyright: E Gunderson 2024
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package gen

import (
	"strings"
	"unicode/utf8"
)

//
// STRINGS and []RUNE
//

// Purgechars - drop any of the chars in the bad-string from the check-string
func Purgechars(bad string, checking string) string {
	rb := []rune(bad)
	reducer := make(map[rune]bool, len(rb))
	for _, r := range rb {
		reducer[r] = true
	}

	var stripped []rune
	for _, x := range []rune(checking) {
		if _, skip := reducer[x]; !skip {
			stripped = append(stripped, x)
		}
	}
	return string(stripped)
}

// AvoidLongLines - crop a string that is too long for a terminal column and mark the crop with "…"
func AvoidLongLines(untrimmed string, maxlen int) string {
	if maxlen < 1 || utf8.RuneCountInString(untrimmed) <= maxlen {
		return untrimmed
	}
	r := []rune(untrimmed)
	return strings.TrimSpace(string(r[:maxlen-1])) + "…"
}

// PadRight - pad with spaces to a rune width
func PadRight(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n >= width {
		return s
	}
	return s + strings.Repeat(" ", width-n)
}
