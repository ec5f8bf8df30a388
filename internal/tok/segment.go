//    NarrativeScope
//    Copyright: E Gunderson 2024
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package tok

import (
	"regexp"
	"unicode"
)

//
// SEGMENTATION
//

// class - what segment() decided a raw token is
type class uint8

const (
	clWord class = iota
	clNumber
	clPunct
	clSymbol
	clURL
)

type rawtoken struct {
	text string
	cl   class
}

var (
	urlrx = regexp.MustCompile(`(?i)\b(?:(?:https?|ftp)://|www\.)[^\s<>"]*[^\s<>".,;:!?'")\]]`)
)

func isapostrophe(r rune) bool {
	return r == '\'' || r == '’' || r == 'ʼ'
}

func ishyphen(r rune) bool {
	return r == '-' || r == '‐' || r == '‑'
}

func iswordrune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsNumber(r) || unicode.IsMark(r)
}

// segment - split text into raw tokens; URLs are found first so that their dots and slashes survive
func segment(text string, splithyphens bool) []rawtoken {
	var out []rawtoken
	last := 0
	for _, loc := range urlrx.FindAllStringIndex(text, -1) {
		out = append(out, segmentplain(text[last:loc[0]], splithyphens)...)
		out = append(out, rawtoken{text: text[loc[0]:loc[1]], cl: clURL})
		last = loc[1]
	}
	return append(out, segmentplain(text[last:], splithyphens)...)
}

// segmentplain - runs of word runes are words; inner apostrophes always join; inner hyphens join unless splithyphens;
// a '.' or ',' between two digits joins; everything else is a one-rune token
func segmentplain(text string, splithyphens bool) []rawtoken {
	rr := []rune(text)
	n := len(rr)

	joins := func(j int) bool {
		if j+1 >= n || !iswordrune(rr[j-1]) || !iswordrune(rr[j+1]) {
			return false
		}
		switch {
		case isapostrophe(rr[j]):
			return true
		case ishyphen(rr[j]):
			return !splithyphens
		case rr[j] == '.' || rr[j] == ',':
			return unicode.IsDigit(rr[j-1]) && unicode.IsDigit(rr[j+1])
		}
		return false
	}

	var out []rawtoken
	i := 0
	for i < n {
		r := rr[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case iswordrune(r):
			j := i + 1
			for j < n {
				if iswordrune(rr[j]) {
					j++
				} else if joins(j) {
					j++
				} else {
					break
				}
			}
			w := string(rr[i:j])
			out = append(out, rawtoken{text: w, cl: classify(rr[i:j])})
			i = j
		case unicode.IsSymbol(r):
			out = append(out, rawtoken{text: string(r), cl: clSymbol})
			i++
		default:
			// punctuation and anything else that is neither a word nor a symbol
			out = append(out, rawtoken{text: string(r), cl: clPunct})
			i++
		}
	}
	return out
}

// classify - a word made only of numerals (and the separators that joined them) is a number
func classify(rr []rune) class {
	for _, r := range rr {
		if unicode.IsNumber(r) || r == '.' || r == ',' {
			continue
		}
		return clWord
	}
	return clNumber
}
