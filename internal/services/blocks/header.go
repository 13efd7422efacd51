package blocks

import "strings"

// Header is a series label split into its display name and optional badge.
type Header struct {
	Name  string
	Badge string
}

// closing bracket -> opening bracket
var bracketPairs = map[rune]rune{
	')': '(',
	'）': '（',
}

// SplitHeader splits a label such as "Port A(Q3600)" into name "Port A" and
// badge "Q3600". Only the last bracket pair counts, so "A(B)(C)" keeps "A(B)"
// as its name. ASCII and fullwidth brackets are both recognized; a label
// without a complete trailing pair is returned trimmed as the name.
func SplitHeader(label string) Header {
	runes := []rune(label)

	closeIdx := -1
	var open, closing rune
	for i := len(runes) - 1; i >= 0; i-- {
		if o, ok := bracketPairs[runes[i]]; ok {
			closeIdx, open, closing = i, o, runes[i]
			break
		}
	}
	if closeIdx < 0 {
		return Header{Name: strings.TrimSpace(label)}
	}

	openIdx := -1
	depth := 0
	for i := closeIdx - 1; i >= 0; i-- {
		switch runes[i] {
		case closing:
			depth++
		case open:
			if depth == 0 {
				openIdx = i
			} else {
				depth--
			}
		}
		if openIdx >= 0 {
			break
		}
	}
	if openIdx < 0 {
		return Header{Name: strings.TrimSpace(label)}
	}

	return Header{
		Name:  strings.TrimSpace(string(runes[:openIdx])),
		Badge: strings.TrimSpace(string(runes[openIdx+1 : closeIdx])),
	}
}
