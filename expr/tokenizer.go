// SPDX-License-Identifier: MIT

package expr

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// segment is a raw slice of the source before classification.
type segment struct {
	text       string
	start, end int
}

func isDelimiter(r rune) bool {
	return strings.ContainsRune("()*/%^+-><=!&|", r)
}

// Tokenize splits text into tokens. Words that are neither operators, numeric
// literals nor members of variables yield a *SyntaxError at their span.
func Tokenize(text string, variables []string) ([]Token, error) {
	known := make(map[string]bool, len(variables))
	for _, v := range variables {
		known[v] = true
	}

	segments := mergeTwoCharOperators(separate(text))
	tokens := make([]Token, 0, len(segments))
	var seg segment
	for _, seg = range segments {
		if tt, ok := operatorTokens[seg.text]; ok {
			tokens = append(tokens, Token{Type: tt, Start: seg.start, End: seg.end})
			continue
		}
		if known[seg.text] {
			tokens = append(tokens, Token{Type: TokenVariable, Name: seg.text, Start: seg.start, End: seg.end})
			continue
		}
		if looksNumeric(seg.text) {
			v, err := strconv.ParseFloat(seg.text, 64)
			if err == nil {
				tokens = append(tokens, Token{Type: TokenConstant, Value: v, Start: seg.start, End: seg.end})
				continue
			}
		}

		return nil, errorAt(
			fmt.Sprintf("Token %q is neither a numeric value, a variable, nor a syntactical token", seg.text),
			seg.start, seg.end)
	}

	return tokens, nil
}

// looksNumeric accepts decimal literals such as 12, 0.5 and .5.
func looksNumeric(s string) bool {
	if s == "" {
		return false
	}
	c := s[0]

	return (c >= '0' && c <= '9') || c == '.'
}

// separate cuts text into words and single delimiter characters.
// Whitespace ends a word and is otherwise dropped.
func separate(text string) []segment {
	var out []segment
	wordStart := -1
	flush := func(end int) {
		if wordStart >= 0 {
			out = append(out, segment{text: text[wordStart:end], start: wordStart, end: end})
			wordStart = -1
		}
	}

	var (
		i int
		r rune
	)
	for i, r = range text {
		switch {
		case unicode.IsSpace(r):
			flush(i)
		case isDelimiter(r):
			flush(i)
			out = append(out, segment{text: string(r), start: i, end: i + utf8.RuneLen(r)})
		default:
			if wordStart < 0 {
				wordStart = i
			}
		}
	}
	flush(len(text))

	return out
}

// mergeTwoCharOperators joins adjacent segments forming >=, <=, ==, !=, && or ||.
func mergeTwoCharOperators(in []segment) []segment {
	out := make([]segment, 0, len(in))
	for i := 0; i < len(in); i++ {
		if i+1 < len(in) && in[i].end == in[i+1].start {
			joined := in[i].text + in[i+1].text
			if twoCharOperators[joined] {
				out = append(out, segment{text: joined, start: in[i].start, end: in[i+1].end})
				i++
				continue
			}
		}
		out = append(out, in[i])
	}

	return out
}
