// SPDX-License-Identifier: MIT

package expr

import (
	"errors"
	"strings"
)

// ErrSyntax is matched (via errors.Is) by every *SyntaxError.
var ErrSyntax = errors.New("expr: syntax error")

// SyntaxError describes malformed formula or rule text. Start and Length
// address a span of Text; Text may be empty while the error travels through
// nested parsers and is filled in once the outermost text is known.
type SyntaxError struct {
	Description string
	Start       int
	Length      int
	Text        string
}

// errorAt builds a SyntaxError spanning [start, end).
func errorAt(description string, start, end int) *SyntaxError {
	length := end - start
	if length < 0 {
		length = 0
	}

	return &SyntaxError{Description: description, Start: start, Length: length}
}

// NewSyntaxError is errorAt for callers outside the package (rule and file
// parsers report their own positioned errors).
func NewSyntaxError(description string, start, end int) *SyntaxError {
	return errorAt(description, start, end)
}

// End returns the exclusive end offset of the error span.
func (e *SyntaxError) End() int { return e.Start + e.Length }

// Reposition shifts the span by offset. A non-empty text replaces Text.
func (e *SyntaxError) Reposition(offset int, text string) {
	e.Start += offset
	if text != "" {
		e.Text = text
	}
}

// Is reports ErrSyntax as a match.
func (e *SyntaxError) Is(target error) bool { return target == ErrSyntax }

// Error renders the text with the offending span marked as >>span<<.
// An error at the very end of the text prints "text : description".
func (e *SyntaxError) Error() string {
	if e.Text == "" {
		return e.Description
	}
	if e.Start >= len(e.Text) || e.Start < 0 {
		return e.Text + " : " + e.Description
	}
	end := e.End()
	if end > len(e.Text) {
		end = len(e.Text)
	}

	var b strings.Builder
	b.WriteString(e.Text[:e.Start])
	b.WriteString(">>")
	b.WriteString(e.Text[e.Start:end])
	b.WriteString("<<")
	b.WriteString(e.Text[end:])
	b.WriteString(" : ")
	b.WriteString(e.Description)

	return b.String()
}

// AsSyntaxError unwraps err into a *SyntaxError when it is one.
func AsSyntaxError(err error) (*SyntaxError, bool) {
	var se *SyntaxError
	if errors.As(err, &se) {
		return se, true
	}

	return nil, false
}
