package fileinput

import (
	"fmt"
	"io"
	"io/ioutil"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Source implements sequential scanning through a named source text, tracking
// the Location of the next unconsumed rune.
type Source struct {
	Location
	text string
}

// NewSource returns a Source positioned at the first rune of text.
func NewSource(name, text string) *Source {
	return &Source{Location{name, 1, 1}, text}
}

// ReadSource reads all of r into a new Source, naming it after r if r
// implements Name() string.
func ReadSource(r io.Reader) (*Source, error) {
	b, err := ioutil.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return NewSource(nameOf(r), string(b)), nil
}

// Rest returns all unconsumed text.
func (src *Source) Rest() string { return src.text }

// Done returns true once all text has been consumed.
func (src *Source) Done() bool { return len(src.text) == 0 }

// Peek returns the next rune without consuming it, or 0 at the end.
func (src *Source) Peek() rune {
	r, _ := utf8.DecodeRuneInString(src.text)
	if r == utf8.RuneError && len(src.text) == 0 {
		return 0
	}
	return r
}

// HasPrefix returns true if the unconsumed text starts with s.
func (src *Source) HasPrefix(s string) bool { return strings.HasPrefix(src.text, s) }

// Advance consumes n bytes, returning them, and updating Line and Col.
func (src *Source) Advance(n int) string {
	if n > len(src.text) {
		n = len(src.text)
	}
	s := src.text[:n]
	src.text = src.text[n:]
	for _, r := range s {
		if r == '\n' {
			src.Line++
			src.Col = 1
		} else {
			src.Col++
		}
	}
	return s
}

// AdvanceWhile consumes the longest prefix of runes matching pred.
func (src *Source) AdvanceWhile(pred func(r rune) bool) string {
	i := strings.IndexFunc(src.text, func(r rune) bool { return !pred(r) })
	if i < 0 {
		i = len(src.text)
	}
	return src.Advance(i)
}

// SkipSpace consumes any leading whitespace.
func (src *Source) SkipSpace() { src.AdvanceWhile(unicode.IsSpace) }

func nameOf(obj interface{}) string {
	if nom, ok := obj.(interface{ Name() string }); ok {
		return nom.Name()
	}
	return fmt.Sprintf("<unnamed %T>", obj)
}
