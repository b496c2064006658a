package runeio

import (
	"bufio"
	"io"
	"strings"
)

// Reader is an io.Reader that also supports reading runes.
type Reader interface {
	io.Reader
	io.RuneReader
}

// NewReader returns a Reader from r; if r already implements, it is simply returned.
// Otherwise bufio.Reader is used to provide rune reading around the given reader.
func NewReader(r io.Reader) Reader {
	if impl, ok := r.(Reader); ok {
		return impl
	}
	return bufio.NewReader(r)
}

// ReadLine reads runes up to the next line feed, returning the line without
// its terminator; a trailing carriage return is also dropped. A final
// unterminated line is returned without error; io.EOF is only returned if no
// runes could be read at all.
func ReadLine(rr io.RuneReader) (string, error) {
	var sb strings.Builder
	for {
		r, _, err := rr.ReadRune()
		if err == io.EOF && sb.Len() > 0 {
			break
		} else if err != nil {
			return sb.String(), err
		}
		if r == '\n' {
			break
		}
		sb.WriteRune(r)
	}
	return strings.TrimSuffix(sb.String(), "\r"), nil
}
