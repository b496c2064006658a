package runeio

import (
	"io"
	"unicode/utf8"
)

// WriteText writes program text to a terminal-bound writer. Runs of ordinary
// text are written through unchanged; NEL becomes "\r\n", and the other C1
// controls are written in their 7-bit escape form (CSI becomes "\x1b[") so
// that terminals which do not decode 8-bit controls still see them.
func WriteText(w io.Writer, s string) (n int, err error) {
	start := 0
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r < 0x80 || r > 0x9f {
			i += size
			continue
		}
		m, err := io.WriteString(w, s[start:i])
		n += m
		if err != nil {
			return n, err
		}
		esc := []byte{0x1b, byte(r ^ 0xc0)}
		if r == 0x85 {
			esc = []byte{'\r', '\n'}
		}
		m, err = w.Write(esc)
		n += m
		if err != nil {
			return n, err
		}
		i += size
		start = i
	}
	m, err := io.WriteString(w, s[start:])
	return n + m, err
}
