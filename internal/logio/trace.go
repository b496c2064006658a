package logio

import (
	"fmt"
	"strings"
)

// Trace wraps an optional printf-style log function, prefixing each message
// with a mark that is padded to a common width so that nested traces line
// up. The zero value discards everything.
type Trace struct {
	Logfn func(mess string, args ...interface{})

	markWidth int
}

// Enabled returns true if messages will be logged.
func (tr *Trace) Enabled() bool { return tr.Logfn != nil }

// WithPrefix prepends prefix to all messages until the returned restore
// function is called.
func (tr *Trace) WithPrefix(prefix string) func() {
	logfn := tr.Logfn
	if logfn == nil {
		return func() {}
	}
	tr.Logfn = func(mess string, args ...interface{}) {
		logfn(prefix+mess, args...)
	}
	return func() {
		tr.Logfn = logfn
	}
}

// Logf logs a message under the given mark.
func (tr *Trace) Logf(mark, mess string, args ...interface{}) {
	if tr.Logfn == nil {
		return
	}
	if n := tr.markWidth - len(mark); n > 0 {
		for _, r := range mark {
			mark = strings.Repeat(string(r), n) + mark
			break
		}
	} else if n < 0 {
		tr.markWidth = len(mark)
	}
	if len(args) > 0 {
		mess = fmt.Sprintf(mess, args...)
	}
	tr.Logfn("%v %v", mark, mess)
}
