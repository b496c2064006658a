package logio

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogger(t *testing.T) {
	var out bytes.Buffer
	var log Logger
	log.SetOutput(&out)

	log.Printf("TRACE", "step %v", 1)
	assert.Equal(t, 0, log.ExitCode())

	log.ErrorIf(nil)
	log.ErrorIf(errors.New("bang"))
	assert.Equal(t, 1, log.ExitCode())

	log.Leveledf("INFO")("done")
	assert.Equal(t, "TRACE: step 1\nERROR: bang\nINFO: done\n", out.String())
}

func TestWriter(t *testing.T) {
	var lines []string
	w := Writer{Logf: func(mess string, args ...interface{}) {
		lines = append(lines, fmt.Sprintf(mess, args...))
	}}
	fmt.Fprintf(&w, "one\ntw")
	assert.Equal(t, []string{"one"}, lines)
	fmt.Fprintf(&w, "o\nthree")
	assert.Equal(t, []string{"one", "two"}, lines)
	assert.NoError(t, w.Flush())
	assert.Equal(t, []string{"one", "two", "three"}, lines)
}

func TestTrace(t *testing.T) {
	var tr Trace
	assert.False(t, tr.Enabled())
	tr.Logf("#", "ignored")

	var lines []string
	tr.Logfn = func(mess string, args ...interface{}) {
		lines = append(lines, fmt.Sprintf(mess, args...))
	}
	tr.Logf(">>>", "wide")
	tr.Logf(">", "narrow")
	restore := tr.WithPrefix("  ")
	tr.Logf(">", "nested %v", 2)
	restore()
	tr.Logf(">", "back")
	assert.Equal(t, []string{
		">>> wide",
		">>> narrow",
		"  >>> nested 2",
		">>> back",
	}, lines)
}
