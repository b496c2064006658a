package fileinput

import (
	"strings"
	"testing"
	"unicode"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type namedReader struct {
	*strings.Reader
	name string
}

func (nr namedReader) Name() string { return nr.name }

func TestSource(t *testing.T) {
	src := NewSource("test", "ab\n  cd")
	assert.Equal(t, "test:1:1", src.Location.String())
	assert.Equal(t, 'a', src.Peek())

	assert.Equal(t, "ab", src.AdvanceWhile(unicode.IsLetter))
	assert.Equal(t, "test:1:3", src.Location.String())

	src.SkipSpace()
	assert.Equal(t, "test:2:3", src.Location.String())
	assert.True(t, src.HasPrefix("cd"))

	assert.Equal(t, "cd", src.Advance(10))
	assert.True(t, src.Done())
	assert.Equal(t, rune(0), src.Peek())
}

func TestReadSource(t *testing.T) {
	src, err := ReadSource(namedReader{strings.NewReader("1 2 add"), "prog.sl"})
	require.NoError(t, err)
	assert.Equal(t, "prog.sl:1:1", src.Location.String())
	assert.Equal(t, "1 2 add", src.Rest())

	src, err = ReadSource(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, "<unnamed *strings.Reader>", src.Name)
}

func TestLocation(t *testing.T) {
	assert.True(t, Location{}.IsZero())
	assert.Equal(t, "3:4", Location{Line: 3, Col: 4}.String())
}
