package builtins

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcorbin/stacklang/internal/lang"
	"github.com/jcorbin/stacklang/internal/parse"
	"github.com/jcorbin/stacklang/internal/vm"
)

func run(t *testing.T, bio *IO, src string) []lang.Value {
	ctx := context.Background()
	natives := bio.Natives()
	prog, err := parse.Compile(ctx, t.Name(), src,
		parse.WithBuiltins(natives),
		parse.WithConstants(bio.Constants()))
	require.NoError(t, err)
	stack, err := vm.Execute(ctx, prog.Ops, nil, lang.NewCells(natives))
	require.NoError(t, err)
	require.NoError(t, bio.Flush())
	return stack
}

func TestNatives_print(t *testing.T) {
	var out strings.Builder
	bio := New(WithOutput(&out))
	run(t, bio, `
		"hello" print_string call println call
		42 print_int call
		int ref print_type call
		proc_type(string) -> (bool) print_type call
		"bye" get("print_string") load call println call
	`)
	assert.Equal(t, "hello\n42\nint ref\nproc_type(string) -> (bool)\nbye\n", out.String())
}

func TestNatives_readLine(t *testing.T) {
	var out strings.Builder
	bio := New(
		WithInput(strings.NewReader("Ada\r\nsecond")),
		WithOutput(&out),
	)
	stack := run(t, bio, `"name? " print_string call read_line call read_line call`)
	assert.Equal(t, `["Ada" "second"]`, lang.Stack(stack).String())
	assert.Equal(t, "name? ", out.String())
}

func TestNatives_readLineEOF(t *testing.T) {
	bio := New()
	ctx := context.Background()
	prog, err := parse.Compile(ctx, "eof", "read_line call drop", parse.WithConstants(bio.Constants()))
	require.NoError(t, err)
	_, err = vm.Execute(ctx, prog.Ops, nil, nil)
	assert.ErrorIs(t, err, io.EOF)
}

func TestNatives_tee(t *testing.T) {
	var out, tee strings.Builder
	bio := New(WithOutput(&out), WithTee(&tee))
	run(t, bio, `7 print_int call`)
	assert.Equal(t, "7\n", out.String())
	assert.Equal(t, "7\n", tee.String())
}

func TestConstants(t *testing.T) {
	stack := run(t, New(), `true false null null_type type string bool char`)
	assert.Equal(t, "[true false null null_type type string bool char]", lang.Stack(stack).String())

	constants := New().Constants()
	for name := range New().Natives() {
		require.Len(t, constants[name], 1, "expected native %v as a constant", name)
		assert.Equal(t, lang.KindProcedure, constants[name][0].Type().Kind)
	}
}
