package parse

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcorbin/stacklang/internal/lang"
	"github.com/jcorbin/stacklang/internal/vm"
)

var testConstants = map[string][]lang.Value{
	"true":  {lang.Boolean(true)},
	"false": {lang.Boolean(false)},
}

type compileTest struct {
	name     string
	src      string
	builtins map[string]lang.Value
	opts     []Option

	types string
	stack string

	errIs       error
	syntaxError string
	typeError   string
	incomplete  bool
}

func (ct compileTest) run(t *testing.T) {
	ctx := context.Background()
	opts := append([]Option{
		WithConstants(testConstants),
		WithBuiltins(ct.builtins),
	}, ct.opts...)
	prog, err := Compile(ctx, t.Name(), ct.src, opts...)

	switch {
	case ct.syntaxError != "":
		var se *lang.SyntaxError
		require.ErrorAs(t, err, &se)
		assert.Contains(t, se.Msg, ct.syntaxError)
		assert.Equal(t, ct.incomplete, lang.IsIncomplete(err), "expected incomplete: %v", ct.incomplete)
		return
	case ct.typeError != "":
		var te *lang.TypeError
		require.ErrorAs(t, err, &te)
		assert.Contains(t, te.Error(), ct.typeError)
		return
	case ct.errIs != nil:
		assert.True(t, errors.Is(err, ct.errIs), "expected error %v, got %v", ct.errIs, err)
		return
	}
	require.NoError(t, err)

	if ct.types != "" {
		assert.Equal(t, ct.types, lang.FormatTypes(prog.Types), "expected program types")
	}
	if ct.stack != "" {
		stack, err := vm.Execute(ctx, prog.Ops, nil, lang.NewCells(ct.builtins))
		require.NoError(t, err)
		assert.Equal(t, ct.stack, lang.Stack(stack).String(), "expected result stack")
	}
}

func TestCompile(t *testing.T) {
	for _, ct := range []compileTest{
		// stack operations
		{name: "over rotation", src: "5 42 6 over(2 1)", types: "[int int int]", stack: "[42 5 6]"},
		{name: "swap", src: "1 2 swap", stack: "[2 1]"},
		{name: "computed over offset", src: "1 2 3 over(1 1 add)", stack: "[2 3 1]"},
		{name: "dup drop", src: "1 dup dup drop", stack: "[1 1]"},
		{name: "comments", src: "1 /* two */ 3 /* multi\nline */ add", stack: "[4]"},
		{name: "strings", src: `"hello world" "" "a"`, types: "[string string string]", stack: `["hello world" "" "a"]`},

		// arithmetic and comparison
		{name: "arithmetic", src: "6 7 mul 2 sub 5 divmod", stack: "[8 0]"},
		{name: "comparison", src: "1 2 less 1 2 greater 3 3 equal not", stack: "[true false false]"},
		{name: "types", src: `5 typeof ref "s" typeof`, stack: "[int ref string]"},

		// conditionals
		{name: "if then", src: "true if { 1 } else { 2 }", types: "[int]", stack: "[1]"},
		{name: "if else", src: "false if { 1 } else { 2 }", types: "[int]", stack: "[2]"},
		{name: "if condition code", src: "1 2 less if { 10 } else { 20 }", stack: "[10]"},
		{name: "if without else", src: "true if { 1 }", typeError: "both paths through an if"},
		{name: "if branch mismatch", src: `true if { 1 } else { "s" }`, typeError: "both paths through an if must result in the same types"},
		{name: "comment before else", src: "true if { 1 } /* c */ else { 2 }", stack: "[1]"},
		{name: "comments around else", src: "false if { 1 } /* c */\n else /* d */ { 2 }", stack: "[2]"},
		{name: "unterminated comment after then", src: "true if { 1 } /* c", syntaxError: "unterminated comment", incomplete: true},
		{name: "nested if", src: "true if { false if { 1 } else { 2 } } else { 3 }", stack: "[2]"},

		// locals and references
		{name: "var get load", src: `5 var("test") get("test") load`, types: "[int]", stack: "[5]"},
		{
			name:  "reference round trip",
			src:   `5 var("test") get("test") load get("test") 7 swap store get("test") load`,
			types: "[int int]",
			stack: "[5 7]",
		},
		{name: "load is idempotent", src: `3 var("x") get("x") load get("x") load`, stack: "[3 3]"},
		{name: "var names first from top", src: `1 2 var("a" "b") get("a") load get("b") load`, stack: "[2 1]"},
		{name: "store type mismatch", src: `1 var("x") "s" get("x") store`, typeError: "expected the value to store to be type 'int'"},
		{name: "invalid local name", src: `1 var("9x")`, syntaxError: `expected a valid identifier but got "9x"`},
		{name: "undefined local", src: `get("nope")`, typeError: `unable to find local "nope"`},
		{name: "var needs strings", src: `1 var(2)`, typeError: "must be of type 'string'"},

		// procedures
		{name: "proc_type", src: "proc_type(int int) -> (int)", types: "[type]", stack: "[proc_type(int int) -> (int)]"},
		{name: "proc call", src: "2 3 proc(int int) -> (int) { add } call", types: "[int]", stack: "[5]"},
		{
			name:  "closure sees later stores",
			src:   `1 var("x") proc() -> (int) { get("x") load } 5 get("x") store call`,
			stack: "[5]",
		},
		{
			name:  "higher order",
			src:   "proc(proc_type(int) -> (int)) -> (int) { 5 swap call } proc(int) -> (int) { 2 mul } swap call",
			stack: "[10]",
		},
		{name: "proc returns mismatch", src: "proc(int) -> (int) { drop }", typeError: "declared returns are [int]"},
		{name: "proc needs a body", src: "proc(int) -> (int) add", syntaxError: `expected "{" to open a proc body`},
		{name: "proc needs an arrow", src: "proc(int) (int)", syntaxError: `expected "->" after proc parameter types`},

		// loops
		{
			name: "while sum",
			src: `0 var("sum") 0 var("i")
				while { get("i") load 5 less } {
					get("sum") load get("i") load add get("sum") store
					get("i") load 1 add get("i") store
				}
				get("sum") load`,
			stack: "[10]",
		},
		{
			name:  "while with inline condition",
			src:   `0 var("i") while get("i") load 3 less { get("i") load 1 add get("i") store } get("i") load`,
			stack: "[3]",
		},
		{name: "while body must be neutral", src: `0 var("i") while { get("i") load 3 less } { 1 }`, typeError: "the while body must leave the stack as it was"},
		{name: "while condition must add a bool", src: `while { 1 } { }`, typeError: "the while condition"},

		// constants
		{name: "const", src: `const("five" 5) five five add`, stack: "[10]"},
		{name: "const sequence", src: `const("pair" 1 "b") pair`, types: "[int string]", stack: `[1 "b"]`},
		{name: "const name computed by const", src: `const("name" "counter") 1 var(name) get(name) load`, stack: "[1]"},
		{name: "const shadowing", src: `const("x" 1) true if { const("x" 2) x } else { x }`, stack: "[2]"},
		{name: "const scoped to block", src: `true if { const("y" 2) } else { } y`, typeError: `unknown identifier "y"`},
		{name: "const redeclaration", src: `const("x" 1) const("x" 2)`, typeError: `redeclaration of constant "x"`},
		{name: "predeclared redeclaration", src: `const("true" 1)`, typeError: `redeclaration of constant "true"`},
		{name: "const needs a name", src: `const(1 2)`, typeError: "expected the first element on the stack to be the const name"},
		{name: "const invalid name", src: `const("a b" 1)`, syntaxError: "expected a valid identifier"},

		// builtins
		{
			name:     "builtin local",
			src:      `get("answer") load`,
			builtins: map[string]lang.Value{"answer": lang.Integer(42)},
			stack:    "[42]",
		},
		{
			name:     "builtin in compile-time code",
			src:      `1 2 3 over(get("deep") load)`,
			builtins: map[string]lang.Value{"deep": lang.Integer(2)},
			stack:    "[2 3 1]",
		},
		{
			name:  "initial types",
			src:   "1 add",
			opts:  []Option{WithInitialTypes([]lang.Type{lang.IntegerType})},
			types: "[int]",
		},

		// errors
		{name: "unknown identifier", src: "1 foo", typeError: `1:3: type error: unknown identifier "foo"`},
		{name: "located type error", src: `1 "a" add`, typeError: "1:7: type error: add: cannot add types 'int' and 'string'"},
		{name: "unexpected character", src: "1 @", syntaxError: "unexpected character '@'"},
		{name: "unmatched close", src: "1 )", syntaxError: "unexpected ')'"},
		{name: "wrong delimiter", src: "over(1}", syntaxError: "cannot use '}' to close over"},
		{name: "wrong block delimiter", src: "true if { 1 ) else { 2 }", syntaxError: "cannot use ')' to close then block of an if"},
		{name: "unexpected block", src: "1 { 2 }", syntaxError: "unexpected '{'"},
		{name: "stray else", src: "1 else { }", syntaxError: "else must directly follow"},
		{name: "negative offset", src: "1 2 over(0 1 sub)", syntaxError: "all over offsets must be non-negative but got -1"},
		{name: "over needs ints", src: `1 over("a")`, typeError: "all elements left on the stack must be of type 'int' but element 0 is 'string'"},
		{name: "compile-time division by zero", src: "1 2 over(1 0 divmod)", errIs: lang.ErrDivideByZero},
		{name: "integer overflow", src: "99999999999999999999", syntaxError: "out of range"},
		{name: "unbalanced enter", src: "over(", syntaxError: "unexpected end of input inside over", incomplete: true},
		{name: "incomplete proc", src: "proc(int) -> (int) {\n  1 add\n", syntaxError: "unexpected end of input inside proc body", incomplete: true},
		{name: "incomplete arrow", src: "proc(int)", syntaxError: `expected "->"`, incomplete: true},
		{name: "incomplete string", src: `"abc`, syntaxError: "unterminated string literal", incomplete: true},
		{name: "incomplete comment", src: "1 /* ", syntaxError: "unterminated comment", incomplete: true},
		{name: "incomplete if", src: "true if", syntaxError: "inside if condition", incomplete: true},
		{name: "step limit", src: "1 over(0 var(\"i\") while { true } { })", opts: []Option{WithStepLimit(100)}, errIs: lang.ErrStepLimit},
	} {
		t.Run(ct.name, ct.run)
	}
}

func TestCompile_locations(t *testing.T) {
	prog, err := Compile(context.Background(), "test.stk", "1\n  2 add\n")
	require.NoError(t, err)
	require.Len(t, prog.Ops, 5)
	assert.Equal(t, "test.stk", prog.Name)
	assert.Equal(t, lang.Location{Name: "test.stk", Line: 1, Col: 1}, prog.Ops[1].Loc)
	assert.Equal(t, lang.Location{Name: "test.stk", Line: 2, Col: 3}, prog.Ops[2].Loc)
	assert.Equal(t, lang.Location{Name: "test.stk", Line: 2, Col: 5}, prog.Ops[3].Loc)

	_, err = Compile(context.Background(), "test.stk", "proc(int) -> (int) {\n  1 add\n")
	var se *lang.SyntaxError
	require.ErrorAs(t, err, &se)
	require.NotNil(t, se.Open)
	assert.Equal(t, "test.stk:1:1", se.Open.String())
	assert.Equal(t, "test.stk:3:1", se.Loc.String())
}

func TestCompile_shape(t *testing.T) {
	prog, err := Compile(context.Background(), "", `1 var("x") true if { get("x") load drop }`, WithConstants(testConstants))
	require.NoError(t, err)
	var out bytes.Buffer
	require.NoError(t, lang.DumpOps(&out, prog.Ops, false))
	assert.Equal(t, `# Ops
  enter_scope
  push(1)
  var("x")
  push(true)
  if
    then:
      enter_scope
      get("x")
      load
      drop
      exit_scope
  exit_scope
`, out.String())
}

func TestCompile_dumpTypes(t *testing.T) {
	var out bytes.Buffer
	_, err := Compile(context.Background(), "", `1 "a" ???`, WithDumpOutput(&out))
	assert.True(t, errors.Is(err, lang.ErrTypeDump), "expected a type dump error, got %v", err)
	assert.Equal(t, "Current types on the stack:\n  string\n  int\n", out.String())
}

func TestCompile_oneCellSetPerCompilation(t *testing.T) {
	// compile-time code that stores into a builtin is seen by later
	// compile-time code, but not by the original builtin value
	counter := lang.Integer(0)
	prog, err := Compile(context.Background(), "",
		`over(get("n") load 1 add get("n") store 0) over(get("n") load)`,
		WithBuiltins(map[string]lang.Value{"n": counter}),
	)
	require.Error(t, err, "over on an empty stack must fail type checking")
	assert.Nil(t, prog)

	prog, err = Compile(context.Background(), "",
		`1 2 over(get("n") load 1 add get("n") store 0) over(get("n") load)`,
		WithBuiltins(map[string]lang.Value{"n": counter}),
	)
	require.NoError(t, err)
	require.Len(t, prog.Ops, 6)
	assert.Equal(t, "over(0)", prog.Ops[3].String())
	assert.Equal(t, "over(1)", prog.Ops[4].String())
}

func TestIsIdentifier(t *testing.T) {
	for _, s := range []string{"x", "_", "snake_case", "x9", "CamelCase"} {
		assert.True(t, IsIdentifier(s), "%q", s)
	}
	for _, s := range []string{"", "9x", "a b", "a-b", "é"} {
		assert.False(t, IsIdentifier(s), "%q", s)
	}
}
