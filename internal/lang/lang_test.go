package lang

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestType_String(t *testing.T) {
	for _, tc := range []struct {
		typ  Type
		want string
	}{
		{NullType, "null_type"},
		{TypeType, "type"},
		{StringType, "string"},
		{BooleanType, "bool"},
		{CharacterType, "char"},
		{IntegerType, "int"},
		{RefType(IntegerType), "int ref"},
		{RefType(RefType(StringType)), "string ref ref"},
		{ProcType(nil, nil), "proc_type() -> ()"},
		{ProcType([]Type{IntegerType, IntegerType}, []Type{IntegerType}), "proc_type(int int) -> (int)"},
		{RefType(ProcType([]Type{RefType(BooleanType)}, nil)), "proc_type(bool ref) -> () ref"},
	} {
		assert.Equal(t, tc.want, tc.typ.String())
	}
	assert.Equal(t, "[int bool]", FormatTypes([]Type{IntegerType, BooleanType}))
}

func TestType_Equal(t *testing.T) {
	binop := ProcType([]Type{IntegerType, IntegerType}, []Type{IntegerType})
	assert.True(t, binop.Equal(ProcType([]Type{IntegerType, IntegerType}, []Type{IntegerType})))
	assert.False(t, binop.Equal(ProcType([]Type{IntegerType}, []Type{IntegerType, IntegerType})))
	assert.False(t, binop.Equal(IntegerType))
	assert.True(t, RefType(IntegerType).Equal(RefType(IntegerType)))
	assert.False(t, RefType(IntegerType).Equal(RefType(StringType)))
	assert.False(t, TypesEqual([]Type{IntegerType}, nil))
	assert.True(t, TypesEqual(nil, []Type{}))

	orig := []Type{IntegerType}
	clone := CloneTypes(orig)
	clone[0] = StringType
	assert.Equal(t, IntegerType, orig[0])
}

func TestEqual(t *testing.T) {
	body := &Block{}
	sig := ProcType(nil, nil)
	cell := NewCell(Integer(1))
	native := &Native{Sig: sig, Name: "nop", Fn: func(*Stack) error { return nil }}

	for _, tc := range []struct {
		name  string
		a, b  Value
		equal bool
	}{
		{"ints", Integer(3), Integer(3), true},
		{"different ints", Integer(3), Integer(4), false},
		{"int vs string", Integer(3), String("3"), false},
		{"strings", String("a"), String("a"), true},
		{"bools", Boolean(true), Boolean(false), false},
		{"chars", Character('x'), Character('x'), true},
		{"nulls", Null{}, Null{}, true},
		{"types", TypeValue{RefType(IntegerType)}, TypeValue{RefType(IntegerType)}, true},
		{"different types", TypeValue{IntegerType}, TypeValue{StringType}, false},
		{"same body", &Procedure{Sig: sig, Body: body}, &Procedure{Sig: sig, Body: body}, true},
		{"other body", &Procedure{Sig: sig, Body: body}, &Procedure{Sig: sig, Body: &Block{}}, false},
		{"same cell", Reference{cell}, Reference{cell}, true},
		{"other cell", Reference{cell}, Reference{NewCell(Integer(1))}, false},
		{"natives", native, native, false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.equal, Equal(tc.a, tc.b))
		})
	}
}

func TestValue_String(t *testing.T) {
	assert.Equal(t, "null", Null{}.String())
	assert.Equal(t, `"hi"`, String("hi").String())
	assert.Equal(t, "'x'", Character('x').String())
	assert.Equal(t, "<NUL>", Character(0).String())
	assert.Equal(t, "-7", Integer(-7).String())
	assert.Equal(t, "int ref", TypeValue{RefType(IntegerType)}.String())
	assert.Equal(t, "42", Reference{NewCell(Integer(42))}.String())
	assert.Equal(t, `[1 "a" true]`, Stack{Integer(1), String("a"), Boolean(true)}.String())
}

func TestCell(t *testing.T) {
	cell := NewCell(Integer(5))
	ref := Reference{cell}
	assert.Equal(t, RefType(IntegerType), ref.Type())

	assert.Equal(t, Integer(5), cell.Load())
	assert.Equal(t, Integer(5), cell.Load(), "load must not disturb the cell")

	require.NoError(t, cell.Store(Integer(9)))
	assert.Equal(t, Integer(9), Reference{cell}.Cell.Load(), "aliases must observe stores")

	err := cell.Store(String("nope"))
	assert.EqualError(t, err, "cannot store string into int ref")
	assert.Equal(t, Integer(9), cell.Load())

	cells := NewCells(map[string]Value{"a": Integer(1)})
	assert.Equal(t, Integer(1), cells["a"].Load())
	assert.Equal(t, map[string]Type{"a": IntegerType}, TypesOf(map[string]Value{"a": Integer(1)}))
}

func TestStack(t *testing.T) {
	var s Stack
	s.Push(Integer(1), String("two"))
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, Integer(1), s.Peek(1))
	assert.Equal(t, String("two"), PopAs[String](&s))

	assert.PanicsWithError(t,
		"internal invariant violation: expected a lang.String value but got lang.Integer 1",
		func() { PopAs[String](&s) })
	assert.PanicsWithError(t,
		"internal invariant violation: stack underflow",
		func() { s.Pop() })
}

func TestEnv(t *testing.T) {
	env := NewEnv(map[string]int{"builtin": 0})
	assert.Equal(t, 1, env.Depth())
	assert.False(t, env.Exit(), "must not close the outermost scope")

	env.Enter()
	assert.True(t, env.Declare("x", 1))
	assert.False(t, env.Declare("x", 2), "must reject redeclaration")

	env.Enter()
	assert.True(t, env.Declare("x", 3), "may shadow an outer scope")
	v, found := env.Lookup("x")
	assert.True(t, found)
	assert.Equal(t, 3, v)
	assert.Equal(t, map[string]int{"builtin": 0, "x": 3}, env.Snapshot())

	assert.True(t, env.Exit())
	v, _ = env.Lookup("x")
	assert.Equal(t, 1, v)
	assert.True(t, env.Exit())
	_, found = env.Lookup("x")
	assert.False(t, found)
	assert.Equal(t, 1, env.Depth())
}

func TestErrors(t *testing.T) {
	loc := Location{Name: "t.sl", Line: 2, Col: 5}

	err := error(&SyntaxError{Loc: loc, Msg: "unexpected character '$'"})
	assert.EqualError(t, err, "t.sl:2:5: syntax error: unexpected character '$'")
	assert.False(t, IsIncomplete(err))
	assert.True(t, IsIncomplete(fmt.Errorf("wrapped: %w", &SyntaxError{Incomplete: true})))

	err = &TypeError{Loc: loc, Op: "add", Msg: "cannot add types 'int' and 'string'"}
	assert.EqualError(t, err, "t.sl:2:5: type error: add: cannot add types 'int' and 'string'")

	err = &TypeError{Op: "???", Err: ErrTypeDump}
	assert.True(t, errors.Is(err, ErrTypeDump))
	assert.EqualError(t, err, "type error: ???: dumped all the types on the stack")

	err = &ArithmeticError{Loc: loc, Err: ErrDivideByZero}
	assert.True(t, errors.Is(err, ErrDivideByZero))
	assert.EqualError(t, err, "t.sl:2:5: arithmetic error: division by zero")

	err = &InternalError{Msg: "stack underflow", Stack: "goroutine 1"}
	assert.EqualError(t, err, "internal invariant violation: stack underflow")
	assert.Contains(t, fmt.Sprintf("%+v", err), "Panic stack: goroutine 1")
}

func TestDumpOps(t *testing.T) {
	loc := func(line, col int) Location { return Location{Name: "d", Line: line, Col: col} }
	sig := ProcType([]Type{IntegerType}, []Type{IntegerType})
	ops := []Op{
		CodeEnterScope.Op(),
		PushOp(Integer(1)).At(loc(1, 1)),
		PushOp(Boolean(true)).At(loc(1, 3)),
		IfOp(
			[]Op{CodeEnterScope.Op(), OverOp(1, 0), CodeExitScope.Op()},
			nil,
		).At(loc(1, 8)),
		ProcOp(sig, []Op{CodeDup.Op().At(loc(2, 1)), CodeAdd.Op()}).At(loc(2, 10)),
		WhileOp(
			[]Op{PushOp(Boolean(false))},
			[]Op{GetLocalsOp("x")},
		).At(loc(3, 1)),
		CodeExitScope.Op(),
	}

	var buf bytes.Buffer
	require.NoError(t, DumpOps(&buf, ops, false))
	assert.Equal(t, `# Ops
  enter_scope
  push(1)
  push(true)
  if
    then:
      enter_scope
      over(1 0)
      exit_scope
  make_proc proc_type(int) -> (int)
    body:
      dup
      add
  while
    cond:
      push(false)
    loop:
      get("x")
  exit_scope
`, buf.String())

	buf.Reset()
	require.NoError(t, DumpOps(&buf, ops[:2], true))
	assert.Equal(t, "# Ops\n        enter_scope\nd:1:1   push(1)\n", buf.String())

	buf.Reset()
	require.NoError(t, DumpTypes(&buf, []Type{IntegerType, StringType}))
	assert.Equal(t, "Current types on the stack:\n  string\n  int\n", buf.String())
}
