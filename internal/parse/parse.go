// Package parse compiles source text into a type-checked op tree.
//
// Bracketed constructs whose content must be known while parsing, like the
// offsets of over(...) or the names of var(...), are compiled as small
// programs of their own, then type checked and executed on the spot; their
// resulting values shape the op that the construct emits.
package parse

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jcorbin/stacklang/internal/check"
	"github.com/jcorbin/stacklang/internal/fileinput"
	"github.com/jcorbin/stacklang/internal/lang"
	"github.com/jcorbin/stacklang/internal/logio"
)

// Compile parses source, named for error locations, into a program wrapped
// in one outer scope and type checked against any builtins. Errors are
// *lang.SyntaxError or *lang.TypeError, or any error raised by compile-time
// execution, such as a *lang.ArithmeticError.
func Compile(ctx context.Context, name, source string, opts ...Option) (*lang.Program, error) {
	return CompileSource(ctx, fileinput.NewSource(name, source), opts...)
}

// CompileSource is like Compile, but consumes an already opened source.
func CompileSource(ctx context.Context, src *fileinput.Source, opts ...Option) (*lang.Program, error) {
	c := compiler{ctx: ctx, dumpOut: io.Discard}
	Options(opts...).apply(&c)
	return c.compile(src)
}

type compiler struct {
	ctx   context.Context
	trace logio.Trace

	builtins    map[string]lang.Value
	predeclared map[string][]lang.Value
	initial     []lang.Type
	dumpOut     io.Writer
	stepLimit   int
	maxDepth    int

	// compile-time code sees the builtins through one set of cells for the
	// whole compilation
	builtinTypes map[string]lang.Type
	cells        map[string]*lang.Cell

	src       *fileinput.Source
	scopes    []scope
	ops       []lang.Op
	constants []map[string][]lang.Value
}

var simpleOps = map[string]lang.Op{
	"int":     lang.PushOp(lang.TypeValue{Of: lang.IntegerType}),
	"dup":     lang.CodeDup.Op(),
	"drop":    lang.CodeDrop.Op(),
	"ref":     lang.CodeMakeReferenceType.Op(),
	"swap":    lang.OverOp(1),
	"add":     lang.CodeAdd.Op(),
	"sub":     lang.CodeSubtract.Op(),
	"mul":     lang.CodeMultiply.Op(),
	"divmod":  lang.CodeDivMod.Op(),
	"load":    lang.CodeLoad.Op(),
	"store":   lang.CodeStore.Op(),
	"call":    lang.CodeCall.Op(),
	"greater": lang.CodeGreaterThan.Op(),
	"less":    lang.CodeLessThan.Op(),
	"equal":   lang.CodeEqual.Op(),
	"not":     lang.CodeNot.Op(),
	"typeof":  lang.CodeTypeOf.Op(),
}

var parenScopes = map[string]scopeKind{
	"over":      scopeOver,
	"var":       scopeVar,
	"get":       scopeGet,
	"proc_type": scopeProcTypeParams,
	"proc":      scopeProcParams,
	"const":     scopeConst,
}

func (c *compiler) compile(src *fileinput.Source) (*lang.Program, error) {
	c.src = src
	c.builtinTypes = lang.TypesOf(c.builtins)
	c.cells = lang.NewCells(c.builtins)
	outermost := make(map[string][]lang.Value, len(c.predeclared))
	for name, values := range c.predeclared {
		outermost[name] = values
	}
	c.constants = []map[string][]lang.Value{outermost}
	c.ops = []lang.Op{lang.CodeEnterScope.Op().At(src.Location)}

	for {
		if err := c.skip(); err != nil {
			return nil, err
		}
		if c.src.Done() {
			break
		}
		if err := c.token(); err != nil {
			return nil, err
		}
	}

	if n := len(c.scopes); n > 0 {
		sc := c.scopes[n-1]
		return nil, &lang.SyntaxError{
			Loc:        c.src.Location,
			Msg:        fmt.Sprintf("unexpected end of input inside %v", sc.kind),
			Open:       &sc.open,
			Incomplete: true,
		}
	}

	ops := append(c.ops, lang.CodeExitScope.Op().At(c.src.Location))
	types, err := check.Check(ops, c.initial, c.builtinTypes, c.checkOptions()...)
	if err != nil {
		return nil, err
	}
	return &lang.Program{Name: src.Name, Ops: ops, Types: types}, nil
}

// skip consumes whitespace and block comments.
func (c *compiler) skip() error {
	for {
		c.src.SkipSpace()
		if !c.src.HasPrefix("/*") {
			return nil
		}
		open := c.src.Location
		end := strings.Index(c.src.Rest()[2:], "*/")
		if end < 0 {
			c.src.Advance(len(c.src.Rest()))
			return &lang.SyntaxError{
				Loc:        c.src.Location,
				Msg:        "unterminated comment",
				Open:       &open,
				Incomplete: true,
			}
		}
		c.src.Advance(end + 4)
	}
}

func (c *compiler) token() error {
	loc := c.src.Location
	r := c.src.Peek()
	switch {

	case c.src.HasPrefix("???"):
		c.src.Advance(3)
		c.emit(loc, lang.CodeDumpTypes.Op())

	case isDigit(r):
		text := c.src.AdvanceWhile(isDigit)
		n, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return &lang.SyntaxError{Loc: loc, Msg: fmt.Sprintf("integer literal %v is out of range", text)}
		}
		c.emit(loc, lang.PushOp(lang.Integer(n)))

	case r == '"':
		rest := c.src.Rest()
		end := strings.IndexByte(rest[1:], '"')
		if end < 0 {
			c.src.Advance(len(rest))
			return &lang.SyntaxError{
				Loc:        c.src.Location,
				Msg:        "unterminated string literal",
				Open:       &loc,
				Incomplete: true,
			}
		}
		c.src.Advance(end + 2)
		c.emit(loc, lang.PushOp(lang.String(rest[1:end+1])))

	case isIdentStart(r):
		return c.identifier(loc, c.src.AdvanceWhile(isIdentChar))

	case r == '{':
		c.src.Advance(1)
		return c.openBlock(loc)

	case r == ')' || r == '}':
		c.src.Advance(1)
		return c.close(loc, r)

	default:
		return &lang.SyntaxError{Loc: loc, Msg: fmt.Sprintf("unexpected character %q", r)}
	}
	return nil
}

func (c *compiler) identifier(loc lang.Location, name string) error {
	if op, ok := simpleOps[name]; ok {
		c.emit(loc, op)
		return nil
	}
	if kind, ok := parenScopes[name]; ok {
		if err := c.expect(loc, "after "+name, "("); err != nil {
			return err
		}
		c.push(scope{kind: kind, open: loc})
		return nil
	}

	switch name {
	case "if":
		c.scopes = append(c.scopes, scope{kind: scopeIfCondition, open: loc})
		return nil

	case "while":
		if err := c.skip(); err != nil {
			return err
		}
		braced := c.src.Peek() == '{'
		if braced {
			c.src.Advance(1)
		}
		c.push(scope{kind: scopeWhileCondition, open: loc, braced: braced})
		return nil

	case "else":
		return &lang.SyntaxError{Loc: loc, Msg: "else must directly follow the then block of an if, and be followed by a block"}
	}

	for i := len(c.constants) - 1; i >= 0; i-- {
		if values, defined := c.constants[i][name]; defined {
			for _, v := range values {
				c.emit(loc, lang.PushOp(v))
			}
			return nil
		}
	}
	return &lang.TypeError{Loc: loc, Msg: fmt.Sprintf("unknown identifier %q", name)}
}

func (c *compiler) emit(loc lang.Location, op lang.Op) {
	c.ops = append(c.ops, op.At(loc))
}

// expect consumes each of the given tokens in turn, allowing space around
// them.
func (c *compiler) expect(open lang.Location, what string, tokens ...string) error {
	for _, tok := range tokens {
		if err := c.skip(); err != nil {
			return err
		}
		if c.src.Done() {
			return &lang.SyntaxError{
				Loc:        c.src.Location,
				Msg:        fmt.Sprintf("expected %q %v", tok, what),
				Open:       &open,
				Incomplete: true,
			}
		}
		if !c.src.HasPrefix(tok) {
			return &lang.SyntaxError{
				Loc: c.src.Location,
				Msg: fmt.Sprintf("expected %q %v but got %q", tok, what, c.src.Peek()),
			}
		}
		c.src.Advance(len(tok))
	}
	return nil
}

// push opens a scope that accumulates its own ops and constants.
func (c *compiler) push(sc scope) {
	sc.outer = c.ops
	c.scopes = append(c.scopes, sc)
	c.ops = []lang.Op{lang.CodeEnterScope.Op().At(c.src.Location)}
	c.constants = append(c.constants, make(map[string][]lang.Value))
}

// pop closes the innermost scope opened by push, returning it along with its
// accumulated ops, and resumes the outer accumulator.
func (c *compiler) pop(loc lang.Location) (scope, []lang.Op) {
	ops := append(c.ops, lang.CodeExitScope.Op().At(loc))
	c.constants = c.constants[:len(c.constants)-1]
	i := len(c.scopes) - 1
	sc := c.scopes[i]
	c.scopes = c.scopes[:i]
	c.ops = sc.outer
	return sc, ops
}

func (c *compiler) top() *scope {
	if i := len(c.scopes) - 1; i >= 0 {
		return &c.scopes[i]
	}
	return nil
}

func (c *compiler) openBlock(loc lang.Location) error {
	if sc := c.top(); sc != nil {
		switch {
		case sc.kind == scopeIfCondition:
			open := sc.open
			c.scopes = c.scopes[:len(c.scopes)-1]
			c.push(scope{kind: scopeIfThen, open: open})
			return nil

		case sc.kind == scopeWhileCondition && !sc.braced:
			sc, cond := c.pop(loc)
			c.push(scope{kind: scopeWhileBody, open: sc.open, block: cond})
			return nil
		}
	}
	return &lang.SyntaxError{Loc: loc, Msg: "unexpected '{'"}
}

func (c *compiler) close(loc lang.Location, delim rune) error {
	top := c.top()
	if top == nil {
		return &lang.SyntaxError{Loc: loc, Msg: fmt.Sprintf("unexpected %q", delim)}
	}
	if want := top.closer(); want != delim {
		open := top.open
		msg := fmt.Sprintf("cannot use %q to close %v", delim, top.kind)
		if want == 0 {
			msg = fmt.Sprintf("cannot close %v before its block is opened", top.kind)
		}
		return &lang.SyntaxError{Loc: loc, Msg: msg, Open: &open}
	}

	sc, ops := c.pop(loc)
	switch sc.kind {

	case scopeOver:
		values, err := c.eval(sc, ops, allOf(lang.IntegerType))
		if err != nil {
			return err
		}
		offsets := make([]int, len(values))
		for i, v := range values {
			n := v.(lang.Integer)
			if n < 0 {
				return &lang.SyntaxError{
					Loc: sc.open,
					Msg: fmt.Sprintf("all over offsets must be non-negative but got %v", n),
				}
			}
			offsets[i] = int(n)
		}
		c.emit(sc.open, lang.OverOp(offsets...))

	case scopeVar, scopeGet:
		values, err := c.eval(sc, ops, allOf(lang.StringType))
		if err != nil {
			return err
		}
		names := make([]string, len(values))
		for i, v := range values {
			if names[i], err = identifierValue(sc.open, v); err != nil {
				return err
			}
		}
		if sc.kind == scopeVar {
			c.emit(sc.open, lang.NewLocalsOp(names...))
		} else {
			c.emit(sc.open, lang.GetLocalsOp(names...))
		}

	case scopeProcTypeParams, scopeProcParams:
		params, err := c.evalTypes(sc, ops)
		if err != nil {
			return err
		}
		if err := c.expect(sc.open, "after "+sc.kind.String(), "->", "("); err != nil {
			return err
		}
		next := scopeProcTypeReturns
		if sc.kind == scopeProcParams {
			next = scopeProcReturns
		}
		c.push(scope{kind: next, open: sc.open, params: params})

	case scopeProcTypeReturns:
		returns, err := c.evalTypes(sc, ops)
		if err != nil {
			return err
		}
		c.emit(sc.open, lang.PushOp(lang.TypeValue{Of: lang.ProcType(sc.params, returns)}))

	case scopeProcReturns:
		returns, err := c.evalTypes(sc, ops)
		if err != nil {
			return err
		}
		if err := c.expect(sc.open, "to open a proc body", "{"); err != nil {
			return err
		}
		c.push(scope{kind: scopeProcBody, open: sc.open, params: sc.params, returns: returns})

	case scopeProcBody:
		c.emit(sc.open, lang.ProcOp(lang.ProcType(sc.params, sc.returns), ops))

	case scopeIfThen:
		if c.elseFollows() {
			c.push(scope{kind: scopeIfElse, open: sc.open, block: ops})
		} else {
			c.emit(sc.open, lang.IfOp(ops, nil))
		}

	case scopeIfElse:
		c.emit(sc.open, lang.IfOp(sc.block, ops))

	case scopeWhileCondition:
		if err := c.expect(sc.open, "to open a while body", "{"); err != nil {
			return err
		}
		c.push(scope{kind: scopeWhileBody, open: sc.open, block: ops})

	case scopeWhileBody:
		c.emit(sc.open, lang.WhileOp(sc.block, ops))

	case scopeConst:
		return c.declareConst(sc, ops)
	}
	return nil
}

// elseFollows consumes an "else {" if one comes next, skipping any space or
// comments around the else.
func (c *compiler) elseFollows() bool {
	saved := *c.src
	if c.skip() == nil && c.src.HasPrefix("else") {
		c.src.Advance(len("else"))
		if !isIdentChar(c.src.Peek()) && c.skip() == nil && c.src.HasPrefix("{") {
			c.src.Advance(1)
			return true
		}
	}
	*c.src = saved
	return false
}

func (c *compiler) declareConst(sc scope, ops []lang.Op) error {
	values, err := c.eval(sc, ops, func(types []lang.Type) string {
		if len(types) == 0 {
			return "expected the const name on the stack but got nothing"
		}
		if !types[0].Equal(lang.StringType) {
			return fmt.Sprintf("expected the first element on the stack to be the const name but got '%v'", types[0])
		}
		return ""
	})
	if err != nil {
		return err
	}
	name, err := identifierValue(sc.open, values[0])
	if err != nil {
		return err
	}
	constants := c.constants[len(c.constants)-1]
	if _, defined := constants[name]; defined {
		return &lang.TypeError{Loc: sc.open, Op: "const", Msg: fmt.Sprintf("redeclaration of constant %q", name)}
	}
	constants[name] = values[1:]
	return nil
}

// IsIdentifier returns true if s is usable as a local or constant name.
func IsIdentifier(s string) bool {
	for i, r := range s {
		if i == 0 && !isIdentStart(r) || !isIdentChar(r) {
			return false
		}
	}
	return s != ""
}

func identifierValue(loc lang.Location, v lang.Value) (string, error) {
	s := string(v.(lang.String))
	if !IsIdentifier(s) {
		return "", &lang.SyntaxError{Loc: loc, Msg: fmt.Sprintf("expected a valid identifier but got %q", s)}
	}
	return s, nil
}

func isDigit(r rune) bool      { return '0' <= r && r <= '9' }
func isIdentStart(r rune) bool { return r == '_' || 'a' <= r && r <= 'z' || 'A' <= r && r <= 'Z' }
func isIdentChar(r rune) bool  { return isIdentStart(r) || isDigit(r) }
