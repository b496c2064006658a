// Package vm implements a tree-walking stack machine that executes
// type-checked op trees.
package vm

import (
	"context"
	"errors"
	"fmt"

	"github.com/jcorbin/stacklang/internal/lang"
	"github.com/jcorbin/stacklang/internal/logio"
	"github.com/jcorbin/stacklang/internal/panicerr"
)

// Execute runs ops against a copy of stack, with locals as the outermost
// scope, and returns the resulting stack.
//
// Ops are assumed to have passed the type checker; any violation found at
// runtime is returned as a *lang.InternalError. Division by zero is returned
// as a *lang.ArithmeticError, and errors from native procedures are returned
// as is. The stack returned alongside an error is the state at the point of
// failure.
func Execute(ctx context.Context, ops []lang.Op, stack []lang.Value, locals map[string]*lang.Cell, opts ...Option) ([]lang.Value, error) {
	m := machine{
		ctx:      ctx,
		maxDepth: DefaultMaxDepth,
		stack:    append(lang.Stack(nil), stack...),
	}
	Options(opts...).apply(&m)
	err := panicerr.Recover("vm", func() error {
		m.run(ops, lang.NewEnv(locals))
		return nil
	})
	return m.stack, m.haltedWith(err)
}

type machine struct {
	ctx   context.Context
	trace logio.Trace

	stepLimit int
	maxDepth  int
	steps     int
	depth     int

	op    lang.Op
	stack lang.Stack
}

type haltError struct{ error }

func (err haltError) Error() string {
	if err.error != nil {
		return fmt.Sprintf("halted: %v", err.error)
	}
	return "halted"
}
func (err haltError) Unwrap() error { return err.error }

func (m *machine) halt(err error) {
	m.trace.Logf("#", "halt error: %v", err)
	panic(haltError{err})
}

func (m *machine) haltedWith(err error) error {
	if err == nil || !panicerr.IsPanic(err) {
		return err
	}
	switch v := panicerr.PanicValue(err).(type) {
	case haltError:
		return v.error
	case *lang.InternalError:
		if v.Loc.IsZero() {
			v.Loc = m.op.Loc
		}
		v.Stack = panicerr.PanicStack(err)
		return v
	default:
		ie := &lang.InternalError{
			Loc:   m.op.Loc,
			Msg:   fmt.Sprintf("%v panicked: %v", m.op, v),
			Err:   err,
			Stack: panicerr.PanicStack(err),
		}
		if verr, ok := v.(error); ok {
			ie.Err = verr
		}
		return ie
	}
}

func (m *machine) run(ops []lang.Op, env lang.Env[*lang.Cell]) {
	for _, op := range ops {
		m.op = op
		m.tick()
		m.step(&env)
	}
	if depth := env.Depth(); depth != 1 {
		lang.Faultf("unbalanced scopes: %v left open", depth-1)
	}
}

func (m *machine) tick() {
	if m.ctx != nil {
		if err := m.ctx.Err(); err != nil {
			m.halt(err)
		}
	}
	m.steps++
	if m.stepLimit > 0 && m.steps > m.stepLimit {
		m.halt(lang.ErrStepLimit)
	}
	if m.trace.Enabled() {
		m.trace.Logf("exec", "%v -- %v", m.op, m.stack)
	}
}

// nested runs a procedure body, branch, or loop part with locals as its
// whole environment.
func (m *machine) nested(ops []lang.Op, locals map[string]*lang.Cell) {
	if m.maxDepth > 0 && m.depth >= m.maxDepth {
		m.halt(lang.ErrDepthLimit)
	}
	m.depth++
	defer func() { m.depth-- }()
	if m.trace.Enabled() {
		defer m.trace.WithPrefix("  ")()
	}
	m.run(ops, lang.NewEnv(locals))
}

func (m *machine) popInt() int64 { return int64(lang.PopAs[lang.Integer](&m.stack)) }

func (m *machine) popInts() (a, b int64) {
	b = m.popInt()
	a = m.popInt()
	return a, b
}

func (m *machine) step(env *lang.Env[*lang.Cell]) {
	op := m.op
	switch op.Code {

	case lang.CodePush:
		m.stack.Push(op.Value)

	case lang.CodeDup:
		m.stack.Push(m.stack.Peek(0))

	case lang.CodeDrop:
		m.stack.Pop()

	case lang.CodeOver:
		for _, depth := range op.Offsets {
			i := len(m.stack) - 1 - depth
			if depth < 0 || i < 0 {
				lang.Faultf("over(%v) on a stack of %v elements", depth, len(m.stack))
			}
			v := m.stack[i]
			m.stack = append(m.stack[:i], m.stack[i+1:]...)
			m.stack.Push(v)
		}

	case lang.CodeMakeProcedure:
		m.stack.Push(&lang.Procedure{Sig: op.Sig, Body: op.Body, Locals: env.Snapshot()})

	case lang.CodeCall:
		switch proc := m.stack.Pop().(type) {
		case *lang.Procedure:
			m.nested(proc.Body.Ops, proc.Locals)
		case *lang.Native:
			if err := proc.Fn(&m.stack); err != nil {
				m.halt(err)
			}
		default:
			lang.Faultf("cannot call a %T value", proc)
		}

	case lang.CodeAdd:
		a, b := m.popInts()
		m.stack.Push(lang.Integer(a + b))

	case lang.CodeSubtract:
		a, b := m.popInts()
		m.stack.Push(lang.Integer(a - b))

	case lang.CodeMultiply:
		a, b := m.popInts()
		m.stack.Push(lang.Integer(a * b))

	case lang.CodeDivMod:
		a, b := m.popInts()
		if b == 0 {
			m.halt(&lang.ArithmeticError{Loc: op.Loc, Err: lang.ErrDivideByZero})
		}
		m.stack.Push(lang.Integer(a/b), lang.Integer(a%b))

	case lang.CodeGreaterThan:
		a, b := m.popInts()
		m.stack.Push(lang.Boolean(a > b))

	case lang.CodeLessThan:
		a, b := m.popInts()
		m.stack.Push(lang.Boolean(a < b))

	case lang.CodeEqual:
		b := m.stack.Pop()
		a := m.stack.Pop()
		m.stack.Push(lang.Boolean(lang.Equal(a, b)))

	case lang.CodeNot:
		m.stack.Push(!lang.PopAs[lang.Boolean](&m.stack))

	case lang.CodeTypeOf:
		m.stack.Push(lang.TypeValue{Of: m.stack.Pop().Type()})

	case lang.CodeMakeReferenceType:
		tv := lang.PopAs[lang.TypeValue](&m.stack)
		m.stack.Push(lang.TypeValue{Of: lang.RefType(tv.Of)})

	case lang.CodeEnterScope:
		env.Enter()

	case lang.CodeExitScope:
		if !env.Exit() {
			lang.Faultf("exit_scope without a matching enter_scope")
		}

	case lang.CodeNewLocals:
		for _, name := range op.Names {
			if !env.Declare(name, lang.NewCell(m.stack.Pop())) {
				lang.Faultf("redeclaration of local %q", name)
			}
		}

	case lang.CodeGetLocals:
		for _, name := range op.Names {
			cell, found := env.Lookup(name)
			if !found {
				lang.Faultf("undefined local %q", name)
			}
			m.stack.Push(lang.Reference{Cell: cell})
		}

	case lang.CodeLoad:
		ref := lang.PopAs[lang.Reference](&m.stack)
		m.stack.Push(ref.Cell.Load())

	case lang.CodeStore:
		ref := lang.PopAs[lang.Reference](&m.stack)
		if err := ref.Cell.Store(m.stack.Pop()); err != nil {
			panic(&lang.InternalError{Msg: err.Error(), Err: err})
		}

	case lang.CodeIf:
		if lang.PopAs[lang.Boolean](&m.stack) {
			m.nested(op.Then, env.Snapshot())
		} else {
			m.nested(op.Else, env.Snapshot())
		}

	case lang.CodeWhile:
		for {
			m.nested(op.Cond, env.Snapshot())
			if !lang.PopAs[lang.Boolean](&m.stack) {
				break
			}
			m.nested(op.Loop, env.Snapshot())
		}

	case lang.CodeDumpTypes:
		lang.Faultf("type dump reached execution")

	default:
		lang.Faultf("invalid op code %v", op.Code)
	}
}

// IsLimit returns true if err is due to one of the configured execution
// bounds, or context cancellation, rather than the program itself.
func IsLimit(err error) bool {
	return errors.Is(err, lang.ErrStepLimit) ||
		errors.Is(err, lang.ErrDepthLimit) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}
