package check

import (
	"fmt"

	"github.com/jcorbin/stacklang/internal/lang"
)

type state struct {
	*checker
	op    lang.Op
	stack []lang.Type
	env   lang.Env[lang.Type]
}

func (st *state) errorf(mess string, args ...interface{}) error {
	return &lang.TypeError{
		Loc:   st.op.Loc,
		Op:    st.op.String(),
		Msg:   fmt.Sprintf(mess, args...),
		Stack: lang.CloneTypes(st.stack),
	}
}

func (st *state) push(types ...lang.Type) { st.stack = append(st.stack, types...) }

func (st *state) pop(what string) (typ lang.Type, err error) {
	i := len(st.stack) - 1
	if i < 0 {
		return typ, st.errorf("stack underflow: expected %v on the stack but got nothing", what)
	}
	typ, st.stack = st.stack[i], st.stack[:i]
	return typ, nil
}

func (st *state) popWant(want lang.Type, what string) error {
	typ, err := st.pop(what)
	if err == nil && !typ.Equal(want) {
		err = st.errorf("expected %v to be type '%v' but got '%v'", what, want, typ)
	}
	return err
}

func (st *state) popIntegers(verb string) error {
	b, err := st.pop("first operand to " + verb)
	if err != nil {
		return err
	}
	a, err := st.pop("second operand to " + verb)
	if err != nil {
		return err
	}
	if !a.Equal(lang.IntegerType) || !b.Equal(lang.IntegerType) {
		return st.errorf("cannot %v types '%v' and '%v'", verb, a, b)
	}
	return nil
}

// nested type checks a nested block against stack with a flat snapshot of
// the currently visible locals.
func (st *state) nested(ops []lang.Op, stack []lang.Type) ([]lang.Type, error) {
	stack, err := st.checker.nested(ops, stack, st.env.Snapshot())
	if err == lang.ErrDepthLimit {
		err = &lang.TypeError{Loc: st.op.Loc, Op: st.op.String(), Err: err}
	}
	return stack, err
}

func (st *state) step() error {
	op := st.op
	switch op.Code {

	case lang.CodeDumpTypes:
		lang.DumpTypes(st.dumpOut, st.stack)
		return &lang.TypeError{Loc: op.Loc, Op: "???", Err: lang.ErrTypeDump, Stack: lang.CloneTypes(st.stack)}

	case lang.CodePush:
		st.push(op.Value.Type())

	case lang.CodeDup:
		typ, err := st.pop("an element to duplicate")
		if err != nil {
			return err
		}
		st.push(typ, typ)

	case lang.CodeDrop:
		if _, err := st.pop("an element to drop"); err != nil {
			return err
		}

	case lang.CodeOver:
		for _, depth := range op.Offsets {
			if depth < 0 || depth >= len(st.stack) {
				return st.errorf("the stack only has %v elements but tried to get an element %v elements deep",
					len(st.stack), depth+1)
			}
			i := len(st.stack) - 1 - depth
			typ := st.stack[i]
			st.stack = append(st.stack[:i], st.stack[i+1:]...)
			st.push(typ)
		}

	case lang.CodeMakeProcedure:
		if op.Sig.Kind != lang.KindProcedure {
			return st.errorf("expected procedure type but got type '%v'", op.Sig)
		}
		got, err := st.nested(op.Body.Ops, lang.CloneTypes(op.Sig.Args))
		if err != nil {
			return err
		}
		if !lang.TypesEqual(got, op.Sig.Returns) {
			return st.errorf("procedure body leaves %v on the stack but its declared returns are %v",
				lang.FormatTypes(got), lang.FormatTypes(op.Sig.Returns))
		}
		st.push(op.Sig)

	case lang.CodeCall:
		sig, err := st.pop("a procedure to call")
		if err != nil {
			return err
		}
		if sig.Kind != lang.KindProcedure {
			return st.errorf("expected a procedure to call but got type '%v'", sig)
		}
		for i := len(sig.Args) - 1; i >= 0; i-- {
			if err := st.popWant(sig.Args[i], fmt.Sprintf("argument %v", i)); err != nil {
				return err
			}
		}
		st.push(sig.Returns...)

	case lang.CodeAdd:
		if err := st.popIntegers("add"); err != nil {
			return err
		}
		st.push(lang.IntegerType)

	case lang.CodeSubtract:
		if err := st.popIntegers("subtract"); err != nil {
			return err
		}
		st.push(lang.IntegerType)

	case lang.CodeMultiply:
		if err := st.popIntegers("multiply"); err != nil {
			return err
		}
		st.push(lang.IntegerType)

	case lang.CodeDivMod:
		if err := st.popIntegers("divmod"); err != nil {
			return err
		}
		st.push(lang.IntegerType, lang.IntegerType)

	case lang.CodeGreaterThan:
		if err := st.popIntegers("compare greater than on"); err != nil {
			return err
		}
		st.push(lang.BooleanType)

	case lang.CodeLessThan:
		if err := st.popIntegers("compare less than on"); err != nil {
			return err
		}
		st.push(lang.BooleanType)

	case lang.CodeEqual:
		b, err := st.pop("first operand to equal")
		if err != nil {
			return err
		}
		a, err := st.pop("second operand to equal")
		if err != nil {
			return err
		}
		if !a.Equal(b) {
			return st.errorf("cannot compare types '%v' and '%v'", a, b)
		}
		st.push(lang.BooleanType)

	case lang.CodeNot:
		if err := st.popWant(lang.BooleanType, "the operand to not"); err != nil {
			return err
		}
		st.push(lang.BooleanType)

	case lang.CodeTypeOf:
		if _, err := st.pop("a value to get the type of"); err != nil {
			return err
		}
		st.push(lang.TypeType)

	case lang.CodeMakeReferenceType:
		if err := st.popWant(lang.TypeType, "the type to make a reference type from"); err != nil {
			return err
		}
		st.push(lang.TypeType)

	case lang.CodeEnterScope:
		st.env.Enter()

	case lang.CodeExitScope:
		if !st.env.Exit() {
			return st.errorf("exit_scope without a matching enter_scope")
		}

	case lang.CodeNewLocals:
		for _, name := range op.Names {
			typ, err := st.pop(fmt.Sprintf("a value to create local %q with", name))
			if err != nil {
				return err
			}
			if !st.env.Declare(name, typ) {
				return st.errorf("redeclaration of local variable %q", name)
			}
		}

	case lang.CodeGetLocals:
		for _, name := range op.Names {
			typ, found := st.env.Lookup(name)
			if !found {
				return st.errorf("unable to find local %q", name)
			}
			st.push(lang.RefType(typ))
		}

	case lang.CodeLoad:
		ref, err := st.pop("a reference to load from")
		if err != nil {
			return err
		}
		if ref.Kind != lang.KindReference {
			return st.errorf("expected a reference type to load from but got type '%v'", ref)
		}
		st.push(*ref.Elem)

	case lang.CodeStore:
		ref, err := st.pop("a reference to store into")
		if err != nil {
			return err
		}
		if ref.Kind != lang.KindReference {
			return st.errorf("expected a reference type to store into but got type '%v'", ref)
		}
		if err := st.popWant(*ref.Elem, "the value to store"); err != nil {
			return err
		}

	case lang.CodeIf:
		if err := st.popWant(lang.BooleanType, "the if condition"); err != nil {
			return err
		}
		thenStack, err := st.nested(op.Then, lang.CloneTypes(st.stack))
		if err != nil {
			return err
		}
		elseStack, err := st.nested(op.Else, st.stack)
		if err != nil {
			return err
		}
		if !lang.TypesEqual(thenStack, elseStack) {
			return st.errorf("both paths through an if must result in the same types on the stack, but then leaves %v and else leaves %v",
				lang.FormatTypes(thenStack), lang.FormatTypes(elseStack))
		}
		st.stack = elseStack

	case lang.CodeWhile:
		before := lang.CloneTypes(st.stack)
		stack, err := st.nested(op.Cond, st.stack)
		if err != nil {
			return err
		}
		st.stack = stack
		if err := st.popWant(lang.BooleanType, "the while condition"); err != nil {
			return err
		}
		if !lang.TypesEqual(before, st.stack) {
			return st.errorf("the while condition must leave the stack as it was with an extra bool on top, but left %v before the bool",
				lang.FormatTypes(st.stack))
		}
		stack, err = st.nested(op.Loop, st.stack)
		if err != nil {
			return err
		}
		st.stack = stack
		if !lang.TypesEqual(before, st.stack) {
			return st.errorf("the while body must leave the stack as it was before the while, %v, but left %v",
				lang.FormatTypes(before), lang.FormatTypes(st.stack))
		}

	default:
		return st.errorf("invalid op code %v", op.Code)
	}
	return nil
}
