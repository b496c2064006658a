package lang

import (
	"strconv"
	"strings"
)

// Code identifies an instruction.
type Code uint8

// Instruction codes.
const (
	CodeDumpTypes Code = iota
	CodePush
	CodeDup
	CodeDrop
	CodeOver
	CodeMakeProcedure
	CodeCall
	CodeAdd
	CodeSubtract
	CodeMultiply
	CodeDivMod
	CodeEnterScope
	CodeExitScope
	CodeNewLocals
	CodeGetLocals
	CodeLoad
	CodeStore
	CodeTypeOf
	CodeMakeReferenceType
	CodeGreaterThan
	CodeLessThan
	CodeEqual
	CodeNot
	CodeIf
	CodeWhile
	codeMax
)

var codeNames = [codeMax]string{
	CodeDumpTypes:         "dump_types",
	CodePush:              "push",
	CodeDup:               "dup",
	CodeDrop:              "drop",
	CodeOver:              "over",
	CodeMakeProcedure:     "make_proc",
	CodeCall:              "call",
	CodeAdd:               "add",
	CodeSubtract:          "sub",
	CodeMultiply:          "mul",
	CodeDivMod:            "divmod",
	CodeEnterScope:        "enter_scope",
	CodeExitScope:         "exit_scope",
	CodeNewLocals:         "var",
	CodeGetLocals:         "get",
	CodeLoad:              "load",
	CodeStore:             "store",
	CodeTypeOf:            "typeof",
	CodeMakeReferenceType: "ref",
	CodeGreaterThan:       "greater",
	CodeLessThan:          "less",
	CodeEqual:             "equal",
	CodeNot:               "not",
	CodeIf:                "if",
	CodeWhile:             "while",
}

func (c Code) String() string {
	if c < codeMax {
		return codeNames[c]
	}
	return "invalid_code_" + strconv.Itoa(int(c))
}

// Op returns an operand-less op for c.
func (c Code) Op() Op { return Op{Code: c} }

// Block is an immutable instruction sequence shared by every procedure value
// created from it; its address is the procedure body identity.
type Block struct {
	Ops []Op
}

// Op is one node of an instruction tree. Only the operand fields belonging to
// Code are used.
type Op struct {
	Code Code
	Loc  Location

	Value   Value    // CodePush
	Offsets []int    // CodeOver; 0 is the top of the stack
	Names   []string // CodeNewLocals, CodeGetLocals

	Sig  Type   // CodeMakeProcedure
	Body *Block // CodeMakeProcedure

	Then, Else []Op // CodeIf
	Cond, Loop []Op // CodeWhile
}

// PushOp returns an op that pushes v.
func PushOp(v Value) Op { return Op{Code: CodePush, Value: v} }

// OverOp returns an op that rotates the elements at the given depths to the
// top, in order.
func OverOp(offsets ...int) Op { return Op{Code: CodeOver, Offsets: offsets} }

// NewLocalsOp returns an op that pops one value per name, declaring each in
// the innermost scope.
func NewLocalsOp(names ...string) Op { return Op{Code: CodeNewLocals, Names: names} }

// GetLocalsOp returns an op that pushes a reference to each named local.
func GetLocalsOp(names ...string) Op { return Op{Code: CodeGetLocals, Names: names} }

// ProcOp returns an op that creates a procedure of type sig from body.
func ProcOp(sig Type, body []Op) Op {
	return Op{Code: CodeMakeProcedure, Sig: sig, Body: &Block{body}}
}

// IfOp returns a conditional op.
func IfOp(then, els []Op) Op { return Op{Code: CodeIf, Then: then, Else: els} }

// WhileOp returns a loop op.
func WhileOp(cond, loop []Op) Op { return Op{Code: CodeWhile, Cond: cond, Loop: loop} }

// At returns a copy of op located at loc.
func (op Op) At(loc Location) Op {
	op.Loc = loc
	return op
}

// String returns a one-line summary of op; nested blocks are elided.
func (op Op) String() string {
	var sb strings.Builder
	sb.WriteString(op.Code.String())
	switch op.Code {
	case CodePush:
		sb.WriteByte('(')
		if op.Value != nil {
			sb.WriteString(op.Value.String())
		}
		sb.WriteByte(')')
	case CodeOver:
		sb.WriteByte('(')
		for i, offset := range op.Offsets {
			if i > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(strconv.Itoa(offset))
		}
		sb.WriteByte(')')
	case CodeNewLocals, CodeGetLocals:
		sb.WriteByte('(')
		for i, name := range op.Names {
			if i > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(strconv.Quote(name))
		}
		sb.WriteByte(')')
	case CodeMakeProcedure:
		sb.WriteByte(' ')
		sb.WriteString(op.Sig.String())
	}
	return sb.String()
}

// Program is a compiled, type-checked top-level op sequence together with
// its net stack effect.
type Program struct {
	Name  string
	Ops   []Op
	Types []Type
}
