package lang

import (
	"strconv"

	"github.com/jcorbin/stacklang/internal/runeio"
)

// Value is a runtime value; it is a closed union over the types declared in
// this file.
type Value interface {
	Type() Type
	String() string
	isValue()
}

// Null is the unit value.
type Null struct{}

// TypeValue is a first class type.
type TypeValue struct{ Of Type }

// String is an immutable string value.
type String string

// Boolean is a truth value.
type Boolean bool

// Character is a single unicode code point.
type Character rune

// Integer is a signed 64-bit integer; arithmetic wraps.
type Integer int64

// Procedure is a user procedure: a shared body plus the flat snapshot of
// local cells that were visible when it was created.
type Procedure struct {
	Sig    Type
	Body   *Block
	Locals map[string]*Cell
}

// NativeFunc implements a native procedure directly against the data stack.
// It is only ever called once the stack holds the arguments declared by its
// procedure type, and must leave the declared returns in their place.
type NativeFunc func(stack *Stack) error

// Native is a procedure implemented in Go.
type Native struct {
	Sig  Type
	Name string
	Fn   NativeFunc
}

// Reference aliases a shared mutable Cell.
type Reference struct{ Cell *Cell }

func (Null) isValue()       {}
func (TypeValue) isValue()  {}
func (String) isValue()     {}
func (Boolean) isValue()    {}
func (Character) isValue()  {}
func (Integer) isValue()    {}
func (*Procedure) isValue() {}
func (*Native) isValue()    {}
func (Reference) isValue()  {}

func (Null) Type() Type         { return NullType }
func (TypeValue) Type() Type    { return TypeType }
func (String) Type() Type       { return StringType }
func (Boolean) Type() Type      { return BooleanType }
func (Character) Type() Type    { return CharacterType }
func (Integer) Type() Type      { return IntegerType }
func (p *Procedure) Type() Type { return p.Sig }
func (n *Native) Type() Type    { return n.Sig }
func (r Reference) Type() Type  { return RefType(r.Cell.Elem()) }

func (Null) String() string         { return "null" }
func (tv TypeValue) String() string { return tv.Of.String() }
func (s String) String() string     { return strconv.Quote(string(s)) }
func (b Boolean) String() string    { return strconv.FormatBool(bool(b)) }
func (c Character) String() string  { return runeio.QuoteRune(rune(c)) }
func (i Integer) String() string    { return strconv.FormatInt(int64(i), 10) }
func (p *Procedure) String() string { return p.Sig.String() }
func (n *Native) String() string    { return n.Sig.String() }
func (r Reference) String() string  { return r.Cell.Load().String() }

// Equal implements the language's equality: scalars compare by value,
// procedures by type and body identity, references by cell identity; natives
// never compare equal.
func Equal(a, b Value) bool {
	switch a := a.(type) {
	case TypeValue:
		b, ok := b.(TypeValue)
		return ok && a.Of.Equal(b.Of)
	case *Procedure:
		b, ok := b.(*Procedure)
		return ok && a.Body == b.Body && a.Sig.Equal(b.Sig)
	case *Native:
		return false
	case Reference:
		b, ok := b.(Reference)
		return ok && a.Cell == b.Cell
	case Null, String, Boolean, Character, Integer:
		return a == b
	}
	return false
}

// Cell is a mutable storage slot shared by every Reference, closure and
// environment that holds it. Its element type is fixed when it is created.
type Cell struct {
	elem  Type
	value Value
}

// NewCell creates a cell holding v, typed as v's type.
func NewCell(v Value) *Cell { return &Cell{v.Type(), v} }

// Elem returns the cell's element type.
func (c *Cell) Elem() Type { return c.elem }

// Load returns the value currently held by the cell; the cell is unaffected.
func (c *Cell) Load() Value { return c.value }

// Store replaces the held value, returning a StoreError if v's type differs
// from the cell's element type.
func (c *Cell) Store(v Value) error {
	if typ := v.Type(); !typ.Equal(c.elem) {
		return StoreError{c.elem, typ}
	}
	c.value = v
	return nil
}

// NewCells allocates a fresh cell for every named value.
func NewCells(values map[string]Value) map[string]*Cell {
	cells := make(map[string]*Cell, len(values))
	for name, v := range values {
		cells[name] = NewCell(v)
	}
	return cells
}

// TypesOf maps every named value to its type.
func TypesOf(values map[string]Value) map[string]Type {
	types := make(map[string]Type, len(values))
	for name, v := range values {
		types[name] = v.Type()
	}
	return types
}
