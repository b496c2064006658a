package lang

import "strings"

// Stack is the data stack shared by the executor and native procedures;
// the last element is the top.
type Stack []Value

// Len returns the number of values on the stack.
func (s Stack) Len() int { return len(s) }

// Push pushes values in order, so that the last one ends on top.
func (s *Stack) Push(values ...Value) { *s = append(*s, values...) }

// Pop removes and returns the top value, faulting on underflow.
func (s *Stack) Pop() Value {
	i := len(*s) - 1
	if i < 0 {
		Faultf("stack underflow")
	}
	v := (*s)[i]
	(*s)[i] = nil
	*s = (*s)[:i]
	return v
}

// Peek returns the value depth elements below the top, faulting if there is
// none.
func (s Stack) Peek(depth int) Value {
	i := len(s) - 1 - depth
	if depth < 0 || i < 0 {
		Faultf("stack underflow peeking %v deep into %v values", depth, len(s))
	}
	return s[i]
}

// PopAs pops the top value, faulting unless it is a T.
func PopAs[T Value](s *Stack) T {
	v := s.Pop()
	t, ok := v.(T)
	if !ok {
		var want T
		Faultf("expected a %T value but got %T %v", want, v, v)
	}
	return t
}

func (s Stack) String() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, v := range s {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(v.String())
	}
	sb.WriteByte(']')
	return sb.String()
}
