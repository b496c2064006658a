// Package check implements the stack-effect type checker: an abstract
// interpreter that runs an op tree over types instead of values.
package check

import (
	"io"

	"github.com/jcorbin/stacklang/internal/lang"
	"github.com/jcorbin/stacklang/internal/logio"
)

// Check simulates the stack effect of ops against stack, starting from a
// single scope of locals, and returns the resulting type stack. The given
// stack is not modified.
//
// Any mismatch is returned as a *lang.TypeError.
func Check(ops []lang.Op, stack []lang.Type, locals map[string]lang.Type, opts ...Option) ([]lang.Type, error) {
	c := checker{maxDepth: DefaultMaxDepth, dumpOut: io.Discard}
	Options(opts...).apply(&c)
	return c.check(ops, lang.CloneTypes(stack), lang.NewEnv(locals))
}

type checker struct {
	trace    logio.Trace
	dumpOut  io.Writer
	maxDepth int
	depth    int
}

func (c *checker) check(ops []lang.Op, stack []lang.Type, env lang.Env[lang.Type]) ([]lang.Type, error) {
	st := state{checker: c, stack: stack, env: env}
	for _, op := range ops {
		st.op = op
		if c.trace.Enabled() {
			c.trace.Logf("check", "%v -- %v", op, lang.FormatTypes(st.stack))
		}
		if err := st.step(); err != nil {
			return st.stack, err
		}
	}
	if depth := st.env.Depth(); depth != 1 {
		return st.stack, st.errorf("unbalanced scopes: %v left open", depth-1)
	}
	return st.stack, nil
}

// nested checks ops as a nested block, bounded by maxDepth.
func (c *checker) nested(ops []lang.Op, stack []lang.Type, locals map[string]lang.Type) ([]lang.Type, error) {
	if c.maxDepth > 0 && c.depth >= c.maxDepth {
		return stack, lang.ErrDepthLimit
	}
	c.depth++
	defer func() { c.depth-- }()
	if c.trace.Enabled() {
		defer c.trace.WithPrefix("  ")()
	}
	return c.check(ops, stack, lang.NewEnv(locals))
}
