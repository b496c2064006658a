package parse

import (
	"fmt"

	"github.com/jcorbin/stacklang/internal/check"
	"github.com/jcorbin/stacklang/internal/lang"
	"github.com/jcorbin/stacklang/internal/vm"
)

// eval type checks a bracketed construct's ops from an empty stack, asserts
// the resulting types, and then executes them to get concrete values.
func (c *compiler) eval(sc scope, ops []lang.Op, assert func(types []lang.Type) string) ([]lang.Value, error) {
	types, err := check.Check(ops, nil, c.builtinTypes, c.checkOptions()...)
	if err != nil {
		return nil, err
	}
	if msg := assert(types); msg != "" {
		return nil, &lang.TypeError{Loc: sc.open, Op: sc.kind.String(), Msg: msg, Stack: types}
	}
	values, err := vm.Execute(c.ctx, ops, nil, c.cells, c.vmOptions()...)
	if err != nil {
		return nil, err
	}
	c.trace.Logf("eval", "%v @%v -> %v", sc.kind, sc.open, lang.Stack(values))
	return values, nil
}

func (c *compiler) evalTypes(sc scope, ops []lang.Op) ([]lang.Type, error) {
	values, err := c.eval(sc, ops, allOf(lang.TypeType))
	if err != nil {
		return nil, err
	}
	types := make([]lang.Type, len(values))
	for i, v := range values {
		types[i] = v.(lang.TypeValue).Of
	}
	return types, nil
}

func allOf(want lang.Type) func(types []lang.Type) string {
	return func(types []lang.Type) string {
		for i, typ := range types {
			if !typ.Equal(want) {
				return fmt.Sprintf("all elements left on the stack must be of type '%v' but element %v is '%v'", want, i, typ)
			}
		}
		return ""
	}
}

func (c *compiler) checkOptions() []check.Option {
	opts := []check.Option{check.WithDumpOutput(c.dumpOut)}
	if c.maxDepth != 0 {
		opts = append(opts, check.WithMaxDepth(c.maxDepth))
	}
	if c.trace.Enabled() {
		opts = append(opts, check.WithLogf(c.trace.Logfn))
	}
	return opts
}

func (c *compiler) vmOptions() []vm.Option {
	var opts []vm.Option
	if c.stepLimit != 0 {
		opts = append(opts, vm.WithStepLimit(c.stepLimit))
	}
	if c.maxDepth != 0 {
		opts = append(opts, vm.WithMaxDepth(c.maxDepth))
	}
	if c.trace.Enabled() {
		opts = append(opts, vm.WithLogf(c.trace.Logfn))
	}
	return opts
}
