package parse

import (
	"io"

	"github.com/jcorbin/stacklang/internal/lang"
)

// Option configures a compilation.
type Option interface{ apply(c *compiler) }

// WithBuiltins provides named values that programs reach through get(...),
// both when compiling and when evaluating bracketed compile-time code.
// Options accumulate; later names win.
func WithBuiltins(builtins map[string]lang.Value) Option { return builtinsOption(builtins) }

// WithConstants pre-declares constants in the outermost constant scope.
// Options accumulate; later names win.
func WithConstants(constants map[string][]lang.Value) Option { return constantsOption(constants) }

// WithInitialTypes sets the type stack that the compiled program starts
// from, allowing it to continue from the result of a prior program.
func WithInitialTypes(types []lang.Type) Option { return initialTypesOption(types) }

// WithLogf enables tracing of parsing, and of any checking and execution of
// compile-time code.
func WithLogf(logfn func(mess string, args ...interface{})) Option { return withLogfn(logfn) }

// WithDumpOutput sets where "???" writes the type stack.
func WithDumpOutput(w io.Writer) Option { return dumpOption{w} }

// WithStepLimit bounds execution of each compile-time evaluation.
func WithStepLimit(limit int) Option { return stepLimitOption(limit) }

// WithMaxDepth bounds nesting during checking and compile-time evaluation.
func WithMaxDepth(limit int) Option { return maxDepthOption(limit) }

// Options combines options into one.
func Options(opts ...Option) Option { return options(opts) }

type builtinsOption map[string]lang.Value
type constantsOption map[string][]lang.Value
type initialTypesOption []lang.Type
type withLogfn func(mess string, args ...interface{})
type dumpOption struct{ io.Writer }
type stepLimitOption int
type maxDepthOption int
type options []Option

func (o builtinsOption) apply(c *compiler) {
	if c.builtins == nil {
		c.builtins = make(map[string]lang.Value, len(o))
	}
	for name, v := range o {
		c.builtins[name] = v
	}
}

func (o constantsOption) apply(c *compiler) {
	if c.predeclared == nil {
		c.predeclared = make(map[string][]lang.Value, len(o))
	}
	for name, values := range o {
		c.predeclared[name] = values
	}
}

func (o initialTypesOption) apply(c *compiler) { c.initial = lang.CloneTypes(o) }
func (logfn withLogfn) apply(c *compiler)      { c.trace.Logfn = logfn }
func (o dumpOption) apply(c *compiler)         { c.dumpOut = o.Writer }
func (lim stepLimitOption) apply(c *compiler)  { c.stepLimit = int(lim) }
func (lim maxDepthOption) apply(c *compiler)   { c.maxDepth = int(lim) }

func (opts options) apply(c *compiler) {
	for _, opt := range opts {
		if opt != nil {
			opt.apply(c)
		}
	}
}
