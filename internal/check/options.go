package check

import "io"

// Option configures a type checking run.
type Option interface{ apply(c *checker) }

// DefaultMaxDepth bounds the nesting of procedure bodies, branches and loops.
const DefaultMaxDepth = 1024

// WithLogf enables tracing of every checked op through logfn.
func WithLogf(logfn func(mess string, args ...interface{})) Option { return withLogfn(logfn) }

// WithMaxDepth overrides DefaultMaxDepth; a limit <= 0 disables the bound.
func WithMaxDepth(limit int) Option { return maxDepthOption(limit) }

// WithDumpOutput sets where the "???" op writes the type stack.
func WithDumpOutput(w io.Writer) Option { return dumpOption{w} }

// Options combines options into one.
func Options(opts ...Option) Option { return options(opts) }

type withLogfn func(mess string, args ...interface{})
type maxDepthOption int
type dumpOption struct{ io.Writer }
type options []Option

func (logfn withLogfn) apply(c *checker)    { c.trace.Logfn = logfn }
func (lim maxDepthOption) apply(c *checker) { c.maxDepth = int(lim) }
func (o dumpOption) apply(c *checker)       { c.dumpOut = o.Writer }

func (opts options) apply(c *checker) {
	for _, opt := range opts {
		if opt != nil {
			opt.apply(c)
		}
	}
}
