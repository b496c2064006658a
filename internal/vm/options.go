package vm

// Option configures an execution.
type Option interface{ apply(m *machine) }

// DefaultMaxDepth bounds the runtime nesting of procedure calls, branches and
// loop iterations.
const DefaultMaxDepth = 10000

// WithLogf enables tracing of every executed op through logfn.
func WithLogf(logfn func(mess string, args ...interface{})) Option { return withLogfn(logfn) }

// WithStepLimit bounds the number of ops executed; a limit <= 0 means no
// limit.
func WithStepLimit(limit int) Option { return stepLimitOption(limit) }

// WithMaxDepth overrides DefaultMaxDepth; a limit <= 0 disables the bound.
func WithMaxDepth(limit int) Option { return maxDepthOption(limit) }

// Options combines options into one.
func Options(opts ...Option) Option { return options(opts) }

type withLogfn func(mess string, args ...interface{})
type stepLimitOption int
type maxDepthOption int
type options []Option

func (logfn withLogfn) apply(m *machine)     { m.trace.Logfn = logfn }
func (lim stepLimitOption) apply(m *machine) { m.stepLimit = int(lim) }
func (lim maxDepthOption) apply(m *machine)  { m.maxDepth = int(lim) }

func (opts options) apply(m *machine) {
	for _, opt := range opts {
		if opt != nil {
			opt.apply(m)
		}
	}
}
