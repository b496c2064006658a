package main

import (
	"io"

	"github.com/jcorbin/stacklang/internal/lang"
)

type runnerOption interface{ apply(r *runner) }

type withLogfn func(mess string, args ...interface{})

func (logfn withLogfn) apply(r *runner) { r.logfn = logfn }

type inputOption struct{ io.Reader }
type outputOption struct{ io.Writer }
type teeOption struct{ io.Writer }
type dumpOption struct{ io.Writer }
type errorsOption struct{ io.Writer }
type stepLimitOption int
type maxDepthOption int
type constantsOption map[string][]lang.Value

func withInput(r io.Reader) inputOption   { return inputOption{r} }
func withOutput(w io.Writer) outputOption { return outputOption{w} }
func withTee(w io.Writer) teeOption       { return teeOption{w} }
func withDump(w io.Writer) dumpOption     { return dumpOption{w} }
func withErrors(w io.Writer) errorsOption { return errorsOption{w} }
func withStepLimit(n int) stepLimitOption { return stepLimitOption(n) }
func withMaxDepth(n int) maxDepthOption   { return maxDepthOption(n) }

func withLogf(logfn func(string, ...interface{})) withLogfn { return withLogfn(logfn) }

func withConstants(constants map[string][]lang.Value) constantsOption {
	return constantsOption(constants)
}

func (i inputOption) apply(r *runner)       { r.in = i.Reader }
func (o outputOption) apply(r *runner)      { r.out = o.Writer }
func (o teeOption) apply(r *runner)         { r.tee = o.Writer }
func (o dumpOption) apply(r *runner)        { r.dumpOut = o.Writer }
func (o errorsOption) apply(r *runner)      { r.errOut = o.Writer }
func (lim stepLimitOption) apply(r *runner) { r.stepLimit = int(lim) }
func (lim maxDepthOption) apply(r *runner)  { r.maxDepth = int(lim) }

func (o constantsOption) apply(r *runner) {
	if r.constants == nil {
		r.constants = make(map[string][]lang.Value, len(o))
	}
	for name, values := range o {
		r.constants[name] = values
	}
}
