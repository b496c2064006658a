package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/jcorbin/stacklang/internal/builtins"
	"github.com/jcorbin/stacklang/internal/fileinput"
	"github.com/jcorbin/stacklang/internal/lang"
	"github.com/jcorbin/stacklang/internal/parse"
	"github.com/jcorbin/stacklang/internal/vm"
)

// runner holds the configuration shared by every program that the command
// compiles and runs.
type runner struct {
	logfn func(mess string, args ...interface{})

	in      io.Reader
	out     io.Writer
	tee     io.Writer
	dumpOut io.Writer
	errOut  io.Writer

	constants map[string][]lang.Value
	stepLimit int
	maxDepth  int
}

func newRunner(opts ...runnerOption) *runner {
	r := &runner{
		out:    io.Discard,
		errOut: io.Discard,
	}
	for _, opt := range opts {
		if opt != nil {
			opt.apply(r)
		}
	}
	return r
}

// session is one set of builtins, bound to its own input and output, along
// with the value stack left by the programs it has run so far.
type session struct {
	*runner
	bio       *builtins.IO
	natives   map[string]lang.Value
	cells     map[string]*lang.Cell
	constants map[string][]lang.Value
	stack     []lang.Value
}

func (r *runner) newSession(in io.Reader, out, tee io.Writer) *session {
	bioOpts := []builtins.Option{builtins.WithOutput(out)}
	if in != nil {
		bioOpts = append(bioOpts, builtins.WithInput(in))
	}
	if tee != nil {
		bioOpts = append(bioOpts, builtins.WithTee(tee))
	}
	bio := builtins.New(bioOpts...)
	natives := bio.Natives()
	constants := bio.Constants()
	for name, values := range r.constants {
		constants[name] = values
	}
	return &session{
		runner:    r,
		bio:       bio,
		natives:   natives,
		cells:     lang.NewCells(natives),
		constants: constants,
	}
}

// types returns the type stack of the values left by prior programs.
func (s *session) types() []lang.Type {
	types := make([]lang.Type, len(s.stack))
	for i, v := range s.stack {
		types[i] = v.Type()
	}
	return types
}

func (s *session) compile(ctx context.Context, src *fileinput.Source) (*lang.Program, error) {
	prog, err := parse.CompileSource(ctx, src,
		parse.WithBuiltins(s.natives),
		parse.WithConstants(s.constants),
		parse.WithInitialTypes(s.types()),
		parse.WithDumpOutput(s.bio.Output()),
		parse.WithLogf(s.logfn),
		parse.WithStepLimit(s.stepLimit),
		parse.WithMaxDepth(s.maxDepth),
	)
	if ferr := s.bio.Flush(); err == nil {
		err = ferr
	}
	return prog, err
}

// exec runs prog against the session stack, which is only updated if the
// program succeeds.
func (s *session) exec(ctx context.Context, prog *lang.Program) error {
	opts := []vm.Option{vm.WithLogf(s.logfn)}
	if s.stepLimit != 0 {
		opts = append(opts, vm.WithStepLimit(s.stepLimit))
	}
	if s.maxDepth != 0 {
		opts = append(opts, vm.WithMaxDepth(s.maxDepth))
	}
	stack, err := vm.Execute(ctx, prog.Ops, s.stack, s.cells, opts...)
	if ferr := s.bio.Flush(); err == nil {
		err = ferr
	}
	if err == nil {
		s.stack = stack
	}
	return err
}

func openSource(path string) (*fileinput.Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return fileinput.ReadSource(f)
}

// runFiles compiles and runs each file in turn, in one session, stopping at
// the first error.
func (r *runner) runFiles(ctx context.Context, paths ...string) error {
	s := r.newSession(r.in, r.out, r.tee)
	for _, path := range paths {
		src, err := openSource(path)
		if err != nil {
			return err
		}
		if err := s.runSource(ctx, src); err != nil {
			return err
		}
	}
	return nil
}

func (s *session) runSource(ctx context.Context, src *fileinput.Source) error {
	prog, err := s.compile(ctx, src)
	if err != nil {
		return err
	}
	return s.run(ctx, prog)
}

// run dumps prog if asked to, and then executes it.
func (s *session) run(ctx context.Context, prog *lang.Program) error {
	if s.dumpOut != nil {
		if err := lang.DumpOps(s.dumpOut, prog.Ops, true); err != nil {
			return err
		}
	}
	return s.exec(ctx, prog)
}

// checkResult is the outcome of compiling one file in check mode.
type checkResult struct {
	path   string
	prog   *lang.Program
	output bytes.Buffer
	err    error
}

// checkFiles compiles every file without running it. Files are compiled
// concurrently, at most jobs at a time, each in its own session whose output
// is buffered and reported in argument order.
func (r *runner) checkFiles(ctx context.Context, jobs int, paths ...string) error {
	results := make([]checkResult, len(paths))
	eg, ctx := errgroup.WithContext(ctx)
	if jobs > 0 {
		eg.SetLimit(jobs)
	}
	for i, path := range paths {
		res := &results[i]
		res.path = path
		eg.Go(func() error {
			src, err := openSource(res.path)
			if err == nil {
				s := r.newSession(nil, &res.output, nil)
				res.prog, res.err = s.compile(ctx, src)
			} else {
				res.err = err
			}
			if errors.Is(res.err, context.Canceled) || errors.Is(res.err, context.DeadlineExceeded) {
				return res.err
			}
			return nil
		})
	}
	waitErr := eg.Wait()

	failed := 0
	for i := range results {
		res := &results[i]
		if res.output.Len() > 0 {
			if _, err := res.output.WriteTo(r.out); err != nil {
				return err
			}
		}
		if res.err != nil {
			failed++
			fmt.Fprintf(r.errOut, "%v: %v\n", res.path, res.err)
			continue
		}
		if r.dumpOut != nil {
			fmt.Fprintf(r.dumpOut, "# %v\n", res.path)
			if err := lang.DumpOps(r.dumpOut, res.prog.Ops, true); err != nil {
				return err
			}
		}
		if r.logfn != nil {
			r.logfn("%v: ok %v", res.path, lang.FormatTypes(res.prog.Types))
		}
	}
	if waitErr != nil {
		return waitErr
	}
	if failed > 0 {
		return fmt.Errorf("%v of %v files failed to check", failed, len(paths))
	}
	return nil
}
