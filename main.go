package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/jcorbin/stacklang/internal/logio"
)

func main() {
	ctx := context.Background()

	var (
		log       logio.Logger
		timeout   time.Duration
		trace     bool
		dump      bool
		checkOnly bool
		jobs      int
		stepLimit int
		maxDepth  int
		constPath string
		teePath   string
	)
	flag.DurationVar(&timeout, "timeout", 0, "specify a time limit")
	flag.BoolVar(&trace, "trace", false, "enable trace logging")
	flag.BoolVar(&dump, "dump", false, "dump each compiled program's ops")
	flag.BoolVar(&checkOnly, "check", false, "only compile and type check the given files")
	flag.IntVar(&jobs, "jobs", 4, "how many files -check compiles at once")
	flag.IntVar(&stepLimit, "steps", 0, "limit how many ops each program may execute")
	flag.IntVar(&maxDepth, "depth", 0, "limit how deeply calls, branches and loops may nest")
	flag.StringVar(&constPath, "constants", "", "load constants from a YAML file")
	flag.StringVar(&teePath, "tee", "", "copy program output to a file")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %v [flags] [FILE...]\n\n", os.Args[0])
		fmt.Fprintf(flag.CommandLine.Output(), "Runs each FILE in turn; with no files, starts an interactive session.\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	log.SetOutput(os.Stderr)
	defer func() { os.Exit(log.ExitCode()) }()

	opts := []runnerOption{
		withInput(os.Stdin),
		withOutput(os.Stdout),
		withErrors(&logio.Writer{Logf: log.Leveledf("ERROR")}),
		withStepLimit(stepLimit),
		withMaxDepth(maxDepth),
	}
	if trace {
		opts = append(opts, withLogf(log.Leveledf("TRACE")))
	}
	if dump {
		opts = append(opts, withDump(&logio.Writer{Logf: log.Leveledf("DUMP")}))
	}
	if constPath != "" {
		constants, err := loadConstants(constPath)
		if err != nil {
			log.Errorf("%v", err)
			return
		}
		opts = append(opts, withConstants(constants))
	}
	if teePath != "" {
		f, err := os.Create(teePath)
		if err != nil {
			log.Errorf("%v", err)
			return
		}
		defer func() { log.ErrorIf(f.Close()) }()
		opts = append(opts, withTee(f))
	}
	r := newRunner(opts...)

	if timeout != 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	args := flag.Args()
	switch {
	case checkOnly:
		log.ErrorIf(r.checkFiles(ctx, jobs, args...))
	case len(args) == 0:
		log.ErrorIf(r.interactive(ctx))
	default:
		log.ErrorIf(r.runFiles(ctx, args...))
	}
}
