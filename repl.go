package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"github.com/jcorbin/stacklang/internal/fileinput"
	"github.com/jcorbin/stacklang/internal/lang"
)

const (
	historyFile = ".stacklang_history"
	promptMain  = "> "
	promptCont  = ". "
)

// prompter is the part of *liner.State used by the REPL.
type prompter interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
}

// interactive runs a REPL on the terminal, with line editing and history.
func (r *runner) interactive(ctx context.Context) error {
	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	histPath := ""
	if home, err := os.UserHomeDir(); err == nil {
		histPath = filepath.Join(home, historyFile)
		if f, err := os.Open(histPath); err == nil {
			ln.ReadHistory(f)
			f.Close()
		}
	}
	defer func() {
		if histPath == "" {
			return
		}
		if f, err := os.Create(histPath); err == nil {
			ln.WriteHistory(f)
			f.Close()
		}
	}()

	return r.repl(ctx, ln)
}

// repl reads entries from p, compiling and running each one in a single
// session. Lines accumulate into one entry until they compile as a complete
// program. The value stack carries over from one entry to the next, and is
// printed after each entry that runs successfully. An entry that fails to
// compile or run leaves the stack as it was.
func (r *runner) repl(ctx context.Context, p prompter) error {
	s := r.newSession(&promptReader{p: p}, r.out, r.tee)
	var (
		sb      strings.Builder
		pending error
	)
	for n := 1; ; {
		if err := ctx.Err(); err != nil {
			return err
		}
		prompt := promptMain
		if sb.Len() > 0 {
			prompt = promptCont
		}
		line, err := p.Prompt(prompt)
		if errors.Is(err, liner.ErrPromptAborted) {
			sb.Reset()
			continue
		} else if errors.Is(err, io.EOF) {
			return pending
		} else if err != nil {
			return err
		}

		if sb.Len() > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(line)
		text := sb.String()
		if strings.TrimSpace(text) == "" {
			sb.Reset()
			continue
		}

		prog, err := s.compile(ctx, fileinput.NewSource(fmt.Sprintf("<repl:%v>", n), text))
		if lang.IsIncomplete(err) {
			pending = err
			continue
		}
		pending = nil
		sb.Reset()
		n++
		p.AppendHistory(strings.ReplaceAll(text, "\n", " "))

		if err == nil {
			err = s.run(ctx, prog)
		}
		if err != nil {
			fmt.Fprintf(r.errOut, "%v\n", err)
			continue
		}
		fmt.Fprintf(r.out, "%v\n", lang.Stack(s.stack))
	}
}

// promptReader lets read_line take its input from the same prompter as the
// REPL itself.
type promptReader struct {
	p   prompter
	buf []byte
}

func (pr *promptReader) Read(b []byte) (int, error) {
	if len(pr.buf) == 0 {
		line, err := pr.p.Prompt("")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) {
				err = io.EOF
			}
			return 0, err
		}
		pr.buf = append(pr.buf[:0], line...)
		pr.buf = append(pr.buf, '\n')
	}
	n := copy(b, pr.buf)
	pr.buf = pr.buf[n:]
	return n, nil
}
