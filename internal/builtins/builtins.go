// Package builtins provides the native procedures and constants that the
// stacklang command makes available to every program.
package builtins

import (
	"fmt"
	"io"
	"strconv"

	"github.com/jcorbin/stacklang/internal/flushio"
	"github.com/jcorbin/stacklang/internal/lang"
	"github.com/jcorbin/stacklang/internal/runeio"
)

// IO holds the streams used by the native procedures.
type IO struct {
	in  runeio.Reader
	out flushio.WriteFlusher
}

// Option configures an IO.
type Option interface{ apply(bio *IO) }

// WithInput sets where read_line reads from; the default is empty input.
func WithInput(r io.Reader) Option { return inputOption{r} }

// WithOutput sets where the print natives write; the default discards.
func WithOutput(w io.Writer) Option { return outputOption{w} }

// WithTee copies all output to an additional writer.
func WithTee(w io.Writer) Option { return teeOption{w} }

type inputOption struct{ io.Reader }
type outputOption struct{ io.Writer }
type teeOption struct{ io.Writer }

func (o inputOption) apply(bio *IO) { bio.in = runeio.NewReader(o.Reader) }

func (o outputOption) apply(bio *IO) {
	if bio.out != nil {
		bio.out.Flush()
	}
	bio.out = flushio.NewWriteFlusher(o.Writer)
}

func (o teeOption) apply(bio *IO) {
	tee, ok := bio.out.(*flushio.Tee)
	if !ok {
		tee = &flushio.Tee{Out: bio.out}
		bio.out = tee
	}
	tee.Add(o.Writer)
}

// New returns native procedure IO configured by opts.
func New(opts ...Option) *IO {
	bio := &IO{
		in:  runeio.NewReader(eofReader{}),
		out: flushio.Discard,
	}
	for _, opt := range opts {
		if opt != nil {
			opt.apply(bio)
		}
	}
	return bio
}

// Output returns the writer that the print natives write to.
func (bio *IO) Output() io.Writer { return bio.out }

// Flush flushes any buffered output.
func (bio *IO) Flush() error { return bio.out.Flush() }

// Natives returns a fresh set of native procedures bound to bio.
func (bio *IO) Natives() map[string]lang.Value {
	natives := make(map[string]lang.Value, 5)
	for _, n := range []*lang.Native{
		bio.native("println", nil, nil, bio.println),
		bio.native("print_int", []lang.Type{lang.IntegerType}, nil, bio.printInt),
		bio.native("print_string", []lang.Type{lang.StringType}, nil, bio.printString),
		bio.native("print_type", []lang.Type{lang.TypeType}, nil, bio.printType),
		bio.native("read_line", nil, []lang.Type{lang.StringType}, bio.readLine),
	} {
		natives[n.Name] = n
	}
	return natives
}

// Constants returns the natives, each as a single valued constant, along
// with the boolean and null constants and the names of types that have no
// keyword of their own.
func (bio *IO) Constants() map[string][]lang.Value {
	constants := map[string][]lang.Value{
		"true":      {lang.Boolean(true)},
		"false":     {lang.Boolean(false)},
		"null":      {lang.Null{}},
		"null_type": {lang.TypeValue{Of: lang.NullType}},
		"type":      {lang.TypeValue{Of: lang.TypeType}},
		"string":    {lang.TypeValue{Of: lang.StringType}},
		"bool":      {lang.TypeValue{Of: lang.BooleanType}},
		"char":      {lang.TypeValue{Of: lang.CharacterType}},
	}
	for name, v := range bio.Natives() {
		constants[name] = []lang.Value{v}
	}
	return constants
}

func (bio *IO) native(name string, args, returns []lang.Type, fn lang.NativeFunc) *lang.Native {
	return &lang.Native{Sig: lang.ProcType(args, returns), Name: name, Fn: fn}
}

func (bio *IO) println(stack *lang.Stack) error {
	_, err := io.WriteString(bio.out, "\n")
	return err
}

func (bio *IO) printInt(stack *lang.Stack) error {
	n := lang.PopAs[lang.Integer](stack)
	_, err := io.WriteString(bio.out, strconv.FormatInt(int64(n), 10)+"\n")
	return err
}

func (bio *IO) printString(stack *lang.Stack) error {
	s := lang.PopAs[lang.String](stack)
	if _, err := runeio.WriteText(bio.out, string(s)); err != nil {
		return err
	}
	return bio.out.Flush()
}

func (bio *IO) printType(stack *lang.Stack) error {
	tv := lang.PopAs[lang.TypeValue](stack)
	_, err := fmt.Fprintln(bio.out, tv.Of)
	return err
}

func (bio *IO) readLine(stack *lang.Stack) error {
	if err := bio.out.Flush(); err != nil {
		return err
	}
	line, err := runeio.ReadLine(bio.in)
	if err != nil {
		return fmt.Errorf("read_line: %w", err)
	}
	stack.Push(lang.String(line))
	return nil
}

type eofReader struct{}

func (eofReader) Read([]byte) (int, error) { return 0, io.EOF }
