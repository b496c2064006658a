package lang

import (
	"fmt"
	"io"
	"strings"
)

type opDumper struct {
	out io.Writer

	locWidth int
	withLocs bool
}

// DumpOps writes an indented listing of an op tree, one op per line, with
// nested blocks indented under their owner. If withLocs is true, each line
// starts with the op's source location.
func DumpOps(out io.Writer, ops []Op, withLocs bool) error {
	dump := opDumper{out: out, withLocs: withLocs}
	if withLocs {
		dump.scanLocs(ops)
	}
	fmt.Fprintf(out, "# Ops\n")
	var buf strings.Builder
	dump.dumpOps(&buf, ops, 1)
	_, err := io.WriteString(out, buf.String())
	return err
}

func (dump *opDumper) scanLocs(ops []Op) {
	for _, op := range ops {
		if n := len(op.Loc.String()); !op.Loc.IsZero() && n > dump.locWidth {
			dump.locWidth = n
		}
		dump.scanLocs(op.Then)
		dump.scanLocs(op.Else)
		dump.scanLocs(op.Cond)
		dump.scanLocs(op.Loop)
		if op.Body != nil {
			dump.scanLocs(op.Body.Ops)
		}
	}
}

func (dump *opDumper) dumpOps(buf *strings.Builder, ops []Op, depth int) {
	for _, op := range ops {
		if dump.withLocs {
			loc := ""
			if !op.Loc.IsZero() {
				loc = op.Loc.String()
			}
			fmt.Fprintf(buf, "%-*v ", dump.locWidth, loc)
		}
		buf.WriteString(strings.Repeat("  ", depth))
		buf.WriteString(op.String())
		buf.WriteByte('\n')

		switch op.Code {
		case CodeMakeProcedure:
			dump.dumpBlock(buf, "body", op.Body.Ops, depth)
		case CodeIf:
			dump.dumpBlock(buf, "then", op.Then, depth)
			if len(op.Else) > 0 {
				dump.dumpBlock(buf, "else", op.Else, depth)
			}
		case CodeWhile:
			dump.dumpBlock(buf, "cond", op.Cond, depth)
			dump.dumpBlock(buf, "loop", op.Loop, depth)
		}
	}
}

func (dump *opDumper) dumpBlock(buf *strings.Builder, label string, ops []Op, depth int) {
	if dump.withLocs {
		fmt.Fprintf(buf, "%-*v ", dump.locWidth, "")
	}
	buf.WriteString(strings.Repeat("  ", depth+1))
	buf.WriteString(label)
	buf.WriteString(":\n")
	dump.dumpOps(buf, ops, depth+2)
}

// DumpTypes writes a type stack listing, top first.
func DumpTypes(out io.Writer, types []Type) error {
	var buf strings.Builder
	buf.WriteString("Current types on the stack:\n")
	for i := len(types) - 1; i >= 0; i-- {
		buf.WriteString("  ")
		buf.WriteString(types[i].String())
		buf.WriteByte('\n')
	}
	_, err := io.WriteString(out, buf.String())
	return err
}
