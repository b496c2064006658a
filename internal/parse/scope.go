package parse

import "github.com/jcorbin/stacklang/internal/lang"

type scopeKind int

const (
	scopeOver scopeKind = iota
	scopeVar
	scopeGet
	scopeProcTypeParams
	scopeProcTypeReturns
	scopeProcParams
	scopeProcReturns
	scopeProcBody
	scopeIfCondition
	scopeIfThen
	scopeIfElse
	scopeWhileCondition
	scopeWhileBody
	scopeConst
)

var scopeNames = [...]string{
	scopeOver:            "over",
	scopeVar:             "var",
	scopeGet:             "get",
	scopeProcTypeParams:  "proc_type parameter types",
	scopeProcTypeReturns: "proc_type return types",
	scopeProcParams:      "proc parameter types",
	scopeProcReturns:     "proc return types",
	scopeProcBody:        "proc body",
	scopeIfCondition:     "if condition",
	scopeIfThen:          "then block of an if",
	scopeIfElse:          "else block of an if",
	scopeWhileCondition:  "while condition",
	scopeWhileBody:       "while body",
	scopeConst:           "const",
}

func (kind scopeKind) String() string { return scopeNames[kind] }

// closer returns the delimiter that closes the scope, or 0 if no delimiter
// may close it directly.
func (sc *scope) closer() rune {
	switch sc.kind {
	case scopeProcBody, scopeIfThen, scopeIfElse, scopeWhileBody:
		return '}'
	case scopeWhileCondition:
		if sc.braced {
			return '}'
		}
		return 0
	case scopeIfCondition:
		return 0
	default:
		return ')'
	}
}

// scope is an open bracketed construct; outer holds the op accumulator to
// resume once it closes.
type scope struct {
	kind  scopeKind
	open  lang.Location
	outer []lang.Op

	params  []lang.Type // proc_type and proc signatures
	returns []lang.Type // proc body
	block   []lang.Op   // then ops of an if, or condition ops of a while
	braced  bool        // while condition written as { ... }
}
