/*
Command stacklang compiles and runs programs written in a small, statically
typed, concatenative stack language.

A program is a sequence of words that operate on a stack of values. Every
value has a type, and every program is checked before it runs: the checker
simulates each op over a stack of types, so that a program which could
underflow the stack, add a string to an integer, or leave different things on
the stack depending on which branch of an if it took is rejected with an
error pointing at the offending word.

	5 6 add print_int call

prints 11. A procedure is a value like any other; this one names its two
arguments, and is stored in a local before being called:

	proc(int int) -> (int) {
		var("a" "b") get("a") load get("b") load mul
	} var("times")
	6 7 get("times") load call print_int call

Bracketed forms such as over(...), var(...), get(...), proc_type(...),
proc(...) and const(...) are evaluated while compiling: their contents are
themselves compiled, checked, and run, and the values they leave become part
of the compiled program.

	const("answer" 42)
	answer print_int call

Usage:

	stacklang [flags] [FILE...]

Each FILE is compiled and run in turn, sharing a single value stack. With
-check, the files are only compiled, several at once. With no files, an
interactive session starts, keeping the value stack from one entry to the
next.
*/
package main
