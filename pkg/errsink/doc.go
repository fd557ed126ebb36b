// Package errsink is the single diagnostic exit point shared by the
// lexer and parser: report(fatal, message, location).
//
// Two severities exist. Non-fatal reports (unknown characters,
// malformed numbers, an undefined call target) print a formatted
// message and return control to the caller, which decides how to
// resume (the lexer skips the offending byte; the parser abandons the
// current top-level item and skips to the next def, extern, or end of
// input, not just to the next token). Fatal reports (duplicate definitions, malformed
// operator symbols, out-of-range priorities) print the same way but
// additionally unwind the current parse: Sink.Fatal panics with a
// *FatalError carrying the error kind and location, which Parser.Parse
// recovers at its single top-level boundary and returns as a plain
// error. This is the Go analogue of the source's "print then abort()"
// macro — reified as a value passed by reference instead of a global
// side effect, so it can be driven under `go test` without killing the
// test binary.
//
// Diagnostics are colorized with github.com/fatih/color unless that
// package's color.NoColor is set (it is set when standard output is not
// a terminal, whatever the writer is): red for fatal, yellow for
// recovered non-fatal reports.
package errsink
