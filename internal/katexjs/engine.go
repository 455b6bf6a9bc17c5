// Package katexjs runs the KaTeX distribution inside an embedded QuickJS
// interpreter.
package katexjs

import (
	_ "embed"
	"encoding/json"
	"io"
	"runtime"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/lithdew/quickjs"
)

// Version of the embedded katex.min.js.
const Version = "0.16.22"

//go:embed katex.min.js
var source string

// Global names used to hand values to the interpreter.
const (
	srcGlobal     = "__tex2chtmlSrc"
	displayGlobal = "__tex2chtmlDisplay"
	macrosGlobal  = "__tex2chtmlMacros"
)

// renderCall copies the macro table on every call so \gdef in one fragment
// does not leak into the next.
const renderCall = `katex.renderToString(` + srcGlobal + `, {` +
	`displayMode: ` + displayGlobal + `, ` +
	`throwOnError: true, ` +
	`macros: Object.assign({}, ` + macrosGlobal + `)})`

// ErrEngine reports a failure of the interpreter itself, as opposed to a TeX
// error in the rendered source.
var ErrEngine = errors.New("KaTeX engine failure")

// ParseError is a TeX error reported by KaTeX.
type ParseError struct {
	Message string // first line of the thrown error, prefix included
}

func (e *ParseError) Error() string { return e.Message }

// Engine is a loaded KaTeX interpreter. It is bound to the OS thread of the
// goroutine that called New and must be closed on that goroutine.
type Engine struct {
	rt  quickjs.Runtime
	ctx *quickjs.Context
}

// New loads KaTeX and installs macros. Keys are macro names without the
// leading backslash.
func New(macros map[string]string) (*Engine, error) {
	runtime.LockOSThread()

	rt := quickjs.NewRuntime()
	e := &Engine{rt: rt, ctx: rt.NewContext()}

	// Load the library
	if err := e.eval(source); err != nil {
		e.Close()
		return nil, errors.Wrap(ErrEngine, err.Error())
	}

	// Install the macro table
	table := make(map[string]string, len(macros))
	for name, expansion := range macros {
		table[`\`+name] = expansion
	}
	encoded, err := json.Marshal(table)
	if err != nil {
		e.Close()
		return nil, errors.Wrap(err, "encoding macros")
	}
	if err := e.eval("var " + macrosGlobal + " = " + string(encoded) + ";"); err != nil {
		e.Close()
		return nil, errors.Wrap(ErrEngine, err.Error())
	}
	return e, nil
}

// Render writes the HTML for src to w. A TeX error is returned as a
// *ParseError and nothing is written.
func (e *Engine) Render(w io.Writer, src []byte, display bool) error {
	globals := e.ctx.Globals()
	globals.Set(srcGlobal, e.ctx.String(string(src)))
	globals.Set(displayGlobal, e.ctx.Bool(display))

	result, err := e.ctx.Eval(renderCall)
	defer result.Free()
	if err != nil {
		return classify(err.Error())
	}
	// A thrown non-Error value leaves err nil.
	if result.IsException() {
		return errors.Wrap(ErrEngine, "renderToString threw a non-error value")
	}
	if !result.IsString() {
		return errors.Wrap(ErrEngine, "renderToString returned a non-string value")
	}

	_, err = io.WriteString(w, result.String())
	return err
}

// Close frees the interpreter and releases the OS thread.
func (e *Engine) Close() {
	e.ctx.Free()
	e.rt.Free()
	runtime.UnlockOSThread()
}

func (e *Engine) eval(code string) error {
	val, err := e.ctx.Eval(code)
	defer val.Free()
	if err != nil {
		return err
	}
	if val.IsException() {
		return errors.New("uncaught exception")
	}
	return nil
}

// classify turns a thrown JavaScript error into a ParseError when KaTeX
// raised it, and an engine error otherwise.
func classify(cause string) error {
	if i := strings.IndexByte(cause, '\n'); i != -1 {
		cause = cause[:i]
	}
	cause = strings.TrimSpace(cause)
	if strings.Contains(cause, "ParseError") || strings.Contains(cause, "KaTeX parse error") {
		return &ParseError{Message: cause}
	}
	return errors.Wrap(ErrEngine, cause)
}

// Check renders a trivial fragment to confirm the interpreter works.
func Check() error {
	e, err := New(nil)
	if err != nil {
		return err
	}
	defer e.Close()

	var sb strings.Builder
	return e.Render(&sb, []byte("x^2"), false)
}
