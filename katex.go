package tex2chtml

import (
	"bytes"
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/alnah/go-tex2chtml/internal/katexjs"
	"github.com/alnah/go-tex2chtml/internal/pipeline"
)

// DefaultKaTeXStylesheet is linked from documents typeset with KaTeX. It
// matches the version of the embedded renderer.
const DefaultKaTeXStylesheet = "https://cdn.jsdelivr.net/npm/katex@" + katexjs.Version + "/dist/katex.min.css"

// katexParseErrorPrefix starts every KaTeX parse error message.
const katexParseErrorPrefix = "KaTeX parse error: "

// katexRenderFunc writes the HTML for one fragment to w.
type katexRenderFunc func(w io.Writer, src []byte, display bool) error

// katexOpenFunc loads a renderer with a macro table. The returned func
// releases it.
type katexOpenFunc func(macros map[string]string) (katexRenderFunc, func(), error)

// kaTeXTypesetter typesets each fragment with KaTeX running in an embedded
// JavaScript engine. No browser is needed.
type kaTeXTypesetter struct {
	open       katexOpenFunc
	stylesheet string
}

// newKaTeXTypesetter creates a typesetter backed by the embedded KaTeX.
func newKaTeXTypesetter() *kaTeXTypesetter {
	return &kaTeXTypesetter{
		open:       openKaTeXEngine,
		stylesheet: DefaultKaTeXStylesheet,
	}
}

func openKaTeXEngine(macros map[string]string) (katexRenderFunc, func(), error) {
	e, err := katexjs.New(macros)
	if err != nil {
		return nil, nil, err
	}
	return e.Render, e.Close, nil
}

// Typeset renders every delimited fragment in document order. A fragment
// KaTeX rejects is reported to onError and left as written. Any other
// renderer failure stops the pass.
func (t *kaTeXTypesetter) Typeset(ctx context.Context, doc string, opts *TypesetOptions, onError ErrorHandler) (string, error) {
	render, release, err := t.open(opts.Macros)
	if err != nil {
		return "", err
	}
	defer release()

	rendered := 0
	var fatal error
	out, err := pipeline.RewriteMath(doc, func(f pipeline.Fragment) (string, bool) {
		if fatal != nil || ctx.Err() != nil {
			return "", false
		}

		var buf bytes.Buffer
		if err := render(&buf, []byte(f.Body), f.Kind == pipeline.Display); err != nil {
			var pe *katexjs.ParseError
			if !errors.As(err, &pe) {
				fatal = err
				return "", false
			}
			if onError != nil {
				onError(FragmentError{
					Source:  f.Body,
					Message: katexMessage(pe),
					Display: f.Kind == pipeline.Display,
				})
			}
			return "", false
		}
		rendered++
		return buf.String(), true
	})
	if ctxErr := ctx.Err(); ctxErr != nil {
		return "", ctxErr
	}
	if fatal != nil {
		return "", fatal
	}
	if err != nil {
		return "", err
	}

	if rendered == 0 {
		return out, nil
	}
	return pipeline.InjectIntoHead(out, t.headBlock(opts)), nil
}

// headBlock links the KaTeX stylesheet and pins the math font size to the
// configured em.
func (t *kaTeXTypesetter) headBlock(opts *TypesetOptions) string {
	size := strconv.FormatFloat(opts.EmSize*1.21, 'g', 6, 64)
	return pipeline.StylesheetLink(t.stylesheet) +
		pipeline.StyleBlock(".katex { font-size: "+size+"px; }")
}

// Close is a no-op; each Typeset call loads its own JavaScript runtime.
func (t *kaTeXTypesetter) Close() error {
	return nil
}

// katexMessage strips KaTeX's error prefix and anything after the first line.
func katexMessage(err error) string {
	msg := err.Error()
	if i := strings.Index(msg, katexParseErrorPrefix); i != -1 {
		msg = msg[i+len(katexParseErrorPrefix):]
	}
	if i := strings.IndexByte(msg, '\n'); i != -1 {
		msg = msg[:i]
	}
	return strings.TrimSpace(msg)
}

// CheckKaTeX renders a trivial fragment to confirm the embedded KaTeX
// runtime works.
func CheckKaTeX() error {
	return katexjs.Check()
}
