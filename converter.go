package tex2chtml

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/alnah/go-tex2chtml/internal/pipeline"
)

// Compile-time interface implementation checks.
var (
	_ pipeline.MarkdownConverter = (*pipeline.GoldmarkConverter)(nil)
	_ Typesetter                 = (*mathJaxTypesetter)(nil)
	_ Typesetter                 = (*kaTeXTypesetter)(nil)
)

// Input is one document to convert. Exactly one of HTML and Markdown
// should be set; Markdown wins when both are.
type Input struct {
	HTML     string
	Markdown string

	// SkipNormalize leaves math script tags alone.
	SkipNormalize bool

	// Standalone wraps an HTML fragment in a full document before typesetting.
	// Markdown input is always wrapped.
	Standalone bool
	Title      string

	// Settings overrides the converter's settings for this conversion.
	Settings *Settings
}

// Result is the outcome of a conversion.
type Result struct {
	// HTML is the typeset document. Empty when Errors is non-empty.
	HTML string

	// Errors holds one "TeX error: ..." record per failed fragment,
	// in the order the engine met them.
	Errors []string

	// Fragments counts the math script tags rewritten into delimiters.
	Fragments int
}

// Converter runs the normalize-then-typeset pipeline.
// Create with NewConverter, use Convert, and Close when done.
type Converter struct {
	cfg        converterConfig
	markdown   pipeline.MarkdownConverter
	typesetter Typesetter
}

// NewConverter creates a Converter. Without options it typesets with
// MathJax in headless Chrome, launched lazily on first use.
func NewConverter(opts ...Option) (*Converter, error) {
	c := &Converter{
		cfg: converterConfig{
			timeout:    defaultTimeout,
			engine:     EngineMathJax,
			mathJaxURL: DefaultMathJaxURL,
		},
		markdown: pipeline.NewGoldmarkConverter(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if err := c.cfg.settings.Validate(); err != nil {
		return nil, err
	}

	if c.typesetter == nil {
		switch c.cfg.engine {
		case EngineMathJax, "":
			c.typesetter = newMathJaxTypesetter(c.cfg.timeout, c.cfg.mathJaxURL)
		case EngineKaTeX:
			c.typesetter = newKaTeXTypesetter()
		default:
			return nil, errors.Newf("%w: %q (must be %s or %s)", ErrUnknownEngine, c.cfg.engine, EngineMathJax, EngineKaTeX)
		}
	}

	return c, nil
}

// Convert normalizes math script tags, typesets the document and collects
// per-fragment TeX errors.
//
// When any fragment fails, Convert returns a Result carrying the records
// together with an error wrapping ErrTeX. Any other typesetting failure is
// returned wrapping ErrRender, with no Result. Internal panics are
// recovered as ErrRender. An empty document converts to an empty Result
// without running the engine.
func (c *Converter) Convert(ctx context.Context, input Input) (result *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = errors.Newf("%w: internal error: %v", ErrRender, r)
		}
	}()

	settings := input.Settings
	if settings == nil {
		settings = c.cfg.settings
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	doc, err := c.prepare(ctx, input)
	if err != nil {
		return nil, err
	}

	res := &Result{}
	if doc == "" {
		return res, nil
	}
	if !input.SkipNormalize {
		res.Fragments = len(pipeline.ExtractFragments(doc))
		doc = pipeline.NormalizeDelimiters(doc)
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.timeout)
	defer cancel()

	collector := &ErrorCollector{}
	out, err := c.typesetter.Typeset(ctx, doc, settings.typesetOptions(), collector.Handle)
	if err != nil {
		return nil, &renderError{cause: err}
	}

	if cerr := collector.Err(); cerr != nil {
		res.Errors = collector.Records()
		return res, cerr
	}

	res.HTML = out
	return res, nil
}

// prepare turns the input into the HTML document to typeset.
func (c *Converter) prepare(ctx context.Context, input Input) (string, error) {
	if input.Markdown != "" {
		doc, err := c.markdown.ToHTML(ctx, input.Markdown)
		if err != nil {
			return "", errors.Wrap(err, "converting markdown")
		}
		if input.Title != "" {
			doc = pipeline.ReplaceTitle(doc, input.Title)
		}
		return doc, nil
	}

	if input.Standalone && !pipeline.IsFullDocument(input.HTML) {
		return pipeline.WrapDocument(input.HTML, input.Title), nil
	}
	return input.HTML, nil
}

// Close releases engine resources (headless Chrome for MathJax).
func (c *Converter) Close() error {
	if c.typesetter != nil {
		return c.typesetter.Close()
	}
	return nil
}
