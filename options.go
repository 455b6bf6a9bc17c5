package tex2chtml

import (
	"strings"
	"time"

	"github.com/alnah/go-tex2chtml/internal/pipeline"
)

// Option configures a Converter.
type Option func(*Converter)

// converterConfig holds internal configuration for Converter.
type converterConfig struct {
	timeout    time.Duration
	engine     string
	mathJaxURL string
	settings   *Settings
}

// defaultTimeout is used when no timeout is specified.
const defaultTimeout = 30 * time.Second

// WithTimeout sets the typesetting timeout.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("tex2chtml: WithTimeout duration must be positive")
	}
	return func(c *Converter) {
		c.cfg.timeout = d
	}
}

// WithEngine selects the typesetting engine: "mathjax" (default) or "katex".
// An unknown name makes NewConverter fail with ErrUnknownEngine.
func WithEngine(name string) Option {
	return func(c *Converter) {
		c.cfg.engine = strings.ToLower(strings.TrimSpace(name))
	}
}

// WithMathJaxURL sets the MathJax component script. Local paths are
// loaded as file:// URLs.
func WithMathJaxURL(url string) Option {
	return func(c *Converter) {
		c.cfg.mathJaxURL = url
	}
}

// WithSettings sets the default typesetting settings. Input.Settings
// overrides them per conversion.
func WithSettings(s *Settings) Option {
	return func(c *Converter) {
		c.cfg.settings = s
	}
}

// WithTypesetter replaces the engine. The converter takes ownership and
// closes it in Close.
func WithTypesetter(t Typesetter) Option {
	return func(c *Converter) {
		c.typesetter = t
	}
}

// withMarkdownConverter replaces the Markdown stage (tests).
func withMarkdownConverter(m pipeline.MarkdownConverter) Option {
	return func(c *Converter) {
		c.markdown = m
	}
}
