package tex2chtml

import "context"

// TypesetOptions holds the engine configuration for one render pass.
type TypesetOptions struct {
	EmSize              float64           // pixels per em
	ExFactor            float64           // ex-size / em-size
	Packages            []string          // TeX packages to load
	FontURL             string            // CommonHTML font base URL
	Macros              map[string]string // macro name -> expansion
	InlineMath          [2]string         // inline delimiter pair
	ProcessEnvironments bool              // expand \begin{...} outside math delimiters
}

// ErrorHandler is called once for every fragment the engine cannot typeset.
// The engine abandons that fragment and carries on with the rest.
type ErrorHandler func(FragmentError)

// Typesetter renders every delimited fragment in an HTML document in a
// single pass and returns the resulting document.
//
// Fragment-level TeX errors go to onError and do not make Typeset fail.
// A returned error means the pass itself broke.
type Typesetter interface {
	Typeset(ctx context.Context, html string, opts *TypesetOptions, onError ErrorHandler) (string, error)
	Close() error
}
