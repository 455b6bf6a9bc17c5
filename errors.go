package tex2chtml

import "github.com/cockroachdb/errors"

// Sentinel errors for library operations.
var (
	// ErrTeX is returned by Convert when one or more fragments failed to
	// typeset. The individual records are in Result.Errors.
	ErrTeX = errors.New("TeX errors in document")

	// ErrRender wraps any typesetting failure not tied to a single fragment.
	ErrRender         = errors.New("typesetting failed")
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageCreate     = errors.New("failed to create browser page")
	ErrPageLoad       = errors.New("failed to load page")
	ErrMathJaxLoad    = errors.New("MathJax did not load")

	// Settings validation errors.
	ErrInvalidEmSize    = errors.New("invalid em size")
	ErrInvalidExSize    = errors.New("invalid ex size")
	ErrUnknownPackage   = errors.New("unknown TeX package")
	ErrUnknownEngine    = errors.New("unknown typesetting engine")
	ErrInvalidMacroName = errors.New("invalid macro name")
)

// renderError marks a failed typesetting pass. It matches ErrRender and
// unwraps to the engine's own error, so both can be tested with errors.Is.
type renderError struct {
	cause error
}

func (e *renderError) Error() string {
	return ErrRender.Error() + ": " + e.cause.Error()
}

func (e *renderError) Unwrap() error { return e.cause }

func (e *renderError) Is(target error) bool { return target == ErrRender }
