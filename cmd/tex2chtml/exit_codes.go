package main

import (
	"errors"
	"os"

	tex2chtml "github.com/alnah/go-tex2chtml"
	"github.com/alnah/go-tex2chtml/internal/config"
)

// Exit codes for the tex2chtml CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // No TeX errors, including runs where the engine itself failed
	ExitGeneral = 1 // TeX errors in the document, or unexpected error
	ExitUsage   = 2 // Invalid flags, config, or validation
	ExitIO      = 3 // File not found, permission denied
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Fragment errors are the document's fault, not the engine's.
	if errors.Is(err, tex2chtml.ErrTeX) {
		return ExitGeneral
	}

	// Engine failures are logged but produce no TeX error records, so the
	// run does not fail.
	if errors.Is(err, tex2chtml.ErrBrowserConnect) ||
		errors.Is(err, tex2chtml.ErrPageCreate) ||
		errors.Is(err, tex2chtml.ErrPageLoad) ||
		errors.Is(err, tex2chtml.ErrMathJaxLoad) ||
		errors.Is(err, tex2chtml.ErrRender) {
		return ExitSuccess
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, ErrReadInput) ||
		errors.Is(err, ErrWriteOutput) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, ErrUsage) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, tex2chtml.ErrInvalidEmSize) ||
		errors.Is(err, tex2chtml.ErrInvalidExSize) ||
		errors.Is(err, tex2chtml.ErrUnknownPackage) ||
		errors.Is(err, tex2chtml.ErrUnknownEngine) ||
		errors.Is(err, tex2chtml.ErrInvalidMacroName) {
		return ExitUsage
	}

	return ExitGeneral
}
