package tex2chtml

import (
	"math"
	"regexp"
	"slices"
	"sort"

	"github.com/cockroachdb/errors"

	"github.com/alnah/go-tex2chtml/internal/config"
)

// Default typesetting values.
const (
	DefaultEmSize     = 16.0
	DefaultExSize     = 8.0
	DefaultFontURL    = "https://cdn.jsdelivr.net/npm/mathjax@3/es5/output/chtml/fonts/woff-v2"
	DefaultMathJaxURL = "https://cdn.jsdelivr.net/npm/mathjax@3/es5/tex-chtml-full.js"
)

// Size bounds in pixels.
const (
	MinUnitSize = 1.0
	MaxUnitSize = 512.0
)

// Engine names.
const (
	EngineMathJax = config.EngineMathJax
	EngineKaTeX   = config.EngineKaTeX
)

// AllPackages lists the TeX extension packages bundled with the MathJax
// full component, sorted by name.
var AllPackages = []string{
	"action", "ams", "amscd", "base", "bbox", "boldsymbol", "braket",
	"bussproofs", "cancel", "cases", "centernot", "color", "colortbl",
	"colorv2", "configmacros", "empheq", "enclose", "extpfeil", "gensymb",
	"html", "mathtools", "mhchem", "newcommand", "noerrors", "noundefined",
	"physics", "setoptions", "tagformat", "textcomp", "textmacros",
	"unicode", "upgreek", "verb",
}

// excludedPackages would hide TeX errors instead of reporting them.
var excludedPackages = map[string]bool{
	"noerrors":    true,
	"noundefined": true,
}

// neutralizedMacros are commands found in course material that the engine
// does not support. They expand to nothing.
var neutralizedMacros = []string{
	"relax", "ensuremath", "xspace", "answer", "graph",
	"newlabel", "sage", "sagestr", "delimiter", "js",
}

var macroNamePattern = regexp.MustCompile(`^[A-Za-z]+$`)

// Settings configures how math is typeset. The zero value of a field means
// "use the default"; use DefaultSettings for a fully populated value.
type Settings struct {
	EmSize   float64           // pixels per em
	ExSize   float64           // pixels per ex
	Packages []string          // TeX packages, in order
	FontURL  string            // base URL for CommonHTML web fonts
	Macros   map[string]string // name (no backslash) -> expansion
}

// DefaultSettings returns settings with every default applied.
func DefaultSettings() *Settings {
	return &Settings{
		EmSize:   DefaultEmSize,
		ExSize:   DefaultExSize,
		Packages: DefaultPackages(),
		FontURL:  DefaultFontURL,
		Macros:   DefaultMacros(),
	}
}

// DefaultPackages returns AllPackages minus noerrors and noundefined.
func DefaultPackages() []string {
	out := make([]string, 0, len(AllPackages))
	for _, p := range AllPackages {
		if !excludedPackages[p] {
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out
}

// DefaultMacros returns the neutralization table: every entry expands to "".
func DefaultMacros() map[string]string {
	m := make(map[string]string, len(neutralizedMacros))
	for _, name := range neutralizedMacros {
		m[name] = ""
	}
	return m
}

// ParsePackages splits a comma-separated package list such as "base, ams".
func ParsePackages(s string) []string {
	return config.SplitList(s)
}

// IsKnownPackage reports whether name is one of AllPackages.
func IsKnownPackage(name string) bool {
	_, found := slices.BinarySearch(AllPackages, name)
	return found
}

// Validate checks sizes, package names and macro names.
// Returns nil if s is nil (nil means use defaults).
func (s *Settings) Validate() error {
	if s == nil {
		return nil
	}

	if err := validateUnit(s.EmSize); err != nil {
		return errors.Newf("%w: %v", ErrInvalidEmSize, err)
	}
	if err := validateUnit(s.ExSize); err != nil {
		return errors.Newf("%w: %v", ErrInvalidExSize, err)
	}

	for _, p := range s.Packages {
		if !IsKnownPackage(p) {
			return errors.Newf("%w: %q", ErrUnknownPackage, p)
		}
	}

	for name := range s.Macros {
		if !macroNamePattern.MatchString(name) {
			return errors.Newf("%w: %q (letters only, no backslash)", ErrInvalidMacroName, name)
		}
	}
	return nil
}

// validateUnit accepts 0 (default) or a finite size within bounds.
func validateUnit(v float64) error {
	if v == 0 {
		return nil
	}
	if math.IsNaN(v) || math.IsInf(v, 0) || v < MinUnitSize || v > MaxUnitSize {
		return errors.Newf("%g (must be between %g and %g)", v, MinUnitSize, MaxUnitSize)
	}
	return nil
}

// resolved returns a copy with defaults filled in. User macros are merged
// over the neutralization table.
func (s *Settings) resolved() *Settings {
	out := DefaultSettings()
	if s == nil {
		return out
	}
	if s.EmSize != 0 {
		out.EmSize = s.EmSize
	}
	if s.ExSize != 0 {
		out.ExSize = s.ExSize
	}
	if len(s.Packages) > 0 {
		out.Packages = slices.Clone(s.Packages)
	}
	if s.FontURL != "" {
		out.FontURL = s.FontURL
	}
	for name, expansion := range s.Macros {
		out.Macros[name] = expansion
	}
	return out
}

// ExFactor returns the ex-size as a fraction of the em-size.
func (s *Settings) ExFactor() float64 {
	r := s.resolved()
	return r.ExSize / r.EmSize
}

// IgnoredBy names the settings that differ from their defaults but have no
// effect with engine. KaTeX ships its own fonts and TeX support, and sizes
// everything from the em.
func (s *Settings) IgnoredBy(engine string) []string {
	if engine != EngineKaTeX {
		return nil
	}

	r := s.resolved()
	var ignored []string
	if !slices.Equal(r.Packages, DefaultPackages()) {
		ignored = append(ignored, "packages")
	}
	if r.FontURL != DefaultFontURL {
		ignored = append(ignored, "fontURL")
	}
	if r.ExSize != DefaultExSize {
		ignored = append(ignored, "ex")
	}
	return ignored
}

// typesetOptions builds the engine options for these settings.
func (s *Settings) typesetOptions() *TypesetOptions {
	r := s.resolved()
	return &TypesetOptions{
		EmSize:              r.EmSize,
		ExFactor:            r.ExFactor(),
		Packages:            r.Packages,
		FontURL:             r.FontURL,
		Macros:              r.Macros,
		InlineMath:          [2]string{"$", "$"},
		ProcessEnvironments: false,
	}
}
