package pipeline

import (
	"regexp"
	"sort"
	"strings"
)

// FragmentKind distinguishes inline math from display math.
type FragmentKind int

// Fragment kinds.
const (
	Inline FragmentKind = iota
	Display
)

// String returns "inline" or "display".
func (k FragmentKind) String() string {
	if k == Display {
		return "display"
	}
	return "inline"
}

// Delimiters returns the opening and closing delimiters the typesetting
// engines expect for this kind of math.
func (k FragmentKind) Delimiters() (open, close string) {
	if k == Display {
		return "$$", "$$"
	}
	return "$", "$"
}

// Fragment is one region of raw TeX source found in a document.
type Fragment struct {
	Kind FragmentKind
	Body string
}

// Math script tags, matched non-greedily across newlines so a body ends
// at the nearest </script>.
var (
	displayScriptPattern = regexp.MustCompile(`(?s)<script type="math/tex; mode=display">(.*?)</script>`)
	inlineScriptPattern  = regexp.MustCompile(`(?s)<script type="math/tex">(.*?)</script>`)
)

// NormalizeDelimiters rewrites math script tags into dollar delimiters:
// display tags become $$BODY$$, inline tags become $BODY$.
// Display tags are rewritten first. Everything outside the tags is copied
// unchanged, so a document without math comes back identical.
func NormalizeDelimiters(htmlContent string) string {
	out := replaceFragments(htmlContent, displayScriptPattern, Display)
	return replaceFragments(out, inlineScriptPattern, Inline)
}

// replaceFragments substitutes every match of re with its first capture
// group wrapped in the delimiters for kind. Bodies are copied literally.
func replaceFragments(s string, re *regexp.Regexp, kind FragmentKind) string {
	matches := re.FindAllStringSubmatchIndex(s, -1)
	if len(matches) == 0 {
		return s
	}

	open, close := kind.Delimiters()
	var b strings.Builder
	b.Grow(len(s))

	last := 0
	for _, m := range matches {
		b.WriteString(s[last:m[0]])
		b.WriteString(open)
		b.WriteString(s[m[2]:m[3]])
		b.WriteString(close)
		last = m[1]
	}
	b.WriteString(s[last:])

	return b.String()
}

// ExtractFragments lists the math script fragments of a document in
// document order. It finds exactly the fragments NormalizeDelimiters
// rewrites.
func ExtractFragments(htmlContent string) []Fragment {
	type located struct {
		start int
		frag  Fragment
	}

	var found []located
	var taken [][]int

	for _, m := range displayScriptPattern.FindAllStringSubmatchIndex(htmlContent, -1) {
		found = append(found, located{m[0], Fragment{Kind: Display, Body: htmlContent[m[2]:m[3]]}})
		taken = append(taken, m[:2])
	}

	for _, m := range inlineScriptPattern.FindAllStringSubmatchIndex(htmlContent, -1) {
		if overlaps(taken, m[0], m[1]) {
			continue
		}
		found = append(found, located{m[0], Fragment{Kind: Inline, Body: htmlContent[m[2]:m[3]]}})
	}

	sort.Slice(found, func(i, j int) bool { return found[i].start < found[j].start })

	frags := make([]Fragment, len(found))
	for i, l := range found {
		frags[i] = l.frag
	}
	return frags
}

func overlaps(spans [][]int, start, end int) bool {
	for _, s := range spans {
		if start < s[1] && s[0] < end {
			return true
		}
	}
	return false
}
