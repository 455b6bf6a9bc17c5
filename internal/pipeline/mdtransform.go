package pipeline

import (
	"context"
	"html"
	"regexp"
	"strconv"
	"strings"
)

// Placeholders use Unicode Private Use Area characters so they pass through
// goldmark untouched. A math placeholder spells its stash index with PUA
// digits, so the whole placeholder is one run of ordinary text.
const (
	MarkStartPlaceholder = "\uE000" // U+E000: Private Use Area start
	MarkEndPlaceholder   = "\uE001" // U+E001: Private Use Area end
	MathStartPlaceholder = "\uE002"
	MathEndPlaceholder   = "\uE003"

	mathDigitZero = '\uE010'
)

// Precompiled regex patterns for performance.
var (
	// Line ending normalization
	crlfOrCR = regexp.MustCompile(`\r\n?`)

	// Compress multiple blank lines to max 2
	multipleBlankLines = regexp.MustCompile(`\n{3,}`)

	// Highlight syntax ==text==
	highlightPattern = regexp.MustCompile(`==(.*?)==`)

	// Fenced code block delimiter line
	fenceLine = regexp.MustCompile("^ {0,3}(```+|~~~+)")

	mathPlaceholderPattern = regexp.MustCompile(MathStartPlaceholder + "([\uE010-\uE019]+)" + MathEndPlaceholder)
)

// MarkdownPreprocessor defines the contract for markdown preprocessing.
type MarkdownPreprocessor interface {
	PreprocessMarkdown(ctx context.Context, content string) (string, *MathStash)
}

// CommonMarkPreprocessor applies transformations before CommonMark conversion.
type CommonMarkPreprocessor struct{}

// PreprocessMarkdown returns the prepared Markdown and the stash holding the
// math it set aside. Math is stashed before any other rewrite so emphasis
// and escape rules never see TeX subscripts or backslashes.
func (p *CommonMarkPreprocessor) PreprocessMarkdown(ctx context.Context, content string) (string, *MathStash) {
	stash := &MathStash{}
	if ctx.Err() != nil {
		return content, stash
	}

	content = normalizeLineEndings(content)
	content = stash.Protect(content)
	content = convertHighlights(content)
	content = compressBlankLines(content)
	return content, stash
}

// MathStash remembers math fragments replaced by placeholders.
type MathStash struct {
	sources []string
}

// Len returns the number of stashed fragments.
func (s *MathStash) Len() int {
	return len(s.sources)
}

// Protect replaces each $...$ and $$...$$ fragment outside code with a
// placeholder. Fenced code blocks and backtick code spans are left alone.
// A paragraph break ends any open inline fragment.
func (s *MathStash) Protect(content string) string {
	var out strings.Builder
	out.Grow(len(content))

	var para []string
	flushPara := func() {
		if len(para) > 0 {
			out.WriteString(s.protectText(strings.Join(para, "")))
			para = para[:0]
		}
	}

	fence := ""
	for _, line := range strings.SplitAfter(content, "\n") {
		if m := fenceLine.FindStringSubmatch(line); m != nil {
			marker := m[1]
			switch {
			case fence == "":
				flushPara()
				fence = marker
			case marker[0] == fence[0] && len(marker) >= len(fence):
				fence = ""
			}
			out.WriteString(line)
			continue
		}
		if fence != "" {
			out.WriteString(line)
			continue
		}
		if strings.TrimSpace(line) == "" {
			flushPara()
			out.WriteString(line)
			continue
		}
		para = append(para, line)
	}
	flushPara()

	return out.String()
}

// protectText stashes math in a paragraph, skipping backtick code spans.
func (s *MathStash) protectText(text string) string {
	var out strings.Builder
	for len(text) > 0 {
		start := strings.IndexByte(text, '`')
		if start < 0 {
			out.WriteString(s.protectSpan(text))
			break
		}
		run := countRun(text[start:], '`')
		closeAt := findBacktickRun(text[start+run:], run)
		if closeAt < 0 {
			out.WriteString(s.protectSpan(text[:start+run]))
			text = text[start+run:]
			continue
		}
		end := start + run + closeAt + run
		out.WriteString(s.protectSpan(text[:start]))
		out.WriteString(text[start:end])
		text = text[end:]
	}
	return out.String()
}

// protectSpan stashes math in text known to hold no code. Escaped dollars
// outside math are doubled up so the generated HTML still carries \$.
func (s *MathStash) protectSpan(text string) string {
	segs := SplitMath(text)

	var out strings.Builder
	cursor := 0
	for _, seg := range segs {
		if seg.Math == nil {
			continue
		}
		out.WriteString(escapeDollars(text[cursor:seg.Pos]))
		out.WriteString(MathStartPlaceholder)
		out.WriteString(encodeIndex(len(s.sources)))
		out.WriteString(MathEndPlaceholder)
		s.sources = append(s.sources, seg.Text)
		cursor = seg.Pos + len(seg.Text)
	}
	out.WriteString(escapeDollars(text[cursor:]))
	return out.String()
}

// Restore puts stashed sources back into generated HTML as escaped text.
// Unknown placeholders are left as they are.
func (s *MathStash) Restore(htmlContent string) string {
	if len(s.sources) == 0 {
		return htmlContent
	}
	return mathPlaceholderPattern.ReplaceAllStringFunc(htmlContent, func(m string) string {
		idx, ok := decodeIndex(mathPlaceholderPattern.FindStringSubmatch(m)[1])
		if !ok || idx >= len(s.sources) {
			return m
		}
		return html.EscapeString(s.sources[idx])
	})
}

// escapeDollars turns \$ into \\\$, which Markdown renders as \$.
func escapeDollars(text string) string {
	return strings.ReplaceAll(text, `\$`, `\\\$`)
}

func countRun(s string, c byte) int {
	n := 0
	for n < len(s) && s[n] == c {
		n++
	}
	return n
}

// findBacktickRun returns the offset of a backtick run of exactly n.
func findBacktickRun(s string, n int) int {
	for i := 0; i < len(s); {
		if s[i] != '`' {
			i++
			continue
		}
		run := countRun(s[i:], '`')
		if run == n {
			return i
		}
		i += run
	}
	return -1
}

func encodeIndex(n int) string {
	var b strings.Builder
	for _, d := range strconv.Itoa(n) {
		b.WriteRune(mathDigitZero + (d - '0'))
	}
	return b.String()
}

func decodeIndex(s string) (int, bool) {
	var b strings.Builder
	for _, r := range s {
		b.WriteRune('0' + (r - mathDigitZero))
	}
	n, err := strconv.Atoi(b.String())
	return n, err == nil
}

// normalizeLineEndings converts \r\n and \r to \n.
func normalizeLineEndings(content string) string {
	return crlfOrCR.ReplaceAllString(content, "\n")
}

// compressBlankLines limits consecutive blank lines to 2 maximum.
func compressBlankLines(content string) string {
	return multipleBlankLines.ReplaceAllString(content, "\n\n")
}

// convertHighlights transforms ==text== to placeholder markers.
// The placeholders are converted to <mark> tags after goldmark runs.
func convertHighlights(content string) string {
	return highlightPattern.ReplaceAllString(content, MarkStartPlaceholder+"$1"+MarkEndPlaceholder)
}

// ConvertMarkPlaceholders converts placeholder markers to <mark> tags.
func ConvertMarkPlaceholders(content string) string {
	return strings.ReplaceAll(
		strings.ReplaceAll(content, MarkStartPlaceholder, "<mark>"),
		MarkEndPlaceholder, "</mark>",
	)
}
