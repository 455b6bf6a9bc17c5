package pipeline

import (
	"errors"
	"html"
	"io"
	"strings"

	xhtml "golang.org/x/net/html"
)

// skippedElements never have their content searched for math.
var skippedElements = map[string]bool{
	"script":         true,
	"noscript":       true,
	"style":          true,
	"textarea":       true,
	"pre":            true,
	"code":           true,
	"annotation":     true,
	"annotation-xml": true,
}

// Segment is a run of text that is either literal or one math fragment.
// For math, Text holds the original delimited source. Pos is the byte
// offset of the segment in the scanned text.
type Segment struct {
	Text string
	Pos  int
	Math *Fragment
}

// SplitMath splits a text run into literal text and $$...$$ / $...$ math.
// An escaped \$ becomes a literal dollar sign. An opening delimiter
// without a matching close is kept as literal text.
func SplitMath(text string) []Segment {
	var segs []Segment
	var lit strings.Builder
	litPos := 0

	flush := func() {
		if lit.Len() > 0 {
			segs = append(segs, Segment{Text: lit.String(), Pos: litPos})
			lit.Reset()
		}
	}

	for i := 0; i < len(text); {
		if lit.Len() == 0 {
			litPos = i
		}
		switch {
		case text[i] == '\\' && i+1 < len(text) && text[i+1] == '$':
			lit.WriteByte('$')
			i += 2

		case strings.HasPrefix(text[i:], "$$"):
			end := findClosing(text, i+2, "$$")
			if end < 0 {
				lit.WriteString("$$")
				i += 2
				continue
			}
			flush()
			segs = append(segs, Segment{
				Text: text[i : end+2],
				Pos:  i,
				Math: &Fragment{Kind: Display, Body: text[i+2 : end]},
			})
			i = end + 2

		case text[i] == '$':
			end := findClosing(text, i+1, "$")
			if end < 0 {
				lit.WriteByte('$')
				i++
				continue
			}
			flush()
			segs = append(segs, Segment{
				Text: text[i : end+1],
				Pos:  i,
				Math: &Fragment{Kind: Inline, Body: text[i+1 : end]},
			})
			i = end + 1

		default:
			lit.WriteByte(text[i])
			i++
		}
	}
	flush()

	return segs
}

// findClosing returns the index of the first unescaped delim at or after from.
func findClosing(text string, from int, delim string) int {
	for j := from; j < len(text); j++ {
		if text[j] == '\\' {
			j++
			continue
		}
		if strings.HasPrefix(text[j:], delim) {
			return j
		}
	}
	return -1
}

// MathRenderer renders a single fragment. Returning ok=false keeps the
// fragment's original source in the output.
type MathRenderer func(f Fragment) (rendered string, ok bool)

// RewriteMath finds delimited math in the text content of an HTML document
// and replaces each fragment with its rendering. Markup, and the content of
// script, style, pre, code and similar elements, is copied byte for byte.
// Fragment bodies are entity-decoded before rendering.
func RewriteMath(htmlContent string, render MathRenderer) (string, error) {
	z := xhtml.NewTokenizer(strings.NewReader(htmlContent))

	var out strings.Builder
	out.Grow(len(htmlContent))
	skip := 0

	for {
		tt := z.Next()
		switch tt {
		case xhtml.ErrorToken:
			if err := z.Err(); !errors.Is(err, io.EOF) {
				return "", err
			}
			return out.String(), nil

		case xhtml.StartTagToken:
			out.Write(z.Raw())
			if name, _ := z.TagName(); skippedElements[string(name)] {
				skip++
			}

		case xhtml.EndTagToken:
			out.Write(z.Raw())
			if name, _ := z.TagName(); skippedElements[string(name)] && skip > 0 {
				skip--
			}

		case xhtml.TextToken:
			raw := string(z.Raw())
			if skip > 0 {
				out.WriteString(raw)
				continue
			}
			for _, seg := range SplitMath(raw) {
				if seg.Math == nil {
					out.WriteString(seg.Text)
					continue
				}
				f := Fragment{Kind: seg.Math.Kind, Body: html.UnescapeString(seg.Math.Body)}
				if rendered, ok := render(f); ok {
					out.WriteString(rendered)
				} else {
					out.WriteString(seg.Text)
				}
			}

		default:
			out.Write(z.Raw())
		}
	}
}
