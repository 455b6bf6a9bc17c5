package pipeline

import (
	"strings"
	"testing"
)

func TestSplitMath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want []Segment
	}{
		{
			name: "plain text",
			text: "no math here",
			want: []Segment{{Text: "no math here"}},
		},
		{
			name: "inline",
			text: "let $x$ be",
			want: []Segment{
				{Text: "let "},
				{Text: "$x$", Math: &Fragment{Kind: Inline, Body: "x"}},
				{Text: " be"},
			},
		},
		{
			name: "display",
			text: "$$a+b$$",
			want: []Segment{
				{Text: "$$a+b$$", Math: &Fragment{Kind: Display, Body: "a+b"}},
			},
		},
		{
			name: "normalized inline then display",
			text: "$a$$$b$$",
			want: []Segment{
				{Text: "$a$", Math: &Fragment{Kind: Inline, Body: "a"}},
				{Text: "$$b$$", Math: &Fragment{Kind: Display, Body: "b"}},
			},
		},
		{
			name: "escaped dollar is literal",
			text: `costs \$5 or $y$`,
			want: []Segment{
				{Text: "costs $5 or "},
				{Text: "$y$", Math: &Fragment{Kind: Inline, Body: "y"}},
			},
		},
		{
			name: "escaped dollar inside math does not close",
			text: `$a\$b$`,
			want: []Segment{
				{Text: `$a\$b$`, Math: &Fragment{Kind: Inline, Body: `a\$b`}},
			},
		},
		{
			name: "unclosed inline kept literal",
			text: "price: $5",
			want: []Segment{{Text: "price: $5"}},
		},
		{
			name: "display across newlines",
			text: "$$a\n=b$$",
			want: []Segment{
				{Text: "$$a\n=b$$", Math: &Fragment{Kind: Display, Body: "a\n=b"}},
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := SplitMath(tt.text)
			if len(got) != len(tt.want) {
				t.Fatalf("SplitMath(%q) returned %d segments, want %d: %+v", tt.text, len(got), len(tt.want), got)
			}
			for i := range tt.want {
				if got[i].Text != tt.want[i].Text {
					t.Errorf("segment %d text = %q, want %q", i, got[i].Text, tt.want[i].Text)
				}
				if (got[i].Math == nil) != (tt.want[i].Math == nil) {
					t.Fatalf("segment %d math = %+v, want %+v", i, got[i].Math, tt.want[i].Math)
				}
				if got[i].Math != nil && *got[i].Math != *tt.want[i].Math {
					t.Errorf("segment %d math = %+v, want %+v", i, *got[i].Math, *tt.want[i].Math)
				}
			}
		})
	}
}

func bracketRenderer(f Fragment) (string, bool) {
	if f.Kind == Display {
		return "[D:" + f.Body + "]", true
	}
	return "[I:" + f.Body + "]", true
}

func TestRewriteMath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		html     string
		expected string
	}{
		{
			name:     "no math unchanged",
			html:     `<html><head><title>T</title></head><body><p class="x">Hi</p></body></html>`,
			expected: `<html><head><title>T</title></head><body><p class="x">Hi</p></body></html>`,
		},
		{
			name:     "inline and display in text",
			html:     `<p>Let $x$ hold.</p><div>$$y$$</div>`,
			expected: `<p>Let [I:x] hold.</p><div>[D:y]</div>`,
		},
		{
			name:     "code and pre skipped",
			html:     `<code>$a$</code><pre>$$b$$</pre><p>$c$</p>`,
			expected: `<code>$a$</code><pre>$$b$$</pre><p>[I:c]</p>`,
		},
		{
			name:     "script content skipped",
			html:     `<script>var s = "$a$";</script>$b$`,
			expected: `<script>var s = "$a$";</script>[I:b]`,
		},
		{
			name:     "entities decoded in body",
			html:     `<p>$a &lt; b$</p>`,
			expected: `<p>[I:a < b]</p>`,
		},
		{
			name:     "nested skip elements",
			html:     `<pre><code>$a$</code> $b$</pre>$c$`,
			expected: `<pre><code>$a$</code> $b$</pre>[I:c]`,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := RewriteMath(tt.html, bracketRenderer)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("RewriteMath() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestRewriteMath_FailedFragmentKeepsSource(t *testing.T) {
	t.Parallel()

	var seen []string
	render := func(f Fragment) (string, bool) {
		seen = append(seen, f.Body)
		if strings.Contains(f.Body, `\bad`) {
			return "", false
		}
		return "<ok/>", true
	}

	got, err := RewriteMath(`<p>$a$ $\bad$ $$c$$</p>`, render)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := `<p><ok/> $\bad$ <ok/></p>`
	if got != want {
		t.Errorf("RewriteMath() = %q, want %q", got, want)
	}
	if len(seen) != 3 {
		t.Errorf("renderer called %d times, want 3 (%v)", len(seen), seen)
	}
}

func TestSplitMath_Positions(t *testing.T) {
	t.Parallel()

	text := `a \$b $c$ d $$e$$`
	segs := SplitMath(text)

	for _, seg := range segs {
		if seg.Math == nil {
			continue
		}
		if got := text[seg.Pos : seg.Pos+len(seg.Text)]; got != seg.Text {
			t.Errorf("segment at %d = %q, want %q", seg.Pos, got, seg.Text)
		}
	}
	if segs[0].Pos != 0 {
		t.Errorf("first literal Pos = %d, want 0", segs[0].Pos)
	}
}
