// Package tex2chtml typesets the TeX math in an HTML document into
// CommonHTML and reports every fragment that fails to compile.
//
// # Quick Start
//
//	conv, err := tex2chtml.NewConverter()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer conv.Close()
//
//	result, err := conv.Convert(ctx, tex2chtml.Input{HTML: page})
//	if errors.Is(err, tex2chtml.ErrTeX) {
//	    for _, rec := range result.Errors {
//	        fmt.Fprintln(os.Stderr, rec)
//	    }
//	    os.Exit(1)
//	}
//
// # Conversion Pipeline
//
//  1. Optional Markdown to HTML conversion (Goldmark), math left intact
//  2. Delimiter normalization: <script type="math/tex"> becomes $...$ and
//     <script type="math/tex; mode=display"> becomes $$...$$
//  3. One typesetting pass over the whole document
//  4. Error collection: one "TeX error: <message> in <source>" record per
//     failed fragment, in document order
//
// A document with any failed fragment yields no HTML.
//
// # Engines
//
// The default engine runs MathJax v3 in headless Chrome (go-rod). The
// "katex" engine renders each fragment with KaTeX in an embedded
// JavaScript runtime and needs no browser:
//
//	conv, err := tex2chtml.NewConverter(
//	    tex2chtml.WithEngine(tex2chtml.EngineKaTeX),
//	    tex2chtml.WithTimeout(2 * time.Minute),
//	)
//
// # Settings
//
// Settings carries em/ex sizes, the TeX package list, the font URL and
// macros. Zero fields take defaults; user macros are merged over the
// built-in table that expands unsupported commands such as \relax to
// nothing. KaTeX uses the em-size and macros only; Settings.IgnoredBy lists
// what it would ignore.
package tex2chtml
