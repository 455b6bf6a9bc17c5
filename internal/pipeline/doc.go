// Package pipeline implements the text stages around typesetting.
//
// This package handles everything that works on the document as a string:
//   - Markdown to HTML conversion via Goldmark (optional input stage)
//   - Math script tags rewritten into $...$ and $$...$$ delimiters
//   - Delimited math located in HTML text for in-process engines
//   - Script, style and stylesheet injection into the document head
//
// Typesetting itself is handled by the root tex2chtml package, which drives
// MathJax in headless Chrome (go-rod) or KaTeX in QuickJS. Keeping this
// package free of engines means every stage here is testable without a
// browser.
package pipeline
