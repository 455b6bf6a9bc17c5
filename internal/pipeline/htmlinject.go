package pipeline

import (
	"fmt"
	"html"
	"strings"
)

// documentTemplate wraps a body fragment in a complete HTML5 document.
const documentTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>%s</title>
</head>
<body>
%s
</body>
</html>`

// InjectIntoHead inserts block into an HTML document.
// Tries before </head> first, then right after <body ...>, then prepends.
func InjectIntoHead(htmlContent, block string) string {
	if block == "" {
		return htmlContent
	}

	lowerHTML := strings.ToLower(htmlContent)

	// Try inserting before </head>
	if idx := strings.Index(lowerHTML, "</head>"); idx != -1 {
		return htmlContent[:idx] + block + htmlContent[idx:]
	}

	// Try inserting after <body>
	if idx := strings.Index(lowerHTML, "<body"); idx != -1 {
		closeIdx := strings.Index(htmlContent[idx:], ">")
		if closeIdx != -1 {
			insertPos := idx + closeIdx + 1
			return htmlContent[:insertPos] + block + htmlContent[insertPos:]
		}
	}

	return block + htmlContent
}

// StyleBlock returns css wrapped in a <style> element.
func StyleBlock(css string) string {
	if css == "" {
		return ""
	}
	return "<style>" + escapeClosingTags(css) + "</style>"
}

// StylesheetLink returns a <link rel="stylesheet"> element for href.
func StylesheetLink(href string) string {
	return `<link rel="stylesheet" href="` + html.EscapeString(href) + `">`
}

// InlineScript returns an inline <script> element with the given id.
func InlineScript(id, js string) string {
	return `<script id="` + html.EscapeString(id) + `">` + escapeClosingTags(js) + "</script>"
}

// ExternalScript returns a <script src> element with the given id.
func ExternalScript(id, src string) string {
	return `<script id="` + html.EscapeString(id) + `" src="` + html.EscapeString(src) + `"></script>`
}

// escapeClosingTags escapes "</" so embedded text cannot close its element early.
func escapeClosingTags(s string) string {
	return strings.ReplaceAll(s, "</", `<\/`)
}

// IsFullDocument reports whether htmlContent has its own <html> element.
func IsFullDocument(htmlContent string) bool {
	return strings.Contains(strings.ToLower(htmlContent), "<html")
}

// WrapDocument places an HTML fragment inside a minimal HTML5 document.
func WrapDocument(fragment, title string) string {
	if title == "" {
		title = "Document"
	}
	return fmt.Sprintf(documentTemplate, html.EscapeString(title), fragment)
}

// ReplaceTitle sets the text of the first <title> element.
// Documents without one are returned unchanged.
func ReplaceTitle(htmlContent, title string) string {
	lower := strings.ToLower(htmlContent)
	start := strings.Index(lower, "<title>")
	if start == -1 {
		return htmlContent
	}
	start += len("<title>")
	end := strings.Index(lower[start:], "</title>")
	if end == -1 {
		return htmlContent
	}
	return htmlContent[:start] + html.EscapeString(title) + htmlContent[start+end:]
}
