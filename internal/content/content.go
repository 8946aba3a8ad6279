// ABOUTME: Content processing utilities for feed entries
// ABOUTME: Builds plain-text teasers from HTML summaries and converts full articles to Markdown

package content

import (
	"html"
	"regexp"
	"strings"
	"unicode"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/microcosm-cc/bluemonday"
)

// htmlTagPattern matches common HTML tags.
var htmlTagPattern = regexp.MustCompile(`<\s*/?\s*(p|div|span|a|br|img|h[1-6]|ul|ol|li|table|tr|td|th|strong|em|b|i|code|pre|blockquote)\b[^>]*>`)

// strict removes every element and keeps only text nodes.
var strict = bluemonday.StrictPolicy()

// maxStripPasses bounds the strip/unescape loop for pathologically nested escaping.
const maxStripPasses = 4

// Ellipsis terminates truncated teasers.
const Ellipsis = "…"

// IsHTML checks if content appears to be HTML.
func IsHTML(content string) bool {
	if strings.Contains(content, "<!DOCTYPE") || strings.Contains(content, "<html") {
		return true
	}
	return htmlTagPattern.MatchString(content)
}

// StripTags returns the text of s with all markup removed and entities decoded.
// Escaped markup such as "&lt;/p&gt;" is stripped too, so the result never
// contains a literal tag.
func StripTags(s string) string {
	for i := 0; i < maxStripPasses; i++ {
		next := html.UnescapeString(strict.Sanitize(s))
		if next == s {
			break
		}
		s = next
	}
	// Removing one tag can join its neighbours into another, so repeat until none match.
	for htmlTagPattern.MatchString(s) {
		s = htmlTagPattern.ReplaceAllString(s, "")
	}
	return collapseSpace(s)
}

// Teaser returns the plain-text summary shown for an entry, cut on a word
// boundary to at most max runes (plus Ellipsis). max <= 0 disables the cut.
func Teaser(raw string, max int) string {
	text := StripTags(raw)
	if max <= 0 {
		return text
	}

	runes := []rune(text)
	if len(runes) <= max {
		return text
	}

	cut := max
	for cut > 0 && !unicode.IsSpace(runes[cut]) {
		cut--
	}
	if cut == 0 {
		cut = max
	}
	return strings.TrimRightFunc(string(runes[:cut]), func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsPunct(r)
	}) + Ellipsis
}

// ToMarkdown converts HTML content to Markdown.
// If the content doesn't appear to be HTML, returns it unchanged.
func ToMarkdown(content string) string {
	if content == "" {
		return content
	}

	if !IsHTML(content) {
		return content
	}

	markdown, err := htmltomarkdown.ConvertString(content)
	if err != nil {
		// If conversion fails, return original content.
		return content
	}

	return strings.TrimSpace(markdown)
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
