package middleware

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
)

var (
	scriptSchemePattern  = regexp.MustCompile(`(?i)\b(?:javascript|vbscript)\s*:`)
	eventHandlerPattern  = regexp.MustCompile(`(?i)\bon[a-z]+\s*=`)
	angleBracketReplacer = strings.NewReplacer("<", "", ">", "")
)

// Sanitize removes markup and script vectors from free text:
//
//   - <script> and <style> elements with their content
//   - every other tag, comment and doctype (text content is kept, entities decoded)
//   - javascript: and vbscript: schemes
//   - on*= event handler attributes
//   - angle brackets
//   - NUL and control characters other than tab and newline
//   - surrounding whitespace
//
// Sanitize is idempotent: Sanitize(Sanitize(s)) == Sanitize(s). It repeats
// until a pass leaves the text unchanged, so nested encodings such as
// "&amp;amp;lt;" are unwrapped however deep they go.
func Sanitize(s string) string {
	// A changing pass removes at least one byte of markup, entity or
	// whitespace, so len(s)+1 passes always reach the fixpoint.
	for limit := len(s) + 1; limit > 0; limit-- {
		next := sanitizePass(s)
		if next == s {
			break
		}
		s = next
	}
	return s
}

func sanitizePass(s string) string {
	s = stripControl(s)
	s = stripMarkup(s)
	s = scriptSchemePattern.ReplaceAllString(s, "")
	s = eventHandlerPattern.ReplaceAllString(s, "")
	s = angleBracketReplacer.Replace(s)
	return strings.TrimSpace(s)
}

// stripMarkup reduces s to its HTML text content, re-parsing while decoded
// entities still produce markup ("&lt;script&gt;" is removed, not kept as text).
func stripMarkup(s string) string {
	for limit := len(s) + 1; limit > 0 && strings.ContainsAny(s, "<&"); limit-- {
		next := htmlText(stripControl(s))
		if next == s {
			break
		}
		s = next
	}
	return s
}

func htmlText(s string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return s
	}
	doc.Find("script, style, noscript, template, iframe, object, embed").Remove()
	return doc.Text()
}

func stripControl(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) || r == unicode.ReplacementChar {
			return -1
		}
		return r
	}, s)
}

// SanitizeValue walks a decoded JSON value and sanitizes every string leaf.
// Maps and slices are copied; numbers, booleans and nil are returned as is.
func SanitizeValue(v any) any {
	switch val := v.(type) {
	case string:
		return Sanitize(val)
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = SanitizeValue(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = SanitizeValue(item)
		}
		return out
	default:
		return v
	}
}
