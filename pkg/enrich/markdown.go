// Package enrich implements C6: converting a raw-content Article into
// clean markdown plus a structured summary (summary paragraph, key
// takeaways, priority, follow-up questions), persisted back onto the
// Article row.
package enrich

import (
	"regexp"
	"strconv"
	"strings"
)

// The block-level patterns below (headings, paragraphs, list items, line
// breaks) become markdown block structure around their stripped text;
// every other tag collapses to plain inline text. This is a minimal,
// spec-scoped HTML->markdown stand-in, not a general converter (spec.md §1
// Non-goals names "HTML-to-markdown conversion" as an out-of-scope
// pure-transformation collaborator) — kept only because C6's own invariant
// requires clean_markdown to be overwritten by some deterministic value
// regardless of what the model returns (spec.md §4.C6 step 3).
var (
	scriptStyleNoscriptRe = regexp.MustCompile(`(?is)<(script|style|noscript)[^>]*>.*?</(script|style|noscript)>`)
	headingRe             = regexp.MustCompile(`(?is)<h([1-6])[^>]*>(.*?)</h[1-6]>`)
	paragraphRe           = regexp.MustCompile(`(?is)<p[^>]*>(.*?)</p>`)
	listItemRe            = regexp.MustCompile(`(?is)<li[^>]*>(.*?)</li>`)
	brRe                  = regexp.MustCompile(`(?i)<br\s*/?>`)
	tagRe                 = regexp.MustCompile(`(?s)<[^>]+>`)
	blankLinesRe          = regexp.MustCompile(`\n{3,}`)
	inlineWhitespaceRe    = regexp.MustCompile(`[ \t]+`)
)

// ToMarkdown converts raw HTML into whitespace-normalized markdown,
// preserving heading/paragraph/list-item block structure as blank-line-
// separated text (headings prefixed with "#"*level, list items with "-").
func ToMarkdown(html string) string {
	text := scriptStyleNoscriptRe.ReplaceAllString(html, "")

	text = headingRe.ReplaceAllStringFunc(text, func(m string) string {
		parts := headingRe.FindStringSubmatch(m)
		level, _ := strconv.Atoi(parts[1])
		return "\n" + strings.Repeat("#", level) + " " + collapseInline(parts[2]) + "\n"
	})
	text = listItemRe.ReplaceAllStringFunc(text, func(m string) string {
		parts := listItemRe.FindStringSubmatch(m)
		return "\n- " + collapseInline(parts[1]) + "\n"
	})
	text = paragraphRe.ReplaceAllStringFunc(text, func(m string) string {
		parts := paragraphRe.FindStringSubmatch(m)
		return "\n" + collapseInline(parts[1]) + "\n"
	})
	text = brRe.ReplaceAllString(text, "\n")
	text = tagRe.ReplaceAllString(text, " ")

	text = inlineWhitespaceRe.ReplaceAllString(text, " ")
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	text = strings.Join(lines, "\n")
	text = blankLinesRe.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

func collapseInline(s string) string {
	s = tagRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(inlineWhitespaceRe.ReplaceAllString(s, " "))
}
