// Package sanitize neutralizes fetched web content before it is shown to a
// model. Fetched text is data, never instructions: this package strips what
// markup and control characters survive extraction, caps the length, and
// wraps the result in delimiters the prompting layer labels as untrusted.
// This is best-effort prompt-injection mitigation, not a guarantee.
package sanitize

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// DefaultMaxLen caps sanitized content handed back to the model.
const DefaultMaxLen = 20000

// BeginMarker and EndMarker delimit untrusted content in prompts.
const (
	BeginMarker = "<<<BEGIN UNTRUSTED PAGE CONTENT>>>"
	EndMarker   = "<<<END UNTRUSTED PAGE CONTENT>>>"
)

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// Text returns a sanitized, delimited rendering of raw fetched content.
func Text(raw string, maxLen int) string {
	if maxLen <= 0 {
		maxLen = DefaultMaxLen
	}

	clean := tagPattern.ReplaceAllString(raw, " ")
	clean = stripControl(clean)

	// The markers themselves must not be forgeable from page content.
	clean = strings.ReplaceAll(clean, BeginMarker, "")
	clean = strings.ReplaceAll(clean, EndMarker, "")

	clean = collapseSpaces(clean)
	if len(clean) > maxLen {
		clean = truncateOnRune(clean, maxLen)
	}

	return fmt.Sprintf("%s\n%s\n%s", BeginMarker, clean, EndMarker)
}

// stripControl drops control characters except newline and tab.
func stripControl(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}

// collapseSpaces normalizes horizontal whitespace and drops blank lines.
func collapseSpaces(s string) string {
	lines := strings.Split(s, "\n")
	var out []string
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

// truncateOnRune cuts at maxLen without splitting a multi-byte rune.
func truncateOnRune(s string, maxLen int) string {
	cut := maxLen
	for cut > 0 && !isRuneStart(s[cut]) {
		cut--
	}
	return strings.TrimSpace(s[:cut])
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
