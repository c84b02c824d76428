// Package tokens provides a naive token estimator used for request sizing
// and the token-count endpoints.
package tokens

import "unicode/utf8"

// Estimate approximates the number of model tokens in text, assuming
// roughly four characters per token.
func Estimate(text string) int {
	return len(text)/4 + 1
}

// EstimateAll sums Estimate over all texts.
func EstimateAll(texts []string) int {
	total := 0
	for _, t := range texts {
		total += Estimate(t)
	}
	return total
}

// Truncate cuts text down to at most maxTokens estimated tokens, backing up
// to the nearest rune boundary so a multi-byte character is never split. An
// exact token cut is not required since the embedding backends clip
// over-length inputs anyway.
func Truncate(text string, maxTokens int) string {
	if maxTokens <= 0 {
		return ""
	}
	cut := maxTokens * 4
	if len(text) <= cut {
		return text
	}
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut]
}
