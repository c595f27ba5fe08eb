package enrich

import "strings"

// maxEmbedTokens is the input budget for the embedding model; longer node
// texts are truncated rather than rejected.
const maxEmbedTokens = 2000

// EstimateTokens gives a rough token count. Exact tokenization is not
// required for truncation decisions.
func EstimateTokens(text string) int {
	if text == "" {
		return 0
	}
	words := len(strings.Fields(text))
	// Roughly 1.33 tokens per word for English text.
	tokens := int(float64(words) * 1.33)
	if tokens < 1 && len(text) > 0 {
		tokens = 1
	}
	return tokens
}

// truncateForEmbedding trims text to the embedding input budget on a word
// boundary.
func truncateForEmbedding(text string) string {
	if EstimateTokens(text) <= maxEmbedTokens {
		return text
	}
	words := strings.Fields(text)
	budget := float64(maxEmbedTokens)
	keep := int(budget / 1.33)
	if keep > len(words) {
		keep = len(words)
	}
	return strings.Join(words[:keep], " ")
}
