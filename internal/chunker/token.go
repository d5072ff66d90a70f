package chunker

import "strings"

// EstimateTokens approximates a token count from the number of words. French
// prose tokenizes a little worse than English; 1.33 tokens per word is close
// enough for budgeting prompts.
func EstimateTokens(text string) int {
	if text == "" {
		return 0
	}
	words := len(strings.Fields(text))
	tokens := int(float64(words) * 1.33)
	if tokens < 1 {
		tokens = 1
	}
	return tokens
}
