package pricing

// EstimateCost computes the unrounded USD cost of one generation call.
// The stored value keeps full float precision; rounding is a display
// concern only.
func EstimateCost(promptTokens, completionTokens int, entry Entry) float64 {
	inputCost := float64(promptTokens) / 1_000_000 * entry.Input
	outputCost := float64(completionTokens) / 1_000_000 * entry.Output
	return inputCost + outputCost
}
