package summarizer

import "context"

// NoOp returns the input cut to a fixed length. Used for development without a provider.
type NoOp struct{}

// NewNoOp creates a NoOp summarizer.
func NewNoOp() *NoOp {
	return &NoOp{}
}

// Summarize returns at most the first 500 characters of text.
func (n *NoOp) Summarize(_ context.Context, text string) (string, error) {
	const maxLength = 500
	r := []rune(text)
	if len(r) <= maxLength {
		return text, nil
	}
	return string(r[:maxLength]) + "...", nil
}

// Name implements Summarizer.
func (n *NoOp) Name() string { return ProviderNoop }
