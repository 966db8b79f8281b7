package repository

import "context"

// TextGenerator sends one completion request to the language model.
type TextGenerator interface {
	// Generate returns the raw model text for userPrompt framed by
	// systemPrompt. Failures wrap entity.ErrTransport.
	Generate(ctx context.Context, userPrompt, systemPrompt string) (string, error)
}
