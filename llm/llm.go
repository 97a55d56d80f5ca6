package llm

import "context"

// Usage reports token accounting for one completion call when the provider
// makes it available.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Request carries one prompt to a completion provider. SystemPrompt is
// optional and sets provider-level instructions separately from the user
// prompt.
type Request struct {
	Prompt       string
	SystemPrompt string
}

// Response is the generated text plus optional usage accounting.
type Response struct {
	Text  string
	Usage *Usage
}

// Client defines the interface for completion providers. Implementations must
// honor context cancellation; the caller treats a timeout like any other
// generation failure.
type Client interface {
	// Complete generates text for the request.
	Complete(ctx context.Context, req *Request) (*Response, error)
}
