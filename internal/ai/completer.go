package ai

import (
	"context"

	"github.com/kruglovb/ai-interviewer/internal/transcript"
)

// Request describes a single completion call. The system prompt and the
// prior turns are sent together; Temperature and MaxTokens bound the
// model output.
type Request struct {
	System      string
	Turns       []transcript.Turn
	Temperature float64
	MaxTokens   int
}

// Completer produces one textual completion for the supplied request.
// Implementations wrap a remote model API and may fail with network or
// HTTP errors; callers are expected to degrade to a fallback value
// rather than abort the interview.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}
