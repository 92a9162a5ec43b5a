package summarize

import (
	"context"
	"fmt"

	"meeting-summarizer/internal/app/ollama"
)

// noContextSentinel is substituted into the prompt when the caller provided
// no guidance, so the model never sees an empty slot.
const noContextSentinel = "No additional context provided."

// Request carries everything the summarizer needs for one transcript.
type Request struct {
	Transcript string
	Context    string
	Model      string
}

// Summarizer turns a transcript plus optional context into a narrative
// summary using an external model.
type Summarizer interface {
	Summarize(ctx context.Context, req Request) (string, error)
}

// BuildPrompt renders the structured summarization prompt.
func BuildPrompt(transcript, context string) string {
	if context == "" {
		context = noContextSentinel
	}
	return fmt.Sprintf(`You are given a transcript from a meeting, along with some optional context.

Context: %s

The transcript is as follows:

%s

Please summarize the transcript.`, context, transcript)
}

// OllamaSummarizer generates summaries through an Ollama server.
type OllamaSummarizer struct {
	client *ollama.Client
}

// NewOllamaSummarizer wraps an Ollama client.
func NewOllamaSummarizer(client *ollama.Client) *OllamaSummarizer {
	return &OllamaSummarizer{client: client}
}

func (s *OllamaSummarizer) Summarize(ctx context.Context, req Request) (string, error) {
	return s.client.Generate(ctx, req.Model, BuildPrompt(req.Transcript, req.Context))
}
