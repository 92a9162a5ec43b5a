package summarize

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meeting-summarizer/internal/app/ollama"
)

func TestBuildPromptWithContext(t *testing.T) {
	prompt := BuildPrompt("we discussed the roadmap", "weekly planning call")

	assert.Contains(t, prompt, "Context: weekly planning call")
	assert.Contains(t, prompt, "we discussed the roadmap")
	assert.NotContains(t, prompt, noContextSentinel)
}

func TestBuildPromptWithoutContext(t *testing.T) {
	prompt := BuildPrompt("we discussed the roadmap", "")

	assert.Contains(t, prompt, "Context: "+noContextSentinel)
}

func TestOllamaSummarizerSendsPrompt(t *testing.T) {
	var body []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf := make([]byte, r.ContentLength)
		r.Body.Read(buf)
		body = buf
		w.Write([]byte(`{"response":"A short summary.","done":true}` + "\n"))
	}))
	defer srv.Close()

	s := NewOllamaSummarizer(ollama.NewClient(srv.URL, time.Minute))
	got, err := s.Summarize(context.Background(), Request{
		Transcript: "hello world",
		Model:      "llama2",
	})
	require.NoError(t, err)
	assert.Equal(t, "A short summary.", got)
	assert.Contains(t, string(body), noContextSentinel)
	assert.Contains(t, string(body), "hello world")
}
