package ollama

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/samber/lo"

	apperrors "meeting-summarizer/internal/app/errors"
)

// maxLineSize bounds a single streamed response line. Fragments are small;
// this only guards against a misbehaving server.
const maxLineSize = 1 << 20

// Client talks to an Ollama server's generate and tags endpoints.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a Client for the given server base URL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

// generateChunk is one line of the streamed generate response.
type generateChunk struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

type tagModel struct {
	Model string `json:"model"`
}

type tagsResponse struct {
	Models []tagModel `json:"models"`
}

// Generate sends a prompt to the generation endpoint and assembles the
// streamed newline-delimited JSON response into a single string. Fragments
// are concatenated in arrival order; consumption stops at the first chunk
// with done=true or at stream end.
func (c *Client) Generate(ctx context.Context, model, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{Model: model, Prompt: prompt})
	if err != nil {
		return "", fmt.Errorf("encode generate request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build generate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", apperrors.ServiceUnavailable(err, "generate request to %s failed", c.baseURL)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, maxLineSize))
		return "", apperrors.ServiceUnavailable(nil, "generate request returned %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	var full strings.Builder
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}

		var chunk generateChunk
		if err := json.Unmarshal(line, &chunk); err != nil {
			// Surface what was assembled so far plus the offending
			// line as diagnostic context, never silently drop it.
			return "", apperrors.MalformedResponse(err,
				"invalid JSON line in generate stream (assembled %d bytes so far): %q",
				full.Len(), truncate(string(line), 512))
		}

		full.WriteString(chunk.Response)
		if chunk.Done {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return "", apperrors.ServiceUnavailable(err, "generate stream aborted after %d bytes", full.Len())
	}

	return full.String(), nil
}

// ListModels queries the tags endpoint and returns the available model names.
func (c *Client) ListModels(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/tags", nil)
	if err != nil {
		return nil, fmt.Errorf("build tags request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.ServiceUnavailable(err, "tags request to %s failed", c.baseURL)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, maxLineSize))
		return nil, apperrors.ServiceUnavailable(nil, "tags request returned %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	var tags tagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return nil, apperrors.MalformedResponse(err, "invalid tags response")
	}

	return lo.Map(tags.Models, func(m tagModel, _ int) string {
		return m.Model
	}), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
