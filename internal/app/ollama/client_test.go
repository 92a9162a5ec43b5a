package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "meeting-summarizer/internal/app/errors"
)

func TestGenerateAssemblesFragmentsInOrder(t *testing.T) {
	var gotReq generateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/generate", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		w.Header().Set("Content-Type", "application/x-ndjson")
		w.Write([]byte(`{"response":"The meeting ","done":false}` + "\n"))
		w.Write([]byte(`{"response":"covered the Q3 ","done":false}` + "\n"))
		w.Write([]byte(`{"response":"budget.","done":true}` + "\n"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Minute)
	got, err := c.Generate(context.Background(), "llama2", "Summarize this")
	require.NoError(t, err)
	assert.Equal(t, "The meeting covered the Q3 budget.", got)
	assert.Equal(t, "llama2", gotReq.Model)
	assert.Equal(t, "Summarize this", gotReq.Prompt)
}

func TestGenerateStopsAtDone(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"response":"keep","done":true}` + "\n"))
		w.Write([]byte(`{"response":" drop","done":false}` + "\n"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Minute)
	got, err := c.Generate(context.Background(), "llama2", "p")
	require.NoError(t, err)
	assert.Equal(t, "keep", got)
}

func TestGenerateStreamEndWithoutDone(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"response":"partial ","done":false}` + "\n"))
		w.Write([]byte(`{"response":"answer","done":false}` + "\n"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Minute)
	got, err := c.Generate(context.Background(), "llama2", "p")
	require.NoError(t, err)
	assert.Equal(t, "partial answer", got)
}

func TestGenerateMalformedLine(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"response":"good","done":false}` + "\n"))
		w.Write([]byte("<html>gateway error</html>\n"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Minute)
	_, err := c.Generate(context.Background(), "llama2", "p")
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindMalformedResponse))
	// The raw offending line is preserved as diagnostic context.
	assert.Contains(t, err.Error(), "gateway error")
}

func TestGenerateNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Minute)
	_, err := c.Generate(context.Background(), "llama2", "p")
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindServiceUnavailable))
	assert.Contains(t, err.Error(), "model not loaded")
}

func TestGenerateConnectionrefused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := NewClient(srv.URL, time.Second)
	_, err := c.Generate(context.Background(), "llama2", "p")
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindServiceUnavailable))
}

func TestGenerateSkipsBlankLines(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("\n"))
		w.Write([]byte(`{"response":"ok","done":true}` + "\n"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Minute)
	got, err := c.Generate(context.Background(), "llama2", "p")
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
}

func TestListModels(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/tags", r.URL.Path)
		w.Write([]byte(`{"models":[{"model":"llama2","size":123},{"model":"mistral"}]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Minute)
	models, err := c.ListModels(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"llama2", "mistral"}, models)
}

func TestListModelsNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "busy", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Minute)
	_, err := c.ListModels(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindServiceUnavailable))
}

func TestListModelsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"models":[]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Minute)
	models, err := c.ListModels(context.Background())
	require.NoError(t, err)
	assert.Empty(t, models)
}
