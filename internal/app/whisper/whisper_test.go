package whisper

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "meeting-summarizer/internal/app/errors"
)

// newTestSetup creates a model dir with a ggml-base.bin artifact and a mock
// recognizer script.
func newTestSetup(t *testing.T, script string) (*Transcriber, string) {
	t.Helper()

	modelDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(modelDir, "ggml-base.bin"), []byte("model"), 0o644))

	binary := filepath.Join(t.TempDir(), "mock_whisper.sh")
	require.NoError(t, os.WriteFile(binary, []byte("#!/bin/sh\n"+script), 0o755))

	return NewTranscriber(binary, modelDir, nil), t.TempDir()
}

func TestTranscribe(t *testing.T) {
	// The mock recognizer honors -of by writing <base>.txt like whisper-cli.
	script := `
while [ $# -gt 0 ]; do
  if [ "$1" = "-of" ]; then base="$2"; shift; fi
  shift
done
echo "and so my fellow americans" > "$base.txt"
`
	tr, workDir := newTestSetup(t, script)

	got, err := tr.Transcribe(context.Background(), "audio.wav", "base", filepath.Join(workDir, "transcript"))
	require.NoError(t, err)
	assert.Equal(t, "and so my fellow americans", got)
}

func TestTranscribeUnknownModel(t *testing.T) {
	tr, workDir := newTestSetup(t, `echo ok`)

	_, err := tr.Transcribe(context.Background(), "audio.wav", "large-V3", filepath.Join(workDir, "transcript"))
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindModelNotFound))
	assert.Contains(t, err.Error(), "large-V3")
}

func TestTranscribeNonZeroExit(t *testing.T) {
	tr, workDir := newTestSetup(t, `echo "failed to load model" >&2; exit 3`)

	_, err := tr.Transcribe(context.Background(), "audio.wav", "base", filepath.Join(workDir, "transcript"))
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindExternalTool))
	assert.Contains(t, err.Error(), "failed to load model")
}

func TestTranscribeMissingBinary(t *testing.T) {
	modelDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(modelDir, "ggml-base.bin"), []byte("model"), 0o644))
	tr := NewTranscriber("/no/such/whisper-cli", modelDir, nil)

	_, err := tr.Transcribe(context.Background(), "audio.wav", "base", filepath.Join(t.TempDir(), "transcript"))
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindExternalTool))
}

func TestTranscribeEmptyOutput(t *testing.T) {
	script := `
while [ $# -gt 0 ]; do
  if [ "$1" = "-of" ]; then base="$2"; shift; fi
  shift
done
: > "$base.txt"
`
	tr, workDir := newTestSetup(t, script)

	_, err := tr.Transcribe(context.Background(), "audio.wav", "base", filepath.Join(workDir, "transcript"))
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindExternalTool))
}

func TestTranscribeNoOutputFile(t *testing.T) {
	tr, workDir := newTestSetup(t, `exit 0`)

	_, err := tr.Transcribe(context.Background(), "audio.wav", "base", filepath.Join(workDir, "transcript"))
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindExternalTool))
}

func TestTranscribePassesModelAndInput(t *testing.T) {
	script := `
echo "$@" > "$(dirname "$0")/args.txt"
while [ $# -gt 0 ]; do
  if [ "$1" = "-of" ]; then base="$2"; shift; fi
  shift
done
echo "text" > "$base.txt"
`
	tr, workDir := newTestSetup(t, script)

	_, err := tr.Transcribe(context.Background(), "meeting.wav", "base", filepath.Join(workDir, "transcript"))
	require.NoError(t, err)

	argsData, err := os.ReadFile(filepath.Join(filepath.Dir(tr.binaryPath), "args.txt"))
	require.NoError(t, err)
	args := string(argsData)
	assert.Contains(t, args, "ggml-base.bin")
	assert.Contains(t, args, "meeting.wav")
	assert.Contains(t, args, "-otxt")
}

func TestModelPath(t *testing.T) {
	modelDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(modelDir, "ggml-small.bin"), []byte("m"), 0o644))
	tr := NewTranscriber("whisper-cli", modelDir, nil)

	path, err := tr.ModelPath("small")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, "ggml-small.bin"))

	_, err = tr.ModelPath("medium")
	assert.True(t, apperrors.IsKind(err, apperrors.KindModelNotFound))
}
