package whisper

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	apperrors "meeting-summarizer/internal/app/errors"
	"meeting-summarizer/internal/app/util/files"
)

// Model artifacts follow the whisper.cpp naming convention.
const (
	artifactPrefix = "ggml-"
	artifactExt    = ".bin"
)

// Transcriber invokes the whisper-cli binary against a model artifact and
// captures the recognized text.
type Transcriber struct {
	binaryPath string
	modelDir   string
	logger     *zap.Logger
}

// NewTranscriber creates a Transcriber. modelDir is the directory holding
// ggml-<id>.bin artifacts.
func NewTranscriber(binaryPath, modelDir string, logger *zap.Logger) *Transcriber {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Transcriber{
		binaryPath: binaryPath,
		modelDir:   modelDir,
		logger:     logger,
	}
}

// ModelPath resolves a model id to its artifact file.
func (t *Transcriber) ModelPath(modelID string) (string, error) {
	path := filepath.Join(t.modelDir, artifactPrefix+modelID+artifactExt)
	if _, err := os.Stat(path); err != nil {
		return "", apperrors.ModelNotFound(modelID)
	}
	return path, nil
}

// Transcribe runs the recognizer on a normalized 16 kHz WAV file and returns
// the recognized text. outputBase is the path (without extension) the
// recognizer writes its text capture to; the caller owns that location and
// its cleanup.
func (t *Transcriber) Transcribe(ctx context.Context, audioPath, modelID, outputBase string) (string, error) {
	modelPath, err := t.ModelPath(modelID)
	if err != nil {
		return "", err
	}

	args := []string{
		"-m", modelPath,
		"-f", audioPath,
		"-np",
		"-otxt",
		"-of", outputBase,
	}

	cmd := exec.CommandContext(ctx, t.binaryPath, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	t.logger.Debug("running recognizer",
		zap.String("binary", t.binaryPath),
		zap.String("args", strings.Join(args, " ")),
	)

	if err := cmd.Run(); err != nil {
		return "", apperrors.ExternalTool(err, "recognizer failed for %s: %s", audioPath, strings.TrimSpace(stderr.String()))
	}

	text, err := files.ReadOutputFile(outputBase + ".txt")
	if err != nil {
		return "", apperrors.ExternalTool(err, "recognizer produced no readable output for %s", audioPath)
	}
	if text == "" {
		return "", apperrors.ExternalTool(fmt.Errorf("empty transcript"), "recognizer produced no text for %s", audioPath)
	}

	return text, nil
}
