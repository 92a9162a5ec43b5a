package audio

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"os/exec"
	"strconv"
	"strings"

	apperrors "meeting-summarizer/internal/app/errors"
	"meeting-summarizer/internal/app/model"
)

// Normalizer converts arbitrary input audio into the mono 16 kHz WAV the
// recognizer expects, shelling out to ffmpeg/ffprobe.
type Normalizer struct {
	ffmpegPath  string
	ffprobePath string
}

// NewNormalizer creates a Normalizer. Empty paths fall back to looking up
// ffmpeg and ffprobe on PATH.
func NewNormalizer(ffmpegPath, ffprobePath string) *Normalizer {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	return &Normalizer{ffmpegPath: ffmpegPath, ffprobePath: ffprobePath}
}

// ConvertTo16kHzWav resamples inputPath to a single channel at 16 kHz and
// writes the result to outputPath. The original file is left untouched.
func (n *Normalizer) ConvertTo16kHzWav(ctx context.Context, inputPath, outputPath string) error {
	cmd := exec.CommandContext(ctx, n.ffmpegPath,
		"-y",
		"-i", inputPath,
		"-vn",
		"-acodec", "pcm_s16le",
		"-ar", "16000",
		"-ac", "1",
		outputPath,
	)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return apperrors.ExternalTool(err, "ffmpeg conversion failed for %s: %s", inputPath, strings.TrimSpace(stderr.String()))
	}
	return nil
}

// Is16kHzMonoWav reports whether the file is already in recognizer format,
// so the conversion step can be skipped.
func (n *Normalizer) Is16kHzMonoWav(ctx context.Context, filePath string) (bool, error) {
	cmd := exec.CommandContext(ctx, n.ffprobePath,
		"-v", "quiet",
		"-print_format", "json",
		"-show_streams",
		filePath,
	)
	output, err := cmd.Output()
	if err != nil {
		return false, apperrors.ExternalTool(err, "ffprobe failed for %s", filePath)
	}

	var probe model.FFProbeOutput
	if err := json.Unmarshal(output, &probe); err != nil {
		return false, apperrors.ExternalTool(err, "unexpected ffprobe output for %s", filePath)
	}

	for _, stream := range probe.Streams {
		if stream.CodecType == "audio" && stream.CodecName == "pcm_s16le" &&
			stream.SampleRate == 16000 && stream.Channels == 1 {
			return true, nil
		}
	}
	return false, nil
}

// Duration returns the audio length in whole seconds as measured by ffprobe.
// This is the real duration, distinct from the word-count estimate stored on
// records.
func (n *Normalizer) Duration(ctx context.Context, filePath string) (int, error) {
	cmd := exec.CommandContext(ctx, n.ffprobePath,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		filePath,
	)
	output, err := cmd.Output()
	if err != nil {
		return 0, apperrors.ExternalTool(err, "ffprobe duration failed for %s", filePath)
	}

	seconds, err := strconv.ParseFloat(strings.TrimSpace(string(output)), 64)
	if err != nil {
		return 0, apperrors.ExternalTool(err, "unexpected ffprobe duration output for %s", filePath)
	}
	return int(math.Round(seconds)), nil
}
