// Package pipeline orchestrates the full audio -> transcript -> summary ->
// store flow. A run either completes end to end and persists one record, or
// fails at an identifiable stage and persists nothing.
package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "meeting-summarizer/internal/app/errors"
	"meeting-summarizer/internal/app/metrics"
	"meeting-summarizer/internal/app/model"
	"meeting-summarizer/internal/app/repository"
	"meeting-summarizer/internal/app/summarize"
	"meeting-summarizer/internal/app/util/files"
)

// Converter normalizes input audio into mono 16 kHz WAV.
type Converter interface {
	ConvertTo16kHzWav(ctx context.Context, inputPath, outputPath string) error
	Is16kHzMonoWav(ctx context.Context, filePath string) (bool, error)
	Duration(ctx context.Context, filePath string) (int, error)
}

// Transcriber turns normalized audio into text with a named model.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath, modelID, outputBase string) (string, error)
}

// Request describes one pipeline run.
type Request struct {
	// AudioPath is the input file on disk. It is never modified.
	AudioPath string

	// AudioFilename is the name recorded in history. Defaults to the base
	// name of AudioPath; uploads pass the original client filename here.
	AudioFilename string

	Context            string
	TranscriptionModel string
	SummarizationModel string
	Owner              string
}

// Pipeline wires the stages together around a shared scratch directory.
type Pipeline struct {
	converter   Converter
	transcriber Transcriber
	summarizer  summarize.Summarizer
	dao         repository.HistoryDAO
	metrics     *metrics.Metrics
	workDir     string
	logger      *zap.Logger
}

func New(converter Converter, transcriber Transcriber, summarizer summarize.Summarizer,
	dao repository.HistoryDAO, m *metrics.Metrics, workDir string, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		converter:   converter,
		transcriber: transcriber,
		summarizer:  summarizer,
		dao:         dao,
		metrics:     m,
		workDir:     workDir,
		logger:      logger,
	}
}

// Run executes convert, transcribe, summarize and persist for one file.
// Intermediate artifacts live in a per-run directory under the work dir and
// are removed on every exit path. On failure nothing is persisted and the
// returned error identifies the failing stage by kind.
func (p *Pipeline) Run(ctx context.Context, req Request) (*model.TranscriptionRecord, error) {
	filename := req.AudioFilename
	if filename == "" {
		filename = filepath.Base(req.AudioPath)
	}

	runDir := filepath.Join(p.workDir, uuid.NewString())
	if err := files.EnsureDir(runDir); err != nil {
		return nil, apperrors.Persistence(err, "create run directory %s", runDir)
	}
	defer os.RemoveAll(runDir)

	log := p.logger.With(
		zap.String("file", filename),
		zap.String("transcription_model", req.TranscriptionModel),
		zap.String("summarization_model", req.SummarizationModel),
	)
	log.Info("pipeline run started")

	fileHash, err := files.Sha256File(req.AudioPath)
	if err != nil {
		return nil, apperrors.Persistence(err, "hash input %s", req.AudioPath)
	}

	wavPath, err := p.normalize(ctx, req.AudioPath, runDir)
	if err != nil {
		p.observe(metrics.StageConvert, err)
		return nil, err
	}

	if p.metrics != nil {
		if seconds, derr := p.converter.Duration(ctx, wavPath); derr == nil {
			p.metrics.AudioDuration.Observe(float64(seconds))
		}
	}

	transcript, err := p.transcribe(ctx, wavPath, req.TranscriptionModel, runDir)
	if err != nil {
		p.observe(metrics.StageTranscribe, err)
		return nil, err
	}
	log.Info("transcription finished", zap.Int("transcript_chars", len(transcript)))

	summary, err := p.summarize(ctx, transcript, req.Context, req.SummarizationModel)
	if err != nil {
		p.observe(metrics.StageSummarize, err)
		return nil, err
	}
	log.Info("summarization finished", zap.Int("summary_chars", len(summary)))

	rec := &model.TranscriptionRecord{
		AudioFilename:      filename,
		Transcript:         transcript,
		Summary:            summary,
		TranscriptionModel: req.TranscriptionModel,
		SummarizationModel: req.SummarizationModel,
		Context:            req.Context,
		Owner:              req.Owner,
		FileHash:           fileHash,
	}

	start := time.Now()
	if _, err := p.dao.Create(ctx, rec); err != nil {
		p.observe(metrics.StagePersist, err)
		return nil, err
	}
	p.observeDuration(metrics.StagePersist, start)

	p.observe("", nil)
	log.Info("pipeline run persisted", zap.String("record_id", rec.ID))
	return rec, nil
}

// normalize returns a mono 16 kHz WAV path for the input, converting into the
// run directory only when the input is not already in recognizer format.
func (p *Pipeline) normalize(ctx context.Context, inputPath, runDir string) (string, error) {
	start := time.Now()

	ok, err := p.converter.Is16kHzMonoWav(ctx, inputPath)
	if err != nil {
		return "", err
	}
	if ok {
		p.observeDuration(metrics.StageConvert, start)
		return inputPath, nil
	}

	wavPath := filepath.Join(runDir, "audio.wav")
	if err := p.converter.ConvertTo16kHzWav(ctx, inputPath, wavPath); err != nil {
		return "", err
	}
	p.observeDuration(metrics.StageConvert, start)
	return wavPath, nil
}

func (p *Pipeline) transcribe(ctx context.Context, wavPath, modelID, runDir string) (string, error) {
	start := time.Now()
	text, err := p.transcriber.Transcribe(ctx, wavPath, modelID, filepath.Join(runDir, "transcript"))
	if err != nil {
		return "", err
	}
	p.observeDuration(metrics.StageTranscribe, start)
	return text, nil
}

func (p *Pipeline) summarize(ctx context.Context, transcript, contextNote, modelID string) (string, error) {
	start := time.Now()
	summary, err := p.summarizer.Summarize(ctx, summarize.Request{
		Transcript: transcript,
		Context:    contextNote,
		Model:      modelID,
	})
	if err != nil {
		return "", err
	}
	p.observeDuration(metrics.StageSummarize, start)
	return summary, nil
}

func (p *Pipeline) observe(stage metrics.Stage, err error) {
	if p.metrics != nil {
		p.metrics.ObserveRun(err, stage)
	}
}

func (p *Pipeline) observeDuration(stage metrics.Stage, start time.Time) {
	if p.metrics != nil {
		p.metrics.StageDuration.WithLabelValues(string(stage)).Observe(time.Since(start).Seconds())
	}
}
