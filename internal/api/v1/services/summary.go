package services

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"meeting-summarizer/internal/api/errors"
	"meeting-summarizer/internal/api/v1/dto"
	"meeting-summarizer/internal/app/export"
	"meeting-summarizer/internal/app/pipeline"
	"meeting-summarizer/internal/app/repository"
	"meeting-summarizer/internal/app/util/files"
	"meeting-summarizer/internal/app/whisper"
)

// SummarizerModelLister lists the models offered by the summarization
// backend.
type SummarizerModelLister interface {
	ListModels(ctx context.Context) ([]string, error)
}

// ExportPayload is a rendered record export ready for download.
type ExportPayload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// SummaryService exposes the pipeline and the history store to the API.
type SummaryService interface {
	CreateFromUpload(ctx context.Context, file *multipart.FileHeader, form dto.CreateSummaryForm, owner string) (*dto.SummaryResponse, error)
	List(ctx context.Context) (*dto.SummaryListResponse, error)
	Get(ctx context.Context, id string) (*dto.SummaryResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateSummaryRequest) (*dto.SummaryResponse, error)
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, query string) (*dto.SummaryListResponse, error)
	Stats(ctx context.Context) (*dto.StatsResponse, error)
	Models(ctx context.Context) (*dto.ModelsResponse, error)
	Export(ctx context.Context, id, format, field string) (*ExportPayload, error)
}

type summaryService struct {
	pipeline     *pipeline.Pipeline
	dao          repository.HistoryDAO
	modelDir     string
	modelLister  SummarizerModelLister
	uploadDir    string
	logger       *zap.Logger
}

// NewSummaryService wires the pipeline, store and model discovery into one
// API-facing service.
func NewSummaryService(p *pipeline.Pipeline, dao repository.HistoryDAO, modelDir string,
	modelLister SummarizerModelLister, uploadDir string, logger *zap.Logger) SummaryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &summaryService{
		pipeline:    p,
		dao:         dao,
		modelDir:    modelDir,
		modelLister: modelLister,
		uploadDir:   uploadDir,
		logger:      logger,
	}
}

func (s *summaryService) CreateFromUpload(ctx context.Context, file *multipart.FileHeader,
	form dto.CreateSummaryForm, owner string) (*dto.SummaryResponse, error) {
	if !files.IsAudioFile(file.Filename) {
		return nil, errors.NewBadRequestError(fmt.Sprintf("unsupported audio format: %s", filepath.Ext(file.Filename)))
	}

	savedPath, err := s.saveUpload(file)
	if err != nil {
		return nil, err
	}
	defer os.Remove(savedPath)

	rec, err := s.pipeline.Run(ctx, pipeline.Request{
		AudioPath:          savedPath,
		AudioFilename:      filepath.Base(file.Filename),
		Context:            form.Context,
		TranscriptionModel: form.TranscriptionModel,
		SummarizationModel: form.SummarizationModel,
		Owner:              owner,
	})
	if err != nil {
		return nil, err
	}

	resp := dto.FromRecord(rec)
	return &resp, nil
}

// saveUpload copies the multipart payload into the upload directory under a
// collision-free name.
func (s *summaryService) saveUpload(file *multipart.FileHeader) (string, error) {
	if err := files.EnsureDir(s.uploadDir); err != nil {
		return "", fmt.Errorf("create upload directory: %w", err)
	}

	src, err := file.Open()
	if err != nil {
		return "", errors.NewBadRequestError("could not read uploaded file")
	}
	defer src.Close()

	savedPath := filepath.Join(s.uploadDir, uuid.NewString()+filepath.Ext(file.Filename))
	dst, err := os.Create(savedPath)
	if err != nil {
		return "", fmt.Errorf("create upload target: %w", err)
	}
	defer dst.Close()

	if _, err := dst.ReadFrom(src); err != nil {
		os.Remove(savedPath)
		return "", fmt.Errorf("store upload: %w", err)
	}
	return savedPath, nil
}

func (s *summaryService) List(ctx context.Context) (*dto.SummaryListResponse, error) {
	records, err := s.dao.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.SummaryListResponse{Total: len(records), Records: dto.FromRecords(records)}, nil
}

func (s *summaryService) Get(ctx context.Context, id string) (*dto.SummaryResponse, error) {
	rec, err := s.dao.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := dto.FromRecord(rec)
	return &resp, nil
}

func (s *summaryService) Update(ctx context.Context, id string, req *dto.UpdateSummaryRequest) (*dto.SummaryResponse, error) {
	if err := s.dao.Update(ctx, id, req.ToRecordUpdate()); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *summaryService) Delete(ctx context.Context, id string) error {
	return s.dao.Delete(ctx, id)
}

func (s *summaryService) Search(ctx context.Context, query string) (*dto.SummaryListResponse, error) {
	records, err := s.dao.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	return &dto.SummaryListResponse{Total: len(records), Records: dto.FromRecords(records)}, nil
}

func (s *summaryService) Stats(ctx context.Context) (*dto.StatsResponse, error) {
	stats, err := s.dao.Statistics(ctx)
	if err != nil {
		return nil, err
	}
	resp := dto.FromStatistics(stats)
	return &resp, nil
}

// Models reports local recognizer models plus whatever the summarization
// backend offers. A missing model directory yields an empty transcription
// list; a down backend is an error because the caller cannot summarize
// anything either way.
func (s *summaryService) Models(ctx context.Context) (*dto.ModelsResponse, error) {
	transcriptionModels, err := whisper.ListLocalModels(s.modelDir)
	if err != nil {
		s.logger.Warn("model directory scan failed", zap.Error(err))
		transcriptionModels = []string{}
	}

	summarizationModels, err := s.modelLister.ListModels(ctx)
	if err != nil {
		return nil, err
	}

	return &dto.ModelsResponse{
		TranscriptionModels: transcriptionModels,
		SummarizationModels: summarizationModels,
	}, nil
}

func (s *summaryService) Export(ctx context.Context, id, format, field string) (*ExportPayload, error) {
	if field == "" {
		field = string(export.FieldSummary)
	}
	exportField, err := export.ParseField(field)
	if err != nil {
		return nil, errors.NewBadRequestError(err.Error())
	}

	rec, err := s.dao.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	switch format {
	case "pdf":
		if err := export.PDF(&buf, rec, exportField); err != nil {
			return nil, err
		}
		return &ExportPayload{
			Filename:    export.BaseName(rec, exportField) + ".pdf",
			ContentType: "application/pdf",
			Data:        buf.Bytes(),
		}, nil
	case "", "txt":
		if err := export.Text(&buf, rec, exportField); err != nil {
			return nil, err
		}
		return &ExportPayload{
			Filename:    export.BaseName(rec, exportField) + ".txt",
			ContentType: "text/plain; charset=utf-8",
			Data:        buf.Bytes(),
		}, nil
	default:
		return nil, errors.NewBadRequestError(fmt.Sprintf("unknown export format %q (want txt or pdf)", format))
	}
}
