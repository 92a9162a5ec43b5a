package dto

import (
	"time"

	"meeting-summarizer/internal/api/errors"
	"meeting-summarizer/internal/app/model"
)

// CreateSummaryForm carries the multipart fields accompanying an uploaded
// audio file.
type CreateSummaryForm struct {
	Context            string `form:"context"`
	TranscriptionModel string `form:"transcription_model" binding:"required"`
	SummarizationModel string `form:"summarization_model" binding:"required"`
}

// UpdateSummaryRequest represents a partial record update. Only supplied
// fields change.
type UpdateSummaryRequest struct {
	AudioFilename *string `json:"audio_filename,omitempty" binding:"omitempty,min=1,max=512"`
	Transcript    *string `json:"transcript,omitempty"`
	Summary       *string `json:"summary,omitempty"`
	Context       *string `json:"context,omitempty"`
}

// Validate rejects updates that change nothing.
func (r *UpdateSummaryRequest) Validate() error {
	if r.AudioFilename == nil && r.Transcript == nil && r.Summary == nil && r.Context == nil {
		return errors.NewValidationError("Validation failed", map[string]string{
			"request": "at least one field must be provided",
		})
	}
	return nil
}

// ToRecordUpdate converts the request into the store's update type.
func (r *UpdateSummaryRequest) ToRecordUpdate() model.RecordUpdate {
	return model.RecordUpdate{
		AudioFilename: r.AudioFilename,
		Transcript:    r.Transcript,
		Summary:       r.Summary,
		Context:       r.Context,
	}
}

// SearchQuery carries the full-text search parameters.
type SearchQuery struct {
	Q string `form:"q" binding:"required,min=1"`
}

// ExportQuery selects the format and text of a record export.
type ExportQuery struct {
	Format string `form:"format" binding:"omitempty,oneof=txt pdf"`
	Field  string `form:"field" binding:"omitempty,oneof=transcript summary"`
}

// SummaryResponse represents one stored record in API responses.
type SummaryResponse struct {
	ID                 string     `json:"id"`
	AudioFilename      string     `json:"audio_filename"`
	Transcript         string     `json:"transcript"`
	Summary            string     `json:"summary"`
	TranscriptionModel string     `json:"transcription_model"`
	SummarizationModel string     `json:"summarization_model"`
	Context            string     `json:"context,omitempty"`
	Owner              string     `json:"owner,omitempty"`
	FileHash           string     `json:"file_hash,omitempty"`
	EstimatedDuration  int        `json:"estimated_duration"`
	TranscriptLength   int        `json:"transcript_length"`
	SummaryLength      int        `json:"summary_length"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          *time.Time `json:"updated_at,omitempty"`
}

// FromRecord maps a stored record to its response shape.
func FromRecord(rec *model.TranscriptionRecord) SummaryResponse {
	return SummaryResponse{
		ID:                 rec.ID,
		AudioFilename:      rec.AudioFilename,
		Transcript:         rec.Transcript,
		Summary:            rec.Summary,
		TranscriptionModel: rec.TranscriptionModel,
		SummarizationModel: rec.SummarizationModel,
		Context:            rec.Context,
		Owner:              rec.Owner,
		FileHash:           rec.FileHash,
		EstimatedDuration:  rec.EstimatedDuration,
		TranscriptLength:   rec.TranscriptLength,
		SummaryLength:      rec.SummaryLength,
		CreatedAt:          rec.CreatedAt,
		UpdatedAt:          rec.UpdatedAt,
	}
}

// FromRecords maps a record list, preserving order.
func FromRecords(records []model.TranscriptionRecord) []SummaryResponse {
	out := make([]SummaryResponse, len(records))
	for i := range records {
		out[i] = FromRecord(&records[i])
	}
	return out
}

// SummaryListResponse wraps a record list with its count.
type SummaryListResponse struct {
	Total   int               `json:"total"`
	Records []SummaryResponse `json:"records"`
}

// StatsResponse represents aggregate history statistics.
type StatsResponse struct {
	TotalRecords             int            `json:"total_records"`
	TranscriptionModelCounts map[string]int `json:"transcription_model_counts"`
	SummarizationModelCounts map[string]int `json:"summarization_model_counts"`
	RecordsLastWeek          int            `json:"records_last_week"`
}

// FromStatistics maps store statistics to their response shape.
func FromStatistics(stats *model.Statistics) StatsResponse {
	return StatsResponse{
		TotalRecords:             stats.TotalRecords,
		TranscriptionModelCounts: stats.TranscriptionModelCounts,
		SummarizationModelCounts: stats.SummarizationModelCounts,
		RecordsLastWeek:          stats.RecordsLastWeek,
	}
}

// ModelsResponse lists the selectable models per stage.
type ModelsResponse struct {
	TranscriptionModels []string `json:"transcription_models"`
	SummarizationModels []string `json:"summarization_models"`
}
