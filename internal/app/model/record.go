package model

import (
	"strings"
	"time"
)

// wordsPerMinute is the speaking rate assumed when estimating audio length
// from a transcript. The stored value is a heuristic, not a measured duration.
const wordsPerMinute = 150

// TranscriptionRecord is one persisted pipeline run: the recognized text, the
// generated summary and the models that produced them.
type TranscriptionRecord struct {
	ID                 string     `json:"id"`
	AudioFilename      string     `json:"audio_filename"`
	Transcript         string     `json:"transcript"`
	Summary            string     `json:"summary"`
	TranscriptionModel string     `json:"transcription_model"`
	SummarizationModel string     `json:"summarization_model"`
	Context            string     `json:"context,omitempty"`
	Owner              string     `json:"owner,omitempty"`
	FileHash           string     `json:"file_hash,omitempty"`
	EstimatedDuration  int        `json:"estimated_duration_seconds"`
	TranscriptLength   int        `json:"transcript_length"`
	SummaryLength      int        `json:"summary_length"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          *time.Time `json:"updated_at,omitempty"`
}

// ComputeDerived fills the cached length and duration fields from the text
// fields. Called by the store at write time so that listing and statistics
// never have to recompute them.
func (r *TranscriptionRecord) ComputeDerived() {
	r.EstimatedDuration = EstimateDurationSeconds(r.Transcript)
	r.TranscriptLength = len(r.Transcript)
	r.SummaryLength = len(r.Summary)
}

// EstimateDurationSeconds estimates the spoken length of a transcript from
// its word count.
func EstimateDurationSeconds(transcript string) int {
	words := len(strings.Fields(transcript))
	return words * 60 / wordsPerMinute
}

// RecordUpdate is a partial update of a TranscriptionRecord. Nil fields are
// left untouched.
type RecordUpdate struct {
	AudioFilename *string `json:"audio_filename,omitempty"`
	Transcript    *string `json:"transcript,omitempty"`
	Summary       *string `json:"summary,omitempty"`
	Context       *string `json:"context,omitempty"`
}

// Empty reports whether the update would change nothing.
func (u RecordUpdate) Empty() bool {
	return u.AudioFilename == nil && u.Transcript == nil && u.Summary == nil && u.Context == nil
}

// Statistics is an aggregate view over the history store, computed fresh on
// every call.
type Statistics struct {
	TotalRecords             int            `json:"total_records"`
	TranscriptionModelCounts map[string]int `json:"transcription_model_counts"`
	SummarizationModelCounts map[string]int `json:"summarization_model_counts"`
	RecordsLastWeek          int            `json:"records_last_week"`
}
