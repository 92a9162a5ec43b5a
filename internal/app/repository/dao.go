package repository

import (
	"context"

	"meeting-summarizer/internal/app/model"
)

// HistoryDAO is the persistence surface for transcription records. Results
// from the listing and search methods are ordered newest-first by creation
// time; ties fall back to insertion order.
//
// Lookups by unknown or malformed ids yield a NotFound error, never a crash;
// updates and deletes that match nothing report NotFound rather than
// succeeding silently.
type HistoryDAO interface {
	Close() error

	// Create persists a new record, assigning its id, creation time and
	// derived fields. Returns the assigned id.
	Create(ctx context.Context, rec *model.TranscriptionRecord) (string, error)

	GetAll(ctx context.Context) ([]model.TranscriptionRecord, error)
	GetByID(ctx context.Context, id string) (*model.TranscriptionRecord, error)
	GetByFilename(ctx context.Context, audioFilename string) ([]model.TranscriptionRecord, error)

	// Update applies the non-nil fields and stamps updated_at.
	Update(ctx context.Context, id string, fields model.RecordUpdate) error
	Delete(ctx context.Context, id string) error

	// Search matches free text across filename, transcript and summary.
	Search(ctx context.Context, query string) ([]model.TranscriptionRecord, error)

	// Statistics is computed fresh on every call.
	Statistics(ctx context.Context) (*model.Statistics, error)
}
