package sqlite

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "meeting-summarizer/internal/app/errors"
	"meeting-summarizer/internal/app/model"
)

func newTestDB(t *testing.T) *SQLiteDB {
	t.Helper()
	db, err := New(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func newRecord(filename, transcript, summary string) *model.TranscriptionRecord {
	return &model.TranscriptionRecord{
		AudioFilename:      filename,
		Transcript:         transcript,
		Summary:            summary,
		TranscriptionModel: "base",
		SummarizationModel: "llama2",
	}
}

// skipWithoutFTS5 skips search tests when the driver was compiled without
// the fts5 extension (requires the sqlite_fts5 build tag).
func skipWithoutFTS5(t *testing.T, err error) {
	t.Helper()
	if err != nil && strings.Contains(err.Error(), "fts5") {
		t.Skip("sqlite driver built without fts5 support")
	}
}

func TestCreateGetRoundTrip(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	before := time.Now().Add(-time.Second)
	rec := newRecord("standup.mp3", "we shipped the release", "release shipped")
	rec.Context = "daily standup"
	rec.Owner = "alice@example.com"

	id, err := db.Create(ctx, rec)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	got, err := db.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "standup.mp3", got.AudioFilename)
	assert.Equal(t, "we shipped the release", got.Transcript)
	assert.Equal(t, "release shipped", got.Summary)
	assert.Equal(t, "base", got.TranscriptionModel)
	assert.Equal(t, "llama2", got.SummarizationModel)
	assert.Equal(t, "daily standup", got.Context)
	assert.Equal(t, "alice@example.com", got.Owner)
	assert.Equal(t, len("we shipped the release"), got.TranscriptLength)
	assert.Equal(t, len("release shipped"), got.SummaryLength)
	assert.True(t, got.CreatedAt.After(before))
	assert.Nil(t, got.UpdatedAt)
}

func TestCreateComputesEstimatedDuration(t *testing.T) {
	db := newTestDB(t)

	// 150 words at the assumed speaking rate is one minute.
	transcript := strings.TrimSpace(strings.Repeat("word ", 150))
	id, err := db.Create(context.Background(), newRecord("a.mp3", transcript, "s"))
	require.NoError(t, err)

	got, err := db.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 60, got.EstimatedDuration)
}

func TestGetByIDUnknown(t *testing.T) {
	db := newTestDB(t)

	_, err := db.GetByID(context.Background(), "no-such-id")
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}

func TestGetAllNewestFirst(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	for i, name := range []string{"first.mp3", "second.mp3", "third.mp3"} {
		rec := newRecord(name, "t", "s")
		rec.CreatedAt = time.Date(2026, 8, 1+i, 12, 0, 0, 0, time.UTC)
		_, err := db.Create(ctx, rec)
		require.NoError(t, err)
	}

	records, err := db.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "third.mp3", records[0].AudioFilename)
	assert.Equal(t, "second.mp3", records[1].AudioFilename)
	assert.Equal(t, "first.mp3", records[2].AudioFilename)
}

func TestGetAllEmptyStore(t *testing.T) {
	db := newTestDB(t)

	records, err := db.GetAll(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestGetByFilename(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	_, err := db.Create(ctx, newRecord("kickoff.mp3", "t", "s"))
	require.NoError(t, err)
	_, err = db.Create(ctx, newRecord("retro.mp3", "t", "s"))
	require.NoError(t, err)

	records, err := db.GetByFilename(ctx, "kickoff.mp3")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "kickoff.mp3", records[0].AudioFilename)
}

func TestUpdateTouchesOnlyTargetedFields(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	id, err := db.Create(ctx, newRecord("a.mp3", "original transcript", "original summary"))
	require.NoError(t, err)
	created, err := db.GetByID(ctx, id)
	require.NoError(t, err)

	newSummary := "corrected summary"
	require.NoError(t, db.Update(ctx, id, model.RecordUpdate{Summary: &newSummary}))

	got, err := db.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "corrected summary", got.Summary)
	assert.Equal(t, len("corrected summary"), got.SummaryLength)
	assert.Equal(t, "original transcript", got.Transcript)
	assert.Equal(t, created.CreatedAt.Unix(), got.CreatedAt.Unix())
	require.NotNil(t, got.UpdatedAt)
}

func TestUpdateTranscriptRefreshesDerivedFields(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	id, err := db.Create(ctx, newRecord("a.mp3", "short", "s"))
	require.NoError(t, err)

	transcript := strings.TrimSpace(strings.Repeat("word ", 300))
	require.NoError(t, db.Update(ctx, id, model.RecordUpdate{Transcript: &transcript}))

	got, err := db.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 120, got.EstimatedDuration)
	assert.Equal(t, len(transcript), got.TranscriptLength)
}

func TestUpdateUnknownID(t *testing.T) {
	db := newTestDB(t)

	s := "x"
	err := db.Update(context.Background(), "missing", model.RecordUpdate{Summary: &s})
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}

func TestDelete(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	id, err := db.Create(ctx, newRecord("a.mp3", "t", "s"))
	require.NoError(t, err)

	require.NoError(t, db.Delete(ctx, id))

	_, err = db.GetByID(ctx, id)
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))

	// Deleting again reports failure, not a silent no-op.
	err = db.Delete(ctx, id)
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}

func TestSearch(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	_, err := db.Create(ctx, newRecord("finance.mp3", "revenue discussion", "Q3 budget review"))
	require.NoError(t, err)
	_, err = db.Create(ctx, newRecord("eng.mp3", "incident postmortem", "root cause analysis"))
	require.NoError(t, err)

	records, err := db.Search(ctx, "budget")
	skipWithoutFTS5(t, err)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "finance.mp3", records[0].AudioFilename)
}

func TestSearchMatchesFilename(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	_, err := db.Create(ctx, newRecord("quarterly-planning.mp3", "t", "s"))
	require.NoError(t, err)

	records, err := db.Search(ctx, "quarterly")
	skipWithoutFTS5(t, err)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestSearchIndexesRecordsCreatedBeforeFirstSearch(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	// Rows exist before the lazy index is ever created.
	_, err := db.Create(ctx, newRecord("early.mp3", "pre-index content", "s"))
	require.NoError(t, err)

	records, err := db.Search(ctx, "pre-index")
	skipWithoutFTS5(t, err)
	require.NoError(t, err)
	assert.Len(t, records, 1)

	// And the triggers pick up rows created after.
	_, err = db.Create(ctx, newRecord("late.mp3", "post-index content", "s"))
	require.NoError(t, err)

	records, err = db.Search(ctx, "post-index")
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestSearchNoMatches(t *testing.T) {
	db := newTestDB(t)

	records, err := db.Search(context.Background(), "nonexistent")
	skipWithoutFTS5(t, err)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestSearchQuotedInput(t *testing.T) {
	db := newTestDB(t)

	// fts5 operators in user input must not break the query.
	_, err := db.Search(context.Background(), `AND OR "half`)
	skipWithoutFTS5(t, err)
	assert.NoError(t, err)
}

func TestStatistics(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	stats, err := db.Statistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalRecords)
	assert.Empty(t, stats.TranscriptionModelCounts)
	assert.Empty(t, stats.SummarizationModelCounts)

	for _, m := range []string{"base", "small"} {
		rec := newRecord(m+".mp3", "t", "s")
		rec.TranscriptionModel = m
		_, err := db.Create(ctx, rec)
		require.NoError(t, err)
	}

	old := newRecord("old.mp3", "t", "s")
	old.TranscriptionModel = "base"
	old.CreatedAt = time.Now().AddDate(0, 0, -30)
	_, err = db.Create(ctx, old)
	require.NoError(t, err)

	stats, err = db.Statistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalRecords)
	assert.Equal(t, map[string]int{"base": 2, "small": 1}, stats.TranscriptionModelCounts)
	assert.Equal(t, map[string]int{"llama2": 3}, stats.SummarizationModelCounts)
	assert.Equal(t, 2, stats.RecordsLastWeek)
}
