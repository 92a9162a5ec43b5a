package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	apperrors "meeting-summarizer/internal/app/errors"
	"meeting-summarizer/internal/app/model"
	"meeting-summarizer/internal/app/repository"
)

const createTableSQL = `
CREATE TABLE IF NOT EXISTS transcriptions (
	id TEXT PRIMARY KEY,
	audio_filename TEXT NOT NULL,
	transcript TEXT NOT NULL,
	summary TEXT NOT NULL,
	transcription_model TEXT NOT NULL,
	summarization_model TEXT NOT NULL,
	context TEXT NOT NULL DEFAULT '',
	owner TEXT NOT NULL DEFAULT '',
	file_hash TEXT NOT NULL DEFAULT '',
	estimated_duration INTEGER NOT NULL DEFAULT 0,
	transcript_length INTEGER NOT NULL DEFAULT 0,
	summary_length INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_transcriptions_created_at ON transcriptions(created_at DESC);
CREATE INDEX IF NOT EXISTS idx_transcriptions_audio_filename ON transcriptions(audio_filename);
`

const recordColumns = `id, audio_filename, transcript, summary, transcription_model,
	summarization_model, context, owner, file_hash, estimated_duration,
	transcript_length, summary_length, created_at, updated_at`

// SQLiteDB is the sqlite-backed history store.
type SQLiteDB struct {
	db *sql.DB
}

// New opens (and creates if needed) the history database at dbFilePath.
func New(dbFilePath string) (*SQLiteDB, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?cache=shared&mode=rwc&_busy_timeout=5000", dbFilePath))
	if err != nil {
		return nil, apperrors.Persistence(err, "open database %s", dbFilePath)
	}

	if _, err := db.Exec(createTableSQL); err != nil {
		db.Close()
		return nil, apperrors.Persistence(err, "initialize schema in %s", dbFilePath)
	}

	return &SQLiteDB{db: db}, nil
}

func (s *SQLiteDB) Close() error {
	return s.db.Close()
}

func (s *SQLiteDB) Create(ctx context.Context, rec *model.TranscriptionRecord) (string, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	rec.ComputeDerived()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO transcriptions (id, audio_filename, transcript, summary,
			transcription_model, summarization_model, context, owner, file_hash,
			estimated_duration, transcript_length, summary_length, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.AudioFilename, rec.Transcript, rec.Summary,
		rec.TranscriptionModel, rec.SummarizationModel, rec.Context, rec.Owner, rec.FileHash,
		rec.EstimatedDuration, rec.TranscriptLength, rec.SummaryLength, rec.CreatedAt,
	)
	if err != nil {
		return "", apperrors.Persistence(err, "insert record for %s", rec.AudioFilename)
	}
	return rec.ID, nil
}

func (s *SQLiteDB) GetAll(ctx context.Context) ([]model.TranscriptionRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+recordColumns+`
		FROM transcriptions
		ORDER BY created_at DESC, rowid ASC`)
	if err != nil {
		return nil, apperrors.Persistence(err, "list records")
	}
	defer rows.Close()

	return scanRecords(rows)
}

func (s *SQLiteDB) GetByID(ctx context.Context, id string) (*model.TranscriptionRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+recordColumns+`
		FROM transcriptions
		WHERE id = ?`, id)

	rec, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("record not found: %s", id)
	}
	if err != nil {
		return nil, apperrors.Persistence(err, "get record %s", id)
	}
	return rec, nil
}

func (s *SQLiteDB) GetByFilename(ctx context.Context, audioFilename string) ([]model.TranscriptionRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+recordColumns+`
		FROM transcriptions
		WHERE audio_filename = ?
		ORDER BY created_at DESC, rowid ASC`, audioFilename)
	if err != nil {
		return nil, apperrors.Persistence(err, "list records for %s", audioFilename)
	}
	defer rows.Close()

	return scanRecords(rows)
}

func (s *SQLiteDB) Update(ctx context.Context, id string, fields model.RecordUpdate) error {
	if fields.Empty() {
		return apperrors.Persistence(nil, "update of %s changes no fields", id)
	}

	set := []string{"updated_at = ?"}
	args := []interface{}{time.Now()}
	if fields.AudioFilename != nil {
		set = append(set, "audio_filename = ?")
		args = append(args, *fields.AudioFilename)
	}
	if fields.Transcript != nil {
		set = append(set, "transcript = ?", "transcript_length = ?", "estimated_duration = ?")
		args = append(args, *fields.Transcript, len(*fields.Transcript), model.EstimateDurationSeconds(*fields.Transcript))
	}
	if fields.Summary != nil {
		set = append(set, "summary = ?", "summary_length = ?")
		args = append(args, *fields.Summary, len(*fields.Summary))
	}
	if fields.Context != nil {
		set = append(set, "context = ?")
		args = append(args, *fields.Context)
	}
	args = append(args, id)

	res, err := s.db.ExecContext(ctx,
		"UPDATE transcriptions SET "+strings.Join(set, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return apperrors.Persistence(err, "update record %s", id)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return apperrors.Persistence(err, "update record %s", id)
	}
	if affected == 0 {
		return apperrors.NotFound("record not found: %s", id)
	}
	return nil
}

func (s *SQLiteDB) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM transcriptions WHERE id = ?", id)
	if err != nil {
		return apperrors.Persistence(err, "delete record %s", id)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return apperrors.Persistence(err, "delete record %s", id)
	}
	if affected == 0 {
		return apperrors.NotFound("record not found: %s", id)
	}
	return nil
}

func (s *SQLiteDB) Search(ctx context.Context, query string) ([]model.TranscriptionRecord, error) {
	if err := s.ensureSearchIndex(ctx); err != nil {
		return nil, err
	}

	match := buildMatchQuery(query)
	if match == "" {
		return []model.TranscriptionRecord{}, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT t.id, t.audio_filename, t.transcript, t.summary, t.transcription_model,
			t.summarization_model, t.context, t.owner, t.file_hash, t.estimated_duration,
			t.transcript_length, t.summary_length, t.created_at, t.updated_at
		FROM transcriptions t
		JOIN transcriptions_fts f ON t.rowid = f.rowid
		WHERE transcriptions_fts MATCH ?
		ORDER BY t.created_at DESC, t.rowid ASC`, match)
	if err != nil {
		return nil, apperrors.Persistence(err, "search records for %q", query)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// ensureSearchIndex lazily creates the full-text index and its sync triggers.
// Creation is idempotent; real errors are surfaced. Requires the binary to be
// built with the sqlite_fts5 tag.
func (s *SQLiteDB) ensureSearchIndex(ctx context.Context) error {
	var name string
	err := s.db.QueryRowContext(ctx,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'transcriptions_fts'`).Scan(&name)
	if err == nil {
		return nil
	}
	if err != sql.ErrNoRows {
		return apperrors.Persistence(err, "check search index")
	}

	stmts := []string{
		`CREATE VIRTUAL TABLE IF NOT EXISTS transcriptions_fts USING fts5(
			audio_filename, transcript, summary,
			content='transcriptions', content_rowid='rowid')`,
		`CREATE TRIGGER IF NOT EXISTS transcriptions_fts_ai AFTER INSERT ON transcriptions BEGIN
			INSERT INTO transcriptions_fts(rowid, audio_filename, transcript, summary)
			VALUES (new.rowid, new.audio_filename, new.transcript, new.summary);
		END`,
		`CREATE TRIGGER IF NOT EXISTS transcriptions_fts_ad AFTER DELETE ON transcriptions BEGIN
			INSERT INTO transcriptions_fts(transcriptions_fts, rowid, audio_filename, transcript, summary)
			VALUES ('delete', old.rowid, old.audio_filename, old.transcript, old.summary);
		END`,
		`CREATE TRIGGER IF NOT EXISTS transcriptions_fts_au AFTER UPDATE ON transcriptions BEGIN
			INSERT INTO transcriptions_fts(transcriptions_fts, rowid, audio_filename, transcript, summary)
			VALUES ('delete', old.rowid, old.audio_filename, old.transcript, old.summary);
			INSERT INTO transcriptions_fts(rowid, audio_filename, transcript, summary)
			VALUES (new.rowid, new.audio_filename, new.transcript, new.summary);
		END`,
		// Backfill rows inserted before the index existed.
		`INSERT INTO transcriptions_fts(transcriptions_fts) VALUES ('rebuild')`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return apperrors.Persistence(err, "create search index")
		}
	}
	return nil
}

func (s *SQLiteDB) Statistics(ctx context.Context) (*model.Statistics, error) {
	stats := &model.Statistics{
		TranscriptionModelCounts: map[string]int{},
		SummarizationModelCounts: map[string]int{},
	}

	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM transcriptions").Scan(&stats.TotalRecords); err != nil {
		return nil, apperrors.Persistence(err, "count records")
	}

	for column, dst := range map[string]map[string]int{
		"transcription_model": stats.TranscriptionModelCounts,
		"summarization_model": stats.SummarizationModelCounts,
	} {
		rows, err := s.db.QueryContext(ctx,
			"SELECT "+column+", COUNT(*) FROM transcriptions GROUP BY "+column)
		if err != nil {
			return nil, apperrors.Persistence(err, "group records by %s", column)
		}
		for rows.Next() {
			var name string
			var count int
			if err := rows.Scan(&name, &count); err != nil {
				rows.Close()
				return nil, apperrors.Persistence(err, "scan %s counts", column)
			}
			dst[name] = count
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, apperrors.Persistence(err, "read %s counts", column)
		}
		rows.Close()
	}

	weekAgo := time.Now().AddDate(0, 0, -7)
	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM transcriptions WHERE created_at >= ?", weekAgo).Scan(&stats.RecordsLastWeek); err != nil {
		return nil, apperrors.Persistence(err, "count recent records")
	}

	return stats, nil
}

// buildMatchQuery quotes every term so user input cannot inject fts5 syntax;
// terms are implicitly ANDed.
func buildMatchQuery(query string) string {
	terms := strings.Fields(query)
	quoted := make([]string, 0, len(terms))
	for _, term := range terms {
		quoted = append(quoted, `"`+strings.ReplaceAll(term, `"`, `""`)+`"`)
	}
	return strings.Join(quoted, " ")
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(row scanner) (*model.TranscriptionRecord, error) {
	var rec model.TranscriptionRecord
	var updatedAt sql.NullTime
	err := row.Scan(&rec.ID, &rec.AudioFilename, &rec.Transcript, &rec.Summary,
		&rec.TranscriptionModel, &rec.SummarizationModel, &rec.Context, &rec.Owner, &rec.FileHash,
		&rec.EstimatedDuration, &rec.TranscriptLength, &rec.SummaryLength,
		&rec.CreatedAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	if updatedAt.Valid {
		rec.UpdatedAt = &updatedAt.Time
	}
	return &rec, nil
}

func scanRecords(rows *sql.Rows) ([]model.TranscriptionRecord, error) {
	records := make([]model.TranscriptionRecord, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, apperrors.Persistence(err, "scan record row")
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Persistence(err, "read record rows")
	}
	return records, nil
}

var _ repository.HistoryDAO = (*SQLiteDB)(nil)
