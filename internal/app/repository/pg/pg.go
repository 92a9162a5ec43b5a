package pg

import (
	"context"
	"database/sql"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	apperrors "meeting-summarizer/internal/app/errors"
	"meeting-summarizer/internal/app/model"
	"meeting-summarizer/internal/app/repository"
)

const createTableSQL = `
CREATE TABLE IF NOT EXISTS transcriptions (
	id TEXT PRIMARY KEY,
	seq BIGSERIAL,
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
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS idx_transcriptions_created_at ON transcriptions(created_at DESC);
CREATE INDEX IF NOT EXISTS idx_transcriptions_audio_filename ON transcriptions(audio_filename);
`

const recordColumns = `id, audio_filename, transcript, summary, transcription_model,
	summarization_model, context, owner, file_hash, estimated_duration,
	transcript_length, summary_length, created_at, updated_at`

// searchVector is the text searched by Search; kept as an expression so the
// lazily created GIN index and the query stay in sync.
const searchVector = `to_tsvector('english', audio_filename || ' ' || transcript || ' ' || summary)`

// PostgresDB is the postgres-backed history store.
type PostgresDB struct {
	db *sql.DB
}

// New connects with the given connection string and ensures the schema exists.
func New(connectionString string) (*PostgresDB, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, apperrors.Persistence(err, "open postgres connection")
	}
	if _, err := db.Exec(createTableSQL); err != nil {
		db.Close()
		return nil, apperrors.Persistence(err, "initialize postgres schema")
	}
	return &PostgresDB{db: db}, nil
}

// NewWithDB wraps an existing connection without touching the schema.
func NewWithDB(db *sql.DB) *PostgresDB {
	return &PostgresDB{db: db}
}

func (p *PostgresDB) Close() error {
	return p.db.Close()
}

func (p *PostgresDB) Create(ctx context.Context, rec *model.TranscriptionRecord) (string, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	rec.ComputeDerived()

	_, err := p.db.ExecContext(ctx, `
		INSERT INTO transcriptions (id, audio_filename, transcript, summary,
			transcription_model, summarization_model, context, owner, file_hash,
			estimated_duration, transcript_length, summary_length, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		rec.ID, rec.AudioFilename, rec.Transcript, rec.Summary,
		rec.TranscriptionModel, rec.SummarizationModel, rec.Context, rec.Owner, rec.FileHash,
		rec.EstimatedDuration, rec.TranscriptLength, rec.SummaryLength, rec.CreatedAt,
	)
	if err != nil {
		return "", apperrors.Persistence(err, "insert record for %s", rec.AudioFilename)
	}
	return rec.ID, nil
}

func (p *PostgresDB) GetAll(ctx context.Context) ([]model.TranscriptionRecord, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT `+recordColumns+`
		FROM transcriptions
		ORDER BY created_at DESC, seq ASC`)
	if err != nil {
		return nil, apperrors.Persistence(err, "list records")
	}
	defer rows.Close()

	return scanRecords(rows)
}

func (p *PostgresDB) GetByID(ctx context.Context, id string) (*model.TranscriptionRecord, error) {
	row := p.db.QueryRowContext(ctx, `
		SELECT `+recordColumns+`
		FROM transcriptions
		WHERE id = $1`, id)

	rec, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("record not found: %s", id)
	}
	if err != nil {
		return nil, apperrors.Persistence(err, "get record %s", id)
	}
	return rec, nil
}

func (p *PostgresDB) GetByFilename(ctx context.Context, audioFilename string) ([]model.TranscriptionRecord, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT `+recordColumns+`
		FROM transcriptions
		WHERE audio_filename = $1
		ORDER BY created_at DESC, seq ASC`, audioFilename)
	if err != nil {
		return nil, apperrors.Persistence(err, "list records for %s", audioFilename)
	}
	defer rows.Close()

	return scanRecords(rows)
}

func (p *PostgresDB) Update(ctx context.Context, id string, fields model.RecordUpdate) error {
	if fields.Empty() {
		return apperrors.Persistence(nil, "update of %s changes no fields", id)
	}

	set := []string{"updated_at = $1"}
	args := []interface{}{time.Now()}
	placeholder := func() string { return "$" + strconv.Itoa(len(args)+1) }

	if fields.AudioFilename != nil {
		set = append(set, "audio_filename = "+placeholder())
		args = append(args, *fields.AudioFilename)
	}
	if fields.Transcript != nil {
		set = append(set, "transcript = "+placeholder())
		args = append(args, *fields.Transcript)
		set = append(set, "transcript_length = "+placeholder())
		args = append(args, len(*fields.Transcript))
		set = append(set, "estimated_duration = "+placeholder())
		args = append(args, model.EstimateDurationSeconds(*fields.Transcript))
	}
	if fields.Summary != nil {
		set = append(set, "summary = "+placeholder())
		args = append(args, *fields.Summary)
		set = append(set, "summary_length = "+placeholder())
		args = append(args, len(*fields.Summary))
	}
	if fields.Context != nil {
		set = append(set, "context = "+placeholder())
		args = append(args, *fields.Context)
	}

	where := placeholder()
	args = append(args, id)

	res, err := p.db.ExecContext(ctx,
		"UPDATE transcriptions SET "+strings.Join(set, ", ")+" WHERE id = "+where, args...)
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

func (p *PostgresDB) Delete(ctx context.Context, id string) error {
	res, err := p.db.ExecContext(ctx, "DELETE FROM transcriptions WHERE id = $1", id)
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

func (p *PostgresDB) Search(ctx context.Context, query string) ([]model.TranscriptionRecord, error) {
	if err := p.ensureSearchIndex(ctx); err != nil {
		return nil, err
	}
	if strings.TrimSpace(query) == "" {
		return []model.TranscriptionRecord{}, nil
	}

	rows, err := p.db.QueryContext(ctx, `
		SELECT `+recordColumns+`
		FROM transcriptions
		WHERE `+searchVector+` @@ plainto_tsquery('english', $1)
		ORDER BY created_at DESC, seq ASC`, query)
	if err != nil {
		return nil, apperrors.Persistence(err, "search records for %q", query)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// ensureSearchIndex lazily creates the GIN index backing Search. Creation is
// idempotent; real errors are surfaced.
func (p *PostgresDB) ensureSearchIndex(ctx context.Context) error {
	_, err := p.db.ExecContext(ctx,
		`CREATE INDEX IF NOT EXISTS idx_transcriptions_search ON transcriptions USING GIN (`+searchVector+`)`)
	if err != nil {
		return apperrors.Persistence(err, "create search index")
	}
	return nil
}

func (p *PostgresDB) Statistics(ctx context.Context) (*model.Statistics, error) {
	stats := &model.Statistics{
		TranscriptionModelCounts: map[string]int{},
		SummarizationModelCounts: map[string]int{},
	}

	if err := p.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM transcriptions").Scan(&stats.TotalRecords); err != nil {
		return nil, apperrors.Persistence(err, "count records")
	}

	for _, group := range []struct {
		column string
		dst    map[string]int
	}{
		{"transcription_model", stats.TranscriptionModelCounts},
		{"summarization_model", stats.SummarizationModelCounts},
	} {
		rows, err := p.db.QueryContext(ctx,
			"SELECT "+group.column+", COUNT(*) FROM transcriptions GROUP BY "+group.column)
		if err != nil {
			return nil, apperrors.Persistence(err, "group records by %s", group.column)
		}
		for rows.Next() {
			var name string
			var count int
			if err := rows.Scan(&name, &count); err != nil {
				rows.Close()
				return nil, apperrors.Persistence(err, "scan %s counts", group.column)
			}
			group.dst[name] = count
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, apperrors.Persistence(err, "read %s counts", group.column)
		}
		rows.Close()
	}

	weekAgo := time.Now().AddDate(0, 0, -7)
	if err := p.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM transcriptions WHERE created_at >= $1", weekAgo).Scan(&stats.RecordsLastWeek); err != nil {
		return nil, apperrors.Persistence(err, "count recent records")
	}

	return stats, nil
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

var _ repository.HistoryDAO = (*PostgresDB)(nil)
