package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meeting-summarizer/internal/app/model"
)

func sampleRecord() *model.TranscriptionRecord {
	return &model.TranscriptionRecord{
		ID:                 "rec-1",
		AudioFilename:      "standup.mp3",
		Transcript:         "First paragraph.\n\nSecond paragraph.",
		Summary:            "Team discussed the release.",
		TranscriptionModel: "base",
		SummarizationModel: "llama2",
		EstimatedDuration:  42,
		CreatedAt:          time.Date(2026, 8, 15, 9, 30, 0, 0, time.UTC),
	}
}

func TestParseField(t *testing.T) {
	for input, want := range map[string]Field{
		"transcript": FieldTranscript,
		"summary":    FieldSummary,
		" Summary ":  FieldSummary,
		"TRANSCRIPT": FieldTranscript,
	} {
		got, err := ParseField(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, got)
	}

	_, err := ParseField("notes")
	assert.Error(t, err)
}

func TestBaseName(t *testing.T) {
	rec := sampleRecord()
	assert.Equal(t, "standup_summary", BaseName(rec, FieldSummary))
	assert.Equal(t, "standup_transcript", BaseName(rec, FieldTranscript))

	rec.AudioFilename = ""
	assert.Equal(t, "rec-1_summary", BaseName(rec, FieldSummary))
}

func TestText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Text(&buf, sampleRecord(), FieldSummary))
	assert.Equal(t, "Team discussed the release.", buf.String())
}

func TestPDFProducesValidHeader(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PDF(&buf, sampleRecord(), FieldTranscript))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
	assert.Greater(t, buf.Len(), 500)
}

func TestPDFEmptyText(t *testing.T) {
	rec := sampleRecord()
	rec.Transcript = ""

	var buf bytes.Buffer
	require.NoError(t, PDF(&buf, rec, FieldTranscript))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
}

func TestSplitParagraphs(t *testing.T) {
	got := splitParagraphs("one\n\ntwo\r\n\r\nthree\n\n\n")
	assert.Equal(t, []string{"one", "two", "three"}, got)
}

func TestHistoryCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, HistoryCSV(&buf, []model.TranscriptionRecord{*sampleRecord()}))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, historyHeader, rows[0])
	assert.Equal(t, "rec-1", rows[1][0])
	assert.Equal(t, "standup.mp3", rows[1][1])
	assert.Equal(t, "42", rows[1][5])
}

func TestHistoryJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, HistoryJSON(&buf, []model.TranscriptionRecord{*sampleRecord()}))

	var decoded []model.TranscriptionRecord
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "rec-1", decoded[0].ID)
}

func TestHistoryXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, HistoryXLSX(&buf, []model.TranscriptionRecord{*sampleRecord()}))

	// xlsx files are zip archives.
	assert.True(t, strings.HasPrefix(buf.String(), "PK"))
}
