// Package export renders stored transcription records into downloadable
// formats: plain text and PDF for a single record, CSV/JSON/XLSX for the
// full history.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/tealeg/xlsx"

	"meeting-summarizer/internal/app/model"
)

// Field selects which text of a record gets exported.
type Field string

const (
	FieldTranscript Field = "transcript"
	FieldSummary    Field = "summary"
)

// ParseField validates a user-supplied field name.
func ParseField(s string) (Field, error) {
	switch Field(strings.ToLower(strings.TrimSpace(s))) {
	case FieldTranscript:
		return FieldTranscript, nil
	case FieldSummary:
		return FieldSummary, nil
	default:
		return "", fmt.Errorf("unknown export field %q (want transcript or summary)", s)
	}
}

func fieldText(rec *model.TranscriptionRecord, field Field) string {
	if field == FieldSummary {
		return rec.Summary
	}
	return rec.Transcript
}

// BaseName builds the suggested download name for a record export,
// e.g. "standup_summary" for standup.mp3.
func BaseName(rec *model.TranscriptionRecord, field Field) string {
	name := rec.AudioFilename
	if i := strings.LastIndex(name, "."); i > 0 {
		name = name[:i]
	}
	if name == "" {
		name = rec.ID
	}
	return name + "_" + string(field)
}

// Text writes the selected field as plain UTF-8 text.
func Text(w io.Writer, rec *model.TranscriptionRecord, field Field) error {
	_, err := io.WriteString(w, fieldText(rec, field))
	return err
}

// PDF renders the selected field as a simple document: bold title with the
// audio filename, a metadata line, then the text split into paragraphs on
// blank lines.
func PDF(w io.Writer, rec *model.TranscriptionRecord, field Field) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Helvetica", "B", 16)
	pdf.MultiCell(0, 8, tr(rec.AudioFilename), "", "L", false)
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "I", 10)
	meta := fmt.Sprintf("%s of %s, created %s",
		titleCase(string(field)), rec.TranscriptionModel, rec.CreatedAt.Format("2006-01-02 15:04"))
	pdf.MultiCell(0, 5, tr(meta), "", "L", false)
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "", 11)
	for _, paragraph := range splitParagraphs(fieldText(rec, field)) {
		pdf.MultiCell(0, 5, tr(paragraph), "", "L", false)
		pdf.Ln(3)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render pdf for record %s: %w", rec.ID, err)
	}
	return nil
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func splitParagraphs(text string) []string {
	var paragraphs []string
	for _, block := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n\n") {
		block = strings.TrimSpace(block)
		if block != "" {
			paragraphs = append(paragraphs, block)
		}
	}
	if len(paragraphs) == 0 {
		paragraphs = []string{""}
	}
	return paragraphs
}

var historyHeader = []string{
	"ID", "Audio Filename", "Created At", "Transcription Model", "Summarization Model",
	"Estimated Duration (s)", "Transcript", "Summary",
}

func historyRow(rec *model.TranscriptionRecord) []string {
	return []string{
		rec.ID,
		rec.AudioFilename,
		rec.CreatedAt.Format(time.RFC3339),
		rec.TranscriptionModel,
		rec.SummarizationModel,
		strconv.Itoa(rec.EstimatedDuration),
		rec.Transcript,
		rec.Summary,
	}
}

// HistoryCSV writes all records as CSV with a header row.
func HistoryCSV(w io.Writer, records []model.TranscriptionRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(historyHeader); err != nil {
		return err
	}
	for i := range records {
		if err := cw.Write(historyRow(&records[i])); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// HistoryJSON writes all records as an indented JSON array.
func HistoryJSON(w io.Writer, records []model.TranscriptionRecord) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

// HistoryXLSX writes all records as a single-sheet workbook.
func HistoryXLSX(w io.Writer, records []model.TranscriptionRecord) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("History")
	if err != nil {
		return err
	}

	headerRow := sheet.AddRow()
	for _, h := range historyHeader {
		headerRow.AddCell().Value = h
	}

	for i := range records {
		row := sheet.AddRow()
		for _, v := range historyRow(&records[i]) {
			row.AddCell().Value = v
		}
	}

	return file.Write(w)
}
