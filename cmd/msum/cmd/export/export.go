package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"meeting-summarizer/cmd/msum/cmd/bootstrap"
	"meeting-summarizer/internal/app/export"
)

var (
	recordID       string
	field          string
	outputFilePath string
)

func init() {
	Cmd.Flags().StringVarP(&recordID, "id", "i", "", "export a single record instead of the full history")
	Cmd.Flags().StringVarP(&field, "field", "f", "summary", "record text to export: transcript or summary")
	Cmd.Flags().StringVarP(&outputFilePath, "output", "o", "", "output file path; the extension picks the format")

	Cmd.MarkFlagRequired("output")
}

// Cmd represents the export command
var Cmd = &cobra.Command{
	Use:   "export",
	Short: "Export the history or a single record to a file",
	Long: `Export the history or a single record to a file.

Without --id the full history is written; supported extensions are .csv,
.json and .xlsx. With --id one record's transcript or summary is written;
supported extensions are .txt and .pdf.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, cleanup, err := bootstrap.App()
		if err != nil {
			return err
		}
		defer cleanup()

		out, err := os.Create(outputFilePath)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer out.Close()

		ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(outputFilePath), "."))

		if recordID != "" {
			exportField, err := export.ParseField(field)
			if err != nil {
				return err
			}
			rec, err := a.DAO.GetByID(cmd.Context(), recordID)
			if err != nil {
				return err
			}

			switch ext {
			case "txt":
				err = export.Text(out, rec, exportField)
			case "pdf":
				err = export.PDF(out, rec, exportField)
			default:
				return fmt.Errorf("unsupported record export extension %q (want .txt or .pdf)", ext)
			}
			if err != nil {
				return err
			}
		} else {
			records, err := a.DAO.GetAll(cmd.Context())
			if err != nil {
				return err
			}

			switch ext {
			case "csv":
				err = export.HistoryCSV(out, records)
			case "json":
				err = export.HistoryJSON(out, records)
			case "xlsx":
				err = export.HistoryXLSX(out, records)
			default:
				return fmt.Errorf("unsupported history export extension %q (want .csv, .json or .xlsx)", ext)
			}
			if err != nil {
				return err
			}
		}

		fmt.Printf("export finished, exported file path: %v\n", outputFilePath)
		return nil
	},
}
