package summarize

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"meeting-summarizer/cmd/msum/cmd/bootstrap"
	"meeting-summarizer/internal/app"
	"meeting-summarizer/internal/app/pipeline"
)

var (
	inputDir           string
	contextNote        string
	transcriptionModel string
	summarizationModel string
	owner              string
	parallel           int
	skipProcessed      bool
	noProgress         bool
)

func init() {
	Cmd.Flags().StringVarP(&inputDir, "dir", "d", "", "process every audio file in this directory instead of a single file")
	Cmd.Flags().StringVarP(&contextNote, "context", "c", "", "optional context passed to the summarizer")
	Cmd.Flags().StringVarP(&transcriptionModel, "transcription-model", "t", "base", "whisper model id")
	Cmd.Flags().StringVarP(&summarizationModel, "summarization-model", "s", "", "summarization model name")
	Cmd.Flags().StringVar(&owner, "owner", "", "owner recorded on created entries")
	Cmd.Flags().IntVarP(&parallel, "parallel", "p", 2, "concurrent files in directory mode")
	Cmd.Flags().BoolVar(&skipProcessed, "skip-processed", true, "skip files that already have a history record")
	Cmd.Flags().BoolVar(&noProgress, "no-progress", false, "disable the progress bar in directory mode")

	Cmd.MarkFlagRequired("summarization-model")
}

// Cmd represents the summarize command
var Cmd = &cobra.Command{
	Use:   "summarize [audio file]",
	Short: "Transcribe and summarize one recording or a directory of recordings",
	Long: `Transcribe and summarize one recording or a directory of recordings.

Each processed file produces one history record with the transcript, the
summary and derived metadata.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if inputDir == "" && len(args) == 0 {
			return fmt.Errorf("provide an audio file argument or --dir")
		}

		a, cleanup, err := bootstrap.App()
		if err != nil {
			return err
		}
		defer cleanup()

		req := pipeline.Request{
			Context:            contextNote,
			TranscriptionModel: transcriptionModel,
			SummarizationModel: summarizationModel,
			Owner:              owner,
		}

		if inputDir != "" {
			return runDirectory(cmd, a, req)
		}

		req.AudioPath = args[0]
		rec, err := a.Pipeline.Run(cmd.Context(), req)
		if err != nil {
			return err
		}

		fmt.Printf("record %s created for %s\n\n%s\n", rec.ID, rec.AudioFilename, rec.Summary)
		return nil
	},
}

func runDirectory(cmd *cobra.Command, a *app.App, req pipeline.Request) error {
	results, err := a.Pipeline.RunDirectory(cmd.Context(), inputDir, req, pipeline.BatchOptions{
		Parallel:      parallel,
		SkipProcessed: skipProcessed,
		Progress:      !noProgress,
	})
	if err != nil {
		return err
	}

	var processed, skipped, failed int
	for _, r := range results {
		switch {
		case r.Skipped:
			skipped++
		case r.Err != nil:
			failed++
			fmt.Fprintf(os.Stderr, "failed: %s: %v\n", r.AudioPath, r.Err)
		default:
			processed++
		}
	}

	fmt.Printf("done: %d processed, %d skipped, %d failed\n", processed, skipped, failed)
	if failed > 0 {
		return fmt.Errorf("%d file(s) failed", failed)
	}
	return nil
}
