package watch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"meeting-summarizer/cmd/msum/cmd/bootstrap"
	"meeting-summarizer/internal/app/pipeline"
)

var (
	contextNote        string
	transcriptionModel string
	summarizationModel string
	owner              string
	maxConcurrent      int
)

func init() {
	Cmd.Flags().StringVarP(&contextNote, "context", "c", "", "optional context passed to the summarizer")
	Cmd.Flags().StringVarP(&transcriptionModel, "transcription-model", "t", "base", "whisper model id")
	Cmd.Flags().StringVarP(&summarizationModel, "summarization-model", "s", "", "summarization model name")
	Cmd.Flags().StringVar(&owner, "owner", "", "owner recorded on created entries")
	Cmd.Flags().IntVarP(&maxConcurrent, "max-concurrent", "p", 2, "maximum files processed at once")

	Cmd.MarkFlagRequired("summarization-model")
}

// Cmd represents the watch command
var Cmd = &cobra.Command{
	Use:   "watch <directory>",
	Short: "Watch a directory and summarize every new recording",
	Long: `Watch a directory and summarize every new recording.

Runs until interrupted. Files already present when the watch starts are not
processed; use the summarize command with --dir for those.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, cleanup, err := bootstrap.App()
		if err != nil {
			return err
		}
		defer cleanup()

		watcher, err := pipeline.NewWatcher(a.Pipeline, args[0], pipeline.Request{
			Context:            contextNote,
			TranscriptionModel: transcriptionModel,
			SummarizationModel: summarizationModel,
			Owner:              owner,
		}, maxConcurrent)
		if err != nil {
			return err
		}
		defer watcher.Stop()

		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		fmt.Fprintf(os.Stderr, "watching %s, press Ctrl+C to stop\n", args[0])

		if err := watcher.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}
