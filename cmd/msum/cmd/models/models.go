package models

import (
	"fmt"

	"github.com/spf13/cobra"

	"meeting-summarizer/cmd/msum/cmd/bootstrap"
	"meeting-summarizer/internal/app/whisper"
)

// Cmd represents the models command
var Cmd = &cobra.Command{
	Use:   "models",
	Short: "List the locally available transcription and summarization models",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := bootstrap.Load()
		if err != nil {
			return err
		}

		transcriptionModels, err := whisper.ListLocalModels(cfg.WhisperModelDir)
		if err != nil {
			return err
		}

		fmt.Println("Transcription models:")
		if len(transcriptionModels) == 0 {
			fmt.Printf("  (none found in %s)\n", cfg.WhisperModelDir)
		}
		for _, m := range transcriptionModels {
			fmt.Printf("  %s\n", m)
		}

		a, cleanup, err := bootstrap.App()
		if err != nil {
			return err
		}
		defer cleanup()

		summarizationModels, err := a.Ollama.ListModels(cmd.Context())
		if err != nil {
			return fmt.Errorf("list summarization models: %w", err)
		}

		fmt.Println("Summarization models:")
		if len(summarizationModels) == 0 {
			fmt.Println("  (none installed)")
		}
		for _, m := range summarizationModels {
			fmt.Printf("  %s\n", m)
		}
		return nil
	},
}
