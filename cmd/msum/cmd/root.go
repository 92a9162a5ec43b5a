package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"meeting-summarizer/cmd/msum/cmd/bootstrap"
	"meeting-summarizer/cmd/msum/cmd/export"
	"meeting-summarizer/cmd/msum/cmd/models"
	"meeting-summarizer/cmd/msum/cmd/serve"
	"meeting-summarizer/cmd/msum/cmd/summarize"
	"meeting-summarizer/cmd/msum/cmd/version"
	"meeting-summarizer/cmd/msum/cmd/watch"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "msum",
	Short: "Transcribe and summarize meeting recordings with local models",
	Long: `Transcribe and summarize meeting recordings with local models.
- Audio is normalized with ffmpeg and transcribed with whisper.cpp
- Transcripts are summarized through Ollama (or OpenAI)
- Results land in a searchable local history database.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serve.Cmd)
	rootCmd.AddCommand(summarize.Cmd)
	rootCmd.AddCommand(watch.Cmd)
	rootCmd.AddCommand(models.Cmd)
	rootCmd.AddCommand(export.Cmd)
	rootCmd.AddCommand(version.Cmd)

	rootCmd.PersistentFlags().StringVar(&bootstrap.ConfigFile, "config", "", "config file (YAML, optional)")
	rootCmd.PersistentFlags().BoolVarP(&bootstrap.Verbose, "verbose", "V", false, "verbose output")
}
