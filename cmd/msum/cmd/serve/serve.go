package serve

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"meeting-summarizer/cmd/msum/cmd/bootstrap"
)

var shutdownTimeout time.Duration

func init() {
	Cmd.Flags().DurationVar(&shutdownTimeout, "shutdown-timeout", 15*time.Second, "grace period for in-flight requests on shutdown")
}

// Cmd represents the serve command
var Cmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	Long: `Run the HTTP API server.

Exposes the summarization pipeline and the history store under /api/v1,
plus /health and /metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, cleanup, err := bootstrap.App()
		if err != nil {
			return err
		}
		defer cleanup()

		errCh := make(chan error, 1)
		go func() {
			errCh <- a.Server.Start()
		}()

		stop := make(chan os.Signal, 1)
		signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

		select {
		case err := <-errCh:
			return err
		case sig := <-stop:
			a.Logger.Info("shutdown signal received", zap.String("signal", sig.String()))
		}

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return a.Server.Shutdown(ctx)
	},
}
