package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/turtacn/HSCode-Intelligence/internal/bootstrap"
)

// NewServeCmd creates the serve command, which runs the classification API
// server in the foreground until interrupted.
func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the classification API server",
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cliCtx.Config, cliCtx.Logger, bootstrap.Options{})
	if err != nil {
		return err
	}
	defer app.Close()

	server := bootstrap.BuildAPIServer(app, Version)

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		cliCtx.Logger.Info("Shutdown signal received")
	}

	return server.Stop(context.Background())
}

//Personal.AI order the ending
