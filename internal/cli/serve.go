package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/flowscope/internal/server"
)

// shutdownTimeout bounds graceful shutdown on interrupt.
const shutdownTimeout = 10 * time.Second

// serveCommand creates the serve command for running the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API for interactive clients",
		Long: `Serve runs an HTTP API that holds uploaded graph documents in memory
and lets clients collapse and expand containers remotely.

Endpoints:
  POST   /api/documents                               upload a document
  GET    /api/documents                               list documents
  GET    /api/documents/{id}                          full state snapshot
  GET    /api/documents/{id}/visible                  visible projection
  GET    /api/documents/{id}/render?format=svg        render an artifact
  POST   /api/documents/{id}/collapse/{containerID}   collapse a container
  POST   /api/documents/{id}/expand/{containerID}     expand a container`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), addr, configPath)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8639", "listen address")
	cmd.Flags().StringVar(&configPath, "config", "", "config file path (default: XDG config dir)")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr, configPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	srv := server.New(addr, *cfg, c.Logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	printInfo("Serving on %s", addr)
	printDetail("Press Ctrl+C to stop")

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
