package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/kalambet/taxdesk/internal/config"
	"github.com/kalambet/taxdesk/internal/fakebackend"
	"github.com/kalambet/taxdesk/internal/mcpserver"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve taxdesk tools over MCP (stdio)",
	Long: `Serve taxdesk tools to an MCP client over stdin/stdout. The stored
session is used; log in first with ` + "`taxdesk auth login`" + `.`,
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		s := mcpserver.New(mcpserver.DepsFrom(a.api), version)
		stdio := server.NewStdioServer(s)
		slog.Info("MCP server started (stdio transport)", "api", a.cfg.API.BaseURL)
		if err := stdio.Listen(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("mcp stdio server: %w", err)
		}
		return nil
	}),
}

var devBackendCmd = &cobra.Command{
	Use:   "dev-backend",
	Short: "Run an in-memory tax API on localhost for development",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		port, _ := cmd.Flags().GetInt("port")
		if !cmd.Flags().Changed("port") {
			port = cfg.Dev.Port
		}
		return runDevBackend(cmd.Context(), cfg, port)
	},
}

func init() {
	devBackendCmd.Flags().Int("port", 0, "listen port (default dev.port)")
}

func runDevBackend(ctx context.Context, cfg config.Config, port int) error {
	fmt.Fprintf(os.Stderr, "taxdesk dev-backend version %s\n", version)

	logger, logCloser := newLogger(cfg.Log, os.Stderr)
	if logCloser != nil {
		defer logCloser.Close()
	}
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	backend := fakebackend.New(fakebackend.Options{Logger: logger})

	addr := fmt.Sprintf("127.0.0.1:%d", port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           backend.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	// Start server in a goroutine.
	errCh := make(chan error, 1)
	go func() {
		printStep("dev backend listening on http://%s (data is kept in memory)", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	// Wait for signal or server error.
	select {
	case <-ctx.Done():
		fmt.Fprintln(os.Stderr, "shutting down...")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	// Graceful shutdown with timeout.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
