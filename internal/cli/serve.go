package cli

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"connectrpc.com/connect"
	"github.com/spf13/cobra"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
	"golang.org/x/sync/errgroup"

	"github.com/mmynk/debtbook/internal/middleware"
	"github.com/mmynk/debtbook/internal/service"
	"github.com/mmynk/debtbook/internal/web"
	pb "github.com/mmynk/debtbook/pkg/debtbookv1"
)

const shutdownTimeout = 30 * time.Second

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server (dashboard, Connect API, metrics)",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := newApp(cfg, true)
	if err != nil {
		return err
	}
	defer a.Close()

	var uploader service.Uploader
	if a.uploader != nil {
		uploader = a.uploader
	}
	svc := service.NewLedgerService(a.ledger, a.balances, uploader)
	rpcPath, rpcHandler := pb.NewLedgerServiceHandler(svc,
		connect.WithInterceptors(middleware.LoggingInterceptor()),
	)

	srv, err := web.NewServer(a.ledger, a.balances)
	if err != nil {
		return err
	}
	srv.SetRPCHandler(rpcPath, rpcHandler)
	if a.uploader != nil {
		srv.SetUploader(a.uploader)
	}
	if cfg.Server.MetricsEnabled {
		srv.EnableMetrics()
	}

	httpServer := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           h2c.NewHandler(srv.Handler(), &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 16,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("Server starting",
			"address", httpServer.Addr,
			"rpc", rpcPath,
			"metrics", cfg.Server.MetricsEnabled,
			"sync", cfg.SyncEnabled(),
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		slog.Info("Shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	slog.Info("Server stopped gracefully")
	return nil
}
