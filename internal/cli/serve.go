package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/Dan9191/recurring-service/internal/handler"
	"github.com/Dan9191/recurring-service/internal/jobs"
	"github.com/Dan9191/recurring-service/internal/middleware"
)

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().Bool("no-cron", false, "Serve the API without running the batch")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the batch runner",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	noCron, _ := cmd.Flags().GetBool("no-cron")
	var runner *jobs.Runner
	if !noCron {
		runner, err = jobs.NewRunner(a.svc, a.log, a.cfg.CronSpec)
		if err != nil {
			return err
		}
		runner.Start(ctx)
	}

	limiter := middleware.NewRateLimiter(a.cfg.RateLimitRPS, a.cfg.RateLimitBurst)
	r := mux.NewRouter()
	r.HandleFunc("/health", handler.Health).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	// Protected routes
	api := r.PathPrefix("/").Subrouter()
	api.Use(limiter.Middleware, middleware.AuthMiddleware(a.cfg))
	handler.NewHandler(a.svc, a.log).Routes(api)

	addr := fmt.Sprintf(":%s", a.cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Infof("Starting server on %s", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
		a.log.Info("Shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if runner != nil {
		if err := runner.Stop(shutdownCtx); err != nil {
			a.log.Warnf("Batch runner did not stop cleanly: %v", err)
		}
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}
