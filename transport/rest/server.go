package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/rocketscienceinc/connectfour-backend/internal/entity"
)

const shutdownTimeout = 5 * time.Second

type statisticsReader interface {
	Get(ctx context.Context) (*entity.Statistics, error)
}

type Server struct {
	logger *slog.Logger
	stats  statisticsReader
}

func New(logger *slog.Logger, stats statisticsReader) *Server {
	return &Server{
		logger: logger.With("component", "rest"),
		stats:  stats,
	}
}

func (that *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ping", pingHandler)
	mux.HandleFunc("GET /stats", that.statsHandler)

	return mux
}

// Start - starts HTTP server and stops it when ctx is done.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      that.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			that.logger.Error("failed to shut down HTTP server", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

func (that *Server) statsHandler(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "statsHandler")

	stats, err := that.stats.Get(r.Context())
	if err != nil {
		log.Error("failed to get statistics", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err = json.NewEncoder(w).Encode(stats); err != nil {
		log.Error("failed to write statistics", "error", err)
	}
}
