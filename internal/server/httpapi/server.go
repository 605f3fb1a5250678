// Package httpapi exposes the engine over JSON/HTTP. Every route except the
// oracle callback requires a bearer token; the callback authenticates by
// its attestation proof instead.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/cynthia-woock354k/Nutrition-AI-FHE/internal/logging"
	"github.com/cynthia-woock354k/Nutrition-AI-FHE/internal/server/engine"
)

type HTTPServer struct {
	address   string
	engine    *engine.Engine
	logger    logging.Logger
	jwtSecret []byte
}

func NewHTTPServer(address string, l logging.Logger, e *engine.Engine, secretKey string) *HTTPServer {
	return &HTTPServer{
		address:   address,
		engine:    e,
		logger:    l.With("module", "http_server"),
		jwtSecret: []byte(secretKey),
	}
}

// Handler builds the full route table wrapped in the access-token
// middleware.
func (s *HTTPServer) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/admin/ownership", s.handleTransferOwnership)
	mux.HandleFunc("POST /api/admin/providers", s.handleAddProvider)
	mux.HandleFunc("DELETE /api/admin/providers/{id}", s.handleRemoveProvider)
	mux.HandleFunc("POST /api/admin/pause", s.handleSetPaused)
	mux.HandleFunc("POST /api/admin/cooldown", s.handleSetCooldown)
	mux.HandleFunc("POST /api/admin/batch/open", s.handleOpenBatch)
	mux.HandleFunc("POST /api/admin/batch/close", s.handleCloseBatch)

	mux.HandleFunc("POST /api/records", s.handleSubmitRecord)
	mux.HandleFunc("POST /api/analysis/{batchID}", s.handleRequestAnalysis)

	mux.HandleFunc("POST /api/oracle/callback", s.handleOracleCallback)

	mux.HandleFunc("GET /api/batch", s.handleCurrentBatch)
	mux.HandleFunc("GET /api/records/{batchID}", s.handleGetRecord)
	mux.HandleFunc("GET /api/batches/{batchID}/processed", s.handleBatchProcessed)
	mux.HandleFunc("GET /api/requests/{requestID}", s.handleGetContext)
	mux.HandleFunc("GET /api/cooldowns", s.handleCooldowns)

	return s.accessTokenMiddleware(mux)
}

// Run serves until the context is cancelled, then shuts down gracefully.
func (s *HTTPServer) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.address,
		Handler: s.Handler(),
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "shutdown", "error", err.Error())
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
