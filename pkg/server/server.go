package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/bastiangx/suggestd/internal/logger"
	"github.com/bastiangx/suggestd/pkg/suggest"
	"github.com/charmbracelet/log"
)

// HTTPServer serves suggestions over HTTP.
type HTTPServer struct {
	suggester suggest.Suggester
	timeout   time.Duration
	srv       *http.Server
	log       *log.Logger
}

// NewHTTPServer creates a server listening on addr. A positive timeout bounds
// every suggestion lookup.
func NewHTTPServer(s suggest.Suggester, addr string, timeout time.Duration) *HTTPServer {
	h := &HTTPServer{
		suggester: s,
		timeout:   timeout,
		log:       logger.New("http"),
	}
	h.srv = &http.Server{
		Addr:              addr,
		Handler:           h.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return h
}

// Handler returns the routes.
func (h *HTTPServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /suggest", h.handleSuggest)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	return mux
}

// Serve runs until ctx is done, then shuts down gracefully.
func (h *HTTPServer) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		h.log.Info("listening", "addr", h.srv.Addr)
		errCh <- h.srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := h.srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (h *HTTPServer) handleSuggest(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")

	ctx := r.Context()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	start := time.Now()
	suggestions, err := h.suggester.Suggestions(ctx, q)
	if err != nil {
		h.handleError(w, err)
		return
	}
	h.log.Debug("suggest", "q", q, "count", len(suggestions), "took", time.Since(start))
	writeJSON(w, http.StatusOK, suggestions)
}

func (h *HTTPServer) handleError(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	h.log.Error("suggest failed", "status", status, "err", err)
	writeJSON(w, status, ErrorResponse{Error: http.StatusText(status)})
}

// StatusFor maps a suggestion error to the HTTP status shown to clients.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, suggest.ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Errorf("Marshaling response: %v", err)
	}
}
