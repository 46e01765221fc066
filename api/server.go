package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/VictoriaMetrics/metrics"
	"github.com/feedbridge/feedbridge/bridge/common"
	"github.com/feedbridge/feedbridge/bridge/host"
	"github.com/lni/dragonboat/v4/logger"
)

var Logger = logger.GetLogger("api")

// Server exposes a running bridge as a synchronous JSON API for local
// clients.
type Server struct {
	config *common.BridgeConfig
	bridge host.IBridge
	server *http.Server
}

// NewServer creates the HTTP server for the given bridge. Serve starts it.
func NewServer(config *common.BridgeConfig, bridge host.IBridge) *Server {
	s := &Server{
		config: config,
		bridge: bridge,
	}
	s.server = &http.Server{
		Addr:    config.Endpoint,
		Handler: s.Handler(),
	}
	return s
}

// Handler builds the route table. Exposed for tests.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/rss/unread", s.handleUnread)
	mux.HandleFunc("GET /api/rss/item", s.handleItem)
	mux.HandleFunc("GET /api/rss/mark-read", s.handleMarkRead)
	mux.HandleFunc("GET /api/rss/folder", s.handleFolder)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /metrics", handleMetrics)
	mux.HandleFunc("/", s.handleRoot)

	return loggerMiddleware(mux)
}

// Serve starts the HTTP server and blocks until it is shut down.
func (s *Server) Serve() error {
	Logger.Infof("Starting HTTP server on %s", s.config.Endpoint)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Close shuts the server down, waiting for in-flight requests up to the
// context deadline.
func (s *Server) Close(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// --------------------------------------------------------------------------
// Response Shapes
// --------------------------------------------------------------------------

// listResponse answers unread and folder queries.
type listResponse struct {
	Status     string            `json:"status"`
	Data       []json.RawMessage `json:"data"`
	Count      int               `json:"count"`
	FolderPath string            `json:"folderPath,omitempty"`
}

// staleResponse answers an unread query whose refresh timed out: the cached
// snapshot plus a timeout marker, deliberately without a count.
type staleResponse struct {
	Status  string            `json:"status"`
	Data    []json.RawMessage `json:"data"`
	Message string            `json:"message"`
}

// itemResponse answers single item queries.
type itemResponse struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
}

// markReadResponse answers mark-as-read requests.
type markReadResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// errorResponse is the error shape shared by every endpoint.
type errorResponse struct {
	Error  string `json:"error"`
	Status string `json:"status"`
}

// healthResponse answers the health probe.
type healthResponse struct {
	Status          string `json:"status"`
	PendingRequests int    `json:"pendingRequests"`
	LastBroadcast   string `json:"lastBroadcast"`
	CachedItems     int    `json:"cachedItems"`
	Version         string `json:"version"`
}

// --------------------------------------------------------------------------
// Handlers
// --------------------------------------------------------------------------

// handleUnread triggers a snapshot refresh. A timed-out refresh still
// answers 200 with the cached snapshot so clients keep rendering data.
func (s *Server) handleUnread(w http.ResponseWriter, _ *http.Request) {
	items, fresh, err := s.bridge.FetchUnread(s.config.Timeouts.Refresh)
	if err != nil {
		s.sendError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if !fresh {
		Logger.Warningf("Answering unread request with the cached snapshot")
		s.sendJSON(w, http.StatusOK, staleResponse{
			Status:  "timeout",
			Data:    items,
			Message: "Timeout waiting for fresh data, returning cached.",
		})
		return
	}

	s.sendJSON(w, http.StatusOK, listResponse{
		Status: "success",
		Data:   items,
		Count:  len(items),
	})
}

// handleItem fetches a single item by id.
func (s *Server) handleItem(w http.ResponseWriter, r *http.Request) {
	itemID := r.URL.Query().Get("itemId")
	if itemID == "" {
		s.sendError(w, "itemId is required", http.StatusBadRequest)
		return
	}

	item, err := s.bridge.FetchItem(itemID, s.config.Timeouts.Item)
	switch {
	case errors.Is(err, host.ErrTimedOut):
		s.sendError(w, "Operation timed out", http.StatusGatewayTimeout)
	case err != nil:
		s.sendError(w, err.Error(), http.StatusInternalServerError)
	case item == nil:
		s.sendError(w, "Item not found", http.StatusNotFound)
	default:
		s.sendJSON(w, http.StatusOK, itemResponse{
			Status: "success",
			Data:   item,
		})
	}
}

// handleMarkRead asks the extension to mark one item as read.
func (s *Server) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	itemID := r.URL.Query().Get("itemId")
	if itemID == "" {
		s.sendError(w, "itemId is required", http.StatusBadRequest)
		return
	}

	success, err := s.bridge.MarkRead(itemID, s.config.Timeouts.MarkRead)
	switch {
	case errors.Is(err, host.ErrTimedOut):
		s.sendError(w, "Operation timed out", http.StatusGatewayTimeout)
	case err != nil:
		s.sendError(w, err.Error(), http.StatusInternalServerError)
	case success:
		s.sendJSON(w, http.StatusOK, markReadResponse{
			Status:  "success",
			Message: fmt.Sprintf("Item %s marked as read", itemID),
		})
	default:
		s.sendJSON(w, http.StatusOK, markReadResponse{
			Status:  "failed",
			Message: fmt.Sprintf("Item %s failed to mark as read", itemID),
		})
	}
}

// handleFolder fetches all items of one folder.
func (s *Server) handleFolder(w http.ResponseWriter, r *http.Request) {
	folderPath := r.URL.Query().Get("folder")
	if folderPath == "" {
		s.sendError(w, "folder is required", http.StatusBadRequest)
		return
	}

	items, err := s.bridge.FetchFolder(folderPath, s.config.Timeouts.Folder)
	switch {
	case errors.Is(err, host.ErrTimedOut):
		s.sendError(w, "Operation timed out", http.StatusGatewayTimeout)
	case err != nil:
		s.sendError(w, err.Error(), http.StatusInternalServerError)
	default:
		s.sendJSON(w, http.StatusOK, listResponse{
			Status:     "success",
			Data:       items,
			Count:      len(items),
			FolderPath: folderPath,
		})
	}
}

// handleHealth reports liveness plus the bridge counters.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	stats := s.bridge.Stats()

	lastBroadcast := "never"
	if !stats.LastBroadcast.IsZero() {
		lastBroadcast = stats.LastBroadcast.Format(time.RFC3339)
	}

	s.sendJSON(w, http.StatusOK, healthResponse{
		Status:          "ok",
		PendingRequests: stats.PendingRequests,
		LastBroadcast:   lastBroadcast,
		CachedItems:     stats.CachedItems,
		Version:         common.Version,
	})
}

// handleMetrics exposes the global metric set in Prometheus text format.
func handleMetrics(w http.ResponseWriter, _ *http.Request) {
	metrics.WritePrometheus(w, true)
}

// handleRoot serves the status page for the root paths and answers
// everything unrouted with the JSON not-found shape.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/", "/index.html":
		s.handleIndex(w)
	default:
		s.sendError(w, "Not found", http.StatusNotFound)
	}
}

// handleIndex serves index.html from the configured static directory.
func (s *Server) handleIndex(w http.ResponseWriter) {
	if s.config.StaticDir == "" {
		s.sendError(w, "index.html not found", http.StatusNotFound)
		return
	}

	html, err := os.ReadFile(filepath.Join(s.config.StaticDir, "index.html"))
	if err != nil {
		Logger.Warningf("Serving index.html: %v", err)
		s.sendError(w, "index.html not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(html); err != nil {
		Logger.Errorf("Error writing index.html response: %v", err)
	}
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// sendJSON writes one JSON response. The wildcard CORS header lets the
// extension's own pages query the local API directly.
func (s *Server) sendJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		Logger.Errorf("Error writing response: %v", err)
	}
}

// sendError writes the uniform error shape with the given status code.
func (s *Server) sendError(w http.ResponseWriter, message string, status int) {
	s.sendJSON(w, status, errorResponse{
		Error:  message,
		Status: "error",
	})
}

// --------------------------------------------------------------------------
// Middleware
// --------------------------------------------------------------------------

// responseWriter is a custom ResponseWriter that captures the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

// WriteHeader captures the status code before writing it
func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// loggerMiddleware logs every request and feeds the per-route counter.
func loggerMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		pattern := r.Pattern
		if pattern == "" {
			pattern = "unmatched"
		}
		metrics.GetOrCreateCounter(fmt.Sprintf(`feedbridge_http_requests_total{pattern=%q}`, pattern)).Inc()

		Logger.Debugf("%s %s => %d took %s", r.Method, r.URL.Path, rw.statusCode, time.Since(start))
	})
}
