package server

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/conneroisu/prime-website/internal/inventory"
	"github.com/conneroisu/prime-website/internal/version"
)

// inventoryErrorBody is the only thing a client learns about a failed
// inventory page; the cause goes to the log.
const inventoryErrorBody = "Error reading the inventory data"

// handleInventory renders the inventory view with the records read fresh
// from the data file.
func (s *Server) handleInventory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	dataPath := s.config.DataPath()

	records, err := inventory.Load(dataPath)
	if err != nil {
		s.inventoryError(w, r, err, "Failed to load inventory", "path", dataPath)
		return
	}

	body, err := s.view.Render(ctx, records)
	if err != nil {
		s.inventoryError(w, r, err, "Failed to render inventory", "view", s.config.ViewPath())
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		s.logger.Debug(ctx, "Failed to write response", "error", err)
	}
}

func (s *Server) inventoryError(w http.ResponseWriter, r *http.Request, err error, msg string, fields ...interface{}) {
	fields = append(fields, "request_id", middleware.GetReqID(r.Context()))
	s.logger.Error(r.Context(), err, msg, fields...)

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusInternalServerError)
	_, _ = w.Write([]byte(inventoryErrorBody))
}

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	health := HealthResponse{Status: "ok", Version: version.GetShortVersion()}
	if err := json.NewEncoder(w).Encode(health); err != nil {
		s.logger.Error(r.Context(), err, "Failed to encode health response")
	}
}

// staticHandler serves files from the public directory. Directory listings
// are not exposed.
func (s *Server) staticHandler() http.HandlerFunc {
	root := s.config.PublicPath()
	files := http.FileServer(http.Dir(root))

	return func(w http.ResponseWriter, r *http.Request) {
		name := filepath.Join(root, filepath.FromSlash(r.URL.Path))
		if strings.HasSuffix(r.URL.Path, "/") || isDir(name) {
			http.NotFound(w, r)
			return
		}
		files.ServeHTTP(w, r)
	}
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
