package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"

	"github.com/robinvdvleuten/finboard/report"
)

// writeJSONResponse writes a JSON response to the http.ResponseWriter.
// If encoding fails, it writes an error response.
func writeJSONResponse(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// serveDocument decodes a document with read and writes it back. A missing
// document is a 404; a malformed one a 500, which the dashboard shows as its
// "failed to load" state.
func serveDocument[T any](s *Server, w http.ResponseWriter, name string, read func(string) (*T, error)) {
	doc, err := read(filepath.Join(s.DataDir, name))
	switch {
	case errors.Is(err, os.ErrNotExist):
		http.Error(w, name+" has not been generated yet", http.StatusNotFound)
	case err != nil:
		s.logger.Error("failed to read document", "document", name, "error", err)
		http.Error(w, "Failed to read "+name, http.StatusInternalServerError)
	default:
		writeJSONResponse(w, doc)
	}
}

func (s *Server) handleFinanceData(w http.ResponseWriter, r *http.Request) {
	serveDocument(s, w, report.FinanceDataFile, report.ReadFinanceData)
}

func (s *Server) handleTrends(w http.ResponseWriter, r *http.Request) {
	serveDocument(s, w, report.TrendsFile, report.ReadTrends)
}

func (s *Server) handleBudgets(w http.ResponseWriter, r *http.Request) {
	serveDocument(s, w, report.BudgetsFile, report.ReadBudgets)
}

type VersionResponse struct {
	Version string `json:"version"`
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, &VersionResponse{Version: s.Version})
}
