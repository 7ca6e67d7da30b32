// Package server exposes the scanner over HTTP for CI systems that prefer a
// long-lived service to a per-invocation binary.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/leakhound/leakhound/internal/engine"
	"github.com/leakhound/leakhound/internal/git"
)

// ScanRequest is the POST /scan payload. Exactly one of RepoURL and Path must
// be set; RepoURL scans a fresh clone, Path scans a directory already visible
// to the server.
type ScanRequest struct {
	RepoURL string   `json:"repo_url,omitempty"`
	Branch  string   `json:"branch,omitempty"`
	Path    string   `json:"path,omitempty"`
	Deep    bool     `json:"deep"`
	Rotated []string `json:"rotated,omitempty"`
	Include string   `json:"include,omitempty"`
	Exclude string   `json:"exclude,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Server wires scan requests into the engine.
type Server struct {
	// ScanTimeout bounds one scan; longer scans return truncated results.
	ScanTimeout time.Duration
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/scan", s.handleScan)
	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "use POST")
		return
	}
	var req ScanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if (req.RepoURL == "") == (req.Path == "") {
		writeError(w, http.StatusBadRequest, "exactly one of repo_url and path is required")
		return
	}

	ctx := r.Context()
	if s.ScanTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.ScanTimeout)
		defer cancel()
	}

	root := req.Path
	if req.RepoURL != "" {
		dir, cleanup, err := git.CloneTemp(ctx, req.RepoURL, req.Branch, req.Deep)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		defer cleanup()
		root = dir
	}

	res, err := engine.Scan(ctx, engine.Config{
		Root:            root,
		Deep:            req.Deep,
		Rotated:         req.Rotated,
		IncludeGlobs:    req.Include,
		ExcludeGlobs:    req.Exclude,
		DefaultExcludes: true,
		NoCache:         req.RepoURL != "",
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(res)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(errorResponse{Error: msg})
}
