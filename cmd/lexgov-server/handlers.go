package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"lexgov"
	"lexgov/governance"
)

type handler struct {
	engine lexgov.Engine
}

func newHandler(e lexgov.Engine) *handler {
	return &handler{engine: e}
}

// POST /query
func (h *handler) handleQuery(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Minute)
	defer cancel()

	var req struct {
		Question string `json:"question"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Question == "" {
		writeError(w, http.StatusBadRequest, "question is required")
		return
	}

	result, err := h.engine.Query(ctx, req.Question)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "query failed")
		slog.Error("query error", "question", req.Question, "error", err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// POST /ingest
// Accepts one source or a batch of sources.
func (h *handler) handleIngest(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Minute)
	defer cancel()

	var req struct {
		Sources []lexgov.Source `json:"sources"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: expected {\"sources\": [...]}")
		return
	}
	if len(req.Sources) == 0 {
		writeError(w, http.StatusBadRequest, "sources is required")
		return
	}

	for i := range req.Sources {
		src := &req.Sources[i]
		if src.Path == "" || src.Section == "" {
			writeError(w, http.StatusBadRequest, "each source needs path and section")
			return
		}
		if src.DocType == "" {
			src.DocType = governance.DocOther
		}
		// Validate that path is a real file (prevents directory traversal
		// probing).
		absPath, err := filepath.Abs(src.Path)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid path: "+src.Path)
			return
		}
		info, err := os.Stat(absPath)
		if err != nil || info.IsDir() {
			writeError(w, http.StatusBadRequest, "path must be an existing file: "+src.Path)
			return
		}
		src.Path = absPath
	}

	if len(req.Sources) == 1 {
		result, err := h.engine.Ingest(ctx, req.Sources[0])
		if err != nil {
			writeError(w, http.StatusInternalServerError, "ingestion failed")
			slog.Error("ingest error", "path", req.Sources[0].Path, "error", err)
			return
		}
		writeJSON(w, http.StatusOK, result)
		return
	}

	report, err := h.engine.IngestBatch(ctx, req.Sources)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "batch ingestion failed")
		slog.Error("batch ingest error", "error", err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// POST /reindex
func (h *handler) handleReindex(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Minute)
	defer cancel()

	var req struct {
		Sections []string `json:"sections,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	indexed, err := h.engine.ReindexSections(ctx, req.Sections)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "reindex failed")
		slog.Error("reindex error", "error", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"indexed":  indexed,
		"sections": req.Sections,
	})
}

// POST /purge
func (h *handler) handlePurge(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ChunkID string `json:"chunk_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.ChunkID == "" {
		writeError(w, http.StatusBadRequest, "chunk_id is required")
		return
	}

	removed, err := h.engine.Purge(r.Context(), req.ChunkID)
	if errors.Is(err, lexgov.ErrChunkNotFound) {
		writeError(w, http.StatusNotFound, "chunk not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "purge failed")
		slog.Error("purge error", "chunk", req.ChunkID, "error", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"purged":  req.ChunkID,
		"removed": removed,
	})
}

// GET /stats
func (h *handler) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.engine.Stats(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "stats failed")
		slog.Error("stats error", "error", err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// GET /health
func (h *handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
