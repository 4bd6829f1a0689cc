package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/MeKo-Tech/docoutline/internal/layout"
	"github.com/MeKo-Tech/docoutline/internal/outline"
	"github.com/MeKo-Tech/docoutline/internal/output"
)

// Extraction sources used as metric labels.
const (
	sourceHTTP      = "http"
	sourceWebSocket = "websocket"
)

var errUnsupportedUpload = errors.New("unsupported document type")

// healthHandler returns server health status.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := HealthResponse{
		Status:  "healthy",
		Version: s.version,
		Time:    time.Now().UTC().Format(time.RFC3339),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		slog.Error("Failed to encode health response", "error", err)
	}
}

// outlineHandler extracts the outline of an uploaded document. The document
// is sent as the multipart field "file"; "format" selects the encoding.
func (s *Server) outlineHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit := s.maxUploadMB * 1024 * 1024
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	if err := r.ParseMultipartForm(limit); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || strings.Contains(strings.ToLower(err.Error()), "body too large") {
			s.writeErrorResponse(w, r, "File too large", http.StatusRequestEntityTooLarge)
		} else {
			s.writeErrorResponse(w, r, "Failed to parse form data", http.StatusBadRequest)
		}
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeErrorResponse(w, r, "No document file provided", http.StatusBadRequest)
		return
	}
	defer func() { _ = file.Close() }()

	if header.Size > limit {
		s.writeErrorResponse(w, r, "File too large", http.StatusRequestEntityTooLarge)
		return
	}

	formatName := r.FormValue("format")
	if formatName == "" {
		formatName = r.URL.Query().Get("format")
	}
	format, err := output.ParseFormat(formatName)
	if err != nil {
		s.writeErrorResponse(w, r, err.Error(), http.StatusBadRequest)
		return
	}

	uploadSizeBytes.Observe(float64(header.Size))

	st, err := s.extractUpload(r.Context(), header.Filename, file, sourceHTTP)
	switch {
	case errors.Is(err, errUnsupportedUpload):
		s.writeErrorResponse(w, r, err.Error(), http.StatusUnsupportedMediaType)
		return
	case err != nil:
		s.writeErrorResponse(w, r, err.Error(), http.StatusInternalServerError)
		return
	}

	status := http.StatusOK
	if outline.IsErrorStructure(st) {
		status = http.StatusUnprocessableEntity
	}

	w.Header().Set("Content-Type", contentType(format))
	w.WriteHeader(status)
	if err := output.Encode(w, st, format); err != nil {
		slog.Error("Failed to encode outline response", "error", err, "request_id", RequestIDFromContext(r.Context()))
	}
}

// extractUpload spools an uploaded document to a temporary file and runs the
// engine on it. Read failures of the document itself come back as an error
// record naming filename; only spooling problems are returned as errors.
func (s *Server) extractUpload(ctx context.Context, filename string, body io.Reader, source string) (outline.Structure, error) {
	name := filepath.Base(filename)
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		ext = ".pdf"
		if name == "." || name == string(filepath.Separator) {
			name = "upload.pdf"
		}
	}
	if !layout.IsSupported("x" + ext) {
		outlineRequestsTotal.WithLabelValues(source, "error").Inc()
		return outline.Structure{}, fmt.Errorf("%w: %s", errUnsupportedUpload, ext)
	}

	tmp, err := os.CreateTemp("", "upload-*"+ext)
	if err != nil {
		return outline.Structure{}, fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() { _ = os.Remove(tmpPath) }()

	if _, err := io.Copy(tmp, body); err != nil {
		_ = tmp.Close()
		return outline.Structure{}, fmt.Errorf("failed to store upload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return outline.Structure{}, fmt.Errorf("failed to store upload: %w", err)
	}

	if s.timeoutSec > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(s.timeoutSec)*time.Second)
		defer cancel()
	}

	start := time.Now()
	st := s.engine.ExtractFile(ctx, s.opener, tmpPath)
	outlineProcessingDuration.WithLabelValues(source).Observe(time.Since(start).Seconds())

	switch {
	case outline.IsErrorStructure(st):
		st.Title = strings.ReplaceAll(st.Title, tmpPath, name)
		outlineRequestsTotal.WithLabelValues(source, "error").Inc()
	case st.Title == outline.EmptyTitle && len(st.Outline) == 0:
		outlineRequestsTotal.WithLabelValues(source, "empty").Inc()
	default:
		outlineRequestsTotal.WithLabelValues(source, "success").Inc()
	}
	outlineHeadings.WithLabelValues(source).Observe(float64(len(st.Outline)))

	slog.Info("Outline extracted",
		"source", source,
		"file", name,
		"headings", len(st.Outline),
		"duration", time.Since(start))
	return st, nil
}

// contentType maps an output format to its response media type.
func contentType(f output.Format) string {
	switch f {
	case output.FormatYAML:
		return "application/yaml; charset=utf-8"
	case output.FormatText:
		return "text/plain; charset=utf-8"
	case output.FormatHTML:
		return "text/html; charset=utf-8"
	default:
		return "application/json"
	}
}

// writeErrorResponse writes a JSON error response.
func (s *Server) writeErrorResponse(w http.ResponseWriter, r *http.Request, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := ErrorResponse{
		Success:   false,
		Error:     message,
		RequestID: RequestIDFromContext(r.Context()),
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		slog.Error("Failed to write error response", "error", err)
	}
}
