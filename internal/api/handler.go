package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/eugenenazirov/propcompare/internal/compare"
	"github.com/eugenenazirov/propcompare/internal/parser"
	"github.com/eugenenazirov/propcompare/internal/report"
)

type contextKey string

const (
	requestIDContextKey contextKey = "requestID"

	defaultMaxRequestBytes = 4 << 20

	formatJSON = "json"
)

// ContentParser turns named in-memory content into a FlatMap.
type ContentParser interface {
	ParseContent(name, content string) parser.FlatMap
}

// Handler wires the parser and comparison options into HTTP handlers.
type Handler struct {
	parser   ContentParser
	opts     compare.Options
	maxBytes int64

	clock func() time.Time
}

// HandlerOption configures Handler behaviour.
type HandlerOption func(*Handler)

// WithClock overrides the time source, primarily for tests.
func WithClock(clock func() time.Time) HandlerOption {
	return func(h *Handler) {
		h.clock = clock
	}
}

// WithMaxRequestBytes caps the size of a compare request body.
func WithMaxRequestBytes(limit int64) HandlerOption {
	return func(h *Handler) {
		if limit > 0 {
			h.maxBytes = limit
		}
	}
}

// NewHandler constructs a Handler with the provided dependencies.
func NewHandler(p ContentParser, opts compare.Options, handlerOpts ...HandlerOption) *Handler {
	h := &Handler{
		parser:   p,
		opts:     opts,
		maxBytes: defaultMaxRequestBytes,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
	for _, opt := range handlerOpts {
		opt(h)
	}
	return h
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	_ = r
	resp := healthResponse{
		Status:    "ok",
		Timestamp: h.clock(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleFormats(w http.ResponseWriter, r *http.Request) {
	_ = r
	resp := formatsResponse{
		InputExtensions: parser.SupportedExtensions(),
		ReportFormats:   []string{formatJSON, report.FormatHTML.String(), report.FormatMarkdown.String()},
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleCompare(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)

	var req compareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "Request too large", fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit))
			return
		}
		writeError(w, http.StatusBadRequest, "Invalid request", "unable to parse JSON payload")
		return
	}

	if len(req.Files) < 2 {
		writeError(w, http.StatusBadRequest, "Invalid request", "at least two files are required for comparison")
		return
	}

	format := strings.ToLower(strings.TrimSpace(req.Format))
	var reportFormat report.Format
	if format != "" && format != formatJSON {
		parsed, ok := report.ParseFormat(format)
		if !ok || !parsed.IsDocument() {
			writeError(w, http.StatusBadRequest, "Unsupported format", fmt.Sprintf("format %q is not supported", req.Format),
				"Use json, html or markdown")
			return
		}
		reportFormat = parsed
	}

	names := make([]string, len(req.Files))
	maps := make([]parser.FlatMap, len(req.Files))
	for i, file := range req.Files {
		name := strings.TrimSpace(file.Name)
		if name == "" {
			writeError(w, http.StatusBadRequest, "Invalid request", fmt.Sprintf("files[%d].name is required", i))
			return
		}
		names[i] = name
		maps[i] = h.parser.ParseContent(name, file.Content)
	}

	start := time.Now()
	result := compare.Maps(maps, h.opts)
	elapsed := time.Since(start)

	switch {
	case format == "" || format == formatJSON:
		writeJSON(w, http.StatusOK, newCompareResponse(names, result, elapsed))
	case reportFormat == report.FormatHTML:
		doc, err := report.HTML(names, result)
		if err != nil {
			writeInternalError(w, err)
			return
		}
		writeDocument(w, "text/html; charset=utf-8", doc)
	default:
		doc, err := report.Markdown(names, result)
		if err != nil {
			writeInternalError(w, err)
			return
		}
		writeDocument(w, "text/markdown; charset=utf-8", doc)
	}
}

func newCompareResponse(names []string, result compare.Result, elapsed time.Duration) compareResponse {
	resp := compareResponse{
		MismatchCount:    result.MismatchCount,
		AllMatched:       result.AllMatched(),
		Files:            make([]fileResponse, len(names)),
		Rows:             make([]rowResponse, len(result.Rows)),
		MismatchedKeys:   result.MismatchedKeys(),
		Summary:          report.MismatchMessage(result),
		ComparisonTimeMs: elapsed.Milliseconds(),
	}
	for i, name := range names {
		resp.Files[i] = fileResponse{Index: i + 1, Name: name}
	}
	for i, row := range result.Rows {
		resp.Rows[i] = rowResponse{
			Key:     row.Key,
			Values:  row.Values,
			Present: row.Present,
			Matched: row.Matched,
		}
	}
	return resp
}

func requestIDFromContext(ctx context.Context) string {
	if v := ctx.Value(requestIDContextKey); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

type compareFile struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

type compareRequest struct {
	Files  []compareFile `json:"files"`
	Format string        `json:"format"`
}

type fileResponse struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
}

type rowResponse struct {
	Key     string   `json:"key"`
	Values  []string `json:"values"`
	Present []bool   `json:"present"`
	Matched bool     `json:"matched"`
}

type compareResponse struct {
	MismatchCount    int            `json:"mismatchCount"`
	AllMatched       bool           `json:"allMatched"`
	Files            []fileResponse `json:"files"`
	Rows             []rowResponse  `json:"rows"`
	MismatchedKeys   []string       `json:"mismatchedKeys"`
	Summary          string         `json:"summary"`
	ComparisonTimeMs int64          `json:"comparisonTimeMs"`
}

type formatsResponse struct {
	InputExtensions []string `json:"inputExtensions"`
	ReportFormats   []string `json:"reportFormats"`
}

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

type errorResponse struct {
	Error      string `json:"error"`
	Details    string `json:"details,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if status != 0 {
		w.WriteHeader(status)
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeDocument(w http.ResponseWriter, contentType, body string) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
}

func writeError(w http.ResponseWriter, status int, message, details string, suggestion ...string) {
	resp := errorResponse{
		Error:   message,
		Details: details,
	}
	if len(suggestion) > 0 {
		resp.Suggestion = suggestion[0]
	}
	writeJSON(w, status, resp)
}

func writeInternalError(w http.ResponseWriter, err error) {
	writeError(w, http.StatusInternalServerError, "Internal error", err.Error())
}
