package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fmuoria/interview-analyzer/internal/agent"
	"github.com/fmuoria/interview-analyzer/internal/export"
	"github.com/fmuoria/interview-analyzer/internal/ingestion"
	"github.com/fmuoria/interview-analyzer/internal/logger"
	"github.com/fmuoria/interview-analyzer/internal/models"
	"github.com/fmuoria/interview-analyzer/internal/scoring"
)

const maxUploadBytes = 32 << 20 // 32 MB

// Server handles HTTP requests
type Server struct {
	agent *agent.InterviewAgent
	log   *logger.Logger
}

// NewServer creates a new API server
func NewServer(agent *agent.InterviewAgent, log *logger.Logger) *Server {
	return &Server{
		agent: agent,
		log:   log,
	}
}

// Router returns the HTTP router
func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /analyze", s.handleAnalyze)
	mux.HandleFunc("POST /analyze/batch", s.handleBatch)
	mux.HandleFunc("POST /ingest", s.handleIngest)
	mux.HandleFunc("GET /report", s.handleReport)
	mux.HandleFunc("GET /reports", s.handleReports)
	mux.HandleFunc("GET /domains", s.handleDomains)
	mux.HandleFunc("GET /export", s.handleExport)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /{$}", s.handleRoot)

	return s.loggingMiddleware(mux)
}

// handleRoot provides API information
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, r, http.StatusOK, map[string]any{
		"service": "MentorFlow Interview Analyzer",
		"version": "1.0.0",
		"endpoints": map[string]string{
			"POST /analyze":       "Score one transcript (JSON body, or multipart with a .txt/.docx/.wav file)",
			"POST /analyze/batch": "Score many transcripts concurrently",
			"POST /ingest":        "Upload transcript/audio files or fetch them from Gmail",
			"GET /report":         "Get a report by id, or the latest one",
			"GET /reports":        "List all reports",
			"GET /domains":        "Industry, subdomain, candidate and round options",
			"GET /export":         "Download all reports as an Excel workbook",
			"GET /health":         "Health check",
		},
	})
}

// handleHealth provides a health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, r, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}

// handleAnalyze scores a single transcript
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	var (
		report *models.Report
		err    error
	)

	if mediaType == "multipart/form-data" {
		report, err = s.analyzeMultipart(r)
	} else {
		var req models.AnalyzeRequest
		if decodeErr := json.NewDecoder(r.Body).Decode(&req); decodeErr != nil {
			s.respondError(w, r, http.StatusBadRequest, fmt.Sprintf("Invalid JSON body: %v", decodeErr))
			return
		}
		report, err = s.agent.Analyze(r.Context(), req)
	}

	if err != nil {
		s.respondError(w, r, statusFor(err), err.Error())
		return
	}

	s.respondJSON(w, r, http.StatusOK, report)
}

// analyzeMultipart handles an upload with form fields describing the domain
func (s *Server) analyzeMultipart(r *http.Request) (*models.Report, error) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return nil, badRequest(fmt.Errorf("failed to parse form: %w", err))
	}

	req := requestFromForm(r)

	file, header, err := r.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) {
		return s.agent.Analyze(r.Context(), req)
	}
	if err != nil {
		return nil, badRequest(fmt.Errorf("failed to read uploaded file: %w", err))
	}
	defer file.Close()

	if !ingestion.IsTranscriptFile(header.Filename) && !ingestion.IsAudioFile(header.Filename) {
		return nil, fmt.Errorf("%w: %s", ingestion.ErrUnsupportedFile, header.Filename)
	}

	scratch, err := s.scratch()
	if err != nil {
		return nil, err
	}
	defer s.removeScratch(scratch)

	path, err := scratch.SaveUploadedFile(header.Filename, file)
	if err != nil {
		return nil, err
	}
	s.log.WithField("file", header.Filename).Debug("saved upload")

	return s.agent.AnalyzeFile(r.Context(), path, req)
}

// scratch gives a request its own upload directory so concurrent requests
// never see or delete each other's files
func (s *Server) scratch() (*ingestion.FileHandler, error) {
	return s.agent.FileHandler.Scratch("upload")
}

func (s *Server) removeScratch(fh *ingestion.FileHandler) {
	if err := fh.Remove(); err != nil {
		s.log.WithError(err).Warn("failed to remove request uploads")
	}
}

type batchRequest struct {
	Requests []models.AnalyzeRequest `json:"requests"`
}

type batchItem struct {
	Source string         `json:"source"`
	Report *models.Report `json:"report,omitempty"`
	Error  string         `json:"error,omitempty"`
}

// handleBatch scores several pasted transcripts concurrently
func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, r, http.StatusBadRequest, fmt.Sprintf("Invalid JSON body: %v", err))
		return
	}
	if len(req.Requests) == 0 {
		s.respondError(w, r, http.StatusBadRequest, "requests must not be empty")
		return
	}

	s.respondJSON(w, r, http.StatusOK, batchItems(s.agent.BatchAnalyze(r.Context(), req.Requests)))
}

// handleIngest processes transcript and audio files from an upload or Gmail
func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.respondError(w, r, http.StatusBadRequest, fmt.Sprintf("Failed to parse form: %v", err))
		return
	}

	base := requestFromForm(r)

	var (
		results []agent.BatchResult
		err     error
	)

	switch method := r.FormValue("method"); method {
	case "upload":
		results, err = s.ingestUpload(r, base)
	case "gmail":
		subject := r.FormValue("gmail_subject")
		if subject == "" {
			s.respondError(w, r, http.StatusBadRequest, "gmail_subject is required for gmail method")
			return
		}
		results, err = s.agent.AnalyzeFromGmail(r.Context(), subject, base, os.Stdout, os.Stdin)
	default:
		s.respondError(w, r, http.StatusBadRequest, "method must be 'upload' or 'gmail'")
		return
	}

	if err != nil {
		s.respondError(w, r, statusFor(err), err.Error())
		return
	}

	s.respondJSON(w, r, http.StatusOK, batchItems(results))
}

// ingestUpload saves the uploaded files and analyzes them as one batch
func (s *Server) ingestUpload(r *http.Request, base models.AnalyzeRequest) ([]agent.BatchResult, error) {
	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		return nil, badRequest(errors.New("no files uploaded"))
	}

	scratch, err := s.scratch()
	if err != nil {
		return nil, err
	}
	defer s.removeScratch(scratch)

	var paths []string
	for _, fileHeader := range files {
		if !ingestion.IsTranscriptFile(fileHeader.Filename) && !ingestion.IsAudioFile(fileHeader.Filename) {
			s.log.WithField("file", fileHeader.Filename).Warn("skipping unsupported file type")
			continue
		}

		file, err := fileHeader.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open uploaded file: %w", err)
		}
		path, err := scratch.SaveUploadedFile(fileHeader.Filename, file)
		file.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to save file %s: %w", fileHeader.Filename, err)
		}
		paths = append(paths, path)
	}

	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: no transcript or audio files uploaded", ingestion.ErrUnsupportedFile)
	}

	return s.agent.AnalyzeFiles(r.Context(), paths, base), nil
}

// handleReport returns one report, the latest when no id is given
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	report, err := s.agent.GetReport(r.URL.Query().Get("id"))
	if err != nil {
		s.respondError(w, r, statusFor(err), err.Error())
		return
	}

	s.respondJSON(w, r, http.StatusOK, report)
}

func (s *Server) handleReports(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, r, http.StatusOK, s.agent.GetReports())
}

func (s *Server) handleDomains(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, r, http.StatusOK, s.agent.Domains())
}

// handleExport streams all reports as an xlsx workbook
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	reports := s.agent.GetReports()
	if len(reports) == 0 {
		s.respondError(w, r, http.StatusNotFound, agent.ErrNoReports.Error())
		return
	}

	filename := fmt.Sprintf("Interview_Analysis_%s.xlsx", time.Now().Format("2006-01-02_150405"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if err := export.WriteExcel(reports, w); err != nil {
		s.log.WithRequest(r).WithError(err).Error("failed to write workbook")
	}
}

// requestFromForm reads the domain selection from form values
func requestFromForm(r *http.Request) models.AnalyzeRequest {
	return models.AnalyzeRequest{
		Transcript:    r.FormValue("transcript"),
		Industry:      r.FormValue("industry"),
		Subdomain:     r.FormValue("subdomain"),
		CandidateType: r.FormValue("candidate_type"),
		RoundType:     r.FormValue("round_type"),
		Source:        r.FormValue("source"),
	}
}

func batchItems(results []agent.BatchResult) []batchItem {
	items := make([]batchItem, len(results))
	for i, res := range results {
		items[i] = batchItem{Source: res.Source, Report: res.Report}
		if res.Err != nil {
			items[i].Error = res.Err.Error()
		}
	}
	return items
}

type requestError struct{ err error }

func (e requestError) Error() string { return e.err.Error() }
func (e requestError) Unwrap() error { return e.err }

func badRequest(err error) error {
	return requestError{err: err}
}

// statusFor maps domain errors to HTTP status codes
func statusFor(err error) int {
	var reqErr requestError
	switch {
	case errors.As(err, &reqErr), errors.Is(err, ingestion.ErrUnsupportedFile):
		return http.StatusBadRequest
	case errors.Is(err, scoring.ErrInsufficientTranscript),
		errors.Is(err, scoring.ErrNoScoreCards),
		errors.Is(err, ingestion.ErrAudioTooLong):
		return http.StatusUnprocessableEntity
	case errors.Is(err, agent.ErrNoReports), errors.Is(err, agent.ErrReportNotFound):
		return http.StatusNotFound
	case errors.Is(err, agent.ErrNoTranscriber):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondJSON sends a JSON response
func (s *Server) respondJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.WithRequest(r).WithError(err).Error("failed to encode JSON response")
	}
}

// respondError sends an error response
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, status int, message string) {
	s.respondJSON(w, r, status, map[string]string{
		"error": message,
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(status int) {
	sr.status = status
	sr.ResponseWriter.WriteHeader(status)
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		entry := s.log.WithRequest(r).WithFields(logrus.Fields{
			"status":   rec.status,
			"duration": time.Since(start).String(),
		})
		if rec.status >= http.StatusInternalServerError {
			entry.Error("request failed")
			return
		}
		entry.Info("request handled")
	})
}

