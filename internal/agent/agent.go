package agent

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sourcegraph/conc/pool"

	"github.com/fmuoria/interview-analyzer/internal/config"
	"github.com/fmuoria/interview-analyzer/internal/ingestion"
	"github.com/fmuoria/interview-analyzer/internal/keywords"
	"github.com/fmuoria/interview-analyzer/internal/llm"
	"github.com/fmuoria/interview-analyzer/internal/models"
	"github.com/fmuoria/interview-analyzer/internal/scoring"
	"github.com/fmuoria/interview-analyzer/internal/sentiment"
	"github.com/fmuoria/interview-analyzer/internal/summary"
	"github.com/fmuoria/interview-analyzer/internal/transcription"
)

// Vertex AI quota handling
const (
	maxRetries   = 3
	retryBackoff = 10 * time.Second
)

var (
	// ErrNoReports is returned when no analysis has been run yet
	ErrNoReports = errors.New("no reports available, run an analysis first")
	// ErrReportNotFound is returned for an unknown report id
	ErrReportNotFound = errors.New("report not found")
	// ErrNoTranscriber is returned for audio input when no ASR service is configured
	ErrNoTranscriber = errors.New("no speech-to-text service configured")
)

// ProgressCallback is called to report progress during processing
type ProgressCallback func(current, total int, message string)

// Collaborators are the external engines the agent scores with
type Collaborators struct {
	Polarity    sentiment.PolarityAnalyzer
	General     sentiment.GeneralAnalyzer
	Summarizer  summary.Summarizer
	Transcriber transcription.Transcriber
}

// BatchResult is the outcome of one item of a batch
type BatchResult struct {
	Source string         `json:"source"`
	Report *models.Report `json:"report,omitempty"`
	Err    error          `json:"-"`
}

// InterviewAgent orchestrates transcript ingestion, scoring and report keeping
type InterviewAgent struct {
	FileHandler *ingestion.FileHandler
	cfg         *config.Config
	table       *keywords.Table
	scorer      *scoring.Scorer
	transcriber transcription.Transcriber
	closers     []io.Closer
	reports     []models.Report
	mu          sync.RWMutex
	progressCb  ProgressCallback
	retryPolicy func() backoff.BackOff
	log         *logrus.Entry
}

// New builds an agent and its collaborators from configuration. The Vertex AI
// client is only created on first use.
func New(cfg *config.Config, log *logrus.Entry) (*InterviewAgent, error) {
	table, err := keywords.Load(cfg.KeywordTablePath)
	if err != nil {
		return nil, err
	}

	var closers []io.Closer
	var gen *lazyGenerator
	if cfg.UsesVertex() {
		gen = &lazyGenerator{cfg: cfg}
		closers = append(closers, gen)
	}

	deps := Collaborators{}

	switch cfg.SentimentBackend {
	case config.SentimentVertex:
		analyzer := sentiment.NewLLMAnalyzer(gen)
		deps.Polarity, deps.General = analyzer, analyzer
	default:
		lex := sentiment.NewLexicon()
		deps.Polarity, deps.General = lex, lex
	}

	var summarizer summary.Summarizer = summary.NewExtractive()
	if cfg.SummarizerBackend == config.SummarizerVertex {
		summarizer = summary.NewLLMSummarizer(gen)
	}
	if cfg.RedisAddr != "" {
		cached := summary.NewCached(summarizer, summary.CacheConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			TTL:      cfg.SummaryCacheTTL(),
		}, log)
		closers = append(closers, cached)
		summarizer = cached
	}
	deps.Summarizer = summarizer

	if cfg.ASRURL != "" {
		deps.Transcriber = transcription.NewClient(cfg.ASRURL, log)
	}

	a := NewWithCollaborators(cfg, table, deps, log)
	a.closers = closers
	return a, nil
}

// NewWithCollaborators creates an agent over the given engines
func NewWithCollaborators(cfg *config.Config, table *keywords.Table, deps Collaborators, log *logrus.Entry) *InterviewAgent {
	next := deps.Transcriber
	if next == nil {
		next = unavailableTranscriber{}
	}

	return &InterviewAgent{
		FileHandler: ingestion.NewFileHandler(cfg.UploadsDir),
		cfg:         cfg,
		table:       table,
		scorer:      scoring.NewScorer(deps.Polarity, deps.General, deps.Summarizer, log),
		transcriber: transcription.NewGuarded(next, cfg.MaxAudioDuration()),
		retryPolicy: func() backoff.BackOff {
			return backoff.WithMaxRetries(backoff.NewConstantBackOff(retryBackoff), maxRetries)
		},
		log: log.WithField("component", "agent"),
	}
}

// Domains returns the keyword table and selection catalogue
func (a *InterviewAgent) Domains() *keywords.Table {
	return a.table
}

// SetProgressCallback sets the progress callback function
func (a *InterviewAgent) SetProgressCallback(cb ProgressCallback) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.progressCb = cb
}

// reportProgress calls the progress callback if set
func (a *InterviewAgent) reportProgress(current, total int, message string) {
	a.mu.RLock()
	cb := a.progressCb
	a.mu.RUnlock()

	if cb != nil {
		cb(current, total, message)
	}
}

// Analyze scores a transcript against the keywords of the requested domain
// and stores the resulting report
func (a *InterviewAgent) Analyze(ctx context.Context, req models.AnalyzeRequest) (*models.Report, error) {
	domainKeys := a.table.Lookup(req.Industry, req.Subdomain)

	var analysis *models.Analysis
	op := func() error {
		var err error
		analysis, err = a.scorer.Analyze(ctx, req.Transcript, domainKeys)
		if err != nil && !isRateLimitError(err) {
			return backoff.Permanent(err)
		}
		if err != nil {
			a.log.WithError(err).Warn("rate limited, retrying")
		}
		return err
	}

	if err := backoff.Retry(op, backoff.WithContext(a.retryPolicy(), ctx)); err != nil {
		return nil, err
	}

	source := req.Source
	if source == "" {
		source = "pasted"
	}

	report := models.Report{
		ID:            uuid.NewString(),
		Source:        source,
		Industry:      req.Industry,
		Subdomain:     req.Subdomain,
		CandidateType: req.CandidateType,
		RoundType:     req.RoundType,
		DomainKeys:    domainKeys,
		Cards:         analysis.Cards,
		Session:       analysis.Session,
		GeneratedAt:   time.Now().UTC(),
	}

	a.mu.Lock()
	a.reports = append(a.reports, report)
	a.mu.Unlock()

	a.log.WithFields(logrus.Fields{
		"report_id":      report.ID,
		"source":         source,
		"speakers":       len(report.Cards),
		"recommendation": report.Session.Recommendation,
	}).Info("transcript analyzed")

	return &report, nil
}

// AnalyzeFile reads a transcript or audio file and analyzes it. req.Transcript
// is replaced by the file content.
func (a *InterviewAgent) AnalyzeFile(ctx context.Context, path string, req models.AnalyzeRequest) (*models.Report, error) {
	var (
		text string
		err  error
	)

	switch {
	case ingestion.IsAudioFile(path):
		text, err = a.Transcribe(ctx, path)
	case ingestion.IsTranscriptFile(path):
		text, err = ingestion.ExtractText(path)
	default:
		err = fmt.Errorf("%w: %s", ingestion.ErrUnsupportedFile, filepath.Ext(path))
	}
	if err != nil {
		return nil, err
	}

	req.Transcript = text
	if req.Source == "" {
		req.Source = filepath.Base(path)
	}
	return a.Analyze(ctx, req)
}

// Transcribe converts a short recording to text. Recordings over the
// configured limit are rejected before the speech service is contacted.
func (a *InterviewAgent) Transcribe(ctx context.Context, path string) (string, error) {
	return a.transcriber.Transcribe(ctx, path)
}

// BatchAnalyze scores independent transcripts concurrently. Results keep the
// order of reqs; a failed item does not stop the others.
func (a *InterviewAgent) BatchAnalyze(ctx context.Context, reqs []models.AnalyzeRequest) []BatchResult {
	sources := make([]string, len(reqs))
	for i, req := range reqs {
		sources[i] = req.Source
	}

	return a.runBatch(ctx, sources, func(i int) (*models.Report, error) {
		return a.Analyze(ctx, reqs[i])
	})
}

// AnalyzeFiles scores transcript and audio files concurrently using base for
// the domain selection
func (a *InterviewAgent) AnalyzeFiles(ctx context.Context, paths []string, base models.AnalyzeRequest) []BatchResult {
	sources := make([]string, len(paths))
	for i, path := range paths {
		sources[i] = filepath.Base(path)
	}

	return a.runBatch(ctx, sources, func(i int) (*models.Report, error) {
		req := base
		req.Source = sources[i]
		return a.AnalyzeFile(ctx, paths[i], req)
	})
}

// AnalyzeUploads scores every transcript in the uploads directory
func (a *InterviewAgent) AnalyzeUploads(ctx context.Context, base models.AnalyzeRequest) ([]BatchResult, error) {
	a.reportProgress(0, 100, "Loading transcripts...")

	docs, err := a.FileHandler.LoadTranscripts()
	if err != nil {
		return nil, fmt.Errorf("failed to load transcripts: %w", err)
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("no transcripts found in uploads directory")
	}

	reqs := make([]models.AnalyzeRequest, len(docs))
	for i, doc := range docs {
		reqs[i] = base
		reqs[i].Transcript = doc.Content
		reqs[i].Source = filepath.Base(doc.Path)
	}

	return a.BatchAnalyze(ctx, reqs), nil
}

// AnalyzeFromGmail downloads transcript and audio attachments of messages
// matching subject and analyzes each of them
func (a *InterviewAgent) AnalyzeFromGmail(ctx context.Context, subject string, base models.AnalyzeRequest, prompt io.Writer, input io.Reader) ([]BatchResult, error) {
	a.reportProgress(0, 100, "Initializing Gmail handler...")

	scratch, err := a.FileHandler.Scratch("gmail")
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := scratch.Remove(); err != nil {
			a.log.WithError(err).Warn("failed to remove downloaded attachments")
		}
	}()

	gmailHandler, err := ingestion.NewGmailHandler(ctx, ingestion.GmailOptions{
		CredentialsPath: a.cfg.GmailCredentialsPath,
		TokenPath:       a.cfg.GmailTokenPath,
		UploadsDir:      scratch.Dir(),
		Prompt:          prompt,
		Input:           input,
	}, a.log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Gmail handler: %w", err)
	}

	a.reportProgress(10, 100, "Fetching emails from Gmail...")
	paths, err := gmailHandler.FetchAttachments(ctx, subject)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch Gmail attachments: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no transcript or audio attachments found")
	}

	return a.AnalyzeFiles(ctx, paths, base), nil
}

// runBatch fans the items named by sources out over a bounded goroutine pool
func (a *InterviewAgent) runBatch(ctx context.Context, sources []string, analyze func(i int) (*models.Report, error)) []BatchResult {
	n := len(sources)
	results := make([]BatchResult, n)
	if n == 0 {
		return results
	}

	var (
		done int
		mu   sync.Mutex
	)

	p := pool.New().WithMaxGoroutines(max(1, a.cfg.Workers))
	for i := 0; i < n; i++ {
		p.Go(func() {
			source := sources[i]
			if err := ctx.Err(); err != nil {
				results[i] = BatchResult{Source: source, Err: err}
				return
			}

			report, err := analyze(i)
			results[i] = BatchResult{Source: source, Report: report, Err: err}
			if err != nil {
				a.log.WithError(err).WithField("source", source).Warn("failed to analyze transcript")
			}

			mu.Lock()
			done++
			current := done
			mu.Unlock()
			a.reportProgress(100*current/n, 100, fmt.Sprintf("Analyzed %s (%d/%d)", source, current, n))
		})
	}
	p.Wait()

	return results
}

// GetReport returns the report with the given id, or the latest one when id is empty
func (a *InterviewAgent) GetReport(id string) (models.Report, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if len(a.reports) == 0 {
		return models.Report{}, ErrNoReports
	}

	if id == "" {
		return a.reports[len(a.reports)-1], nil
	}

	for _, r := range a.reports {
		if r.ID == id {
			return r, nil
		}
	}
	return models.Report{}, fmt.Errorf("%w: %s", ErrReportNotFound, id)
}

// GetReports returns all reports in creation order (thread-safe)
func (a *InterviewAgent) GetReports() []models.Report {
	a.mu.RLock()
	defer a.mu.RUnlock()

	reportsCopy := make([]models.Report, len(a.reports))
	copy(reportsCopy, a.reports)
	return reportsCopy
}

// Close cleans up resources
func (a *InterviewAgent) Close() error {
	var errs []error
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// isRateLimitError detects Vertex AI quota errors worth retrying
func isRateLimitError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "resourceexhausted") ||
		strings.Contains(msg, "resource exhausted") ||
		strings.Contains(msg, "429") ||
		strings.Contains(msg, "rate limit") ||
		strings.Contains(msg, "quota")
}

// lazyGenerator creates the Vertex AI client on first use and reuses it
type lazyGenerator struct {
	cfg    *config.Config
	mu     sync.Mutex
	client *llm.VertexAIClient
}

func (g *lazyGenerator) GenerateContent(ctx context.Context, prompt string) (string, error) {
	g.mu.Lock()
	if g.client == nil {
		client, err := llm.NewVertexAIClient(ctx, g.cfg.GoogleCloudProject, g.cfg.GoogleCloudLocation, g.cfg.GeminiModel)
		if err != nil {
			g.mu.Unlock()
			return "", fmt.Errorf("failed to initialize LLM client: %w", err)
		}
		g.client = client
	}
	client := g.client
	g.mu.Unlock()

	return client.GenerateContent(ctx, prompt)
}

func (g *lazyGenerator) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.client == nil {
		return nil
	}
	return g.client.Close()
}

type unavailableTranscriber struct{}

func (unavailableTranscriber) Transcribe(context.Context, string) (string, error) {
	return "", ErrNoTranscriber
}
