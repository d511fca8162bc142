package analysis

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Nurcan-altg/noteguard-app/internal/cli/connection"
	"github.com/Nurcan-altg/noteguard-app/internal/core/domain"
	"github.com/Nurcan-altg/noteguard-app/internal/telemetry/logger"
	"github.com/Nurcan-altg/noteguard-app/internal/telemetry/metric"
)

// Endpoint labels for the submission counter.
const (
	EndpointAnalyze = "analyze"
	EndpointDemo    = "demo"
	EndpointFile    = "file"
)

// Transport is the subset of the HTTP client the service needs.
type Transport interface {
	Get(ctx context.Context, path string, query url.Values) (*http.Response, error)
	Post(ctx context.Context, path string, body any) (*http.Response, error)
	Delete(ctx context.Context, path string) (*http.Response, error)
	PostMultipart(ctx context.Context, path string, query url.Values, field, filename string, content io.Reader) (*http.Response, error)
}

// Health is the body of GET /health.
type Health struct {
	Status  string `json:"status" yaml:"status"`
	Service string `json:"service" yaml:"service"`
}

// Service submits texts and manages stored analyses.
type Service struct {
	api     Transport
	log     logger.Logger
	metrics *metric.Registry
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the diagnostics logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) { s.log = l }
}

// WithMetrics counts submissions in reg.
func WithMetrics(reg *metric.Registry) Option {
	return func(s *Service) { s.metrics = reg }
}

// New returns a Service using api.
func New(api Transport, opts ...Option) *Service {
	s := &Service{api: api, log: logger.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Analyze submits text for the logged-in user; the result is stored in the
// user's history.
func (s *Service) Analyze(ctx context.Context, req domain.AnalyzeRequest) (*domain.AnalyzeResponse, error) {
	if err := domain.ValidateAnalyzeRequest(req); err != nil {
		return nil, err
	}
	resp, err := s.api.Post(ctx, "/analyze", req)
	return s.decode(EndpointAnalyze, resp, err)
}

// AnalyzeDemo submits text without credentials. Nothing is stored.
func (s *Service) AnalyzeDemo(ctx context.Context, req domain.AnalyzeRequest) (*domain.AnalyzeResponse, error) {
	if err := domain.ValidateAnalyzeRequest(req); err != nil {
		return nil, err
	}
	resp, err := s.api.Post(connection.Anonymous(ctx), "/analyze/demo", req)
	return s.decode(EndpointDemo, resp, err)
}

// AnalyzeFile uploads a .txt or .docx file. The reference topic travels as
// a query parameter.
func (s *Service) AnalyzeFile(ctx context.Context, path, topic string) (*domain.AnalyzeResponse, error) {
	if err := domain.ValidateUploadName(path); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()
	return s.AnalyzeUpload(ctx, filepath.Base(path), f, topic)
}

// AnalyzeUpload uploads content under name.
func (s *Service) AnalyzeUpload(ctx context.Context, name string, content io.Reader, topic string) (*domain.AnalyzeResponse, error) {
	if err := domain.ValidateUploadName(name); err != nil {
		return nil, err
	}
	var query url.Values
	if topic = strings.TrimSpace(topic); topic != "" {
		query = url.Values{"reference_topic": {topic}}
	}
	resp, err := s.api.PostMultipart(ctx, "/analyze/file", query, "file", name, content)
	return s.decode(EndpointFile, resp, err)
}

func (s *Service) decode(endpoint string, resp *http.Response, err error) (*domain.AnalyzeResponse, error) {
	if err == nil {
		var out domain.AnalyzeResponse
		if err = connection.ParseResponse(resp, &out); err == nil {
			s.count(endpoint, "ok")
			s.log.Debug("analysis completed",
				"endpoint", endpoint,
				"overall_score", out.Result.OverallScore,
				"processing_time", out.ProcessingTime,
			)
			return &out, nil
		}
	}
	s.count(endpoint, "error")
	s.log.Warn("analysis failed", "endpoint", endpoint, "error", err)
	return nil, err
}

func (s *Service) count(endpoint, outcome string) {
	if s.metrics != nil {
		s.metrics.AnalysesSubmitted.WithLabelValues(endpoint, outcome).Inc()
	}
}

// List returns one page of the user's analyses. Out-of-range options are
// clamped to what the backend accepts.
func (s *Service) List(ctx context.Context, opts domain.ListOptions) (*domain.AnalysisPage, error) {
	if opts.Limit <= 0 {
		opts.Limit = domain.DefaultListLimit
	}
	if opts.Limit > domain.MaxListLimit {
		opts.Limit = domain.MaxListLimit
	}
	if opts.Offset < 0 {
		opts.Offset = 0
	}
	if opts.OrderBy == "" {
		opts.OrderBy = domain.OrderByCreatedAt
	}

	query := url.Values{
		"limit":      {strconv.Itoa(opts.Limit)},
		"offset":     {strconv.Itoa(opts.Offset)},
		"order_by":   {opts.OrderBy},
		"order_desc": {strconv.FormatBool(opts.OrderDesc)},
	}
	resp, err := s.api.Get(ctx, "/analyses", query)
	if err != nil {
		return nil, err
	}
	var page domain.AnalysisPage
	if err := connection.ParseResponse(resp, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// Get returns one stored analysis.
func (s *Service) Get(ctx context.Context, id string) (*domain.Analysis, error) {
	if err := domain.ValidateAnalysisID(id); err != nil {
		return nil, err
	}
	resp, err := s.api.Get(ctx, "/analyses/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}
	var a domain.Analysis
	if err := connection.ParseResponse(resp, &a); err != nil {
		return nil, classify(err)
	}
	return &a, nil
}

// Delete removes one stored analysis.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := domain.ValidateAnalysisID(id); err != nil {
		return err
	}
	resp, err := s.api.Delete(ctx, "/analyses/"+url.PathEscape(id))
	if err != nil {
		return err
	}
	if err := connection.ParseResponse(resp, nil); err != nil {
		return classify(err)
	}
	s.log.Info("analysis deleted", "analysis_id", id)
	return nil
}

// classify turns the statuses with a specific meaning for a single
// analysis into domain errors. Others pass through.
func classify(err error) error {
	switch domain.StatusOf(err) {
	case http.StatusNotFound:
		return domain.ErrAnalysisNotFound.WithCause(err)
	case http.StatusForbidden:
		return domain.ErrAnalysisForbidden.WithCause(err)
	}
	return err
}

// Health checks the backend liveness endpoint.
func (s *Service) Health(ctx context.Context) (*Health, error) {
	resp, err := s.api.Get(connection.Anonymous(ctx), "/health", nil)
	if err != nil {
		return nil, err
	}
	var h Health
	if err := connection.ParseResponse(resp, &h); err != nil {
		return nil, err
	}
	return &h, nil
}
