package presets

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/wr-burden-mcp-server/internal/domain"
)

// maxCatalogBytes bounds the size of a fetched catalog document.
const maxCatalogBytes = 8 << 20

// NewSource picks a source for the configured location: http(s) URLs use
// an HTTPSource, anything else is read as a file. It returns nil when no
// location is configured.
func NewSource(cfg domain.PresetsConfig, logger *logrus.Logger) domain.PresetSource {
	loc := strings.TrimSpace(cfg.Source)
	switch {
	case loc == "":
		return nil
	case strings.HasPrefix(loc, "http://"), strings.HasPrefix(loc, "https://"):
		return NewHTTPSource(loc, cfg, logger)
	default:
		return NewFileSource(loc)
	}
}

// FileSource reads the catalog from the local filesystem.
type FileSource struct {
	path string
}

// NewFileSource creates a file-backed source.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Name returns the file path.
func (s *FileSource) Name() string { return s.path }

// Path returns the watched file path.
func (s *FileSource) Path() string { return s.path }

// Fetch reads the whole file.
func (s *FileSource) Fetch(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPresetSource, err)
	}
	return raw, nil
}

// HTTPSource downloads the catalog over HTTP. Requests are paced by a rate
// limiter and guarded by a circuit breaker so a failing catalog server is
// not hammered on every refresh.
type HTTPSource struct {
	url            string
	httpClient     *http.Client
	rateLimit      *rate.Limiter
	circuitBreaker *gobreaker.CircuitBreaker
	logger         *logrus.Logger
}

// NewHTTPSource creates an HTTP source for url.
func NewHTTPSource(url string, cfg domain.PresetsConfig, logger *logrus.Logger) *HTTPSource {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.RateLimit == 0 {
		cfg.RateLimit = 5
	}
	if cfg.Breaker.ConsecutiveFailures == 0 {
		cfg.Breaker.ConsecutiveFailures = 5
	}

	cbSettings := gobreaker.Settings{
		Name:        "PresetCatalog",
		MaxRequests: cfg.Breaker.MaxRequests,
		Interval:    cfg.Breaker.Interval,
		Timeout:     cfg.Breaker.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.Breaker.ConsecutiveFailures
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"circuit_breaker": name,
				"from_state":      from.String(),
				"to_state":        to.String(),
			}).Warn("Circuit breaker state changed")
		},
	}

	return &HTTPSource{
		url: url,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		rateLimit:      rate.NewLimiter(rate.Limit(cfg.RateLimit), 1),
		circuitBreaker: gobreaker.NewCircuitBreaker(cbSettings),
		logger:         logger,
	}
}

// Name returns the catalog URL.
func (s *HTTPSource) Name() string { return s.url }

// State reports the circuit breaker state.
func (s *HTTPSource) State() gobreaker.State { return s.circuitBreaker.State() }

// Fetch downloads the catalog document.
func (s *HTTPSource) Fetch(ctx context.Context) ([]byte, error) {
	if err := s.rateLimit.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait failed: %w", err)
	}

	result, err := s.circuitBreaker.Execute(func() (interface{}, error) {
		return s.download(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPresetSource, err)
	}
	return result.([]byte), nil
}

func (s *HTTPSource) download(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, s.url)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxCatalogBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return body, nil
}
