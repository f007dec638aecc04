package tmdb

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	apiURL    = "https://api.themoviedb.org/3"
	imageURL  = "https://image.tmdb.org/t/p"
	userAgent = "spigell/movie-recommender (spigelly@gmail.com)"

	defaultTimeout           = 10 * time.Second
	defaultRequestsPerSecond = 20
	defaultFailureThreshold  = 5
	defaultOpenTimeout       = 30 * time.Second
)

// ErrNotFound is returned when TMDB has no resource for the request.
var ErrNotFound = errors.New("tmdb: not found")

// StatusError is a non 2xx answer of the API. A 404 unwraps to ErrNotFound.
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("tmdb: bad status: %s", e.Status)
}

func (e *StatusError) Unwrap() error {
	if e.Code == http.StatusNotFound {
		return ErrNotFound
	}
	return nil
}

// Config tunes the client. Zero values fall back to defaults.
type Config struct {
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerSecond float64       `mapstructure:"requests-per-second"`
	Burst             int           `mapstructure:"burst"`
	FailureThreshold  uint32        `mapstructure:"failure-threshold"`
	OpenTimeout       time.Duration `mapstructure:"open-timeout"`
}

type Client struct {
	apiKey     string
	logger     *zap.Logger
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker[[]byte]
	HTTPClient *http.Client
	UserAgent  string
	APIURL     string
}

func New(logger *zap.Logger, apiKey string, cfg Config) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = defaultRequestsPerSecond
	}
	if cfg.Burst <= 0 {
		cfg.Burst = int(cfg.RequestsPerSecond)
		if cfg.Burst < 1 {
			cfg.Burst = 1
		}
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = defaultFailureThreshold
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = defaultOpenTimeout
	}

	return &Client{
		apiKey:  apiKey,
		logger:  logger,
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
		breaker: newBreaker(logger, cfg),
		APIURL:  apiURL,
		HTTPClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		UserAgent: userAgent,
	}
}

func newBreaker(logger *zap.Logger, cfg Config) *gobreaker.CircuitBreaker[[]byte] {
	return gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:    "tmdb",
		Timeout: cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		IsSuccessful: healthy,
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
}

// healthy reports whether err leaves the API in good standing. Client errors and requests
// cancelled by the caller say nothing about the health of the API.
func healthy(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return true
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Code < http.StatusInternalServerError
	}
	return false
}

// BreakerState reports the state of the circuit breaker for diagnostics.
func (c *Client) BreakerState() string {
	return c.breaker.State().String()
}
