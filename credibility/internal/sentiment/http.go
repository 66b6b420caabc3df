package sentiment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jonesrussell/north-cloud/infrastructure/circuitbreaker"
	infraerrors "github.com/jonesrussell/north-cloud/infrastructure/errors"
	infrahttp "github.com/jonesrussell/north-cloud/infrastructure/http"
	infralogger "github.com/jonesrussell/north-cloud/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/infrastructure/retry"
)

// HTTPConfig configures the remote oracle client.
type HTTPConfig struct {
	URL              string
	Timeout          time.Duration
	MaxRetries       int
	FailureThreshold int
	ResetTimeout     time.Duration
}

type polarityRequest struct {
	Tokens []string `json:"tokens"`
}

type polarityResponse struct {
	Score *float64 `json:"score"`
}

// HTTPOracle posts tokens to a remote scoring service. Calls are retried on
// transient failures and guarded by a circuit breaker.
type HTTPOracle struct {
	url     string
	client  *http.Client
	retry   retry.Config
	breaker *circuitbreaker.Breaker
	logger  infralogger.Logger
}

// NewHTTPOracle creates an HTTPOracle.
func NewHTTPOracle(cfg HTTPConfig, logger infralogger.Logger) *HTTPOracle {
	o := &HTTPOracle{
		url:    cfg.URL,
		client: infrahttp.NewClient(infrahttp.ClientConfig{Timeout: cfg.Timeout}),
		retry: retry.Config{
			MaxAttempts: cfg.MaxRetries + 1,
			IsRetryable: func(err error) bool {
				return infraerrors.IsTemporaryHTTP(err) || retry.IsTransient(err)
			},
		},
		logger: logger,
	}
	o.breaker = circuitbreaker.New(circuitbreaker.Config{
		FailureThreshold: cfg.FailureThreshold,
		Timeout:          cfg.ResetTimeout,
		OnStateChange: func(from, to circuitbreaker.State) {
			logger.Warn("Sentiment oracle circuit changed state",
				infralogger.String("from", from.String()),
				infralogger.String("to", to.String()),
			)
		},
	})
	return o
}

// Tokenize implements credibility.Oracle.
func (o *HTTPOracle) Tokenize(text string) []string {
	return Tokenize(text)
}

// Polarity implements credibility.Oracle.
func (o *HTTPOracle) Polarity(ctx context.Context, tokens []string) (float64, error) {
	body, err := json.Marshal(polarityRequest{Tokens: tokens})
	if err != nil {
		return 0, fmt.Errorf("encode request: %w", err)
	}

	var score float64
	err = o.breaker.Execute(ctx, func(ctx context.Context) error {
		return retry.Do(ctx, o.retry, func(ctx context.Context) error {
			s, callErr := o.call(ctx, body)
			if callErr != nil {
				return callErr
			}
			score = s
			return nil
		})
	})
	if err != nil {
		return 0, fmt.Errorf("sentiment oracle: %w", err)
	}
	return score, nil
}

func (o *HTTPOracle) call(ctx context.Context, body []byte) (float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.url, bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer func() { _ = resp.Body.Close() }()

	if herr := infraerrors.ParseHTTPError(resp); herr != nil {
		return 0, herr
	}

	var out polarityResponse
	if err = json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, fmt.Errorf("decode response: %w", err)
	}
	if out.Score == nil {
		return 0, errors.New("decode response: missing score")
	}
	return *out.Score, nil
}
