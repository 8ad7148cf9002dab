package mlclient

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/bbabur/immune-risk-next-sub001/internal/model"
	"github.com/bbabur/immune-risk-next-sub001/pkg/metrics"
)

// ErrUnavailable marks predictor failures (network error, non-2xx, timeout) so
// callers can fall back to rule-based scoring instead of failing the request.
var ErrUnavailable = errors.New("ml service unavailable")

// Client talks to the external risk predictor.
type Client interface {
	Health(ctx context.Context) error
	Predict(ctx context.Context, features *model.MLFeatures) (*model.MLPrediction, error)
}

type Config struct {
	BaseURL string
	Timeout time.Duration
}

type client struct {
	http    *resty.Client
	logger  *zerolog.Logger
	metrics *metrics.Metrics
}

func New(cfg Config, logger *zerolog.Logger, m *metrics.Metrics) Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}

	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &client{
		http:    httpClient,
		logger:  logger,
		metrics: m,
	}
}

func (c *client) Health(ctx context.Context) error {
	resp, err := c.http.R().SetContext(ctx).Get("/health")
	if err != nil {
		c.observe("health", "error")
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if resp.IsError() {
		c.observe("health", "error")
		return fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode())
	}
	c.observe("health", "ok")
	return nil
}

func (c *client) Predict(ctx context.Context, features *model.MLFeatures) (*model.MLPrediction, error) {
	start := time.Now()
	var prediction model.MLPrediction

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(features).
		SetResult(&prediction).
		Post("/predict")

	if c.metrics != nil {
		c.metrics.MLLatency.Observe(time.Since(start).Seconds())
	}

	if err != nil {
		c.observe("predict", "error")
		c.logger.Error().Err(err).Msg("ML predict call failed")
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if resp.IsError() {
		c.observe("predict", "error")
		c.logger.Error().
			Int("status_code", resp.StatusCode()).
			Str("body", resp.String()).
			Msg("ML predict returned error status")
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode())
	}

	c.observe("predict", "ok")
	c.logger.Debug().
		Int("prediction", prediction.Prediction).
		Str("risk_level", prediction.RiskLevel).
		Msg("ML prediction received")

	return &prediction, nil
}

func (c *client) observe(endpoint, status string) {
	if c.metrics == nil {
		return
	}
	c.metrics.MLRequests.WithLabelValues(endpoint, status).Inc()
	if status == "error" {
		c.metrics.MLFailures.Inc()
	}
}
