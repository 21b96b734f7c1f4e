// Package simclient is a typed HTTP client for the simulation service.
package simclient

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"
	"github.com/klauspost/compress/zstd"
	"github.com/rs/zerolog/log"
	"github.com/sethvargo/go-envconfig"

	"github.com/tensorplex-labs/reviewsim/pkg/simapi"
)

const (
	DefaultBaseURL = "http://127.0.0.1:8080"
	DefaultTimeout = 30 * time.Second
)

// Config configures the client.
type Config struct {
	BaseURL         string        `env:"SIMULATOR_URL, default=http://127.0.0.1:8080"`
	Timeout         time.Duration `env:"CLIENT_TIMEOUT, default=30s"`
	RetryCount      int           `env:"CLIENT_RETRIES, default=2"`
	ZstdCompression bool          `env:"CLIENT_ZSTD, default=true"`
}

// APIError is a non-2xx response or a response carrying an error message.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("simulator returned %d: %s", e.StatusCode, e.Message)
}

type Client struct {
	config  Config
	resty   *resty.Client
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// NewFromEnv builds a client from SIMULATOR_URL, CLIENT_TIMEOUT,
// CLIENT_RETRIES and CLIENT_ZSTD.
func NewFromEnv(ctx context.Context) (*Client, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process client environment: %w", err)
	}
	return New(cfg)
}

func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	restyClient := resty.New().
		SetBaseURL(strings.TrimSuffix(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.RetryCount).
		SetRetryWaitTime(200 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		SetJSONMarshaler(sonic.Marshal).
		SetJSONUnmarshaler(sonic.Unmarshal).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() >= http.StatusInternalServerError
		})

	c := &Client{
		config: cfg,
		resty:  restyClient,
	}

	if cfg.ZstdCompression {
		restyClient.SetHeader("Accept-Encoding", "zstd")

		encoder, err := zstd.NewWriter(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
		}
		decoder, err := zstd.NewReader(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
		}
		c.encoder = encoder
		c.decoder = decoder
	}

	log.Debug().
		Str("base_url", cfg.BaseURL).
		Dur("timeout", cfg.Timeout).
		Bool("zstd", cfg.ZstdCompression).
		Msg("simulator client ready")
	return c, nil
}

// Close cleans up client resources
func (c *Client) Close() {
	if c.encoder != nil {
		c.encoder.Close()
	}
	if c.decoder != nil {
		c.decoder.Close()
	}
}

func (c *Client) Health(ctx context.Context) (simapi.HealthResponse, error) {
	return call[simapi.HealthResponse](ctx, c, http.MethodGet, simapi.HealthPath, nil)
}

func (c *Client) Presets(ctx context.Context) ([]simapi.Preset, error) {
	return call[[]simapi.Preset](ctx, c, http.MethodGet, simapi.PresetsPath, nil)
}

func (c *Client) WeightSystems(ctx context.Context) ([]simapi.WeightSystem, error) {
	return call[[]simapi.WeightSystem](ctx, c, http.MethodGet, simapi.WeightSystemsPath, nil)
}

// Simulate runs a simulation remotely. A halted run is a successful call;
// check the response Status.
func (c *Client) Simulate(ctx context.Context, req simapi.SimulateRequest) (*simapi.SimulateResponse, error) {
	resp, err := call[simapi.SimulateResponse](ctx, c, http.MethodPost, simapi.SimulatePath, req)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Score(ctx context.Context, req simapi.ScoreRequest) (*simapi.ScoreResponse, error) {
	resp, err := call[simapi.ScoreResponse](ctx, c, http.MethodPost, simapi.ScorePath, req)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func call[T any](ctx context.Context, c *Client, method, path string, body any) (T, error) {
	var zero T

	req := c.resty.R().SetContext(ctx)
	if body != nil {
		data, err := sonic.Marshal(body)
		if err != nil {
			return zero, fmt.Errorf("failed to marshal request: %w", err)
		}
		if c.encoder != nil {
			data = c.encoder.EncodeAll(data, nil)
			req.SetHeader("Content-Encoding", "zstd")
		}
		req.SetHeader("Content-Type", "application/json").SetBody(data)
	}

	log.Trace().Str("method", method).Str("path", path).Msg("simulator request")

	resp, err := req.Execute(method, path)
	if err != nil {
		return zero, fmt.Errorf("failed to make request: %w", err)
	}

	raw := resp.Body()
	if c.decoder != nil && strings.EqualFold(resp.Header().Get("Content-Encoding"), "zstd") {
		raw, err = c.decoder.DecodeAll(raw, nil)
		if err != nil {
			return zero, fmt.Errorf("failed to decompress response: %w", err)
		}
	}

	var out simapi.StdResponse[T]
	if err := sonic.Unmarshal(raw, &out); err != nil {
		if resp.IsError() {
			return zero, &APIError{StatusCode: resp.StatusCode(), Message: strings.TrimSpace(string(raw))}
		}
		return zero, fmt.Errorf("failed to unmarshal StdResponse: %w", err)
	}
	if out.Error != nil {
		return zero, &APIError{StatusCode: resp.StatusCode(), Message: *out.Error}
	}
	if resp.IsError() {
		return zero, &APIError{StatusCode: resp.StatusCode(), Message: resp.Status()}
	}
	return out.Body, nil
}
