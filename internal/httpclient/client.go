// Package httpclient provides an instrumented HTTP client with OTEL tracing.
package httpclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptrace"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/httptrace/otelhttptrace"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	defaultDialKeepAlive   = 10 * time.Second
	defaultRequestTimeout  = 10 * time.Second
	defaultMaxConnsPerHost = 5
	defaultIdleConnTimeout = 2 * time.Minute

	metricRequestCounter = "http_client_requests_total"
)

// Client executes HTTP GET requests against a base URL.
type Client interface {
	// GetJSON performs a GET against baseURL+path and unmarshals the JSON
	// response body into result.
	GetJSON(ctx context.Context, path string, query map[string]string, result any) error
}

// Config holds client configuration.
type Config struct {
	BaseURL string
	Name    string // instrumentation name, e.g. "feed"
	Timeout time.Duration
}

// InstrumentedClient wraps http.Client with OTEL instrumentation.
type InstrumentedClient struct {
	client         *http.Client
	baseURL        string
	name           string
	requestCounter metric.Int64Counter
}

var _ Client = (*InstrumentedClient)(nil)

// New creates an instrumented HTTP client.
func New(cfg Config) (*InstrumentedClient, error) {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultRequestTimeout
	}

	transport := &http.Transport{
		DialContext: (&net.Dialer{
			KeepAlive: defaultDialKeepAlive,
		}).DialContext,
		MaxConnsPerHost: defaultMaxConnsPerHost,
		IdleConnTimeout: defaultIdleConnTimeout,
	}

	client := &http.Client{
		Timeout: timeout,
		Transport: otelhttp.NewTransport(transport,
			otelhttp.WithClientTrace(func(ctx context.Context) *httptrace.ClientTrace {
				return otelhttptrace.NewClientTrace(ctx)
			}),
		),
	}

	counter, err := otel.Meter(cfg.Name).Int64Counter(
		metricRequestCounter,
		metric.WithDescription("Total outbound HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("init request counter: %w", err)
	}

	return &InstrumentedClient{
		client:         client,
		baseURL:        cfg.BaseURL,
		name:           cfg.Name,
		requestCounter: counter,
	}, nil
}

// GetJSON performs an instrumented GET and decodes the JSON response.
func (c *InstrumentedClient) GetJSON(ctx context.Context, path string, query map[string]string, result any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}

	q := req.URL.Query()
	for k, v := range query {
		q.Set(k, v)
	}
	req.URL.RawQuery = q.Encode()

	resp, err := c.client.Do(req)
	c.requestCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("client", c.name),
		attribute.Bool("error", err != nil),
	))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("http %d from %s: %s", resp.StatusCode, req.URL.Path, truncate(body, 256))
	}
	if result == nil {
		return nil
	}
	return json.Unmarshal(body, result)
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
