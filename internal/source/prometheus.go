package source

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/prometheus/client_golang/api"
	v1 "github.com/prometheus/client_golang/api/prometheus/v1"
	"github.com/prometheus/common/model"

	"github.com/tonhe/promenade/internal/engine"
	"github.com/tonhe/promenade/internal/logging"
)

const (
	DefaultPrometheusURL = "http://localhost:9090"

	prometheusRetryMax     = 1
	prometheusRetryWaitMin = 100 * time.Millisecond
	prometheusRetryWaitMax = time.Second
)

// PrometheusOptions configures a Prometheus source.
type PrometheusOptions struct {
	// URL is the server's base address; the API path is added by the client.
	URL string
	// Timeout is sent to the server as the query timeout when the caller's
	// context carries no deadline.
	Timeout time.Duration
	Logger  *log.Logger
	// Client is the base retryable HTTP client. A default is built when nil.
	Client *retryablehttp.Client
}

// Prometheus runs instant queries against the Prometheus HTTP API.
type Prometheus struct {
	url     string
	timeout time.Duration
	api     v1.API
	log     *log.Logger
}

var _ engine.Source = (*Prometheus)(nil)

// NewPrometheus builds a Prometheus source.
func NewPrometheus(opts PrometheusOptions) (*Prometheus, error) {
	if opts.URL == "" {
		opts.URL = DefaultPrometheusURL
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	if opts.Client == nil {
		opts.Client = retryablehttp.NewClient()
		opts.Client.Logger = logging.Leveled{L: opts.Logger}
		opts.Client.CheckRetry = retryablehttp.ErrorPropagatedRetryPolicy
		opts.Client.RetryMax = prometheusRetryMax
		opts.Client.RetryWaitMin = prometheusRetryWaitMin
		opts.Client.RetryWaitMax = prometheusRetryWaitMax
	}

	client, err := api.NewClient(api.Config{
		Address:      opts.URL,
		RoundTripper: opts.Client.StandardClient().Transport,
	})
	if err != nil {
		return nil, fmt.Errorf("prometheus client for %s: %w", opts.URL, err)
	}
	return &Prometheus{
		url:     opts.URL,
		timeout: opts.Timeout,
		api:     v1.NewAPI(client),
		log:     opts.Logger.With("source", "prometheus"),
	}, nil
}

// URL returns the server address queries are sent to.
func (p *Prometheus) URL() string { return p.url }

// Query evaluates expr at the current time. The result must be a scalar or
// a vector holding exactly one series.
func (p *Prometheus) Query(ctx context.Context, expr string) (engine.Sample, error) {
	timeout := p.timeout
	if dl, ok := ctx.Deadline(); ok {
		timeout = time.Until(dl)
	}
	var opts []v1.Option
	if timeout > 0 {
		opts = append(opts, v1.WithTimeout(timeout))
	}

	result, warnings, err := p.api.Query(ctx, expr, time.Now(), opts...)
	if err != nil {
		// The HTTP layer does not always keep the context error in the chain.
		if cerr := ctx.Err(); cerr != nil && !errors.Is(err, cerr) {
			return engine.Sample{}, fmt.Errorf("prometheus query: %w (%v)", cerr, err)
		}
		return engine.Sample{}, fmt.Errorf("prometheus query: %w", err)
	}
	if len(warnings) > 0 {
		p.log.Warn("query returned warnings", "query", expr, "warnings", warnings)
	}
	return toSample(result)
}

func toSample(result model.Value) (engine.Sample, error) {
	switch v := result.(type) {
	case model.Vector:
		switch len(v) {
		case 0:
			return engine.Sample{}, engine.ErrEmptyResult
		case 1:
		default:
			return engine.Sample{}, fmt.Errorf("%w: got %d", engine.ErrMultipleResults, len(v))
		}
		s := v[0]
		labels := make(map[string]string, len(s.Metric))
		for name, value := range s.Metric {
			labels[string(name)] = string(value)
		}
		return engine.Sample{
			Labels:    labels,
			Value:     float64(s.Value),
			Timestamp: s.Timestamp.Time(),
		}, nil
	case *model.Scalar:
		return engine.Sample{
			Value:     float64(v.Value),
			Timestamp: v.Timestamp.Time(),
		}, nil
	case nil:
		return engine.Sample{}, engine.ErrEmptyResult
	}
	return engine.Sample{}, fmt.Errorf("unsupported result type %s", result.Type())
}

// Ping checks that the server answers build-info requests.
func (p *Prometheus) Ping(ctx context.Context) (string, error) {
	info, err := p.api.Buildinfo(ctx)
	if err != nil {
		return "", fmt.Errorf("prometheus %s: %w", p.url, err)
	}
	return info.Version, nil
}
