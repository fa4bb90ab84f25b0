package socrata

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-openapi/runtime"
	httptransport "github.com/go-openapi/runtime/client"
	"github.com/go-openapi/strfmt"
	"go.uber.org/zap"

	"siteviewer/backend/services/site-viewer/internal/models"
	"siteviewer/backend/services/site-viewer/internal/observability/metrics"
)

const (
	resourcePath   = "/resource/{dataset}.json"
	defaultTimeout = 10 * time.Second
)

// Options configures the open-data client.
type Options struct {
	BaseURL          string
	KeyID            string
	KeySecret        string
	MetadataDataset  string
	TelemetryDataset string
	Timeout          time.Duration
	Location         *time.Location
}

// Client reads the site metadata and telemetry datasets.
type Client struct {
	transport        runtime.ClientTransport
	metadataDataset  string
	telemetryDataset string
	timeout          time.Duration
	location         *time.Location
	logger           *zap.Logger
}

// NewClient creates a Client that authenticates every request with the API key pair.
// rt is the underlying round tripper; nil means http.DefaultTransport.
func NewClient(rt http.RoundTripper, opts Options, logger *zap.Logger) (*Client, error) {
	if strings.TrimSpace(opts.KeyID) == "" || strings.TrimSpace(opts.KeySecret) == "" {
		return nil, errors.New("socrata: api key id and secret are required")
	}
	if opts.MetadataDataset == "" || opts.TelemetryDataset == "" {
		return nil, errors.New("socrata: dataset ids are required")
	}

	base, err := url.Parse(strings.TrimSpace(opts.BaseURL))
	if err != nil {
		return nil, fmt.Errorf("socrata: parse base url: %w", err)
	}
	if base.Host == "" {
		return nil, fmt.Errorf("socrata: base url %q has no host", opts.BaseURL)
	}
	scheme := base.Scheme
	if scheme == "" {
		scheme = "https"
	}

	if rt == nil {
		rt = http.DefaultTransport
	}
	transport := httptransport.New(base.Host, base.Path, []string{scheme})
	transport.Transport = rt
	transport.DefaultAuthentication = httptransport.BasicAuth(opts.KeyID, opts.KeySecret)

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		transport:        transport,
		metadataDataset:  opts.MetadataDataset,
		telemetryDataset: opts.TelemetryDataset,
		timeout:          timeout,
		location:         loc,
		logger:           logger,
	}, nil
}

// FetchMetadata retrieves every site metadata row and the distinct gager labels.
func (c *Client) FetchMetadata(ctx context.Context) ([]models.SiteMetadata, []string, error) {
	records, err := c.listRecords(ctx, "ListSiteMetadata", c.metadataDataset, nil)
	if err != nil {
		return nil, nil, err
	}

	rows, skipped := models.DecodeSiteMetadata(records)
	if skipped > 0 {
		c.logger.Warn("skipped metadata records without site",
			zap.String("dataset", c.metadataDataset), zap.Int("skipped", skipped))
		metrics.AddRowsDropped(models.DropMissingField, skipped)
	}
	return rows, models.GagerSet(rows), nil
}

// FetchTelemetry retrieves the readings of the previous calendar day relative to asOf.
// The returned window is the one sent upstream.
func (c *Client) FetchTelemetry(ctx context.Context, asOf time.Time) ([]models.TelemetryReading, models.Window, error) {
	window := models.TelemetryWindow(asOf, c.location)
	query := url.Values{}
	query.Set("$select", "site,datetime,battery_volts")
	query.Set("$where", WhereClause(window))

	records, err := c.listRecords(ctx, "ListTelemetry", c.telemetryDataset, query)
	if err != nil {
		return nil, window, err
	}

	rows, skipped := models.DecodeTelemetry(records, c.location)
	if skipped > 0 {
		c.logger.Warn("skipped telemetry records without site",
			zap.String("dataset", c.telemetryDataset), zap.Int("skipped", skipped))
		metrics.AddRowsDropped(models.DropMissingField, skipped)
	}
	return rows, window, nil
}

// WhereClause renders the SoQL filter for a window using ISO dates.
func WhereClause(w models.Window) string {
	return fmt.Sprintf("datetime >= '%s' AND datetime < '%s'",
		strfmt.Date(w.From).String(), strfmt.Date(w.To).String())
}

func (c *Client) listRecords(ctx context.Context, operationID, dataset string, query url.Values) ([]models.Record, error) {
	start := time.Now()

	params := runtime.ClientRequestWriterFunc(func(req runtime.ClientRequest, _ strfmt.Registry) error {
		if err := req.SetTimeout(c.timeout); err != nil {
			return err
		}
		if err := req.SetHeaderParam(runtime.HeaderAccept, "*/*"); err != nil {
			return err
		}
		if err := req.SetPathParam("dataset", dataset); err != nil {
			return err
		}
		for key, values := range query {
			if err := req.SetQueryParam(key, values...); err != nil {
				return err
			}
		}
		return nil
	})

	reader := runtime.ClientResponseReaderFunc(func(resp runtime.ClientResponse, consumer runtime.Consumer) (interface{}, error) {
		if resp.Code() != http.StatusOK {
			return nil, &StatusError{Dataset: dataset, StatusCode: resp.Code(), Status: resp.Message()}
		}
		var records []models.Record
		if err := consumer.Consume(resp.Body(), &records); err != nil {
			return nil, fmt.Errorf("socrata: decode %s: %w", dataset, err)
		}
		return records, nil
	})

	result, err := c.transport.Submit(&runtime.ClientOperation{
		ID:                 operationID,
		Method:             http.MethodGet,
		PathPattern:        resourcePath,
		ProducesMediaTypes: []string{"*/*"},
		ConsumesMediaTypes: []string{runtime.JSONMime},
		Params:             params,
		Reader:             reader,
		Context:            ctx,
	})
	elapsed := time.Since(start)
	if err != nil {
		metrics.ObserveFetch(dataset, metrics.ResultError, elapsed)
		c.logger.Warn("dataset fetch failed",
			zap.String("dataset", dataset), zap.Duration("elapsed", elapsed), zap.Error(err))
		var statusErr *StatusError
		if errors.As(err, &statusErr) {
			return nil, err
		}
		return nil, fmt.Errorf("socrata: fetch %s: %w", dataset, err)
	}

	records, ok := result.([]models.Record)
	if !ok {
		metrics.ObserveFetch(dataset, metrics.ResultError, elapsed)
		return nil, fmt.Errorf("socrata: unexpected result type %T", result)
	}
	metrics.ObserveFetch(dataset, metrics.ResultSuccess, elapsed)
	c.logger.Debug("dataset fetched",
		zap.String("dataset", dataset), zap.Int("records", len(records)), zap.Duration("elapsed", elapsed))
	return records, nil
}
