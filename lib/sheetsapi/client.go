package sheetsapi

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"mumsale-backend/lib/telemetry"

	"dario.cat/mergo"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel/codes"
)

type Config struct {
	// the Apps Script web app deployment url
	BaseUrl string `json:"base_url"`
	// extra attempts after the first failed read, 0 means use the default
	MaxRetries int `json:"max_retries"`
	// fixed delay between read attempts
	RetryDelay time.Duration `json:"-"`
	// how long read responses stay fresh
	CacheDuration time.Duration `json:"-"`
}

// Client wraps the sheet-backed order API. Reads are cached and
// retried; writes are never cached and never retried, since the
// backend gives no idempotency guarantee for financial side effects.
type Client struct {
	http       *resty.Client
	baseUrl    string
	maxRetries int
	retryDelay time.Duration
	cache      *callCache
}

func NewClient(config Config) *Client {
	if config.MaxRetries == 0 {
		config.MaxRetries = 3
	}
	if config.RetryDelay == 0 {
		config.RetryDelay = time.Second
	}
	if config.CacheDuration == 0 {
		config.CacheDuration = time.Minute * 5
	}

	client := resty.New()
	client.SetTimeout(time.Second * 30)
	telemetry.InstrumentResty(client, library_name)

	return &Client{
		http:       client,
		baseUrl:    config.BaseUrl,
		maxRetries: config.MaxRetries,
		retryDelay: config.RetryDelay,
		cache:      newCallCache(config.CacheDuration),
	}
}

// ClearCache drops every memoized read.
func (c *Client) ClearCache() {
	c.cache.clear()
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	key := cacheKey("GET", path, nil)
	if body, ok := c.cache.get(key); ok {
		slog.DebugContext(ctx, "using cached response", "path", path)
		return body, nil
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			slog.DebugContext(
				ctx, "retrying request",
				"path", path,
				"attempts_left", c.maxRetries-attempt+1,
				"err", lastErr,
			)
			select {
			case <-time.After(c.retryDelay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		res, err := c.http.R().
			SetContext(ctx).
			SetQueryParam("path", path).
			Get(c.baseUrl)
		if err != nil {
			lastErr = err
			continue
		}
		if res.IsError() {
			lastErr = fmt.Errorf("http error: status %d", res.StatusCode())
			continue
		}

		body := res.Body()
		c.cache.set(key, body)
		return body, nil
	}

	return nil, lastErr
}

func (c *Client) post(ctx context.Context, path string, payload any) (body []byte, status int, err error) {
	serialized, err := json.Marshal(payload)
	if err != nil {
		return nil, 0, err
	}

	res, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("path", path).
		// Apps Script only answers CORS preflights for text/plain
		SetHeader("Content-Type", "text/plain").
		SetBody(serialized).
		Post(c.baseUrl)
	if err != nil {
		return nil, 0, err
	}
	return res.Body(), res.StatusCode(), nil
}

// FetchProducts returns the catalog. The result is cached for the
// configured duration and transparently retried on transient failures;
// once retries are exhausted the error propagates so the caller can
// show a "failed to load" state.
func (c *Client) FetchProducts(ctx context.Context) ([]Product, error) {
	ctx, span := tracer.Start(ctx, "FetchProducts")
	defer span.End()

	body, err := c.get(ctx, "products")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch products")
		return nil, fmt.Errorf("fetch products: %w", err)
	}

	var envelope struct {
		Products []productWire `json:"products"`
	}
	err = json.Unmarshal(body, &envelope)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "malformed products response")
		return nil, fmt.Errorf("fetch products: %w", err)
	}

	products := make([]Product, len(envelope.Products))
	for i, wire := range envelope.Products {
		products[i] = wire.normalize()
	}
	slog.DebugContext(ctx, "fetched products", "count", len(products))
	return products, nil
}

// FetchSettings returns the storefront settings map. A caller must
// never be blocked on settings, so every failure path falls back to
// the hardcoded defaults; fetched values are merged over the defaults
// so keys missing from the sheet keep their fallback.
func (c *Client) FetchSettings(ctx context.Context) SettingsMap {
	ctx, span := tracer.Start(ctx, "FetchSettings")
	defer span.End()

	settings := DefaultSettings()

	body, err := c.get(ctx, "settings")
	if err != nil {
		slog.WarnContext(ctx, "failed to fetch settings, using defaults", "err", err)
		return settings
	}

	var envelope struct {
		Settings SettingsMap `json:"settings"`
	}
	err = json.Unmarshal(body, &envelope)
	if err != nil {
		slog.WarnContext(ctx, "malformed settings response, using defaults", "err", err)
		return settings
	}

	err = mergo.Merge(&settings, envelope.Settings, mergo.WithOverride)
	if err != nil {
		slog.WarnContext(ctx, "failed to merge settings over defaults", "err", err)
		return DefaultSettings()
	}
	return settings
}

// SubmitOrder posts an order. Exactly one attempt is made.
func (c *Client) SubmitOrder(ctx context.Context, order OrderSubmission) (SubmitResult, error) {
	ctx, span := tracer.Start(ctx, "SubmitOrder")
	defer span.End()

	slog.InfoContext(ctx, "submitting order", "total", order.TotalPrice, "lines", len(order.Products))
	result, err := c.submit(ctx, "order", "submit order", order)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "order submission failed")
	}
	return result, err
}

// SubmitVolunteer posts a volunteer interest form. Same write
// semantics as SubmitOrder.
func (c *Client) SubmitVolunteer(ctx context.Context, volunteer VolunteerSubmission) (SubmitResult, error) {
	ctx, span := tracer.Start(ctx, "SubmitVolunteer")
	defer span.End()

	result, err := c.submit(ctx, "volunteer", "submit volunteer interest", volunteer)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "volunteer submission failed")
	}
	return result, err
}

// SubmitHelper posts a helper contact request. Same write semantics as
// SubmitOrder.
func (c *Client) SubmitHelper(ctx context.Context, helper HelperContact) (SubmitResult, error) {
	ctx, span := tracer.Start(ctx, "SubmitHelper")
	defer span.End()

	result, err := c.submit(ctx, "submitHelper", "submit helper request", helper)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "helper submission failed")
	}
	return result, err
}

func (c *Client) submit(ctx context.Context, path, what string, payload any) (SubmitResult, error) {
	body, status, err := c.post(ctx, path, payload)
	if err != nil {
		return SubmitResult{}, &SubmitError{Kind: KindNetwork, What: what, cause: err}
	}
	if status < 200 || status >= 300 {
		return SubmitResult{}, classifyWriteStatus(what, status)
	}

	// the envelope must be an object with a `success` field, anything
	// else counts as a write failure
	var raw map[string]json.RawMessage
	err = json.Unmarshal(body, &raw)
	if err != nil || raw == nil {
		return SubmitResult{}, &SubmitError{
			Kind:  KindGeneric,
			What:  what,
			cause: fmt.Errorf("invalid response from server"),
		}
	}
	if _, ok := raw["success"]; !ok {
		return SubmitResult{}, &SubmitError{
			Kind:  KindGeneric,
			What:  what,
			cause: fmt.Errorf("invalid response from server"),
		}
	}

	var result SubmitResult
	err = json.Unmarshal(body, &result)
	if err != nil {
		return SubmitResult{}, &SubmitError{Kind: KindGeneric, What: what, cause: err}
	}
	return result, nil
}
