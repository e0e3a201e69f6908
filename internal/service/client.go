package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rryowa/campus_session/internal/metrics"
	"github.com/rryowa/campus_session/internal/models"
)

const (
	defaultHTTPStatusThreshold = 400
	maxErrorBodySize           = 64 << 10
)

// Request describes one JSON call.
type Request struct {
	Method string
	URL    string
	Body   any
	Header http.Header
}

type validatable interface {
	Validate() error
}

// JSONClient performs JSON calls and classifies the outcome into transport,
// server or success. It never retries.
type JSONClient struct {
	client  *http.Client
	log     *zap.SugaredLogger
	metrics *metrics.Metrics
	timeout time.Duration
}

func NewJSONClient(client *http.Client, timeout time.Duration, log *zap.SugaredLogger, m *metrics.Metrics) *JSONClient {
	if client == nil {
		client = &http.Client{}
	}
	return &JSONClient{
		client:  client,
		log:     log,
		metrics: m,
		timeout: timeout,
	}
}

// Do sends r and decodes a successful body into out when out is non-nil.
// Caller headers override the JSON defaults.
func (c *JSONClient) Do(ctx context.Context, r Request, out any) error {
	err := c.do(ctx, r, out)
	kind := "success"
	if err != nil {
		kind = string(KindOf(err))
	}
	c.metrics.ObserveRequest(kind)
	return err
}

func (c *JSONClient) do(ctx context.Context, r Request, out any) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var body io.Reader
	if r.Body != nil {
		payload, err := json.Marshal(r.Body)
		if err != nil {
			return &AuthError{Kind: KindTransport, Message: "encode request body", Err: err}
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, r.Method, r.URL, body)
	if err != nil {
		return &AuthError{Kind: KindTransport, Message: "build request", Err: err}
	}
	req.Header.Set(models.ContentTypeHeader, models.ContentTypeJSON)
	for k, vs := range r.Header {
		req.Header.Del(k)
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if req.Header.Get(models.RequestIDHeader) == "" {
		req.Header.Set(models.RequestIDHeader, uuid.NewString())
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.log.Debugw("request failed", "method", r.Method, "url", r.URL, "error", err)
		return transportError(err)
	}
	defer resp.Body.Close()

	c.log.Debugw("request done", "method", r.Method, "url", r.URL, "status", resp.StatusCode)

	if resp.StatusCode >= defaultHTTPStatusThreshold {
		return serverError(resp.StatusCode, errorMessage(resp.Body))
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		var netErr interface{ Timeout() bool }
		if errors.As(err, &netErr) && netErr.Timeout() {
			return transportError(err)
		}
		return &AuthError{Kind: KindServer, Status: resp.StatusCode, Message: "malformed response body", Err: err}
	}
	if v, ok := out.(validatable); ok {
		if err := v.Validate(); err != nil {
			return &AuthError{Kind: KindServer, Status: resp.StatusCode, Message: "invalid response", Err: err}
		}
	}
	return nil
}

// errorMessage extracts "error", then "message" from a JSON error body.
func errorMessage(body io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(body, maxErrorBodySize))
	if err != nil || len(data) == 0 {
		return ""
	}
	var e models.ErrorResponse
	if err := json.Unmarshal(data, &e); err != nil {
		return ""
	}
	if e.Error != "" {
		return e.Error
	}
	return e.Message
}
