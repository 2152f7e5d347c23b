// Package remote implements the typed client for the upstream NgajiQu REST
// API. The gateway never talks to the backend outside of this package.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ArbathAbdurrahman/ngajiqu-gateway/pkg/config"
	appErrors "github.com/ArbathAbdurrahman/ngajiqu-gateway/pkg/errors"
)

// RequestObserver receives timing information for every upstream call.
type RequestObserver interface {
	ObserveUpstreamRequest(resource string, status int, duration time.Duration)
}

// Client issues authenticated and unauthenticated requests against the
// upstream API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	authURL    string
	logger     *zap.Logger
	observer   RequestObserver
}

// NewClient constructs an upstream client from configuration.
func NewClient(cfg config.UpstreamConfig, logger *zap.Logger, observer RequestObserver) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	authURL := cfg.AuthURL
	if authURL == "" {
		authURL = cfg.BaseURL
	}
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		authURL:    strings.TrimRight(authURL, "/"),
		logger:     logger,
		observer:   observer,
	}
}

type upstreamError struct {
	Detail  string `json:"detail"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

func (e upstreamError) text() string {
	switch {
	case e.Detail != "":
		return e.Detail
	case e.Message != "":
		return e.Message
	case e.Error != "":
		return e.Error
	}
	return ""
}

// do performs one JSON request. A non-empty token is attached as a Bearer
// credential. The response body is decoded into out when out is non-nil.
func (c *Client) do(ctx context.Context, resource, method, url, token string, payload, out interface{}) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "encode request payload")
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "build upstream request")
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)
	if err != nil {
		if c.observer != nil {
			c.observer.ObserveUpstreamRequest(resource, 0, duration)
		}
		return appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status,
			fmt.Sprintf("request to %s failed", resource))
	}
	defer resp.Body.Close() //nolint:errcheck

	if c.observer != nil {
		c.observer.ObserveUpstreamRequest(resource, resp.StatusCode, duration)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.statusError(resource, resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status,
			fmt.Sprintf("decode %s response", resource))
	}
	return nil
}

func (c *Client) statusError(resource string, resp *http.Response) error {
	var parsed upstreamError
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	_ = json.Unmarshal(raw, &parsed)
	detail := parsed.text()

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return appErrors.Clone(appErrors.ErrAuthRequired, detail)
	case http.StatusNotFound:
		return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("%s not found", resource))
	}

	msg := fmt.Sprintf("%s request failed with status %d", resource, resp.StatusCode)
	if detail != "" {
		msg = fmt.Sprintf("%s: %s", msg, detail)
	}
	c.logger.Warn("upstream error",
		zap.String("resource", resource),
		zap.Int("status", resp.StatusCode))
	return appErrors.New(appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, msg)
}

func (c *Client) url(path string) string {
	return c.baseURL + path
}

func (c *Client) authPath(path string) string {
	return c.authURL + path
}
