// Package api is the HTTP client for the GossHub API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"gosshub/client/internal/logger"
	"gosshub/client/internal/state"
	"gosshub/client/internal/util"
)

// Session supplies the bearer token and receives the auth/login and
// auth/logout actions produced by authorised calls. *state.Store satisfies it.
type Session interface {
	Token() string
	Dispatch(ctx context.Context, action state.Action) (state.State, error)
}

type Client struct {
	baseURL *url.URL
	http    *http.Client
	session Session
}

// Message is the body of a plain success response.
type Message struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

func New(baseURL string, httpClient *http.Client, session Session) (*Client, error) {
	parsed, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse api url: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("parse api url: %q is not absolute", baseURL)
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{baseURL: parsed, http: httpClient, session: session}, nil
}

type request struct {
	method    string
	route     string
	query     url.Values
	authorize bool
	body      any
}

func (c *Client) endpoint(route string, query url.Values) string {
	u := *c.baseURL
	u.Path = c.baseURL.Path + route
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// do sends req and decodes a 2xx body into out. On an authorised call a
// 401 dispatches auth/logout and a success dispatches auth/login.
func (c *Client) do(ctx context.Context, req request, out any) error {
	var payload io.Reader
	if req.body != nil && (req.method == http.MethodPost || req.method == http.MethodPut) {
		data, err := json.Marshal(req.body)
		if err != nil {
			return fmt.Errorf("encode %s body: %w", req.route, err)
		}
		payload = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, c.endpoint(req.route, req.query), payload)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	requestID := util.NewRequestID()
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-ID", requestID)
	if payload != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if req.authorize && c.session != nil {
		if token := c.session.Token(); token != "" {
			httpReq.Header.Set("Authorization", "Bearer "+token)
		}
	}

	started := time.Now()
	resp, err := c.http.Do(httpReq)
	entry := logger.For(ctx).WithFields(logrus.Fields{
		"request_id":  requestID,
		"method":      req.method,
		"route":       req.route,
		"duration_ms": time.Since(started).Milliseconds(),
	})
	if err != nil {
		entry.WithError(err).Debug("api request failed")
		return fmt.Errorf("%w: %s %s: %w", ErrTransport, req.method, req.route, err)
	}
	defer resp.Body.Close()
	entry.WithField("status", resp.StatusCode).Debug("api request")

	if resp.StatusCode >= 400 {
		apiErr := decodeError(resp)
		if req.authorize && resp.StatusCode == http.StatusUnauthorized {
			c.dispatch(ctx, state.Logout())
		}
		return apiErr
	}
	if req.authorize {
		c.dispatch(ctx, state.Login())
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode %s response: %w", ErrTransport, req.route, err)
	}
	return nil
}

func (c *Client) dispatch(ctx context.Context, action state.Action) {
	if c.session == nil {
		return
	}
	if _, err := c.session.Dispatch(ctx, action); err != nil {
		logger.For(ctx).WithError(err).WithField("action", action.Kind).Warn("dispatch failed")
	}
}

func decodeError(resp *http.Response) *Error {
	apiErr := &Error{Status: resp.StatusCode}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err := json.Unmarshal(body, apiErr); err != nil || apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(string(body))
	}
	apiErr.Status = resp.StatusCode
	if apiErr.Reason == "" {
		apiErr.Reason = http.StatusText(resp.StatusCode)
	}
	return apiErr
}
