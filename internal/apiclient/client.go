// Package apiclient is the typed data-access layer for the hospital API.
// Every call returns an Envelope in which exactly one of Data and Error is
// set, so callers never branch on transport errors versus status codes.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/schema"
)

const (
	ErrNetwork         = "network error"
	ErrInvalidResponse = "invalid response body"
	ErrInvalidRequest  = "invalid request"
)

type Envelope[T any] struct {
	Data  *T      `json:"data"`
	Error *string `json:"error"`
}

func success[T any](v *T) Envelope[T] {
	return Envelope[T]{Data: v}
}

func failure[T any](msg string) Envelope[T] {
	return Envelope[T]{Error: &msg}
}

func (e Envelope[T]) OK() bool {
	return e.Error == nil
}

// Err returns the error message as an error value, or nil on success.
func (e Envelope[T]) Err() error {
	if e.Error == nil {
		return nil
	}
	return errors.New(*e.Error)
}

type RequestOptions struct {
	// Method defaults to GET.
	Method  string
	Headers http.Header
	Params  url.Values
	// Query is a filter struct with schema tags, merged into Params.
	Query interface{}
	// Body is JSON encoded when non-nil.
	Body interface{}
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	session    *Session
}

type ClientConfig struct {
	BaseURL string
	Session *Session
	// HTTPClient is optional and will default to http.DefaultClient
	HTTPClient *http.Client
}

func NewClient(cfg ClientConfig) *Client {
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = http.DefaultClient
	}
	if cfg.Session == nil {
		cfg.Session = NewSession(nil)
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: cfg.HTTPClient,
		session:    cfg.Session,
	}
}

func (c *Client) Session() *Session {
	return c.session
}

// Do performs a single request against path and folds the outcome into an
// Envelope. There are no retries; cancellation is left to ctx.
func Do[T any](ctx context.Context, c *Client, path string, opts RequestOptions) Envelope[T] {
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if opts.Body != nil {
		b := &bytes.Buffer{}
		if err := json.NewEncoder(b).Encode(opts.Body); err != nil {
			return failure[T](ErrInvalidRequest)
		}
		body = b
	}

	params := opts.Params
	if opts.Query != nil {
		q, err := encodeParams(opts.Query)
		if err != nil {
			return failure[T](ErrInvalidRequest)
		}
		for k, v := range opts.Params {
			q[k] = append(q[k], v...)
		}
		params = q
	}

	u := c.baseURL + path
	if len(params) != 0 {
		u += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return failure[T](ErrInvalidRequest)
	}
	for k, v := range opts.Headers {
		req.Header[k] = v
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if token := c.session.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return failure[T](ErrNetwork)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return failure[T](ErrNetwork)
	}

	if res.StatusCode >= 200 && res.StatusCode < 300 {
		v := new(T)
		if len(bytes.TrimSpace(raw)) == 0 {
			return success(v)
		}
		if err := json.Unmarshal(raw, v); err != nil {
			return failure[T](ErrInvalidResponse)
		}
		return success(v)
	}

	return failure[T](errorMessage(res, raw))
}

// errorMessage prefers the server's {"message": ...} body and falls back to
// the HTTP status text.
func errorMessage(res *http.Response, raw []byte) string {
	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &body); err == nil && body.Message != "" {
		return body.Message
	}
	if text := http.StatusText(res.StatusCode); text != "" {
		return text
	}
	return fmt.Sprintf("request failed with status %d", res.StatusCode)
}

var paramsEncoder = schema.NewEncoder()

// encodeParams turns a filter struct with schema tags into query values.
func encodeParams(filter interface{}) (url.Values, error) {
	values := url.Values{}
	if err := paramsEncoder.Encode(filter, values); err != nil {
		return nil, fmt.Errorf("encode query: %w", err)
	}
	return values, nil
}

func idPath(base string, id interface{}) string {
	return base + "/" + url.PathEscape(fmt.Sprint(id))
}
