package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/noah-isme/sma-adp-console/pkg/errors"
	"github.com/noah-isme/sma-adp-console/pkg/middleware/requestid"
)

// DefaultLoginPath is where the application is sent after a 401.
const DefaultLoginPath = "/login"

// TokenSource supplies bearer tokens and is cleared when the backend rejects them.
type TokenSource interface {
	BearerToken(ctx context.Context) string
	Clear(ctx context.Context) error
}

// Navigator moves the application to another entry point.
type Navigator interface {
	Navigate(path string)
}

// Observer receives per-request measurements.
type Observer interface {
	ObserveAPIRequest(method, route string, status int, duration time.Duration)
}

// Config configures a Client.
type Config struct {
	BaseURL         string
	Timeout         time.Duration
	WithCredentials bool
	LoginPath       string
	Logger          *zap.Logger
	Observer        Observer
	Navigator       Navigator
	HTTPClient      *http.Client
}

// FilePart is one file in a multipart body.
type FilePart struct {
	Field    string
	Filename string
	Content  io.Reader
}

// Multipart describes a multipart/form-data body.
type Multipart struct {
	Fields map[string]string
	Files  []FilePart
}

// Request describes one call against the backend. Route is the templated path
// used as a metrics label; it defaults to Path.
type Request struct {
	Method string
	Path   string
	Route  string
	Query  url.Values
	Body   interface{}
	Form   *Multipart
}

// Client sends every request to the backend.
type Client struct {
	baseURL   string
	http      *http.Client
	tokens    TokenSource
	navigator Navigator
	observer  Observer
	loginPath string
	logger    *zap.Logger
}

// New constructs a Client.
func New(cfg Config, tokens TokenSource) (*Client, error) {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if _, err := url.ParseRequestURI(base); err != nil {
		return nil, fmt.Errorf("invalid api base url %q: %w", cfg.BaseURL, err)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	if cfg.WithCredentials && httpClient.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("create cookie jar: %w", err)
		}
		httpClient.Jar = jar
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	loginPath := cfg.LoginPath
	if loginPath == "" {
		loginPath = DefaultLoginPath
	}

	return &Client{
		baseURL:   base,
		http:      httpClient,
		tokens:    tokens,
		navigator: cfg.Navigator,
		observer:  cfg.Observer,
		loginPath: loginPath,
		logger:    logger,
	}, nil
}

// Do sends req and returns the raw body of a successful response.
func (c *Client) Do(ctx context.Context, req Request) ([]byte, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	method := strings.ToUpper(strings.TrimSpace(req.Method))
	if method == "" {
		method = http.MethodGet
	}
	route := req.Route
	if route == "" {
		route = req.Path
	}

	httpReq, reqID, err := c.build(ctx, method, req)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrRequestFailed.Code, 0, appErrors.ErrRequestFailed.Message)
	}

	c.logger.Debug("api_request",
		zap.String("method", method),
		zap.String("path", req.Path),
		zap.Any("query", req.Query),
		zap.Bool("multipart", req.Form != nil),
		zap.String("request_id", reqID),
	)

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.observe(method, route, 0, time.Since(start))
		c.logger.Warn("api_request_failed",
			zap.String("method", method),
			zap.String("path", req.Path),
			zap.String("request_id", reqID),
			zap.Error(err),
		)
		return nil, appErrors.Wrap(err, appErrors.ErrRequestFailed.Code, 0, appErrors.ErrRequestFailed.Message)
	}
	defer resp.Body.Close() //nolint:errcheck

	body, readErr := io.ReadAll(resp.Body)
	latency := time.Since(start)
	c.observe(method, route, resp.StatusCode, latency)
	c.logger.Debug("api_response",
		zap.String("method", method),
		zap.String("path", req.Path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", latency),
		zap.String("request_id", reqID),
	)
	if readErr != nil {
		return nil, appErrors.Wrap(readErr, appErrors.ErrRequestFailed.Code, resp.StatusCode, appErrors.ErrRequestFailed.Message)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return body, nil
	}

	message := NormalizeMessage(body)
	if resp.StatusCode == http.StatusUnauthorized {
		c.endSession(ctx)
	} else {
		c.logger.Warn("api_request_rejected",
			zap.String("method", method),
			zap.String("path", req.Path),
			zap.Int("status", resp.StatusCode),
			zap.String("message", message),
		)
	}
	return nil, appErrors.FromStatus(resp.StatusCode, message)
}

// Fetch sends req and decodes the body according to shape.
func Fetch[T any](ctx context.Context, c *Client, shape Shape, req Request) (T, error) {
	body, err := c.Do(ctx, req)
	if err != nil {
		var zero T
		return zero, err
	}
	return Decode[T](shape, body)
}

func (c *Client) build(ctx context.Context, method string, req Request) (*http.Request, string, error) {
	target := c.baseURL + "/" + strings.TrimLeft(req.Path, "/")
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	var (
		body        io.Reader
		contentType string
	)
	switch {
	case req.Form != nil:
		buf, ct, err := encodeMultipart(req.Form)
		if err != nil {
			return nil, "", err
		}
		body, contentType = buf, ct
	case req.Body != nil:
		payload, err := json.Marshal(req.Body)
		if err != nil {
			return nil, "", fmt.Errorf("encode body: %w", err)
		}
		body, contentType = bytes.NewReader(payload), "application/json"
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, "", err
	}
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	httpReq.Header.Set("Accept", "application/json")

	reqID := requestid.FromContext(ctx)
	httpReq.Header.Set(requestid.HeaderKey, reqID)

	if c.tokens != nil {
		if token := c.tokens.BearerToken(ctx); token != "" {
			httpReq.Header.Set("Authorization", "Bearer "+token)
		}
	}
	return httpReq, reqID, nil
}

func (c *Client) endSession(ctx context.Context) {
	c.logger.Info("session rejected by backend, signing out")
	if c.tokens != nil {
		if err := c.tokens.Clear(ctx); err != nil {
			c.logger.Warn("failed to clear session", zap.Error(err))
		}
	}
	if c.navigator != nil {
		c.navigator.Navigate(c.loginPath)
	}
}

func (c *Client) observe(method, route string, status int, d time.Duration) {
	if c.observer != nil {
		c.observer.ObserveAPIRequest(method, route, status, d)
	}
}

func encodeMultipart(form *Multipart) (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	for name, value := range form.Fields {
		if err := w.WriteField(name, value); err != nil {
			return nil, "", fmt.Errorf("write field %s: %w", name, err)
		}
	}
	for _, file := range form.Files {
		part, err := w.CreateFormFile(file.Field, file.Filename)
		if err != nil {
			return nil, "", fmt.Errorf("create file part %s: %w", file.Field, err)
		}
		if _, err := io.Copy(part, file.Content); err != nil {
			return nil, "", fmt.Errorf("copy file %s: %w", file.Filename, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf, w.FormDataContentType(), nil
}
