// Package gateway is the single HTTP chokepoint between the client and the
// backend API. It attaches the stored bearer token to every request, revokes
// it when the backend answers 401, and surfaces every other failure exactly
// once through a Notifier.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/atinyakov/civica/internal/client/notify"
	"github.com/atinyakov/civica/internal/metrics"
)

// DefaultTimeout bounds every request, including reading the response.
const DefaultTimeout = 30 * time.Second

// maxErrorBody caps how much of an error response is read for its message.
const maxErrorBody = 1 << 20

// Credentials is the view of the session store the gateway needs.
type Credentials interface {
	// Token returns the persisted bearer token, or "".
	Token() string
	// Clear drops the identity and both persisted entries.
	Clear()
}

// Gateway sends requests to the backend on behalf of every screen.
type Gateway struct {
	baseURL  string
	client   *http.Client
	timeout  time.Duration
	creds    Credentials
	notifier notify.Notifier
	metrics  metrics.Recorder
	log      *zap.Logger

	mu        sync.Mutex
	observers map[int]func()
	nextID    int
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(c *http.Client) Option {
	return func(g *Gateway) { g.client = c }
}

// WithNotifier sets where failure messages are shown.
func WithNotifier(n notify.Notifier) Option {
	return func(g *Gateway) { g.notifier = n }
}

// WithMetrics sets the request recorder.
func WithMetrics(r metrics.Recorder) Option {
	return func(g *Gateway) { g.metrics = r }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(g *Gateway) { g.log = l }
}

// New returns a Gateway for the API rooted at baseURL.
func New(baseURL string, creds Credentials, opts ...Option) *Gateway {
	g := &Gateway{
		baseURL:   strings.TrimRight(baseURL, "/"),
		client:    &http.Client{Timeout: DefaultTimeout},
		timeout:   DefaultTimeout,
		creds:     creds,
		notifier:  notify.Nop{},
		metrics:   metrics.Nop{},
		log:       zap.NewNop(),
		observers: make(map[int]func()),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// OnUnauthorized registers fn to run after the gateway has revoked the stored
// credential because of a 401 response. It runs once per such response, on
// the goroutine that issued the request. The returned func unregisters fn.
func (g *Gateway) OnUnauthorized(fn func()) (unsubscribe func()) {
	g.mu.Lock()
	defer g.mu.Unlock()
	id := g.nextID
	g.nextID++
	g.observers[id] = fn
	return func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		delete(g.observers, id)
	}
}

// Get issues a GET request and decodes the JSON response into out.
func (g *Gateway) Get(ctx context.Context, path string, out any) error {
	return g.Do(ctx, http.MethodGet, path, nil, out)
}

// Post issues a POST request with body.
func (g *Gateway) Post(ctx context.Context, path string, body, out any) error {
	return g.Do(ctx, http.MethodPost, path, body, out)
}

// Put issues a PUT request with body.
func (g *Gateway) Put(ctx context.Context, path string, body, out any) error {
	return g.Do(ctx, http.MethodPut, path, body, out)
}

// Delete issues a DELETE request.
func (g *Gateway) Delete(ctx context.Context, path string, out any) error {
	return g.Do(ctx, http.MethodDelete, path, nil, out)
}

// Do sends a request. body may be nil, a *Multipart, or any JSON-encodable
// value. On a 2xx response the body is decoded into out when out is non-nil.
// Every failure is returned as *Error.
func (g *Gateway) Do(ctx context.Context, method, path string, body, out any) error {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	req, err := g.newRequest(ctx, method, path, body)
	if err != nil {
		return g.fail(method, path, &Error{Message: GenericMessage, Err: err})
	}

	start := time.Now()
	resp, err := g.client.Do(req)
	if err != nil {
		g.metrics.RecordRequest(method, 0, time.Since(start))
		return g.fail(method, path, &Error{Message: GenericMessage, Err: err})
	}
	defer resp.Body.Close()
	g.metrics.RecordRequest(method, resp.StatusCode, time.Since(start))

	if resp.StatusCode == http.StatusUnauthorized {
		return g.revoke(method, path, resp)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return g.fail(method, path, &Error{
			Status:  resp.StatusCode,
			Message: serverMessage(resp.Body),
		})
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return g.fail(method, path, &Error{
			Status:  resp.StatusCode,
			Message: GenericMessage,
			Err:     fmt.Errorf("invalid response: %w", err),
		})
	}
	return nil
}

func (g *Gateway) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var (
		reader      io.Reader
		contentType string
	)
	switch b := body.(type) {
	case nil:
	case *Multipart:
		buf, ct, err := b.encode()
		if err != nil {
			return nil, fmt.Errorf("encode multipart body: %w", err)
		}
		reader, contentType = buf, ct
	default:
		buf, err := json.Marshal(b)
		if err != nil {
			return nil, fmt.Errorf("encode json body: %w", err)
		}
		reader, contentType = bytes.NewReader(buf), "application/json"
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if token := g.creds.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

// revoke clears the stored credential and notifies observers. It does not
// notify the user: the observers are expected to move them to the login entry point.
func (g *Gateway) revoke(method, path string, resp *http.Response) error {
	g.creds.Clear()
	g.metrics.RecordUnauthorized()
	g.log.Warn("credential rejected, session cleared",
		zap.String("method", method),
		zap.String("path", path),
	)

	g.mu.Lock()
	observers := make([]func(), 0, len(g.observers))
	for _, fn := range g.observers {
		observers = append(observers, fn)
	}
	g.mu.Unlock()

	for _, fn := range observers {
		fn()
	}

	return &Error{
		Status:  http.StatusUnauthorized,
		Message: serverMessage(resp.Body),
	}
}

// fail logs e, shows its message once and returns it.
func (g *Gateway) fail(method, path string, e *Error) error {
	g.log.Warn("api request failed",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", e.Status),
		zap.String("message", e.Message),
		zap.Error(e.Err),
	)
	g.notifier.Error(e.Message)
	e.surfaced = true
	return e
}

// serverMessage extracts {"error": "..."} from r, falling back to GenericMessage.
func serverMessage(r io.Reader) string {
	var payload struct {
		Error string `json:"error"`
	}
	data, err := io.ReadAll(io.LimitReader(r, maxErrorBody))
	if err != nil || json.Unmarshal(data, &payload) != nil || payload.Error == "" {
		return GenericMessage
	}
	return payload.Error
}

// Field is a plain multipart form field.
type Field struct {
	Name  string
	Value string
}

// File is a multipart file part.
type File struct {
	Field    string
	Filename string
	Content  io.Reader
}

// Multipart is a request body sent as multipart/form-data. The gateway lets
// the multipart writer choose the boundary and never forces a JSON content type.
type Multipart struct {
	Fields []Field
	Files  []File
}

func (m *Multipart) encode() (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	for _, f := range m.Fields {
		if err := w.WriteField(f.Name, f.Value); err != nil {
			return nil, "", err
		}
	}
	for _, f := range m.Files {
		part, err := w.CreateFormFile(f.Field, f.Filename)
		if err != nil {
			return nil, "", err
		}
		if _, err := io.Copy(part, f.Content); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf, w.FormDataContentType(), nil
}
