// Package backend is the HTTP client for the retrieval backend: website
// ingestion, PDF ingestion, question answering, and a health probe.
//
// Every call is a single attempt. The backend sometimes reports failure with
// a 2xx status and an "error" field in the body; the client treats that the
// same as a non-2xx response.
package backend

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
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/abelbrown/ragaweb/internal/otel"
)

// maxResponseBytes caps how much of a response body is read.
const maxResponseBytes = 10 << 20

// ErrMissingCollection is returned when an ingest succeeds at the HTTP level
// but the body carries no collection name.
var ErrMissingCollection = errors.New("backend: response missing collection_name")

// APIError is a failure reported by the backend.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend: %d: %s", e.Status, e.Message)
}

// Client calls the backend over HTTP. Safe for concurrent use.
type Client struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
	log     *otel.Logger
}

// NewClient creates a client for the backend at baseURL.
// Ingestion crawls and embeds server-side, so the timeout is generous.
func NewClient(baseURL string, log *otel.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 5 * time.Minute},
		limiter: rate.NewLimiter(rate.Every(200*time.Millisecond), 4),
		log:     log,
	}
}

// SetTimeout overrides the per-request timeout. Non-positive values are ignored.
func (c *Client) SetTimeout(d time.Duration) {
	if d > 0 {
		c.client.Timeout = d
	}
}

// BaseURL returns the backend root the client was built with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

type ingestRequest struct {
	URL string `json:"url"`
}

// IngestResult is the backend's answer to a website ingestion.
type IngestResult struct {
	CollectionName string `json:"collection_name"`
	Message        string `json:"message,omitempty"`
}

// FileIngestResult is the backend's answer to a PDF ingestion.
type FileIngestResult struct {
	CollectionName string `json:"collection_name"`
	FileName       string `json:"filename,omitempty"`
	Message        string `json:"message,omitempty"`
	ChunksCreated  int    `json:"chunks_created,omitempty"`
	PagesProcessed int    `json:"pages_processed,omitempty"`
}

type queryRequest struct {
	Query          string `json:"query"`
	CollectionName string `json:"collection_name"`
}

type queryResponse struct {
	Response string `json:"response"`
}

type healthResponse struct {
	Status string `json:"status"`
}

// errorBody covers both error shapes the backend emits: {"error": "..."}
// from handled failures and {"detail": ...} from raised HTTP errors.
type errorBody struct {
	Error  string          `json:"error"`
	Detail json.RawMessage `json:"detail"`
}

func (b errorBody) message() string {
	if b.Error != "" {
		return b.Error
	}
	if len(b.Detail) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(b.Detail, &s); err == nil {
		return s
	}
	return string(b.Detail)
}

// IngestURL asks the backend to crawl and index url.
func (c *Client) IngestURL(ctx context.Context, url string) (IngestResult, error) {
	rid := uuid.NewString()
	start := time.Now()
	c.log.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindIngestStart, Comp: "backend", RequestID: rid, Msg: url})

	body, err := json.Marshal(ingestRequest{URL: url})
	if err != nil {
		return IngestResult{}, fmt.Errorf("backend: marshal ingest request: %w", err)
	}

	var out IngestResult
	err = c.postJSON(ctx, "/ingestion", body, &out)
	if err == nil && out.CollectionName == "" {
		err = ErrMissingCollection
	}
	if err != nil {
		c.log.Since(start, otel.Event{Kind: otel.KindIngestError, Comp: "backend", RequestID: rid, Msg: url, Err: err.Error()})
		return IngestResult{}, err
	}
	c.log.Since(start, otel.Event{Kind: otel.KindIngestComplete, Comp: "backend", RequestID: rid, Collection: out.CollectionName})
	return out, nil
}

// IngestFile uploads a PDF as multipart form field "file".
func (c *Client) IngestFile(ctx context.Context, fileName string, r io.Reader) (FileIngestResult, error) {
	rid := uuid.NewString()
	start := time.Now()
	c.log.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindUploadStart, Comp: "backend", RequestID: rid, Msg: fileName})

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", fileName)
	if err != nil {
		return FileIngestResult{}, fmt.Errorf("backend: create form file: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return FileIngestResult{}, fmt.Errorf("backend: read upload: %w", err)
	}
	if err := writer.Close(); err != nil {
		return FileIngestResult{}, fmt.Errorf("backend: close multipart: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/ingestfile", body)
	if err != nil {
		return FileIngestResult{}, fmt.Errorf("backend: create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	var out FileIngestResult
	err = c.do(req, &out)
	if err == nil && out.CollectionName == "" {
		err = ErrMissingCollection
	}
	if err != nil {
		c.log.Since(start, otel.Event{Kind: otel.KindUploadError, Comp: "backend", RequestID: rid, Msg: fileName, Err: err.Error()})
		return FileIngestResult{}, err
	}
	c.log.Since(start, otel.Event{Kind: otel.KindUploadComplete, Comp: "backend", RequestID: rid, Collection: out.CollectionName, Count: out.ChunksCreated})
	return out, nil
}

// Query asks a question scoped to collectionName. An empty answer is not an
// error; callers decide what to show for it.
func (c *Client) Query(ctx context.Context, query, collectionName string) (string, error) {
	rid := uuid.NewString()
	start := time.Now()
	c.log.Emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindQueryStart, Comp: "backend", RequestID: rid, Collection: collectionName})

	body, err := json.Marshal(queryRequest{Query: query, CollectionName: collectionName})
	if err != nil {
		return "", fmt.Errorf("backend: marshal query: %w", err)
	}

	var out queryResponse
	if err := c.postJSON(ctx, "/query", body, &out); err != nil {
		c.log.Since(start, otel.Event{Kind: otel.KindQueryError, Comp: "backend", RequestID: rid, Collection: collectionName, Err: err.Error()})
		return "", err
	}
	c.log.Since(start, otel.Event{Kind: otel.KindQueryComplete, Comp: "backend", RequestID: rid, Collection: collectionName, Count: len(out.Response)})
	return out.Response, nil
}

// Health returns the backend's reported status, normally "OK".
func (c *Client) Health(ctx context.Context) (string, error) {
	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return "", fmt.Errorf("backend: create request: %w", err)
	}
	var out healthResponse
	err = c.do(req, &out)
	ev := otel.Event{Kind: otel.KindHealth, Comp: "backend", Msg: out.Status}
	if err != nil {
		ev.Err = err.Error()
	}
	c.log.Since(start, ev)
	return out.Status, err
}

func (c *Client) postJSON(ctx context.Context, path string, body []byte, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("backend: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	if err := c.limiter.Wait(req.Context()); err != nil {
		return fmt.Errorf("backend: rate limiter wait failed: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		if ctx := req.Context(); ctx.Err() != nil {
			return fmt.Errorf("backend: request cancelled: %w", ctx.Err())
		}
		return fmt.Errorf("backend: request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("backend: read response: %w", err)
	}

	var eb errorBody
	_ = json.Unmarshal(data, &eb)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := eb.message()
		if msg == "" {
			msg = strings.TrimSpace(string(data))
		}
		if msg == "" {
			msg = resp.Status
		}
		return &APIError{Status: resp.StatusCode, Message: msg}
	}
	if eb.Error != "" {
		return &APIError{Status: resp.StatusCode, Message: eb.Error}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("backend: parse response: %w", err)
	}
	return nil
}
