package researchapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"research-client/internal/application/port/output"
	"research-client/internal/domain/entity"

	"github.com/google/uuid"
)

var _ output.ResearchServicePort = (*Client)(nil)

const (
	defaultShortTimeout = 30 * time.Second
	defaultLongTimeout  = 10 * time.Minute
	maxResponseBytes    = int64(8 << 20)
	requestIDHeader     = "X-Request-ID"
)

type Config struct {
	BaseURL string
	// ShortTimeout bounds status and results calls.
	ShortTimeout time.Duration
	// LongTimeout bounds calls that kick off backend work: start and resume.
	LongTimeout time.Duration
	HTTPClient  *http.Client
	Logger      output.LoggerPort
}

func DefaultConfig(baseURL string) Config {
	return Config{
		BaseURL:      baseURL,
		ShortTimeout: defaultShortTimeout,
		LongTimeout:  defaultLongTimeout,
	}
}

type Client struct {
	baseURL      string
	httpClient   *http.Client
	shortTimeout time.Duration
	longTimeout  time.Duration
}

type call struct {
	op      string
	method  string
	path    string
	body    any
	timeout time.Duration
}

func NewClient(cfg Config) *Client {
	short := cfg.ShortTimeout
	if short <= 0 {
		short = defaultShortTimeout
	}
	long := cfg.LongTimeout
	if long <= 0 {
		long = defaultLongTimeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if cfg.Logger != nil {
		base := httpClient.Transport
		if base == nil {
			base = http.DefaultTransport
		}
		wrapped := *httpClient
		wrapped.Transport = &loggingTransport{base: base, logger: cfg.Logger}
		httpClient = &wrapped
	}

	return &Client{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		httpClient:   httpClient,
		shortTimeout: short,
		longTimeout:  long,
	}
}

func (c *Client) StartResearch(ctx context.Context, req entity.ResearchRequest) (*entity.TaskHandle, error) {
	var handle entity.TaskHandle
	err := c.do(ctx, call{
		op:      "start research",
		method:  http.MethodPost,
		path:    "/research",
		body:    req,
		timeout: c.longTimeout,
	}, &handle)
	if err != nil {
		return nil, err
	}
	if handle.TaskID == "" {
		return nil, fmt.Errorf("start research: response has no task_id")
	}
	return &handle, nil
}

func (c *Client) GetTaskStatus(ctx context.Context, taskID entity.TaskID) (*entity.TaskState, error) {
	var state entity.TaskState
	err := c.do(ctx, call{
		op:      "get task status",
		method:  http.MethodGet,
		path:    "/status/" + url.PathEscape(taskID.String()),
		timeout: c.shortTimeout,
	}, &state)
	if err != nil {
		return nil, err
	}
	return &state, nil
}

func (c *Client) ResumeTask(ctx context.Context, taskID entity.TaskID, questions []string) (*entity.ResumeAck, error) {
	var ack entity.ResumeAck
	err := c.do(ctx, call{
		op:      "resume task",
		method:  http.MethodPost,
		path:    "/resume/" + url.PathEscape(taskID.String()),
		body:    entity.ResumeRequest{ResearchQuestions: questions},
		timeout: c.longTimeout,
	}, &ack)
	if err != nil {
		return nil, err
	}
	return &ack, nil
}

func (c *Client) GetResults(ctx context.Context, taskID entity.TaskID) (*entity.Report, error) {
	op := "get results"
	data, err := c.roundTrip(ctx, call{
		op:      op,
		method:  http.MethodGet,
		path:    "/results/" + url.PathEscape(taskID.String()),
		timeout: c.shortTimeout,
	})
	if err != nil {
		return nil, err
	}

	report, err := entity.DecodeReport(data)
	if err != nil {
		return nil, fmt.Errorf("%s: decode response: %w", op, err)
	}
	return report, nil
}

func (c *Client) do(ctx context.Context, cl call, out any) error {
	data, err := c.roundTrip(ctx, cl)
	if err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s: decode response: %w", cl.op, err)
	}
	return nil
}

// roundTrip runs one request under its own deadline. The deferred cancel
// releases the deadline timer on every return path.
func (c *Client) roundTrip(ctx context.Context, cl call) ([]byte, error) {
	callCtx, cancel := context.WithTimeout(ctx, cl.timeout)
	defer cancel()

	var body io.Reader
	if cl.body != nil {
		payload, err := json.Marshal(cl.body)
		if err != nil {
			return nil, fmt.Errorf("%s: marshal request: %w", cl.op, err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(callCtx, cl.method, c.baseURL+cl.path, body)
	if err != nil {
		return nil, fmt.Errorf("%s: create request: %w", cl.op, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(requestIDHeader, uuid.NewString())
	if cl.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cl.method == http.MethodGet {
		req.Header.Set("Cache-Control", "no-store")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, classify(ctx, callCtx, cl, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		return nil, classify(ctx, callCtx, cl, err)
	}
	if int64(len(data)) > maxResponseBytes {
		return nil, &entity.ResponseTooLargeError{Op: cl.op, Limit: maxResponseBytes}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &entity.HTTPError{
			Op:         cl.op,
			StatusCode: resp.StatusCode,
			StatusText: statusText(resp),
		}
	}

	return data, nil
}

// classify separates our own per-call deadline from everything else. A
// cancelled or expired caller context is reported as a network error that
// still unwraps to the context error.
func classify(parent, callCtx context.Context, cl call, err error) error {
	if parent.Err() == nil && errors.Is(callCtx.Err(), context.DeadlineExceeded) {
		return &entity.TimeoutError{Op: cl.op, Duration: cl.timeout}
	}
	return &entity.NetworkError{Op: cl.op, Err: err}
}

func statusText(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	if text == "" {
		text = resp.Status
	}
	return text
}
