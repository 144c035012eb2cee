package researchapi

import (
	"net/http"
	"time"

	"research-client/internal/application/port/output"
)

type loggingTransport struct {
	base   http.RoundTripper
	logger output.LoggerPort
}

func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	t.logger.Debug("HTTP request",
		"method", req.Method,
		"url", req.URL.String(),
		"requestID", req.Header.Get(requestIDHeader),
	)

	resp, err := t.base.RoundTrip(req)
	if err != nil {
		t.logger.Debug("HTTP request failed",
			"method", req.Method,
			"url", req.URL.String(),
			"durationMs", time.Since(start).Milliseconds(),
			"error", err,
		)
		return nil, err
	}

	t.logger.Debug("HTTP response",
		"method", req.Method,
		"url", req.URL.String(),
		"status", resp.Status,
		"durationMs", time.Since(start).Milliseconds(),
	)
	return resp, nil
}
