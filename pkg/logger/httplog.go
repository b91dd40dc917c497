package logger

import (
	"log/slog"
	"os"
	"sync"
	"time"
)

// HTTPLogger writes one line per request to a dedicated access log file.
// When HTTP_LOG_FILE is unset it is a no-op; request logging still goes to
// the main logger via the echo middleware.
type HTTPLogger struct {
	mu  sync.Mutex
	log *slog.Logger
}

// NewHTTPLogger creates the access logger, appending to HTTP_LOG_FILE if set.
func NewHTTPLogger() *HTTPLogger {
	path := os.Getenv("HTTP_LOG_FILE")
	if path == "" {
		return &HTTPLogger{}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return &HTTPLogger{}
	}

	return &HTTPLogger{log: slog.New(slog.NewJSONHandler(f, nil))}
}

// LogRequest records a completed HTTP request.
func (h *HTTPLogger) LogRequest(ip, method, uri string, status int, latency time.Duration, userAgent, requestID string) {
	if h.log == nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.log.Info("request",
		slog.String("ip", ip),
		slog.String("method", method),
		slog.String("uri", uri),
		slog.Int("status", status),
		slog.Duration("latency", latency),
		slog.String("user_agent", userAgent),
		slog.String("request_id", requestID),
	)
}
