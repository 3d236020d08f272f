// SPDX-License-Identifier: GPL-3.0-or-later

package httpobs

import (
	"bytes"
	"log/slog"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSLogger(t *testing.T) {
	logger := DefaultSLogger()

	// Should return a non-nil logger
	assert.NotNil(t, logger)

	// Should be able to call Debug and Info without panic (discards output)
	logger.Debug("debug message", "key", "value")
	logger.Info("info message", "key", "value")
}

func TestDiscardSLogger(t *testing.T) {
	logger := discardSLogger{}

	// Verify it implements SLogger
	var _ SLogger = logger

	// Should be able to call Debug and Info without panic (discards output)
	logger.Debug("debug message", "key1", "value1", "key2", 42)
	logger.Info("info message", "key1", "value1", "key2", 42)
}

// A *slog.Logger receives the transport events at the documented levels.
func TestSLoggerWithTransportEvents(t *testing.T) {
	run := func(level slog.Level) string {
		var buf bytes.Buffer
		cfg := NewConfig()
		cfg.SetSink(SinkFunc(func(*Exchange) {}))
		cfg.Logger = slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: level}))
		cfg.IgnoreRequestsMatching(MethodPredicate("HEAD"))
		txp := NewTransport(cfg, funcRoundTripper(func(req *http.Request) (*http.Response, error) {
			return &http.Response{StatusCode: 200, Header: http.Header{}, Body: http.NoBody}, nil
		}))

		for _, method := range []string{"HEAD", "GET"} {
			req, err := http.NewRequest(method, "https://example.com/", nil)
			require.NoError(t, err)
			resp, err := txp.RoundTrip(req)
			require.NoError(t, err)
			require.NoError(t, resp.Body.Close())
		}
		return buf.String()
	}

	t.Run("debug", func(t *testing.T) {
		out := run(slog.LevelDebug)
		assert.Contains(t, out, "level=DEBUG msg=httpObserveSkip httpMethod=HEAD")
		assert.Contains(t, out, "level=INFO msg=httpObserveStart")
		assert.Contains(t, out, "level=INFO msg=httpObserveDone")
	})

	t.Run("info", func(t *testing.T) {
		out := run(slog.LevelInfo)
		assert.NotContains(t, out, "httpObserveSkip")
		assert.Contains(t, out, "msg=httpObserveStart")
	})
}
