// SPDX-License-Identifier: GPL-3.0-or-later

package httpobs

import (
	"bytes"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestExchange(t *testing.T) *Exchange {
	req := newTestRequest(t, "POST", "https://example.com/api")
	req.Header.Set("Content-Type", "application/json")
	t0 := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	return &Exchange{
		SpanID:  "span-0",
		Request: req,
		Response: &http.Response{
			Status:     "200 OK",
			StatusCode: 200,
			Header:     http.Header{"Content-Type": {"text/plain"}, "X-B": {"2"}, "X-A": {"1"}},
		},
		RenderedRequestBody: `{"a": 1}`,
		RenderedBody:        "pong",
		BodySize:            4,
		ContentType:         "text/plain",
		T0:                  t0,
		T:                   t0.Add(1500 * time.Millisecond),
	}
}

func TestDefaultSink(t *testing.T) {
	_, ok := DefaultSink().(*ConsoleSink)
	assert.True(t, ok)
}

func TestSinkFunc(t *testing.T) {
	var got *Exchange
	sink := SinkFunc(func(ex *Exchange) { got = ex })
	ex := &Exchange{SpanID: "x"}

	sink.Report(ex)

	assert.Same(t, ex, got)
}

func TestConsoleSink(t *testing.T) {
	t.Run("successful exchange", func(t *testing.T) {
		var buf bytes.Buffer
		NewConsoleSink(&buf).Report(newTestExchange(t))

		want := "--- span-0\n" +
			"> POST https://example.com/api\n" +
			"> Content-Type: application/json\n" +
			"\n{\"a\": 1}\n\n" +
			"< 200 OK\n" +
			"< Content-Type: text/plain\n" +
			"< X-A: 1\n" +
			"< X-B: 2\n" +
			"\npong\n\n" +
			"--- 1.5s\n"
		assert.Equal(t, want, buf.String())
	})

	t.Run("body not rendered and truncated", func(t *testing.T) {
		var buf bytes.Buffer
		ex := newTestExchange(t)
		ex.RenderedBody = ""
		ex.BodyTruncated = true
		ex.ContentType = "application/octet-stream"

		NewConsoleSink(&buf).Report(ex)

		assert.Contains(t, buf.String(), "[4 bytes of \"application/octet-stream\" not rendered]\n[body truncated]\n")
	})

	t.Run("failed exchange", func(t *testing.T) {
		var buf bytes.Buffer
		ex := newTestExchange(t)
		ex.Response = nil
		ex.Err = errors.New("connection refused")

		NewConsoleSink(&buf).Report(ex)

		assert.Contains(t, buf.String(), "! connection refused\n")
		assert.NotContains(t, buf.String(), "< ")
	})
}

func TestSlogSink(t *testing.T) {
	logger, records := newCapturingLogger()
	sink := NewSlogSink(NewConfig(), logger)

	sink.Report(newTestExchange(t))

	require.Len(t, *records, 1)
	record := (*records)[0]
	assert.Equal(t, "httpExchange", record.Message)

	expect := map[string]string{
		"spanID":                  "span-0",
		"httpMethod":              "POST",
		"httpUrl":                 "https://example.com/api",
		"httpRequestBody":         `{"a": 1}`,
		"httpResponseContentType": "text/plain",
		"httpResponseBody":        "pong",
		"errClass":                "",
	}
	for name, want := range expect {
		value, found := recordAttr(record, name)
		require.True(t, found, name)
		assert.Equal(t, want, value.String(), name)
	}
	status, found := recordAttr(record, "httpResponseStatusCode")
	require.True(t, found)
	assert.Equal(t, int64(200), status.Int64())
}

// Reporting an exchange without request or response must not panic.
func TestSlogSinkEmptyExchange(t *testing.T) {
	logger, records := newCapturingLogger()
	NewSlogSink(NewConfig(), logger).Report(&Exchange{Err: errors.New("x")})
	require.Len(t, *records, 1)
}
