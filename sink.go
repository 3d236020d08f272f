// SPDX-License-Identifier: GPL-3.0-or-later

package httpobs

import (
	"fmt"
	"io"
	"log/slog"
	"maps"
	"net/http"
	"os"
	"slices"
	"strings"
	"sync"
	"time"
)

// Exchange is an observed request/response pair, ready for reporting.
type Exchange struct {
	// SpanID identifies this exchange in structured logs.
	SpanID string

	// Request is the observed request. Its body has already been consumed.
	Request *http.Request

	// Response is the observed response, or nil when Err is set. Its body
	// has already been consumed.
	Response *http.Response

	// Err is the round trip error, if any.
	Err error

	// RenderedBody is the decoded response body. It is empty when the body
	// is empty or when no decoder could render it.
	RenderedBody string

	// RenderedRequestBody is the decoded request body, following the same
	// rules as RenderedBody.
	RenderedRequestBody string

	// BodySize is the number of response body bytes captured.
	BodySize int

	// BodyTruncated is true when the response body exceeded the capture limit.
	BodyTruncated bool

	// ContentType is the normalized response media type used for decoding.
	ContentType string

	// T0 is when the round trip started.
	T0 time.Time

	// T is when the response body was closed or the round trip failed.
	T time.Time
}

// Sink receives observed exchanges.
//
// Implementations must be safe for concurrent use: exchanges from parallel
// requests are reported from the goroutines closing the response bodies.
type Sink interface {
	Report(ex *Exchange)
}

// SinkFunc adapts a function to the [Sink] interface.
type SinkFunc func(ex *Exchange)

var _ Sink = SinkFunc(nil)

// Report implements [Sink].
func (f SinkFunc) Report(ex *Exchange) {
	f(ex)
}

// DefaultSink returns the [Sink] installed by [NewConfig] and [*Config.Reset]:
// a [*ConsoleSink] writing to [os.Stdout].
func DefaultSink() Sink {
	return NewConsoleSink(os.Stdout)
}

// ConsoleSink writes a human-readable transcript of each exchange.
//
// Construct using [NewConsoleSink].
type ConsoleSink struct {
	// mu serializes writes so transcripts do not interleave.
	mu sync.Mutex

	// w is where we write.
	w io.Writer
}

// NewConsoleSink returns a [*ConsoleSink] writing to w.
func NewConsoleSink(w io.Writer) *ConsoleSink {
	return &ConsoleSink{w: w}
}

var _ Sink = &ConsoleSink{}

// Report implements [Sink].
func (s *ConsoleSink) Report(ex *Exchange) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "--- %s\n", ex.SpanID)
	if req := ex.Request; req != nil {
		fmt.Fprintf(&sb, "> %s %s\n", req.Method, req.URL)
		consoleWriteHeaders(&sb, "> ", req.Header)
		consoleWriteBody(&sb, ex.RenderedRequestBody)
	}
	switch {
	case ex.Err != nil:
		fmt.Fprintf(&sb, "! %s\n", ex.Err.Error())
	case ex.Response != nil:
		fmt.Fprintf(&sb, "< %s\n", ex.Response.Status)
		consoleWriteHeaders(&sb, "< ", ex.Response.Header)
		switch {
		case ex.RenderedBody != "":
			consoleWriteBody(&sb, ex.RenderedBody)
		case ex.BodySize > 0:
			fmt.Fprintf(&sb, "[%d bytes of %q not rendered]\n", ex.BodySize, ex.ContentType)
		}
		if ex.BodyTruncated {
			sb.WriteString("[body truncated]\n")
		}
	}
	if !ex.T0.IsZero() && !ex.T.IsZero() {
		fmt.Fprintf(&sb, "--- %s\n", ex.T.Sub(ex.T0))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	io.WriteString(s.w, sb.String())
}

func consoleWriteHeaders(sb *strings.Builder, prefix string, header http.Header) {
	for _, name := range slices.Sorted(maps.Keys(header)) {
		for _, value := range header[name] {
			fmt.Fprintf(sb, "%s%s: %s\n", prefix, name, value)
		}
	}
}

func consoleWriteBody(sb *strings.Builder, body string) {
	if body == "" {
		return
	}
	sb.WriteString("\n")
	sb.WriteString(body)
	if !strings.HasSuffix(body, "\n") {
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
}

// SlogSink reports each exchange as a single httpExchange structured
// event emitted at [slog.LevelInfo].
//
// Construct using [NewSlogSink].
type SlogSink struct {
	// ErrClassifier classifies round trip errors.
	//
	// Set by [NewSlogSink] from [Config.ErrClassifier].
	ErrClassifier ErrClassifier

	// Logger is the [SLogger] to use.
	//
	// Set by [NewSlogSink] to the user-provided logger.
	Logger SLogger
}

// NewSlogSink returns a new [*SlogSink].
func NewSlogSink(cfg *Config, logger SLogger) *SlogSink {
	return &SlogSink{ErrClassifier: cfg.ErrClassifier, Logger: logger}
}

var _ Sink = &SlogSink{}

// Report implements [Sink].
func (s *SlogSink) Report(ex *Exchange) {
	var (
		method, url string
		statusCode  int
		reqHeaders  http.Header
		respHeaders http.Header
	)
	if ex.Request != nil {
		method, reqHeaders = ex.Request.Method, ex.Request.Header
		if ex.Request.URL != nil {
			url = ex.Request.URL.String()
		}
	}
	if ex.Response != nil {
		statusCode, respHeaders = ex.Response.StatusCode, ex.Response.Header
	}
	s.Logger.Info(
		"httpExchange",
		slog.String("spanID", ex.SpanID),
		slog.Any("err", ex.Err),
		slog.String("errClass", s.ErrClassifier.Classify(ex.Err)),
		slog.String("httpMethod", method),
		slog.String("httpUrl", url),
		slog.Any("httpRequestHeaders", reqHeaders),
		slog.String("httpRequestBody", ex.RenderedRequestBody),
		slog.Any("httpResponseHeaders", respHeaders),
		slog.Int("httpResponseStatusCode", statusCode),
		slog.String("httpResponseContentType", ex.ContentType),
		slog.String("httpResponseBody", ex.RenderedBody),
		slog.Int("httpResponseBodySize", ex.BodySize),
		slog.Bool("httpResponseBodyTruncated", ex.BodyTruncated),
		slog.Time("t0", ex.T0),
		slog.Time("t", ex.T),
	)
}
