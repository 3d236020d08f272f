//
// SPDX-License-Identifier: GPL-3.0-or-later
//
// Adapted from: https://github.com/rbmk-project/rbmk/blob/v0.17.0/pkg/common/httpslog/httpslog.go
//

package httpobs

import (
	"log/slog"
	"mime"
	"net"
	"net/http"
	"net/http/httptrace"
	"strings"
	"sync"
	"time"

	"github.com/bassosimone/safeconn"
)

// Transport is an [http.RoundTripper] that observes the round trips
// performed by an underlying transport according to a [*Config].
//
// For each request, Transport first consults [*Config.ShouldIntercept]; excluded
// requests go straight to the underlying transport. For observed requests,
// httpObserveStart/httpObserveDone span events are emitted around the round
// trip, and the request and response bodies are captured as they stream
// (up to [Config.MaxBodySize] each). When the caller closes the response body,
// both bodies are rendered with [*Config.DecodeBody] and the resulting
// [*Exchange] is reported to the current [Sink]. Failed round trips are
// reported immediately.
//
// Construct using [NewTransport] or install with [*Config.Enable].
type Transport struct {
	// Base is the underlying transport performing the actual round trips.
	Base http.RoundTripper

	// Config is the observation configuration.
	Config *Config
}

// NewTransport returns a new [*Transport] observing base according to cfg.
func NewTransport(cfg *Config, base http.RoundTripper) *Transport {
	return &Transport{Base: base, Config: cfg}
}

var _ http.RoundTripper = &Transport{}

// CloseIdleConnections closes the idle connections of the underlying
// transport, when it supports doing that. This is what allows
// [*http.Client.CloseIdleConnections] to reach through the wrapper.
func (txp *Transport) CloseIdleConnections() {
	type closeIdler interface {
		CloseIdleConnections()
	}
	if ci, ok := txp.Base.(closeIdler); ok {
		ci.CloseIdleConnections()
	}
}

// RoundTrip implements [http.RoundTripper].
func (txp *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	cfg := txp.Config

	// 1. Let exclusion predicates veto the observation
	if !cfg.ShouldIntercept(req) {
		cfg.Logger.Debug(
			"httpObserveSkip",
			slog.String("httpMethod", req.Method),
			slog.String("httpUrl", req.URL.String()),
			slog.Time("t", cfg.TimeNow()),
		)
		return txp.Base.RoundTrip(req)
	}

	// 2. Prepare the span and capture the request body, if any
	spanID := cfg.NewSpanID()
	t0 := cfg.TimeNow()
	orig := req
	var reqBody *httpBodyWrapper
	if req.Body != nil && req.Body != http.NoBody {
		req = req.Clone(req.Context())
		reqBody = httpBodyWrap(req.Body, "request", cfg.ErrClassifier,
			cfg.MaxBodySize, cfg.Logger, nil, spanID, cfg.TimeNow)
		req.Body = reqBody
	}

	// 3. Learn which connection serves the request for logging metadata
	tracer := &connTracer{}
	req = req.WithContext(httptrace.WithClientTrace(req.Context(), tracer.clientTrace()))
	httpLogObserveStart(cfg, spanID, orig, t0)

	// 4. Perform the round trip
	resp, err := txp.Base.RoundTrip(req)
	httpLogObserveDone(cfg, spanID, orig, tracer.conn(), t0, resp, err)

	// 5. On error, report and return immediately
	if err != nil {
		cfg.report(&Exchange{
			SpanID:              spanID,
			Request:             orig,
			Err:                 err,
			RenderedRequestBody: txp.render(spanID, reqBody, orig.Header),
			T0:                  t0,
			T:                   cfg.TimeNow(),
		})
		return nil, err
	}

	// 6. Protocol upgrades hand the body over as a raw stream
	if resp.StatusCode == http.StatusSwitchingProtocols {
		cfg.report(&Exchange{
			SpanID:              spanID,
			Request:             orig,
			Response:            resp,
			RenderedRequestBody: txp.render(spanID, reqBody, orig.Header),
			T0:                  t0,
			T:                   cfg.TimeNow(),
		})
		return resp, nil
	}

	// 7. Report lazily once the caller is done with the response body
	resp.Body = httpBodyWrap(resp.Body, "response", cfg.ErrClassifier,
		cfg.MaxBodySize, cfg.Logger, func(body *httpBodyWrapper) {
			captured := body.Captured()
			contentType := httpMediaType(resp.Header, captured)
			rendered := ""
			if len(captured) > 0 {
				rendered = txp.decode(spanID, captured, contentType)
			}
			cfg.report(&Exchange{
				SpanID:              spanID,
				Request:             orig,
				Response:            resp,
				RenderedBody:        rendered,
				RenderedRequestBody: txp.render(spanID, reqBody, orig.Header),
				BodySize:            len(captured),
				BodyTruncated:       body.Truncated(),
				ContentType:         contentType,
				T0:                  t0,
				T:                   cfg.TimeNow(),
			})
		}, spanID, cfg.TimeNow)
	return resp, nil
}

// render decodes the captured request body, if any.
func (txp *Transport) render(spanID string, body *httpBodyWrapper, header http.Header) string {
	if body == nil {
		return ""
	}
	captured := body.Captured()
	if len(captured) <= 0 {
		return ""
	}
	return txp.decode(spanID, captured, httpMediaType(header, captured))
}

// decode renders a captured body, logging why it could not do that.
func (txp *Transport) decode(spanID string, body []byte, contentType string) string {
	cfg := txp.Config
	text, found, err := cfg.decodeBody(body, contentType)
	if err != nil && found {
		cfg.Logger.Debug(
			"httpBodyDecodeFailed",
			slog.String("contentType", contentType),
			slog.Any("err", err),
			slog.String("errClass", cfg.ErrClassifier.Classify(err)),
			slog.String("spanID", spanID),
			slog.Time("t", cfg.TimeNow()),
		)
	}
	return text
}

// httpMediaType returns the lowercase media type declared by header without
// parameters, falling back to sniffing the captured bytes when the header is
// missing or unparsable.
func httpMediaType(header http.Header, captured []byte) string {
	if mediaType, _, err := mime.ParseMediaType(header.Get("Content-Type")); err == nil {
		return mediaType
	}
	if len(captured) <= 0 {
		return ""
	}
	sniffed := http.DetectContentType(captured)
	mediaType, _, _ := strings.Cut(sniffed, ";")
	return strings.TrimSpace(mediaType)
}

// connTracer records the connection serving a request.
type connTracer struct {
	mu sync.Mutex
	c  net.Conn
}

func (ct *connTracer) clientTrace() *httptrace.ClientTrace {
	return &httptrace.ClientTrace{
		GotConn: func(info httptrace.GotConnInfo) {
			ct.mu.Lock()
			ct.c = info.Conn
			ct.mu.Unlock()
		},
	}
}

func (ct *connTracer) conn() net.Conn {
	ct.mu.Lock()
	defer ct.mu.Unlock()
	return ct.c
}

// httpConnFields returns the logging fields describing conn, which may be nil
// when the underlying transport does not report connections.
func httpConnFields(conn net.Conn) []any {
	if conn == nil {
		return []any{
			slog.String("localAddr", ""),
			slog.String("protocol", ""),
			slog.String("remoteAddr", ""),
		}
	}
	return []any{
		slog.String("localAddr", safeconn.LocalAddr(conn)),
		slog.String("protocol", safeconn.Network(conn)),
		slog.String("remoteAddr", safeconn.RemoteAddr(conn)),
	}
}

func httpLogObserveStart(cfg *Config, spanID string, req *http.Request, t0 time.Time) {
	deadline, _ := req.Context().Deadline()
	cfg.Logger.Info(
		"httpObserveStart",
		slog.Time("deadline", deadline),
		slog.String("httpMethod", req.Method),
		slog.String("httpUrl", req.URL.String()),
		slog.Any("httpRequestHeaders", req.Header),
		slog.String("spanID", spanID),
		slog.Time("t", t0),
	)
}

func httpLogObserveDone(cfg *Config, spanID string, req *http.Request, conn net.Conn,
	t0 time.Time, resp *http.Response, err error) {
	var (
		statusCode int
		headers    http.Header
	)
	if resp != nil {
		statusCode = resp.StatusCode
		headers = resp.Header
	}
	deadline, _ := req.Context().Deadline()
	args := []any{
		slog.Time("deadline", deadline),
		slog.Any("err", err),
		slog.String("errClass", cfg.ErrClassifier.Classify(err)),
		slog.String("httpMethod", req.Method),
		slog.String("httpUrl", req.URL.String()),
		slog.Any("httpRequestHeaders", req.Header),
		slog.Any("httpResponseHeaders", headers),
		slog.Int("httpResponseStatusCode", statusCode),
	}
	args = append(args, httpConnFields(conn)...)
	args = append(args,
		slog.String("spanID", spanID),
		slog.Time("t0", t0),
		slog.Time("t", cfg.TimeNow()),
	)
	cfg.Logger.Info("httpObserveDone", args...)
}
