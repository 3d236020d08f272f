// SPDX-License-Identifier: GPL-3.0-or-later

package httpobs

import (
	"bytes"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// httpBodyWrap wraps an HTTP body so that it captures up to limit bytes
// while the owner reads it, and so that we emit structured log events
// lazily: httpBodyStreamStart on the first Read, and httpBodyStreamDone
// on Close (only if at least one Read happened).
//
// The onClose callback, if not nil, runs once after the underlying body
// has been closed.
func httpBodyWrap(
	body io.ReadCloser,
	direction string,
	errClass ErrClassifier,
	limit int64,
	logger SLogger,
	onClose func(b *httpBodyWrapper),
	spanID string,
	timeNow func() time.Time,
) *httpBodyWrapper {
	return &httpBodyWrapper{
		body:      body,
		buf:       bytes.Buffer{},
		closeOnce: sync.Once{},
		didRead:   atomic.Bool{},
		direction: direction,
		errClass:  errClass,
		limit:     limit,
		logger:    logger,
		mu:        sync.Mutex{},
		onClose:   onClose,
		readOnce:  sync.Once{},
		spanID:    spanID,
		timeNow:   timeNow,
		truncated: false,
		t0:        time.Time{},
	}
}

type httpBodyWrapper struct {
	// body is the actual body.
	body io.ReadCloser

	// buf contains the captured bytes.
	buf bytes.Buffer

	// closeOnce ensures that Close has "once" semantics.
	closeOnce sync.Once

	// didRead tracks whether at least one Read happened.
	didRead atomic.Bool

	// direction is either "request" or "response".
	direction string

	// errClass is the err classifier in use.
	errClass ErrClassifier

	// limit is the maximum number of bytes to capture.
	limit int64

	// logger is the [SLogger] in use.
	logger SLogger

	// mu protects buf and truncated, since the transport may read or
	// close a body from a goroutine other than the owner's.
	mu sync.Mutex

	// onClose is the optional callback invoked by Close.
	onClose func(b *httpBodyWrapper)

	// readOnce ensures we log httpBodyStreamStart only once.
	readOnce sync.Once

	// spanID is the span ID of the exchange.
	spanID string

	// timeNow mocks [time.Now].
	timeNow func() time.Time

	// truncated is set when the body exceeded limit.
	truncated bool

	// t0 is the time when we started reading the body.
	t0 time.Time
}

var _ io.ReadCloser = &httpBodyWrapper{}

// Close implements [io.ReadCloser].
func (b *httpBodyWrapper) Close() (err error) {
	b.closeOnce.Do(func() {
		err = b.body.Close()
		if b.didRead.Load() { // acquire: t0 is visible if this returns true
			b.logger.Debug(
				"httpBodyStreamDone",
				slog.Any("err", err),
				slog.String("errClass", b.errClass.Classify(err)),
				slog.String("httpBody", b.direction),
				slog.Int("httpBodySize", len(b.Captured())),
				slog.String("spanID", b.spanID),
				slog.Time("t0", b.t0),
				slog.Time("t", b.timeNow()),
			)
		}
		if b.onClose != nil {
			b.onClose(b)
		}
	})
	return
}

// Read implements [io.ReadCloser].
func (b *httpBodyWrapper) Read(buffer []byte) (int, error) {
	b.readOnce.Do(func() {
		b.t0 = b.timeNow()    // write t0 BEFORE the atomic store (release)
		b.didRead.Store(true) // release: makes t0 visible to Close
		b.logger.Debug(
			"httpBodyStreamStart",
			slog.String("httpBody", b.direction),
			slog.String("spanID", b.spanID),
			slog.Time("t", b.t0),
		)
	})
	count, err := b.body.Read(buffer)
	if count > 0 {
		b.capture(buffer[:count])
	}
	return count, err
}

func (b *httpBodyWrapper) capture(data []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if room := b.limit - int64(b.buf.Len()); int64(len(data)) > room {
		data = data[:max(room, 0)]
		b.truncated = true
	}
	b.buf.Write(data)
}

// Captured returns a copy of the bytes captured so far.
func (b *httpBodyWrapper) Captured() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return bytes.Clone(b.buf.Bytes())
}

// Truncated reports whether the body exceeded the capture limit.
func (b *httpBodyWrapper) Truncated() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.truncated
}
