// SPDX-License-Identifier: GPL-3.0-or-later

package httpobs

import (
	"net/http"
	"sync"
	"time"
)

// DefaultMaxBodySize is the default per-body capture limit in bytes.
const DefaultMaxBodySize = 1 << 20

// Config is the observation configuration shared by every [*Transport].
//
// It owns the output [Sink], the interception [*Gate] and the
// [*DecoderRegistry], and it is the only place where they change. A single
// read-write lock guards all three: interception checks and decoding may
// run concurrently with each other, while registration and reset are
// exclusive. Decoders and predicates run while the lock is held and must
// not call back into the Config that invoked them.
//
// The exported fields hold the ambient dependencies. They are safe to modify
// after construction but before first use and must not be mutated afterwards.
//
// Construct using [NewConfig].
type Config struct {
	// DefaultSink returns the [Sink] installed by [NewConfig] and [*Config.Reset].
	//
	// Set by [NewConfig] to [DefaultSink].
	DefaultSink func() Sink

	// ErrClassifier classifies errors for structured logging.
	//
	// Set by [NewConfig] to [DefaultErrClassifier].
	ErrClassifier ErrClassifier

	// Logger is the [SLogger] used by [*Transport].
	//
	// Set by [NewConfig] to [DefaultSLogger].
	Logger SLogger

	// MaxBodySize is the maximum number of bytes captured per body. Bytes
	// past the limit still reach the caller but are not decoded.
	//
	// Set by [NewConfig] to [DefaultMaxBodySize].
	MaxBodySize int64

	// NewSpanID returns the identifier of each observed exchange.
	//
	// Set by [NewConfig] to [NewSpanID].
	NewSpanID func() string

	// TimeNow returns the current time.
	//
	// Set by [NewConfig] to [time.Now].
	TimeNow func() time.Time

	// mu guards sink, gate and registry.
	mu sync.RWMutex

	// sink receives observed exchanges.
	sink Sink

	// gate holds the exclusion predicates.
	gate *Gate

	// registry maps content types to decoders.
	registry *DecoderRegistry
}

// NewConfig creates a [*Config] with sensible defaults: the default sink,
// no exclusion predicates and the built-in decoders.
func NewConfig() *Config {
	return &Config{
		DefaultSink:   DefaultSink,
		ErrClassifier: DefaultErrClassifier,
		Logger:        DefaultSLogger(),
		MaxBodySize:   DefaultMaxBodySize,
		NewSpanID:     NewSpanID,
		TimeNow:       time.Now,
		sink:          DefaultSink(),
		gate:          NewGate(),
		registry:      NewDecoderRegistry(DefaultDecoderEntries()...),
	}
}

// Reset restores the default sink, removes all the exclusion predicates and
// empties the custom decoder pool. The built-in decoders survive. Reset is
// idempotent.
func (c *Config) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sink = c.DefaultSink()
	c.gate.Reset()
	c.registry.ResetCustom()
}

// Enable installs a [*Transport] bound to this config into client, wrapping
// the existing transport (or [http.DefaultTransport] when nil).
//
// Enabling a client that is already observed by this config is a no-op,
// and so is enabling a nil client.
func (c *Config) Enable(client *http.Client) {
	if client == nil {
		return
	}
	base := client.Transport
	if txp, ok := base.(*Transport); ok && txp.Config == c {
		return
	}
	if base == nil {
		base = http.DefaultTransport
	}
	client.Transport = NewTransport(c, base)
}

// IgnoreRequestsMatching excludes from observation the requests matching p.
func (c *Config) IgnoreRequestsMatching(p Predicate) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gate.Add(p)
}

// ShouldIntercept reports whether req should be observed, i.e., whether no
// exclusion predicate matches it.
func (c *Config) ShouldIntercept(req *http.Request) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.gate.ShouldIntercept(req)
}

// RegisterDecoder associates decoder with each of the given content type
// patterns (see [*DecoderRegistry.Register]).
func (c *Config) RegisterDecoder(decoder Decoder, patterns ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.registry.Register(decoder, patterns...)
}

// Resolve returns the decoder for contentType (see [*DecoderRegistry.Resolve]).
func (c *Config) Resolve(contentType string) (Decoder, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.registry.Resolve(contentType)
}

// DecodeBody renders body according to contentType. The boolean is false
// when no decoder resolves or when the decoder fails.
func (c *Config) DecodeBody(body []byte, contentType string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.registry.DecodeBody(body, contentType)
}

// decodeBody is like DecodeBody but exposes the decoder error.
func (c *Config) decodeBody(body []byte, contentType string) (string, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.registry.decode(body, contentType)
}

// SetSink replaces the output sink.
func (c *Config) SetSink(sink Sink) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sink = sink
}

// Sink returns the current output sink.
func (c *Config) Sink() Sink {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sink
}

// report hands ex to the current sink, if any.
func (c *Config) report(ex *Exchange) {
	if sink := c.Sink(); sink != nil {
		sink.Report(ex)
	}
}
