// SPDX-License-Identifier: GPL-3.0-or-later

// Package httpobs decides which HTTP exchanges to observe and how to render
// their bodies.
//
// # Core Abstractions
//
// The package is built around a [*Config] shared by every observing transport:
//
//   - [Predicate]: identifies requests to exclude from observation; the
//     [*Gate] intercepts a request only when no predicate matches it
//   - [Decoder]: renders a body into human-readable text; the
//     [*DecoderRegistry] selects one by content type
//   - [Sink]: receives each observed [*Exchange]
//
// [*Config] is the only mutation point. Create one with [NewConfig] at
// startup and share it; tests create a fresh one instead of calling
// [*Config.Reset].
//
// # Content Type Patterns
//
// Decoders are registered for "type/subtype" patterns where either segment
// may be "*" (see [MatchContentType]). The built-in pool maps "*/json",
// "*/xml", "*/html", "image/*" and "text/plain" to [JSONDecoder],
// [XMLDecoder], [HTMLDecoder], [ImageDecoder] and [TextDecoder]. It cannot be
// modified, but [*Config.RegisterDecoder] adds custom entries that are
// consulted first, in registration order. Malformed patterns never match.
//
// Matching is literal: structured syntax suffixes are not interpreted, so
// "application/problem+json" does not match "*/json" and "image/svg+xml"
// matches "image/*" rather than "*/xml". Register the suffixed types you
// care about explicitly:
//
//	cfg.RegisterDecoder(JSONDecoder{}, "application/problem+json", "application/vnd.api+json")
//	cfg.RegisterDecoder(XMLDecoder{}, "image/svg+xml")
//
// # Interception
//
// [*Config.Enable] installs a [*Transport] into an [*http.Client]. The transport
// consults [*Config.ShouldIntercept] for each request, captures up to
// [Config.MaxBodySize] bytes of each body while it streams, and reports the
// [*Exchange] to the current [Sink] when the caller closes the response body.
// Media type parameters are stripped before decoding and missing content
// types are sniffed with [http.DetectContentType].
//
// Available exclusion predicates:
//   - [HostPredicate]: by URL host
//   - [MethodPredicate]: by request method
//   - [NewPathGlobPredicate]: by URL path glob (e.g., "/static/**")
//   - [NewExprPredicate]: by boolean expression over the request
//   - [PredicateFunc]: ad-hoc functions
//
// Available sinks:
//   - [ConsoleSink]: human-readable transcript (the default, on stdout)
//   - [SlogSink]: one structured httpExchange event per exchange
//   - [SinkFunc]: ad-hoc functions
//
// # Observability
//
// [*Transport] supports structured logging via [SLogger] (compatible with
// [log/slog]). By default, logging is disabled. Observed round trips emit
// httpObserveStart/httpObserveDone span events at [slog.LevelInfo]; skipped
// requests (httpObserveSkip), body streaming (httpBodyStreamStart,
// httpBodyStreamDone) and decoding failures (httpBodyDecodeFailed) are
// emitted at [slog.LevelDebug]. All events of an exchange share the span ID
// returned by [Config.NewSpanID].
//
// # Errors
//
// Nothing in this package fails loudly. A missing decoder, a decoder error
// and a malformed content type all yield an absent result from
// [*Config.DecodeBody]. Wrap a [Decoder] or read the debug logs to tell
// them apart.
package httpobs
