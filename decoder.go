// SPDX-License-Identifier: GPL-3.0-or-later

package httpobs

import "errors"

// Decoder renders a raw HTTP body into human-readable text.
//
// Implementations must be stateless and safe for concurrent use, since
// a single instance is shared by every exchange resolving to it.
type Decoder interface {
	Decode(body []byte) (string, error)
}

// DecoderFunc adapts a function to the [Decoder] interface.
type DecoderFunc func(body []byte) (string, error)

var _ Decoder = DecoderFunc(nil)

// Decode implements [Decoder].
func (f DecoderFunc) Decode(body []byte) (string, error) {
	return f(body)
}

// ErrEmptyBody is returned by the built-in decoders when there is nothing to decode.
var ErrEmptyBody = errors.New("httpobs: empty body")
