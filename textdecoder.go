// SPDX-License-Identifier: GPL-3.0-or-later

package httpobs

import (
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// TextDecoder renders plain text bodies.
//
// Valid UTF-8 passes through unchanged. Anything else is interpreted as
// ISO-8859-1, which maps every byte to a code point and thus never fails.
//
// Registered by default for the "text/plain" pattern.
type TextDecoder struct{}

var _ Decoder = TextDecoder{}

// Decode implements [Decoder].
func (TextDecoder) Decode(body []byte) (string, error) {
	if len(body) == 0 {
		return "", ErrEmptyBody
	}
	if utf8.Valid(body) {
		return string(body), nil
	}
	text, err := charmap.ISO8859_1.NewDecoder().Bytes(body)
	if err != nil {
		return "", fmt.Errorf("text: %w", err)
	}
	return string(text), nil
}
