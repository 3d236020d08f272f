// SPDX-License-Identifier: GPL-3.0-or-later

package httpobs

import (
	"fmt"

	"github.com/ohler55/ojg/oj"
)

// JSONDecoder pretty-prints JSON bodies with two-space indentation.
//
// Object keys are sorted so that the output is stable across runs.
//
// Registered by default for the "*/json" pattern.
type JSONDecoder struct{}

var _ Decoder = JSONDecoder{}

// Decode implements [Decoder].
func (JSONDecoder) Decode(body []byte) (string, error) {
	if len(body) == 0 {
		return "", ErrEmptyBody
	}
	value, err := oj.Parse(body)
	if err != nil {
		return "", fmt.Errorf("json: %w", err)
	}
	return oj.JSON(value, &oj.Options{Indent: 2, Sort: true}), nil
}
