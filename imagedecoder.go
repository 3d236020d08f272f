// SPDX-License-Identifier: GPL-3.0-or-later

package httpobs

import (
	"bytes"
	"fmt"
	"image"

	// Register the formats [ImageDecoder] understands.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
)

// ImageDecoder summarizes image bodies as format, dimensions and size
// (e.g., "png image, 640x480, 1234 bytes").
//
// Only the image header is parsed; pixel data is never decoded.
//
// Registered by default for the "image/*" pattern.
type ImageDecoder struct{}

var _ Decoder = ImageDecoder{}

// Decode implements [Decoder].
func (ImageDecoder) Decode(body []byte) (string, error) {
	if len(body) == 0 {
		return "", ErrEmptyBody
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("image: %w", err)
	}
	return fmt.Sprintf("%s image, %dx%d, %d bytes", format, cfg.Width, cfg.Height, len(body)), nil
}
