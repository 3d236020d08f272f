// SPDX-License-Identifier: GPL-3.0-or-later

package httpobs

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

// YAMLDecoder re-indents YAML bodies, preserving comments and key order.
//
// It is not part of the default pool; register it explicitly, e.g.:
//
//	cfg.RegisterDecoder(YAMLDecoder{}, "application/yaml", "text/yaml", "application/x-yaml")
type YAMLDecoder struct{}

var _ Decoder = YAMLDecoder{}

// Decode implements [Decoder].
func (YAMLDecoder) Decode(body []byte) (string, error) {
	if len(body) == 0 {
		return "", ErrEmptyBody
	}
	var node yaml.Node
	if err := yaml.Unmarshal(body, &node); err != nil {
		return "", fmt.Errorf("yaml: %w", err)
	}
	if node.Kind == 0 {
		return "", ErrEmptyBody
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&node); err != nil {
		return "", fmt.Errorf("yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("yaml: %w", err)
	}
	return buf.String(), nil
}
