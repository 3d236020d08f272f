// SPDX-License-Identifier: GPL-3.0-or-later

package httpobs

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// HTMLDecoder renders HTML bodies as an indented outline of elements
// and their non-blank text content.
//
// Script and style contents are omitted. Comments are dropped.
//
// Registered by default for the "*/html" pattern.
type HTMLDecoder struct{}

var _ Decoder = HTMLDecoder{}

// Decode implements [Decoder].
func (HTMLDecoder) Decode(body []byte) (string, error) {
	if len(body) == 0 {
		return "", ErrEmptyBody
	}
	root, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("html: %w", err)
	}
	var sb strings.Builder
	htmlOutline(&sb, root, 0)
	return strings.TrimRight(sb.String(), "\n"), nil
}

func htmlOutline(sb *strings.Builder, node *html.Node, depth int) {
	switch node.Type {
	case html.ElementNode:
		sb.WriteString(strings.Repeat("  ", depth))
		sb.WriteString("<" + node.Data + ">\n")
		if node.Data == "script" || node.Data == "style" {
			return
		}
		depth++

	case html.TextNode:
		if text := strings.Join(strings.Fields(node.Data), " "); text != "" {
			sb.WriteString(strings.Repeat("  ", depth))
			sb.WriteString(text + "\n")
		}
		return

	case html.CommentNode, html.DoctypeNode:
		return
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		htmlOutline(sb, child, depth)
	}
}
