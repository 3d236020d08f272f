// SPDX-License-Identifier: GPL-3.0-or-later

package httpobs

import (
	"errors"
	"fmt"

	"github.com/beevik/etree"
)

// XMLDecoder re-indents XML bodies.
//
// Registered by default for the "*/xml" pattern.
type XMLDecoder struct{}

var _ Decoder = XMLDecoder{}

// errNoXMLRoot indicates a well-formed document without a root element.
var errNoXMLRoot = errors.New("xml: no root element")

// Decode implements [Decoder].
func (XMLDecoder) Decode(body []byte) (string, error) {
	if len(body) == 0 {
		return "", ErrEmptyBody
	}
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(body); err != nil {
		return "", fmt.Errorf("xml: %w", err)
	}
	if doc.Root() == nil {
		return "", errNoXMLRoot
	}
	doc.Indent(2)
	return doc.WriteToString()
}
