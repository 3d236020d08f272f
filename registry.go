// SPDX-License-Identifier: GPL-3.0-or-later

package httpobs

import "errors"

// DecoderEntry associates a content type pattern with a [Decoder].
type DecoderEntry struct {
	// Pattern is a "type/subtype" pattern (see [MatchContentType]).
	Pattern string

	// Decoder renders bodies whose content type matches Pattern.
	Decoder Decoder
}

// DefaultDecoderEntries returns the built-in content type mappings in
// the order in which [*DecoderRegistry] consults them.
func DefaultDecoderEntries() []DecoderEntry {
	return []DecoderEntry{
		{Pattern: "*/json", Decoder: JSONDecoder{}},
		{Pattern: "*/xml", Decoder: XMLDecoder{}},
		{Pattern: "*/html", Decoder: HTMLDecoder{}},
		{Pattern: "image/*", Decoder: ImageDecoder{}},
		{Pattern: "text/plain", Decoder: TextDecoder{}},
	}
}

// DecoderRegistry maps content types to decoders.
//
// It holds two pools. The default pool is fixed at construction. The custom
// pool is populated by [*DecoderRegistry.Register] and emptied only by
// [*DecoderRegistry.ResetCustom].
//
// Resolution walks the custom pool in registration order, then the default
// pool in construction order, and returns the first match. Hence, custom
// entries shadow defaults covering the same content types.
//
// A DecoderRegistry is not safe for concurrent use. [*Config] guards its
// registry with a lock.
type DecoderRegistry struct {
	defaults []DecoderEntry
	custom   []DecoderEntry

	// index maps a custom pattern to its position inside custom.
	index map[string]int
}

// NewDecoderRegistry returns a [*DecoderRegistry] whose default pool
// contains the given entries. Use [DefaultDecoderEntries] for the
// built-in pool.
func NewDecoderRegistry(defaults ...DecoderEntry) *DecoderRegistry {
	return &DecoderRegistry{
		defaults: append([]DecoderEntry(nil), defaults...),
		custom:   nil,
		index:    map[string]int{},
	}
}

// Register adds decoder to the custom pool under each of the given patterns.
//
// Registering a pattern again replaces its decoder while keeping the pattern
// position in the resolution order. Patterns are not validated here; a
// malformed pattern simply never matches.
func (r *DecoderRegistry) Register(decoder Decoder, patterns ...string) {
	for _, pattern := range patterns {
		if idx, found := r.index[pattern]; found {
			r.custom[idx].Decoder = decoder
			continue
		}
		r.index[pattern] = len(r.custom)
		r.custom = append(r.custom, DecoderEntry{Pattern: pattern, Decoder: decoder})
	}
}

// ResetCustom empties the custom pool. The default pool is untouched.
func (r *DecoderRegistry) ResetCustom() {
	r.custom = nil
	clear(r.index)
}

// Resolve returns the decoder for the given concrete content type.
//
// A malformed content type (anything but two non-empty segments) resolves
// to nothing. Malformed patterns are skipped and the search continues.
func (r *DecoderRegistry) Resolve(contentType string) (Decoder, bool) {
	if !ValidContentType(contentType) {
		return nil, false
	}
	for _, pool := range [][]DecoderEntry{r.custom, r.defaults} {
		for _, entry := range pool {
			if MatchContentType(entry.Pattern, contentType) {
				return entry.Decoder, true
			}
		}
	}
	return nil, false
}

// DecodeBody resolves contentType and decodes body with the result.
//
// The boolean is false when no decoder resolves or when the decoder fails;
// use [*DecoderRegistry.Resolve] to tell the two cases apart.
func (r *DecoderRegistry) DecodeBody(body []byte, contentType string) (string, bool) {
	text, _, err := r.decode(body, contentType)
	if err != nil {
		return "", false
	}
	return text, true
}

// errNoDecoder indicates that no decoder resolves for a content type.
var errNoDecoder = errors.New("httpobs: no decoder for content type")

// decode is like DecodeBody but exposes the decoder error, if any, and
// reports whether a decoder was found.
func (r *DecoderRegistry) decode(body []byte, contentType string) (string, bool, error) {
	decoder, found := r.Resolve(contentType)
	if !found {
		return "", false, errNoDecoder
	}
	text, err := decoder.Decode(body)
	if err != nil {
		return "", true, err
	}
	return text, true, nil
}

// Entries returns a snapshot of all the entries in resolution order.
func (r *DecoderRegistry) Entries() []DecoderEntry {
	out := make([]DecoderEntry, 0, len(r.custom)+len(r.defaults))
	out = append(out, r.custom...)
	return append(out, r.defaults...)
}
