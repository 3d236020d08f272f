// SPDX-License-Identifier: GPL-3.0-or-later

package httpobs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchContentType(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		actual  string
		want    bool
	}{
		{"exact match", "application/json", "application/json", true},
		{"exact mismatch subtype", "application/json", "application/xml", false},
		{"exact mismatch type", "application/json", "text/json", false},
		{"wildcard type", "*/json", "application/json", true},
		{"wildcard type other family", "*/json", "text/json", true},
		{"wildcard type mismatch", "*/json", "application/xml", false},
		{"wildcard subtype", "image/*", "image/png", true},
		{"wildcard subtype mismatch", "image/*", "text/png", false},
		{"double wildcard", "*/*", "anything/else", true},
		{"case sensitive", "Application/JSON", "application/json", false},
		{"pattern without slash", "json", "application/json", false},
		{"pattern with three segments", "a/b/c", "a/b", false},
		{"actual without slash", "*/*", "json", false},
		{"actual with three segments", "*/*", "a/b/c", false},
		{"empty pattern segment", "/json", "application/json", false},
		{"empty actual segment", "application/*", "application/", false},
		{"empty strings", "", "", false},
		{"parameters are literal", "application/json", "application/json; charset=utf-8", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchContentType(tt.pattern, tt.actual))
		})
	}
}

func TestValidContentType(t *testing.T) {
	assert.True(t, ValidContentType("text/plain"))
	assert.True(t, ValidContentType("*/*"))
	assert.False(t, ValidContentType("text"))
	assert.False(t, ValidContentType("text/"))
	assert.False(t, ValidContentType("a/b/c"))
	assert.False(t, ValidContentType(""))
}
