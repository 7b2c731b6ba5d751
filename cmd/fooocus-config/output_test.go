// ABOUTME: Tests for CLI output helpers

package main

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		maxLen int
		want   string
	}{
		{"short ascii", "portrait", 32, "portrait"},
		{"long ascii", "cinematic-night", 9, "cinematic..."},
		{"exact multibyte", "写实人像", 4, "写实人像"},
		{"long multibyte", "写实人像风景动漫", 4, "写实人像..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncate(tt.input, tt.maxLen)
			assert.Equal(t, tt.want, got)
			assert.True(t, utf8.ValidString(got))
		})
	}
}
