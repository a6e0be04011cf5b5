package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidRUT(t *testing.T) {
	cases := map[string]bool{
		"12345678-5":   true,
		"12.345.678-5": true,
		"11111111-1":   true,
		"7654321-6":    true,
		"12345678-9":   false,
		"12345678":     false,
		"abcdefgh-1":   false,
		"":             false,
	}
	for input, want := range cases {
		assert.Equal(t, want, ValidRUT(input), input)
	}
}

func TestNormalizeRUT(t *testing.T) {
	assert.Equal(t, "12345678-K", NormalizeRUT(" 12.345.678-k "))
}
