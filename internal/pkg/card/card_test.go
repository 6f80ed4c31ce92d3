package card

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, "4111111111111111", Normalize("4111 1111 1111 1111"))
	assert.Equal(t, "4111111111111111", Normalize("4111-1111-1111-1111"))
	assert.Equal(t, "4111111111111111", Normalize("4111111111111111"))
}

func TestIsValidNumber(t *testing.T) {
	assert.True(t, IsValidNumber("4111 1111 1111 1111"))
	assert.True(t, IsValidNumber("411111111111"))        // 12 digits, min
	assert.True(t, IsValidNumber("4111111111111111111")) // 19 digits, max

	assert.False(t, IsValidNumber("41111111111"))          // 11 digits
	assert.False(t, IsValidNumber("41111111111111111111")) // 20 digits
	assert.False(t, IsValidNumber("4111x1111111111"))
	assert.False(t, IsValidNumber(""))
}

func TestMask(t *testing.T) {
	masked := Mask("4111 1111 1111 1234")

	// Length preserved, prefix and suffix kept, interior starred
	assert.Len(t, masked, 16)
	assert.Equal(t, "4111", masked[:4])
	assert.Equal(t, "1234", masked[len(masked)-4:])
	assert.Equal(t, strings.Repeat("*", 8), masked[4:12])
}

func TestMaskNeverLeaksInteriorDigits(t *testing.T) {
	for _, number := range []string{
		"411111111111",
		"4111111111111111",
		"4111111111111111111",
	} {
		masked := Mask(number)
		assert.Len(t, masked, len(number))
		assert.NotContains(t, masked[4:len(masked)-4], "1")
	}
}

func TestMaskShortInputFullyMasked(t *testing.T) {
	assert.Equal(t, "********", Mask("12345678"))
	assert.Equal(t, "****", Mask("1234"))
}

func TestLastFour(t *testing.T) {
	assert.Equal(t, "1234", LastFour("4111 1111 1111 1234"))
	assert.Equal(t, "123", LastFour("123"))
}
