package digest

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSum32_SeedSensitivity(t *testing.T) {
	buf := []byte("the same input")

	assert.Equal(t, Sum32(buf, 0), Sum32(buf, 0))
	assert.NotEqual(t, Sum32(buf, 0), Sum32(buf, 1))
}

func TestSum64_OrderSensitivity(t *testing.T) {
	a := []byte("abcdef")
	b := []byte("abcdfe")

	assert.Equal(t, Sum64(a, 0), Sum64(a, 0))
	assert.NotEqual(t, Sum64(a, 0), Sum64(b, 0))
}

func TestFirstDivergence(t *testing.T) {
	orig := bytes.Repeat([]byte{0xAB}, 1024)

	corrupt := append([]byte(nil), orig...)
	corrupt[517] ^= 0x01
	assert.Equal(t, 517, FirstDivergence(orig, corrupt))

	assert.Equal(t, len(orig), FirstDivergence(orig, orig))

	// Truncated reconstruction diverges at its end.
	assert.Equal(t, 100, FirstDivergence(orig, orig[:100]))

	// First byte differs.
	corrupt[0] = 0x00
	assert.Equal(t, 0, FirstDivergence(orig, corrupt))
}
