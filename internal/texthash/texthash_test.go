package texthash

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSumIsStable(t *testing.T) {
	assert.Equal(t, Sum("For God so loved the world"), Sum("For God so loved the world"))
}

func TestSumDiffersOnAnyEdit(t *testing.T) {
	base := Sum("For God so loved the world")
	assert.NotEqual(t, base, Sum("For God so loved the world."))
	assert.NotEqual(t, base, Sum("for God so loved the world"))
}

func TestSumIsHexSHA256(t *testing.T) {
	// Known digest of the empty string.
	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", Sum(""))
	assert.Len(t, Sum("anything"), 64)
}
