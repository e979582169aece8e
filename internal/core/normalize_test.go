package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, "hello world", Normalize("  Hello \n\t WORLD   "))
}

func TestNormalizeEmpty(t *testing.T) {
	assert.Empty(t, Normalize("   \n\t "))
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "a b c", Preview("a\n  b\tc", 10))
	assert.Equal(t, "abcd…", Preview("abcdefgh", 5))
	assert.Equal(t, "héll…", Preview("héllo wörld", 5))
}
