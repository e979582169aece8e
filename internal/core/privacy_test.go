package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrivacyFilterSubstring(t *testing.T) {
	pf, err := NewPrivacyFilter([]string{"Token=", "password=", "  "}, false)
	require.NoError(t, err)

	assert.True(t, pf.Blocks("my TOKEN=abc123"))
	assert.False(t, pf.Blocks("just some harmless text"))
}

func TestPrivacyFilterRegex(t *testing.T) {
	pf, err := NewPrivacyFilter([]string{`(?i)authorization:\s*bearer\s+\S+`}, true)
	require.NoError(t, err)

	assert.True(t, pf.Blocks("Authorization: Bearer abc.def.ghi"))
	assert.False(t, pf.Blocks("bearer of bad news"))
}

func TestPrivacyFilterBadRegex(t *testing.T) {
	_, err := NewPrivacyFilter([]string{"("}, true)
	require.Error(t, err)
}

func TestPrivacyFilterNil(t *testing.T) {
	var pf *PrivacyFilter
	assert.False(t, pf.Blocks("token=abc"))
}
