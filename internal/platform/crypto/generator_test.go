package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandomID(t *testing.T) {
	a, err := RandomID(16)
	require.NoError(t, err)
	b, err := RandomID(16)
	require.NoError(t, err)
	assert.Len(t, a, 22)
	assert.NotEqual(t, a, b)

	_, err = RandomID(0)
	assert.Error(t, err)
}

func TestFingerprint(t *testing.T) {
	assert.Equal(t, Fingerprint("token"), Fingerprint("token"))
	assert.NotEqual(t, Fingerprint("token"), Fingerprint("token2"))
	assert.Len(t, Fingerprint("token"), 64)
}
