package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateRandByteArray(t *testing.T) {
	a := GenerateRandByteArray(32)
	b := GenerateRandByteArray(32)
	require.Len(t, a, 32)
	require.Len(t, b, 32)
	assert.NotEqual(t, a, b)
}

func TestWipeByteArray(t *testing.T) {
	buf := []byte("secret")
	WipeByteArray(buf)
	assert.Equal(t, make([]byte, 6), buf)

	WipeByteArray(nil)
}

func TestSentinelsSurviveWrapping(t *testing.T) {
	err := fmt.Errorf("fetch agenda: %w", ErrNavigation)
	assert.True(t, errors.Is(err, ErrNavigation))
	assert.False(t, errors.Is(err, ErrParse))
	assert.Equal(t, "Sync already in progress", ErrSyncInProgress.Error())
}
