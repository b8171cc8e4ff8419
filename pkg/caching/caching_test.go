package caching

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_SetGet(t *testing.T) {
	c, err := NewCache(t.TempDir(), time.Hour)
	require.NoError(t, err)

	_, ok := c.Get("https://example.org/a")
	assert.False(t, ok)

	require.NoError(t, c.Set("https://example.org/a", []byte(`{"items":[]}`)))
	data, ok := c.Get("https://example.org/a")
	require.True(t, ok)
	assert.Equal(t, `{"items":[]}`, string(data))

	_, ok = c.Get("https://example.org/b")
	assert.False(t, ok)
}

func TestCache_Expiry(t *testing.T) {
	c, err := NewCache(t.TempDir(), time.Minute)
	require.NoError(t, err)
	require.NoError(t, c.Set("u", []byte("x")))

	c.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	_, ok := c.Get("u")
	assert.False(t, ok)

	removed, err := c.Prune()
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = os.Stat(c.file("u"))
	assert.True(t, os.IsNotExist(err))
}

func TestNewCache_RejectsZeroTTL(t *testing.T) {
	_, err := NewCache(t.TempDir(), 0)
	assert.Error(t, err)
}
