package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_SetGet(t *testing.T) {
	c, err := NewInMemory()
	require.NoError(t, err)
	defer c.Close()

	_, found := c.Get("missing")
	assert.False(t, found)

	want := &Entry{
		Text:      "Flight engaged. || fly;",
		Usage:     Usage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15},
		CreatedAt: time.Unix(1700000000, 0).UTC(),
	}
	require.NoError(t, c.Set("k", want, DefaultTTL))

	got, found := c.Get("k")
	require.True(t, found)
	assert.Equal(t, want.Text, got.Text)
	assert.Equal(t, want.Usage, got.Usage)
	assert.True(t, want.CreatedAt.Equal(got.CreatedAt))
}

func TestCache_Expires(t *testing.T) {
	c, err := NewInMemory()
	require.NoError(t, err)
	defer c.Close()

	// badger TTLs have one-second resolution.
	require.NoError(t, c.Set("k", &Entry{Text: "x"}, time.Second))
	assert.Eventually(t, func() bool {
		_, found := c.Get("k")
		return !found
	}, 5*time.Second, 100*time.Millisecond)
}

func TestCache_Persistent(t *testing.T) {
	dir := t.TempDir()

	c, err := New(dir)
	require.NoError(t, err)
	require.NoError(t, c.Set("k", &Entry{Text: "kept"}, 0))
	require.NoError(t, c.Close())

	c, err = New(dir)
	require.NoError(t, err)
	defer c.Close()

	got, found := c.Get("k")
	require.True(t, found)
	assert.Equal(t, "kept", got.Text)

	_, err = New("")
	assert.Error(t, err)
}

func TestGenerateKey(t *testing.T) {
	a := GenerateKey("llama", "fire twice")
	assert.Len(t, a, 64)
	assert.Equal(t, a, GenerateKey("llama", "fire twice"))
	assert.NotEqual(t, a, GenerateKey("llama", "fire thrice"))
	assert.NotEqual(t, GenerateKey("ab", "c"), GenerateKey("a", "bc"))
}
