package geocode

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockGeocoder struct {
	name  string
	err   error
	calls int
}

func (m *mockGeocoder) ReverseGeocode(_ context.Context, _, _ float64) (string, error) {
	m.calls++
	return m.name, m.err
}

func TestCachedGeocoder_CachesSuccessfulLookups(t *testing.T) {
	inner := &mockGeocoder{name: "Marina Beach, Chennai"}
	geo := NewCachedGeocoder(inner, 10)

	name, err := geo.ReverseGeocode(context.Background(), 13.0827, 80.2707)
	require.NoError(t, err)
	assert.Equal(t, "Marina Beach, Chennai", name)

	_, err = geo.ReverseGeocode(context.Background(), 13.0827, 80.2707)
	require.NoError(t, err)
	assert.Equal(t, 1, inner.calls)
}

func TestCachedGeocoder_DoesNotCacheErrorsOrEmptyResults(t *testing.T) {
	inner := &mockGeocoder{err: errors.New("upstream down")}
	geo := NewCachedGeocoder(inner, 10)

	_, err := geo.ReverseGeocode(context.Background(), 1, 2)
	require.Error(t, err)

	inner.err = nil
	inner.name = "" // not found
	_, err = geo.ReverseGeocode(context.Background(), 1, 2)
	require.NoError(t, err)

	inner.name = "Somewhere"
	name, err := geo.ReverseGeocode(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.Equal(t, "Somewhere", name)
	assert.Equal(t, 3, inner.calls)
}

func TestLRUCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c := newLRUCache(2)
	c.put("a", "1")
	c.put("b", "2")

	// Touch "a" so "b" becomes the eviction candidate.
	_, ok := c.get("a")
	require.True(t, ok)

	c.put("c", "3")

	_, ok = c.get("b")
	assert.False(t, ok)
	v, ok := c.get("a")
	assert.True(t, ok)
	assert.Equal(t, "1", v)
	v, ok = c.get("c")
	assert.True(t, ok)
	assert.Equal(t, "3", v)
}
