package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCacheKey_Deterministic(t *testing.T) {
	a := NewCacheKey(3, "Kyoto", "JP", ModeVlog, []string{"京都 散歩 vlog"})
	b := NewCacheKey(3, "Kyoto", "JP", ModeVlog, []string{"京都 散歩 vlog"})
	assert.Equal(t, a.ID(), b.ID())

	// Cosmetic differences normalise away.
	c := NewCacheKey(3, "  kyoto ", "jp", ModeVlog, []string{" 京都  散歩 vlog", "", "京都 散歩 vlog"})
	assert.Equal(t, a.ID(), c.ID())
}

func TestNewCacheKey_DiffersPerArgument(t *testing.T) {
	base := NewCacheKey(3, "Kyoto", "JP", ModeVlog, []string{"京都 散歩 vlog"})
	variants := map[string]CacheKey{
		"version":  NewCacheKey(4, "Kyoto", "JP", ModeVlog, []string{"京都 散歩 vlog"}),
		"place":    NewCacheKey(3, "Osaka", "JP", ModeVlog, []string{"京都 散歩 vlog"}),
		"region":   NewCacheKey(3, "Kyoto", "", ModeVlog, []string{"京都 散歩 vlog"}),
		"mode":     NewCacheKey(3, "Kyoto", "JP", ModeCamp, []string{"京都 散歩 vlog"}),
		"keywords": NewCacheKey(3, "Kyoto", "JP", ModeVlog, nil),
	}
	for name, k := range variants {
		t.Run(name, func(t *testing.T) {
			assert.NotEqual(t, base.ID(), k.ID())
		})
	}
}

func TestCacheKey_RoundTrip(t *testing.T) {
	k := NewCacheKey(2, "Cape Town", "ZA", ModeScenic, []string{"Cape Town drone"})
	decoded, err := DecodeCacheKey(EncodeCacheKey(k))
	require.NoError(t, err)
	assert.Equal(t, k, decoded)
	assert.Equal(t, ModeScenic, decoded.Mode)
}

func TestDecodeCacheKey_Garbage(t *testing.T) {
	_, err := DecodeCacheKey("v2|Tokyo|JP|vlog")
	assert.Error(t, err)
}

func TestEncodeCacheKey_SafeForDocumentIDs(t *testing.T) {
	id := NewCacheKey(1, "São Paulo / Centro", "BR", ModeVlog, []string{"São Paulo a pé"}).ID()
	assert.NotContains(t, id, "/")
	assert.NotContains(t, id, ".")
	assert.NotContains(t, id, "+")
}

func TestDedupeVideos(t *testing.T) {
	in := []VideoResult{{ID: "a", Title: "first"}, {ID: "b"}, {ID: "a", Title: "second"}}
	out := DedupeVideos(in)
	require.Len(t, out, 2)
	assert.Equal(t, "first", out[0].Title)
}
