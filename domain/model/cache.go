package model

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Provenance tells which tier supplied a result list.
type Provenance string

const (
	ProvenanceMemory     Provenance = "memory"
	ProvenancePersistent Provenance = "persistent"
	ProvenanceMiss       Provenance = "miss"
)

// CacheKey identifies one logical search. Version is bumped whenever query or filtering
// logic changes so that older persisted entries stop matching.
type CacheKey struct {
	Version  int      `json:"v"`
	Place    string   `json:"p"`
	Region   string   `json:"r"`
	Mode     Mode     `json:"m"`
	Keywords []string `json:"k"`
}

// NewCacheKey builds a normalised key: identical (place, region, mode, keywords) always
// produce the same encoded id.
func NewCacheKey(version int, place, region string, mode Mode, keywords []string) CacheKey {
	kws := make([]string, 0, len(keywords))
	seen := make(map[string]struct{}, len(keywords))
	for _, k := range keywords {
		k = strings.Join(strings.Fields(k), " ")
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		kws = append(kws, k)
	}
	if mode == "" {
		mode = ModeVlog
	}
	return CacheKey{
		Version:  version,
		Place:    strings.ToLower(strings.Join(strings.Fields(place), " ")),
		Region:   strings.ToUpper(strings.TrimSpace(region)),
		Mode:     mode,
		Keywords: kws,
	}
}

// EncodeCacheKey serialises the key into an identifier safe for document ids and SQL keys.
func EncodeCacheKey(k CacheKey) string {
	if k.Keywords == nil {
		k.Keywords = []string{}
	}
	raw, _ := json.Marshal(k)
	return base64.RawURLEncoding.EncodeToString(raw)
}

// DecodeCacheKey is the inverse of EncodeCacheKey.
func DecodeCacheKey(id string) (CacheKey, error) {
	var k CacheKey
	raw, err := base64.RawURLEncoding.DecodeString(id)
	if err != nil {
		return k, fmt.Errorf("decode cache key %q: %w", id, err)
	}
	if err := json.Unmarshal(raw, &k); err != nil {
		return k, fmt.Errorf("unmarshal cache key %q: %w", id, err)
	}
	return k, nil
}

// ID is shorthand for EncodeCacheKey(k).
func (k CacheKey) ID() string { return EncodeCacheKey(k) }

// CacheDocument is the persisted form of one cached search.
type CacheDocument struct {
	ID        string        `json:"id" bson:"_id"`
	Videos    []VideoResult `json:"videos" bson:"videos"`
	CachedAt  time.Time     `json:"cachedAt" bson:"cachedAt"`
	ExpiresAt time.Time     `json:"expiresAt" bson:"expiresAt"`
}

// Expired reports whether the document is past its expiry at now.
func (d *CacheDocument) Expired(now time.Time) bool {
	return now.After(d.ExpiresAt)
}
