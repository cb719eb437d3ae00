package asrengine

import (
	"encoding/hex"

	"github.com/ilyannn/bgvoicecoach/internal/cache"
)

// transcriptionCache wraps the generic FingerprintCache, keyed by the
// 16-byte PCM digest (spec §4.4: capacity 100, LRU, thread-safe insertion).
type transcriptionCache struct {
	lru *cache.LRU[FinalTranscript]
}

func newTranscriptionCache(capacity int) *transcriptionCache {
	return &transcriptionCache{lru: cache.New[FinalTranscript](capacity)}
}

func (c *transcriptionCache) get(key [16]byte) (FinalTranscript, bool) {
	return c.lru.Get(hex.EncodeToString(key[:]))
}

func (c *transcriptionCache) put(key [16]byte, ft FinalTranscript) {
	c.lru.Put(hex.EncodeToString(key[:]), ft)
}
