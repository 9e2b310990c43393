// internal/cache/cache.go
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// Store is the narrow cache interface the engine sees. Cached values are
// derived, never authoritative, so Put is best-effort and concurrent
// writers may race; last write wins.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Put(ctx context.Context, key string, value []byte, ttl time.Duration)
}

// Key builds a stable content-hash key for a derived value. The text is
// normalized first so near-identical inputs (case, surrounding space)
// share one entry.
func Key(kind, text string) string {
	normalized := strings.ToLower(strings.TrimSpace(text))
	normalized = strings.Join(strings.Fields(normalized), " ")
	sum := sha256.Sum256([]byte(kind + ":" + normalized))
	return kind + ":" + hex.EncodeToString(sum[:])
}
