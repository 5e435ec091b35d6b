// Package cache stores fully parsed law documents keyed by document identity,
// so re-running extraction on an unchanged file skips OCR and parsing.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	"thai-legal-rag/internal/domain"
)

// Store is a key to LawDocument record store. A miss is (nil, false, nil).
type Store interface {
	Get(ctx context.Context, key string) (*domain.LawDocument, bool, error)
	Put(ctx context.Context, key string, doc *domain.LawDocument) error
	Count(ctx context.Context) (int, error)
	// Each visits every stored record in key order until fn returns an error.
	Each(ctx context.Context, fn func(*domain.LawDocument) error) error
}

// keyLen is the number of hex characters kept from the digest.
const keyLen = 16

// Key derives the cache key for a source document id.
func Key(docID string) string {
	sum := sha256.Sum256([]byte(docID))
	return hex.EncodeToString(sum[:])[:keyLen]
}
