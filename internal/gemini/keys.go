package gemini

import (
	"errors"
	"os"
	"strings"
	"sync/atomic"
)

// ErrNoAPIKeys is returned when no Gemini API key is configured.
var ErrNoAPIKeys = errors.New("gemini: no API keys configured")

// KeyRotator hands out API keys round-robin so load spreads across keys.
// It is safe for concurrent use.
type KeyRotator struct {
	keys []string
	next atomic.Uint64
}

// NewKeyRotator drops blank and duplicate keys.
func NewKeyRotator(keys ...string) *KeyRotator {
	seen := make(map[string]bool)
	r := &KeyRotator{}
	for _, k := range keys {
		k = strings.TrimSpace(k)
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		r.keys = append(r.keys, k)
	}
	return r
}

// KeysFromEnv reads GEMINI_API_KEYS (comma separated), then GEMINI_API_KEY.
func KeysFromEnv() *KeyRotator {
	if v := os.Getenv("GEMINI_API_KEYS"); strings.TrimSpace(v) != "" {
		return NewKeyRotator(strings.Split(v, ",")...)
	}
	return NewKeyRotator(os.Getenv("GEMINI_API_KEY"))
}

// Next returns the next key in rotation.
func (r *KeyRotator) Next() (string, error) {
	if r == nil || len(r.keys) == 0 {
		return "", ErrNoAPIKeys
	}
	n := r.next.Add(1) - 1
	return r.keys[n%uint64(len(r.keys))], nil
}

// Len is the number of usable keys.
func (r *KeyRotator) Len() int {
	if r == nil {
		return 0
	}
	return len(r.keys)
}
