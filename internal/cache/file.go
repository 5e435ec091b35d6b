package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"thai-legal-rag/internal/domain"
)

const (
	filePrefix = "law_"
	fileSuffix = ".json"
)

// FileStore keeps one JSON file per document under dir. Writes go through a
// temp file and rename, so readers never observe a partial record.
type FileStore struct {
	dir string
}

// NewFileStore creates dir if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, filePrefix+key+fileSuffix)
}

// Get reads the record for key.
func (s *FileStore) Get(_ context.Context, key string) (*domain.LawDocument, bool, error) {
	data, err := os.ReadFile(s.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read cache %s: %w", key, err)
	}
	var doc domain.LawDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, false, fmt.Errorf("decode cache %s: %w", key, err)
	}
	return &doc, true, nil
}

// Put writes doc atomically. Concurrent writers of the same key race and the
// last rename wins.
func (s *FileStore) Put(_ context.Context, key string, doc *domain.LawDocument) error {
	if doc == nil {
		return errors.New("cache: nil document")
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode cache %s: %w", key, err)
	}

	tmp, err := os.CreateTemp(s.dir, "."+filePrefix+key+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp cache file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write cache %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close cache %s: %w", key, err)
	}
	if err := os.Rename(tmpName, s.path(key)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("commit cache %s: %w", key, err)
	}
	return nil
}

// keys lists stored keys in lexical order.
func (s *FileStore) keys() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}
	var keys []string
	for _, e := range entries {
		name := e.Name()
		if !e.IsDir() && strings.HasPrefix(name, filePrefix) && strings.HasSuffix(name, fileSuffix) {
			keys = append(keys, strings.TrimSuffix(strings.TrimPrefix(name, filePrefix), fileSuffix))
		}
	}
	return keys, nil
}

// Count returns the number of cached records.
func (s *FileStore) Count(_ context.Context) (int, error) {
	keys, err := s.keys()
	return len(keys), err
}

// Each decodes every record in key order.
func (s *FileStore) Each(ctx context.Context, fn func(*domain.LawDocument) error) error {
	keys, err := s.keys()
	if err != nil {
		return err
	}
	for _, key := range keys {
		if err := ctx.Err(); err != nil {
			return err
		}
		doc, ok, err := s.Get(ctx, key)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		if err := fn(doc); err != nil {
			return err
		}
	}
	return nil
}
