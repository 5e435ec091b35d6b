package vectorstore

import "thai-legal-rag/internal/domain"

// Persistent is a store held in process memory that must be written out
// between CLI runs.
type Persistent interface {
	domain.VectorStore
	Save() error
}
