package domain

import "context"

// ChunkMetadata describes where a chunk came from. Grouped chunks fill
// SectionNumbers/FirstSection/LastSection; paragraph chunks fill
// Section/Paragraph/TotalParagraphs.
type ChunkMetadata struct {
	DocType         string   `json:"doc_type"`
	Category        string   `json:"category,omitempty"`
	LawName         string   `json:"law_name,omitempty"`
	LawShortName    string   `json:"law_short_name,omitempty"`
	LawType         LawType  `json:"law_type,omitempty"`
	LawYearBE       string   `json:"law_year_be,omitempty"`
	Part            string   `json:"part,omitempty"`
	Chapter         string   `json:"chapter,omitempty"`
	SectionNumbers  []string `json:"section_numbers,omitempty"`
	FirstSection    string   `json:"first_section,omitempty"`
	LastSection     string   `json:"last_section,omitempty"`
	Section         string   `json:"section,omitempty"`
	Paragraph       int      `json:"paragraph,omitempty"`
	TotalParagraphs int      `json:"total_paragraphs,omitempty"`
	Heading         string   `json:"heading,omitempty"`
	SourceID        string   `json:"source_drive_id"`
	SourceName      string   `json:"source_name"`
	SourceURL       string   `json:"source_url,omitempty"`
	ChunkIndex      int      `json:"chunk_index"`
}

// Chunk is a retrieval-ready unit: context header plus body.
type Chunk struct {
	ID         string        `json:"id"`
	DocumentID string        `json:"document_id"`
	Text       string        `json:"text"`
	Index      int           `json:"index"`
	Metadata   ChunkMetadata `json:"metadata"`
}

// SearchResult represents a matching chunk with a relevance score.
type SearchResult struct {
	Chunk  Chunk   `json:"chunk"`
	Score  float64 `json:"score"`
	Source string  `json:"source,omitempty"`
}

// Embedder converts free text into numeric vectors.
// Implementations may require a preparation phase over the corpus.
type Embedder interface {
	Name() string
	Prepare(corpus []string) error
	Dimension() int
	Embed(ctx context.Context, texts []string) ([][]float64, error)
}

// LawChunker splits a parsed law into chunks suitable for retrieval indexing.
type LawChunker interface {
	Chunk(doc *LawDocument) []Chunk
}

// VectorStore persists vectors and supports similarity search.
type VectorStore interface {
	Init(dimension int) error
	Upsert(ctx context.Context, chunks []Chunk, vectors [][]float64) error
	Search(ctx context.Context, vector []float64, topK int) ([]SearchResult, error)
	Clear() error
}

// TextIndex is the secondary (non-vector) index that receives every chunk.
type TextIndex interface {
	Insert(ctx context.Context, chunks []Chunk) error
	Query(ctx context.Context, query string, topK int) ([]SearchResult, error)
	Close() error
}

// PDFSource lists and streams PDFs from remote storage.
type PDFSource interface {
	ListPDFs(ctx context.Context, folderID string) ([]RemoteFile, error)
	StreamPDF(ctx context.Context, fileID string) ([]byte, error)
}

// RemoteOCR transcribes a PDF verbatim with a remote vision-language model.
type RemoteOCR interface {
	ExtractText(ctx context.Context, pdf []byte, filename string) (string, error)
}

// Generator produces free text from a system instruction and a prompt.
type Generator interface {
	Generate(ctx context.Context, system, prompt string) (string, error)
	Model() string
}

// Summarizer produces a brief extractive summary of the provided text.
type Summarizer interface {
	Summarize(text string, maxSentences int) (string, error)
}
