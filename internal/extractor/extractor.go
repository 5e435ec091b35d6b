// Package extractor turns a law PDF into a parsed domain.LawDocument. It
// prefers the PDF's own text layer, falls back to remote OCR for scans, and
// caches finished documents by source id.
package extractor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"thai-legal-rag/internal/cache"
	"thai-legal-rag/internal/domain"
	"thai-legal-rag/internal/lawtext"
	"thai-legal-rag/internal/logger"
)

// ErrRemoteOCRUnavailable means native text was unusable and no remote OCR
// collaborator is configured.
var ErrRemoteOCRUnavailable = errors.New("remote OCR required but not configured")

// DefaultMinCharsPerPage is the text density below which a PDF is treated as a scan.
const DefaultMinCharsPerPage = 50

// Extractor orchestrates native extraction, OCR fallback, parsing and caching.
type Extractor struct {
	native          NativeExtractor
	remote          domain.RemoteOCR
	store           cache.Store
	log             *zap.Logger
	minCharsPerPage int
	markdownDir     string
	sectionFiles    bool
	now             func() time.Time
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Extractor) { e.log = logger.OrNop(l) }
}

// WithMinCharsPerPage sets the native text density threshold.
func WithMinCharsPerPage(n int) Option {
	return func(e *Extractor) {
		if n > 0 {
			e.minCharsPerPage = n
		}
	}
}

// WithMarkdownDir enables the Markdown backup under dir.
func WithMarkdownDir(dir string) Option {
	return func(e *Extractor) { e.markdownDir = dir }
}

// WithSectionFiles also writes one Markdown file per section next to the backup.
func WithSectionFiles(enabled bool) Option {
	return func(e *Extractor) { e.sectionFiles = enabled }
}

// WithClock overrides the time source used for backup dates.
func WithClock(now func() time.Time) Option {
	return func(e *Extractor) { e.now = now }
}

// New builds an Extractor. remote and store may be nil: without remote, scans
// fail with ErrRemoteOCRUnavailable; without store, nothing is cached.
func New(native NativeExtractor, remote domain.RemoteOCR, store cache.Store, opts ...Option) *Extractor {
	if native == nil {
		native = PDFText{}
	}
	e := &Extractor{
		native:          native,
		remote:          remote,
		store:           store,
		log:             zap.NewNop(),
		minCharsPerPage: DefaultMinCharsPerPage,
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ExtractLaw returns the parsed document for pdf. Unless force is set, a cached
// record for docID is returned without touching the PDF.
func (e *Extractor) ExtractLaw(ctx context.Context, pdf []byte, docID, filename string, force bool) (*domain.LawDocument, error) {
	log := e.log.With(zap.String("doc_id", docID), zap.String("filename", filename))
	key := cache.Key(docID)

	if !force && e.store != nil {
		doc, ok, err := e.store.Get(ctx, key)
		switch {
		case err != nil:
			log.Warn("law cache unreadable, re-extracting", zap.Error(err))
		case ok:
			log.Debug("law cache hit")
			return doc, nil
		}
	}

	text, engine, err := e.extractText(ctx, pdf, filename, log)
	if err != nil {
		return nil, err
	}
	text = lawtext.NormalizeNewlines(text)

	meta := lawtext.DetectMetadata(text, filename)
	log.Info("detected law metadata",
		zap.String("law_type", string(meta.LawType)),
		zap.String("short_name", meta.LawShortName),
		zap.String("year_be", meta.LawYearBE),
	)

	text = lawtext.Preprocess(text)
	sections := lawtext.ParseSections(text)
	if len(sections) == 0 {
		log.Warn("no sections parsed")
	} else {
		log.Info("parsed sections", zap.Int("sections", len(sections)))
	}

	doc := &domain.LawDocument{
		Filename:         filename,
		SourceID:         docID,
		LawName:          meta.LawName,
		LawShortName:     meta.LawShortName,
		LawType:          meta.LawType,
		LawYearBE:        meta.LawYearBE,
		Sections:         sections,
		FullText:         text,
		ExtractionEngine: engine,
		TotalSections:    len(sections),
	}

	if e.store != nil {
		if err := e.store.Put(ctx, key, doc); err != nil {
			log.Warn("failed to cache law", zap.Error(err))
		}
	}
	e.writeBackups(doc, log)
	return doc, nil
}

// extractText tries the text layer first and falls back to remote OCR when it
// fails or is too sparse.
func (e *Extractor) extractText(ctx context.Context, pdf []byte, filename string, log *zap.Logger) (string, string, error) {
	text, pages, err := e.native.Extract(pdf)
	switch {
	case err != nil:
		log.Warn("native extraction failed, using remote OCR", zap.Error(err))
	case !e.dense(text, pages):
		log.Info("native text too sparse, using remote OCR",
			zap.Int("chars", utf8.RuneCountInString(text)), zap.Int("pages", pages))
	default:
		log.Info("native extraction ok",
			zap.Int("chars", utf8.RuneCountInString(text)), zap.Int("pages", pages))
		return text, domain.EngineNative, nil
	}

	if e.remote == nil {
		return "", "", ErrRemoteOCRUnavailable
	}
	text, err = e.remote.ExtractText(ctx, pdf, filename)
	if err != nil {
		return "", "", fmt.Errorf("remote OCR %s: %w", filename, err)
	}
	if strings.TrimSpace(text) == "" {
		return "", "", fmt.Errorf("remote OCR %s: empty transcription", filename)
	}
	return text, domain.EngineRemoteOCR, nil
}

func (e *Extractor) dense(text string, pages int) bool {
	if pages == 0 {
		return false
	}
	return utf8.RuneCountInString(strings.TrimSpace(text))/pages >= e.minCharsPerPage
}

func (e *Extractor) writeBackups(doc *domain.LawDocument, log *zap.Logger) {
	if e.markdownDir == "" {
		return
	}
	path, err := WriteMarkdown(e.markdownDir, doc, e.now())
	if err != nil {
		log.Warn("failed to write markdown backup", zap.Error(err))
		return
	}
	log.Debug("markdown backup saved", zap.String("path", path))

	if e.sectionFiles {
		if _, err := WriteSectionFiles(e.markdownDir, doc); err != nil {
			log.Warn("failed to write section files", zap.Error(err))
		}
	}
}
