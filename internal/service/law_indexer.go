// Package service wires the pipeline stages into the two things the CLI
// does: index a folder of laws and answer questions over the index.
package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"thai-legal-rag/internal/domain"
	"thai-legal-rag/internal/drive"
	"thai-legal-rag/internal/extractor"
	"thai-legal-rag/internal/index"
)

// LawExtractor builds a parsed document from PDF bytes.
type LawExtractor interface {
	ExtractLaw(ctx context.Context, pdf []byte, docID, filename string, force bool) (*domain.LawDocument, error)
}

// ChunkSink receives chunks; index.Manager is the production sink.
type ChunkSink interface {
	AddBatch(ctx context.Context, chunks []domain.Chunk) (index.AddResult, error)
	Save() error
}

// IndexOptions selects what LawIndexer.Run processes.
type IndexOptions struct {
	FolderID string
	// FileID limits the run to one file. When the listing does not contain
	// it, a record is synthesised from FileID and FileName.
	FileID   string
	FileName string
	DryRun   bool
	Force    bool
	Workers  int
}

// Failure is one document that could not be indexed.
type Failure struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Error string `json:"error"`
}

// Report summarises a run.
type Report struct {
	Files     int       `json:"files"`
	Processed int       `json:"processed"`
	Chunks    int       `json:"chunks"`
	Added     int       `json:"added"`
	Skipped   int       `json:"skipped"`
	Failed    []Failure `json:"failed,omitempty"`
	FailedLog string    `json:"failed_log,omitempty"`
}

// LawIndexer runs list, stream, extract, chunk and index over a folder.
type LawIndexer struct {
	source    domain.PDFSource
	extractor LawExtractor
	chunker   domain.LawChunker
	sink      ChunkSink
	dataDir   string
	log       *zap.Logger
	now       func() time.Time
}

type IndexerOption func(*LawIndexer)

func WithIndexerLogger(l *zap.Logger) IndexerOption {
	return func(li *LawIndexer) {
		if l != nil {
			li.log = l
		}
	}
}

func WithIndexerClock(now func() time.Time) IndexerOption {
	return func(li *LawIndexer) { li.now = now }
}

// NewLawIndexer writes failed-document logs under dataDir/failed_logs.
func NewLawIndexer(source domain.PDFSource, ex LawExtractor, ch domain.LawChunker, sink ChunkSink, dataDir string, opts ...IndexerOption) *LawIndexer {
	li := &LawIndexer{source: source, extractor: ex, chunker: ch, sink: sink, dataDir: dataDir, log: zap.NewNop(), now: time.Now}
	for _, opt := range opts {
		opt(li)
	}
	return li
}

// Run processes every selected file. Per-document failures go into the
// report; only configuration failures and cancellation abort the run.
func (li *LawIndexer) Run(ctx context.Context, opts IndexOptions) (Report, error) {
	var rep Report
	files, err := li.selectFiles(ctx, opts)
	if err != nil {
		return rep, err
	}
	rep.Files = len(files)
	li.log.Info("law indexing started", zap.Int("files", len(files)), zap.Bool("dry_run", opts.DryRun), zap.Bool("force", opts.Force))

	workers := opts.Workers
	if workers <= 0 {
		workers = 1
	}
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, f := range files {
		f := f
		g.Go(func() error {
			chunks, added, err := li.processFile(gctx, f, opts)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if errors.Is(err, extractor.ErrRemoteOCRUnavailable) || errors.Is(err, context.Canceled) {
					return err
				}
				li.log.Error("law document failed", zap.String("doc_id", f.ID), zap.String("filename", f.Name), zap.Error(err))
				rep.Failed = append(rep.Failed, Failure{ID: f.ID, Name: f.Name, Error: err.Error()})
				return nil
			}
			rep.Processed++
			rep.Chunks += chunks
			rep.Added += added.Added
			rep.Skipped += added.Skipped
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return rep, err
	}

	if !opts.DryRun && rep.Processed > 0 {
		if err := li.sink.Save(); err != nil {
			return rep, fmt.Errorf("save index: %w", err)
		}
	}
	if len(rep.Failed) > 0 {
		sort.Slice(rep.Failed, func(i, j int) bool { return rep.Failed[i].ID < rep.Failed[j].ID })
		path, err := li.writeFailedLog(rep.Failed)
		if err != nil {
			li.log.Warn("could not write failed log", zap.Error(err))
		}
		rep.FailedLog = path
	}
	li.log.Info("law indexing finished",
		zap.Int("processed", rep.Processed), zap.Int("failed", len(rep.Failed)),
		zap.Int("chunks", rep.Chunks), zap.Int("added", rep.Added))
	return rep, nil
}

func (li *LawIndexer) selectFiles(ctx context.Context, opts IndexOptions) ([]domain.RemoteFile, error) {
	if opts.FolderID == "" && opts.FileID == "" {
		return nil, drive.ErrFolderNotConfigured
	}
	var listed []domain.RemoteFile
	if opts.FolderID != "" {
		var err error
		listed, err = li.source.ListPDFs(ctx, opts.FolderID)
		if err != nil {
			return nil, fmt.Errorf("list folder: %w", err)
		}
	}
	if opts.FileID == "" {
		return listed, nil
	}
	for _, f := range listed {
		if f.ID == opts.FileID {
			return []domain.RemoteFile{f}, nil
		}
	}
	name := opts.FileName
	if name == "" {
		name = opts.FileID + ".pdf"
	}
	li.log.Info("file not in listing, using given id", zap.String("doc_id", opts.FileID), zap.String("filename", name))
	return []domain.RemoteFile{{ID: opts.FileID, Name: name, MimeType: drive.MimeTypePDF}}, nil
}

func (li *LawIndexer) processFile(ctx context.Context, f domain.RemoteFile, opts IndexOptions) (int, index.AddResult, error) {
	var res index.AddResult
	pdf, err := li.source.StreamPDF(ctx, f.ID)
	if err != nil {
		return 0, res, fmt.Errorf("stream: %w", err)
	}
	doc, err := li.extractor.ExtractLaw(ctx, pdf, f.ID, f.Name, opts.Force)
	if err != nil {
		return 0, res, err
	}
	chunks := li.chunker.Chunk(doc)
	log := li.log.With(zap.String("doc_id", f.ID), zap.String("filename", f.Name))
	if opts.DryRun {
		log.Info("dry run", zap.Int("sections", doc.TotalSections), zap.Int("chunks", len(chunks)), zap.String("engine", doc.ExtractionEngine))
		return len(chunks), res, nil
	}
	if len(chunks) == 0 {
		return 0, res, nil
	}
	res, err = li.sink.AddBatch(ctx, chunks)
	if err != nil {
		return len(chunks), res, fmt.Errorf("index: %w", err)
	}
	log.Info("law indexed", zap.Int("sections", doc.TotalSections), zap.Int("chunks", len(chunks)), zap.Int("added", res.Added))
	return len(chunks), res, nil
}

// writeFailedLog writes "id<TAB>name<TAB>error" lines.
func (li *LawIndexer) writeFailedLog(failed []Failure) (string, error) {
	dir := filepath.Join(li.dataDir, "failed_logs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, "law_failed_"+li.now().Format("20060102_150405")+".txt")
	var b strings.Builder
	for _, f := range failed {
		fmt.Fprintf(&b, "%s\t%s\t%s\n", f.ID, f.Name, strings.ReplaceAll(f.Error, "\n", " "))
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return "", err
	}
	return path, nil
}
