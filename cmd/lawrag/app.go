package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"thai-legal-rag/internal/cache"
	"thai-legal-rag/internal/chunker"
	"thai-legal-rag/internal/config"
	"thai-legal-rag/internal/dedup"
	"thai-legal-rag/internal/domain"
	"thai-legal-rag/internal/drive"
	"thai-legal-rag/internal/embedding/openai"
	"thai-legal-rag/internal/embedding/tfidf"
	"thai-legal-rag/internal/extractor"
	"thai-legal-rag/internal/gemini"
	"thai-legal-rag/internal/generation"
	"thai-legal-rag/internal/index"
	"thai-legal-rag/internal/logger"
	"thai-legal-rag/internal/service"
	"thai-legal-rag/internal/summarizer"
	"thai-legal-rag/internal/textindex"
	"thai-legal-rag/internal/vectorstore/memory"
	"thai-legal-rag/internal/vectorstore/qdrant"
)

const (
	tfidfStateFile = "tfidf.json"
	vectorsFile    = "vectors.json"
	dedupFile      = "dedup.db"
)

// app holds the components built from config. Fields stay nil when a
// command does not need them or the backend is not configured.
type app struct {
	cfg    *config.AppConfig
	log    *zap.Logger
	gemini *gemini.Client

	embedder domain.Embedder
	tfidf    *tfidf.Embedder
	store    domain.VectorStore
	mem      *memory.Storage
	text     *textindex.Index
	ledger   *dedup.Ledger
	manager  *index.Manager

	closers []func() error
}

func loadConfig() (*config.AppConfig, error) {
	if cfgPath == "" {
		cfg, _, err := config.LoadDefault()
		return cfg, err
	}
	return config.Load(cfgPath)
}

func newApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	level := cfg.Log.Level
	if verbose {
		level = "debug"
	}
	log, err := logger.New(level, cfg.Log.Development)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, log: log}

	// Gemini is optional: without keys there is no OCR, no generation and
	// answers fall back to extractive summaries.
	gc, err := gemini.NewClient(gemini.KeysFromEnv(), gemini.Config{
		BaseURL:           cfg.Gemini.BaseURL,
		Timeout:           time.Duration(cfg.Gemini.TimeoutSecs) * time.Second,
		MaxRetries:        cfg.Gemini.MaxRetries,
		RequestsPerMinute: cfg.Gemini.RequestsPerMinute,
	}, gemini.WithLogger(log.Named("gemini")))
	switch {
	case err == nil:
		a.gemini = gc
	case errors.Is(err, gemini.ErrNoAPIKeys):
		log.Info("no Gemini API keys; remote OCR and generation disabled")
	default:
		return nil, err
	}
	return a, nil
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.log.Warn("close failed", zap.Error(err))
		}
	}
	_ = a.log.Sync()
}

// openIndex builds the embedder, vector store, text index, ledger and manager.
func (a *app) openIndex() error {
	cfg := a.cfg
	switch cfg.Embedder.Type {
	case "tfidf", "":
		a.tfidf = tfidf.NewEmbedder(cfg.Embedder.Dimension)
		if err := a.tfidf.Load(cfg.Path(tfidfStateFile)); err != nil {
			return err
		}
		a.embedder = a.tfidf
	case "openai":
		if cfg.Embedder.OpenAI == nil {
			return fmt.Errorf("openai embedder config missing")
		}
		client, err := openai.NewClient(openai.Config{
			BaseURL:   cfg.Embedder.OpenAI.BaseURL,
			APIKeyEnv: cfg.Embedder.OpenAI.APIKeyEnv,
			Model:     cfg.Embedder.OpenAI.Model,
			Timeout:   time.Duration(cfg.Embedder.OpenAI.TimeoutSecs) * time.Second,
		}, openai.WithLogger(a.log.Named("openai")))
		if err != nil {
			return fmt.Errorf("openai embedder init failed: %w", err)
		}
		a.embedder = client
	case "gemini":
		if a.gemini == nil {
			return gemini.ErrNoAPIKeys
		}
		a.embedder = gemini.NewEmbedder(a.gemini, cfg.Gemini.EmbedModel)
	default:
		return fmt.Errorf("unknown embedder: %s", cfg.Embedder.Type)
	}

	switch cfg.VectorStore.Type {
	case "memory", "":
		st, err := memory.NewStorage(cfg.Path(vectorsFile))
		if err != nil {
			return err
		}
		a.mem, a.store = st, st
	case "qdrant":
		if cfg.VectorStore.Qdrant == nil {
			return fmt.Errorf("qdrant config missing")
		}
		q := cfg.VectorStore.Qdrant
		a.store = qdrant.NewStorage(qdrant.Config{
			URL:        q.URL,
			APIKey:     os.Getenv(q.APIKeyEnv),
			Collection: q.Collection,
			Timeout:    time.Duration(q.TimeoutSecs) * time.Second,
		})
	default:
		return fmt.Errorf("unknown vector store: %s", cfg.VectorStore.Type)
	}

	opts := []index.Option{index.WithLogger(a.log.Named("index"))}
	if cfg.TextIndex.Enabled {
		ti, err := textindex.New(cfg.Path(cfg.TextIndex.Path), textindex.WithLogger(a.log.Named("textindex")))
		if err != nil {
			return fmt.Errorf("open text index: %w", err)
		}
		a.text = ti
		a.closers = append(a.closers, ti.Close)
		opts = append(opts, index.WithTextIndex(ti))
	}
	ledger, err := dedup.Open(cfg.Path(dedupFile))
	if err != nil {
		return fmt.Errorf("open dedup ledger: %w", err)
	}
	a.ledger = ledger
	a.closers = append(a.closers, ledger.Close)
	opts = append(opts, index.WithLedger(ledger))

	a.manager = index.NewManager(a.embedder, a.store, opts...)
	return nil
}

// saveEmbedder persists the TF-IDF table so later queries see the same idf.
func (a *app) saveEmbedder() error {
	if a.tfidf == nil {
		return nil
	}
	return a.tfidf.Save(a.cfg.Path(tfidfStateFile))
}

func (a *app) openCache(ctx context.Context) (cache.Store, error) {
	ex := a.cfg.Extraction
	switch ex.CacheBackend {
	case "file", "":
		st, err := cache.NewFileStore(a.cfg.Path(ex.CacheDir))
		if err != nil {
			return nil, err
		}
		return st, nil
	case "redis":
		r := ex.Redis
		st, err := cache.NewRedisStore(ctx, cache.RedisConfig{
			Addr:      r.Addr,
			Password:  os.Getenv(r.PasswordEnv),
			DB:        r.DB,
			KeyPrefix: r.KeyPrefix,
			TTL:       time.Duration(r.TTLHours) * time.Hour,
		})
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, st.Close)
		return st, nil
	default:
		return nil, fmt.Errorf("unknown cache backend: %s", ex.CacheBackend)
	}
}

func (a *app) openSource(ctx context.Context) (domain.PDFSource, error) {
	switch a.cfg.Drive.Source {
	case "gdrive", "":
		limiter := drive.NewRateLimiter(drive.RateLimitConfig{
			RequestsPerSecond: a.cfg.Drive.RequestsPerSecond,
			BurstSize:         drive.DefaultRateLimit.BurstSize,
		})
		client, err := drive.NewClient(ctx, drive.CredentialsFromEnv(),
			drive.WithLogger(a.log.Named("drive")), drive.WithRateLimiter(limiter))
		if err != nil {
			return nil, err
		}
		return client, nil
	case "local":
		return drive.NewLocalSource(a.cfg.Path(a.cfg.Drive.LocalDir)), nil
	default:
		return nil, fmt.Errorf("unknown drive source: %s", a.cfg.Drive.Source)
	}
}

func (a *app) newExtractor(store cache.Store) *extractor.Extractor {
	var ocr domain.RemoteOCR
	if a.gemini != nil {
		ocr = gemini.NewOCR(a.gemini, a.cfg.Gemini.OCRModel)
	}
	ex := a.cfg.Extraction
	return extractor.New(extractor.PDFText{}, ocr, store,
		extractor.WithLogger(a.log.Named("extractor")),
		extractor.WithMinCharsPerPage(ex.MinCharsPerPage),
		extractor.WithMarkdownDir(a.cfg.Path(ex.MarkdownDir)),
		extractor.WithSectionFiles(ex.SectionFiles),
	)
}

func (a *app) newLawChunker() *chunker.LawChunker {
	return chunker.NewLawChunker(a.cfg.Chunker.MaxChars, a.cfg.Chunker.SplitThreshold,
		chunker.WithLogger(a.log.Named("chunker")))
}

func (a *app) newTextChunker() *chunker.TextChunker {
	return chunker.NewTextChunker(a.cfg.Chunker.TextChunkSize, a.cfg.Chunker.TextOverlap)
}

// newQueryService needs openIndex first.
func (a *app) newQueryService() *service.QueryService {
	var gen domain.Generator
	var opts []service.QueryOption
	if a.gemini != nil {
		gen = gemini.NewGenerator(a.gemini, a.cfg.Gemini.GenerateModel, a.cfg.Gemini.Temperature)
		if a.cfg.Retrieval.ExpandQuery {
			expandGen := gemini.NewGenerator(a.gemini, a.cfg.Gemini.GenerateModel, a.cfg.Gemini.ExpandTemperature)
			opts = append(opts, service.WithExpander(generation.NewExpander(expandGen, a.log.Named("expand"))))
		}
	}
	answerer := generation.NewAnswerer(gen,
		generation.WithLogger(a.log.Named("answer")),
		generation.WithFallback(summarizer.NewFrequencySummarizer(), a.cfg.Summarizer.MaxSentences))
	if a.mem != nil {
		opts = append(opts, service.WithLexicalFallback(a.mem))
	}
	opts = append(opts, service.WithQueryLogger(a.log.Named("query")))
	return service.NewQueryService(a.manager, answerer, service.QueryConfig{
		TopK:        a.cfg.Retrieval.TopK,
		RerankTopK:  a.cfg.Retrieval.RerankTopK,
		ExpandQuery: a.cfg.Retrieval.ExpandQuery,
	}, opts...)
}
