package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"thai-legal-rag/internal/domain"
	"thai-legal-rag/internal/extractor"
)

var regenerateCmd = &cobra.Command{
	Use:   "regenerate",
	Short: "Rewrite per-section Markdown files from the extraction cache",
	Long: `Walks every cached law document and writes one Markdown file per section
under the Markdown directory. No PDF is read and no OCR call is made.`,
	Args: cobra.NoArgs,
	RunE: runRegenerate,
}

func init() {
	rootCmd.AddCommand(regenerateCmd)
}

func runRegenerate(cmd *cobra.Command, _ []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()
	ctx := cmd.Context()
	store, err := a.openCache(ctx)
	if err != nil {
		return err
	}

	dir := a.cfg.Path(a.cfg.Extraction.MarkdownDir)
	docs, files := 0, 0
	err = store.Each(ctx, func(doc *domain.LawDocument) error {
		written, err := extractor.WriteSectionFiles(dir, doc)
		if err != nil {
			a.log.Error("section files failed", zap.String("doc_id", doc.SourceID), zap.String("filename", doc.Filename), zap.Error(err))
			return nil
		}
		docs++
		files += len(written)
		return nil
	})
	if err != nil {
		return err
	}
	cmd.Printf("Regenerated %d section files from %d documents in %s\n", files, docs, dir)
	return nil
}
