package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"thai-legal-rag/internal/mdloader"
)

var indexMDCmd = &cobra.Command{
	Use:   "index-md <dir>",
	Short: "Index Markdown files with YAML front matter",
	Args:  cobra.ExactArgs(1),
	RunE:  runIndexMD,
}

func init() {
	rootCmd.AddCommand(indexMDCmd)
}

func runIndexMD(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()
	if err := a.openIndex(); err != nil {
		return err
	}

	chunks, err := mdloader.NewLoader(a.newTextChunker(), a.log.Named("mdloader")).LoadDir(args[0])
	if err != nil {
		return err
	}
	if len(chunks) == 0 {
		cmd.Println("No Markdown chunks found.")
		return nil
	}
	res, err := a.manager.AddBatch(cmd.Context(), chunks)
	if err != nil {
		return err
	}
	if res.Added > 0 {
		if err := a.manager.Save(); err != nil {
			return err
		}
		if err := a.saveEmbedder(); err != nil {
			return err
		}
	}
	a.log.Info("markdown indexed", zap.String("dir", args[0]), zap.Int("added", res.Added), zap.Int("skipped", res.Skipped))
	cmd.Printf("Chunks: %d  added: %d  skipped: %d\n", len(chunks), res.Added, res.Skipped)
	return nil
}
