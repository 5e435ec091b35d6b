package main

import (
	"errors"

	"github.com/spf13/cobra"

	"thai-legal-rag/internal/drive"
	"thai-legal-rag/internal/service"
)

var indexOpts service.IndexOptions

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Extract, chunk and index every law PDF in the Drive folder",
	Long: `Lists PDFs in the law folder (DRIVE_FOLDER_LAW unless --folder is given),
extracts each one natively or with remote OCR, chunks it along its section
hierarchy and adds new chunks to the vector and text indexes. Documents that
fail are listed in a failed log under the data directory.`,
	Args: cobra.NoArgs,
	RunE: runIndex,
}

func init() {
	f := indexCmd.Flags()
	f.StringVar(&indexOpts.FolderID, "folder", "", "Drive folder id (default $"+drive.EnvLawFolder+")")
	f.StringVar(&indexOpts.FileID, "file-id", "", "index a single file id")
	f.StringVar(&indexOpts.FileName, "file-name", "", "file name to use with --file-id when it is not listed")
	f.BoolVar(&indexOpts.DryRun, "dry-run", false, "extract and chunk without writing the index")
	f.BoolVar(&indexOpts.Force, "force", false, "ignore the extraction cache")
	f.IntVarP(&indexOpts.Workers, "workers", "w", 0, "documents processed concurrently (default from config)")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	opts := indexOpts
	if opts.FolderID == "" && opts.FileID == "" {
		id, err := drive.FolderFromEnv()
		if err != nil {
			return err
		}
		opts.FolderID = id
	}
	if opts.Workers <= 0 {
		opts.Workers = a.cfg.Batch.Workers
	}

	if err := a.openIndex(); err != nil {
		return err
	}
	store, err := a.openCache(ctx)
	if err != nil {
		return err
	}
	source, err := a.openSource(ctx)
	if err != nil {
		return err
	}

	indexer := service.NewLawIndexer(source, a.newExtractor(store), a.newLawChunker(), a.manager, a.cfg.DataDir,
		service.WithIndexerLogger(a.log.Named("indexer")))
	rep, runErr := indexer.Run(ctx, opts)
	if !opts.DryRun && rep.Processed > 0 {
		if err := a.saveEmbedder(); err != nil {
			return err
		}
	}
	printReport(cmd, rep, opts.DryRun)
	if runErr != nil {
		return runErr
	}
	if len(rep.Failed) > 0 && rep.Processed == 0 {
		return errors.New("every document failed")
	}
	return nil
}

func printReport(cmd *cobra.Command, rep service.Report, dryRun bool) {
	mode := ""
	if dryRun {
		mode = " (dry run)"
	}
	cmd.Printf("Indexed %d/%d documents%s\n", rep.Processed, rep.Files, mode)
	cmd.Printf("  chunks: %d  added: %d  skipped: %d\n", rep.Chunks, rep.Added, rep.Skipped)
	if len(rep.Failed) == 0 {
		return
	}
	cmd.Printf("  failed: %d\n", len(rep.Failed))
	for _, f := range rep.Failed {
		cmd.Printf("    %s  %s: %s\n", f.ID, f.Name, f.Error)
	}
	if rep.FailedLog != "" {
		cmd.Printf("  failed log: %s\n", rep.FailedLog)
	}
}
