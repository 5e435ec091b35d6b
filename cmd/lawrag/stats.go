package main

import (
	"sort"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache, ledger and index counts",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, _ []string) error {
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
	cached, err := store.Count(ctx)
	if err != nil {
		return err
	}
	if err := a.openIndex(); err != nil {
		return err
	}
	st, err := a.ledger.Stats(ctx)
	if err != nil {
		return err
	}

	cmd.Printf("Cached documents: %d\n", cached)
	cmd.Printf("Indexed chunks:   %d\n", st.TotalIndexedChunks)
	if a.mem != nil {
		cmd.Printf("Vectors:          %d\n", a.mem.Len())
	}
	if a.text != nil {
		n, err := a.text.Count()
		if err != nil {
			return err
		}
		cmd.Printf("Text index docs:  %d\n", n)
	}
	sources := make([]string, 0, len(st.BySource))
	for s := range st.BySource {
		sources = append(sources, s)
	}
	sort.Strings(sources)
	for _, s := range sources {
		cmd.Printf("  %-40s %d\n", s, st.BySource[s])
	}
	return nil
}
