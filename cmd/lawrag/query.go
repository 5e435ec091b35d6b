package main

import (
	"encoding/json"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"thai-legal-rag/internal/tui"
)

var (
	queryJSON bool
	queryTUI  bool
)

var queryCmd = &cobra.Command{
	Use:   "query [question]",
	Short: "Answer a legal question from the indexed laws",
	Long: `Retrieves the most relevant chunks from the vector and text indexes and
answers with citations. Without Gemini keys the answer is an extractive
summary of the retrieved chunks. --tui opens an interactive session.`,
	Args: func(cmd *cobra.Command, args []string) error {
		if queryTUI {
			return cobra.NoArgs(cmd, args)
		}
		return cobra.MinimumNArgs(1)(cmd, args)
	},
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output answer and results as JSON")
	queryCmd.Flags().BoolVar(&queryTUI, "tui", false, "interactive terminal UI")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()
	if err := a.openIndex(); err != nil {
		return err
	}
	svc := a.newQueryService()
	ctx := cmd.Context()

	if queryTUI {
		m := tui.New(ctx, svc, indexSummary(a))
		_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
		return err
	}

	question := strings.Join(args, " ")
	answer, results, err := svc.Ask(ctx, question)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}
	if queryJSON {
		data, err := json.MarshalIndent(map[string]any{"answer": answer, "results": results}, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal results: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Println(answer.Text)
	if len(answer.Sources) > 0 {
		cmd.Println()
		cmd.Println("Sources:")
		for i, s := range answer.Sources {
			line := fmt.Sprintf("  [%d] %s", i+1, s.Name)
			if s.URL != "" {
				line += "  " + s.URL
			}
			cmd.Println(line)
		}
	}
	return nil
}

func indexSummary(a *app) string {
	var parts []string
	if a.mem != nil {
		parts = append(parts, fmt.Sprintf("%d chunks", a.mem.Len()))
	}
	parts = append(parts, "embedder "+a.embedder.Name())
	if a.gemini == nil {
		parts = append(parts, "extractive answers")
	}
	return strings.Join(parts, " | ")
}
