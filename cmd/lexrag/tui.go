package main

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"lexrag/internal/similarity"
	"lexrag/internal/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui [path...]",
	Short: "Search files interactively",
	Long: `Ingests the given files and opens an interactive search screen.

Controls:
  Enter  - Search
  ↑/↓    - Previous / next result
  Tab    - Switch similarity algorithm
  Ctrl+C - Quit`,
	Args: cobra.MinimumNArgs(1),
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, args []string) error {
	svc, summary, err := buildService(args)
	if err != nil {
		return err
	}
	algo, err := similarity.ParseAlgorithm(cfg.Retriever.Algorithm)
	if err != nil {
		return err
	}
	m := tui.New(svc, summary, algo)
	_, err = tea.NewProgram(m, tea.WithContext(cmd.Context())).Run()
	return err
}
