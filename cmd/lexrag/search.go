package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"lexrag/internal/config"
	"lexrag/internal/domain"
	"lexrag/internal/similarity"
)

var (
	searchLimit     int
	searchJSON      bool
	searchMode      string
	searchAlgorithm string
	searchThreshold float64
	searchFilters   []string
)

var searchCmd = &cobra.Command{
	Use:   "search [query] [path...]",
	Short: "Search text files",
	Long: `Ingests the given files, directories or glob patterns and ranks their
chunks against the query.

Modes:
  standard    - lexical scoring with filters and threshold
  hybrid      - keyword overlap blended with the lexical scorer
  multi_query - LLM paraphrases, ranked by how many variants hit a chunk
  compression - LLM extracts only the relevant part of each chunk

Filters and the threshold apply in every mode. Only standard mode prints scores.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 0, "maximum number of results (default from config)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	searchCmd.Flags().StringVar(&searchMode, "mode", "", "retrieval mode (default from config)")
	searchCmd.Flags().StringVarP(&searchAlgorithm, "algorithm", "a", "", "similarity algorithm: cosine, jaccard, euclidean, bm25")
	searchCmd.Flags().Float64Var(&searchThreshold, "threshold", -1, "minimum score (default from config)")
	searchCmd.Flags().StringArrayVarP(&searchFilters, "filter", "f", nil, "metadata filter key=value (repeatable)")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	query, paths := args[0], args[1:]
	if searchAlgorithm != "" {
		if _, err := similarity.ParseAlgorithm(searchAlgorithm); err != nil {
			return err
		}
		cfg.Retriever.Algorithm = searchAlgorithm
	}
	if searchThreshold >= 0 {
		cfg.Retriever.Threshold = searchThreshold
	}
	filters, err := parseFilters(searchFilters)
	if err != nil {
		return err
	}

	svc, _, err := buildService(paths)
	if err != nil {
		return err
	}

	mode := searchMode
	if mode == "" {
		mode = cfg.Retriever.Mode
	}
	var results []domain.ScoredDocument
	if mode == config.ModeStandard {
		results, err = svc.QueryWithFilters(query, searchLimit, filters)
	} else {
		var docs []domain.Document
		docs, err = svc.RetrieveWithFilters(context.Background(), query, mode, searchLimit, filters)
		for _, d := range docs {
			results = append(results, domain.ScoredDocument{Document: d})
		}
	}
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, results)
	}
	return outputSearchTable(cmd, results, mode == config.ModeStandard)
}

func parseFilters(raw []string) (map[string]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	filters := make(map[string]string, len(raw))
	for _, f := range raw {
		k, v, ok := strings.Cut(f, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid filter %q, want key=value", f)
		}
		filters[k] = v
	}
	return filters, nil
}

func outputSearchJSON(cmd *cobra.Command, results []domain.ScoredDocument) error {
	if results == nil {
		results = []domain.ScoredDocument{}
	}
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchTable(cmd *cobra.Command, results []domain.ScoredDocument, scored bool) error {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for i, r := range results {
		if scored {
			cmd.Printf("  [%d] %s (%.3f)\n", i+1, r.Document.ID, r.Score)
		} else {
			cmd.Printf("  [%d] %s\n", i+1, r.Document.ID)
		}
		cmd.Printf("      %s\n", snippet(r.Document.Content, 160))
		cmd.Println()
	}
	return nil
}

// snippet collapses whitespace and cuts s to at most n runes.
func snippet(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}
