package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"lexrag/internal/domain"
)

var askCmd = &cobra.Command{
	Use:   "ask [question] [path...]",
	Short: "Answer a question from text files",
	Long: `Ingests the given files, retrieves the best matching chunks and asks the
configured LLM to answer from them. Requires llm.type: openai in the config.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	svc, _, err := buildService(args[1:])
	if err != nil {
		return err
	}
	answer, err := svc.Answer(context.Background(), args[0])
	if errors.Is(err, domain.ErrLLMUnavailable) {
		return fmt.Errorf("%w: set llm.type to openai in %s", err, cfgSource)
	}
	if err != nil {
		return err
	}
	cmd.Println(answer)
	return nil
}
