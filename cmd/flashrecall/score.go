package main

import (
	"github.com/spf13/cobra"

	"github.com/verte-zerg/flashrecall/internal/recall"
	"github.com/verte-zerg/flashrecall/internal/tokens"
)

var (
	scoreReference string
	scoreInput     string
	scoreStrategy  string
)

func newScoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score a recall against a reference text",
		Args:  cobra.NoArgs,
		RunE:  runScoreCmd,
	}
	cmd.Flags().StringVar(&scoreReference, "reference", "", "reference text")
	cmd.Flags().StringVar(&scoreInput, "input", "", "recalled text")
	cmd.Flags().StringVar(&scoreStrategy, "strategy", defaultStrategy, "scoring strategy: positional or containment")
	return cmd
}

func runScoreCmd(cmd *cobra.Command, _ []string) error {
	strategy, err := recall.ByName(scoreStrategy)
	if err != nil {
		return err
	}
	report := strategy.Score(scoreInput, tokens.Split(scoreReference))
	return printReport(cmd.OutOrStdout(), report)
}
