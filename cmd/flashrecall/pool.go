package main

import (
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/flashrecall/internal/config"
	"github.com/verte-zerg/flashrecall/internal/model"
	"github.com/verte-zerg/flashrecall/internal/pool"
)

var (
	poolOut    string
	poolSimple int
	poolMedium int
	poolHard   int
	poolForce  bool
	poolSeed   int64
)

func newPoolCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pool",
		Short: "Manage the sentence pool",
	}
	generate := &cobra.Command{
		Use:   "generate",
		Short: "Write a generated sentence pool",
		Args:  cobra.NoArgs,
		RunE:  runPoolGenerateCmd,
	}
	generate.Flags().StringVar(&poolOut, "out", "", "output path, .json or .yaml (default: XDG config dir)")
	generate.Flags().IntVar(&poolSimple, "simple", pool.DefaultCounts[model.DifficultySimple], "simple sentences")
	generate.Flags().IntVar(&poolMedium, "medium", pool.DefaultCounts[model.DifficultyMedium], "medium sentences")
	generate.Flags().IntVar(&poolHard, "hard", pool.DefaultCounts[model.DifficultyHard], "hard sentences")
	generate.Flags().BoolVar(&poolForce, "force", false, "overwrite an existing file")
	generate.Flags().Int64Var(&poolSeed, "seed", 0, "random seed (default: current time)")
	cmd.AddCommand(generate)
	return cmd
}

func runPoolGenerateCmd(cmd *cobra.Command, _ []string) error {
	if poolSimple < 0 || poolMedium < 0 || poolHard < 0 {
		return fmt.Errorf("sentence counts must be >= 0")
	}
	out := poolOut
	if out == "" {
		out = config.DefaultPoolPath()
	}
	if !poolForce {
		if _, err := os.Stat(out); err == nil {
			return fmt.Errorf("sentence pool already exists: %s (use --force to overwrite)", out)
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat sentence pool: %w", err)
		}
	}
	seed := poolSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	p := pool.Compose(rand.New(rand.NewSource(seed)), map[model.Difficulty]int{
		model.DifficultySimple: poolSimple,
		model.DifficultyMedium: poolMedium,
		model.DifficultyHard:   poolHard,
	})
	if err := pool.Save(out, p); err != nil {
		return fmt.Errorf("failed to write %s: %w", out, err)
	}
	if _, err := fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d sentences to %s\n", p.Size(), out); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
