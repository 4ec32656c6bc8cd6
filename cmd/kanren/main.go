// Command kanren runs small demonstration queries against the relational
// engine: finite-domain puzzles, database queries and search-order
// comparisons.
package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/relogic/gokanren/internal/parallel"
	mk "github.com/relogic/gokanren/pkg/minikanren"
)

var (
	heading = color.New(color.FgCyan, color.Bold)
	good    = color.New(color.FgGreen)
	bad     = color.New(color.FgRed)
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		bad.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "kanren",
		Short:         "Demonstration queries for the gokanren engine",
		Version:       mk.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newFactorsCmd(),
		newQueensCmd(),
		newFamilyCmd(),
		newInterleaveCmd(),
		newAllCmd(),
	)
	return root
}

func positiveArg(args []string, fallback int) (int, error) {
	if len(args) == 0 {
		return fallback, nil
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 {
		return 0, fmt.Errorf("expected a positive integer, got %q", args[0])
	}
	return n, nil
}

func newFactorsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "factors [n]",
		Short: "Enumerate factor pairs with a product constraint",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := positiveArg(args, 36)
			if err != nil {
				return err
			}
			pairs, err := factorPairs(cmd.Context(), n)
			if err != nil {
				return err
			}
			heading.Printf("factor pairs of %d\n", n)
			for _, p := range pairs {
				fmt.Printf("  %d * %d = %d\n", p[0], p[1], n)
			}
			good.Printf("%d pairs\n", len(pairs))
			return nil
		},
	}
}

func newQueensCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "queens [n]",
		Short: "Solve n-queens over finite domains",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := positiveArg(args, 6)
			if err != nil {
				return err
			}
			first, total, err := queensBoards(cmd.Context(), n)
			if err != nil {
				return err
			}
			if total == 0 {
				bad.Printf("no solution on a %dx%d board\n", n, n)
				return nil
			}
			heading.Printf("%d queens\n", n)
			for _, col := range first {
				for c := 1; c <= n; c++ {
					if c == col {
						fmt.Print(" Q")
					} else {
						fmt.Print(" .")
					}
				}
				fmt.Println()
			}
			good.Printf("%d solutions in total\n", total)
			return nil
		},
	}
}

func newFamilyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "family",
		Short: "Query a fact database for grandparent relationships",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lines, err := familyTree(cmd.Context())
			if err != nil {
				return err
			}
			heading.Println("grandparents")
			for _, line := range lines {
				fmt.Printf("  %s\n", line)
			}
			return nil
		},
	}
}

func newInterleaveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "interleave",
		Short: "Contrast fair and depth-first search order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fair, dfs, err := interleaveOrders(cmd.Context())
			if err != nil {
				return err
			}
			heading.Println("conde over (1 2 3), (4 5 6), (7 8 9)")
			fmt.Printf("  fair:        %v\n", fair)
			fmt.Printf("  depth-first: %v\n", dfs)
			return nil
		},
	}
}

func newAllCmd() *cobra.Command {
	var workers int
	cmd := &cobra.Command{
		Use:   "all",
		Short: "Run every demo concurrently",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tasks := []parallel.Task{
				{Name: "factors", Run: func(ctx context.Context) error {
					_, err := factorPairs(ctx, 360)
					return err
				}},
				{Name: "queens", Run: func(ctx context.Context) error {
					_, _, err := queensBoards(ctx, 6)
					return err
				}},
				{Name: "family", Run: func(ctx context.Context) error {
					_, err := familyTree(ctx)
					return err
				}},
				{Name: "interleave", Run: func(ctx context.Context) error {
					_, _, err := interleaveOrders(ctx)
					return err
				}},
			}

			failed := 0
			for _, res := range parallel.NewPool(workers).RunAll(cmd.Context(), tasks) {
				if res.Err != nil {
					failed++
					bad.Printf("  %-12s %v\n", res.Name, res.Err)
					continue
				}
				good.Printf("  %-12s ok (%s)\n", res.Name, res.Duration.Round(time.Microsecond))
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d demos failed", failed, len(tasks))
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&workers, "workers", 0, "worker count, 0 for one per CPU")
	return cmd
}
