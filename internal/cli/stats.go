package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show follow-up and retrieval statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(cmd.Context(), cfgPath, verbose)
		if err != nil {
			return err
		}
		defer a.Close()

		return printSystemStats(cmd.Context(), a)
	},
}

func printSystemStats(ctx context.Context, a *app) error {
	fuStats, err := a.scheduler.Stats(ctx)
	if err != nil {
		return err
	}

	corpusSize, err := a.store.CountRetrievalRecords(ctx)
	if err != nil {
		return err
	}

	total := fuStats.Pending + fuStats.Completed
	completionRate := 0.0
	if total > 0 {
		completionRate = float64(fuStats.Completed) / float64(total) * 100
	}

	fmt.Println(titleStyle.Render("SYSTEM STATISTICS"))
	fmt.Printf("  Retrieval corpus: %d reply pairs\n", corpusSize)
	fmt.Println("  Follow-ups:")
	fmt.Printf("    Total: %d\n", total)
	fmt.Printf("    Pending: %d\n", fuStats.Pending)
	fmt.Printf("    Overdue: %d\n", fuStats.Overdue)
	fmt.Printf("    Completed: %d\n", fuStats.Completed)
	fmt.Printf("    Completion rate: %.1f%%\n", completionRate)
	return nil
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
