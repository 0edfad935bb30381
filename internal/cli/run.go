package cli

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var continuous bool

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Process unread messages",
	Long: "Runs one processing cycle over unread messages, or polls " +
		"continuously with --continuous until interrupted.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(
			cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a, err := buildApp(ctx, cfgPath, verbose)
		if err != nil {
			return err
		}
		defer a.Close()

		if continuous {
			total, err := a.orch.RunContinuous(ctx)
			if err != nil {
				return err
			}
			printRunStats(total.Processed, total.Sent, total.Skipped, total.Errors)
			return printSystemStats(ctx, a)
		}

		run, err := a.orch.ProcessMessages(ctx)
		if err != nil {
			return err
		}
		if err := a.orch.CheckFollowUps(ctx); err != nil {
			return err
		}
		printRunStats(run.Processed, run.Sent, run.Skipped, run.Errors)
		return nil
	},
}

func printRunStats(processed, sent, skipped, errors int) {
	fmt.Println(titleStyle.Render("RUN SUMMARY"))
	fmt.Printf("  Processed: %d\n  Sent: %d\n  Skipped: %d\n  Errors: %d\n",
		processed, sent, skipped, errors)
}

func init() {
	runCmd.Flags().BoolVar(&continuous, "continuous", false,
		"poll the mailbox continuously")
	rootCmd.AddCommand(runCmd)
}
