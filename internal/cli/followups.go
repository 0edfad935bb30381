package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var reviewFollowUps bool

var followupsCmd = &cobra.Command{
	Use:   "followups",
	Short: "List due follow-ups",
	Long: "Lists follow-ups that are due. With --review, each due item " +
		"can be marked completed interactively.",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(cmd.Context(), cfgPath, verbose)
		if err != nil {
			return err
		}
		defer a.Close()

		if reviewFollowUps {
			return a.orch.CheckFollowUps(cmd.Context())
		}

		due, err := a.scheduler.DueItems(cmd.Context(), time.Now())
		if err != nil {
			return err
		}
		if len(due) == 0 {
			fmt.Println(dimStyle.Render("No due follow-ups."))
			return nil
		}

		fmt.Printf("%d follow-up(s) due:\n\n", len(due))
		for _, fu := range due {
			fmt.Println(renderFollowUp(fu))
			fmt.Println()
		}
		return nil
	},
}

var followupsCancelCmd = &cobra.Command{
	Use:   "cancel <message-id>",
	Short: "Cancel a scheduled follow-up",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(cmd.Context(), cfgPath, verbose)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.scheduler.Cancel(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Printf("Follow-up for %s cancelled.\n", args[0])
		return nil
	},
}

func init() {
	followupsCmd.Flags().BoolVar(&reviewFollowUps, "review", false,
		"interactively mark due follow-ups completed")
	followupsCmd.AddCommand(followupsCancelCmd)
	rootCmd.AddCommand(followupsCmd)
}
