package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"aide/display"
)

var resumeCmd = &cobra.Command{
	Use:   "resume <workflow-id>",
	Short: "Resume an interrupted workflow",
	Long: `Reload a saved workflow and continue from where it stopped.
Completed tasks are not re-run; tasks that were interrupted mid-flight
are executed again.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		a, err := newAssistant(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		summary, err := a.Resume(ctx, args[0], display.NewCLI(os.Stdout))
		if err != nil {
			return err
		}
		if summary.Failed > 0 {
			return fmt.Errorf("workflow finished with %d failed tasks", summary.Failed)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(resumeCmd)
}
