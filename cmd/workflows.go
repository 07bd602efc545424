package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var workflowsCmd = &cobra.Command{
	Use:   "workflows",
	Short: "List saved workflows",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		a, err := newAssistant(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		infos, err := a.ListWorkflows(ctx)
		if err != nil {
			return err
		}
		if len(infos) == 0 {
			fmt.Println("No saved workflows.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tSTATUS\tTASKS\tUPDATED\tDESCRIPTION")
		for _, info := range infos {
			desc := info.Description
			if len(desc) > 60 {
				desc = desc[:60] + "..."
			}
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n",
				info.ID, info.Status, info.TaskCount,
				info.UpdatedAt.Format("2006-01-02 15:04"), desc)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(workflowsCmd)
}
