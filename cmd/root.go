package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"aide/assistant"
	"aide/config"
	"aide/display"
)

var (
	configPath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "aide [task description]",
	Short: "aide is a task-running assistant for local and hosted language models",
	Long: `aide classifies a natural-language request, breaks complex requests
into dependency-ordered steps, and runs them: generating files, gathering
information from the web, or answering directly.`,
	Args: cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return cmd.Help()
		}
		description := strings.Join(args, " ")

		ctx := context.Background()
		a, err := newAssistant(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		out, err := a.Execute(ctx, description, display.NewCLI(os.Stdout))
		if err != nil {
			return err
		}
		if out.Direct && out.Result != nil && !out.Result.Success {
			return fmt.Errorf("task failed: %s", out.Result.Error)
		}
		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to HCL config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (trace, debug, info, warn, error)")
}

func newAssistant(ctx context.Context) (*assistant.Assistant, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	logger := hclog.New(&hclog.LoggerOptions{
		Name:   "aide",
		Level:  hclog.LevelFromString(logLevel),
		Output: os.Stderr,
	})
	return assistant.New(ctx, cfg, logger)
}
