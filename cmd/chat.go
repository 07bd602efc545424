package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"aide/display"
)

var exitWords = map[string]bool{
	"exit": true, "quit": true, "bye": true, "goodbye": true,
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive session",
	Long:  `Read task requests from the terminal in a loop until you type exit, quit, or bye.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		a, err := newAssistant(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		disp := display.NewCLI(os.Stdout)
		reader := bufio.NewReader(os.Stdin)
		fmt.Println("aide ready. Type a task, or 'exit' to leave.")

		for {
			fmt.Print("\n> ")
			line, err := reader.ReadString('\n')
			if err != nil {
				if err == io.EOF {
					fmt.Println("\nGoodbye.")
					return nil
				}
				return err
			}

			input := strings.TrimSpace(line)
			if input == "" {
				continue
			}
			if exitWords[strings.ToLower(input)] {
				fmt.Println("Goodbye.")
				return nil
			}

			if _, err := a.Execute(ctx, input, disp); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
}
