package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// historyListCmd represents the history list command
var historyListCmd = &cobra.Command{
	Use:   "list <user_id>",
	Short: "List a user's password history",
	Long: `List a user's password history, oldest first.

Password values are never printed.

Example:
  passmgrctl history list 42
  passmgrctl history list 42 --output json`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		output, _ := cmd.Flags().GetString("output")

		if err := listHistory(cmd.Context(), args[0], output); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to list password history: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	historyCmd.AddCommand(historyListCmd)
	historyListCmd.Flags().StringP("output", "o", "text", "Output format (text or json)")
}

func listHistory(ctx context.Context, userArg, output string) error {
	userID, err := parseUserID(userArg)
	if err != nil {
		return err
	}

	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.close()

	entries, err := s.manager.History(ctx, userID)
	if err != nil {
		return err
	}
	return writeHistory(os.Stdout, entries, output)
}
