package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// expiryShowCmd represents the expiry show command
var expiryShowCmd = &cobra.Command{
	Use:   "show <user_id>",
	Short: "Show a user's password expiry period",
	Long: `Show a user's password expiry period in days.

Users without an expiry record report 0.

Example:
  passmgrctl expiry show 42`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		days, err := showExpiry(cmd.Context(), args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to show password expiry: %v\n", err)
			os.Exit(1)
		}

		fmt.Println(days)
	},
}

func init() {
	expiryCmd.AddCommand(expiryShowCmd)
}

func showExpiry(ctx context.Context, userArg string) (int, error) {
	userID, err := parseUserID(userArg)
	if err != nil {
		return 0, err
	}

	s, err := openSession()
	if err != nil {
		return 0, err
	}
	defer s.close()

	return s.manager.GetExpiry(ctx, userID)
}
