package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// expiryClearCmd represents the expiry clear command
var expiryClearCmd = &cobra.Command{
	Use:   "clear <user_id>",
	Short: "Remove a user's password expiry record",
	Long: `Remove a user's password expiry record.

Afterwards the user reports the default of 0 days.

Example:
  passmgrctl expiry clear 42`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := clearExpiry(cmd.Context(), args[0]); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to clear password expiry: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("Password expiry for user %s cleared\n", args[0])
	},
}

func init() {
	expiryCmd.AddCommand(expiryClearCmd)
}

func clearExpiry(ctx context.Context, userArg string) error {
	userID, err := parseUserID(userArg)
	if err != nil {
		return err
	}

	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.close()

	return s.manager.ClearExpiry(ctx, userID)
}
