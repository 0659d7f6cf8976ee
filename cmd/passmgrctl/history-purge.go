package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// historyPurgeCmd represents the history purge command
var historyPurgeCmd = &cobra.Command{
	Use:   "purge <user_id>",
	Short: "Delete all of a user's password history",
	Long: `Delete all of a user's password history.

Deleting a user removes its history through the foreign key cascade. Use
this command when the history has to go while the user stays.

Example:
  passmgrctl history purge 42`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		deleted, err := purgeHistory(cmd.Context(), args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to purge password history: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("Deleted %d history entries\n", deleted)
	},
}

func init() {
	historyCmd.AddCommand(historyPurgeCmd)
}

func purgeHistory(ctx context.Context, userArg string) (int64, error) {
	userID, err := parseUserID(userArg)
	if err != nil {
		return 0, err
	}

	s, err := openSession()
	if err != nil {
		return 0, err
	}
	defer s.close()

	return s.manager.PurgeHistory(ctx, userID)
}
