package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/password-manager-in-go/pkg/passwords"
)

// historyRecordCmd represents the history record command
var historyRecordCmd = &cobra.Command{
	Use:   "record <user_id> <encrypted_password>",
	Short: "Record a password change",
	Long: `Record a password change in the user's history.

The password must already be hashed or encrypted; it is stored as given.
When the user already has PASSWORD_HISTORY_LIFE entries, the oldest one is
removed first.

Example:
  passmgrctl history record 42 '$2a$10$N9qo8uLOickgx2ZMRZoMye'
  passmgrctl history record 42 '$2a$10$...' --at 2024-03-01T09:00:00Z`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		at, _ := cmd.Flags().GetString("at")

		change, err := recordPasswordChange(cmd.Context(), args[0], args[1], at)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to record password change: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("Recorded history entry %d for user %d\n", change.Entry.ID, change.Entry.UserID)
		if change.Evicted != nil {
			fmt.Printf("Evicted history entry %d\n", change.Evicted.ID)
		}
	},
}

func init() {
	historyCmd.AddCommand(historyRecordCmd)
	historyRecordCmd.Flags().String("at", "", "Change time in RFC3339 (default: now)")
}

func parseChangeTime(at string) (time.Time, error) {
	if at == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, at)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --at value %q: %w", at, err)
	}
	return t.UTC(), nil
}

func recordPasswordChange(ctx context.Context, userArg, encryptedPassword, at string) (*passwords.Change, error) {
	userID, err := parseUserID(userArg)
	if err != nil {
		return nil, err
	}
	now, err := parseChangeTime(at)
	if err != nil {
		return nil, err
	}

	s, err := openSession()
	if err != nil {
		return nil, err
	}
	defer s.close()

	policy, err := historyPolicy(s.cfg)
	if err != nil {
		return nil, err
	}

	return s.manager.RecordPasswordChange(ctx, policy, userID, encryptedPassword, now)
}
