package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/password-manager-in-go/pkg/config"
)

// expirySetCmd represents the expiry set command
var expirySetCmd = &cobra.Command{
	Use:   "set <user_id> [days]",
	Short: "Set a user's password expiry period",
	Long: `Set a user's password expiry period in days.

When days is omitted, PASSWORD_EXPIRY_TIME is used.

Example:
  passmgrctl expiry set 42 90
  passmgrctl expiry set 42`,
	Args: cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		daysArg := ""
		if len(args) > 1 {
			daysArg = args[1]
		}

		days, err := setExpiry(cmd.Context(), args[0], daysArg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to set password expiry: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("Password expiry for user %s set to %d days\n", args[0], days)
	},
}

func init() {
	expiryCmd.AddCommand(expirySetCmd)
}

// parseExpiryDays reads days from arg, or from PASSWORD_EXPIRY_TIME when
// arg is empty
func parseExpiryDays(arg string, cfg *config.Config) (int, error) {
	if arg == "" {
		return cfg.ExpiryTime()
	}
	days, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("invalid days %q: must be an integer", arg)
	}
	return days, nil
}

func setExpiry(ctx context.Context, userArg, daysArg string) (int, error) {
	userID, err := parseUserID(userArg)
	if err != nil {
		return 0, err
	}

	s, err := openSession()
	if err != nil {
		return 0, err
	}
	defer s.close()

	days, err := parseExpiryDays(daysArg, s.cfg)
	if err != nil {
		return 0, err
	}

	return days, s.manager.SetExpiry(ctx, userID, days)
}
