package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check database connectivity",
	Long: `Check that the database in DATABASE_URL is reachable.

Example:
  passmgrctl status
  passmgrctl status --timeout 10s`,
	Run: func(cmd *cobra.Command, args []string) {
		timeout, _ := cmd.Flags().GetDuration("timeout")

		if err := checkStatus(timeout); err != nil {
			fmt.Fprintf(os.Stderr, "Database is not reachable: %v\n", err)
			os.Exit(1)
		}

		fmt.Println("OK")
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().Duration("timeout", 5*time.Second, "Connectivity check timeout")
}

func checkStatus(timeout time.Duration) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.close()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	return s.manager.Status(ctx)
}
