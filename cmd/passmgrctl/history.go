package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/password-manager-in-go/pkg/store"
)

// historyCmd represents the history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Manage password history",
	Long:  `Record, list and purge the password history of a user.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("error: Command 'history' requires a subcommand (record, list, purge)")
		fmt.Println()
		_ = cmd.Help()
		os.Exit(1)
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
}

type historyEntryJSON struct {
	ID        int64  `json:"id"`
	UserID    int64  `json:"user_id"`
	CreatedAt string `json:"created_at"`
}

// writeHistory prints entries without their password values
func writeHistory(w io.Writer, entries []store.HistoryEntry, output string) error {
	if output == "json" {
		rows := make([]historyEntryJSON, 0, len(entries))
		for _, e := range entries {
			rows = append(rows, historyEntryJSON{
				ID:        e.ID,
				UserID:    e.UserID,
				CreatedAt: e.CreatedAt.UTC().Format(time.RFC3339),
			})
		}
		data, err := json.MarshalIndent(rows, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	}

	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "No password history")
		return err
	}
	fmt.Fprintf(w, "%-10s %-10s %s\n", "ID", "USER", "CREATED AT")
	for _, e := range entries {
		fmt.Fprintf(w, "%-10d %-10d %s\n", e.ID, e.UserID, e.CreatedAt.UTC().Format(time.RFC3339))
	}
	return nil
}
