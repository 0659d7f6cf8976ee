package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// expiryCmd represents the expiry command
var expiryCmd = &cobra.Command{
	Use:   "expiry",
	Short: "Manage password expiry periods",
	Long:  `Set, show and clear the password expiry period of a user.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("error: Command 'expiry' requires a subcommand (set, show, clear)")
		fmt.Println()
		_ = cmd.Help()
		os.Exit(1)
	},
}

func init() {
	rootCmd.AddCommand(expiryCmd)
}
