package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear the update summary",
	Run: func(cmd *cobra.Command, args []string) {
		app, err := openApp(cmd.Context(), nil)
		if err != nil {
			fatal("Error initializing vault", err)
		}
		defer app.Close()

		if err := app.Ledger.Clear(cmd.Context()); err != nil {
			fatal("Error clearing summary", err)
		}
		fmt.Println("Summary has been cleared.")
	},
}

func init() {
	rootCmd.AddCommand(clearCmd)
}
