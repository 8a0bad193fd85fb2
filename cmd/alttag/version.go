package main

import (
	"fmt"

	"github.com/aretw0/alttag"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of alttag",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("alttag version %s\n", alttag.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
