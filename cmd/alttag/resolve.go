package main

import (
	"fmt"

	"github.com/aretw0/alttag/internal/platform"
	"github.com/spf13/cobra"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve [id]",
	Short: "Print the label a document's images would get",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		app, err := openApp(ctx, nil, platform.WithMustExist(true), platform.WithAutoInit(false))
		if err != nil {
			fatal("Error initializing vault", err)
		}
		defer app.Close()

		if _, err := app.Vault.Get(ctx, args[0]); err != nil {
			fatal("Error reading document", err)
		}
		fmt.Println(app.Resolver.Resolve(ctx, args[0]))
	},
}

func init() {
	rootCmd.AddCommand(resolveCmd)
}
