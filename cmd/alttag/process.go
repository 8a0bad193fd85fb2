package main

import (
	"fmt"

	"github.com/aretw0/alttag/internal/platform"
	"github.com/spf13/cobra"
)

var processCmd = &cobra.Command{
	Use:   "process [id]",
	Short: "Rewrite the image alt text of a document",
	Long:  `Run the update pipeline for one document as if it had just been saved.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id := args[0]
		ctx := cmd.Context()
		app, err := openApp(ctx, nil, platform.WithMustExist(true), platform.WithAutoInit(false))
		if err != nil {
			fatal("Error initializing vault", err)
		}
		defer app.Close()

		res, err := app.Process(ctx, id)
		if err != nil {
			fatal("Error processing document", err)
		}

		switch {
		case res.Verdict.Skipped():
			fmt.Printf("%s: skipped (%s)\n", id, res.Verdict)
		case res.Count == 0:
			fmt.Printf("%s: up to date\n", id)
		default:
			fmt.Printf("%s: %d image(s) set to %q\n", id, res.Count, res.Label)
		}
	},
}

func init() {
	rootCmd.AddCommand(processCmd)
}
