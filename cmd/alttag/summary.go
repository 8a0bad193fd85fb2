package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var (
	summaryJSON bool
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show the documents whose images were updated",
	Run: func(cmd *cobra.Command, args []string) {
		app, err := openApp(cmd.Context(), nil)
		if err != nil {
			fatal("Error initializing vault", err)
		}
		defer app.Close()

		sum := app.Ledger.Summary()

		if summaryJSON {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(sum); err != nil {
				fatal("Error encoding JSON", err)
			}
			return
		}

		if len(sum.Records) == 0 {
			fmt.Println("No updates have been recorded yet.")
			return
		}

		var sb strings.Builder
		w := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTITLE\tIMAGES\tDATE")
		for _, r := range sum.Records {
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", r.ID, r.Title, r.Count, r.UpdatedAt.Local().Format(time.DateTime))
		}
		w.Flush()
		fmt.Print(sb.String())
		fmt.Printf("\nTotal images updated: %d\n", sum.Total)
	},
}

func init() {
	rootCmd.AddCommand(summaryCmd)
	summaryCmd.Flags().BoolVar(&summaryJSON, "json", false, "Output in JSON format")
}
