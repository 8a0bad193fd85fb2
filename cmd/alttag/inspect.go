package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/aretw0/alttag/internal/platform"
	"github.com/aretw0/alttag/pkg/rewrite"
	"github.com/spf13/cobra"
)

var (
	inspectJSON bool
)

type inspectReport struct {
	ID      string            `json:"id"`
	Label   string            `json:"label"`
	Images  []rewrite.Element `json:"images"`
	Pending int               `json:"pending"`
}

var inspectCmd = &cobra.Command{
	Use:   "inspect [id]",
	Short: "Show image alt state without changing anything",
	Long: `List every <img> in a document with its current alt text, and report how many
would change on the next save. Without an id, every document in the vault is listed
with its image and pending counts. Nothing is written.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		app, err := openApp(ctx, nil, platform.WithMustExist(true), platform.WithAutoInit(false))
		if err != nil {
			fatal("Error initializing vault", err)
		}
		defer app.Close()

		ids := args
		if len(ids) == 0 {
			if ids, err = app.Vault.List(ctx); err != nil {
				fatal("Error listing documents", err)
			}
		}

		reports := make([]inspectReport, 0, len(ids))
		for _, id := range ids {
			report, err := inspect(ctx, app, id)
			if err != nil {
				fatal("Error reading document", err)
			}
			reports = append(reports, report)
		}

		if inspectJSON {
			var payload any = reports
			if len(args) == 1 {
				payload = reports[0]
			}
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(payload); err != nil {
				fatal("Error encoding JSON", err)
			}
			return
		}

		if len(args) == 1 {
			printReport(reports[0])
			return
		}
		printOverview(reports)
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().BoolVar(&inspectJSON, "json", false, "Output in JSON format")
}

func inspect(ctx context.Context, app *platform.App, id string) (inspectReport, error) {
	doc, err := app.Vault.Get(ctx, id)
	if err != nil {
		return inspectReport{}, err
	}
	label := app.Resolver.Resolve(ctx, doc.ID)
	_, pending := rewrite.New().Rewrite(doc.Body, label)
	return inspectReport{ID: doc.ID, Label: label, Images: rewrite.Scan(doc.Body), Pending: pending}, nil
}

func printReport(r inspectReport) {
	fmt.Printf("Label: %q\n", r.Label)
	for i, el := range r.Images {
		alt := "(missing)"
		if el.HasAlt {
			alt = fmt.Sprintf("%q", el.Alt)
		}
		fmt.Printf("%3d  @%-6d alt=%s\n", i+1, el.Offset, alt)
	}
	fmt.Printf("%d image(s), %d would change\n", len(r.Images), r.Pending)
}

func printOverview(reports []inspectReport) {
	if len(reports) == 0 {
		fmt.Println("No documents found.")
		return
	}

	var sb strings.Builder
	w := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tIMAGES\tPENDING\tLABEL")
	for _, r := range reports {
		fmt.Fprintf(w, "%s\t%d\t%d\t%s\n", r.ID, len(r.Images), r.Pending, r.Label)
	}
	w.Flush()
	fmt.Print(sb.String())
}
