package alttag_test

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/aretw0/alttag"
)

// Example_process rewrites the images of one document and prints the ledger.
func Example_process() {
	tmpDir, err := os.MkdirTemp("", "alttag-example-*")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(tmpDir)

	note := "---\ntitle: Hello\nseo_title: '%%title%% %%sep%% %%sitename%%'\n---\n<img src=\"cover.jpg\">\n"
	if err := os.WriteFile(filepath.Join(tmpDir, "hello.md"), []byte(note), 0644); err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	app, err := alttag.New(ctx, tmpDir,
		alttag.WithLedgerBackend("memory"),
		alttag.WithSite(alttag.Site{Name: "My Blog"}),
	)
	if err != nil {
		log.Fatal(err)
	}
	defer app.Close()

	res, err := app.Process(ctx, "hello")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("%s: %d image(s) labelled %q\n", res.Verdict, res.Count, res.Label)

	doc, err := app.Vault.Get(ctx, "hello")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Print(doc.Body)

	for _, r := range app.Ledger.Summary().Records {
		fmt.Printf("%s %q %d\n", r.ID, r.Title, r.Count)
	}

	// Output:
	// proceed: 1 image(s) labelled "Hello - My Blog"
	// <img alt="Hello - My Blog" src="cover.jpg">
	// hello "Hello" 1
}
