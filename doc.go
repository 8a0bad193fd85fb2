// Package alttag is the composition root for the alttag engine.
//
// alttag keeps the alt text of every image in a document in step with the
// document's canonical SEO title. When a document is saved, the pipeline
// validates the save, resolves the label, rewrites every <img> alt attribute
// and records the change in a durable ledger.
//
// Features:
//
//   - **Hexagonal layout**: the engine in pkg/ talks to its host through the ports in pkg/core.
//   - **Vault adapter**: markdown + frontmatter documents, atomic writes, optional git commits.
//   - **Watcher**: filesystem saves become saved events; the engine never reacts to its own writes.
//   - **Ledger backends**: file, SQLite or memory.
//
// Usage:
//
//	app, err := alttag.New(ctx, "./vault",
//		alttag.WithSite(alttag.Site{Name: "My Blog"}),
//		alttag.WithLogger(logger),
//	)
//	res, err := app.Process(ctx, "blog/hello")
package alttag
