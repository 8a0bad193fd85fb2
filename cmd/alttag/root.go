package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/alttag/internal/config"
	"github.com/aretw0/alttag/internal/metrics"
	"github.com/aretw0/alttag/internal/platform"
)

var (
	cfgFile   string
	vaultPath string
	verbose   bool

	cfg    *config.Config
	logger *slog.Logger
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "alttag",
	Short: "Keep image alt text in step with each document's SEO title",
	Long: `alttag watches a vault of Markdown + Frontmatter documents.
Whenever a document is saved, every <img> in its body gets the document's
canonical title as alt text, and the change is recorded in a ledger.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		wd, err := os.Getwd()
		if err != nil {
			return err
		}
		c.VaultPath = resolveVaultPath(c, vaultPath, wd)
		cfg = c

		level := parseLevel(cfg.LogLevel)
		if verbose {
			level = slog.LevelDebug
		}

		opts := &slog.HandlerOptions{
			Level: level,
		}
		logger = slog.New(slog.NewTextHandler(os.Stderr, opts))
		slog.SetDefault(logger)
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default $HOME/.alttag/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&vaultPath, "vault", "", "Vault directory (overrides vault_path)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
}

func parseLevel(raw string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// resolveVaultPath picks the vault: the --vault flag, then a configured vault_path,
// then the nearest ancestor of wd holding the system directory or .git.
// The home directory is never a vault: ~/.alttag holds the config file.
func resolveVaultPath(c *config.Config, flag, wd string) string {
	if flag != "" {
		return flag
	}
	if c.VaultPath != "" && c.VaultPath != "." {
		return c.VaultPath
	}
	root, err := platform.FindRoot(wd, c.SystemDir)
	if err != nil {
		return "."
	}
	if home, err := os.UserHomeDir(); err == nil && filepath.Clean(home) == root {
		return "."
	}
	return root
}

// openApp wires an App from the loaded config. m may be nil.
func openApp(ctx context.Context, m *metrics.Metrics, opts ...platform.Option) (*platform.App, error) {
	base := []platform.Option{
		platform.FromConfig(cfg),
		platform.WithLogger(logger),
	}
	if m != nil {
		base = append(base, platform.WithMetrics(m))
	}
	return platform.New(ctx, cfg.VaultPath, append(base, opts...)...)
}
