// Package config loads and saves alttag settings.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Ledger backends.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

const (
	envPrefix  = "ALTTAG"
	homeDir    = ".alttag"
	configName = "config"
)

// Config is the full set of alttag settings.
type Config struct {
	VaultPath        string              `mapstructure:"vault_path" yaml:"vault_path"`
	SystemDir        string              `mapstructure:"system_dir" yaml:"system_dir"`
	LedgerBackend    string              `mapstructure:"ledger_backend" yaml:"ledger_backend"`
	LedgerPath       string              `mapstructure:"ledger_path" yaml:"ledger_path"`
	Actor            string              `mapstructure:"actor" yaml:"actor"`
	Editors          map[string][]string `mapstructure:"editors" yaml:"editors"`
	AllowedKinds     []string            `mapstructure:"allowed_kinds" yaml:"allowed_kinds"`
	SEOTitleKey      string              `mapstructure:"seo_title_key" yaml:"seo_title_key"`
	UseSEOTitle      bool                `mapstructure:"use_seo_title" yaml:"use_seo_title"`
	SiteName         string              `mapstructure:"site_name" yaml:"site_name"`
	SiteDescription  string              `mapstructure:"site_description" yaml:"site_description"`
	Separator        string              `mapstructure:"separator" yaml:"separator"`
	Versioning       bool                `mapstructure:"versioning" yaml:"versioning"`
	AutosavePatterns []string            `mapstructure:"autosave_patterns" yaml:"autosave_patterns"`
	RevisionDir      string              `mapstructure:"revision_dir" yaml:"revision_dir"`
	AdminAddr        string              `mapstructure:"admin_addr" yaml:"admin_addr"`
	LogLevel         string              `mapstructure:"log_level" yaml:"log_level"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("vault_path", ".")
	v.SetDefault("system_dir", ".alttag")
	v.SetDefault("ledger_backend", BackendFile)
	v.SetDefault("ledger_path", "")
	v.SetDefault("actor", "")
	v.SetDefault("editors", map[string][]string{})
	v.SetDefault("allowed_kinds", []string{"post", "page"})
	v.SetDefault("seo_title_key", "seo_title")
	v.SetDefault("use_seo_title", true)
	v.SetDefault("site_name", "")
	v.SetDefault("site_description", "")
	v.SetDefault("separator", "-")
	v.SetDefault("versioning", false)
	v.SetDefault("autosave_patterns", []string{})
	v.SetDefault("revision_dir", "_revisions")
	v.SetDefault("admin_addr", "127.0.0.1:8477")
	v.SetDefault("log_level", "info")
}

// Keys lists every setting name, sorted.
func Keys() []string {
	v := viper.New()
	setDefaults(v)
	keys := v.AllKeys()
	sort.Strings(keys)
	return keys
}

// DefaultPath is ~/.alttag/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, homeDir, configName+".yaml"), nil
}

// Load loads configuration from defaults, an optional config file and ALTTAG_* env vars.
// Precedence: env > config file > defaults. A missing config file is not an error.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		v.AddConfigPath(filepath.Join(home, homeDir))
		v.SetConfigName(configName)
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}

// Save writes c to cfgFile, or to DefaultPath when cfgFile is empty.
func Save(c *Config, cfgFile string) error {
	path := cfgFile
	if path == "" {
		var err error
		if path, err = DefaultPath(); err != nil {
			return err
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Set assigns one setting from its string form.
// Lists are comma separated; editors take "actor=glob,glob".
func (c *Config) Set(key, value string) error {
	switch key {
	case "vault_path":
		c.VaultPath = value
	case "system_dir":
		c.SystemDir = value
	case "ledger_backend":
		switch value {
		case BackendFile, BackendSQLite, BackendMemory:
			c.LedgerBackend = value
		default:
			return fmt.Errorf("unknown ledger backend %q", value)
		}
	case "ledger_path":
		c.LedgerPath = value
	case "actor":
		c.Actor = value
	case "editors":
		actor, globs, ok := strings.Cut(value, "=")
		if !ok || strings.TrimSpace(actor) == "" {
			return fmt.Errorf("editors expects actor=glob[,glob]")
		}
		if c.Editors == nil {
			c.Editors = make(map[string][]string)
		}
		patterns := splitList(globs)
		if len(patterns) == 0 {
			delete(c.Editors, strings.TrimSpace(actor))
		} else {
			c.Editors[strings.TrimSpace(actor)] = patterns
		}
	case "allowed_kinds":
		c.AllowedKinds = splitList(value)
	case "seo_title_key":
		c.SEOTitleKey = value
	case "use_seo_title":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("use_seo_title: %w", err)
		}
		c.UseSEOTitle = b
	case "site_name":
		c.SiteName = value
	case "site_description":
		c.SiteDescription = value
	case "separator":
		c.Separator = value
	case "versioning":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("versioning: %w", err)
		}
		c.Versioning = b
	case "autosave_patterns":
		c.AutosavePatterns = splitList(value)
	case "revision_dir":
		c.RevisionDir = value
	case "admin_addr":
		c.AdminAddr = value
	case "log_level":
		c.LogLevel = value
	default:
		return fmt.Errorf("unknown config key %q", key)
	}
	return nil
}

// ResolveLedgerPath returns the ledger location for file and sqlite backends,
// defaulting to the vault system directory.
func (c *Config) ResolveLedgerPath() string {
	if c.LedgerPath != "" {
		return c.LedgerPath
	}
	base := filepath.Join(c.VaultPath, c.SystemDir)
	if c.LedgerBackend == BackendSQLite {
		return filepath.Join(base, "alttag.db")
	}
	return filepath.Join(base, "kv")
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
