package main

import (
	"fmt"
	"os"

	"github.com/aretw0/alttag/internal/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change settings",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective settings",
	Run: func(cmd *cobra.Command, args []string) {
		encoder := yaml.NewEncoder(os.Stdout)
		encoder.SetIndent(2)
		if err := encoder.Encode(cfg); err != nil {
			fatal("Error encoding YAML", err)
		}
		_ = encoder.Close()
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Change one setting and save the config file",
	Long:  fmt.Sprintf("Change one setting and save the config file.\n\nKeys: %v", config.Keys()),
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		// Reload so the --vault override is not persisted.
		c, err := config.Load(cfgFile)
		if err != nil {
			fatal("Error loading config", err)
		}
		if err := c.Set(args[0], args[1]); err != nil {
			fatal("Error setting value", err)
		}
		if err := config.Save(c, cfgFile); err != nil {
			fatal("Error saving config", err)
		}
		fmt.Printf("%s = %s\n", args[0], args[1])
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd, configSetCmd)
}
