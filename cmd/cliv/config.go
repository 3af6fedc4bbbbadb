package main

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/cliv/internal/config"
	"github.com/jmylchreest/cliv/internal/theme"
)

var configOpts struct {
	validate bool
	initFile bool
	force    bool
	path     bool
	themes   bool
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show, check or create the configuration",
	Long: `Print the effective configuration as TOML: the config file merged over
the defaults.

Use --validate to only check the file, --init to write the defaults to the
config path, and --themes to list the available palettes.`,
	Args: cobra.NoArgs,
	// The file may be broken; runConfig loads it itself
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupLogger()
		return nil
	},
	RunE: runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)

	configCmd.Flags().BoolVar(&configOpts.validate, "validate", false,
		"Check the config file and exit")
	configCmd.Flags().BoolVar(&configOpts.initFile, "init", false,
		"Write the default configuration to the config path")
	configCmd.Flags().BoolVar(&configOpts.force, "force", false,
		"Overwrite an existing file with --init")
	configCmd.Flags().BoolVar(&configOpts.path, "path", false,
		"Print the config file path")
	configCmd.Flags().BoolVar(&configOpts.themes, "themes", false,
		"List bundled and user palettes")
}

func runConfig(cmd *cobra.Command, args []string) error {
	path := configPath()

	switch {
	case configOpts.path:
		fmt.Println(path)
		return nil

	case configOpts.themes:
		for _, name := range theme.NewLoader(logger).ListPalettes() {
			fmt.Println(name)
		}
		return nil

	case configOpts.initFile:
		if _, err := os.Stat(path); err == nil && !configOpts.force {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
		if err := config.DefaultConfig().Save(path); err != nil {
			return err
		}
		fmt.Printf("Wrote default configuration to %s\n", path)
		return nil
	}

	loaded, err := config.LoadConfig(path)
	if err != nil {
		return err
	}

	if configOpts.validate {
		fmt.Printf("%s: OK\n", path)
		return nil
	}

	data, err := toml.Marshal(loaded)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	_, err = os.Stdout.Write(data)
	return err
}
