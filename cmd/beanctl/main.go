package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var Version = "dev"

// settings resolve flag, then env (DB_PATH, CATALOG_FILE, CATALOG_XLSX),
// then the optional --config yaml file.
var settings = viper.New()

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "beanctl",
		Short:   "beanctl - maintenance tasks for the beanline database and criteria catalog",
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return loadSettings(cmd)
		},
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().String("config", "", "yaml file with db_path / catalog_file / catalog_xlsx")
	rootCmd.PersistentFlags().String("db", "beanline.db", "sqlite database path")
	rootCmd.PersistentFlags().String("catalog-file", "", "catalog YAML overrides")
	rootCmd.PersistentFlags().String("catalog-xlsx", "", "criteria sheet (.csv or .xlsx)")

	rootCmd.AddCommand(migrateFailuresCmd())
	rootCmd.AddCommand(catalogCmd())
	return rootCmd
}

func loadSettings(cmd *cobra.Command) error {
	flags := cmd.Root().PersistentFlags()
	for key, flag := range map[string]string{
		"db_path":      "db",
		"catalog_file": "catalog-file",
		"catalog_xlsx": "catalog-xlsx",
	} {
		if err := settings.BindPFlag(key, flags.Lookup(flag)); err != nil {
			return err
		}
	}
	settings.AutomaticEnv()

	if path, _ := flags.GetString("config"); path != "" {
		settings.SetConfigFile(path)
		settings.SetConfigType("yaml")
		if err := settings.ReadInConfig(); err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
	}
	return nil
}
