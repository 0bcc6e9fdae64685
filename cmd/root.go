package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/inex/cerb5-to-zendesk/internal/migration"
)

var (
	cfgFile string
	debug   bool

	cfg    *migration.Config
	client *migration.Client
)

var rootCmd = &cobra.Command{
	Use:               "cerb5-to-zendesk",
	Short:             "Migrate Cerb5 tickets to Zendesk",
	SilenceUsage:      true,
	PersistentPreRunE: preRun,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/migrator_config.json)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(testCmd)
}

func preRun(cmd *cobra.Command, args []string) error {
	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("getting home directory: %w", err)
	}

	setLogger(filepath.Join(home, "migrator.log"), debug)

	cfg, err = migration.InitConfig(cfgFile)
	if err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}

	creds := cfg.Zendesk.Creds
	if creds.Token == "" || creds.Username == "" || creds.Subdomain == "" {
		if err := cfg.RunCredsForm(); err != nil {
			return fmt.Errorf("collecting zendesk credentials: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validating config: %w", err)
	}

	client, err = migration.NewClient(cfg)
	if err != nil {
		return fmt.Errorf("creating migration client: %w", err)
	}

	return nil
}
