// Package cmd provides the CLI commands for datacore.
package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"datacore/core/rates"
	"datacore/db"
	"datacore/internal/config"
	"datacore/internal/logging"
)

var (
	cfgFile   string
	verbose   bool
	ratesPath string
	dbPath    string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "datacore",
	Short: "Administer the Data Core research-computing registry",
	Long: `datacore manages the Data Core registry: projects, users, servers,
software, governance documents, and monthly billing.

Examples:
  datacore invoice --period 2026-08
  datacore invoice --project prj0042 --multiplier 0.5
  datacore finances
  datacore govstatus
  datacore serve --addr :8080`,
}

// Execute runs the CLI
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.datacore/config.json)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&ratesPath, "rates", "", "rates file (overrides config)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "database file (overrides config)")

	// Add subcommands
	rootCmd.AddCommand(invoiceCmd)
	rootCmd.AddCommand(financesCmd)
	rootCmd.AddCommand(govstatusCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(configCmd)
}

func initConfig() {
	if cfgFile != "" {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
		config.Set(cfg)
	}

	// Initialize logging
	cfg := config.Get()
	if verbose {
		cfg.Logging.Level = "debug"
	}
	if err := logging.Initialize(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logging: %v\n", err)
	}
}

// openDatabase opens the configured SQLite database and ensures the schema
func openDatabase() (*db.DB, error) {
	path := config.Get().DB.Path
	if dbPath != "" {
		path = dbPath
	}

	database, err := db.New(path)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(); err != nil {
		database.Close()
		return nil, err
	}
	return database, nil
}

// loadSnapshot loads the configured HCL rates file
func loadSnapshot() (*rates.Snapshot, error) {
	path := config.Get().Rates.Path
	if ratesPath != "" {
		path = ratesPath
	}
	return rates.LoadHCL(path)
}

// versionCmd prints version information
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("datacore version 0.1.0")
	},
}

// configCmd manages configuration
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the active configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := json.MarshalIndent(config.Get(), "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a default configuration file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := cfgFile
		if len(args) > 0 {
			path = args[0]
		}
		if path == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return err
			}
			path = home + "/.datacore/config.json"
		}
		if err := config.Default().Save(path); err != nil {
			return err
		}
		fmt.Printf("Wrote default configuration to %s\n", path)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
}
