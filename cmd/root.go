package cmd

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/Lumos-Labs-HQ/rowseed/internal/config"
	"github.com/Lumos-Labs-HQ/rowseed/internal/database"
)

var (
	cfgFile string
	debug   bool
	Version = "0.3.0"
)

var rootCmd = &cobra.Command{
	Use:   "rowseed",
	Short: "Fill a database with random rows that respect its foreign keys",
	Long: `
rowseed reads the schema of a live database, orders its tables by foreign key
dependencies, wipes them and inserts random rows. Foreign key columns always
point at rows that exist in the referenced table.

Database Support:
- PostgreSQL
- MySQL
- SQLite
- SQL Server`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./rowseed.config.json)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Write structured debug logs to stderr")
}

func initConfig() {
	if err := godotenv.Load(); err != nil {
		godotenv.Load(".env")
	}
	godotenv.Load(".env.local")

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("json")
		viper.SetConfigName(config.DefaultConfigName)
	}

	viper.SetEnvPrefix("ROWSEED")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil && cfgFile != "" {
		color.Yellow("⚠️  Could not read config file %s: %v", cfgFile, err)
	}
}

func newLogger() (*zap.Logger, error) {
	if !debug {
		return zap.NewNop(), nil
	}
	return zap.NewDevelopment()
}

// loadConfig loads and validates the configuration.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// openDatabase resolves the URL and provider from the arguments, flags and
// config, then connects.
func openDatabase(ctx context.Context, cfg *config.Config, urlArg, providerFlag string) (database.DatabaseAdapter, error) {
	dbURL, err := cfg.ResolveDatabaseURL(urlArg)
	if err != nil {
		return nil, err
	}

	provider := providerFlag
	if provider == "" {
		provider = cfg.Database.Provider
	}
	return database.Open(ctx, provider, dbURL)
}
