package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Lumos-Labs-HQ/rowseed/internal/seeder"
)

var (
	orderIgnore   []string
	orderProvider string
)

var orderCmd = &cobra.Command{
	Use:   "order [url]",
	Short: "Print the order tables would be seeded in",
	Long: `Read the schema and print the insertion order computed from foreign keys.
Tables are deleted in the reverse order. Nothing is written to the database.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		urlArg := ""
		if len(args) == 1 {
			urlArg = args[0]
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		logger, err := newLogger()
		if err != nil {
			return fmt.Errorf("failed to create logger: %w", err)
		}
		defer logger.Sync()

		ctx := context.Background()
		adapter, err := openDatabase(ctx, cfg, urlArg, orderProvider)
		if err != nil {
			return err
		}
		defer adapter.Close()

		seedConfig := seedConfigFrom(cfg, 1)
		seedConfig.Ignore = append(seedConfig.Ignore, orderIgnore...)
		plan, err := seeder.NewSeeder(adapter, seedConfig, logger).Plan(ctx)
		if err != nil {
			return err
		}

		if len(plan.Order) == 0 {
			color.Yellow("⚠️  No tables found")
			return nil
		}

		out := cmd.OutOrStdout()
		for i, name := range plan.Order {
			fmt.Fprintf(out, "%3d. %s\n", i+1, name)
		}
		if len(plan.Cycles) > 0 {
			color.Yellow("⚠️  Circular foreign keys between %s; their relative order is not guaranteed",
				strings.Join(plan.Cycles, ", "))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(orderCmd)
	orderCmd.Flags().StringArrayVar(&orderIgnore, "ignore", nil, "Table to leave out (repeatable)")
	orderCmd.Flags().StringVar(&orderProvider, "provider", "", "Database provider; detected from the URL by default")
}
