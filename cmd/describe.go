package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mklnz/descpipe/pkg/catalog"
	"github.com/mklnz/descpipe/pkg/describe"
	"github.com/mklnz/descpipe/pkg/llm"
	"github.com/mklnz/descpipe/pkg/store"
)

// describeCmd represents the describe command
var describeCmd = &cobra.Command{
	Use:   "describe",
	Short: "Generate descriptions for the latest snapshot and print them",
	Long:  "Loads the most recent catalog snapshot, generates a description per product, and prints everything to stdout without writing result files.",
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, _ := cmd.Flags().GetString("mode")
		live, _ := cmd.Flags().GetBool("live")
		category, _ := cmd.Flags().GetString("category")
		dataDir, _ := rootCmd.PersistentFlags().GetString("data-dir")

		products, err := store.New(dataDir).LoadLatest()
		if err != nil {
			return err
		}
		if category != "" {
			products = catalog.FilterByCategory(products, category)
		}

		backend := llm.FromConfig(llm.Config{
			Live:   live,
			APIKey: viper.GetString("cohere.api_key"),
			Model:  viper.GetString("cohere.model"),
		})
		generator := describe.Generator{Backend: backend}
		parsedMode := describe.ParseMode(mode)

		ctx := context.Background()
		for _, product := range products {
			result, err := generator.Describe(ctx, product, parsedMode)
			if err != nil {
				return err
			}
			fmt.Printf("Product: %s\n", product.Title)
			fmt.Printf("Category: %s\n", product.DisplayCategory())
			fmt.Printf("Price: $%s\n", product.DisplayPrice())
			fmt.Printf("Generated Description: %s\n", result.Output)
			fmt.Println(strings.Repeat("-", 50))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(describeCmd)
	describeCmd.Flags().StringP("mode", "m", "describe", `Customize the prompt mode (e.g., "describe", "summarize")`)
	describeCmd.Flags().BoolP("live", "", false, "Use the real Cohere model instead of simulation")
	describeCmd.Flags().StringP("category", "c", "", "Filter products by category")
}
