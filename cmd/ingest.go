package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/mklnz/descpipe/pkg/catalog"
	"github.com/mklnz/descpipe/pkg/pipeline"
	"github.com/mklnz/descpipe/pkg/store"
)

// ingestCmd represents the ingest command
var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Fetch the product catalog and snapshot it",
	Long:  "Fetches products from the remote catalog and saves a timestamped JSON + text snapshot, without generating descriptions.",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		category, _ := cmd.Flags().GetString("category")
		dataDir, _ := rootCmd.PersistentFlags().GetString("data-dir")

		source := catalog.NewDummyJSONSource()
		products, err := source.Fetch(context.Background(), catalog.FetchOptions{Limit: limit, Category: category})
		if err != nil {
			return err
		}

		_, _, err = store.New(dataDir).Save(products)
		return err
	},
}

func init() {
	rootCmd.AddCommand(ingestCmd)
	ingestCmd.Flags().IntP("limit", "n", pipeline.DefaultLimit, "How many products to fetch")
	ingestCmd.Flags().StringP("category", "c", "", "Fetch a whole category instead of the first N products")
}
