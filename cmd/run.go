package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mklnz/descpipe/pkg/catalog"
	"github.com/mklnz/descpipe/pkg/describe"
	"github.com/mklnz/descpipe/pkg/llm"
	"github.com/mklnz/descpipe/pkg/pipeline"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full description pipeline",
	Long:  "Ingests the product catalog, generates a description per product, and saves the results as JSON, text, and HTML.",
	RunE: func(cmd *cobra.Command, args []string) error {
		skipIngest, _ := cmd.Flags().GetBool("skip-ingest")
		mode, _ := cmd.Flags().GetString("mode")
		live, _ := cmd.Flags().GetBool("live")
		category, _ := cmd.Flags().GetString("category")
		limit, _ := cmd.Flags().GetInt("limit")
		dataDir, _ := rootCmd.PersistentFlags().GetString("data-dir")

		backend := llm.FromConfig(llm.Config{
			Live:   live,
			APIKey: viper.GetString("cohere.api_key"),
			Model:  viper.GetString("cohere.model"),
		})

		p := pipeline.New(pipeline.Config{
			SkipIngest: skipIngest,
			Mode:       describe.ParseMode(mode),
			Category:   category,
			Limit:      limit,
			DataDir:    dataDir,
		}, catalog.NewDummyJSONSource(), backend)

		// An aborted run is a diagnostic, not a failure: the Report carries
		// the reason and exit stays zero. Fatal errors propagate and exit 1.
		_, err := p.Run(context.Background())
		return err
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().BoolP("skip-ingest", "s", false, "Skip downloading new data, reuse the most recent raw file")
	runCmd.Flags().StringP("mode", "m", "describe", `Customize the prompt mode (e.g., "describe", "summarize")`)
	runCmd.Flags().BoolP("live", "", false, "Use the real Cohere model instead of simulation")
	runCmd.Flags().StringP("category", "c", "", "Only generate descriptions for products of a specific category (e.g., 'laptops')")
	runCmd.Flags().IntP("limit", "n", pipeline.DefaultLimit, "How many products to fetch on ingest")
}
