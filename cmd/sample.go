package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/kilianp07/trailcast/ingest"
	"github.com/kilianp07/trailcast/sample"
)

var sampleOpts struct {
	count  int
	seed   int64
	output string
}

var sampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Write a synthetic trail as CSV",
	Long: "Write a synthetic trail as CSV. The trail shape comes from the sample " +
		"section of the configuration; --count and --seed override it.",
	Args: cobra.NoArgs,
	RunE: runSample,
}

func init() {
	sampleCmd.Flags().IntVarP(&sampleOpts.count, "count", "n", 20, "number of observations")
	sampleCmd.Flags().Int64Var(&sampleOpts.seed, "seed", 0, "random seed (0 seeds from the clock)")
	sampleCmd.Flags().StringVarP(&sampleOpts.output, "output", "o", "", "output file (default stdout)")
	rootCmd.AddCommand(sampleCmd)
}

func runSample(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	sc := cfg.Sample
	if cmd.Flags().Changed("count") {
		sc.Count = sampleOpts.count
	}
	if cmd.Flags().Changed("seed") {
		sc.Seed = sampleOpts.seed
	}
	obs := sample.Trail(sc)
	if sampleOpts.output == "" {
		return ingest.WriteCSV(cmd.OutOrStdout(), obs)
	}
	f, err := os.Create(sampleOpts.output)
	if err != nil {
		return err
	}
	if err := ingest.WriteCSV(f, obs); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
