package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/trailcast/core/predlog"
	"github.com/kilianp07/trailcast/pkg/export"
)

var historyOpts struct {
	format    string
	start     string
	end       string
	source    string
	predicted bool
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Export logged predictions as JSON or CSV",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().StringVarP(&historyOpts.format, "format", "f", export.FormatJSON, "output format (json or csv)")
	historyCmd.Flags().StringVar(&historyOpts.start, "start", "", "only records at or after this RFC3339 time")
	historyCmd.Flags().StringVar(&historyOpts.end, "end", "", "only records at or before this RFC3339 time")
	historyCmd.Flags().StringVar(&historyOpts.source, "source", "", "only records from this source")
	historyCmd.Flags().BoolVar(&historyOpts.predicted, "predicted", false, "only estimates that produced a location")
	rootCmd.AddCommand(historyCmd)
}

func parseTimeFlag(name, v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("--%s: %w", name, err)
	}
	return t, nil
}

func runHistory(cmd *cobra.Command, args []string) error {
	q := predlog.Query{Source: historyOpts.source, PredictedOnly: historyOpts.predicted}
	var err error
	if q.Start, err = parseTimeFlag("start", historyOpts.start); err != nil {
		return err
	}
	if q.End, err = parseTimeFlag("end", historyOpts.end); err != nil {
		return err
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	store, err := predlog.Open(cfg.PredLog)
	if err != nil {
		return fmt.Errorf("open prediction log: %w", err)
	}
	defer store.Close()

	records, err := store.Query(cmd.Context(), q)
	if err != nil {
		return err
	}
	return export.Write(cmd.OutOrStdout(), historyOpts.format, records)
}
