package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kilianp07/trailcast/core/prediction"
	"github.com/kilianp07/trailcast/geojson"
	"github.com/kilianp07/trailcast/ingest"
)

var predictOpts struct {
	geojson  bool
	segments int
	radius   float64
}

var predictCmd = &cobra.Command{
	Use:   "predict FILE.csv",
	Short: "Estimate the next location of a CSV trail",
	Args:  cobra.ExactArgs(1),
	RunE:  runPredict,
}

func init() {
	predictCmd.Flags().BoolVar(&predictOpts.geojson, "geojson", false, "print a GeoJSON view instead of the estimate")
	predictCmd.Flags().IntVar(&predictOpts.segments, "segments", prediction.DefaultSegments, "vertices of the uncertainty ring")
	predictCmd.Flags().Float64Var(&predictOpts.radius, "radius", prediction.DefaultRadiusM, "uncertainty radius in metres")
	rootCmd.AddCommand(predictCmd)
}

func runPredict(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	obs, err := ingest.ReadCSV(f)
	if err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}

	engine := prediction.NewTrajectoryPredictor(prediction.FixedRadius(predictOpts.radius))
	pred, ok := engine.EstimateNext(obs)
	out := cmd.OutOrStdout()
	if predictOpts.geojson {
		p := &pred
		if !ok {
			p = nil
		}
		fc, err := geojson.View(obs, p, predictOpts.segments)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(fc)
	}
	if !ok {
		_, err := fmt.Fprintf(out, "not enough observations (%d) to estimate\n", len(obs))
		return err
	}
	_, err = fmt.Fprintf(out, "next: %s\n", pred)
	return err
}
