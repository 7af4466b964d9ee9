// Package export writes simulation results as CSV for downstream plotting.
package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/Daniele-Di-Bella/ER-glycoforms-fates-modelling/core"
)

var ErrNoTrajectory = errors.New("export: no trajectory to write")

// WriteTrajectory writes one run's full trajectory: a time_h column followed
// by one column per species in registry order.
func WriteTrajectory(w io.Writer, reg *core.Registry, tr *core.Trajectory) error {
	if tr == nil || len(tr.Times) == 0 {
		return ErrNoTrajectory
	}

	cw := csv.NewWriter(w)
	header := make([]string, 0, reg.Len()+1)
	header = append(header, "time_h")
	for _, sp := range reg.Species() {
		header = append(header, sp.Name)
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("export: write header: %w", err)
	}

	row := make([]string, len(header))
	for i, ts := range tr.Times {
		row[0] = formatFloat(ts)
		for j, v := range tr.States[i] {
			row[j+1] = formatFloat(v)
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("export: write row %d: %w", i, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteAggregates writes the scenario comparison table: one row per scenario
// and output time with the free/secreted/degraded partition. Failed runs
// without aggregates are skipped.
func WriteAggregates(w io.Writer, results []core.ScenarioResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"scenario", "time_h", "free", "secreted", "degraded"}); err != nil {
		return fmt.Errorf("export: write header: %w", err)
	}

	for _, res := range results {
		if res.Aggregates == nil || res.Trajectory == nil {
			continue
		}
		for i, ts := range res.Trajectory.Times {
			row := []string{
				res.Label,
				formatFloat(ts),
				formatFloat(res.Aggregates.Free[i]),
				formatFloat(res.Aggregates.Secreted[i]),
				formatFloat(res.Aggregates.Degraded[i]),
			}
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("export: write row for %q: %w", res.Label, err)
			}
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
