// Command glycosim integrates the ER glycoform processing network for a
// baseline and a suite of perturbation scenarios, writing per-run trajectory
// CSVs and a comparison table.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/Daniele-Di-Bella/ER-glycoforms-fates-modelling/core"
	"github.com/Daniele-Di-Bella/ER-glycoforms-fates-modelling/internal/export"
	"github.com/Daniele-Di-Bella/ER-glycoforms-fates-modelling/internal/logging"
	"github.com/Daniele-Di-Bella/ER-glycoforms-fates-modelling/internal/observability"
	"github.com/Daniele-Di-Bella/ER-glycoforms-fates-modelling/model"
)

func main() {
	var (
		spanHours     = flag.Float64("span", core.DefaultSpanHours, "integration horizon in hours")
		points        = flag.Int("points", 280, "number of output intervals over the span")
		absTol        = flag.Float64("abstol", 1e-9, "absolute solver tolerance")
		relTol        = flag.Float64("reltol", 1e-7, "relative solver tolerance")
		maxSteps      = flag.Uint("max-steps", 200000, "accepted-step budget per run")
		scenariosPath = flag.String("scenarios", "", "YAML scenario suite (empty runs the built-in suite)")
		outDir        = flag.String("out", "results", "output directory for CSV files")
		metricsListen = flag.String("metrics-listen", "", "address for the /metrics endpoint (empty disables)")
	)
	flag.Parse()

	log := logging.NewFromEnv()
	ctx := context.Background()

	shutdown, err := observability.InitTracing(ctx, observability.TracingConfigFromEnv(), log)
	if err != nil {
		log.Error(ctx, "tracing init failed", logging.String("error", err.Error()))
		os.Exit(1)
	}
	defer observability.ShutdownWithTimeout(ctx, shutdown, log)

	topo := model.DefaultTopology()
	reg, err := core.BuildRegistry(topo)
	if err != nil {
		log.Error(ctx, "registry build failed", logging.String("error", err.Error()))
		os.Exit(1)
	}
	net, err := core.BuildNetwork(reg, topo)
	if err != nil {
		log.Error(ctx, "network build failed", logging.String("error", err.Error()))
		os.Exit(1)
	}
	baseline := core.DefaultParameters(net)
	log.Info(ctx, "network compiled",
		logging.Int("species", reg.Len()),
		logging.Int("reactions", len(net.Reactions())))

	observers := core.MultiObserver{observability.NewTraceObserver(ctx)}
	if *metricsListen != "" {
		collector, err := observability.NewSimCollector(nil)
		if err != nil {
			log.Error(ctx, "metrics init failed", logging.String("error", err.Error()))
			os.Exit(1)
		}
		collector.SetNetworkSize(reg.Len(), len(net.Reactions()))
		observers = append(observers, collector)

		mux := http.NewServeMux()
		mux.Handle("/metrics", collector.Handler())
		go func() {
			if err := http.ListenAndServe(*metricsListen, mux); err != nil {
				log.Error(ctx, "metrics server stopped", logging.String("error", err.Error()))
			}
		}()
		log.Info(ctx, "serving metrics", logging.String("addr", *metricsListen))
	}

	scenarios, err := loadSuite(net, baseline, *scenariosPath)
	if err != nil {
		log.Error(ctx, "scenario suite load failed", logging.String("error", err.Error()))
		os.Exit(1)
	}

	driver := core.NewDriver(net)
	driver.AbsTol = *absTol
	driver.RelTol = *relTol
	driver.MaxSteps = *maxSteps

	span := core.TimeSpan{Start: 0, End: *spanHours}
	orch := core.NewOrchestrator(driver)
	orch.Span = span
	orch.OutputTimes = core.UniformGrid(span, *points)
	orch.Log = log
	orch.Observer = observers

	results := orch.Compare(ctx, baseline, scenarios)

	if err := writeResults(*outDir, reg, results); err != nil {
		log.Error(ctx, "result export failed", logging.String("error", err.Error()))
		os.Exit(1)
	}

	failed := 0
	for _, res := range results {
		if res.Err != nil {
			failed++
		}
	}
	log.Info(ctx, "comparison complete",
		logging.Int("runs", len(results)),
		logging.Int("failed", failed),
		logging.String("out", *outDir))
	if failed > 0 {
		os.Exit(1)
	}
}

// loadSuite reads the YAML suite at path, or falls back to the built-in
// reference suite when path is empty.
func loadSuite(net *core.Network, baseline core.ParameterSet, path string) ([]core.Scenario, error) {
	if path == "" {
		return builtinSuite(net)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open scenario suite: %w", err)
	}
	defer f.Close()
	return core.LoadScenarioSuite(net, baseline, f)
}

// builtinSuite is the reference comparison: reglucosylation inhibited and all
// mannose removal inhibited.
func builtinSuite(net *core.Network) ([]core.Scenario, error) {
	groups := []struct {
		label string
		group string
	}{
		{"uggt-inhibited", "uggt"},
		{"mannosidase-inhibited", "mannosidases"},
	}

	var scenarios []core.Scenario
	for _, g := range groups {
		keys, err := net.GroupKeys(g.group)
		if err != nil {
			return nil, err
		}
		overrides := make(map[string]float64, len(keys))
		for _, k := range keys {
			overrides[k] = 0
		}
		scenarios = append(scenarios, core.Scenario{Label: g.label, Overrides: overrides})
	}
	return scenarios, nil
}

// writeResults writes one trajectory CSV per successful run plus the combined
// aggregates table.
func writeResults(dir string, reg *core.Registry, results []core.ScenarioResult) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	for _, res := range results {
		if res.Err != nil || res.Trajectory == nil {
			continue
		}
		f, err := os.Create(filepath.Join(dir, fileSafe(res.Label)+".csv"))
		if err != nil {
			return fmt.Errorf("create trajectory file: %w", err)
		}
		if err := export.WriteTrajectory(f, reg, res.Trajectory); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
	}

	f, err := os.Create(filepath.Join(dir, "aggregates.csv"))
	if err != nil {
		return fmt.Errorf("create aggregates file: %w", err)
	}
	defer f.Close()
	return export.WriteAggregates(f, results)
}

func fileSafe(label string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, label)
}
