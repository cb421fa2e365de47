package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/nvasani/holonsim/internal/analysis"
	"github.com/nvasani/holonsim/internal/batch"
	"github.com/nvasani/holonsim/internal/config"
	"github.com/nvasani/holonsim/internal/drive"
	"github.com/nvasani/holonsim/internal/experiment"
	"github.com/nvasani/holonsim/internal/holon"
	"github.com/nvasani/holonsim/internal/logging"
	"github.com/nvasani/holonsim/internal/sim"
	"github.com/nvasani/holonsim/internal/storage"
	"github.com/nvasani/holonsim/internal/viz"
	"github.com/spf13/cobra"
)

var (
	dataDir    string
	debug      bool
	configFile string
	preset     string
	scenario   string
	stepper    string
	steps      int
	particles  int
	seed       int64
	dt         float64
	attract    string
	topDown    bool
	// analyze
	seriesName string
	// chaos
	offset float64
	// orbit
	orbitID    string
	orbitPlane string
	// sweep
	sweepParams []string
	sweepMetric string
	minimize    bool
	workers     int
	// stability
	trials  int
	perturb float64
	radius  float64
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "holonsim",
		Short: "holarchic particle simulation lab",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".holonsim", "data directory")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "debug logging")

	runCmd := &cobra.Command{
		Use:   "run [scenario]",
		Short: "run a simulation and store the result",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	configFlags(runCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot stored run series",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	benchCmd := &cobra.Command{
		Use:   "bench [scenario]",
		Short: "benchmark the engine",
		Args:  cobra.MaximumNArgs(1),
		RunE:  benchScenario,
	}
	configFlags(benchCmd)

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "frequency analysis of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().StringVar(&seriesName, "series", "kinetic", "series to analyze (kinetic, potential, total, coherence, population)")

	chaosCmd := &cobra.Command{
		Use:   "chaos [scenario]",
		Short: "estimate divergence against a perturbed twin",
		Args:  cobra.MaximumNArgs(1),
		RunE:  chaosScenario,
	}
	configFlags(chaosCmd)
	chaosCmd.Flags().Float64Var(&offset, "offset", 1e-6, "initial position offset")

	orbitCmd := &cobra.Command{
		Use:   "orbit [scenario]",
		Short: "trace one particle's orbit",
		Args:  cobra.MaximumNArgs(1),
		RunE:  orbitScenario,
	}
	configFlags(orbitCmd)
	orbitCmd.Flags().StringVar(&orbitID, "id", "", "particle id (default: first spawned)")
	orbitCmd.Flags().StringVar(&orbitPlane, "plane", "phase", "projection plane (phase, xy, xz)")

	liveCmd := &cobra.Command{
		Use:   "live [scenario]",
		Short: "run with live visualization",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	configFlags(liveCmd)

	sweepCmd := &cobra.Command{
		Use:   "sweep [scenario]",
		Short: "grid scan over coefficients",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSweep,
	}
	configFlags(sweepCmd)
	sweepCmd.Flags().StringArrayVar(&sweepParams, "param", nil, "grid axis name=v1,v2,... (repeatable)")
	sweepCmd.Flags().StringVar(&sweepMetric, "metric", "coherence", "metric to optimize")
	sweepCmd.Flags().BoolVar(&minimize, "minimize", false, "pick the smallest metric instead of the largest")
	sweepCmd.Flags().IntVar(&workers, "workers", 0, "worker pool size (0 = all cores)")

	compareCmd := &cobra.Command{
		Use:   "compare [scenario] [stepper1] [stepper2] ...",
		Short: "compare steppers on the same population",
		Args:  cobra.MinimumNArgs(2),
		RunE:  compareSteppers,
	}
	configFlags(compareCmd)

	presetsCmd := &cobra.Command{
		Use:   "presets [scenario]",
		Short: "list available presets for a scenario",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			presets := config.ListPresets(args[0])
			if len(presets) == 0 {
				fmt.Printf("no presets for scenario: %s\n", args[0])
				return nil
			}
			sort.Strings(presets)
			fmt.Printf("presets for %s:\n", args[0])
			for _, p := range presets {
				fmt.Printf("  %s\n", p)
			}
			return nil
		},
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run series to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "render the final snapshot as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}

	batchCmd := &cobra.Command{
		Use:   "batch [script.yaml]",
		Short: "run a scripted sequence of simulations",
		Args:  cobra.ExactArgs(1),
		RunE:  runBatch,
	}

	stabilityCmd := &cobra.Command{
		Use:   "stability [scenario]",
		Short: "monte carlo stability under perturbed spawns",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runStability,
	}
	configFlags(stabilityCmd)
	stabilityCmd.Flags().IntVar(&trials, "trials", 20, "number of trials")
	stabilityCmd.Flags().Float64Var(&perturb, "perturb", 0.05, "position perturbation amplitude")
	stabilityCmd.Flags().Float64Var(&radius, "radius", 100, "bound for a trial to count as stable")
	stabilityCmd.Flags().IntVar(&workers, "workers", 0, "worker pool size (0 = all cores)")

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, exportCmd, benchCmd, analyzeCmd,
		chaosCmd, orbitCmd, liveCmd, sweepCmd, compareCmd, presetsCmd,
		exportCSVCmd, exportJSONCmd, exportSVGCmd, batchCmd, stabilityCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func configFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&scenario, "scenario", "", "spawn scenario")
	cmd.Flags().StringVar(&stepper, "integrator", "verlet", "integration stepper")
	cmd.Flags().IntVar(&steps, "steps", config.DefaultSteps, "number of steps")
	cmd.Flags().IntVar(&particles, "particles", config.DefaultParticles, "population size")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed")
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	cmd.Flags().StringVar(&attract, "attract", "", "static attractor position x,y,z")
	cmd.Flags().BoolVar(&topDown, "top-down", true, "apply top-down constraint forces")
}

// buildConfig resolves preset, config file and flags into one config.
// Precedence rises from preset to file to explicit flags.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	scn := scenario
	if len(args) > 0 {
		scn = args[0]
	}

	cfg := config.DefaultConfig()
	if preset != "" {
		target := scn
		if target == "" {
			target = cfg.Scenario
		}
		p := config.GetPreset(target, preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(target))
		}
		clone := *p
		cfg = &clone
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	if scn != "" {
		cfg.Scenario = scn
	}
	if cmd.Flags().Changed("integrator") {
		cfg.Stepper = stepper
	}
	if cmd.Flags().Changed("steps") {
		cfg.Steps = steps
	}
	if cmd.Flags().Changed("particles") {
		cfg.Particles = particles
	}
	if cmd.Flags().Changed("seed") {
		cfg.Seed = seed
	}
	if cmd.Flags().Changed("dt") {
		cfg.Dt = dt
	}
	if attract != "" {
		spec, err := parseAttract(attract)
		if err != nil {
			return nil, err
		}
		cfg.Driver = spec
	}
	if !topDown {
		cfg.Holarchy.Constraint = 0
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parseAttract(s string) (drive.Spec, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return drive.Spec{}, fmt.Errorf("attract needs x,y,z, got %q", s)
	}
	var vals [3]float64
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return drive.Spec{}, fmt.Errorf("attract needs x,y,z, got %q", s)
		}
		vals[i] = v
	}
	return drive.Spec{Kind: "static", X: vals[0], Y: vals[1], Z: vals[2]}, nil
}

func driverName(cfg *config.Config) string {
	if cfg.Driver.Kind == "" {
		return "none"
	}
	return cfg.Driver.Kind
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	log := logging.New(logging.WithPretty(true), logging.WithDebug(debug))
	exp := experiment.New(cfg, log)
	if err := exp.Setup(); err != nil {
		return err
	}

	fmt.Printf("running %s simulation...\n", cfg.Scenario)
	start := time.Now()

	result, err := exp.Run(context.Background())
	if err != nil {
		return err
	}

	elapsed := time.Since(start)

	runID, err := st.Save(storage.RunInfo{
		Scenario:  cfg.Scenario,
		Stepper:   cfg.Stepper,
		Driver:    driverName(cfg),
		Seed:      cfg.Seed,
		Dt:        cfg.Dt,
		Particles: cfg.Particles,
	}, result)
	if err != nil {
		return err
	}

	merges := 0
	for _, m := range result.Merges {
		merges += m
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d\n", result.StepsTaken)
	fmt.Printf("population: %d -> %d\n", cfg.Particles, len(result.Final.Particles))
	fmt.Printf("nodes: %d  merges: %d  coherence: %.3f\n",
		len(result.Final.Nodes), merges, result.Final.Coherence)

	if len(result.Energies) > 1 {
		fmt.Println()
		fmt.Println(asciigraph.Plot(result.Energies,
			asciigraph.Height(8),
			asciigraph.Width(70),
			asciigraph.Caption("total energy"),
		))
	}

	names := make([]string, 0, len(result.Metrics))
	for name := range result.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Println("\nmetrics:")
	for _, name := range names {
		fmt.Printf("  %s: %.6f\n", name, result.Metrics[name])
	}

	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSCENARIO\tTIME\tSTEPS\tDT\tPARTICLES\tSTEPPER\tDRIVER")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.4fs\t%d\t%s\t%s\n",
			run.ID,
			run.Scenario,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Steps,
			run.Dt,
			run.Particles,
			run.Stepper,
			run.Driver,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.LoadMeta(runID)
	if err != nil {
		return err
	}
	series, err := st.LoadSeries(runID)
	if err != nil {
		return err
	}

	if len(series.Times) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("scenario: %s\n", meta.Scenario)
	fmt.Printf("samples: %d\n\n", len(series.Times))

	plots := []struct {
		caption string
		data    []float64
	}{
		{"total energy", series.Energies},
		{"kinetic energy", series.Kinetics},
		{"potential energy", series.Potentials},
		{"population", intsToFloats(series.Populations)},
		{"coherence", series.Coherences},
	}

	for _, p := range plots {
		if len(p.data) < 2 {
			continue
		}
		fmt.Println(asciigraph.Plot(p.data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(p.caption),
		))
		fmt.Println()
	}

	return nil
}

func intsToFloats(in []int) []float64 {
	out := make([]float64, len(in))
	for i, v := range in {
		out[i] = float64(v)
	}
	return out
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.LoadMeta(args[0])
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func benchScenario(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	stepGrid := []int{100, 500, 2000}
	dts := []float64{0.004, 0.016, 0.04}

	fmt.Printf("benchmarking %s (%d particles)\n\n", cfg.Scenario, cfg.Particles)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEPS\tDT\tTIME\tSTEPS/SEC")

	for _, n := range stepGrid {
		for _, d := range dts {
			c := *cfg
			c.Steps = n
			c.Dt = d

			exp := experiment.New(&c, logging.Nop())
			if err := exp.Setup(); err != nil {
				return err
			}

			start := time.Now()
			result, err := exp.Run(context.Background())
			if err != nil {
				return err
			}
			elapsed := time.Since(start)

			stepsPerSec := float64(result.StepsTaken) / elapsed.Seconds()
			fmt.Fprintf(w, "%d\t%.4fs\t%v\t%.0f\n",
				result.StepsTaken, d, elapsed.Round(time.Microsecond), stepsPerSec)
		}
	}

	return w.Flush()
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.LoadMeta(runID)
	if err != nil {
		return err
	}
	series, err := st.LoadSeries(runID)
	if err != nil {
		return err
	}

	data, err := seriesColumn(series, seriesName)
	if err != nil {
		return err
	}
	if len(data) < 2 {
		return fmt.Errorf("no data")
	}

	fmt.Printf("frequency analysis: %s\n", meta.ID)
	fmt.Printf("scenario: %s  series: %s\n\n", meta.Scenario, seriesName)

	spectrum := analysis.PowerSpectrum(data, meta.Dt)
	plotData := spectrum.Power
	if len(plotData) > 4 {
		plotData = plotData[:len(plotData)/4]
	}

	fmt.Println(asciigraph.Plot(plotData,
		asciigraph.Height(15),
		asciigraph.Width(80),
		asciigraph.Caption(fmt.Sprintf("power spectrum (%s)", seriesName)),
	))
	fmt.Println()

	freq, power := spectrum.Dominant()
	fmt.Printf("dominant frequency: %.3f hz (power %.3f)\n", freq, power)
	if freq > 0 {
		fmt.Printf("period: %.3f s\n", 1.0/freq)
	}

	return nil
}

func seriesColumn(s *storage.Series, name string) ([]float64, error) {
	switch name {
	case "kinetic":
		return s.Kinetics, nil
	case "potential":
		return s.Potentials, nil
	case "total":
		return s.Energies, nil
	case "coherence":
		return s.Coherences, nil
	case "population":
		return intsToFloats(s.Populations), nil
	}
	return nil, fmt.Errorf("unknown series: %s", name)
}

func chaosScenario(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	log := logging.New(logging.WithPretty(true), logging.WithDebug(debug))
	opts, err := experiment.Options(cfg, log)
	if err != nil {
		return err
	}
	ps, seq, err := experiment.Population(cfg)
	if err != nil {
		return err
	}
	opts.Sequence = seq

	div, err := analysis.EstimateDivergence(context.Background(), ps, opts, cfg.Steps, cfg.Dt, offset)
	if err != nil {
		return err
	}

	fmt.Printf("divergence estimate: %s (offset %g)\n", cfg.Scenario, offset)
	fmt.Printf("samples: %d\n\n", len(div.Separations))

	if len(div.Separations) > 1 {
		fmt.Println(asciigraph.Plot(div.Separations,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption("twin separation"),
		))
		fmt.Println()
	}

	fmt.Printf("divergence rate: %.4f /s\n", div.Rate)
	switch {
	case div.Rate > 0.01:
		fmt.Println("trajectories diverge: sensitive to initial conditions")
	case div.Rate < -0.01:
		fmt.Println("trajectories contract: perturbations damp out")
	default:
		fmt.Println("trajectories neutral")
	}

	return nil
}

func orbitScenario(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	opts, err := experiment.Options(cfg, logging.Nop())
	if err != nil {
		return err
	}
	ps, seq, err := experiment.Population(cfg)
	if err != nil {
		return err
	}
	opts.Sequence = seq

	id := orbitID
	if id == "" {
		id = ps[0].ID
	}

	orbit, err := analysis.TraceOrbit(context.Background(), ps, opts, cfg.Steps, cfg.Dt, id, orbitPlane)
	if err != nil {
		return err
	}
	if len(orbit.Points) == 0 {
		return fmt.Errorf("particle %s left the run before any samples", id)
	}

	fmt.Printf("orbit: %s  particle: %s  plane: %s\n", cfg.Scenario, orbit.ID, orbit.Plane)
	fmt.Printf("samples: %d\n\n", len(orbit.Points))
	fmt.Println(renderOrbit(orbit))

	return nil
}

// renderOrbit scatters the trace on a braille canvas, color marking
// time: dim start, cyan middle, magenta end.
func renderOrbit(orbit *analysis.Orbit) string {
	xMin, xMax := orbit.Points[0].X, orbit.Points[0].X
	yMin, yMax := orbit.Points[0].Y, orbit.Points[0].Y
	for _, pt := range orbit.Points {
		if pt.X < xMin {
			xMin = pt.X
		}
		if pt.X > xMax {
			xMax = pt.X
		}
		if pt.Y < yMin {
			yMin = pt.Y
		}
		if pt.Y > yMax {
			yMax = pt.Y
		}
	}
	xRange := xMax - xMin
	yRange := yMax - yMin
	if xRange == 0 {
		xRange = 1
	}
	if yRange == 0 {
		yRange = 1
	}

	canvas := viz.NewCanvas(70, 20)
	cw, ch := 70*2, 20*4
	n := len(orbit.Points)
	for i, pt := range orbit.Points {
		hue := "#444466"
		if i >= 2*n/3 {
			hue = "#ff00ff"
		} else if i >= n/3 {
			hue = "#00ccff"
		}
		px := int(float64(cw-1) * (pt.X - xMin) / xRange)
		py := ch - 1 - int(float64(ch-1)*(pt.Y-yMin)/yRange)
		canvas.Set(px, py, hue)
	}

	var b strings.Builder
	b.WriteString(canvas.String())
	b.WriteString(fmt.Sprintf("x: [%.3f, %.3f]  y: [%.3f, %.3f]\n", xMin, xMax, yMin, yMax))
	b.WriteString("time runs dim -> cyan -> magenta")
	return b.String()
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	// Logging would draw over the TUI.
	m, err := viz.NewModel(cfg, configFile, logging.Nop())
	if err != nil {
		return err
	}

	p := tea.NewProgram(m)
	_, runErr := p.Run()
	if cerr := m.Close(); runErr == nil {
		runErr = cerr
	}
	return runErr
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}
	if len(sweepParams) == 0 {
		return fmt.Errorf("sweep needs at least one --param name=v1,v2,... (names: %v)", sim.SweepParams())
	}

	grid, err := parseGrid(sweepParams)
	if err != nil {
		return err
	}

	opts, err := experiment.Options(cfg, logging.Nop())
	if err != nil {
		return err
	}
	ps, seq, err := experiment.Population(cfg)
	if err != nil {
		return err
	}
	opts.Sequence = seq

	syncCoef := cfg.Holarchy.Sync
	base := sim.RunSpec{
		Options:   opts,
		Particles: ps,
		Steps:     cfg.Steps,
		Delta:     cfg.Dt,
		Metrics: func() []holon.Metric {
			return experiment.NewRegistry().DefaultMetrics(syncCoef)
		},
	}

	fmt.Printf("sweeping %s over %d cells...\n\n", cfg.Scenario, len(grid.Expand()))
	result, err := sim.Sweep(context.Background(), base, grid, sweepMetric, !minimize, workers)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "CELL\t%s\tDRIFT\tPARTICLES\n", strings.ToUpper(sweepMetric))
	for _, oc := range result.Outcomes {
		if oc.Err != nil {
			fmt.Fprintf(w, "%s\terror: %v\t\t\n", oc.Spec.Label, oc.Err)
			continue
		}
		fmt.Fprintf(w, "%s\t%.4f\t%.2e\t%d\n",
			oc.Spec.Label,
			oc.Result.Metrics[sweepMetric],
			oc.Result.EnergyDrift,
			len(oc.Result.Final.Particles),
		)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if result.Best < 0 {
		fmt.Printf("\nno cell finished with metric %s\n", sweepMetric)
		return nil
	}
	best := result.Outcomes[result.Best]
	fmt.Printf("\nbest: %s (%s=%.4f)\n", best.Spec.Label, sweepMetric, best.Result.Metrics[sweepMetric])
	return nil
}

func parseGrid(params []string) (sim.Grid, error) {
	var grid sim.Grid
	for _, p := range params {
		name, list, ok := strings.Cut(p, "=")
		if !ok {
			return grid, fmt.Errorf("param needs name=v1,v2,..., got %q", p)
		}
		var vals []float64
		for _, s := range strings.Split(list, ",") {
			v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
			if err != nil {
				return grid, fmt.Errorf("param %s: bad value %q", name, s)
			}
			vals = append(vals, v)
		}
		if len(vals) == 0 {
			return grid, fmt.Errorf("param %s: no values", name)
		}
		grid.Names = append(grid.Names, name)
		grid.Values = append(grid.Values, vals)
	}
	return grid, nil
}

func compareSteppers(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args[:1])
	if err != nil {
		return err
	}
	steppers := args[1:]

	fmt.Printf("comparing steppers for %s (dt=%.4f, steps=%d)\n\n", cfg.Scenario, cfg.Dt, cfg.Steps)
	fmt.Printf("%-12s  %-14s  %-12s  %-10s\n", "stepper", "final_energy", "energy_drift", "time_ms")
	fmt.Println(strings.Repeat("-", 56))

	for _, name := range steppers {
		c := *cfg
		c.Stepper = name

		exp := experiment.New(&c, logging.Nop())
		if err := exp.Setup(); err != nil {
			fmt.Printf("%-12s  error: %v\n", name, err)
			continue
		}

		start := time.Now()
		result, err := exp.Run(context.Background())
		elapsed := time.Since(start)
		if err != nil {
			fmt.Printf("%-12s  error: %v\n", name, err)
			continue
		}

		finalEnergy := 0.0
		if n := len(result.Energies); n > 0 {
			finalEnergy = result.Energies[n-1]
		}

		fmt.Printf("%-12s  %14.6f  %12.2e  %10.2f\n",
			name, finalEnergy, result.EnergyDrift, float64(elapsed.Microseconds())/1000)
	}

	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	series, err := st.LoadSeries(args[0])
	if err != nil {
		return err
	}

	if len(series.Times) == 0 {
		return fmt.Errorf("no data to export")
	}

	w := csv.NewWriter(os.Stdout)
	defer w.Flush()

	header := []string{"step", "time", "kinetic", "potential", "total", "particles", "nodes", "coherence", "merges"}
	if err := w.Write(header); err != nil {
		return err
	}

	for i := range series.Times {
		row := []string{
			strconv.Itoa(series.Steps[i]),
			strconv.FormatFloat(series.Times[i], 'f', 6, 64),
			strconv.FormatFloat(series.Kinetics[i], 'f', 6, 64),
			strconv.FormatFloat(series.Potentials[i], 'f', 6, 64),
			strconv.FormatFloat(series.Energies[i], 'f', 6, 64),
			strconv.Itoa(series.Populations[i]),
			strconv.Itoa(series.NodeCounts[i]),
			strconv.FormatFloat(series.Coherences[i], 'f', 6, 64),
			strconv.Itoa(series.Merges[i]),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.LoadMeta(runID)
	if err != nil {
		return err
	}
	series, err := st.LoadSeries(runID)
	if err != nil {
		return err
	}
	snap, err := st.LoadSnapshot(runID)
	if err != nil {
		return err
	}

	result := &sim.Result{
		Steps:       series.Steps,
		Times:       series.Times,
		Kinetics:    series.Kinetics,
		Potentials:  series.Potentials,
		Energies:    series.Energies,
		Populations: series.Populations,
		NodeCounts:  series.NodeCounts,
		Coherences:  series.Coherences,
		Merges:      series.Merges,
		Final:       snap,
		Metrics:     meta.Metrics,
		StepsTaken:  meta.Steps,
		EnergyDrift: meta.Metrics["energy_drift"],
	}

	return storage.ExportJSON(os.Stdout, meta.Scenario, meta.Stepper, meta.Dt, result)
}

func exportSVG(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	snap, err := st.LoadSnapshot(args[0])
	if err != nil {
		return err
	}

	svg := storage.SnapshotToSVG(snap, 800, 600)
	if svg == "" {
		return fmt.Errorf("empty snapshot")
	}
	fmt.Println(svg)
	return nil
}

func runBatch(cmd *cobra.Command, args []string) error {
	script, err := batch.Load(args[0])
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	log := logging.New(logging.WithPretty(true), logging.WithDebug(debug))
	outcomes, err := batch.RunScript(context.Background(), script, st, log)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "LABEL\tSTEPS\tPARTICLES\tNODES\tCOHERENCE\tRUN_ID")
	for _, oc := range outcomes {
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%.3f\t%s\n",
			oc.Label,
			oc.Result.StepsTaken,
			len(oc.Result.Final.Particles),
			len(oc.Result.Final.Nodes),
			oc.Result.Final.Coherence,
			oc.RunID,
		)
	}
	return w.Flush()
}

func runStability(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	log := logging.New(logging.WithPretty(true), logging.WithDebug(debug))
	results, err := batch.RunMonteCarlo(context.Background(), batch.MonteCarlo{
		Base:         cfg,
		Perturbation: perturb,
		Trials:       trials,
		Seed:         cfg.Seed,
		Radius:       radius,
		Workers:      workers,
	}, log)
	if err != nil {
		return err
	}

	stable, unstable := batch.CountStable(results)
	fmt.Printf("\nstability: %s, %d trials, perturbation %.3f\n", cfg.Scenario, len(results), perturb)
	fmt.Printf("stable: %d  unstable: %d (%.0f%% stable)\n",
		stable, unstable, 100*float64(stable)/float64(len(results)))

	if unstable > 0 {
		fmt.Println("\nunstable trials:")
		for _, tr := range results {
			if tr.Stable {
				continue
			}
			if tr.Err != nil {
				fmt.Printf("  trial %d: %v\n", tr.ID, tr.Err)
			} else {
				fmt.Printf("  trial %d: escaped the %g bound\n", tr.ID, radius)
			}
		}
	}

	return nil
}
