package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"

	"github.com/san-kum/beamsim/internal/config"
	"github.com/san-kum/beamsim/internal/experiment"
	"github.com/san-kum/beamsim/internal/export"
	"github.com/san-kum/beamsim/internal/logging"
	"github.com/san-kum/beamsim/internal/viz"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	configFile string
	workers    int
	verbose    bool
	logLevel   string
	csvOut     bool
	jsonOut    bool
	plotHeight int
	imageAt    float64
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "beamsim",
		Short:         "gaussian beam propagation and detector coupling",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if logLevel != "" {
				logging.SetLevel(logLevel)
			}
			logging.SetVerbose(verbose)
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")

	propagateCmd := &cobra.Command{
		Use:   "propagate",
		Short: "propagate the source beam through the element chain",
		Args:  cobra.NoArgs,
		RunE:  runPropagate,
	}
	scenarioFlags(propagateCmd.Flags(), "v96ghz_1km")
	outputFlags(propagateCmd.Flags())

	lossesCmd := &cobra.Command{
		Use:   "losses",
		Short: "transmission through the probe aperture vs distance",
		Args:  cobra.NoArgs,
		RunE:  runLosses,
	}
	scenarioFlags(lossesCmd.Flags(), "telecom_187mm")
	outputFlags(lossesCmd.Flags())

	focusCmd := &cobra.Command{
		Use:   "focus",
		Short: "coupling efficiency vs focal length of the focusing optic",
		Args:  cobra.NoArgs,
		RunE:  runFocus,
	}
	scenarioFlags(focusCmd.Flags(), "telecom_187mm")
	outputFlags(focusCmd.Flags())
	focusCmd.Flags().Float64Var(&imageAt, "image-at", 0, "also image the beam with a lens at this position (mm)")

	fitCmd := &cobra.Command{
		Use:   "fit",
		Short: "fit the detector aperture to measured efficiencies",
		Args:  cobra.NoArgs,
		RunE:  runFit,
	}
	scenarioFlags(fitCmd.Flags(), "alvidas")
	outputFlags(fitCmd.Flags())

	compareCmd := &cobra.Command{
		Use:   "compare [preset...]",
		Short: "fit and compare detector presets",
		RunE:  runCompare,
	}
	compareCmd.Flags().IntVar(&workers, "workers", 0, "parallel workers (0 = GOMAXPROCS)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available scenarios",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	rootCmd.AddCommand(propagateCmd, lossesCmd, focusCmd, fitCmd, compareCmd, presetsCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}

func scenarioFlags(fs *pflag.FlagSet, defaultPreset string) {
	fs.StringP("preset", "p", defaultPreset, "scenario preset")
	fs.StringVarP(&configFile, "config", "c", "", "scenario file (yaml or toml), overrides --preset")
	fs.IntVar(&workers, "workers", 0, "parallel workers (0 = GOMAXPROCS)")
	fs.IntVar(&plotHeight, "height", viz.DefaultPlotHeight, "plot height")
}

func outputFlags(fs *pflag.FlagSet) {
	fs.BoolVar(&csvOut, "csv", false, "write CSV to stdout")
	fs.BoolVar(&jsonOut, "json", false, "write a JSON report to stdout")
}

func presetFlag(cmd *cobra.Command) string {
	name, _ := cmd.Flags().GetString("preset")
	return name
}

func loadScenario(name string) (*config.Config, error) {
	if configFile != "" {
		cfg, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		return cfg, nil
	}
	cfg := config.GetPreset(name)
	if cfg == nil {
		return nil, fmt.Errorf("unknown preset: %s (available: %s)", name, strings.Join(config.ListPresets(), ", "))
	}
	return cfg, nil
}

func setupExperiment(name string) (*experiment.Experiment, error) {
	cfg, err := loadScenario(name)
	if err != nil {
		return nil, err
	}
	exp := experiment.New(cfg, experiment.NewRegistry())
	exp.Workers = workers
	if err := exp.Setup(); err != nil {
		return nil, err
	}
	return exp, nil
}

func runPropagate(cmd *cobra.Command, args []string) error {
	exp, err := setupExperiment(presetFlag(cmd))
	if err != nil {
		return err
	}

	path, err := exp.Propagate()
	if err != nil {
		return err
	}

	if jsonOut {
		r := export.NewReport(exp.Config().Name, cmd.Name())
		r.AddPath(path)
		return r.WriteJSON(os.Stdout)
	}

	profile, err := exp.Profile(cmd.Context())
	if err != nil {
		return err
	}
	if csvOut {
		return export.WriteProfileCSV(os.Stdout, profile)
	}

	src := exp.Source()
	fmt.Println(viz.Summary(exp.Config().Name,
		viz.F("wavelength", "%g mm", src.Wavelength),
		viz.F("source waist", "%g mm at %g mm", src.Waist, src.WaistPosition),
		viz.F("rayleigh range", "%.4g mm", src.RayleighRange()),
		viz.F("divergence", "%.4g mrad", 1000*src.Divergence()),
	))
	fmt.Println()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STAGE\tKIND\tPOSITION\tFOCAL\tDIAMETER\tRADIUS\tTRANSMISSION\tWAIST\tWAIST AT")
	for i, s := range path.Stages {
		z := s.Element.Position()
		fmt.Fprintf(w, "%d\t%s\t%.6g\t%.6g\t%.6g\t%.4g\t%.6f\t%.4g\t%.6g\n",
			i+1,
			s.Element.Kind(),
			z,
			s.Element.FocalLength(),
			s.Element.Diameter(),
			s.Incident.Radius(z),
			s.Transmission,
			s.Output.Waist,
			s.Output.WaistPosition,
		)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("\ntotal transmission: %s\n\n", viz.Efficiency(path.TotalTransmission()))
	fmt.Println(viz.Plot(profile.Radii, fmt.Sprintf("beam radius (mm), z = %.4g .. %.4g mm",
		profile.Positions[0], profile.Positions[len(profile.Positions)-1]), plotHeight))
	return nil
}

func runLosses(cmd *cobra.Command, args []string) error {
	exp, err := setupExperiment(presetFlag(cmd))
	if err != nil {
		return err
	}

	profile, err := exp.Profile(cmd.Context())
	if err != nil {
		return err
	}
	if profile.Transmission == nil {
		return fmt.Errorf("scenario %s has no probe aperture", exp.Config().Name)
	}
	if csvOut {
		return export.WriteProfileCSV(os.Stdout, profile)
	}
	if jsonOut {
		path, err := exp.Propagate()
		if err != nil {
			return err
		}
		r := export.NewReport(exp.Config().Name, cmd.Name())
		r.AddPath(path)
		r.AddProfile(profile)
		return r.WriteJSON(os.Stdout)
	}

	n := len(profile.Positions)
	fmt.Println(viz.Summary(exp.Config().Name,
		viz.F("aperture", "%g mm", profile.ApertureDiameter),
		viz.F("range", "%.4g .. %.4g mm", profile.Positions[0], profile.Positions[n-1]),
		viz.F("first", "%.6f", profile.Transmission[0]),
		viz.F("last", "%.6f", profile.Transmission[n-1]),
	))
	fmt.Println()
	fmt.Println(viz.Plot(profile.Transmission, "transmission through the probe aperture", plotHeight))
	return nil
}

func runFocus(cmd *cobra.Command, args []string) error {
	exp, err := setupExperiment(presetFlag(cmd))
	if err != nil {
		return err
	}

	curve, err := exp.Focus(cmd.Context())
	if err != nil {
		return err
	}
	peak, ok := curve.Peak()
	if !ok {
		return fmt.Errorf("empty focal length sweep")
	}

	if csvOut {
		return export.WriteCurveCSV(os.Stdout, curve)
	}
	if jsonOut {
		r := export.NewReport(exp.Config().Name, cmd.Name())
		r.AddPeak(peak)
		return r.WriteJSON(os.Stdout)
	}

	det := exp.Config().Detector
	fmt.Println(viz.Summary(exp.Config().Name,
		viz.F("detector", "%s, %g mm aperture, %g° acceptance", det.Name, det.Aperture, det.AcceptanceAngle),
		viz.F("peak focal length", "%.4g mm", peak.FocalLength),
		viz.F("airy diameter", "%.4g mm", peak.AiryDiameter),
		viz.F("convergence", "%.4g°", peak.Convergence),
		viz.F("geometric", "%.4f", peak.Geometric),
		viz.F("angular", "%.4f", peak.Angular),
	))
	fmt.Printf("\npeak efficiency: %s %s\n\n", viz.Efficiency(peak.Total), viz.Bar(peak.Total, 30))
	fmt.Println(viz.PlotMany([][]float64{curve.Geometric, curve.Angular, curve.Total},
		"geometric, angular, total vs focal length", plotHeight))

	if imageAt > 0 {
		return printImages(cmd.Context(), exp)
	}
	return nil
}

func printImages(ctx context.Context, exp *experiment.Experiment) error {
	beams, err := exp.ImageSweep(ctx, imageAt)
	if err != nil {
		return err
	}
	fs := exp.FocalLengths()

	fmt.Printf("\nfocusing lens at %g mm\n", imageAt)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "FOCAL\tWAIST\tWAIST AT")
	step := max(len(beams)/10, 1)
	for i := 0; i < len(beams); i += step {
		fmt.Fprintf(w, "%.4g\t%.4g\t%.6g\n", fs[i], beams[i].Waist, beams[i].WaistPosition)
	}
	return w.Flush()
}

func runFit(cmd *cobra.Command, args []string) error {
	exp, err := setupExperiment(presetFlag(cmd))
	if err != nil {
		return err
	}

	res, err := exp.Fit(cmd.Context())
	if err != nil {
		return err
	}

	if csvOut {
		return export.WriteFitCSV(os.Stdout, res)
	}
	if jsonOut {
		r := export.NewReport(exp.Config().Name, cmd.Name())
		r.AddFit(res)
		return r.WriteJSON(os.Stdout)
	}

	fit := exp.Config().Fit
	fmt.Println(viz.Summary(exp.Config().Name,
		viz.F("fit range", "%g .. %g mm", fit.FocalMin, fit.FocalMax),
		viz.F("scale", "%g", fit.Scale),
		viz.F("measurements", "%d used of %d", len(res.Used), len(fit.Measurements)),
		viz.F("best aperture", "%.4g mm", res.Aperture),
		viz.F("mse", "%.4g", res.Loss),
	))
	fmt.Println()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "FOCAL\tMEASURED\tMODEL")
	for _, m := range res.Used {
		p := nearest(res.Curve.FocalLengths, m.FocalLength)
		fmt.Fprintf(w, "%g\t%.4f\t%.4f\n", m.FocalLength, m.Value, res.Curve.Total[p])
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(viz.Plot(res.Losses, "mse vs aperture", plotHeight))
	return nil
}

func nearest(xs []float64, x float64) int {
	best := 0
	for i, v := range xs {
		if math.Abs(v-x) < math.Abs(xs[best]-x) {
			best = i
		}
	}
	return best
}

func runCompare(cmd *cobra.Command, args []string) error {
	names := args
	if len(names) == 0 {
		names = config.DetectorPresets()
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tDETECTOR\tAPERTURE\tACCEPTANCE\tFIT APERTURE\tMSE\tPEAK F\tPEAK EFF")
	for _, name := range names {
		exp, err := setupExperiment(name)
		if err != nil {
			return err
		}
		res, err := exp.Fit(cmd.Context())
		if err != nil {
			return err
		}
		peak, _ := res.Curve.Peak()

		det := exp.Config().Detector
		fmt.Fprintf(w, "%s\t%s\t%g\t%g\t%.4g\t%.4g\t%.4g\t%.4f\n",
			name,
			det.Name,
			det.Aperture,
			det.AcceptanceAngle,
			res.Aperture,
			res.Loss,
			peak.FocalLength,
			peak.Total,
		)
	}
	return w.Flush()
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tWAVELENGTH\tELEMENTS\tDETECTOR\tMEASUREMENTS")
	for _, name := range config.ListPresets() {
		cfg := config.Presets[name]
		kinds := make([]string, len(cfg.Elements))
		for i, e := range cfg.Elements {
			kinds[i] = e.Kind
		}
		det := "-"
		if cfg.HasDetector() {
			det = cfg.Detector.Name
		}
		fmt.Fprintf(w, "%s\t%g mm\t%s\t%s\t%d\n",
			name,
			cfg.Wavelength,
			strings.Join(kinds, ","),
			det,
			len(cfg.Fit.Measurements),
		)
	}
	return w.Flush()
}
