package main

import (
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/rshade/carbon-credit-engine/internal/calculator"
	"github.com/rshade/carbon-credit-engine/internal/gridef"
	"github.com/rshade/carbon-credit-engine/internal/methodology"
)

// app is the composition root shared by every subcommand. It is populated by
// setup before a command runs.
type app struct {
	out    io.Writer
	errOut io.Writer

	configPath  string
	dumpMetrics bool

	cfg      Config
	logger   zerolog.Logger
	registry *methodology.Registry
	table    *gridef.Table
	gatherer *prometheus.Registry
	metrics  *calculator.Metrics
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	a := &app{out: out, errOut: errOut, logger: zerolog.Nop()}

	root := &cobra.Command{
		Use:   serviceName,
		Short: "Carbon credit methodology and emission reduction calculator",
		Long: `carbon-credit-engine computes verifiable emission reductions (tCO2e) for
renewable energy and methane capture projects under CDM, Verra, Global Carbon
Council and Gold Standard methodologies.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup()
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			if a.dumpMetrics {
				return a.writeMetrics(a.errOut)
			}
			return nil
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default $"+envConfig+")")
	root.PersistentFlags().BoolVar(&a.dumpMetrics, "metrics", false, "write calculation metrics to stderr on exit")

	root.AddCommand(
		newCalculateCmd(a),
		newQuickEstimateCmd(a),
		newMethodologiesCmd(a),
		newGridEFCmd(a),
		newInspectCmd(a),
		newValidateMappingCmd(a),
	)
	return root
}

func (a *app) setup() error {
	a.registry = methodology.Default()

	bootstrap := zerolog.New(zerolog.ConsoleWriter{Out: a.errOut}).Level(zerolog.WarnLevel)
	cfg, err := loadConfig(a.configPath, a.registry, bootstrap)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = cfg.newLogger(a.errOut)
	gridef.SetLogger(a.logger)

	if cfg.GridEFFile != "" {
		a.table, err = loadGridEFFile(cfg.GridEFFile)
	} else {
		a.table, err = gridef.Default()
	}
	if err != nil {
		return fmt.Errorf("loading grid emission factors: %w", err)
	}

	a.gatherer = prometheus.NewRegistry()
	a.metrics, err = calculator.NewMetrics(a.gatherer)
	if err != nil {
		return err
	}

	a.logger.Debug().
		Str("default_methodology", cfg.DefaultMethodology).
		Int("grid_ef_records", a.table.Len()).
		Msg("engine initialized")
	return nil
}

func loadGridEFFile(path string) (*gridef.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return gridef.ParseCSV(f)
}

func (a *app) newCalculator(methodologyID string) (*calculator.CreditCalculator, error) {
	return calculator.New(methodologyID, a.registry, a.table,
		calculator.WithLogger(a.logger),
		calculator.WithMetrics(a.metrics),
	)
}

// writeJSON writes v as indented JSON to the command output.
func (a *app) writeJSON(v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	b = append(b, '\n')
	_, err = a.out.Write(b)
	return err
}

func (a *app) writeMetrics(w io.Writer) error {
	if a.gatherer == nil {
		return nil
	}
	families, err := a.gatherer.Gather()
	if err != nil {
		return fmt.Errorf("gathering metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}
