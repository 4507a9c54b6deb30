package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/couchcryptid/neo-approach-etl/internal/adapter/kafka"
	"github.com/couchcryptid/neo-approach-etl/internal/config"
	"github.com/couchcryptid/neo-approach-etl/internal/database"
	"github.com/couchcryptid/neo-approach-etl/internal/domain"
	"github.com/couchcryptid/neo-approach-etl/internal/extract"
	"github.com/couchcryptid/neo-approach-etl/internal/filters"
	"github.com/couchcryptid/neo-approach-etl/internal/observability"
	"github.com/couchcryptid/neo-approach-etl/internal/pipeline"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"
)

const defaultStdoutLimit = 10

// app carries the state shared by every subcommand once the root pre-run has
// loaded configuration.
type app struct {
	stdout io.Writer
	stderr io.Writer
	clock  clockwork.Clock

	cfg     *config.Config
	logger  *slog.Logger
	metrics *observability.Metrics
	runID   string
}

func newRootCmd(stdout, stderr io.Writer, clock clockwork.Clock) *cobra.Command {
	a := &app{stdout: stdout, stderr: stderr, clock: clock}

	var (
		neoFile string
		cadFile string
		strict  bool
	)

	root := &cobra.Command{
		Use:           "neo",
		Short:         "Explore close approaches of near-Earth objects",
		Long:          "Load the JPL small-body NEO catalogue and close-approach data, link them, and inspect or query the result.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			flags := cmd.Flags()
			if flags.Changed("neofile") {
				cfg.NEOFile = neoFile
			}
			if flags.Changed("cadfile") {
				cfg.CADFile = cadFile
			}
			if flags.Changed("strict") {
				cfg.Strict = strict
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			a.cfg = cfg
			a.logger = observability.NewLogger(cfg, a.stderr)
			a.metrics = observability.NewMetrics()
			a.runID = uuid.NewString()
			a.logger = a.logger.With("run_id", a.runID)
			return nil
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			if a.cfg.MetricsTextfile == "" {
				return nil
			}
			if err := a.metrics.WriteTextfile(a.cfg.MetricsTextfile); err != nil {
				return fmt.Errorf("write metrics textfile: %w", err)
			}
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&neoFile, "neofile", "data/neos.csv", "Path to the NEO catalogue CSV (overrides NEO_FILE)")
	pf.StringVar(&cadFile, "cadfile", "data/cad.json", "Path to the close-approach JSON (overrides CAD_FILE)")
	pf.BoolVar(&strict, "strict", false, "Abort on the first invalid record instead of skipping it (overrides STRICT)")

	root.AddCommand(newInspectCmd(a), newQueryCmd(a))
	return root
}

func (a *app) newPipeline() *pipeline.Pipeline {
	source := &extract.FileSource{
		NEOPath: a.cfg.NEOFile,
		CADPath: a.cfg.CADFile,
		Loader:  extract.NewLoader(a.cfg.Strict, a.logger),
	}
	return pipeline.New(source, a.logger, a.metrics, a.clock)
}

func newInspectCmd(a *app) *cobra.Command {
	var (
		pdes    string
		name    string
		verbose bool
	)

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Show one NEO by primary designation or IAU name",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := a.newPipeline().Load(cmd.Context())
			if err != nil {
				return err
			}
			return inspect(a.stdout, db, pdes, name, verbose)
		},
	}

	f := cmd.Flags()
	f.StringVar(&pdes, "pdes", "", "Primary designation, e.g. 433")
	f.StringVar(&name, "name", "", "IAU name, e.g. Eros")
	f.BoolVarP(&verbose, "verbose", "v", false, "Also list every close approach")
	cmd.MarkFlagsMutuallyExclusive("pdes", "name")
	cmd.MarkFlagsOneRequired("pdes", "name")

	return cmd
}

func inspect(w io.Writer, db *database.Database, pdes, name string, verbose bool) error {
	var neo *domain.NEO
	if pdes != "" {
		neo = db.NEOByDesignation(pdes)
	} else {
		neo = db.NEOByName(name)
	}
	if neo == nil {
		_, err := fmt.Fprintln(w, "No matching NEOs exist in the database.")
		return err
	}

	if _, err := fmt.Fprintln(w, neo); err != nil {
		return err
	}
	if !verbose {
		return nil
	}
	for _, approach := range neo.Approaches() {
		if _, err := fmt.Fprintf(w, "- %s\n", approach); err != nil {
			return err
		}
	}
	return nil
}

// queryFlags holds the raw query flag values before conversion to Criteria.
type queryFlags struct {
	date, startDate, endDate string
	minDistance, maxDistance float64
	minVelocity, maxVelocity float64
	minDiameter, maxDiameter float64
	hazardous, notHazardous  bool
	limit                    int
	outfile                  string
	publish                  bool
}

func newQueryCmd(a *app) *cobra.Command {
	var q queryFlags

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Select close approaches matching the given bounds",
		Long: "Select close approaches matching every given bound. Results print to stdout " +
			"(first 10 by default), or are saved to --outfile as CSV or JSON by extension, " +
			"or published to KAFKA_TOPIC with --kafka.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			criteria, err := q.criteria(cmd)
			if err != nil {
				return err
			}

			sink, closeSink, err := a.sink(cmd, &q)
			if err != nil {
				return err
			}
			defer closeSink()

			p := a.newPipeline()
			db, err := p.Load(cmd.Context())
			if err != nil {
				return err
			}
			_, err = p.Run(cmd.Context(), db, criteria, q.limit, sink)
			return err
		},
	}

	f := cmd.Flags()
	f.StringVarP(&q.date, "date", "d", "", "Only approaches on this date (YYYY-MM-DD)")
	f.StringVarP(&q.startDate, "start-date", "s", "", "Only approaches on or after this date (YYYY-MM-DD)")
	f.StringVarP(&q.endDate, "end-date", "e", "", "Only approaches on or before this date (YYYY-MM-DD)")
	f.Float64Var(&q.minDistance, "min-distance", 0, "Minimum approach distance in au")
	f.Float64Var(&q.maxDistance, "max-distance", 0, "Maximum approach distance in au")
	f.Float64Var(&q.minVelocity, "min-velocity", 0, "Minimum relative velocity in km/s")
	f.Float64Var(&q.maxVelocity, "max-velocity", 0, "Maximum relative velocity in km/s")
	f.Float64Var(&q.minDiameter, "min-diameter", 0, "Minimum NEO diameter in km")
	f.Float64Var(&q.maxDiameter, "max-diameter", 0, "Maximum NEO diameter in km")
	f.BoolVar(&q.hazardous, "hazardous", false, "Only potentially hazardous NEOs")
	f.BoolVar(&q.notHazardous, "not-hazardous", false, "Only NEOs that are not potentially hazardous")
	f.IntVarP(&q.limit, "limit", "l", 0, "Maximum number of results (default 10 on stdout, unlimited otherwise)")
	f.StringVarP(&q.outfile, "outfile", "o", "", "Write results to a .csv or .json file")
	f.BoolVar(&q.publish, "kafka", false, "Publish results to KAFKA_TOPIC")
	cmd.MarkFlagsMutuallyExclusive("hazardous", "not-hazardous")
	cmd.MarkFlagsMutuallyExclusive("outfile", "kafka")

	return cmd
}

// sink picks the output for a query and applies the stdout default limit.
// The returned func releases any resources the sink holds.
func (a *app) sink(cmd *cobra.Command, q *queryFlags) (pipeline.Sink, func(), error) {
	noop := func() {}
	switch {
	case q.outfile != "":
		return pipeline.FileSink{Path: q.outfile}, noop, nil
	case q.publish:
		if err := a.cfg.ValidateKafka(); err != nil {
			return nil, noop, err
		}
		publisher := kafka.NewPublisher(a.cfg, a.runID, a.logger)
		return publisher, func() {
			if err := publisher.Close(); err != nil {
				a.logger.Error("kafka publisher close error", "error", err)
			}
		}, nil
	default:
		if !cmd.Flags().Changed("limit") {
			q.limit = defaultStdoutLimit
		}
		return pipeline.TextSink{W: a.stdout}, noop, nil
	}
}

func (q *queryFlags) criteria(cmd *cobra.Command) (filters.Criteria, error) {
	var c filters.Criteria
	flags := cmd.Flags()

	dates := []struct {
		flag string
		raw  string
		dst  **time.Time
	}{
		{"date", q.date, &c.Date},
		{"start-date", q.startDate, &c.StartDate},
		{"end-date", q.endDate, &c.EndDate},
	}
	for _, d := range dates {
		if !flags.Changed(d.flag) {
			continue
		}
		t, err := domain.ParseDate(d.raw)
		if err != nil {
			return filters.Criteria{}, fmt.Errorf("--%s: %w", d.flag, err)
		}
		*d.dst = &t
	}

	bounds := []struct {
		flag string
		v    float64
		dst  **float64
	}{
		{"min-distance", q.minDistance, &c.DistanceMin},
		{"max-distance", q.maxDistance, &c.DistanceMax},
		{"min-velocity", q.minVelocity, &c.VelocityMin},
		{"max-velocity", q.maxVelocity, &c.VelocityMax},
		{"min-diameter", q.minDiameter, &c.DiameterMin},
		{"max-diameter", q.maxDiameter, &c.DiameterMax},
	}
	for _, b := range bounds {
		if flags.Changed(b.flag) {
			v := b.v
			*b.dst = &v
		}
	}

	switch {
	case q.hazardous:
		want := true
		c.Hazardous = &want
	case q.notHazardous:
		want := false
		c.Hazardous = &want
	}

	return c, nil
}

func execute(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	root := newRootCmd(stdout, stderr, clockwork.NewRealClock())
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return root.ExecuteContext(ctx)
}
