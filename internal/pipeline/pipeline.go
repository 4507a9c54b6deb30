package pipeline

import (
	"context"
	"fmt"
	"iter"
	"log/slog"

	"github.com/couchcryptid/neo-approach-etl/internal/database"
	"github.com/couchcryptid/neo-approach-etl/internal/domain"
	"github.com/couchcryptid/neo-approach-etl/internal/extract"
	"github.com/couchcryptid/neo-approach-etl/internal/filters"
	"github.com/couchcryptid/neo-approach-etl/internal/observability"
	"github.com/jonboulle/clockwork"
)

// Source reads NEOs and close approaches from the upstream dataset.
type Source interface {
	LoadNEOs(ctx context.Context) ([]*domain.NEO, extract.Report, error)
	LoadApproaches(ctx context.Context) ([]*domain.Approach, extract.Report, error)
}

// Sink consumes a query result. Name labels the sink in logs and metrics.
type Sink interface {
	Name() string
	Write(ctx context.Context, results iter.Seq[*domain.Approach]) (int, error)
}

// Pipeline orchestrates extract, link, query and write.
type Pipeline struct {
	source  Source
	logger  *slog.Logger
	metrics *observability.Metrics
	clock   clockwork.Clock
}

// New creates a Pipeline. A nil clock uses the real clock.
func New(source Source, logger *slog.Logger, metrics *observability.Metrics, clock clockwork.Clock) *Pipeline {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Pipeline{
		source:  source,
		logger:  logger,
		metrics: metrics,
		clock:   clock,
	}
}

// Load reads both datasets and links them into a Database.
func (p *Pipeline) Load(ctx context.Context) (*database.Database, error) {
	start := p.clock.Now()

	neos, report, err := p.source.LoadNEOs(ctx)
	if err != nil {
		return nil, fmt.Errorf("load neos: %w", err)
	}
	p.recordReport("neo", report)

	approaches, report, err := p.source.LoadApproaches(ctx)
	if err != nil {
		return nil, fmt.Errorf("load approaches: %w", err)
	}
	p.recordReport("approach", report)

	db, err := database.New(neos, approaches, p.logger)
	if err != nil {
		return nil, fmt.Errorf("link: %w", err)
	}

	p.metrics.ApproachesLinked.Add(float64(len(db.Approaches())))
	p.metrics.ApproachesOrphaned.Add(float64(len(db.Orphans())))

	elapsed := p.clock.Since(start)
	p.metrics.LoadDuration.Set(elapsed.Seconds())
	p.logger.Info("load complete", "duration", elapsed)

	return db, nil
}

// Run selects the approaches matching criteria, capped at limit when
// positive, and hands them to sink. It returns the number written.
func (p *Pipeline) Run(ctx context.Context, db *database.Database, criteria filters.Criteria, limit int, sink Sink) (int, error) {
	start := p.clock.Now()

	fs := filters.Create(criteria)
	p.logger.Debug("query", "filters", fmt.Sprint(fs), "limit", limit, "sink", sink.Name())

	results := filters.Limit(db.Query(fs...), limit)
	n, err := sink.Write(ctx, results)
	p.metrics.RowsWritten.WithLabelValues(sink.Name()).Add(float64(n))
	if err != nil {
		return n, fmt.Errorf("write %s: %w", sink.Name(), err)
	}

	elapsed := p.clock.Since(start)
	p.metrics.RunDuration.Set(elapsed.Seconds())
	p.logger.Info("query complete", "sink", sink.Name(), "written", n, "duration", elapsed)

	return n, nil
}

func (p *Pipeline) recordReport(entity string, report extract.Report) {
	p.metrics.RecordsLoaded.WithLabelValues(entity).Add(float64(report.Accepted))
	p.metrics.RecordsRejected.WithLabelValues(entity).Add(float64(report.Rejected))
}
