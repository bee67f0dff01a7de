package pipeline

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"marketing-dashboard/internal/errors"
	"marketing-dashboard/internal/metrics"
	"marketing-dashboard/internal/models"
	"marketing-dashboard/internal/observability"
)

// Table is the prepared, immutable result of one pipeline run.
type Table struct {
	Records     []models.EnrichedRecord
	Fingerprint string
	BuiltAt     time.Time
}

// CountByChannel returns the number of rows per channel label.
func (t *Table) CountByChannel() map[string]int {
	counts := make(map[string]int, len(models.Channels))
	for _, r := range t.Records {
		counts[string(r.Channel)]++
	}
	return counts
}

type Pipeline struct {
	sources Sources
	logger  *slog.Logger
	metrics *metrics.PipelineMetrics
}

func New(sources Sources, logger *slog.Logger, m *metrics.PipelineMetrics) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{sources: sources, logger: logger, metrics: m}
}

func (p *Pipeline) Sources() Sources {
	return p.sources
}

// Run loads all sources and builds the enriched table. The sources are
// read concurrently, but the output order is fixed by the source order
// and the row order inside each file. Any failure aborts the run.
func (p *Pipeline) Run(ctx context.Context) (*Table, error) {
	start := time.Now()
	ctx, span := observability.StartSpan(ctx, "pipeline.run")

	table, err := p.run(ctx)

	span.Finish()
	p.metrics.ObserveRun(time.Since(start))
	if err != nil {
		span.SetError(err)
		p.metrics.IncFailure(string(errors.CodeOf(err)))
		p.logger.Error("data preparation failed", "error", err, "span", span)
		return nil, err
	}

	p.metrics.IncSuccess()
	p.metrics.SetRows(table.CountByChannel())
	p.logger.Info("data preparation complete",
		"records", len(table.Records),
		"duration", time.Since(start),
		"span", span,
	)
	return table, nil
}

func (p *Pipeline) run(ctx context.Context) (*Table, error) {
	marketing := make([][]models.MarketingRecord, len(p.sources.Marketing))
	var business []models.BusinessRecord

	g, gctx := errgroup.WithContext(ctx)
	for i, src := range p.sources.Marketing {
		g.Go(func() error {
			_, err := p.traced(gctx, string(src.Channel), func(ctx context.Context) (int, error) {
				records, err := LoadMarketing(ctx, src)
				marketing[i] = records
				return len(records), err
			})
			return err
		})
	}
	g.Go(func() error {
		_, err := p.traced(gctx, "business", func(ctx context.Context) (int, error) {
			records, err := LoadBusiness(ctx, p.sources.Business)
			business = records
			return len(records), err
		})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	records, err := Enrich(marketing, business)
	if err != nil {
		return nil, err
	}
	return &Table{Records: records, BuiltAt: time.Now().UTC()}, nil
}

func (p *Pipeline) traced(ctx context.Context, source string, load func(context.Context) (int, error)) (int, error) {
	ctx, span := observability.StartSpan(ctx, "pipeline.load")
	span.SetTag("source", source)
	n, err := load(ctx)
	span.Finish()
	if err != nil {
		span.SetError(err)
		return n, err
	}
	p.logger.Debug("source loaded", "rows", n, "span", span)
	return n, nil
}
