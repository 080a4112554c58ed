package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/wanpwang1981-ux/ubike-easy-checker/internal/domain"
	"github.com/wanpwang1981-ux/ubike-easy-checker/internal/observability"
)

// Source fetches station records from one upstream.
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]domain.SourceRecord, error)
}

// Loader persists or publishes a merged station snapshot.
type Loader interface {
	Load(ctx context.Context, stations []domain.Station) error
}

// SourceResult reports what one source contributed to a run.
type SourceResult struct {
	Name       string
	Fetched    int
	Accepted   int
	Inactive   int
	MissingID  int
	Invalid    int
	Duplicates int
	Duration   time.Duration
	Err        error
}

// Result is the outcome of one run.
type Result struct {
	RunAt    time.Time
	Sources  []SourceResult
	Stations []domain.Station
	// Written is true when every loader accepted the snapshot.
	Written bool
}

// Pipeline orchestrates fetch, normalize, merge, and load for one run.
type Pipeline struct {
	sources []Source
	loaders []Loader
	logger  *slog.Logger
	metrics *observability.Metrics
}

// New creates a Pipeline. Sources are fetched in the given order, which
// decides which record wins when two sources report the same station.
func New(sources []Source, loaders []Loader, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		sources: sources,
		loaders: loaders,
		logger:  logger,
		metrics: metrics,
	}
}

// Run fetches every source sequentially and merges the records, keeping the
// first occurrence of each station ID. A failing source contributes nothing
// and does not stop the run. When no stations remain the loaders are not
// called and Run returns a nil error; the previous snapshot stays in place.
// Loader failures are joined into the returned error.
func (p *Pipeline) Run(ctx context.Context) (Result, error) {
	res := Result{RunAt: clock.Now()}
	seen := make(map[string]struct{})

	for _, src := range p.sources {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		sr := p.runSource(ctx, src, seen, &res.Stations)
		res.Sources = append(res.Sources, sr)
	}

	if len(res.Stations) == 0 {
		p.logger.Warn("no stations fetched, keeping existing snapshot")
		p.logSummary(res)
		return res, nil
	}

	var errs []error
	for _, l := range p.loaders {
		if err := l.Load(ctx, res.Stations); err != nil {
			name := loaderName(l)
			p.logger.Error("load snapshot failed", "loader", name, "error", err)
			p.metrics.LoadErrors.WithLabelValues(name).Inc()
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}
	if len(errs) > 0 {
		p.logSummary(res)
		return res, errors.Join(errs...)
	}

	res.Written = true
	p.metrics.StationsWritten.Set(float64(len(res.Stations)))
	p.metrics.LastSuccess.Set(float64(clock.Now().Unix()))
	p.logSummary(res)
	return res, nil
}

// runSource fetches one source and appends its new stations to out.
func (p *Pipeline) runSource(ctx context.Context, src Source, seen map[string]struct{}, out *[]domain.Station) SourceResult {
	name := src.Name()
	sr := SourceResult{Name: name}

	start := clock.Now()
	records, err := src.Fetch(ctx)
	sr.Duration = clock.Since(start)
	p.metrics.FetchDuration.WithLabelValues(name).Observe(sr.Duration.Seconds())

	if err != nil {
		p.logger.Warn("source fetch failed", "source", name, "error", err)
		p.metrics.FetchErrors.WithLabelValues(name).Inc()
		sr.Err = err
		return sr
	}

	sr.Fetched = len(records)
	p.metrics.RecordsFetched.WithLabelValues(name).Add(float64(len(records)))

	for _, rec := range records {
		st, reason, err := normalize(rec)
		if err != nil {
			switch reason {
			case reasonMissingID:
				sr.MissingID++
			case reasonInactive:
				sr.Inactive++
			default:
				sr.Invalid++
			}
			p.metrics.RecordsSkipped.WithLabelValues(name, reason).Inc()
			p.logger.Debug("record skipped", "source", name, "reason", reason, "error", err)
			continue
		}
		if _, dup := seen[st.ID]; dup {
			sr.Duplicates++
			p.metrics.Duplicates.WithLabelValues(name).Inc()
			continue
		}
		seen[st.ID] = struct{}{}
		*out = append(*out, st)
		sr.Accepted++
	}

	p.logger.Info("source fetched",
		"source", name,
		"count", sr.Fetched,
		"accepted", sr.Accepted,
		"inactive", sr.Inactive,
		"missing_id", sr.MissingID,
		"duplicates", sr.Duplicates,
		"duration", sr.Duration,
	)
	return sr
}

func (p *Pipeline) logSummary(res Result) {
	failed := 0
	for _, sr := range res.Sources {
		if sr.Err != nil {
			failed++
		}
	}
	p.logger.Info("run complete",
		"sources", len(res.Sources),
		"failed_sources", failed,
		"total", len(res.Stations),
		"written", res.Written,
		"duration", clock.Since(res.RunAt),
	)
}

// loaderName derives a metric label such as "file.Store" from the loader type.
func loaderName(l Loader) string {
	return strings.TrimPrefix(fmt.Sprintf("%T", l), "*")
}
