package service

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"ops-dashboard/internal/analytics"
	"ops-dashboard/internal/metrics"
	"ops-dashboard/internal/models"
)

// Snapshotter reads the two collections every aggregation works on.
type Snapshotter interface {
	ListProjects(ctx context.Context) ([]models.Project, error)
	ListEngineers(ctx context.Context) ([]models.Engineer, error)
}

// unknownVersion marks a state loaded while the data version was unreadable.
// Such a state is never reused and its results are never memoized.
const unknownVersion int64 = -1

// AnalyticsService serves the dashboard aggregations from the latest loaded
// state, reloading only when the data version moves.
type AnalyticsService struct {
	store  Snapshotter
	cache  Cache
	logger *zap.Logger
	now    func() time.Time

	token atomic.Uint64

	mu      sync.Mutex
	state   *analytics.State
	applied uint64
}

func NewAnalyticsService(store Snapshotter, cache Cache, logger *zap.Logger) *AnalyticsService {
	return &AnalyticsService{
		store:  store,
		cache:  cache,
		logger: logger,
		now:    time.Now,
	}
}

// State returns the current state, loading it when the cached copy was taken
// at an older data version.
func (s *AnalyticsService) State(ctx context.Context) (analytics.State, error) {
	version, err := s.cache.DataVersion(ctx)
	if err != nil {
		s.logger.Warn("failed to read data version", zap.Error(err))
		version = unknownVersion
	}

	if version != unknownVersion {
		s.mu.Lock()
		current := s.state
		s.mu.Unlock()
		if current != nil && current.Version == version {
			return *current, nil
		}
	}
	return s.load(ctx, version)
}

// load fetches projects and engineers in parallel. Each load takes a token;
// a load finishing after a newer one was applied is returned to its caller
// but not kept.
func (s *AnalyticsService) load(ctx context.Context, version int64) (analytics.State, error) {
	token := s.token.Add(1)

	var projects []models.Project
	var engineers []models.Engineer

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		projects, err = s.store.ListProjects(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		engineers, err = s.store.ListEngineers(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return analytics.State{}, err
	}

	state := analytics.State{Projects: projects, Engineers: engineers, Version: version}
	if version == unknownVersion {
		return state, nil
	}

	s.mu.Lock()
	if token > s.applied {
		s.state = &state
		s.applied = token
	} else {
		s.logger.Debug("discarding stale state load",
			zap.Uint64("token", token),
			zap.Uint64("applied", s.applied))
	}
	s.mu.Unlock()
	return state, nil
}

// memoize returns the cached result of kind for q at the state's version,
// computing and storing it on a miss.
func memoize[T any](ctx context.Context, s *AnalyticsService, kind string, q analytics.Query, compute func(analytics.State) T) (T, error) {
	var zero T
	state, err := s.State(ctx)
	if err != nil {
		return zero, err
	}
	if state.Version == unknownVersion {
		return compute(state), nil
	}

	key := analytics.MemoKey(kind, state.Version, q)
	var cached T
	hit, err := s.cache.GetMemo(ctx, key, &cached)
	if err != nil {
		s.logger.Warn("memo read failed", zap.String("key", key), zap.Error(err))
	}
	metrics.RecordCacheLookup(kind, hit)
	if hit {
		return cached, nil
	}

	result := compute(state)
	if err := s.cache.SetMemo(ctx, key, result); err != nil {
		s.logger.Warn("memo write failed", zap.String("key", key), zap.Error(err))
	}
	return result, nil
}

func filtered(state analytics.State, f analytics.Filter) analytics.State {
	state.Projects = f.Apply(state.Projects)
	return state
}

// Capacity is the weekly hour balance of every engineer over r.
func (s *AnalyticsService) Capacity(ctx context.Context, f analytics.Filter, r analytics.Range) (analytics.CapacityReport, error) {
	q := analytics.Query{Filter: f, Range: r}
	return memoize(ctx, s, "capacity", q, func(state analytics.State) analytics.CapacityReport {
		return analytics.Capacity(filtered(state, f), r)
	})
}

// CurrentCapacity is the status based snapshot shown on the Resources view.
func (s *AnalyticsService) CurrentCapacity(ctx context.Context, f analytics.Filter) (analytics.CapacityReport, error) {
	q := analytics.Query{Filter: f}
	return memoize(ctx, s, "capacity-current", q, func(state analytics.State) analytics.CapacityReport {
		return analytics.CurrentCapacity(filtered(state, f))
	})
}

func (s *AnalyticsService) CapacitySeries(ctx context.Context, f analytics.Filter, r analytics.Range, granularity string) (analytics.CapacitySeriesReport, error) {
	periods, err := analytics.Periods(granularity, r)
	if err != nil {
		return analytics.CapacitySeriesReport{}, err
	}
	q := analytics.Query{Filter: f, Range: r, Granularity: granularity}
	return memoize(ctx, s, "capacity-series", q, func(state analytics.State) analytics.CapacitySeriesReport {
		return analytics.CapacitySeries(filtered(state, f), periods)
	})
}

func (s *AnalyticsService) Gantt(ctx context.Context, f analytics.Filter, r analytics.Range) (analytics.Gantt, error) {
	q := analytics.Query{Filter: f, Range: r}
	return memoize(ctx, s, "gantt", q, func(state analytics.State) analytics.Gantt {
		return analytics.BuildGantt(f.Apply(state.Projects), r)
	})
}

func (s *AnalyticsService) Milestones(ctx context.Context, f analytics.Filter, r analytics.Range) (analytics.MilestoneReport, error) {
	now := s.now()
	q := analytics.Query{Filter: f, Range: r, AsOf: models.DateOf(now)}
	return memoize(ctx, s, "milestones", q, func(state analytics.State) analytics.MilestoneReport {
		return analytics.MilestoneSummary(f.Apply(state.Projects), r, now)
	})
}

func (s *AnalyticsService) Budget(ctx context.Context, f analytics.Filter, year int) (analytics.BudgetReport, error) {
	q := analytics.Query{Filter: f, Year: year}
	return memoize(ctx, s, "budget", q, func(state analytics.State) analytics.BudgetReport {
		return analytics.BudgetSummary(f.Apply(state.Projects), year)
	})
}

// Now is the clock the range selectors resolve against.
func (s *AnalyticsService) Now() time.Time {
	return s.now()
}
