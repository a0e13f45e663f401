package pipeline

import (
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"

	"github.com/viralify/edgecraft/pkg/aggregate"
	"github.com/viralify/edgecraft/pkg/bundle"
	"github.com/viralify/edgecraft/pkg/cache"
	"github.com/viralify/edgecraft/pkg/diagram"
	"github.com/viralify/edgecraft/pkg/errors"
	"github.com/viralify/edgecraft/pkg/layout"
	"github.com/viralify/edgecraft/pkg/observability"
	"github.com/viralify/edgecraft/pkg/plan"
	"github.com/viralify/edgecraft/pkg/route"
	"github.com/viralify/edgecraft/pkg/style"
)

// Runner executes the pipeline with caching.
//
// The Runner is stateless except for the cache and logger; multiple
// goroutines can share one Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner. A nil cache disables caching via NullCache,
// a nil keyer falls back to the DefaultKeyer, and a nil logger uses the
// package default.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Keyer: keyer, Logger: logger}
}

// Execute runs the configured stages in order over the diagram.
// The diagram is mutated only by the optional layout stage.
func (r *Runner) Execute(ctx context.Context, d *diagram.Diagram, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "invalid pipeline options")
	}
	// Dangling edges are skipped by each stage, never fatal.
	if err := d.Validate(); err != nil {
		r.Logger.Warn("diagram has dangling edges; they will be skipped", "err", err)
	}
	ctx = log.WithContext(ctx, r.Logger)

	result := &Result{
		Stats: Stats{NodeCount: len(d.Nodes), EdgeCount: len(d.Edges)},
	}

	if opts.Layout {
		start := time.Now()
		observability.Pipeline().OnStageStart(ctx, StageLayout, len(d.Edges))
		err := layout.Position(ctx, d, opts.LayoutOpts)
		result.Stats.LayoutTime = time.Since(start)
		observability.Pipeline().OnStageComplete(ctx, StageLayout, len(d.Edges), result.Stats.LayoutTime, err)
		if err != nil {
			return nil, errors.Wrap(errors.GetCode(err), err, "layout stage")
		}
		r.Logger.Info("positioned diagram", "nodes", len(d.Nodes), "duration", result.Stats.LayoutTime)
	}

	data, err := diagram.Marshal(d)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "hash diagram")
	}
	result.DiagramHash = cache.Hash(data)

	if opts.Aggregate {
		start := time.Now()
		observability.Pipeline().OnStageStart(ctx, StageAggregate, len(d.Edges))
		agg, err := r.Aggregate(ctx, d, opts)
		result.Stats.AggregateTime = time.Since(start)
		observability.Pipeline().OnStageComplete(ctx, StageAggregate, len(d.Edges), result.Stats.AggregateTime, err)
		if err != nil {
			return nil, err
		}
		result.Aggregated = agg
		r.Logger.Info("aggregated edges",
			"original", agg.Stats.OriginalEdgeCount,
			"aggregated", agg.Stats.AggregatedEdgeCount,
			"duration", result.Stats.AggregateTime)
	}

	switch opts.Routing {
	case RoutingPlan:
		start := time.Now()
		observability.Pipeline().OnStageStart(ctx, StagePlan, len(d.Edges))
		planned, hit, err := r.planWithCacheInfo(ctx, d, result.DiagramHash, opts)
		result.Stats.RouteTime = time.Since(start)
		observability.Pipeline().OnStageComplete(ctx, StagePlan, len(d.Edges), result.Stats.RouteTime, err)
		if err != nil {
			return nil, err
		}
		result.Planned = planned
		result.CacheInfo.RouteHit = hit
		r.Logger.Info("planned paths",
			"edges", len(planned.Edges), "skipped", planned.Skipped,
			"cached", hit, "duration", result.Stats.RouteTime)

	case RoutingGrid:
		start := time.Now()
		observability.Pipeline().OnStageStart(ctx, StageRoute, len(d.Edges))
		routed, hit, err := r.routeWithCacheInfo(ctx, d, result.DiagramHash, opts)
		result.Stats.RouteTime = time.Since(start)
		observability.Pipeline().OnStageComplete(ctx, StageRoute, len(d.Edges), result.Stats.RouteTime, err)
		if err != nil {
			return nil, err
		}
		result.Routed = routed
		result.CacheInfo.RouteHit = hit
		r.Logger.Info("routed paths",
			"edges", len(routed.Edges), "fallbacks", routed.Fallbacks,
			"cached", hit, "duration", result.Stats.RouteTime)
	}

	if opts.Bundle {
		start := time.Now()
		observability.Pipeline().OnStageStart(ctx, StageBundle, len(d.Edges))
		bundled, hit, err := r.bundleWithCacheInfo(ctx, d, result.DiagramHash, opts)
		result.Stats.BundleTime = time.Since(start)
		observability.Pipeline().OnStageComplete(ctx, StageBundle, len(d.Edges), result.Stats.BundleTime, err)
		if err != nil {
			return nil, err
		}
		result.Bundled = bundled
		result.CacheInfo.BundleHit = hit
		r.Logger.Info("bundled edges",
			"edges", len(bundled.Edges), "cached", hit, "duration", result.Stats.BundleTime)
	}

	start := time.Now()
	observability.Pipeline().OnStageStart(ctx, StageStyle, len(d.Edges))
	styled, hit, err := r.styleWithCacheInfo(ctx, d, result.DiagramHash, opts)
	result.Stats.StyleTime = time.Since(start)
	observability.Pipeline().OnStageComplete(ctx, StageStyle, len(d.Edges), result.Stats.StyleTime, err)
	if err != nil {
		return nil, err
	}
	result.Styled = styled
	result.CacheInfo.StyleHit = hit
	r.Logger.Info("styled edges",
		"edges", len(styled.Edges), "cached", hit, "duration", result.Stats.StyleTime)

	return result, nil
}

// Aggregate runs the aggregation stage alone.
func (r *Runner) Aggregate(ctx context.Context, d *diagram.Diagram, opts Options) (*aggregate.Result, error) {
	a, err := aggregate.New(opts.AggregateOpts)
	if err != nil {
		return nil, err
	}
	return a.Aggregate(ctx, d)
}

// Plan runs the geometric planning stage alone, without caching.
func (r *Runner) Plan(ctx context.Context, d *diagram.Diagram, opts Options) (*plan.Result, error) {
	p, err := plan.New(opts.PlanOpts)
	if err != nil {
		return nil, err
	}
	return p.Plan(ctx, d)
}

// Route runs the grid routing stage alone, without caching. It also returns
// the occupancy grid for callers that render or debug it.
func (r *Runner) Route(ctx context.Context, d *diagram.Diagram, opts Options) (*route.Result, *route.Grid, error) {
	router, err := route.New(opts.RouteOpts)
	if err != nil {
		return nil, nil, err
	}
	return router.Route(ctx, d)
}

// Bundle runs the bundling stage alone, without caching.
func (r *Runner) Bundle(ctx context.Context, d *diagram.Diagram, opts Options) (*bundle.Result, error) {
	b, err := bundle.New(opts.BundleOpts)
	if err != nil {
		return nil, err
	}
	return b.Bundle(ctx, d)
}

// StyleEdges runs the styling stage alone, without caching.
func (r *Runner) StyleEdges(ctx context.Context, d *diagram.Diagram, opts Options) (*style.Result, error) {
	s, err := style.New(opts.StyleOpts)
	if err != nil {
		return nil, err
	}
	return s.Style(ctx, d)
}

func (r *Runner) planWithCacheInfo(ctx context.Context, d *diagram.Diagram, hash string, opts Options) (*plan.Result, bool, error) {
	key := r.Keyer.RouteKey(hash, opts.PlanOpts)
	if cached, ok := lookup[plan.Result](ctx, r, key, "route", opts.Refresh); ok {
		return cached, true, nil
	}

	result, err := r.Plan(ctx, d, opts)
	if err != nil {
		return nil, false, err
	}
	r.store(ctx, key, "route", result, cache.TTLRoute)
	return result, false, nil
}

func (r *Runner) routeWithCacheInfo(ctx context.Context, d *diagram.Diagram, hash string, opts Options) (*route.Result, bool, error) {
	key := r.Keyer.RouteKey(hash, opts.RouteOpts)
	if cached, ok := lookup[route.Result](ctx, r, key, "route", opts.Refresh); ok {
		return cached, true, nil
	}

	result, _, err := r.Route(ctx, d, opts)
	if err != nil {
		return nil, false, err
	}
	r.store(ctx, key, "route", result, cache.TTLRoute)
	return result, false, nil
}

func (r *Runner) bundleWithCacheInfo(ctx context.Context, d *diagram.Diagram, hash string, opts Options) (*bundle.Result, bool, error) {
	key := r.Keyer.BundleKey(hash, opts.BundleOpts)
	if cached, ok := lookup[bundle.Result](ctx, r, key, "bundle", opts.Refresh); ok {
		return cached, true, nil
	}

	result, err := r.Bundle(ctx, d, opts)
	if err != nil {
		return nil, false, err
	}
	r.store(ctx, key, "bundle", result, cache.TTLBundle)
	return result, false, nil
}

func (r *Runner) styleWithCacheInfo(ctx context.Context, d *diagram.Diagram, hash string, opts Options) (*style.Result, bool, error) {
	key := r.Keyer.StyleKey(hash, opts.StyleOpts)
	if cached, ok := lookup[style.Result](ctx, r, key, "style", opts.Refresh); ok {
		return cached, true, nil
	}

	result, err := r.StyleEdges(ctx, d, opts)
	if err != nil {
		return nil, false, err
	}
	r.store(ctx, key, "style", result, cache.TTLStyle)
	return result, false, nil
}

// lookup fetches and decodes a cached stage result. Decode failures fall
// through to recomputation.
func lookup[T any](ctx context.Context, r *Runner, key, keyType string, refresh bool) (*T, bool) {
	if refresh {
		return nil, false
	}
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, keyType)
		return nil, false
	}

	var result T
	if err := json.Unmarshal(data, &result); err != nil {
		observability.Cache().OnCacheMiss(ctx, keyType)
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, keyType)
	return &result, true
}

// store encodes and caches a stage result. Failures are logged, not fatal.
func (r *Runner) store(ctx context.Context, key, keyType string, result any, ttl time.Duration) {
	data, err := json.Marshal(result)
	if err != nil {
		r.Logger.Warn("skipping cache write", "key_type", keyType, "err", err)
		return
	}
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Warn("cache write failed", "key_type", keyType, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}

// Close releases resources held by the runner, primarily the cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
