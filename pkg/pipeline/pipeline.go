// Package pipeline chains the edge processing stages into one entry point
// shared by the CLI and the HTTP API.
//
// # Architecture
//
// A full run walks up to five stages over a positioned diagram:
//
//  1. Layout (optional): position nodes via Graphviz when the input has none
//  2. Aggregate (optional): collapse parallel edges between groups
//  3. Route: geometric path planning or grid routing with obstacle avoidance
//  4. Bundle (optional): pull compatible edges into shared corridors
//  5. Style: importance scoring and visual hierarchy
//
// Each stage can also be run independently through the Runner's stage
// methods. Stage results are cached by a hash of (diagram, options).
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{Routing: pipeline.RoutingGrid, Bundle: true}
//	result, err := runner.Execute(ctx, d, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, se := range result.Styled.Edges {
//	    // render se
//	}
package pipeline

import (
	"time"

	"github.com/viralify/edgecraft/pkg/aggregate"
	"github.com/viralify/edgecraft/pkg/bundle"
	"github.com/viralify/edgecraft/pkg/errors"
	"github.com/viralify/edgecraft/pkg/layout"
	"github.com/viralify/edgecraft/pkg/plan"
	"github.com/viralify/edgecraft/pkg/route"
	"github.com/viralify/edgecraft/pkg/style"
)

// Routing selects the path computation strategy.
const (
	// RoutingPlan computes geometric paths without obstacle avoidance.
	RoutingPlan = "plan"

	// RoutingGrid routes orthogonally on an occupancy grid around nodes.
	RoutingGrid = "grid"
)

// Stage names used in hooks and logs.
const (
	StageLayout    = "layout"
	StageAggregate = "aggregate"
	StagePlan      = "plan"
	StageRoute     = "route"
	StageBundle    = "bundle"
	StageStyle     = "style"
)

// Options contains all configuration for a pipeline run.
// The struct serializes to JSON for API requests and to TOML for config files.
type Options struct {
	// Layout positions the diagram's nodes before processing. Only needed
	// for inputs that arrive without positions.
	Layout     bool           `json:"layout,omitempty" toml:"layout"`
	LayoutOpts layout.Options `json:"layout_opts,omitempty" toml:"layout_opts"`

	// Aggregate collapses parallel edges before routing.
	Aggregate     bool             `json:"aggregate,omitempty" toml:"aggregate"`
	AggregateOpts aggregate.Config `json:"aggregate_opts,omitempty" toml:"aggregate_opts"`

	// Routing selects plan or grid routing. Default: plan.
	Routing   string       `json:"routing,omitempty" toml:"routing"`
	PlanOpts  plan.Config  `json:"plan_opts,omitempty" toml:"plan_opts"`
	RouteOpts route.Config `json:"route_opts,omitempty" toml:"route_opts"`

	// Bundle pulls compatible edges together after routing.
	Bundle     bool          `json:"bundle,omitempty" toml:"bundle"`
	BundleOpts bundle.Config `json:"bundle_opts,omitempty" toml:"bundle_opts"`

	// Style is always applied; StyleOpts tunes it.
	StyleOpts style.Config `json:"style_opts,omitempty" toml:"style_opts"`

	// Refresh bypasses the cache and recomputes every stage.
	Refresh bool `json:"refresh,omitempty" toml:"refresh"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// ValidateAndSetDefaults checks all stage options and applies defaults.
// Idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Routing == "" {
		o.Routing = RoutingPlan
	}
	if err := errors.ValidateEnum(errors.ErrCodeInvalidMode, "routing", o.Routing,
		RoutingPlan, RoutingGrid); err != nil {
		return err
	}
	if o.Layout {
		if err := o.LayoutOpts.ValidateAndSetDefaults(); err != nil {
			return err
		}
	}
	if o.Aggregate {
		if err := o.AggregateOpts.ValidateAndSetDefaults(); err != nil {
			return err
		}
	}
	switch o.Routing {
	case RoutingPlan:
		if err := o.PlanOpts.ValidateAndSetDefaults(); err != nil {
			return err
		}
	case RoutingGrid:
		if err := o.RouteOpts.ValidateAndSetDefaults(); err != nil {
			return err
		}
	}
	if o.Bundle {
		if err := o.BundleOpts.ValidateAndSetDefaults(); err != nil {
			return err
		}
	}
	if err := o.StyleOpts.ValidateAndSetDefaults(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// Result contains the outputs of a pipeline run. Stages that did not run
// leave their field nil.
type Result struct {
	// DiagramHash is the content hash of the processed diagram,
	// usable as an external cache key.
	DiagramHash string `json:"diagram_hash"`

	Aggregated *aggregate.Result `json:"aggregated,omitempty"`
	Planned    *plan.Result      `json:"planned,omitempty"`
	Routed     *route.Result     `json:"routed,omitempty"`
	Bundled    *bundle.Result    `json:"bundled,omitempty"`
	Styled     *style.Result     `json:"styled,omitempty"`

	Stats     Stats     `json:"stats"`
	CacheInfo CacheInfo `json:"cache_info"`
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount int `json:"node_count"`
	EdgeCount int `json:"edge_count"`

	LayoutTime    time.Duration `json:"layout_time"`
	AggregateTime time.Duration `json:"aggregate_time"`
	RouteTime     time.Duration `json:"route_time"`
	BundleTime    time.Duration `json:"bundle_time"`
	StyleTime     time.Duration `json:"style_time"`
}

// CacheInfo tracks cache hits per stage.
type CacheInfo struct {
	RouteHit  bool `json:"route_hit"`
	BundleHit bool `json:"bundle_hit"`
	StyleHit  bool `json:"style_hit"`
}
