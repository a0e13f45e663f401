package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/viralify/edgecraft/pkg/bundle"
	"github.com/viralify/edgecraft/pkg/pipeline"
	"github.com/viralify/edgecraft/pkg/style"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "edgecraft.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadOptionsFile(t *testing.T) {
	path := writeConfig(t, `
routing = "grid"
bundle = true

[route_opts]
cell_size = 5.0
bend_penalty = 10.0

[bundle_opts]
mode = "hierarchical"
strength = 0.7

[style_opts]
metric = "centrality"
scheme = "heatmap"
`)

	opts, err := loadOptionsFile(path)
	if err != nil {
		t.Fatal(err)
	}

	if opts.Routing != pipeline.RoutingGrid {
		t.Errorf("routing = %q, want grid", opts.Routing)
	}
	if !opts.Bundle {
		t.Error("bundle not enabled")
	}
	if opts.RouteOpts.CellSize != 5 || opts.RouteOpts.BendPenalty != 10 {
		t.Errorf("route opts = %+v", opts.RouteOpts)
	}
	if opts.BundleOpts.Mode != bundle.ModeHierarchical || opts.BundleOpts.Strength != 0.7 {
		t.Errorf("bundle opts = %+v", opts.BundleOpts)
	}
	if opts.StyleOpts.Metric != style.MetricCentrality || opts.StyleOpts.Scheme != style.SchemeHeatmap {
		t.Errorf("style opts = %+v", opts.StyleOpts)
	}

	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Errorf("loaded options failed validation: %v", err)
	}
}

func TestLoadOptionsFileUnknownKey(t *testing.T) {
	path := writeConfig(t, `rooting = "grid"`)

	if _, err := loadOptionsFile(path); err == nil {
		t.Fatal("expected error for unknown key")
	}
}

func TestLoadOptionsFileMissing(t *testing.T) {
	if _, err := loadOptionsFile(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
