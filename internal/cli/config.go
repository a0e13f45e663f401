package cli

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/viralify/edgecraft/pkg/pipeline"
)

// loadOptionsFile decodes a TOML config file into pipeline options.
// Unknown keys are rejected so typos surface instead of silently applying
// defaults.
func loadOptionsFile(path string) (pipeline.Options, error) {
	var opts pipeline.Options
	meta, err := toml.DecodeFile(path, &opts)
	if err != nil {
		return opts, fmt.Errorf("parse config %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return opts, fmt.Errorf("unknown config key %q in %s", undecoded[0], path)
	}
	return opts, nil
}
