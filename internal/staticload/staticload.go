// Package staticload implements the Static Loader (spec §4.7): at startup
// it reads every .yaml/.yml file in a directory, parses it as a scenario
// stream, and installs each definition as a static mock. Grounded on the
// teacher's main() MAPPINGS_DIR walk (root main.go), generalized from
// WireMock JSON mappings to the spec's YAML scenario documents and from
// warn-and-continue to abort-on-error, a deliberate behavior change
// recorded in DESIGN.md.
package staticload

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goodmock/goodmock/internal/scenario"
	"github.com/goodmock/goodmock/internal/store"
	"github.com/goodmock/goodmock/internal/types"
)

// Load scans dir (non-recursive) for *.yaml/*.yml files and installs every
// definition they contain as a static mock in st. The first read or parse
// error aborts with a wrapped error; nothing already loaded is rolled
// back, matching "abort startup with a human-readable error".
func Load(dir string, st *store.Store) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("reading static mock dir %q: %w", dir, err)
	}

	installed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		ext := strings.ToLower(filepath.Ext(name))
		if ext != ".yaml" && ext != ".yml" {
			continue
		}

		path := filepath.Join(dir, name)
		f, err := os.Open(path)
		if err != nil {
			return installed, fmt.Errorf("opening %s: %w", path, err)
		}
		defs, err := scenario.Parse(f)
		f.Close()
		if err != nil {
			return installed, fmt.Errorf("parsing %s: %w", path, err)
		}

		for _, def := range defs {
			reqs, err := types.NewRequirements(&def.When)
			if err != nil {
				return installed, fmt.Errorf("%s: invalid mock definition: %w", path, err)
			}
			when := def.When
			then := def.Then
			st.AddMock(&when, reqs, &then, true)
			installed++
		}
	}
	return installed, nil
}
