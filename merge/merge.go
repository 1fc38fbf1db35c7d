// Package merge combines a synced template with an existing destination
// document. The template is authoritative; keep and nosync paths let the
// destination retain local values, override paths re-assert the template,
// and per-path array strategies control how lists combine.
package merge

import (
	"fmt"
	"sort"

	"github.com/cespare/xxhash/v2"

	"github.com/nazahex/rigra/ir"
	"github.com/nazahex/rigra/jsonpath"
)

// ArrayUnion keeps destination elements in place and appends template
// elements not already present. Any other strategy value replaces the array
// with the template's.
const ArrayUnion = "union"

// Config selects which parts of the destination survive a merge. Paths are
// dotted and may carry a leading "$.".
type Config struct {
	OverridePaths []string          `toml:"overridePaths" yaml:"overridePaths"`
	KeepPaths     []string          `toml:"keepPaths" yaml:"keepPaths"`
	NosyncPaths   []string          `toml:"noSyncPaths" yaml:"noSyncPaths"`
	Array         map[string]string `toml:"array" yaml:"array"`
}

// Merge builds the merged document. Precedence over the template copy:
// override paths re-assert the template, then keep and nosync paths restore
// the destination's value (or remove the key when the destination lacks
// it), then array strategies run. Inputs are not modified.
func Merge(template, dest *ir.Node, cfg Config) *ir.Node {
	result := template.Clone()

	for _, p := range cfg.OverridePaths {
		if v, ok := jsonpath.Get(template, p); ok {
			jsonpath.Set(result, p, v.Clone())
		}
	}
	for _, p := range cfg.KeepPaths {
		restore(result, dest, p)
	}
	for _, p := range cfg.NosyncPaths {
		restore(result, dest, p)
	}

	// Sorted so overlapping paths like a and a.b resolve the same way on
	// every run.
	arrayPaths := make([]string, 0, len(cfg.Array))
	for p := range cfg.Array {
		arrayPaths = append(arrayPaths, p)
	}
	sort.Strings(arrayPaths)
	for _, p := range arrayPaths {
		strat := cfg.Array[p]
		tv, ok := jsonpath.Get(template, p)
		if !ok {
			continue
		}
		if strat == ArrayUnion {
			if tv.Type != ir.ArrayType {
				continue
			}
			merged := []*ir.Node{}
			if dv, ok := jsonpath.Get(dest, p); ok && dv.Type == ir.ArrayType {
				for _, e := range dv.Values {
					merged = append(merged, e.Clone())
				}
			}
			for _, e := range tv.Values {
				if !contains(merged, e) {
					merged = append(merged, e.Clone())
				}
			}
			jsonpath.Set(result, p, ir.FromSlice(merged))
		} else {
			jsonpath.Set(result, p, tv.Clone())
		}
	}
	return result
}

func restore(result *ir.Node, dest *ir.Node, path string) {
	if v, ok := jsonpath.Get(dest, path); ok {
		jsonpath.Set(result, path, v.Clone())
	} else {
		jsonpath.Set(result, path, nil)
	}
}

func contains(vs []*ir.Node, v *ir.Node) bool {
	for _, e := range vs {
		if ir.Equal(e, v) {
			return true
		}
	}
	return false
}

// Fingerprint identifies rendered content for the write short-circuit. The
// length suffix guards against the slim chance of a hash collision between
// texts of different sizes.
func Fingerprint(s string) string {
	return fmt.Sprintf("%016x-%d", xxhash.Sum64String(s), len(s))
}
