package layout

import (
	"strings"

	"github.com/matzehuels/anchorlayout/pkg/errors"
)

// OptimizationLevel is a bitmask selecting which shortcuts a container may
// take instead of running the general solver. Every level produces the
// same geometry; higher levels only do less work.
type OptimizationLevel int

const (
	// OptimizeNone sends every widget to the solver.
	OptimizeNone OptimizationLevel = 0
	// OptimizeDirect resolves acyclic widgets with known sizes in
	// dependency order.
	OptimizeDirect OptimizationLevel = 1 << (iota - 1)
	// OptimizeBarrier resolves barriers directly.
	OptimizeBarrier
	// OptimizeChain resolves unweighted chains directly.
	OptimizeChain
	// OptimizeDimensions resolves spread and wrap match constraints
	// directly.
	OptimizeDimensions
	// OptimizeGrouping solves independent groups in separate systems and
	// caches measurements.
	OptimizeGrouping
	// OptimizeGraph walks the dependency graph in topological order
	// instead of sweeping until nothing changes.
	OptimizeGraph
	// OptimizeGraphWrap computes wrap-content extents with longest paths
	// instead of a linear system.
	OptimizeGraphWrap

	// OptimizeStandard is the default.
	OptimizeStandard = OptimizeDirect | OptimizeBarrier | OptimizeChain | OptimizeGrouping
	// OptimizeAll sets every bit.
	OptimizeAll = OptimizeStandard | OptimizeDimensions | OptimizeGraph | OptimizeGraphWrap
)

var levelNames = []struct {
	bit  OptimizationLevel
	name string
}{
	{OptimizeDirect, "direct"},
	{OptimizeBarrier, "barrier"},
	{OptimizeChain, "chain"},
	{OptimizeDimensions, "dimensions"},
	{OptimizeGrouping, "grouping"},
	{OptimizeGraph, "graph"},
	{OptimizeGraphWrap, "graph_wrap"},
}

// Has reports whether every bit of flag is set.
func (l OptimizationLevel) Has(flag OptimizationLevel) bool {
	return l&flag == flag
}

// String lists the set bits joined by "|", or "none".
func (l OptimizationLevel) String() string {
	if l == OptimizeNone {
		return "none"
	}
	if l == OptimizeStandard {
		return "standard"
	}
	var parts []string
	for _, n := range levelNames {
		if l.Has(n.bit) {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, "|")
}

// ParseOptimizationLevel parses names joined by "|" or ",". Besides the
// bit names it accepts "none", "standard" and "all".
func ParseOptimizationLevel(s string) (OptimizationLevel, error) {
	var l OptimizationLevel
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return r == '|' || r == ',' || r == ' '
	})
	if len(fields) == 0 {
		return OptimizeStandard, nil
	}
next:
	for _, f := range fields {
		switch f {
		case "none":
			continue
		case "standard":
			l |= OptimizeStandard
			continue
		case "all":
			l |= OptimizeAll
			continue
		}
		for _, n := range levelNames {
			if f == n.name {
				l |= n.bit
				continue next
			}
		}
		return OptimizeStandard, errors.New(errors.ErrCodeInvalidInput, "unknown optimization level %q", f)
	}
	return l, nil
}
