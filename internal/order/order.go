// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package order computes the dependency-respecting start order for a set
// of service names.
package order

import (
	"github.com/opsctl/control/internal/paths"
	"github.com/opsctl/control/internal/svc"
)

// Order returns a permutation of the subset of names whose descriptors
// parse, such that for every name a and every dependency b of a that is
// also in the input set, b precedes a in the result. Dependencies on
// services outside the input set are treated as already satisfied. A
// dependency cycle does not error: once no further progress can be made,
// the remaining names are appended in map-iteration (unspecified) order
// so the loop always terminates (§4.2, §9).
func Order(p paths.Policy, names []string) []string {
	deps := make(map[string][]string, len(names))
	for _, name := range names {
		d, err := svc.Load(p.ServiceFile(name))
		if err != nil {
			continue
		}
		deps[name] = d.Control.Depends
	}

	result := make([]string, 0, len(deps))
	placed := make(map[string]bool, len(deps))

	for len(result) < len(deps) {
		progressed := false
		for name, want := range deps {
			if placed[name] {
				continue
			}
			if satisfied(want, deps, placed) {
				result = append(result, name)
				placed[name] = true
				progressed = true
			}
		}
		if !progressed {
			for name := range deps {
				if !placed[name] {
					result = append(result, name)
					placed[name] = true
				}
			}
			break
		}
	}

	return result
}

// Reverse returns a new slice containing names in reverse order, used to
// derive a stop order from a start order (§4.2, invariant 4).
func Reverse(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[len(names)-1-i] = n
	}
	return out
}

// satisfied reports whether every dependency of want is either already
// placed in the output, or is not itself one of the services being
// ordered (an unknown/absent dependency is treated as satisfied).
func satisfied(want []string, universe map[string][]string, placed map[string]bool) bool {
	for _, dep := range want {
		if _, inSet := universe[dep]; !inSet {
			continue
		}
		if !placed[dep] {
			return false
		}
	}
	return true
}
