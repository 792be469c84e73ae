// internal/navdb/sortedkeys.go
// Copyright(c) 2022-2024 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package navdb

import (
	"slices"

	"golang.org/x/exp/constraints"
)

// sortedMapKeys returns the keys of m sorted from low to high, used to
// walk a map in a deterministic order (e.g. an airway's in-progress fix
// sequence, keyed by its ARINC 424 sequence number string).
func sortedMapKeys[K constraints.Ordered, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
