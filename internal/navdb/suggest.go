// internal/navdb/suggest.go
// Copyright(c) 2022-2024 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package navdb

// Suggest returns every known ident within one Levenshtein edit of ident,
// falling back to idents within two edits if nothing is within one. It's
// used to annotate "unknown identifier" errors with a "did you mean"
// hint; callers should stop at the first nonempty result.
func (d *Database) Suggest(ident string) []string {
	var dist1, dist2 []string

	min := func(a, b int) int {
		if a < b {
			return a
		}
		return b
	}
	max := func(a, b int) int {
		if a > b {
			return a
		}
		return b
	}

	var cur, prev []int
	n := len(ident)
	for other := range d.byIdent {
		if other == ident {
			continue
		}

		n2 := len(other)
		nmax := max(n, n2)
		if nmax >= len(cur) {
			cur = make([]int, nmax+1)
			prev = make([]int, nmax+1)
		}

		for i := range n2 + 1 {
			prev[i] = i
		}

		tooFar := false
		for y := 1; y <= n; y++ {
			cur[0] = y
			rowBest := y

			for x := 1; x <= n2; x++ {
				cost := 0
				if ident[y-1] != other[x-1] {
					cost = 1
				}
				cur[x] = min(prev[x-1]+cost, min(cur[x-1], prev[x])+1)
				if cur[x] < rowBest {
					rowBest = cur[x]
				}
			}

			if rowBest > 2 {
				tooFar = true
				break
			}
			cur, prev = prev, cur
		}
		if tooFar {
			continue
		}

		if prev[n2] == 1 {
			dist1 = append(dist1, other)
		} else if prev[n2] == 2 {
			dist2 = append(dist2, other)
		}
	}

	if len(dist1) > 0 {
		return dist1
	}
	return dist2
}
