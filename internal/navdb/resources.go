// internal/navdb/resources.go
// Copyright(c) 2022-2024 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package navdb

import (
	"os"
	"path/filepath"
)

// DefaultSnapshotPath locates a bundled nav-database snapshot the same
// way the teacher locates its bundled video-map/scenario resources:
// relative to the running executable first, then the working directory
// and its grandparent, falling back to "" (no default) if none exist.
func DefaultSnapshotPath(filename string) string {
	candidates := []string{}

	if exe, err := os.Executable(); err == nil {
		candidates = append(candidates, filepath.Join(filepath.Dir(exe), "resources", "navdb", filename))
	}
	if wd, err := os.Getwd(); err == nil {
		candidates = append(candidates,
			filepath.Join(wd, "resources", "navdb", filename),
			filepath.Join(wd, "..", "..", "resources", "navdb", filename))
	}

	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c
		}
	}
	return ""
}
