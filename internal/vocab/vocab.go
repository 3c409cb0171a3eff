// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package vocab finds dictionary files in a vocabulary directory. Each file
// is named after the role it loads under: observation.txt, location.txt,
// negator.txt and so on. A file may also carry a qualifier after the role
// (observation.snomed.txt) so one role can draw from several sources.
package vocab

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/semex/pkg/types"
)

const fileExt = ".txt"

// Discover returns the dictionary files in dir grouped by role, each group
// sorted by path. A missing directory is not an error; Discover returns an
// empty map. Files whose name does not start with a known role are logged
// and skipped.
func Discover(dir string, logger *zap.Logger) (map[types.Role][]string, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[types.Role][]string{}, nil
		}
		return nil, fmt.Errorf("reading vocabulary directory %s: %w", dir, err)
	}

	files := make(map[types.Role][]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") || filepath.Ext(name) != fileExt {
			continue
		}

		role, err := RoleOf(name)
		if err != nil {
			logger.Warn("skipping vocabulary file", zap.String("file", name), zap.Error(err))
			continue
		}
		files[role] = append(files[role], filepath.Join(dir, name))
	}

	for role := range files {
		sort.Strings(files[role])
	}
	return files, nil
}

// RoleOf derives the role from a vocabulary file name.
func RoleOf(name string) (types.Role, error) {
	base := strings.TrimSuffix(filepath.Base(name), fileExt)
	prefix, _, _ := strings.Cut(base, ".")
	return types.ParseRole(prefix)
}

// Merge combines discovered files with explicitly configured ones. Role
// names in configured are parsed case-insensitively; an unknown role is an
// error. Paths already present are not repeated.
func Merge(discovered map[types.Role][]string, configured map[string][]string) (map[types.Role][]string, error) {
	out := make(map[types.Role][]string, len(discovered)+len(configured))
	seen := make(map[string]bool)

	add := func(role types.Role, paths []string) {
		for _, p := range paths {
			if seen[p] {
				continue
			}
			seen[p] = true
			out[role] = append(out[role], p)
		}
	}

	for _, role := range types.AllRoles {
		add(role, discovered[role])
	}

	names := make([]string, 0, len(configured))
	for name := range configured {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		role, err := types.ParseRole(name)
		if err != nil {
			return nil, fmt.Errorf("dictionary files: %w", err)
		}
		add(role, configured[name])
	}

	return out, nil
}
