// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dictionary

import (
	"embed"
	"fmt"
	"path"
	"strings"

	"github.com/pdiddy/semex/pkg/types"
)

//go:embed builtin/*.txt
var builtinFS embed.FS

// LoadBuiltinCues registers the embedded cue and descriptor vocabulary.
// Each embedded file is named after the role it loads under, with an optional
// qualifier before the extension (negator.post.txt).
func (s *Store) LoadBuiltinCues() ([]types.LoadSummary, error) {
	files, err := builtinFS.ReadDir("builtin")
	if err != nil {
		return nil, fmt.Errorf("reading builtin vocabulary: %w", err)
	}

	var summaries []types.LoadSummary
	for _, f := range files {
		name := f.Name()
		prefix, _, _ := strings.Cut(name, ".")
		role, err := types.ParseRole(prefix)
		if err != nil {
			return summaries, fmt.Errorf("builtin vocabulary %s: %w", name, err)
		}

		r, err := builtinFS.Open(path.Join("builtin", name))
		if err != nil {
			return summaries, fmt.Errorf("opening builtin vocabulary %s: %w", name, err)
		}
		summary, err := s.Load(r, "builtin:"+name, role)
		r.Close()
		if err != nil {
			return summaries, err
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}
