// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package dictionary holds term → (codes, role) registrations and answers
// longest-match lookups over token sequences.
//
// A Store is not safe for concurrent mutation. Callers that share a Store
// across goroutines hold a read lock around lookups and an exclusive lock
// around LoadFile, Load, AddPhrase and AddCue.
package dictionary

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"slices"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/semex/internal/segment"
	"github.com/pdiddy/semex/pkg/types"
)

// maxLineBytes bounds a single dictionary line.
const maxLineBytes = 1 << 20

type node struct {
	children map[string]*node
	entry    *types.Entry
}

// Store is a token trie of registered terms.
type Store struct {
	root       *node
	entries    map[string]*types.Entry
	generation uint64
	logger     *zap.Logger
}

// NewStore returns an empty store. A nil logger discards output.
func NewStore(logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		root:    &node{},
		entries: make(map[string]*types.Entry),
		logger:  logger,
	}
}

type outcome int

const (
	outcomeAdded outcome = iota
	outcomeDuplicate
	outcomeConflict
	outcomeInvalid
)

// AddPhrase registers one term under role with code. It returns false when
// the term or code is empty, the role is unknown, or the term is already
// registered under a different role. Re-adding an existing registration
// returns true and changes nothing; a new code for an existing term and role
// is appended after the existing codes.
//
// Scoped cues added this way govern the spans that follow them.
func (s *Store) AddPhrase(term, code string, role types.Role) bool {
	return s.AddCue(term, code, role, types.DirectionPre)
}

// AddCue is AddPhrase with an explicit direction for NEGATOR, SPECULATION and
// CONFIRMER terms. The direction is ignored for other roles and for terms
// that are already registered.
func (s *Store) AddCue(term, code string, role types.Role, dir types.Direction) bool {
	switch s.add(term, code, role, dir) {
	case outcomeAdded, outcomeDuplicate:
		return true
	}
	return false
}

// LoadFile reads a dictionary file and registers every line under role.
// Malformed lines and role conflicts are counted and skipped; only I/O
// failures return an error.
func (s *Store) LoadFile(path string, role types.Role) (types.LoadSummary, error) {
	f, err := os.Open(path)
	if err != nil {
		return types.LoadSummary{Path: path, Role: role}, fmt.Errorf("opening dictionary %s: %w", path, err)
	}
	defer f.Close()

	return s.Load(f, path, role)
}

// Load registers every line read from r under role. name labels the summary
// and log entries; a "post" qualifier in it (negator.post.txt) loads scoped
// cues that govern the spans in front of them.
func (s *Store) Load(r io.Reader, name string, role types.Role) (types.LoadSummary, error) {
	summary := types.LoadSummary{Path: name, Role: role}
	if !role.Valid() {
		return summary, fmt.Errorf("loading %s: unknown role %q", name, role)
	}
	dir := types.DirectionOf(name)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		term, code, kind := parseLine(scanner.Text())
		switch kind {
		case lineIgnored:
			continue
		case lineMalformed:
			summary.Skipped++
			s.logger.Debug("skipping malformed dictionary line",
				zap.String("file", name), zap.Int("line", lineNo))
			continue
		}

		switch s.add(term, code, role, dir) {
		case outcomeAdded, outcomeDuplicate:
			summary.Loaded++
		case outcomeConflict:
			summary.Conflicts++
			s.logger.Debug("skipping conflicting dictionary term",
				zap.String("file", name), zap.Int("line", lineNo),
				zap.String("term", term), zap.String("role", string(role)))
		default:
			summary.Skipped++
		}
	}
	if err := scanner.Err(); err != nil {
		return summary, fmt.Errorf("reading dictionary %s: %w", name, err)
	}

	s.logger.Info("loaded dictionary",
		zap.String("file", name), zap.String("role", string(role)),
		zap.Int("loaded", summary.Loaded), zap.Int("skipped", summary.Skipped),
		zap.Int("conflicts", summary.Conflicts))

	return summary, nil
}

func (s *Store) add(term, code string, role types.Role, dir types.Direction) outcome {
	if !role.Valid() {
		return outcomeInvalid
	}
	tokens := segment.Normalize(term)
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(tokens) == 0 || code == "" {
		return outcomeInvalid
	}
	key := strings.Join(tokens, " ")

	if e, ok := s.entries[key]; ok {
		if e.Role != role {
			return outcomeConflict
		}
		if slices.Contains(e.Codes, code) {
			return outcomeDuplicate
		}
		e.Codes = append(e.Codes, code)
		s.generation++
		return outcomeAdded
	}

	e := &types.Entry{Term: key, Codes: []string{code}, Role: role}
	if role.IsScoped() {
		e.Direction = types.DirectionPre
		if dir == types.DirectionPost {
			e.Direction = types.DirectionPost
		}
	}
	n := s.root
	for _, tok := range tokens {
		if n.children == nil {
			n.children = make(map[string]*node)
		}
		child, ok := n.children[tok]
		if !ok {
			child = &node{}
			n.children[tok] = child
		}
		n = child
	}
	n.entry = e
	s.entries[key] = e
	s.generation++
	return outcomeAdded
}

// LongestMatch returns the longest registered term whose tokens begin at
// tokens[start], and the number of tokens it spans.
func (s *Store) LongestMatch(tokens []segment.Token, start int) (types.Entry, int, bool) {
	var (
		best   *types.Entry
		length int
	)
	n := s.root
	for i := start; i < len(tokens); i++ {
		child, ok := n.children[tokens[i].Norm]
		if !ok {
			break
		}
		n = child
		if n.entry != nil {
			best = n.entry
			length = i - start + 1
		}
	}
	if best == nil {
		return types.Entry{}, 0, false
	}
	return cloneEntry(best), length, true
}

// Lookup returns the registration for a phrase.
func (s *Store) Lookup(term string) (types.Entry, bool) {
	e, ok := s.entries[segment.NormalizeTerm(term)]
	if !ok {
		return types.Entry{}, false
	}
	return cloneEntry(e), true
}

// Len returns the number of registered terms.
func (s *Store) Len() int {
	return len(s.entries)
}

// Generation increases on every change to the registered terms.
func (s *Store) Generation() uint64 {
	return s.generation
}

// Counts returns the number of registered terms per role.
func (s *Store) Counts() map[types.Role]int {
	counts := make(map[types.Role]int, len(types.AllRoles))
	for _, e := range s.entries {
		counts[e.Role]++
	}
	return counts
}

// Entries returns all registrations sorted by role order, then term.
func (s *Store) Entries() []types.Entry {
	order := make(map[types.Role]int, len(types.AllRoles))
	for i, r := range types.AllRoles {
		order[r] = i
	}

	out := make([]types.Entry, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, cloneEntry(e))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Role != out[j].Role {
			return order[out[i].Role] < order[out[j].Role]
		}
		return out[i].Term < out[j].Term
	})
	return out
}

func cloneEntry(e *types.Entry) types.Entry {
	return types.Entry{
		Term:      e.Term,
		Codes:     slices.Clone(e.Codes),
		Role:      e.Role,
		Direction: e.Direction,
	}
}
