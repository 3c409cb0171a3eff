// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package scope decides which cues govern each matched span of a sentence
// and attaches descriptors beneath the observations they describe.
//
// Rules:
//
//   - A clause ends at a CONJUNCTION span, a ";" token, or the sentence end.
//     Cues and descriptors never act across clauses.
//   - A NEGATOR, SPECULATION or CONFIRMER cue has a direction. A PRE cue
//     ("no") governs a span that starts within ForwardWindow word tokens
//     after the cue ends. A POST cue ("ruled out") governs a span that ends
//     within BackwardWindow word tokens before the cue starts.
//   - The nearest governing cue decides certainty. On a tie the cue in front
//     of the span wins. Without a governing cue certainty is YES.
//   - FAMILYHIST and HISTORY cues flag every span in the sentence.
//   - A descriptor (LOCATION, MODIFIER, CHANGE, COMPARISON) attaches to the
//     nearest OBSERVATION in its clause and takes the observation's flags.
//     On a tie it attaches to the observation that follows it. A descriptor
//     with no observation in its clause stays top-level.
package scope

import (
	"github.com/pdiddy/semex/internal/match"
	"github.com/pdiddy/semex/internal/segment"
	"github.com/pdiddy/semex/pkg/types"
)

// NoParent marks a top-level object.
const NoParent = -1

// Object is a resolved non-cue span.
type Object struct {
	Span          match.Span
	Certainty     types.Certainty
	FamilyHistory bool
	Historical    bool

	// Parent indexes Result.Objects, or is NoParent.
	Parent int

	// Modifiers index Result.Objects in sentence order.
	Modifiers []int
}

// Result is the outcome of resolving one sentence.
type Result struct {
	// Objects holds every non-cue span in sentence order, attached
	// descriptors included.
	Objects []Object

	// Cues holds the cue spans in sentence order.
	Cues []match.Span
}

// TopLevel returns the indexes of objects without a parent.
func (r Result) TopLevel() []int {
	var out []int
	for i, o := range r.Objects {
		if o.Parent == NoParent {
			out = append(out, i)
		}
	}
	return out
}

// Resolver applies the scope rules with fixed windows.
type Resolver struct {
	forward  int
	backward int
}

// NewResolver creates a resolver. Negative windows are treated as zero.
func NewResolver(cfg types.ScopeConfig) *Resolver {
	return &Resolver{
		forward:  max(cfg.ForwardWindow, 0),
		backward: max(cfg.BackwardWindow, 0),
	}
}

// placed is a span with its clause and word extent.
type placed struct {
	span      match.Span
	clause    int
	firstWord int
	endWord   int // exclusive
}

// Resolve resolves the spans of one sentence. tokens are the sentence's
// tokens and spans the matcher's output for them.
func (r *Resolver) Resolve(tokens []segment.Token, spans []match.Span) Result {
	clauses := clauseIndex(tokens, spans)

	var (
		res     Result
		cues    []placed
		objects []placed
		famHist bool
		history bool
	)
	for _, sp := range spans {
		p := placed{
			span:      sp,
			clause:    clauses[sp.First],
			firstWord: sp.Word,
			endWord:   sp.Word + sp.Words(tokens),
		}
		switch {
		case sp.Role == types.RoleFamilyHist:
			famHist = true
			res.Cues = append(res.Cues, sp)
		case sp.Role == types.RoleHistory:
			history = true
			res.Cues = append(res.Cues, sp)
		case sp.Role.IsCue():
			if sp.Role != types.RoleConjunction {
				cues = append(cues, p)
			}
			res.Cues = append(res.Cues, sp)
		default:
			objects = append(objects, p)
		}
	}

	res.Objects = make([]Object, len(objects))
	for i, o := range objects {
		res.Objects[i] = Object{
			Span:          o.span,
			Certainty:     r.certainty(o, cues),
			FamilyHistory: famHist,
			Historical:    history,
			Parent:        NoParent,
		}
	}

	attach(&res, objects)
	return res
}

// certainty returns the polarity set by the nearest governing cue.
func (r *Resolver) certainty(o placed, cues []placed) types.Certainty {
	best := -1
	bestDist := 0
	bestForward := false

	for i, c := range cues {
		if c.clause != o.clause {
			continue
		}

		var (
			dist    int
			forward bool
		)
		switch {
		case c.span.Last <= o.span.First:
			if c.span.Direction == types.DirectionPost {
				continue
			}
			dist = o.firstWord - c.endWord
			forward = true
			if dist > r.forward {
				continue
			}
		case c.span.First >= o.span.Last:
			if c.span.Direction != types.DirectionPost {
				continue
			}
			dist = c.firstWord - o.endWord
			if dist > r.backward {
				continue
			}
		default:
			continue
		}

		if best < 0 || dist < bestDist || (dist == bestDist && forward && !bestForward) {
			best, bestDist, bestForward = i, dist, forward
		}
	}

	if best < 0 {
		return types.CertaintyYes
	}
	return polarity(cues[best].span.Role)
}

func polarity(role types.Role) types.Certainty {
	switch role {
	case types.RoleNegator:
		return types.CertaintyNo
	case types.RoleSpeculation:
		return types.CertaintyUnclear
	default:
		return types.CertaintyYes
	}
}

// attach links descriptors beneath observations in the same clause.
func attach(res *Result, objects []placed) {
	for i, d := range objects {
		if !d.span.Role.IsDescriptor() {
			continue
		}

		parent := NoParent
		bestDist := 0
		bestAfter := false
		for j, o := range objects {
			if o.span.Role != types.RoleObservation || o.clause != d.clause {
				continue
			}
			var dist int
			after := j > i
			if after {
				dist = o.firstWord - d.endWord
			} else {
				dist = d.firstWord - o.endWord
			}
			if parent == NoParent || dist < bestDist || (dist == bestDist && after && !bestAfter) {
				parent, bestDist, bestAfter = j, dist, after
			}
		}
		if parent == NoParent {
			continue
		}

		p := &res.Objects[parent]
		m := &res.Objects[i]
		m.Parent = parent
		m.Certainty = p.Certainty
		m.FamilyHistory = p.FamilyHistory
		m.Historical = p.Historical
		p.Modifiers = append(p.Modifiers, i)
	}
}

// clauseIndex returns the clause number of every token. Tokens of a
// conjunction span and ";" tokens belong to no clause and start the next one.
func clauseIndex(tokens []segment.Token, spans []match.Span) []int {
	boundary := make([]bool, len(tokens))
	for _, sp := range spans {
		if sp.Role != types.RoleConjunction {
			continue
		}
		for i := sp.First; i < sp.Last; i++ {
			boundary[i] = true
		}
	}
	for i, t := range tokens {
		if t.Norm == ";" {
			boundary[i] = true
		}
	}

	out := make([]int, len(tokens))
	clause := 0
	for i := range tokens {
		if boundary[i] {
			out[i] = -1
			if i+1 < len(tokens) && !boundary[i+1] {
				clause++
			}
			continue
		}
		out[i] = clause
	}
	return out
}
