// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package scope

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/semex/internal/dictionary"
	"github.com/pdiddy/semex/internal/match"
	"github.com/pdiddy/semex/internal/segment"
	"github.com/pdiddy/semex/pkg/types"
)

func newDict(t *testing.T) *dictionary.Store {
	t.Helper()
	s := dictionary.NewStore(nil)
	_, err := s.LoadBuiltinCues()
	require.NoError(t, err)

	for term, role := range map[string]types.Role{
		"fever":         types.RoleObservation,
		"cough":         types.RoleObservation,
		"chills":        types.RoleObservation,
		"pain":          types.RoleObservation,
		"chest pain":    types.RoleObservation,
		"pneumonia":     types.RoleObservation,
		"breast cancer": types.RoleObservation,
		"stroke":        types.RoleObservation,
		"nausea":        types.RoleObservation,
		"severe":        types.RoleModifier,
		"left":          types.RoleLocation,
	} {
		require.True(t, s.AddPhrase(term, term, role), term)
	}
	return s
}

func resolve(t *testing.T, dict *dictionary.Store, cfg types.ScopeConfig, text string) Result {
	t.Helper()
	tokens := segment.Tokenize(text, 0)
	spans := match.Sentence(dict, text, tokens)
	return NewResolver(cfg).Resolve(tokens, spans)
}

func find(t *testing.T, res Result, text string) Object {
	t.Helper()
	for _, o := range res.Objects {
		if o.Span.Text == text {
			return o
		}
	}
	require.Failf(t, "object not found", "%q", text)
	return Object{}
}

func TestCertainty(t *testing.T) {
	dict := newDict(t)
	cfg := types.DefaultScopeConfig()

	tests := []struct {
		name string
		text string
		want map[string]types.Certainty
	}{
		{
			name: "no cue",
			text: "Chest pain.",
			want: map[string]types.Certainty{"Chest pain": types.CertaintyYes},
		},
		{
			name: "leading negation",
			text: "No chest pain.",
			want: map[string]types.Certainty{"chest pain": types.CertaintyNo},
		},
		{
			name: "multiword negation",
			text: "No evidence of pneumonia.",
			want: map[string]types.Certainty{"pneumonia": types.CertaintyNo},
		},
		{
			name: "trailing negation",
			text: "Pneumonia ruled out.",
			want: map[string]types.Certainty{"Pneumonia": types.CertaintyNo},
		},
		{
			name: "speculation",
			text: "Possible pneumonia.",
			want: map[string]types.Certainty{"pneumonia": types.CertaintyUnclear},
		},
		{
			name: "confirmation",
			text: "Confirmed pneumonia.",
			want: map[string]types.Certainty{"pneumonia": types.CertaintyYes},
		},
		{
			name: "comma keeps the clause",
			text: "No fever, chills.",
			want: map[string]types.Certainty{"fever": types.CertaintyNo, "chills": types.CertaintyNo},
		},
		{
			name: "conjunction ends the clause",
			text: "No fever but cough.",
			want: map[string]types.Certainty{"fever": types.CertaintyNo, "cough": types.CertaintyYes},
		},
		{
			name: "semicolon ends the clause",
			text: "No fever; cough.",
			want: map[string]types.Certainty{"fever": types.CertaintyNo, "cough": types.CertaintyYes},
		},
		{
			name: "nearest cue wins",
			text: "No fever, possible pneumonia.",
			want: map[string]types.Certainty{"fever": types.CertaintyNo, "pneumonia": types.CertaintyUnclear},
		},
		{
			name: "forward cue wins a tie",
			text: "Possible fever ruled out.",
			want: map[string]types.Certainty{"fever": types.CertaintyUnclear},
		},
		{
			name: "pre cue does not reach back",
			text: "Nausea without fever.",
			want: map[string]types.Certainty{"Nausea": types.CertaintyYes, "fever": types.CertaintyNo},
		},
		{
			name: "pre cue after a comma does not reach back",
			text: "Reports cough, no fever.",
			want: map[string]types.Certainty{"cough": types.CertaintyYes, "fever": types.CertaintyNo},
		},
		{
			name: "post cue does not reach forward",
			text: "Fever resolved, cough.",
			want: map[string]types.Certainty{"Fever": types.CertaintyNo, "cough": types.CertaintyYes},
		},
		{
			name: "trailing speculation",
			text: "Pneumonia unlikely.",
			want: map[string]types.Certainty{"Pneumonia": types.CertaintyUnclear},
		},
		{
			name: "rule out negates",
			text: "Rule out pneumonia.",
			want: map[string]types.Certainty{"pneumonia": types.CertaintyNo},
		},
		{
			name: "abbreviated rule out negates",
			text: "R/O pneumonia.",
			want: map[string]types.Certainty{"pneumonia": types.CertaintyNo},
		},
		{
			name: "suggesting hedges",
			text: "Findings suggesting pneumonia.",
			want: map[string]types.Certainty{"pneumonia": types.CertaintyUnclear},
		},

		{
			name: "inside forward window",
			text: "No alpha bravo charlie delta echo foxtrot fever.",
			want: map[string]types.Certainty{"fever": types.CertaintyNo},
		},
		{
			name: "beyond forward window",
			text: "No alpha bravo charlie delta echo foxtrot golf fever.",
			want: map[string]types.Certainty{"fever": types.CertaintyYes},
		},
		{
			name: "beyond backward window",
			text: "Fever alpha bravo charlie delta ruled out.",
			want: map[string]types.Certainty{"Fever": types.CertaintyYes},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := resolve(t, dict, cfg, tt.text)
			for text, want := range tt.want {
				assert.Equal(t, want, find(t, res, text).Certainty, text)
			}
		})
	}
}

func TestCueDirection(t *testing.T) {
	dict := newDict(t)
	text := "Nausea not seen."

	res := resolve(t, dict, types.DefaultScopeConfig(), text)
	assert.Equal(t, types.CertaintyYes, find(t, res, "Nausea").Certainty)

	require.True(t, dict.AddCue("not seen", "NEG", types.RoleNegator, types.DirectionPost))
	res = resolve(t, dict, types.DefaultScopeConfig(), text)
	assert.Equal(t, types.CertaintyNo, find(t, res, "Nausea").Certainty)
}

func TestWindowsAreConfigurable(t *testing.T) {
	dict := newDict(t)
	text := "No alpha fever."

	res := resolve(t, dict, types.ScopeConfig{ForwardWindow: 0}, text)
	assert.Equal(t, types.CertaintyYes, find(t, res, "fever").Certainty)

	res = resolve(t, dict, types.ScopeConfig{ForwardWindow: 1}, text)
	assert.Equal(t, types.CertaintyNo, find(t, res, "fever").Certainty)

	text = "Fever alpha ruled out."
	res = resolve(t, dict, types.ScopeConfig{BackwardWindow: 0}, text)
	assert.Equal(t, types.CertaintyYes, find(t, res, "Fever").Certainty)

	res = resolve(t, dict, types.ScopeConfig{BackwardWindow: 1}, text)
	assert.Equal(t, types.CertaintyNo, find(t, res, "Fever").Certainty)
}

func TestSentenceFlags(t *testing.T) {
	dict := newDict(t)
	cfg := types.DefaultScopeConfig()

	res := resolve(t, dict, cfg, "Mother had breast cancer.")
	o := find(t, res, "breast cancer")
	assert.True(t, o.FamilyHistory)
	assert.False(t, o.Historical)
	assert.Equal(t, types.CertaintyYes, o.Certainty)

	res = resolve(t, dict, cfg, "History of stroke.")
	o = find(t, res, "stroke")
	assert.True(t, o.Historical)
	assert.False(t, o.FamilyHistory)

	res = resolve(t, dict, cfg, "Fever today.")
	o = find(t, res, "Fever")
	assert.False(t, o.Historical)
	assert.False(t, o.FamilyHistory)
}

func TestCuesAreNotObjects(t *testing.T) {
	dict := newDict(t)
	res := resolve(t, dict, types.DefaultScopeConfig(), "No fever but possible cough.")

	require.Len(t, res.Objects, 2)
	var cues []types.Role
	for _, c := range res.Cues {
		cues = append(cues, c.Role)
	}
	assert.Equal(t, []types.Role{types.RoleNegator, types.RoleConjunction, types.RoleSpeculation}, cues)
}

func TestAttach(t *testing.T) {
	dict := newDict(t)
	cfg := types.DefaultScopeConfig()

	t.Run("descriptors attach to the observation", func(t *testing.T) {
		res := resolve(t, dict, cfg, "Severe left chest pain.")
		top := res.TopLevel()
		require.Len(t, top, 1)
		parent := res.Objects[top[0]]
		assert.Equal(t, "chest pain", parent.Span.Text)
		require.Len(t, parent.Modifiers, 2)
		assert.Equal(t, "Severe", res.Objects[parent.Modifiers[0]].Span.Text)
		assert.Equal(t, "left", res.Objects[parent.Modifiers[1]].Span.Text)
		assert.Equal(t, top[0], res.Objects[parent.Modifiers[0]].Parent)
	})

	t.Run("modifiers inherit certainty", func(t *testing.T) {
		res := resolve(t, dict, cfg, "No severe pain.")
		pain := find(t, res, "pain")
		severe := find(t, res, "severe")
		assert.Equal(t, types.CertaintyNo, pain.Certainty)
		assert.Equal(t, types.CertaintyNo, severe.Certainty)
	})

	t.Run("tie goes to the following observation", func(t *testing.T) {
		res := resolve(t, dict, cfg, "Fever severe cough.")
		severe := find(t, res, "severe")
		require.NotEqual(t, NoParent, severe.Parent)
		assert.Equal(t, "cough", res.Objects[severe.Parent].Span.Text)
	})

	t.Run("no observation in clause stays top-level", func(t *testing.T) {
		res := resolve(t, dict, cfg, "Fever but left side.")
		left := find(t, res, "left")
		assert.Equal(t, NoParent, left.Parent)
		assert.Len(t, res.TopLevel(), 2)
	})
}

func TestClauseIndex(t *testing.T) {
	dict := newDict(t)
	text := "No fever but cough; pain."
	tokens := segment.Tokenize(text, 0)
	spans := match.Sentence(dict, text, tokens)

	got := clauseIndex(tokens, spans)
	// no fever but cough ; pain .
	assert.Equal(t, []int{0, 0, -1, 1, -1, 2, 2}, got)
}
