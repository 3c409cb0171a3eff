// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"strings"
)

// Role categorizes a dictionary term and every span matched from it.
type Role string

const (
	RoleObservation Role = "OBSERVATION"
	RoleLocation    Role = "LOCATION"
	RoleModifier    Role = "MODIFIER"
	RoleNegator     Role = "NEGATOR"
	RoleSpeculation Role = "SPECULATION"
	RoleConfirmer   Role = "CONFIRMER"
	RoleChange      Role = "CHANGE"
	RoleHistory     Role = "HISTORY"
	RoleFamilyHist  Role = "FAMILYHIST"
	RoleConjunction Role = "CONJUNCTION"
	RoleComparison  Role = "COMPARISON"
)

// AllRoles lists every role in a stable order.
var AllRoles = []Role{
	RoleObservation,
	RoleLocation,
	RoleModifier,
	RoleNegator,
	RoleSpeculation,
	RoleConfirmer,
	RoleChange,
	RoleHistory,
	RoleFamilyHist,
	RoleConjunction,
	RoleComparison,
}

// ParseRole converts a case-insensitive role name into a Role.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// Valid reports whether r is one of AllRoles.
func (r Role) Valid() bool {
	for _, known := range AllRoles {
		if r == known {
			return true
		}
	}
	return false
}

// IsCue reports whether spans of this role steer other spans rather than
// appearing in results themselves.
func (r Role) IsCue() bool {
	switch r {
	case RoleNegator, RoleSpeculation, RoleConfirmer,
		RoleHistory, RoleFamilyHist, RoleConjunction:
		return true
	}
	return false
}

// IsScoped reports whether cues of this role set the certainty of the spans
// within their window.
func (r Role) IsScoped() bool {
	return r == RoleNegator || r == RoleSpeculation || r == RoleConfirmer
}

// IsDescriptor reports whether spans of this role attach beneath an
// observation as modifiers.
func (r Role) IsDescriptor() bool {
	switch r {
	case RoleLocation, RoleModifier, RoleChange, RoleComparison:
		return true
	}
	return false
}

// Direction says which side of a scoped cue it governs.
type Direction string

const (
	// DirectionPre cues govern the spans that follow them ("no fever").
	DirectionPre Direction = "PRE"

	// DirectionPost cues govern the spans in front of them ("fever ruled out").
	DirectionPost Direction = "POST"
)

// postQualifier marks a vocabulary file of post cues: negator.post.txt.
const postQualifier = "post"

// DirectionOf returns DirectionPost when a vocabulary file name carries the
// "post" qualifier after its role (negator.post.txt) and DirectionPre
// otherwise.
func DirectionOf(name string) Direction {
	base := name
	if i := strings.LastIndexAny(base, `/\`); i >= 0 {
		base = base[i+1:]
	}
	parts := strings.Split(base, ".")
	if len(parts) < 3 {
		return DirectionPre
	}
	for _, q := range parts[1 : len(parts)-1] {
		if strings.EqualFold(q, postQualifier) {
			return DirectionPost
		}
	}
	return DirectionPre
}

// Certainty is the polarity of an observation. YES, NO and UNCLEAR are the
// only values.
type Certainty string

const (
	CertaintyYes     Certainty = "YES"
	CertaintyNo      Certainty = "NO"
	CertaintyUnclear Certainty = "UNCLEAR"
)

// AllCertainties lists every certainty level.
var AllCertainties = []Certainty{CertaintyYes, CertaintyNo, CertaintyUnclear}

// ParseCertainty converts a case-insensitive certainty name into a Certainty.
func ParseCertainty(s string) (Certainty, error) {
	c := Certainty(strings.ToUpper(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", fmt.Errorf("unknown certainty %q: want YES, NO or UNCLEAR", s)
	}
	return c, nil
}

// Valid reports whether c is YES, NO or UNCLEAR.
func (c Certainty) Valid() bool {
	return c == CertaintyYes || c == CertaintyNo || c == CertaintyUnclear
}

// Entry is one registered dictionary term.
type Entry struct {
	// Term is the normalized lowercase phrase, tokens joined by single spaces.
	Term string `json:"term" yaml:"term"`

	// Codes are the uppercase identifiers in registration order.
	Codes []string `json:"codes" yaml:"codes"`

	// Role is the single role the term is registered under.
	Role Role `json:"role" yaml:"role"`

	// Direction is set for NEGATOR, SPECULATION and CONFIRMER terms only.
	Direction Direction `json:"direction,omitempty" yaml:"direction,omitempty"`
}

// LoadSummary holds counts from loading one dictionary file.
type LoadSummary struct {
	Path      string `json:"path" yaml:"path"`
	Role      Role   `json:"role" yaml:"role"`
	Loaded    int    `json:"loaded" yaml:"loaded"`
	Skipped   int    `json:"skipped" yaml:"skipped"`
	Conflicts int    `json:"conflicts" yaml:"conflicts"`
}

// Skips returns the number of lines that did not register, malformed or
// conflicting.
func (s LoadSummary) Skips() int {
	return s.Skipped + s.Conflicts
}

// OK reports whether at least one line registered and none conflicted.
func (s LoadSummary) OK() bool {
	return s.Loaded > 0 && s.Conflicts == 0
}
