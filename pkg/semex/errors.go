// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package semex

import "errors"

var (
	// ErrInvalidHandle is returned when an ObjectID or SentenceID does not
	// belong to the document.
	ErrInvalidHandle = errors.New("semex: invalid handle")

	// ErrInvalidOffsets is returned when offsets fall outside the document
	// text or start after end.
	ErrInvalidOffsets = errors.New("semex: invalid offsets")

	// ErrInvalidCertainty is returned for a certainty outside YES, NO and
	// UNCLEAR.
	ErrInvalidCertainty = errors.New("semex: invalid certainty")

	// ErrModifierCycle is returned when attaching a modifier would make an
	// object its own ancestor.
	ErrModifierCycle = errors.New("semex: modifier cycle")

	// ErrInputTooLarge is returned when the text exceeds the configured
	// maximum input size.
	ErrInputTooLarge = errors.New("semex: input too large")
)
