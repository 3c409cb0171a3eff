// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dictionary

import "strings"

type lineKind int

const (
	lineEntry lineKind = iota
	lineIgnored
	lineMalformed
)

// parseLine splits a dictionary line into term and code.
//
//	<blank>      ignored
//	// comment   ignored
//	term|code    term and code
//	term         term used as its own code
//
// An empty term, an empty code after the separator, or more than one
// separator makes the line malformed.
func parseLine(line string) (term, code string, kind lineKind) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "//") {
		return "", "", lineIgnored
	}

	parts := strings.Split(line, "|")
	switch len(parts) {
	case 1:
		return line, line, lineEntry
	case 2:
		term = strings.TrimSpace(parts[0])
		code = strings.TrimSpace(parts[1])
		if term == "" || code == "" {
			return "", "", lineMalformed
		}
		return term, code, lineEntry
	default:
		return "", "", lineMalformed
	}
}
