// Package platform derives recruitment-platform metadata from external
// participant ids.
//
// Recruitment platforms prefix the participant id they substitute into
// study links ("prolific_abc123", "mturk_A9X..."). The prefix convention
// is the only signal we have for where a participant came from, so the
// derivation lives in one place.
package platform

import (
	"strings"
)

// Known platform sources.
const (
	SourceProlific = "prolific"
	SourceMTurk    = "mturk"
	SourceRespond  = "respondent"
	SourceUnknown  = "unknown"
)

var prefixes = map[string]string{
	"prolific": SourceProlific,
	"mturk":    SourceMTurk,
	"resp":     SourceRespond,
}

// Source derives the platform source from an external participant id by
// its prefix convention. Unrecognized prefixes map to "unknown" rather
// than an error; the id is still usable as a dedup key.
func Source(externalParticipantID string) string {
	if externalParticipantID == "" {
		return ""
	}
	head, _, found := strings.Cut(externalParticipantID, "_")
	if !found {
		return SourceUnknown
	}
	if src, ok := prefixes[strings.ToLower(head)]; ok {
		return src
	}
	return SourceUnknown
}

// Mask redacts an external participant id for participant-facing
// surfaces, keeping enough of the head and tail to be recognizable:
// "prolific_abc12345" → "prolific_a…45". Short ids are fully masked.
func Mask(externalParticipantID string) string {
	r := []rune(externalParticipantID)
	if len(r) == 0 {
		return ""
	}
	if len(r) <= 6 {
		return strings.Repeat("•", len(r))
	}
	head := len(r) / 2
	if head > 10 {
		head = 10
	}
	return string(r[:head]) + "…" + string(r[len(r)-2:])
}
