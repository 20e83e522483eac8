// Package differ computes and applies minimal single-region document
// patches. It operates on runes so multi-byte text splices at the same
// positions the editor surface reports.
package differ

import (
	"errors"

	"github.com/kngcl/codebattle2-sub001/internal/models"
)

// ErrInvalidPatch is returned when a patch position falls outside the
// current document bounds
var ErrInvalidPatch = errors.New("patch position out of document bounds")

// Diff computes the minimal patch transforming oldText into newText.
// It returns false when the texts are identical.
//
// Only a single contiguous edit region is captured per call. Two
// simultaneous non-adjacent edits between snapshots produce a patch
// that does not reconstruct newText; callers are expected to diff at
// keystroke granularity, where edits are contiguous.
func Diff(oldText, newText string) (*models.Patch, bool) {
	if oldText == newText {
		return nil, false
	}

	oldRunes := []rune(oldText)
	newRunes := []rune(newText)

	// Shared prefix length.
	prefix := 0
	for prefix < len(oldRunes) && prefix < len(newRunes) && oldRunes[prefix] == newRunes[prefix] {
		prefix++
	}

	switch {
	case len(newRunes) > len(oldRunes):
		delta := len(newRunes) - len(oldRunes)
		return &models.Patch{
			Kind:     models.PatchKindInsert,
			Position: prefix,
			Payload:  string(newRunes[prefix : prefix+delta]),
		}, true

	case len(newRunes) < len(oldRunes):
		delta := len(oldRunes) - len(newRunes)
		return &models.Patch{
			Kind:     models.PatchKindDelete,
			Position: prefix,
			Payload:  string(oldRunes[prefix : prefix+delta]),
		}, true

	default:
		// Equal length: replace the span from the first to the last
		// differing rune.
		suffix := 0
		for suffix < len(oldRunes)-prefix &&
			oldRunes[len(oldRunes)-1-suffix] == newRunes[len(newRunes)-1-suffix] {
			suffix++
		}
		return &models.Patch{
			Kind:     models.PatchKindReplace,
			Position: prefix,
			Payload:  string(newRunes[prefix : len(newRunes)-suffix]),
		}, true
	}
}

// Apply transforms doc by the given patch, or fails with ErrInvalidPatch
// when the position is outside the current document bounds.
func Apply(doc string, patch *models.Patch) (string, error) {
	runes := []rune(doc)
	payload := []rune(patch.Payload)

	if patch.Position < 0 || patch.Position > len(runes) {
		return "", ErrInvalidPatch
	}

	switch patch.Kind {
	case models.PatchKindInsert:
		return string(runes[:patch.Position]) + patch.Payload + string(runes[patch.Position:]), nil

	case models.PatchKindDelete:
		if patch.Position+len(payload) > len(runes) {
			return "", ErrInvalidPatch
		}
		return string(runes[:patch.Position]) + string(runes[patch.Position+len(payload):]), nil

	case models.PatchKindReplace:
		end := patch.Position + len(payload)
		if end > len(runes) {
			end = len(runes)
		}
		return string(runes[:patch.Position]) + patch.Payload + string(runes[end:]), nil

	default:
		return "", ErrInvalidPatch
	}
}
