package transcript

import (
	"strings"

	"ytmcp/internal/model"
)

// Select picks the best transcript track for a request. Priority order,
// first match wins:
//
//  1. exact match on the requested language, manual preferred over generated
//  2. the same matching for "en"
//  3. any manual track, smallest language code when several exist
//  4. any track at all (necessarily generated by now), same tie-break
//
// The second return value is false only when tracks is empty.
func Select(requested string, tracks []model.Track) (model.Track, bool) {
	if requested != "" {
		if t, ok := bestForLanguage(tracks, requested); ok {
			return t, true
		}
	}
	if t, ok := bestForLanguage(tracks, "en"); ok {
		return t, true
	}
	if t, ok := best(tracks, false); ok {
		return t, true
	}
	return best(tracks, true)
}

// bestForLanguage returns the preferred track whose language code equals
// code (case-insensitively).
func bestForLanguage(tracks []model.Track, code string) (model.Track, bool) {
	var chosen model.Track
	found := false
	for _, t := range tracks {
		if !strings.EqualFold(t.Language, code) {
			continue
		}
		if !found || better(t, chosen) {
			chosen, found = t, true
		}
	}
	return chosen, found
}

// best returns the preferred track overall, optionally skipping generated
// ones.
func best(tracks []model.Track, includeGenerated bool) (model.Track, bool) {
	var chosen model.Track
	found := false
	for _, t := range tracks {
		if t.Generated && !includeGenerated {
			continue
		}
		if !found || better(t, chosen) {
			chosen, found = t, true
		}
	}
	return chosen, found
}

// better orders tracks: manual before generated, then lexicographically
// smallest language code. Input order never influences the outcome.
func better(a, b model.Track) bool {
	if a.Generated != b.Generated {
		return !a.Generated
	}
	return strings.ToLower(a.Language) < strings.ToLower(b.Language)
}
