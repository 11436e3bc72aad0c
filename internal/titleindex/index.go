package titleindex

import "strings"

// Key normalizes a title into its lookup form: lowercase with every character
// outside [a-z0-9] removed. Spacing, punctuation, and typed diacritics are all
// ignored, so "The Matrix" and "the-matrix!" collide on purpose. Returns the
// empty string for titles with no alphanumeric content; empty keys are never
// indexed.
func Key(title string) string {
	lowered := strings.ToLower(title)
	var b strings.Builder
	b.Grow(len(lowered))
	for _, r := range lowered {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Index maps normalized title keys to catalog entries. One entry is reachable
// under every title variant it carries; one key may hold several entries when
// distinct catalog entries normalize identically (callers apply a first-match
// policy).
type Index[T any] struct {
	entries map[string][]T
}

// Build constructs an index over catalog entries. The titles function returns
// every name variant an entry should be reachable under (primary title,
// original title, alternates); duplicates are removed by exact string match
// before normalization, matching the dedup the catalog itself applies.
func Build[T any](entries []T, titles func(T) []string) Index[T] {
	idx := Index[T]{entries: make(map[string][]T)}
	for _, entry := range entries {
		seen := make(map[string]struct{})
		for _, title := range titles(entry) {
			if title == "" {
				continue
			}
			if _, dup := seen[title]; dup {
				continue
			}
			seen[title] = struct{}{}
			key := Key(title)
			if key == "" {
				continue
			}
			idx.entries[key] = append(idx.entries[key], entry)
		}
	}
	return idx
}

// Lookup returns every entry indexed under the title's normalized key, in
// insertion order. A nil result means "not in the local snapshot" and is not
// an error; callers fall back to an external catalog search.
func (i Index[T]) Lookup(title string) []T {
	if i.entries == nil {
		return nil
	}
	return i.entries[Key(title)]
}

// First returns the first entry under the title's key, applying the
// documented first-match collision policy.
func (i Index[T]) First(title string) (T, bool) {
	matches := i.Lookup(title)
	if len(matches) == 0 {
		var zero T
		return zero, false
	}
	return matches[0], true
}

// Len reports how many distinct keys the index holds.
func (i Index[T]) Len() int {
	return len(i.entries)
}
