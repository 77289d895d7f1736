package validation

import "strings"

// =============================================================================
// Lookups
// =============================================================================

// Dedupe returns the first occurrence of every id in input order.
// Items whose id is empty or whitespace are skipped without a diagnostic.
// A duplicate_id diagnostic is returned for each id seen more than once,
// in the order the id first appeared.
//
// Example:
//
//	// Input ids: R1, R2, R1, "", R2, R1
//	items, diags := Dedupe(releases, func(r domain.Release) string { return r.ID }, EntityRelease)
//	// items: [R1 (first), R2 (first)]
//	// diags: R1 seen 3 times, R2 seen 2 times
func Dedupe[T any](items []T, id func(T) string, entity string) ([]T, []Diagnostic) {
	counts := make(map[string]int, len(items))
	kept := make([]T, 0, len(items))
	var order []string

	for _, item := range items {
		key := id(item)
		if strings.TrimSpace(key) == "" {
			continue
		}
		counts[key]++
		if counts[key] == 1 {
			kept = append(kept, item)
			order = append(order, key)
		}
	}

	var diags []Diagnostic
	for _, key := range order {
		if n := counts[key]; n > 1 {
			diags = append(diags, warn(CodeDuplicateID, entity, key,
				"id occurs %d times; keeping the first occurrence and discarding %d", n, n-1))
		}
	}

	return kept, diags
}

// BuildLookup indexes items by id with first-occurrence-wins semantics.
// See Dedupe for the handling of blank and duplicate ids.
func BuildLookup[T any](items []T, id func(T) string, entity string) (map[string]T, []Diagnostic) {
	kept, diags := Dedupe(items, id, entity)
	lookup := make(map[string]T, len(kept))
	for _, item := range kept {
		lookup[id(item)] = item
	}
	return lookup, diags
}
