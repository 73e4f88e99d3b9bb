package assistant

import (
	"sort"
	"strings"

	"catatkas/backend/internal/apperr"
)

// ReasonAmbiguous is the "reason" detail of a name that matched more than one
// entry.
const ReasonAmbiguous = "ambiguous"

// Resolve finds the one item whose name matches query. A case-insensitive
// exact match wins; otherwise a single substring match is accepted. No match
// is a NotFound error and several substring matches are a Validation error
// naming the candidates.
func Resolve[T any](items []T, nameOf func(T) string, query string, entity string) (T, error) {
	var zero T
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return zero, apperr.Validation("%s name is required", entity)
	}

	for _, item := range items {
		if strings.ToLower(strings.TrimSpace(nameOf(item))) == needle {
			return item, nil
		}
	}

	var (
		hits  []T
		names []string
	)
	for _, item := range items {
		name := nameOf(item)
		if strings.Contains(strings.ToLower(name), needle) {
			hits = append(hits, item)
			names = append(names, name)
		}
	}

	switch len(hits) {
	case 0:
		return zero, apperr.NotFound(entity, query)
	case 1:
		return hits[0], nil
	default:
		sort.Strings(names)
		return zero, apperr.Validation("%s %q is ambiguous, matches: %s", entity, query, strings.Join(names, ", ")).
			WithDetail("reason", ReasonAmbiguous).
			WithDetail("candidates", names)
	}
}
