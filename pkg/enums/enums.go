// Package enums holds the closed string sets shared by the API, the
// database and the outbox.
package enums

import (
	"fmt"
	"slices"
	"strings"
)

// set is an ordered list of the legal values of a string enum.
type set[T ~string] []T

func (s set[T]) has(v T) bool {
	return slices.Contains(s, v)
}

func (s set[T]) values() []T {
	return slices.Clone(s)
}

// parse matches raw after trimming and normalising its case with fold.
// A nil fold matches exactly.
func (s set[T]) parse(kind, raw string, fold func(string) string) (T, error) {
	candidate := strings.TrimSpace(raw)
	if fold != nil {
		candidate = fold(candidate)
	}
	if v := T(candidate); s.has(v) {
		return v, nil
	}
	var zero T
	return zero, fmt.Errorf("invalid %s %q", kind, raw)
}
