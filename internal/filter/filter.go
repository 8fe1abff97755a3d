// Package filter implements the search and facet logic shared by the
// expense, note and milestone lists.
package filter

import "strings"

// Predicate selects items. A nil Predicate is inactive and matches all.
type Predicate[T any] func(T) bool

// Apply keeps the items matching every active predicate, preserving order.
// The result is always a fresh slice.
func Apply[T any](items []T, preds ...Predicate[T]) []T {
	active := preds[:0:0]
	for _, p := range preds {
		if p != nil {
			active = append(active, p)
		}
	}
	out := make([]T, 0, len(items))
	for _, it := range items {
		if matchAll(it, active) {
			out = append(out, it)
		}
	}
	return out
}

func matchAll[T any](it T, preds []Predicate[T]) bool {
	for _, p := range preds {
		if !p(it) {
			return false
		}
	}
	return true
}

// Contains matches items where any field holds term as a case-insensitive
// substring. A blank term returns nil.
func Contains[T any](term string, fields func(T) []string) Predicate[T] {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return nil
	}
	return func(it T) bool {
		for _, f := range fields(it) {
			if strings.Contains(strings.ToLower(f), term) {
				return true
			}
		}
		return false
	}
}

// Equals matches items whose field equals value exactly. "" and "all"
// return nil.
func Equals[T any](value string, field func(T) string) Predicate[T] {
	if inactive(value) {
		return nil
	}
	return func(it T) bool { return field(it) == value }
}

func inactive(value string) bool {
	v := strings.TrimSpace(value)
	return v == "" || strings.EqualFold(v, "all")
}
