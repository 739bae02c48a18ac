package services

import (
	"encoding/json"
	"fmt"

	"tunebook/pkg/store"
)

// Page sizes per entity family.
const (
	PageTunes       = 15
	PageUserTunes   = 8
	PageSessions    = 15
	PageInstruments = 15
	PageForums      = 15
	PagePosts       = 10
	PagePeople      = 15
)

// AllPages is the documented pagination escape hatch: a page index of -1
// returns every match in one slice.
const AllPages = -1

// queryPage scans one namespace in ascending key order, decodes each record
// into T and applies pred. It returns the page-th window of per consecutive
// matches plus the total number of matches. Window collection early-exits
// once the page is full; the total always comes from a full pass, so
// out-of-range pages yield an empty slice with a correct total.
func queryPage[T any](st *store.Store, ns string, pred func(*T) bool, page, per int) ([]T, int, error) {
	if page == AllPages {
		out := []T{}
		err := scanMatches(st, ns, pred, func(rec T) bool {
			out = append(out, rec)
			return true
		})
		return out, len(out), err
	}

	start := page * per
	out := []T{}
	seen := 0
	err := scanMatches(st, ns, pred, func(rec T) bool {
		if seen >= start && len(out) < per {
			out = append(out, rec)
		}
		seen++
		// stop once the requested window is full
		return len(out) < per
	})
	if err != nil {
		return nil, 0, err
	}

	total, err := countMatches(st, ns, pred)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// scanMatches streams decoded records accepted by pred to fn until fn
// returns false or the namespace is exhausted.
func scanMatches[T any](st *store.Store, ns string, pred func(*T) bool, fn func(T) bool) error {
	return st.Scan(ns, func(_ string, val []byte) (bool, error) {
		var rec T
		if err := json.Unmarshal(val, &rec); err != nil {
			return false, fmt.Errorf("corrupt record in %s: %w", ns, err)
		}
		if !pred(&rec) {
			return true, nil
		}
		return fn(rec), nil
	})
}

// countMatches counts every record in ns accepted by pred.
func countMatches[T any](st *store.Store, ns string, pred func(*T) bool) (int, error) {
	n := 0
	err := scanMatches(st, ns, pred, func(T) bool {
		n++
		return true
	})
	return n, err
}
