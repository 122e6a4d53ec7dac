package inventory

import (
	"errors"
	"fmt"
)

// Snapshot is a multiset of canonical item names: name -> occurrence count.
// Counts are always >= 1; an absent key means zero. Item names identify a
// type, not an instance — two copies of the same item collapse to one key
// with count 2.
type Snapshot map[string]int

// Count returns the occurrence count for name (0 when absent).
func (s Snapshot) Count(name string) int { return s[name] }

// Total returns the number of item copies across all names.
func (s Snapshot) Total() int {
	n := 0
	for _, c := range s {
		n += c
	}
	return n
}

// Clone returns an independent copy.
func (s Snapshot) Clone() Snapshot {
	cp := make(Snapshot, len(s))
	for k, v := range s {
		cp[k] = v
	}
	return cp
}

// FetchError reports a failed inventory fetch after the retry schedule has
// run its course. It wraps the last underlying error and carries enough
// context to diagnose from logs alone.
type FetchError struct {
	Account  string
	Status   int // last HTTP status, 0 for transport-level failures
	Attempts int
	Err      error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("inventory fetch for %s failed after %d attempt(s): status %d: %v", e.Account, e.Attempts, e.Status, e.Err)
	}
	return fmt.Sprintf("inventory fetch for %s failed after %d attempt(s): %v", e.Account, e.Attempts, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// IsFetchError reports whether err is (or wraps) a FetchError.
func IsFetchError(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe)
}
