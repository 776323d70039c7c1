package collision

import (
	"fmt"

	"github.com/ngageoint/six-library-sub017/errs"
)

// Duplicate describes an identifier claimed by a second source.
type Duplicate struct {
	Ident  string // identifier claimed twice
	Owner  string // source that keeps the identifier
	Source string // source whose claim was ignored
}

// Tracker records which source first claimed each identifier.
// Keys are expected to be hash.Key values so the same identifier can be
// claimed independently under different plugin kinds.
type Tracker struct {
	owners     map[uint64]string // key → owning source
	idents     []string          // claimed identifiers, claim order
	duplicates []Duplicate
}

// NewTracker creates a new identifier tracker.
func NewTracker() *Tracker {
	return &Tracker{
		owners: make(map[uint64]string),
		idents: make([]string, 0),
	}
}

// Track claims ident for source.
//
// The first claim wins. A later claim of the same key is recorded as a
// Duplicate and reported with errs.ErrDuplicatePlugin; the caller decides
// whether that is fatal. An empty identifier is rejected with
// errs.ErrInvalidParameter.
func (t *Tracker) Track(key uint64, ident, source string) error {
	if ident == "" {
		return fmt.Errorf("%w: empty identifier from %s", errs.ErrInvalidParameter, source)
	}

	if owner, exists := t.owners[key]; exists {
		t.duplicates = append(t.duplicates, Duplicate{Ident: ident, Owner: owner, Source: source})
		return fmt.Errorf("%w: %q from %s already claimed by %s", errs.ErrDuplicatePlugin, ident, source, owner)
	}

	t.owners[key] = source
	t.idents = append(t.idents, ident)

	return nil
}

// Owner returns the source that claimed key.
func (t *Tracker) Owner(key uint64) (string, bool) {
	owner, ok := t.owners[key]
	return owner, ok
}

// HasDuplicates returns true if any identifier was claimed twice.
func (t *Tracker) HasDuplicates() bool {
	return len(t.duplicates) > 0
}

// Duplicates returns the ignored claims in the order they were made.
func (t *Tracker) Duplicates() []Duplicate {
	return t.duplicates
}

// Identifiers returns the claimed identifiers in claim order.
func (t *Tracker) Identifiers() []string {
	return t.idents
}

// Count returns the number of claimed identifiers.
func (t *Tracker) Count() int {
	return len(t.idents)
}

// Reset clears all claims.
func (t *Tracker) Reset() {
	for k := range t.owners {
		delete(t.owners, k)
	}
	t.idents = t.idents[:0]
	t.duplicates = nil
}
