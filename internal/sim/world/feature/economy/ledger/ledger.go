package ledger

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

type Kind string

const (
	Wood  Kind = "WOOD"
	Stone Kind = "STONE"
)

func Kinds() []Kind { return []Kind{Wood, Stone} }

func ParseKind(s string) (Kind, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case string(Wood):
		return Wood, true
	case string(Stone):
		return Stone, true
	}
	return "", false
}

var (
	ErrInsufficientResources = errors.New("insufficient resources")
	ErrInvalidCost           = errors.New("invalid cost")
	ErrUnknownResource       = errors.New("unknown resource")
)

// Bundle is an amount per resource kind, used for costs and credits.
type Bundle map[Kind]int

// ShortfallError reports how much of each resource a debit was missing.
// It matches ErrInsufficientResources under errors.Is.
type ShortfallError struct {
	Missing Bundle
}

func (e *ShortfallError) Error() string {
	keys := make([]string, 0, len(e.Missing))
	for k := range e.Missing {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%d", k, e.Missing[Kind(k)]))
	}
	return fmt.Sprintf("%s: missing %s", ErrInsufficientResources, strings.Join(parts, ","))
}

func (e *ShortfallError) Unwrap() error { return ErrInsufficientResources }

// Counts is a point-in-time copy of the ledger.
type Counts struct {
	Wood  int `json:"wood"`
	Stone int `json:"stone"`
}

// Ledger holds the player's resource counts. Counts never go negative.
type Ledger struct {
	counts map[Kind]int
}

func New() *Ledger {
	return &Ledger{counts: map[Kind]int{Wood: 0, Stone: 0}}
}

// Credit adds amount of kind. Non-positive amounts are ignored.
func (l *Ledger) Credit(kind Kind, amount int) error {
	if _, ok := l.counts[kind]; !ok {
		return fmt.Errorf("credit %q: %w", kind, ErrUnknownResource)
	}
	if amount <= 0 {
		return nil
	}
	l.counts[kind] += amount
	return nil
}

// CanAfford reports whether cost could be debited right now.
func (l *Ledger) CanAfford(cost Bundle) bool {
	return validate(l, cost) == nil && l.shortfall(cost) == nil
}

// Debit removes cost atomically: either every entry is subtracted or the
// ledger is left untouched.
func (l *Ledger) Debit(cost Bundle) error {
	if err := validate(l, cost); err != nil {
		return err
	}
	if sf := l.shortfall(cost); sf != nil {
		return sf
	}
	for k, c := range cost {
		l.counts[k] -= c
	}
	return nil
}

func (l *Ledger) Get(kind Kind) int { return l.counts[kind] }

func (l *Ledger) Snapshot() Counts {
	return Counts{Wood: l.counts[Wood], Stone: l.counts[Stone]}
}

func validate(l *Ledger, cost Bundle) error {
	for k, c := range cost {
		if _, ok := l.counts[k]; !ok {
			return fmt.Errorf("debit %q: %w", k, ErrUnknownResource)
		}
		if c < 0 {
			return fmt.Errorf("debit %s=%d: %w", k, c, ErrInvalidCost)
		}
	}
	return nil
}

func (l *Ledger) shortfall(cost Bundle) *ShortfallError {
	var missing Bundle
	for k, c := range cost {
		if have := l.counts[k]; have < c {
			if missing == nil {
				missing = Bundle{}
			}
			missing[k] = c - have
		}
	}
	if missing == nil {
		return nil
	}
	return &ShortfallError{Missing: missing}
}
