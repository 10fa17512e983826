package services

import (
	"strings"
	"time"
)

// Field-lock policy for once-settable fields.
//
// A field is unset while it holds no real value: empty string, nil date or
// the year<=1 sentinel some imports store instead of NULL, or a non-positive
// amount. The first valid value freezes the field; after that every write is
// denied, including writes of the identical value.

const lockReasonImmutable = "immutable"

// LockDecision is the outcome of a single CanSet check.
type LockDecision struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}

func allow() LockDecision {
	return LockDecision{Allowed: true}
}

func deny(reason string) LockDecision {
	return LockDecision{Allowed: false, Reason: reason}
}

// TextSet reports whether a once-settable text field holds a value.
func TextSet(v string) bool {
	return strings.TrimSpace(v) != ""
}

// DateSet reports whether a once-settable date holds a real value. Dates
// with year <= 1 are the "never assigned" sentinel, not actual dates.
func DateSet(t *time.Time) bool {
	return t != nil && t.Year() > 1
}

// AmountSet reports whether a once-settable amount holds a value.
func AmountSet(v float64) bool {
	return v > 0
}

// CanSetText decides whether a once-settable text field may take proposed.
func CanSetText(current, proposed string) LockDecision {
	if TextSet(current) {
		return deny(lockReasonImmutable)
	}
	if !TextSet(proposed) {
		return deny("empty value")
	}
	return allow()
}

// CanSetDate decides whether a once-settable date may take proposed.
func CanSetDate(current, proposed *time.Time) LockDecision {
	if DateSet(current) {
		return deny(lockReasonImmutable)
	}
	if !DateSet(proposed) {
		return deny("empty value")
	}
	return allow()
}

// CanSetAmount decides whether a once-settable amount may take proposed.
func CanSetAmount(current, proposed float64) LockDecision {
	if AmountSet(current) {
		return deny(lockReasonImmutable)
	}
	if !AmountSet(proposed) {
		return deny("empty value")
	}
	return allow()
}

// MergeText folds a proposed value over the stored one: the proposal wins
// only when the policy allows the write, otherwise the stored value stands.
// The caller never needs to know which of its fields were already locked.
func MergeText(current, proposed string) (string, bool) {
	if CanSetText(current, proposed).Allowed {
		return strings.TrimSpace(proposed), true
	}
	return current, false
}

// MergeDate folds a proposed date over the stored one under the same rule.
func MergeDate(current, proposed *time.Time) (*time.Time, bool) {
	if CanSetDate(current, proposed).Allowed {
		return proposed, true
	}
	return current, false
}

// MergeAmount folds a proposed amount over the stored one.
func MergeAmount(current, proposed float64) (float64, bool) {
	if CanSetAmount(current, proposed).Allowed {
		return proposed, true
	}
	return current, false
}

// ParseLockDate parses a date carried in a staged field-values map. Both
// RFC 3339 and plain dates are accepted; anything else counts as unset.
func ParseLockDate(v string) *time.Time {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, v); err == nil {
			return &t
		}
	}
	return nil
}
