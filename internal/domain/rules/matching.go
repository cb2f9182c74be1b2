package rules

import "time"

const (
	MatchTTL = 72 * time.Hour

	DefaultDeckSize = 20
	MaxDeckSize     = 50
)

// CanonicalPair orders two participant ids deterministically so a match is
// keyed the same way regardless of which side completed the mutual like.
func CanonicalPair(userID, targetID int64) (int64, int64) {
	if userID > targetID {
		return targetID, userID
	}
	return userID, targetID
}

func ClampDeckSize(limit int) int {
	if limit <= 0 {
		return DefaultDeckSize
	}
	if limit > MaxDeckSize {
		return MaxDeckSize
	}
	return limit
}
