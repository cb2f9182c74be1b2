package rules

import (
	"strings"
	"time"
)

const (
	LocationExactCityScore = 40.0
	LocationSameStateScore = 20.0
	LocationFloorScore     = 4.0

	ReputationMaxScore      = 25.0
	ReputationRatingScale   = 5.0
	ReputationVolumeReviews = 10.0

	SpecializationMaxScore = 20.0

	RecencyMaxScore    = 15.0
	RecencyHorizonDays = 90.0
)

// LocationScore compares candidate location against the requester's.
// Geography never zeroes out a candidate, hence the floor.
func LocationScore(requesterCity, requesterState, candidateCity, candidateState string) float64 {
	if equalFold(requesterCity, candidateCity) && requesterCity != "" {
		return LocationExactCityScore
	}
	if equalFold(requesterState, candidateState) && requesterState != "" {
		return LocationSameStateScore
	}
	return LocationFloorScore
}

// ReputationScore weighs rating quality by review volume: a single 5-star
// review must not outrank ten strong reviews.
func ReputationScore(avgRating float64, reviewCount int) float64 {
	if avgRating < 0 {
		avgRating = 0
	}
	if avgRating > ReputationRatingScale {
		avgRating = ReputationRatingScale
	}
	if reviewCount < 0 {
		reviewCount = 0
	}
	volume := float64(reviewCount) / ReputationVolumeReviews
	if volume > 1 {
		volume = 1
	}
	return (avgRating / ReputationRatingScale) * volume * ReputationMaxScore
}

// SpecializationScore returns the fraction of the requester's seeking tags
// found in the candidate's combined bio/portfolio text, scaled to the cap.
// No seeking tags means no contribution either way.
func SpecializationScore(seekingTags []string, candidateText string) float64 {
	if len(seekingTags) == 0 {
		return 0
	}
	haystack := strings.ToLower(candidateText)
	found := 0
	for _, tag := range seekingTags {
		needle := strings.ToLower(strings.TrimSpace(tag))
		if needle == "" {
			continue
		}
		if strings.Contains(haystack, needle) {
			found++
		}
	}
	return float64(found) / float64(len(seekingTags)) * SpecializationMaxScore
}

// RecencyScore decays linearly from the cap at zero days since last activity
// down to zero at the horizon.
func RecencyScore(lastActiveAt, now time.Time) float64 {
	if lastActiveAt.IsZero() {
		return 0
	}
	if lastActiveAt.After(now) {
		return RecencyMaxScore
	}
	days := now.Sub(lastActiveAt).Hours() / 24
	if days >= RecencyHorizonDays {
		return 0
	}
	return RecencyMaxScore * (1 - days/RecencyHorizonDays)
}

func equalFold(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
