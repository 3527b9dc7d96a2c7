package devserver

import (
	"math"

	"github.com/interview-prep/studyclient/internal/models"
)

// kFactor returns how far one session's average moves a topic's strength,
// based on how many scored sessions the topic already has.
func kFactor(scoredSessions int) float64 {
	if scoredSessions < 3 {
		return 0.6 // New topic: fast convergence
	}
	if scoredSessions < 10 {
		return 0.4
	}
	return 0.25 // Mature: stable, small adjustments
}

// nextStrength folds a session's average score (0-10) into the topic's
// strength rating. The first scored session sets the rating outright.
func nextStrength(current *int, sessionAvg float64, scoredSessions int) int {
	if current == nil {
		return clampRating(sessionAvg)
	}
	k := kFactor(scoredSessions)
	return clampRating(float64(*current) + (sessionAvg-float64(*current))*k)
}

func clampRating(v float64) int {
	r := int(math.Round(v))
	if r < 0 {
		return 0
	}
	if r > 10 {
		return 10
	}
	return r
}

// targetDifficulty picks the difficulty a new batch leads with.
//
// unrated:    medium
// 0-3:        easy
// 4-6:        medium
// 7-10:       hard
func targetDifficulty(strength *int) models.Difficulty {
	switch {
	case strength == nil:
		return models.DifficultyMedium
	case *strength < 4:
		return models.DifficultyEasy
	case *strength < 7:
		return models.DifficultyMedium
	}
	return models.DifficultyHard
}
