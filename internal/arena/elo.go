// Package arena ranks the roster models by head-to-head votes on their
// videos using Elo ratings.
package arena

import (
	"fmt"
	"math"
	"strings"
)

// Elo parameters.
const (
	KFactor       = 32
	InitialRating = 1000
)

// Outcome is the result of one vote between contestants A and B.
type Outcome int

const (
	WinA Outcome = iota
	WinB
	Tie
)

// ParseOutcome accepts "a", "b" or "tie".
func ParseOutcome(s string) (Outcome, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "a":
		return WinA, nil
	case "b":
		return WinB, nil
	case "tie", "draw":
		return Tie, nil
	}
	return 0, fmt.Errorf("invalid winner %q: want a, b or tie", s)
}

func (o Outcome) String() string {
	switch o {
	case WinA:
		return "a"
	case WinB:
		return "b"
	default:
		return "tie"
	}
}

// Scores returns the actual scores of A and B.
func (o Outcome) Scores() (float64, float64) {
	switch o {
	case WinA:
		return 1, 0
	case WinB:
		return 0, 1
	default:
		return 0.5, 0.5
	}
}

// ExpectedScore is the probability that a player rated a beats one rated b.
func ExpectedScore(a, b float64) float64 {
	return 1 / (1 + math.Pow(10, (b-a)/400))
}

// NewRating moves rating r by KFactor towards the actual score.
func NewRating(r, expected, actual float64) float64 {
	return r + KFactor*(actual-expected)
}

// UpdateRatings returns both players' new ratings after one match.
func UpdateRatings(a, b float64, outcome Outcome) (float64, float64) {
	scoreA, scoreB := outcome.Scores()
	return NewRating(a, ExpectedScore(a, b), scoreA), NewRating(b, ExpectedScore(b, a), scoreB)
}

// RankName labels a rating band.
func RankName(rating int) string {
	switch {
	case rating < 800:
		return "Novice"
	case rating < 1000:
		return "Beginner"
	case rating < 1200:
		return "Intermediate"
	case rating < 1400:
		return "Advanced"
	case rating < 1600:
		return "Expert"
	case rating < 1800:
		return "Master"
	default:
		return "Grandmaster"
	}
}
