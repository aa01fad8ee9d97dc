package report

import (
	"strconv"
	"strings"
)

// Score bounds on the five-point scale.
const (
	MinScore     = 1
	MaxScore     = 5
	DefaultScore = 3
)

// NeutralColor is used whenever a score is outside 1..5.
const NeutralColor = "#be985e"

var levelScores = map[string]int{
	"low":         1,
	"medium-low":  2,
	"medium":      3,
	"medium-high": 4,
	"high":        5,
}

var extendedScores = map[string]int{
	"very low":  1,
	"very_low":  1,
	"moderate":  3,
	"very high": 5,
	"very_high": 5,
	"l0":        1,
	"l1":        3,
	"l2":        5,
}

var scoreColors = [...]string{"#d4b896", "#c9a87a", "#be985e", "#b3884d", "#b97a3c"}

var scoreLabels = [...]string{"Very Low", "Low", "Medium", "High", "Very High"}

func normalize(label string) string {
	return strings.ToLower(strings.TrimSpace(label))
}

// LevelScore maps low, medium-low, medium, medium-high and high (any case) to
// 1..5. Anything else, including the empty string, maps to 3.
func LevelScore(label string) int {
	if score, ok := levelScores[normalize(label)]; ok {
		return score
	}
	return DefaultScore
}

// ScoreLabel resolves label against the five-bucket scale first and then the
// extended vocabulary (very low/high, moderate, L0-L2, integers clamped to
// 1..5). The bool is false when the midpoint default was used.
func ScoreLabel(label string) (int, bool) {
	key := normalize(label)
	if score, ok := levelScores[key]; ok {
		return score, true
	}
	if score, ok := extendedScores[key]; ok {
		return score, true
	}
	if n, err := strconv.Atoi(key); err == nil {
		return clamp(n), true
	}
	return DefaultScore, false
}

// ColorForScore returns the bucket colour, darker as the score rises.
func ColorForScore(score int) string {
	if score < MinScore || score > MaxScore {
		return NeutralColor
	}
	return scoreColors[score-1]
}

// LevelLabel returns "Very Low" through "Very High".
func LevelLabel(score int) string {
	if score < MinScore || score > MaxScore {
		return scoreLabels[DefaultScore-1]
	}
	return scoreLabels[score-1]
}

// Position places score on a 0..100 track.
func Position(score int) float64 {
	return float64(clamp(score)-1) / float64(MaxScore-1) * 100
}

func clamp(n int) int {
	if n < MinScore {
		return MinScore
	}
	if n > MaxScore {
		return MaxScore
	}
	return n
}
