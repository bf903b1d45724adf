// Package achievement derives tiered medal standings from the session's
// category counters. Evaluation is pure: no stored state, no side effects.
package achievement

import (
	"starbuddy/internal/domain"
)

// Tier is the medal level earned for one achievement.
type Tier string

const (
	TierNone   Tier = "none"
	TierBronze Tier = "bronze"
	TierSilver Tier = "silver"
	TierGold   Tier = "gold"
)

// Standing is the evaluated status of one achievement.
type Standing struct {
	Achievement domain.Achievement `json:"achievement"`
	Tier        Tier               `json:"tier"`
	Value       int                `json:"value"`
	NextGoal    int                `json:"next_goal"`
	Progress    float64            `json:"progress"`
}

// AtMax reports whether the gold tier has been reached (display shows "MAX").
func (s Standing) AtMax() bool {
	return s.Tier == TierGold
}

// Evaluate computes the standing for every definition against the current
// counters. Progress runs toward the next unmet threshold and caps at 1.0
// once gold is reached.
func Evaluate(defs []domain.Achievement, stats domain.UserStats) []Standing {
	standings := make([]Standing, 0, len(defs))
	for _, def := range defs {
		value := def.CounterValue(stats)
		standings = append(standings, Standing{
			Achievement: def,
			Tier:        tierFor(def, value),
			Value:       value,
			NextGoal:    nextGoal(def, value),
			Progress:    progress(def, value),
		})
	}
	return standings
}

func tierFor(def domain.Achievement, value int) Tier {
	switch {
	case value >= def.Gold:
		return TierGold
	case value >= def.Silver:
		return TierSilver
	case value >= def.Bronze:
		return TierBronze
	}
	return TierNone
}

// nextGoal is the smallest unmet threshold, or gold if already at gold.
func nextGoal(def domain.Achievement, value int) int {
	switch {
	case value < def.Bronze:
		return def.Bronze
	case value < def.Silver:
		return def.Silver
	case value < def.Gold:
		return def.Gold
	}
	return def.Gold
}

func progress(def domain.Achievement, value int) float64 {
	goal := nextGoal(def, value)
	if goal <= 0 {
		return 1.0
	}
	p := float64(value) / float64(goal)
	if p > 1.0 {
		return 1.0
	}
	return p
}
