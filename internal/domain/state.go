package domain

// Health meter bounds. Health is clamped into this range after every update.
const (
	MinHealth = 0
	MaxHealth = 100

	// DefaultHealth is the vitality a fresh session starts with.
	DefaultHealth = 80
)

// UserStats tracks how many qualifying interactions fell into each
// medal-relevant bucket. Counters only ever increase.
type UserStats struct {
	ParasocialCount    int `json:"parasocial_count"`
	LearningCount      int `json:"learning_count"`
	CollaborativeCount int `json:"collaborative_count"`
	QuizCount          int `json:"quiz_count"`
}

// SessionState is the full mutable state of the single local session.
// It is owned by the session service and mutated only through its operations.
type SessionState struct {
	Health           int           `json:"health"`
	Coins            int           `json:"coins"`
	OwnedOutfits     []string      `json:"owned_outfits"`
	ActiveOutfitID   string        `json:"active_outfit_id,omitempty"`
	History          []ActivityLog `json:"history"`
	Stats            UserStats     `json:"stats"`
	DayRewardClaimed bool          `json:"day_reward_claimed"`
}

// DefaultState returns the state a brand new session starts with.
func DefaultState() *SessionState {
	return &SessionState{
		Health:       DefaultHealth,
		OwnedOutfits: []string{},
		History:      []ActivityLog{},
	}
}

// Owns reports whether the outfit has been purchased.
func (s *SessionState) Owns(outfitID string) bool {
	for _, id := range s.OwnedOutfits {
		if id == outfitID {
			return true
		}
	}
	return false
}

// ApplyScore shifts health by delta and clamps it back into [MinHealth, MaxHealth].
func (s *SessionState) ApplyScore(delta int) {
	s.Health = ClampHealth(s.Health + delta)
}

// ClampHealth forces h into the valid health range.
func ClampHealth(h int) int {
	if h < MinHealth {
		return MinHealth
	}
	if h > MaxHealth {
		return MaxHealth
	}
	return h
}

// CountVerdict bumps the counter matching the verdict's category, plus the
// quiz counter when flagged. Shortcut and lazy interactions feed no counter.
func (st *UserStats) CountVerdict(v Verdict) {
	switch v.Category {
	case CategoryLearning:
		st.LearningCount++
	case CategoryCollaborative:
		st.CollaborativeCount++
	case CategoryParasocial:
		st.ParasocialCount++
	}
	if v.IsQuiz {
		st.QuizCount++
	}
}

// Clone returns a deep copy safe to hand outside the session service.
func (s *SessionState) Clone() SessionState {
	out := *s
	out.OwnedOutfits = append([]string{}, s.OwnedOutfits...)
	out.History = append([]ActivityLog{}, s.History...)
	return out
}
