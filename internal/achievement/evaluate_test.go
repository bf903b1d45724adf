package achievement

import (
	"math"
	"testing"

	"starbuddy/internal/domain"
)

var quizmaster = domain.Achievement{
	ID:     "quizmaster",
	Bronze: 10, Silver: 25, Gold: 50,
	Counter: domain.CounterQuiz,
}

func evaluateOne(t *testing.T, def domain.Achievement, stats domain.UserStats) Standing {
	t.Helper()
	standings := Evaluate([]domain.Achievement{def}, stats)
	if len(standings) != 1 {
		t.Fatalf("expected 1 standing, got %d", len(standings))
	}
	return standings[0]
}

func TestEvaluateTiers(t *testing.T) {
	tests := []struct {
		value int
		tier  Tier
	}{
		{0, TierNone},
		{9, TierNone},
		{10, TierBronze},
		{24, TierBronze},
		{25, TierSilver},
		{49, TierSilver},
		{50, TierGold},
		{999, TierGold},
	}

	for _, tt := range tests {
		st := evaluateOne(t, quizmaster, domain.UserStats{QuizCount: tt.value})
		if st.Tier != tt.tier {
			t.Errorf("value %d: expected tier %s, got %s", tt.value, tt.tier, st.Tier)
		}
	}
}

func TestEvaluateNextGoal(t *testing.T) {
	tests := []struct {
		value int
		goal  int
	}{
		{0, 10},
		{9, 10},
		{10, 25},
		{25, 50},
		{50, 50},  // at gold, goal stays at gold
		{200, 50},
	}

	for _, tt := range tests {
		st := evaluateOne(t, quizmaster, domain.UserStats{QuizCount: tt.value})
		if st.NextGoal != tt.goal {
			t.Errorf("value %d: expected next goal %d, got %d", tt.value, tt.goal, st.NextGoal)
		}
	}
}

func TestEvaluateProgress(t *testing.T) {
	tests := []struct {
		value    int
		progress float64
	}{
		{0, 0},
		{5, 0.5},
		{10, 0.4},  // 10 toward silver 25
		{40, 0.8},  // 40 toward gold 50
		{50, 1.0},
		{500, 1.0}, // capped
	}

	for _, tt := range tests {
		st := evaluateOne(t, quizmaster, domain.UserStats{QuizCount: tt.value})
		if math.Abs(st.Progress-tt.progress) > 1e-9 {
			t.Errorf("value %d: expected progress %.2f, got %.2f", tt.value, tt.progress, st.Progress)
		}
	}
}

func TestEvaluateAtMax(t *testing.T) {
	if evaluateOne(t, quizmaster, domain.UserStats{QuizCount: 49}).AtMax() {
		t.Error("expected not at max below gold")
	}
	if !evaluateOne(t, quizmaster, domain.UserStats{QuizCount: 50}).AtMax() {
		t.Error("expected at max at gold")
	}
}

func TestEvaluateIsPure(t *testing.T) {
	stats := domain.UserStats{QuizCount: 30, LearningCount: 20, CollaborativeCount: 15}

	first := Evaluate(domain.Achievements, stats)
	second := Evaluate(domain.Achievements, stats)

	if len(first) != len(domain.Achievements) {
		t.Fatalf("expected %d standings, got %d", len(domain.Achievements), len(first))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("standing %d differs across calls: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestEvaluateFullCatalog(t *testing.T) {
	stats := domain.UserStats{QuizCount: 10, LearningCount: 100, CollaborativeCount: 39}

	byID := map[string]Standing{}
	for _, st := range Evaluate(domain.Achievements, stats) {
		byID[st.Achievement.ID] = st
	}

	if got := byID["quizmaster"].Tier; got != TierBronze {
		t.Errorf("quizmaster: expected bronze, got %s", got)
	}
	if got := byID["scholar"].Tier; got != TierGold {
		t.Errorf("scholar: expected gold, got %s", got)
	}
	if got := byID["architect"].Tier; got != TierBronze {
		t.Errorf("architect: expected bronze, got %s", got)
	}
}
