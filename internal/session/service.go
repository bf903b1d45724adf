// Package session owns the mutable session state and the update rules for
// every user-triggered event. All mutations go through the Service and are
// persisted before they return.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"starbuddy/internal/achievement"
	"starbuddy/internal/classifier"
	"starbuddy/internal/domain"
	"starbuddy/internal/store"
)

var (
	// ErrEmptyPrompt rejects submissions with no prompt text.
	ErrEmptyPrompt = errors.New("prompt is empty")

	// ErrSubmitInFlight rejects a submission while another one is still
	// waiting on the classifier.
	ErrSubmitInFlight = errors.New("submission already in progress")

	// ErrNotOwned rejects equipping an outfit that has not been purchased.
	ErrNotOwned = errors.New("outfit not owned")
)

// Daily reward tiers, gated on health at claim time.
const (
	rewardHighHealth = 90
	rewardLowHealth  = 75
)

// Service is the single-session state store. One instance per process.
type Service struct {
	repo       store.Repository
	classifier classifier.Client
	logger     *slog.Logger

	mu    sync.Mutex
	state *domain.SessionState

	// submitMu serializes classifications: at most one in flight.
	submitMu sync.Mutex

	onChange func(domain.SessionState)
}

// NewService restores persisted state and returns a ready service.
func NewService(ctx context.Context, repo store.Repository, cl classifier.Client, historyLimit int, logger *slog.Logger) (*Service, error) {
	if logger == nil {
		logger = slog.Default()
	}

	state, err := repo.LoadState(ctx, historyLimit)
	if err != nil {
		return nil, fmt.Errorf("restore session state: %w", err)
	}

	logger.Info("Session state restored",
		"health", state.Health,
		"coins", state.Coins,
		"history_len", len(state.History),
	)

	return &Service{
		repo:       repo,
		classifier: cl,
		logger:     logger,
		state:      state,
	}, nil
}

// OnChange registers a callback invoked with a state snapshot after every
// successful mutation. At most one subscriber; set before serving traffic.
func (s *Service) OnChange(fn func(domain.SessionState)) {
	s.onChange = fn
}

// State returns a snapshot copy of the current session state.
func (s *Service) State() domain.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Medals evaluates the medal standings from the current counters.
func (s *Service) Medals() []achievement.Standing {
	s.mu.Lock()
	stats := s.state.Stats
	s.mu.Unlock()
	return achievement.Evaluate(domain.Achievements, stats)
}

// SubmitActivity classifies one prompt/response pair and folds the verdict
// into the session state. Classifier failures never surface: they resolve to
// the fixed fallback verdict, so the caller always gets a record back.
func (s *Service) SubmitActivity(ctx context.Context, prompt, responseText string) (*domain.ActivityLog, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, ErrEmptyPrompt
	}
	if !s.submitMu.TryLock() {
		return nil, ErrSubmitInFlight
	}
	defer s.submitMu.Unlock()

	verdict, err := s.classifier.Classify(ctx, prompt, responseText)
	if err != nil {
		s.logger.Warn("classification failed, using fallback verdict", "error", err)
		verdict = classifier.Fallback()
	}

	activity := &domain.ActivityLog{
		ID:        uuid.NewString(),
		CreatedAt: time.Now(),
		Prompt:    prompt,
		Response:  responseText,
		Score:     verdict.Score,
		Feedback:  verdict.Feedback,
		Category:  verdict.Category,
		IsQuiz:    verdict.IsQuiz,
	}

	s.mu.Lock()
	s.state.History = append([]domain.ActivityLog{*activity}, s.state.History...)
	s.state.ApplyScore(verdict.Score)
	s.state.Stats.CountVerdict(verdict)
	s.mu.Unlock()

	if err := s.repo.AppendActivity(ctx, activity); err != nil {
		s.logger.Error("failed to persist activity", "error", err, "activity_id", activity.ID)
	}
	s.persist(ctx)
	s.notify()

	return activity, nil
}

// ClaimDailyReward awards coins based on current health and consumes the
// per-session claim, even when the award is zero. Claiming twice is a no-op.
func (s *Service) ClaimDailyReward(ctx context.Context) (int, error) {
	s.mu.Lock()
	if s.state.DayRewardClaimed {
		s.mu.Unlock()
		return 0, nil
	}

	awarded := 0
	switch {
	case s.state.Health >= rewardHighHealth:
		awarded = 2
	case s.state.Health >= rewardLowHealth:
		awarded = 1
	}
	s.state.Coins += awarded
	s.state.DayRewardClaimed = true
	s.mu.Unlock()

	s.persist(ctx)
	s.notify()

	s.logger.Info("Daily reward claimed", "awarded", awarded)
	return awarded, nil
}

// StartNewSession re-opens the daily-reward gate. Health, coins, and history
// are untouched.
func (s *Service) StartNewSession(ctx context.Context) error {
	s.mu.Lock()
	s.state.DayRewardClaimed = false
	s.mu.Unlock()

	s.persist(ctx)
	s.notify()
	return nil
}

// PurchaseItem buys an outfit. Returns false without mutating anything when
// the id is unknown, already owned, or unaffordable.
func (s *Service) PurchaseItem(ctx context.Context, outfitID string) (bool, error) {
	outfit := domain.OutfitByID(outfitID)
	if outfit == nil {
		return false, nil
	}

	s.mu.Lock()
	if s.state.Owns(outfitID) || s.state.Coins < outfit.Price {
		s.mu.Unlock()
		return false, nil
	}
	s.state.Coins -= outfit.Price
	s.state.OwnedOutfits = append(s.state.OwnedOutfits, outfitID)
	s.mu.Unlock()

	s.persist(ctx)
	s.notify()

	s.logger.Info("Outfit purchased", "outfit_id", outfitID, "price", outfit.Price)
	return true, nil
}

// EquipItem sets the active outfit. An empty id unequips; equipping the
// currently active outfit also unequips (explicit toggle). The outfit must
// already be owned.
func (s *Service) EquipItem(ctx context.Context, outfitID string) error {
	s.mu.Lock()
	if outfitID != "" && !s.state.Owns(outfitID) {
		s.mu.Unlock()
		return fmt.Errorf("equip %q: %w", outfitID, ErrNotOwned)
	}
	if outfitID != "" && s.state.ActiveOutfitID == outfitID {
		s.state.ActiveOutfitID = ""
	} else {
		s.state.ActiveOutfitID = outfitID
	}
	s.mu.Unlock()

	s.persist(ctx)
	s.notify()
	return nil
}

// persist writes the scalar state. Persistence failures are logged, not
// surfaced: the in-memory state is already updated and the worst case is a
// stale record on the next restart.
func (s *Service) persist(ctx context.Context) {
	s.mu.Lock()
	snapshot := s.state.Clone()
	s.mu.Unlock()

	if err := s.repo.SaveState(ctx, &snapshot); err != nil {
		s.logger.Error("failed to persist session state", "error", err)
	}
}

func (s *Service) notify() {
	if s.onChange == nil {
		return
	}
	s.onChange(s.State())
}
