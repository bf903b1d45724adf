// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"

	"starbuddy/internal/domain"
)

// Repository defines the interface for persisting session state.
type Repository interface {
	// LoadState restores the persisted session state. Missing or malformed
	// fields fall back to defaults individually; a missing record yields
	// domain.DefaultState. historyLimit caps how many activity records are
	// loaded (0 = unlimited), newest first.
	LoadState(ctx context.Context, historyLimit int) (*domain.SessionState, error)

	// SaveState persists the scalar session state (health, coins, outfits,
	// counters, daily-claim flag). Activity history is written separately
	// through AppendActivity.
	SaveState(ctx context.Context, state *domain.SessionState) error

	// AppendActivity appends one immutable activity record to the history.
	AppendActivity(ctx context.Context, activity *domain.ActivityLog) error

	// Ping verifies database connectivity.
	Ping(ctx context.Context) error

	// Close closes the database connection.
	Close() error
}
