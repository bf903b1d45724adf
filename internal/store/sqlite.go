package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"starbuddy/internal/domain"
	"starbuddy/internal/shared"
)

// stateKey is the versioned key of the single local session record. Bump the
// suffix when the persisted layout changes incompatibly.
const stateKey = "starbuddy_v3"

// SQLiteStore implements Repository using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite creates a new SQLite-backed repository.
func NewSQLite(dbPath string) (Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// Open database with WAL mode for better concurrency.
	dsn := dbPath + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS session_state (
		state_key TEXT PRIMARY KEY,
		health INTEGER NOT NULL,
		coins INTEGER NOT NULL,
		active_outfit_id TEXT,
		owned_outfits_json TEXT NOT NULL DEFAULT '[]',
		parasocial_count INTEGER NOT NULL DEFAULT 0,
		learning_count INTEGER NOT NULL DEFAULT 0,
		collaborative_count INTEGER NOT NULL DEFAULT 0,
		quiz_count INTEGER NOT NULL DEFAULT 0,
		day_reward_claimed INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS activities (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		state_key TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		prompt TEXT NOT NULL,
		response TEXT NOT NULL,
		score INTEGER NOT NULL,
		feedback TEXT NOT NULL,
		category TEXT NOT NULL,
		is_quiz INTEGER NOT NULL DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS idx_activities_key_seq ON activities(state_key, seq);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// LoadState restores the session state, defaulting field by field. A corrupted
// column never rejects the whole record.
func (s *SQLiteStore) LoadState(ctx context.Context, historyLimit int) (*domain.SessionState, error) {
	state := domain.DefaultState()

	query := `
		SELECT health, coins, active_outfit_id, owned_outfits_json,
		       parasocial_count, learning_count, collaborative_count, quiz_count,
		       day_reward_claimed
		FROM session_state WHERE state_key = ?`

	row := s.db.QueryRowContext(ctx, query, stateKey)

	var health, coins sql.NullInt64
	var activeOutfitID, ownedJSON sql.NullString
	var parasocial, learning, collaborative, quiz sql.NullInt64
	var claimed sql.NullBool

	err := row.Scan(
		&health, &coins, &activeOutfitID, &ownedJSON,
		&parasocial, &learning, &collaborative, &quiz,
		&claimed,
	)
	if err == sql.ErrNoRows {
		return state, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan session state: %w", err)
	}

	if health.Valid {
		state.Health = domain.ClampHealth(int(health.Int64))
	}
	if coins.Valid && coins.Int64 > 0 {
		state.Coins = int(coins.Int64)
	}
	if ownedJSON.Valid && ownedJSON.String != "" {
		var owned []string
		if jsonErr := json.Unmarshal([]byte(ownedJSON.String), &owned); jsonErr != nil {
			slog.Warn("malformed owned outfits, resetting", "error", jsonErr)
		} else {
			state.OwnedOutfits = owned
		}
	}
	if activeOutfitID.Valid && state.Owns(activeOutfitID.String) {
		state.ActiveOutfitID = activeOutfitID.String
	}
	state.Stats = domain.UserStats{
		ParasocialCount:    nonNegative(parasocial),
		LearningCount:      nonNegative(learning),
		CollaborativeCount: nonNegative(collaborative),
		QuizCount:          nonNegative(quiz),
	}
	state.DayRewardClaimed = claimed.Valid && claimed.Bool

	history, err := s.loadActivities(ctx, historyLimit)
	if err != nil {
		return nil, err
	}
	state.History = history

	return state, nil
}

func nonNegative(v sql.NullInt64) int {
	if !v.Valid || v.Int64 < 0 {
		return 0
	}
	return int(v.Int64)
}

// loadActivities returns history records newest first.
func (s *SQLiteStore) loadActivities(ctx context.Context, limit int) ([]domain.ActivityLog, error) {
	query := `
		SELECT id, created_at, prompt, response, score, feedback, category, is_quiz
		FROM activities WHERE state_key = ? ORDER BY seq DESC`
	args := []interface{}{stateKey}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query activities: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			slog.Warn("failed to close activities rows", "error", closeErr)
		}
	}()

	history := []domain.ActivityLog{}
	for rows.Next() {
		var a domain.ActivityLog
		var createdAt int64
		var category string
		if err := rows.Scan(
			&a.ID, &createdAt, &a.Prompt, &a.Response,
			&a.Score, &a.Feedback, &category, &a.IsQuiz,
		); err != nil {
			return nil, fmt.Errorf("scan activity row: %w", err)
		}
		a.CreatedAt = time.UnixMilli(createdAt)
		a.Category = domain.Category(category)
		history = append(history, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate activities: %w", err)
	}

	return history, nil
}

// SaveState upserts the scalar session record. Retries on SQLite concurrency
// errors with exponential backoff.
func (s *SQLiteStore) SaveState(ctx context.Context, state *domain.SessionState) error {
	maxRetries := 3
	baseDelay := 100 * time.Millisecond

	var err error
	for i := 0; i < maxRetries; i++ {
		err = s.saveStateOnce(ctx, state)
		if err == nil {
			return nil
		}
		if shared.IsSQLiteConflictError(err) && i < maxRetries-1 {
			delay := baseDelay * time.Duration(1<<i)
			slog.Debug("SaveState hit SQLITE_BUSY, retrying", "attempt", i+1, "delay", delay)
			time.Sleep(delay)
			continue
		}
		break
	}
	return fmt.Errorf("save session state: %w", err)
}

func (s *SQLiteStore) saveStateOnce(ctx context.Context, state *domain.SessionState) error {
	ownedJSON, err := json.Marshal(state.OwnedOutfits)
	if err != nil {
		return fmt.Errorf("encode owned outfits: %w", err)
	}

	var activeOutfitID interface{}
	if state.ActiveOutfitID != "" {
		activeOutfitID = state.ActiveOutfitID
	}

	now := time.Now().Unix()
	query := `
		INSERT INTO session_state (
			state_key, health, coins, active_outfit_id, owned_outfits_json,
			parasocial_count, learning_count, collaborative_count, quiz_count,
			day_reward_claimed, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(state_key) DO UPDATE SET
			health = excluded.health,
			coins = excluded.coins,
			active_outfit_id = excluded.active_outfit_id,
			owned_outfits_json = excluded.owned_outfits_json,
			parasocial_count = excluded.parasocial_count,
			learning_count = excluded.learning_count,
			collaborative_count = excluded.collaborative_count,
			quiz_count = excluded.quiz_count,
			day_reward_claimed = excluded.day_reward_claimed,
			updated_at = excluded.updated_at`

	_, err = s.db.ExecContext(ctx, query,
		stateKey, state.Health, state.Coins, activeOutfitID, string(ownedJSON),
		state.Stats.ParasocialCount, state.Stats.LearningCount,
		state.Stats.CollaborativeCount, state.Stats.QuizCount,
		state.DayRewardClaimed, now, now,
	)
	if err != nil {
		return fmt.Errorf("upsert session state: %w", err)
	}
	return nil
}

// AppendActivity appends one activity record to the history.
func (s *SQLiteStore) AppendActivity(ctx context.Context, activity *domain.ActivityLog) error {
	query := `
		INSERT INTO activities (id, state_key, created_at, prompt, response, score, feedback, category, is_quiz)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, query,
		activity.ID, stateKey, activity.CreatedAt.UnixMilli(),
		activity.Prompt, activity.Response, activity.Score,
		activity.Feedback, string(activity.Category), activity.IsQuiz,
	)
	if err != nil {
		return fmt.Errorf("append activity: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}
