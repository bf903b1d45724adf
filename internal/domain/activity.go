// Package domain contains core domain types for the Starbuddy application.
package domain

import (
	"time"
)

// Category classifies one logged AI interaction.
type Category string

const (
	CategoryLearning      Category = "learning"
	CategoryCollaborative Category = "collaborative"
	CategoryParasocial    Category = "parasocial"
	CategoryShortcut      Category = "shortcut"
	CategoryLazy          Category = "lazy"
)

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryLearning, CategoryCollaborative, CategoryParasocial,
		CategoryShortcut, CategoryLazy:
		return true
	}
	return false
}

// Score bounds enforced on every classifier verdict.
const (
	MinScore = -25
	MaxScore = 25
)

// Verdict is the structured classifier output for one prompt/response pair.
type Verdict struct {
	Score    int      `json:"score"`
	Feedback string   `json:"feedback"`
	Category Category `json:"category"`
	IsQuiz   bool     `json:"isQuiz"`
}

// ActivityLog is one audited AI interaction. Records are immutable once
// created and the history is append-only, newest first.
type ActivityLog struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Prompt    string    `json:"prompt"`
	Response  string    `json:"response"`
	Score     int       `json:"score"`
	Feedback  string    `json:"feedback"`
	Category  Category  `json:"category"`
	IsQuiz    bool      `json:"is_quiz"`
}
