package domain

// CounterSource names which UserStats counter an achievement reads.
type CounterSource string

const (
	CounterQuiz          CounterSource = "quiz"
	CounterLearning      CounterSource = "learning"
	CounterCollaborative CounterSource = "collaborative"
	CounterParasocial    CounterSource = "parasocial"
)

// Achievement is a static medal definition with bronze ≤ silver ≤ gold
// thresholds against one counter.
type Achievement struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Bronze      int           `json:"bronze"`
	Silver      int           `json:"silver"`
	Gold        int           `json:"gold"`
	Counter     CounterSource `json:"counter"`
}

// Achievements is the static medal catalog.
var Achievements = []Achievement{
	{
		ID:          "quizmaster",
		Title:       "Quiz-master",
		Description: "Complete quiz and practice sessions",
		Bronze:      10, Silver: 25, Gold: 50,
		Counter: CounterQuiz,
	},
	{
		ID:          "scholar",
		Title:       "Grand Scholar",
		Description: "Focus on learning and deep questions",
		Bronze:      20, Silver: 50, Gold: 100,
		Counter: CounterLearning,
	},
	{
		ID:          "architect",
		Title:       "The Architect",
		Description: "Co-plan and collaborate with AI",
		Bronze:      15, Silver: 40, Gold: 80,
		Counter: CounterCollaborative,
	},
}

// CounterValue reads the counter this achievement tracks.
func (a Achievement) CounterValue(st UserStats) int {
	switch a.Counter {
	case CounterQuiz:
		return st.QuizCount
	case CounterLearning:
		return st.LearningCount
	case CounterCollaborative:
		return st.CollaborativeCount
	case CounterParasocial:
		return st.ParasocialCount
	}
	return 0
}
