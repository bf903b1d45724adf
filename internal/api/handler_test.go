//nolint:revive // "api" package name is intentionally concise for this layer.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"

	"starbuddy/internal/domain"
	"starbuddy/internal/session"
)

type memRepo struct {
	mu    sync.Mutex
	state *domain.SessionState
}

func (m *memRepo) LoadState(_ context.Context, _ int) (*domain.SessionState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == nil {
		return domain.DefaultState(), nil
	}
	clone := m.state.Clone()
	return &clone, nil
}

func (m *memRepo) SaveState(_ context.Context, state *domain.SessionState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := state.Clone()
	m.state = &clone
	return nil
}

func (m *memRepo) AppendActivity(_ context.Context, _ *domain.ActivityLog) error { return nil }
func (m *memRepo) Ping(_ context.Context) error                                  { return nil }
func (m *memRepo) Close() error                                                  { return nil }

type stubClassifier struct {
	verdict domain.Verdict
	err     error
}

func (s *stubClassifier) Classify(_ context.Context, _, _ string) (domain.Verdict, error) {
	return s.verdict, s.err
}

func newTestRouter(t *testing.T, repo *memRepo, cl *stubClassifier) chi.Router {
	t.Helper()
	svc, err := session.NewService(context.Background(), repo, cl, 0, nil)
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}
	r := chi.NewRouter()
	NewHandler(svc).RegisterRoutes(r)
	return r
}

func postJSON(t *testing.T, r http.Handler, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		t.Fatalf("encode request body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestJSON(t *testing.T) {
	w := httptest.NewRecorder()
	data := map[string]string{"foo": "bar"}

	JSON(w, http.StatusOK, data)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}

	var got map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if got["foo"] != "bar" {
		t.Errorf("Expected foo=bar, got %v", got["foo"])
	}
}

func TestGetState(t *testing.T) {
	r := newTestRouter(t, &memRepo{}, &stubClassifier{})

	req := httptest.NewRequest(http.MethodGet, "/api/state", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var state domain.SessionState
	decode(t, w, &state)
	if state.Health != domain.DefaultHealth {
		t.Errorf("expected default health, got %d", state.Health)
	}
}

func TestSubmitActivity(t *testing.T) {
	cl := &stubClassifier{verdict: domain.Verdict{
		Score:    15,
		Feedback: "Nice one!",
		Category: domain.CategoryLearning,
	}}
	r := newTestRouter(t, &memRepo{}, cl)

	w := postJSON(t, r, "/api/activities", map[string]string{
		"prompt":   "explain interfaces",
		"response": "interfaces are...",
	})

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var activity domain.ActivityLog
	decode(t, w, &activity)
	if activity.Score != 15 || activity.Feedback != "Nice one!" {
		t.Errorf("unexpected activity: %+v", activity)
	}
}

func TestSubmitActivityEmptyPrompt(t *testing.T) {
	r := newTestRouter(t, &memRepo{}, &stubClassifier{})

	w := postJSON(t, r, "/api/activities", map[string]string{"prompt": "  "})
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for empty prompt, got %d", w.Code)
	}
}

func TestSubmitActivityBadBody(t *testing.T) {
	r := newTestRouter(t, &memRepo{}, &stubClassifier{})

	req := httptest.NewRequest(http.MethodPost, "/api/activities", bytes.NewBufferString("{not json"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for malformed body, got %d", w.Code)
	}
}

func TestClaimReward(t *testing.T) {
	repo := &memRepo{state: domain.DefaultState()}
	repo.state.Health = 92
	r := newTestRouter(t, repo, &stubClassifier{})

	w := postJSON(t, r, "/api/reward/claim", struct{}{})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp struct {
		Awarded int  `json:"awarded"`
		Claimed bool `json:"claimed"`
	}
	decode(t, w, &resp)
	if resp.Awarded != 2 || !resp.Claimed {
		t.Errorf("expected awarded=2 claimed=true, got %+v", resp)
	}

	// Second claim awards nothing but stays claimed.
	w = postJSON(t, r, "/api/reward/claim", struct{}{})
	decode(t, w, &resp)
	if resp.Awarded != 0 || !resp.Claimed {
		t.Errorf("expected awarded=0 claimed=true on repeat, got %+v", resp)
	}
}

func TestPurchaseInsufficientCoins(t *testing.T) {
	repo := &memRepo{state: domain.DefaultState()}
	repo.state.Coins = 5
	r := newTestRouter(t, repo, &stubClassifier{})

	// Bowtie costs 8.
	w := postJSON(t, r, "/api/store/purchase", map[string]string{"outfit_id": "bowtie"})
	if w.Code != http.StatusOK {
		t.Fatalf("business rejection must stay HTTP 200, got %d", w.Code)
	}

	var resp struct {
		Success bool `json:"success"`
		Coins   int  `json:"coins"`
	}
	decode(t, w, &resp)
	if resp.Success {
		t.Error("expected success=false")
	}
	if resp.Coins != 5 {
		t.Errorf("expected coins unchanged at 5, got %d", resp.Coins)
	}
}

func TestPurchaseAndEquipFlow(t *testing.T) {
	repo := &memRepo{state: domain.DefaultState()}
	repo.state.Coins = 30
	r := newTestRouter(t, repo, &stubClassifier{})

	w := postJSON(t, r, "/api/store/purchase", map[string]string{"outfit_id": "crown"})
	var purchase struct {
		Success bool `json:"success"`
		Coins   int  `json:"coins"`
	}
	decode(t, w, &purchase)
	if !purchase.Success || purchase.Coins != 5 {
		t.Fatalf("expected success with 5 coins left, got %+v", purchase)
	}

	w = postJSON(t, r, "/api/store/equip", map[string]string{"outfit_id": "crown"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var equip struct {
		ActiveOutfitID string `json:"active_outfit_id"`
	}
	decode(t, w, &equip)
	if equip.ActiveOutfitID != "crown" {
		t.Errorf("expected crown active, got %q", equip.ActiveOutfitID)
	}
}

func TestEquipUnowned(t *testing.T) {
	r := newTestRouter(t, &memRepo{}, &stubClassifier{})

	w := postJSON(t, r, "/api/store/equip", map[string]string{"outfit_id": "crown"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unowned outfit, got %d", w.Code)
	}
}

func TestGetCatalog(t *testing.T) {
	r := newTestRouter(t, &memRepo{}, &stubClassifier{})

	req := httptest.NewRequest(http.MethodGet, "/api/catalog", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp struct {
		Outfits []domain.Outfit `json:"outfits"`
	}
	decode(t, w, &resp)
	if len(resp.Outfits) != 5 {
		t.Errorf("expected 5 catalog outfits, got %d", len(resp.Outfits))
	}
}

func TestGetMedals(t *testing.T) {
	repo := &memRepo{state: domain.DefaultState()}
	repo.state.Stats.LearningCount = 20
	r := newTestRouter(t, repo, &stubClassifier{})

	req := httptest.NewRequest(http.MethodGet, "/api/medals", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp struct {
		Medals []struct {
			Achievement domain.Achievement `json:"achievement"`
			Tier        string             `json:"tier"`
		} `json:"medals"`
	}
	decode(t, w, &resp)
	if len(resp.Medals) != 3 {
		t.Fatalf("expected 3 medals, got %d", len(resp.Medals))
	}
	for _, m := range resp.Medals {
		if m.Achievement.ID == "scholar" && m.Tier != "bronze" {
			t.Errorf("scholar: expected bronze at 20, got %s", m.Tier)
		}
	}
}
