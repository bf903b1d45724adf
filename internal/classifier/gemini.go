package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"google.golang.org/genai"

	"starbuddy/internal/domain"
)

const systemInstruction = `You are an AI Usage Auditor. Your goal is to categorize and score the quality of a user's interaction with AI.

CATEGORIES:
1. 'learning': Use for educational prompts, practice questions, requests for explanation, or depth-seeking behavior.
2. 'collaborative': Use for modifying existing work, essay planning, code refactoring, or co-authoring summaries.
3. 'parasocial': Use for social-only chatting, personifying the AI, or non-productive emotional roleplay.
4. 'shortcut' / 'lazy': Use for cheating, asking for direct answers without explanation.

Provide a JSON response with:
1. score: Calculated health impact (-25 to +25).
2. feedback: A short, witty Duolingo-style comment.
3. category: One of ['learning', 'collaborative', 'parasocial', 'shortcut', 'lazy'].
4. isQuiz: Boolean, true ONLY if the user is generating/answering practice questions, flashcards, or self-testing material.`

// verdictSchema constrains the model to the exact verdict shape.
var verdictSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"score":    {Type: genai.TypeNumber},
		"feedback": {Type: genai.TypeString},
		"category": {
			Type: genai.TypeString,
			Enum: []string{"learning", "collaborative", "parasocial", "shortcut", "lazy"},
		},
		"isQuiz": {Type: genai.TypeBoolean},
	},
	Required: []string{"score", "feedback", "category", "isQuiz"},
}

// Gemini is a Client backed by the Gemini API.
type Gemini struct {
	client    *genai.Client
	modelName string
	timeout   time.Duration
	logger    *slog.Logger
}

// NewGemini creates a Gemini-backed classifier.
func NewGemini(ctx context.Context, apiKey, modelName string, timeout time.Duration, logger *slog.Logger) (*Gemini, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if modelName == "" {
		modelName = "gemini-2.5-flash"
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return &Gemini{
		client:    client,
		modelName: modelName,
		timeout:   timeout,
		logger:    logger,
	}, nil
}

// Classify sends one prompt/response pair to the model and parses the
// structured verdict. Any transport, parse, or validation failure is returned
// as an error; the session service maps all of them to Fallback().
func (g *Gemini) Classify(ctx context.Context, prompt, responseText string) (domain.Verdict, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	contents := []*genai.Content{
		genai.NewContentFromText(fmt.Sprintf(
			"Analyze this AI interaction.\nUSER PROMPT: %q\nAI RESPONSE: %q",
			prompt, responseText,
		), genai.RoleUser),
	}

	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemInstruction, genai.RoleUser),
		ResponseMIMEType:  "application/json",
		ResponseSchema:    verdictSchema,
	}

	res, err := g.client.Models.GenerateContent(ctx, g.modelName, contents, cfg)
	if err != nil {
		return domain.Verdict{}, fmt.Errorf("generate content: %w", err)
	}

	verdict, err := parseVerdict(res.Text())
	if err != nil {
		g.logger.Warn("classifier returned invalid verdict", "error", err)
		return domain.Verdict{}, err
	}
	return verdict, nil
}

// rawVerdict is the wire shape. Score arrives as a JSON number, which the
// model is free to emit with a fractional part.
type rawVerdict struct {
	Score    *float64 `json:"score"`
	Feedback string   `json:"feedback"`
	Category string   `json:"category"`
	IsQuiz   bool     `json:"isQuiz"`
}

// parseVerdict decodes and validates the model's JSON output.
func parseVerdict(text string) (domain.Verdict, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return domain.Verdict{}, fmt.Errorf("empty response text")
	}

	var raw rawVerdict
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return domain.Verdict{}, fmt.Errorf("decode verdict: %w", err)
	}

	if raw.Score == nil {
		return domain.Verdict{}, fmt.Errorf("verdict missing score")
	}
	score := int(math.Round(*raw.Score))
	if score < domain.MinScore || score > domain.MaxScore {
		return domain.Verdict{}, fmt.Errorf("score %d outside [%d, %d]", score, domain.MinScore, domain.MaxScore)
	}

	category := domain.Category(raw.Category)
	if !category.Valid() {
		return domain.Verdict{}, fmt.Errorf("unknown category %q", raw.Category)
	}

	if strings.TrimSpace(raw.Feedback) == "" {
		return domain.Verdict{}, fmt.Errorf("verdict missing feedback")
	}

	return domain.Verdict{
		Score:    score,
		Feedback: raw.Feedback,
		Category: category,
		IsQuiz:   raw.IsQuiz,
	}, nil
}
