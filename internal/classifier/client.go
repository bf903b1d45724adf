// Package classifier wraps the external AI-usage audit call. It is the single
// external-I/O boundary of the core: every failure mode collapses to a fixed
// fallback verdict so callers never see an error result without a verdict.
package classifier

import (
	"context"
	"errors"

	"starbuddy/internal/domain"
)

// ErrDisabled is returned by the Disabled client so the caller takes the
// fallback path.
var ErrDisabled = errors.New("classifier disabled: no API key configured")

// Client classifies one prompt/response pair.
type Client interface {
	Classify(ctx context.Context, prompt, responseText string) (domain.Verdict, error)
}

// Fallback is the verdict applied whenever classification fails for any
// reason. Neutral score, no counter movement beyond the collaborative bucket.
func Fallback() domain.Verdict {
	return domain.Verdict{
		Score:    0,
		Feedback: "That was a weird one. Let's stay on track!",
		Category: domain.CategoryCollaborative,
		IsQuiz:   false,
	}
}

// Disabled is a Client for deployments without an API key. It always errors,
// so every submission resolves to the fallback verdict.
type Disabled struct{}

// Classify implements Client.
func (Disabled) Classify(context.Context, string, string) (domain.Verdict, error) {
	return domain.Verdict{}, ErrDisabled
}
