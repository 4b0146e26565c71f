// Package pipeline runs candidate postings through a sequence of filtering
// steps: each step drops candidates it rejects and passes the rest on.
package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/resumatch/resumatch/internal/ai"
	"github.com/resumatch/resumatch/internal/match"
	"github.com/resumatch/resumatch/internal/scoring"
)

// History answers which URLs are already recorded for a resume.
type History interface {
	ExistingURLs(resume string) (map[string]struct{}, error)
}

// Filter represents a single filtering step applied to candidates.
type Filter interface {
	Name() string
	IsEnabled() bool
	Apply(ctx context.Context, deps Deps, c *match.Candidates) (*match.Candidates, Step, error)
}

// Deps aggregates dependencies shared across all filtering steps.
type Deps struct {
	Logger  *zap.Logger
	Resume  string
	Skills  []string
	Scorer  *scoring.Scorer
	History History
	Matcher ai.Matcher
	Profile *ai.CandidateProfile
}

// Step describes the result of executing a filtering step.
type Step struct {
	Initial int
	Dropped int
	Left    int
}

// Run executes the supplied filters sequentially, returning the surviving
// candidates.
func Run(ctx context.Context, deps Deps, steps []Filter, c *match.Candidates) (*match.Candidates, error) {
	for _, step := range steps {
		if !step.IsEnabled() {
			deps.Logger.Info("filter disabled", zap.String("name", step.Name()))
			continue
		}

		next, info, err := step.Apply(ctx, deps, c)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", step.Name(), err)
		}

		deps.Logger.Info("filter step",
			zap.String("name", step.Name()),
			zap.Int("initial", info.Initial),
			zap.Int("dropped", info.Dropped),
			zap.Int("left", info.Left),
		)

		c = next
	}

	return c, nil
}
