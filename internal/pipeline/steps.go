package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/resumatch/resumatch/internal/ai"
	"github.com/resumatch/resumatch/internal/match"
)

type emptyDescriptionFilter struct{}

// NewEmptyDescription creates a filter that removes candidates whose
// description could not be retrieved. They carry nothing to score.
func NewEmptyDescription() Filter {
	return &emptyDescriptionFilter{}
}

func (f *emptyDescriptionFilter) Name() string { return "empty_description" }

func (f *emptyDescriptionFilter) IsEnabled() bool { return true }

func (f *emptyDescriptionFilter) Apply(_ context.Context, deps Deps, c *match.Candidates) (*match.Candidates, Step, error) {
	initial := c.Len()

	kept := make([]*match.Candidate, 0, initial)
	var dropped []string
	for _, item := range c.Items {
		if item.Description == "" {
			dropped = append(dropped, item.URL)
			continue
		}
		kept = append(kept, item)
	}
	c.Items = kept

	if len(dropped) > 0 {
		deps.Logger.Debug("dropping candidates without descriptions",
			zap.Strings("urls", dropped),
		)
	}

	return c, Step{Initial: initial, Dropped: len(dropped), Left: c.Len()}, nil
}

type ledgerHistoryFilter struct{}

// NewLedgerHistory creates a filter that removes candidates already present
// in the resume's ledger from previous runs.
func NewLedgerHistory() Filter {
	return &ledgerHistoryFilter{}
}

func (f *ledgerHistoryFilter) Name() string { return "ledger_history" }

func (f *ledgerHistoryFilter) IsEnabled() bool { return true }

func (f *ledgerHistoryFilter) Apply(_ context.Context, deps Deps, c *match.Candidates) (*match.Candidates, Step, error) {
	initial := c.Len()

	if deps.History == nil {
		return c, Step{}, fmt.Errorf("ledger history is required")
	}

	existing, err := deps.History.ExistingURLs(deps.Resume)
	if err != nil {
		return c, Step{}, fmt.Errorf("loading ledger history: %w", err)
	}

	removed := c.DropByURL(existing)
	if len(removed) > 0 {
		deps.Logger.Info("excluding candidates already in the ledger",
			zap.Strings("excluded_urls", removed),
			zap.Int("candidates_left", c.Len()),
		)
	}

	return c, Step{Initial: initial, Dropped: len(removed), Left: c.Len()}, nil
}

type scoreThresholdFilter struct {
	threshold float64
}

// NewScoreThreshold creates a filter that scores every candidate against the
// skill set and removes those below the threshold. Survivors carry their
// score.
func NewScoreThreshold(threshold float64) Filter {
	return &scoreThresholdFilter{threshold: threshold}
}

func (f *scoreThresholdFilter) Name() string { return "score_threshold" }

func (f *scoreThresholdFilter) IsEnabled() bool { return true }

func (f *scoreThresholdFilter) Apply(_ context.Context, deps Deps, c *match.Candidates) (*match.Candidates, Step, error) {
	initial := c.Len()

	if deps.Scorer == nil {
		return c, Step{}, fmt.Errorf("scorer is required")
	}
	if len(deps.Skills) == 0 {
		return c, Step{}, fmt.Errorf("skill set is empty")
	}

	kept := make([]*match.Candidate, 0, initial)
	for _, item := range c.Items {
		score, err := deps.Scorer.Score(deps.Skills, item.Description)
		if err != nil {
			return c, Step{}, fmt.Errorf("scoring %s: %w", item.URL, err)
		}

		if score < f.threshold {
			deps.Logger.Debug("candidate below threshold",
				zap.String("url", item.URL),
				zap.Float64("score", score),
				zap.Float64("threshold", f.threshold),
			)
			continue
		}

		item.Score = score
		kept = append(kept, item)
	}
	c.Items = kept

	return c, Step{Initial: initial, Dropped: initial - c.Len(), Left: c.Len()}, nil
}

type aiFitFilter struct {
	disabled bool
	reason   string
}

// NewAIFit creates the AI-based filtering step. When enabled it asks the
// matcher for a fit assessment per candidate; unfit candidates are dropped.
// Evaluation failures keep the candidate: the step is advisory and must
// never lose matches to a flaky provider.
func NewAIFit(enabled bool) Filter {
	f := &aiFitFilter{}
	if !enabled {
		f.disabled = true
		f.reason = "disabled by configuration"
	}
	return f
}

func (f *aiFitFilter) Name() string { return "ai_fit" }

func (f *aiFitFilter) IsEnabled() bool { return !f.disabled }

func (f *aiFitFilter) Apply(ctx context.Context, deps Deps, c *match.Candidates) (*match.Candidates, Step, error) {
	initial := c.Len()

	if deps.Matcher == nil {
		deps.Logger.Info("ai matcher is not configured; skipping ai_fit filter")
		return c, Step{Initial: initial, Dropped: 0, Left: c.Len()}, nil
	}
	if deps.Profile == nil {
		return c, Step{}, fmt.Errorf("candidate profile is required for AI evaluation")
	}

	kept := make([]*match.Candidate, 0, initial)
	for _, item := range c.Items {
		assessment, err := deps.Matcher.Evaluate(ctx, deps.Profile, &ai.JobPosting{
			URL:         item.URL,
			Description: item.Description,
			Score:       item.Score,
		})
		if err != nil {
			deps.Logger.Warn("AI evaluation failed",
				zap.String("url", item.URL),
				zap.Error(err),
			)
			kept = append(kept, item)
			continue
		}

		if !assessment.Fit {
			deps.Logger.Info("candidate rejected by AI",
				zap.String("url", item.URL),
				zap.Float64("ai_score", assessment.Score),
				zap.String("reason", assessment.Reason),
			)
			continue
		}

		item.AI = assessment
		kept = append(kept, item)
	}
	c.Items = kept

	return c, Step{Initial: initial, Dropped: initial - c.Len(), Left: c.Len()}, nil
}
