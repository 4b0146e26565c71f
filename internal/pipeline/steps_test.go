package pipeline

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/resumatch/resumatch/internal/ai"
	"github.com/resumatch/resumatch/internal/match"
	"github.com/resumatch/resumatch/internal/scoring"
)

type stubHistory struct {
	urls map[string]struct{}
	err  error
}

func (s *stubHistory) ExistingURLs(string) (map[string]struct{}, error) {
	return s.urls, s.err
}

type stubMatcher struct {
	fit bool
	err error
}

func (s *stubMatcher) Evaluate(context.Context, *ai.CandidateProfile, *ai.JobPosting) (*ai.FitAssessment, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &ai.FitAssessment{Fit: s.fit, Score: 0.9}, nil
}

func candidates(items ...*match.Candidate) *match.Candidates {
	return &match.Candidates{Items: items}
}

func baseDeps() Deps {
	scorer, _ := scoring.New(scoring.PolicyAverage, 0)
	return Deps{
		Logger: zap.NewNop(),
		Resume: "john_doe",
		Skills: []string{"python", "django", "aws", "docker"},
		Scorer: scorer,
	}
}

func TestEmptyDescriptionDropsFailedFetches(t *testing.T) {
	deps := baseDeps()
	c := candidates(
		&match.Candidate{URL: "https://jobs.example.com/view/1", Description: "python django aws docker"},
		&match.Candidate{URL: "https://jobs.example.com/view/2", Description: ""},
	)

	out, step, err := NewEmptyDescription().Apply(context.Background(), deps, c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if step.Dropped != 1 || out.Len() != 1 {
		t.Fatalf("unexpected step: %+v, left %d", step, out.Len())
	}
	if out.Items[0].URL != "https://jobs.example.com/view/1" {
		t.Fatalf("wrong candidate dropped")
	}
}

func TestLedgerHistoryDropsKnownURLs(t *testing.T) {
	deps := baseDeps()
	deps.History = &stubHistory{urls: map[string]struct{}{
		"https://jobs.example.com/view/1": {},
	}}

	c := candidates(
		&match.Candidate{URL: "https://jobs.example.com/view/1", Description: "x"},
		&match.Candidate{URL: "https://jobs.example.com/view/2", Description: "y"},
	)

	out, step, err := NewLedgerHistory().Apply(context.Background(), deps, c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if step.Dropped != 1 || out.Len() != 1 {
		t.Fatalf("unexpected result: step %+v, left %d", step, out.Len())
	}
}

func TestLedgerHistoryPropagatesError(t *testing.T) {
	deps := baseDeps()
	deps.History = &stubHistory{err: errors.New("disk gone")}

	_, _, err := NewLedgerHistory().Apply(context.Background(), deps, candidates())
	if err == nil {
		t.Fatalf("expected error")
	}
}

func TestScoreThresholdFiltersAndAnnotates(t *testing.T) {
	deps := baseDeps()
	c := candidates(
		&match.Candidate{URL: "https://jobs.example.com/view/1", Description: "python django aws docker shop"},
		&match.Candidate{URL: "https://jobs.example.com/view/2", Description: "zzz qqq rrr"},
	)

	out, step, err := NewScoreThreshold(0.4).Apply(context.Background(), deps, c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Len() != 1 {
		t.Fatalf("expected 1 survivor, got %d (step %+v)", out.Len(), step)
	}
	if out.Items[0].Score != 1.0 {
		t.Fatalf("expected survivor annotated with score 1.0, got %v", out.Items[0].Score)
	}
}

func TestScoreThresholdRequiresSkills(t *testing.T) {
	deps := baseDeps()
	deps.Skills = nil

	_, _, err := NewScoreThreshold(0.4).Apply(context.Background(), deps, candidates(
		&match.Candidate{URL: "u", Description: "d"},
	))
	if err == nil {
		t.Fatalf("expected error for empty skill set")
	}
}

func TestAIFitDisabled(t *testing.T) {
	f := NewAIFit(false)
	if f.IsEnabled() {
		t.Fatalf("expected filter to be disabled")
	}
}

func TestAIFitDropsUnfit(t *testing.T) {
	deps := baseDeps()
	deps.Matcher = &stubMatcher{fit: false}
	deps.Profile = &ai.CandidateProfile{ResumeName: "john_doe", Skills: deps.Skills}

	out, _, err := NewAIFit(true).Apply(context.Background(), deps, candidates(
		&match.Candidate{URL: "u", Description: "d", Score: 0.8},
	))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Len() != 0 {
		t.Fatalf("expected unfit candidate dropped")
	}
}

func TestAIFitKeepsCandidateOnEvaluationError(t *testing.T) {
	deps := baseDeps()
	deps.Matcher = &stubMatcher{err: errors.New("quota exceeded")}
	deps.Profile = &ai.CandidateProfile{ResumeName: "john_doe"}

	out, _, err := NewAIFit(true).Apply(context.Background(), deps, candidates(
		&match.Candidate{URL: "u", Description: "d"},
	))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Len() != 1 {
		t.Fatalf("candidate lost on evaluation error")
	}
}

func TestRunExecutesSequentially(t *testing.T) {
	deps := baseDeps()
	deps.History = &stubHistory{urls: map[string]struct{}{}}

	c := candidates(
		&match.Candidate{URL: "https://jobs.example.com/view/1", Description: "python django aws docker"},
		&match.Candidate{URL: "https://jobs.example.com/view/2", Description: ""},
	)

	steps := []Filter{
		NewEmptyDescription(),
		NewLedgerHistory(),
		NewScoreThreshold(0.4),
		NewAIFit(false),
	}

	out, err := Run(context.Background(), deps, steps, c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Len() != 1 {
		t.Fatalf("expected 1 candidate after pipeline, got %d", out.Len())
	}
}
