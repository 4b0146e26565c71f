package scoring

import (
	"errors"
	"testing"
)

func TestNewRejectsUnknownPolicy(t *testing.T) {
	if _, err := New("median", 0); err == nil {
		t.Fatalf("expected error for unknown policy")
	}
}

func TestNewDefaults(t *testing.T) {
	s, err := New("", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Policy != PolicyAverage {
		t.Fatalf("expected default policy average, got %q", s.Policy)
	}
	if s.MatchCutoff != DefaultMatchCutoff {
		t.Fatalf("expected default cutoff %d, got %d", DefaultMatchCutoff, s.MatchCutoff)
	}
}

func TestScoreEmptySkills(t *testing.T) {
	s, _ := New(PolicyAverage, 0)
	if _, err := s.Score(nil, "some description"); !errors.Is(err, ErrNoSkills) {
		t.Fatalf("expected ErrNoSkills, got %v", err)
	}
}

func TestAverageExactSubstrings(t *testing.T) {
	s, _ := New(PolicyAverage, 0)

	desc := "We are hiring a Python developer with Django, AWS and Docker experience."
	score, err := s.Score([]string{"python", "django", "aws", "docker"}, desc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Every skill is an exact substring, so each partial ratio is 100.
	if score != 1.0 {
		t.Fatalf("expected score 1.0, got %v", score)
	}
}

func TestAverageBoundsAndRounding(t *testing.T) {
	s, _ := New(PolicyAverage, 0)

	score, err := s.Score([]string{"python", "qqqqqqqq"}, "python shop")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if score < 0 || score > 1 {
		t.Fatalf("score out of bounds: %v", score)
	}

	// Two decimal places at most.
	if rounded := float64(int(score*100+0.5)) / 100; rounded != score {
		t.Fatalf("score %v is not rounded to 2 decimals", score)
	}
}

func TestAverageMonotonic(t *testing.T) {
	s, _ := New(PolicyAverage, 0)
	desc := "golang kubernetes terraform"

	weak, err := s.Score([]string{"golang", "zzzzzz", "yyyyyy"}, desc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	strong, err := s.Score([]string{"golang", "kubernetes", "terraform"}, desc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if strong < weak {
		t.Fatalf("more matching skills lowered the score: weak=%v strong=%v", weak, strong)
	}
}

func TestFractionExactCount(t *testing.T) {
	s, _ := New(PolicyFraction, 80)

	desc := "senior python developer, django and postgresql required"
	score, err := s.Score([]string{"python", "django", "kubernetes", "terraform"}, desc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// python and django are matched verbatim; the other two are nowhere near.
	if score != 0.5 {
		t.Fatalf("expected 2/4 = 0.5, got %v", score)
	}
}

func TestFractionAllMatched(t *testing.T) {
	s, _ := New(PolicyFraction, 80)

	score, err := s.Score([]string{"go", "docker"}, "go and docker all day")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if score != 1.0 {
		t.Fatalf("expected 1.0, got %v", score)
	}
}

func TestFractionNoneMatched(t *testing.T) {
	s, _ := New(PolicyFraction, 80)

	score, err := s.Score([]string{"cobol", "fortran"}, "react frontend position")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if score != 0 {
		t.Fatalf("expected 0, got %v", score)
	}
}
