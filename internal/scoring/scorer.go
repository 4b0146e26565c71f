// Package scoring computes the match score between a skill set and a job
// description using fuzzy partial-ratio similarity.
package scoring

import (
	"errors"
	"fmt"
	"math"
	"strings"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"
)

// Policy selects how individual skill ratios are combined into a score.
type Policy string

const (
	// PolicyAverage averages the partial ratios of all skills and
	// normalizes to [0,1], rounded to 2 decimal places.
	PolicyAverage Policy = "average"
	// PolicyFraction counts skills whose partial ratio exceeds the cutoff
	// and returns matched/total.
	PolicyFraction Policy = "fraction"

	// DefaultMatchCutoff is the partial-ratio percentage a skill must
	// exceed to count as matched under PolicyFraction.
	DefaultMatchCutoff = 80
)

// ErrNoSkills is returned when scoring is attempted with an empty skill set.
// Callers are expected to treat a skill-less resume as terminal long before
// scoring, so hitting this is a programming error, not a user condition.
var ErrNoSkills = errors.New("empty skill set")

// Scorer scores job descriptions against a fixed policy configuration.
type Scorer struct {
	Policy      Policy
	MatchCutoff int
}

// New validates the policy name and returns a Scorer. An empty policy
// defaults to PolicyAverage, an unset cutoff to DefaultMatchCutoff.
func New(policy Policy, matchCutoff int) (*Scorer, error) {
	switch policy {
	case "":
		policy = PolicyAverage
	case PolicyAverage, PolicyFraction:
	default:
		return nil, fmt.Errorf("unknown scoring policy: %q", policy)
	}

	if matchCutoff <= 0 {
		matchCutoff = DefaultMatchCutoff
	}

	return &Scorer{Policy: policy, MatchCutoff: matchCutoff}, nil
}

// Score returns a score in [0,1] for the description against the skill set.
func (s *Scorer) Score(skills []string, description string) (float64, error) {
	if len(skills) == 0 {
		return 0, ErrNoSkills
	}

	desc := strings.ToLower(description)

	switch s.Policy {
	case PolicyFraction:
		matched := 0
		for _, skill := range skills {
			if fuzzy.PartialRatio(strings.ToLower(skill), desc) > s.MatchCutoff {
				matched++
			}
		}
		return float64(matched) / float64(len(skills)), nil

	default:
		sum := 0
		for _, skill := range skills {
			sum += fuzzy.PartialRatio(strings.ToLower(skill), desc)
		}
		avg := float64(sum) / float64(len(skills)) / 100
		return math.Round(avg*100) / 100, nil
	}
}
