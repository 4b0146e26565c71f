package ai

import "context"

// CandidateProfile is what the matcher knows about the person: the resume
// identity, the ranked skill terms and the raw resume text.
type CandidateProfile struct {
	ResumeName string
	Skills     []string
	ResumeText string
}

// JobPosting is the posting under evaluation.
type JobPosting struct {
	URL         string
	Description string
	Score       float64
}

type FitAssessment struct {
	Fit    bool
	Score  float64
	Reason string
	Raw    string
}

type Matcher interface {
	Evaluate(ctx context.Context, profile *CandidateProfile, posting *JobPosting) (*FitAssessment, error)
}
