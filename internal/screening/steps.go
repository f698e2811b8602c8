package screening

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/kruglovb/ai-interviewer/internal/sheets"
)

// DefaultMinimumFitScore keeps only candidates scored at or above 70%.
const DefaultMinimumFitScore = 0.7

type missingContactFilter struct{}

// NewMissingContact creates a filter that removes resumes without a phone number.
func NewMissingContact() Filter {
	return &missingContactFilter{}
}

func (f *missingContactFilter) Name() string { return "missing_contact" }

func (f *missingContactFilter) Disable(string) {}

func (f *missingContactFilter) IsEnabled() bool { return true }

func (f *missingContactFilter) Validate(*Config) error { return nil }

func (f *missingContactFilter) Apply(_ context.Context, deps Deps, c *Candidates) (*Candidates, Step, error) {
	initial := c.Len()

	kept := make([]*Candidate, 0, initial)
	var excluded []string
	for _, candidate := range c.Items {
		if candidate.Resume.Phone() == "" {
			excluded = append(excluded, candidate.Resume.ID)
			continue
		}
		kept = append(kept, candidate)
	}
	c.Items = kept

	if deps.Logger != nil && len(excluded) > 0 {
		deps.Logger.Info("excluding resumes without a phone. It is impossible to invite them",
			zap.Strings("excluded_resumes", excluded),
			zap.Int("resumes_left", c.Len()),
		)
	}

	return c, Step{Initial: initial, Dropped: len(excluded), Left: c.Len()}, nil
}

func (f *missingContactFilter) Status() Status {
	return Status{Name: f.Name(), Enabled: true}
}

type alreadyScrapedFilter struct{}

// NewAlreadyScraped creates a filter that removes resumes already present in the candidate table.
func NewAlreadyScraped() Filter {
	return &alreadyScrapedFilter{}
}

func (f *alreadyScrapedFilter) Name() string { return "already_scraped" }

func (f *alreadyScrapedFilter) Disable(string) {}

func (f *alreadyScrapedFilter) IsEnabled() bool { return true }

func (f *alreadyScrapedFilter) Validate(*Config) error { return nil }

func (f *alreadyScrapedFilter) Apply(_ context.Context, deps Deps, c *Candidates) (*Candidates, Step, error) {
	initial := c.Len()

	if deps.Table == nil {
		return c, Step{}, fmt.Errorf("candidate table is required")
	}

	kept := make([]*Candidate, 0, initial)
	var excluded []string
	for _, candidate := range c.Items {
		_, err := deps.Table.FindRowByColumn(sheets.ColLink, candidate.Resume.AlternateURL)
		switch err {
		case nil:
			excluded = append(excluded, candidate.Resume.ID)
		case sheets.ErrRowNotFound:
			kept = append(kept, candidate)
		default:
			return c, Step{}, fmt.Errorf("lookup by link: %w", err)
		}
	}
	c.Items = kept

	if deps.Logger != nil && len(excluded) > 0 {
		deps.Logger.Info("excluding resumes already present in the table",
			zap.Strings("excluded_resumes", excluded),
			zap.Int("resumes_left", c.Len()),
		)
	}

	return c, Step{Initial: initial, Dropped: len(excluded), Left: c.Len()}, nil
}

type aiFitFilter struct {
	enabled bool
	reason  string
	minimum float64
}

// NewAIFit creates the AI-based screening step.
func NewAIFit(cfg *Config) Filter {
	minimum := cfg.MinimumFitScore
	if minimum == 0 {
		minimum = DefaultMinimumFitScore
	}
	return &aiFitFilter{enabled: true, minimum: minimum}
}

func (f *aiFitFilter) Name() string { return "ai_fit" }

func (f *aiFitFilter) Disable(reason string) {
	f.enabled = false
	f.reason = reason
}

func (f *aiFitFilter) IsEnabled() bool { return f.enabled }

func (f *aiFitFilter) Validate(cfg *Config) error {
	if cfg.MinimumFitScore < 0 || cfg.MinimumFitScore > 1 {
		return fmt.Errorf("minimum fit score must be within [0, 1], got %v", cfg.MinimumFitScore)
	}
	return nil
}

func (f *aiFitFilter) Apply(ctx context.Context, deps Deps, c *Candidates) (*Candidates, Step, error) {
	initial := c.Len()

	if deps.Matcher == nil {
		return c, Step{}, fmt.Errorf("matcher is required")
	}

	minimum := int(f.minimum * 100)
	approved := make([]*Candidate, 0, initial)

	for _, candidate := range c.Items {
		percent, analysis, err := deps.Matcher.QuickMatch(ctx, candidate.Resume.Text(), deps.VacancyText)
		if err != nil {
			deps.Logger.Warn("AI evaluation failed. Resume will be skipped.",
				zap.String("resume_id", candidate.Resume.ID),
				zap.Error(err),
			)
			continue
		}

		candidate.MatchPercent = percent
		candidate.Analysis = analysis

		if percent < minimum {
			deps.Logger.Info("resume rejected by AI provider",
				zap.String("resume_id", candidate.Resume.ID),
				zap.Int("match_percent", percent),
			)
			continue
		}

		deps.Logger.Info("resume approved by AI",
			zap.String("resume_id", candidate.Resume.ID),
			zap.Int("match_percent", percent),
		)

		approved = append(approved, candidate)
	}

	c.Items = approved

	deps.Logger.Info("AI screening completed",
		zap.Int("initial_resumes", initial),
		zap.Int("approved_resumes", len(approved)),
	)

	return c, Step{Initial: initial, Dropped: initial - c.Len(), Left: c.Len()}, nil
}

func (f *aiFitFilter) Status() Status {
	details := map[string]string{
		"minimum_fit_score": strconv.FormatFloat(f.minimum, 'f', -1, 64),
	}
	return Status{Name: f.Name(), Enabled: f.enabled, Reason: f.reason, Details: details}
}
