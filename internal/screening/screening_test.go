package screening

import (
	"context"
	"errors"
	"testing"

	"github.com/kruglovb/ai-interviewer/internal/headhunter"
	"github.com/kruglovb/ai-interviewer/internal/sheets"

	"go.uber.org/zap"
)

type stubMatcher struct {
	percents map[string]int
	err      error
}

func (s *stubMatcher) QuickMatch(_ context.Context, resume, _ string) (int, string, error) {
	if s.err != nil {
		return 0, "", s.err
	}
	return s.percents[resume], "анализ", nil
}

func candidateWithPhone(id, phone string) *Candidate {
	details := &headhunter.ResumeDetails{}
	details.ID = id
	details.Title = "title-" + id
	if phone != "" {
		details.Contact = append(details.Contact, struct {
			Type struct {
				ID   string `json:"id,omitempty"`
				Name string `json:"name,omitempty"`
			} `json:"type,omitempty"`
			Value     any  `json:"value,omitempty"`
			Preferred bool `json:"preferred,omitempty"`
		}{
			Type: struct {
				ID   string `json:"id,omitempty"`
				Name string `json:"name,omitempty"`
			}{ID: "cell"},
			Value:     map[string]any{"formatted": phone},
			Preferred: true,
		})
	}
	return &Candidate{Resume: details}
}

func TestMissingContactFilter(t *testing.T) {
	c := &Candidates{Items: []*Candidate{
		candidateWithPhone("r1", "+79161234567"),
		candidateWithPhone("r2", ""),
	}}

	filter := NewMissingContact()
	out, step, err := filter.Apply(context.Background(), Deps{Logger: zap.NewNop()}, c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if step.Dropped != 1 || out.Len() != 1 {
		t.Fatalf("expected 1 dropped, got step %+v", step)
	}
	if out.Items[0].Resume.ID != "r1" {
		t.Fatalf("wrong candidate kept: %s", out.Items[0].Resume.ID)
	}
}

func TestAlreadyScrapedFilter(t *testing.T) {
	table := sheets.NewMemory([]string{sheets.ColCode, sheets.ColLink})
	if err := table.AppendRow([]string{"C1", "https://hh.ru/resume/r1"}); err != nil {
		t.Fatalf("seeding table: %v", err)
	}

	known := candidateWithPhone("r1", "+7")
	known.Resume.AlternateURL = "https://hh.ru/resume/r1"
	fresh := candidateWithPhone("r2", "+7")
	fresh.Resume.AlternateURL = "https://hh.ru/resume/r2"

	c := &Candidates{Items: []*Candidate{known, fresh}}

	filter := NewAlreadyScraped()
	out, step, err := filter.Apply(context.Background(), Deps{Logger: zap.NewNop(), Table: table}, c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if step.Dropped != 1 || out.Len() != 1 {
		t.Fatalf("expected duplicate dropped, got %+v", step)
	}
	if out.Items[0].Resume.ID != "r2" {
		t.Fatalf("wrong candidate kept: %s", out.Items[0].Resume.ID)
	}
}

func TestAIFitFilterThreshold(t *testing.T) {
	strong := candidateWithPhone("r1", "+7")
	weak := candidateWithPhone("r2", "+7")

	matcher := &stubMatcher{percents: map[string]int{
		strong.Resume.Text(): 85,
		weak.Resume.Text():   40,
	}}

	c := &Candidates{Items: []*Candidate{strong, weak}}

	filter := NewAIFit(&Config{MinimumFitScore: 0.7})
	out, step, err := filter.Apply(context.Background(), Deps{Logger: zap.NewNop(), Matcher: matcher}, c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if step.Left != 1 {
		t.Fatalf("expected 1 candidate left, got %+v", step)
	}
	if out.Items[0].Resume.ID != "r1" {
		t.Fatalf("wrong candidate kept")
	}
	if out.Items[0].MatchPercent != 85 {
		t.Fatalf("match percent not recorded")
	}
}

func TestAIFitFilterSkipsFailedEvaluations(t *testing.T) {
	c := &Candidates{Items: []*Candidate{candidateWithPhone("r1", "+7")}}

	filter := NewAIFit(&Config{})
	out, _, err := filter.Apply(context.Background(), Deps{Logger: zap.NewNop(), Matcher: &stubMatcher{err: errors.New("quota")}}, c)
	if err != nil {
		t.Fatalf("evaluation failure must not abort the pipeline: %v", err)
	}
	if out.Len() != 0 {
		t.Fatalf("failed evaluations must drop the candidate")
	}
}

func TestRunExecutesEnabledSteps(t *testing.T) {
	c := &Candidates{Items: []*Candidate{
		candidateWithPhone("r1", "+79161234567"),
		candidateWithPhone("r2", ""),
	}}

	steps := []Filter{NewMissingContact(), NewAIFit(&Config{})}
	DisableByName(steps, "ai_fit", "no matcher in this test")

	out, err := Run(context.Background(), &Config{}, Deps{Logger: zap.NewNop()}, steps, c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Len() != 1 {
		t.Fatalf("expected 1 candidate after run, got %d", out.Len())
	}

	statuses := Describe(steps)
	if len(statuses) != 2 {
		t.Fatalf("expected 2 statuses")
	}
	if statuses[1].Enabled {
		t.Fatalf("disabled filter must report disabled")
	}
}
