// Package scraper pulls resumes from hh.ru, screens them against the
// vacancy and appends approved candidates to the candidate table.
package scraper

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kruglovb/ai-interviewer/internal/headhunter"
	"github.com/kruglovb/ai-interviewer/internal/screening"
	"github.com/kruglovb/ai-interviewer/internal/sheets"
	"github.com/kruglovb/ai-interviewer/internal/utils"

	"go.uber.org/zap"
)

const defaultPause = 2 * time.Second

type Scraper struct {
	hh      *headhunter.Client
	matcher screening.Matcher
	table   sheets.RowStore
	logger  *zap.Logger

	// Pause between per-resume detail fetches.
	Pause time.Duration
}

// Report summarizes one scrape run.
type Report struct {
	Found    int
	Fetched  int
	Approved int
	Appended int
}

func New(hh *headhunter.Client, matcher screening.Matcher, table sheets.RowStore, logger *zap.Logger) *Scraper {
	return &Scraper{
		hh:      hh,
		matcher: matcher,
		table:   table,
		logger:  logger,
		Pause:   defaultPause,
	}
}

// Run searches resumes, screens them and appends every approved
// candidate to the table with the vacancy text and an access code.
func (s *Scraper) Run(ctx context.Context, params *headhunter.ResumeSearchParams, vacancyText string, cfg *screening.Config) (*Report, error) {
	report := &Report{}

	resumes, err := s.hh.SearchResumes(params)
	if err != nil {
		return nil, fmt.Errorf("search resumes: %w", err)
	}
	report.Found = resumes.Len()
	s.logger.Info("resume search completed", zap.Int("found", report.Found))

	details := make([]*headhunter.ResumeDetails, 0, resumes.Len())
	for i, resume := range resumes.Items {
		full, err := s.hh.GetResumeDetails(resume.ID)
		if err != nil {
			s.logger.Warn("fetching resume details failed. It will be skipped.",
				zap.String("resume_id", resume.ID),
				zap.Error(err),
			)
			continue
		}
		details = append(details, full)

		if i < resumes.Len()-1 {
			utils.WaitFor(ctx, s.Pause)
		}
	}
	report.Fetched = len(details)

	steps := []screening.Filter{
		screening.NewAlreadyScraped(),
		screening.NewMissingContact(),
		screening.NewAIFit(cfg),
	}

	deps := screening.Deps{
		HH:          s.hh,
		Logger:      s.logger,
		Matcher:     s.matcher,
		Table:       s.table,
		VacancyText: vacancyText,
	}

	approved, err := screening.Run(ctx, cfg, deps, steps, screening.FromResumes(details))
	if err != nil {
		return nil, fmt.Errorf("screening: %w", err)
	}
	report.Approved = approved.Len()

	for _, candidate := range approved.Items {
		row := candidateRow(candidate, vacancyText)
		if err := s.table.AppendRow(row); err != nil {
			s.logger.Error("appending candidate row failed",
				zap.String("resume_id", candidate.Resume.ID),
				zap.Error(err),
			)
			continue
		}
		report.Appended++
	}

	s.logger.Info("scrape run finished",
		zap.Int("found", report.Found),
		zap.Int("fetched", report.Fetched),
		zap.Int("approved", report.Approved),
		zap.Int("appended", report.Appended),
	)

	return report, nil
}

// AccessCode derives the one-time access code for a scraped candidate:
// the digits of the contact phone.
func AccessCode(details *headhunter.ResumeDetails) string {
	var b strings.Builder
	for _, r := range details.Phone() {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// candidateRow lays the candidate out in CandidateHeaders order.
func candidateRow(candidate *screening.Candidate, vacancyText string) []string {
	d := candidate.Resume

	sections := map[string]string{
		"resume-personal-name":            d.FullName(),
		"resume-personal-gender":          d.Gender.Name,
		"resume-personal-age":             intOrEmpty(d.Age),
		"resume-personal-birthday":        d.BirthDate,
		"resume-personal-address":         d.Area.Name,
		"resume-update-date":              d.UpdatedAt,
		"resume-serp_resume-item-content": d.Title,
		"resume-specializations":          specializations(d),
		"resume-experience-block":         experienceBlock(d),
		"skills-table":                    strings.Join(d.SkillSet, ", "),
		"resume-languages-block":          languagesBlock(d),
		"resume-about-block":              d.About,
		"resume-recommendations-block":    recommendationsBlock(d),
		"resume-education-block":          educationBlock(d),
		"resume-education-courses-block":  coursesBlock(d),
		"resume-block-certificate":        certificatesBlock(d),
	}

	row := make([]string, 0, len(sheets.CandidateHeaders()))
	for _, header := range sheets.CandidateHeaders() {
		switch header {
		case sheets.ColCode:
			row = append(row, AccessCode(d))
		case sheets.ColLink:
			row = append(row, d.AlternateURL)
		case sheets.ColPhone:
			row = append(row, d.Phone())
		case sheets.ColCompliance:
			row = append(row, fmt.Sprintf("%d%%", candidate.MatchPercent))
		case sheets.ColVacancyText:
			row = append(row, vacancyText)
		default:
			row = append(row, sections[header])
		}
	}

	return row
}

func intOrEmpty(v int) string {
	if v == 0 {
		return ""
	}
	return fmt.Sprintf("%d", v)
}

func specializations(d *headhunter.ResumeDetails) string {
	names := make([]string, 0, len(d.Specialization))
	for _, s := range d.Specialization {
		names = append(names, s.Name)
	}
	return strings.Join(names, ", ")
}

func experienceBlock(d *headhunter.ResumeDetails) string {
	lines := make([]string, 0, len(d.Experience))
	for _, exp := range d.Experience {
		lines = append(lines, fmt.Sprintf("%s, %s (%s - %s): %s",
			exp.Company, exp.Position, exp.Start, exp.End, exp.Description))
	}
	return strings.Join(lines, "\n")
}

func languagesBlock(d *headhunter.ResumeDetails) string {
	lines := make([]string, 0, len(d.Language))
	for _, lang := range d.Language {
		lines = append(lines, fmt.Sprintf("%s (%s)", lang.Name, lang.Level.Name))
	}
	return strings.Join(lines, "\n")
}

func recommendationsBlock(d *headhunter.ResumeDetails) string {
	lines := make([]string, 0, len(d.Recommendation))
	for _, rec := range d.Recommendation {
		lines = append(lines, fmt.Sprintf("%s, %s (%s)", rec.Name, rec.Position, rec.Organization))
	}
	return strings.Join(lines, "\n")
}

func educationBlock(d *headhunter.ResumeDetails) string {
	lines := make([]string, 0, len(d.Education.Primary))
	for _, edu := range d.Education.Primary {
		lines = append(lines, fmt.Sprintf("%s, %s (%d)", edu.Name, edu.Organization, edu.Year))
	}
	return strings.Join(lines, "\n")
}

func coursesBlock(d *headhunter.ResumeDetails) string {
	lines := make([]string, 0, len(d.Education.Additional))
	for _, course := range d.Education.Additional {
		lines = append(lines, fmt.Sprintf("%s, %s (%d)", course.Name, course.Organization, course.Year))
	}
	return strings.Join(lines, "\n")
}

func certificatesBlock(d *headhunter.ResumeDetails) string {
	lines := make([]string, 0, len(d.Certificate))
	for _, cert := range d.Certificate {
		lines = append(lines, cert.Title)
	}
	return strings.Join(lines, "\n")
}
