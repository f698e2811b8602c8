package scraper

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kruglovb/ai-interviewer/internal/headhunter"
	"github.com/kruglovb/ai-interviewer/internal/screening"
	"github.com/kruglovb/ai-interviewer/internal/sheets"

	"go.uber.org/zap"
)

type stubMatcher struct {
	percent int
}

func (s *stubMatcher) QuickMatch(_ context.Context, _, _ string) (int, string, error) {
	return s.percent, "анализ", nil
}

func newHHServer(t *testing.T) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/resumes" || r.URL.Path == "/resumes/":
			json.NewEncoder(w).Encode(map[string]any{
				"items":    []map[string]any{{"id": "r1", "title": "Go Developer"}},
				"found":    1,
				"pages":    1,
				"page":     0,
				"per_page": 50,
			})
		case strings.HasPrefix(r.URL.Path, "/resumes/"):
			json.NewEncoder(w).Encode(map[string]any{
				"id":            "r1",
				"title":         "Go Developer",
				"first_name":    "Иван",
				"last_name":     "Петров",
				"alternate_url": "https://hh.ru/resume/r1",
				"skill_set":     []string{"Go", "PostgreSQL"},
				"contact": []map[string]any{{
					"type":      map[string]any{"id": "cell"},
					"value":     map[string]any{"formatted": "+7 (916) 123-45-67"},
					"preferred": true,
				}},
			})
		default:
			http.NotFound(w, r)
		}
	}))
}

func TestRunAppendsApprovedCandidates(t *testing.T) {
	server := newHHServer(t)
	defer server.Close()

	client := headhunter.New(context.Background(), zap.NewNop(), "token")
	client.APIURL = server.URL

	table := sheets.NewMemory(sheets.CandidateHeaders())

	s := New(client, &stubMatcher{percent: 90}, table, zap.NewNop())
	s.Pause = 0

	report, err := s.Run(context.Background(), &headhunter.ResumeSearchParams{Text: "go"}, "Backend разработчик", &screening.Config{MinimumFitScore: 0.7})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.Found != 1 || report.Appended != 1 {
		t.Fatalf("unexpected report: %+v", report)
	}

	row, err := table.FindRowByColumn(sheets.ColLink, "https://hh.ru/resume/r1")
	if err != nil {
		t.Fatalf("candidate row missing: %v", err)
	}

	code, _ := table.Cell(row, sheets.ColCode)
	if code != "79161234567" {
		t.Fatalf("access code must be the phone digits, got %q", code)
	}

	compliance, _ := table.Cell(row, sheets.ColCompliance)
	if compliance != "90%" {
		t.Fatalf("compliance = %q", compliance)
	}

	vacancy, _ := table.Cell(row, sheets.ColVacancyText)
	if vacancy != "Backend разработчик" {
		t.Fatalf("vacancy text = %q", vacancy)
	}

	name, _ := table.Cell(row, "resume-personal-name")
	if name != "Петров Иван" {
		t.Fatalf("name = %q", name)
	}
}

func TestRunRejectsBelowThreshold(t *testing.T) {
	server := newHHServer(t)
	defer server.Close()

	client := headhunter.New(context.Background(), zap.NewNop(), "token")
	client.APIURL = server.URL

	table := sheets.NewMemory(sheets.CandidateHeaders())

	s := New(client, &stubMatcher{percent: 40}, table, zap.NewNop())
	s.Pause = 0

	report, err := s.Run(context.Background(), &headhunter.ResumeSearchParams{Text: "go"}, "вакансия", &screening.Config{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Appended != 0 {
		t.Fatalf("rejected candidate must not be appended: %+v", report)
	}
}

func TestLoadVacancyTextPlain(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vacancy.txt")
	if err := os.WriteFile(path, []byte("  Backend разработчик\n"), 0o644); err != nil {
		t.Fatalf("writing vacancy file: %v", err)
	}

	text, err := LoadVacancyText(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "Backend разработчик" {
		t.Fatalf("unexpected vacancy text: %q", text)
	}
}
