package scoring

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/kruglovb/ai-interviewer/internal/ai"

	"go.uber.org/zap"
)

type stubCompleter struct {
	response string
	err      error
	lastReq  ai.Request
}

func (s *stubCompleter) Complete(_ context.Context, req ai.Request) (string, error) {
	s.lastReq = req
	return s.response, s.err
}

func TestExtractComplianceScore(t *testing.T) {
	cases := []struct {
		report string
		want   int
	}{
		{"Кандидат показал себя хорошо. Итоговое соответствие: 42%.", 42},
		{"Общее соответствие 8/10, рекомендован к найму.", 80},
		{"Развернутый отчет без числовых оценок.", 70},
		{"", 70},
	}

	for _, tc := range cases {
		if got := ExtractComplianceScore(tc.report); got != tc.want {
			t.Errorf("ExtractComplianceScore(%q) = %d, want %d", tc.report, got, tc.want)
		}
	}
}

func TestPercentProbeWinsOverGrade(t *testing.T) {
	report := "Соответствие 9/10, итого 85% совпадения."
	if got := ExtractComplianceScore(report); got != 85 {
		t.Fatalf("bare percentage must win, got %d", got)
	}
}

func TestScoreBuildsRatingLine(t *testing.T) {
	stub := &stubCompleter{response: "Итог: 65%. Технические навыки: 6/10. Soft skills: 9/10. Опыт работы: 5/10."}
	engine := NewEngine(stub, zap.NewNop())

	rating, report := engine.Score(context.Background(), "резюме", "вакансия", "протокол")
	if report != stub.response {
		t.Fatalf("report must be the raw completion text")
	}
	want := "Соответствие: 65% | Технические навыки: 6/10 | Soft Skills: 9/10 | Опыт: 5/10"
	if rating != want {
		t.Fatalf("rating = %q, want %q", rating, want)
	}

	if !strings.Contains(stub.lastReq.Turns[0].Text, "ПРОТОКОЛ СОБЕСЕДОВАНИЯ:") {
		t.Fatalf("combined prompt must embed the protocol section")
	}
	if stub.lastReq.Temperature != defaultTemperature || stub.lastReq.MaxTokens != defaultMaxTokens {
		t.Fatalf("unexpected completion options: %+v", stub.lastReq)
	}
}

func TestScoreSubScoreDefaults(t *testing.T) {
	stub := &stubCompleter{response: "Соответствие: 50%. Подробных оценок нет."}
	engine := NewEngine(stub, zap.NewNop())

	rating, _ := engine.Score(context.Background(), "р", "в", "п")
	want := "Соответствие: 50% | Технические навыки: 7/10 | Soft Skills: 8/10 | Опыт: 7/10"
	if rating != want {
		t.Fatalf("rating = %q, want %q", rating, want)
	}
}

func TestScoreNeverFails(t *testing.T) {
	stub := &stubCompleter{err: errors.New("timeout")}
	engine := NewEngine(stub, zap.NewNop())

	rating, report := engine.Score(context.Background(), "р", "в", "п")
	if report != FallbackReport {
		t.Fatalf("expected fallback report, got %q", report)
	}
	if !strings.HasPrefix(rating, "Соответствие: 70%") {
		t.Fatalf("fallback rating must use the default compliance, got %q", rating)
	}
}

func TestQuickMatch(t *testing.T) {
	stub := &stubCompleter{response: "Процент соответствия: 82%\n\nАнализ: сильный кандидат."}
	engine := NewEngine(stub, zap.NewNop())

	percent, analysis, err := engine.QuickMatch(context.Background(), "резюме", "вакансия")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if percent != 82 {
		t.Fatalf("percent = %d, want 82", percent)
	}
	if analysis != stub.response {
		t.Fatalf("analysis must be the raw completion text")
	}
}

func TestQuickMatchMissingMarker(t *testing.T) {
	stub := &stubCompleter{response: "Кандидат неплох."}
	engine := NewEngine(stub, zap.NewNop())

	percent, _, err := engine.QuickMatch(context.Background(), "резюме", "вакансия")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if percent != 0 {
		t.Fatalf("missing marker must yield 0, got %d", percent)
	}
}
