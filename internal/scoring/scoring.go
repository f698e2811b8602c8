package scoring

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/kruglovb/ai-interviewer/internal/ai"
	"github.com/kruglovb/ai-interviewer/internal/transcript"

	"go.uber.org/zap"
)

const (
	defaultTemperature = 0.4
	defaultMaxTokens   = 2000

	quickMatchTemperature = 0.7
	quickMatchMaxTokens   = 1000

	// DefaultCompliance is used when the report carries no parsable
	// percentage at all.
	DefaultCompliance = 70
)

const reportSystemPrompt = "Ты HR-специалист. Проведи детальный анализ соответствия кандидата вакансии. " +
	"Проанализируй резюме, вакансию и протокол собеседования. " +
	"Сопоставь навыки, опыт и компетенции кандидата с требованиями вакансии. " +
	"Выяви сильные стороны, пробелы, возможные противоречия. " +
	"Предоставь структурированный отчет с оценками по ключевым параметрам и итоговой рекомендацией."

const quickMatchSystemPrompt = "Проанализируй резюме и вакансию. Ответ: Процент соответствия: X%\n\nАнализ: ..."

// FallbackReport is stored when the completion service is unreachable,
// so finalization always persists something.
const FallbackReport = "Не удалось провести анализ соответствия из-за технической ошибки."

var (
	percentPattern    = regexp.MustCompile(`(\d+)%`)
	compliancePattern = regexp.MustCompile(`соответствие.*?(\d+)/10`)
	techPattern       = regexp.MustCompile(`технические.*?навыки.*?(\d+)/10`)
	softPattern       = regexp.MustCompile(`soft skills.*?(\d+)/10`)
	expPattern        = regexp.MustCompile(`опыт.*?работы.*?(\d+)/10`)

	quickMatchPattern = regexp.MustCompile(`Процент соответствия:\s*(\d+)%`)
)

// Engine derives the post-interview compliance report from the resume,
// the vacancy and the interview protocol.
type Engine struct {
	completer ai.Completer
	logger    *zap.Logger

	Temperature float64
	MaxTokens   int
}

func NewEngine(completer ai.Completer, logger *zap.Logger) *Engine {
	return &Engine{
		completer:   completer,
		logger:      logger,
		Temperature: defaultTemperature,
		MaxTokens:   defaultMaxTokens,
	}
}

// Score requests the compliance analysis and distills a one-line rating
// from it. It never fails: on a completion error the fallback pair is
// returned so the finalization flow still persists a result.
func (e *Engine) Score(ctx context.Context, candidate, vacancy, protocol string) (rating, report string) {
	combined := fmt.Sprintf(
		"РЕЗЮМЕ КАНДИДАТА:\n%s\n\nВАКАНСИЯ:\n%s\n\nПРОТОКОЛ СОБЕСЕДОВАНИЯ:\n%s",
		candidate, vacancy, protocol,
	)

	report, err := e.completer.Complete(ctx, ai.Request{
		System:      reportSystemPrompt,
		Turns:       []transcript.Turn{{Role: transcript.RoleCandidate, Text: combined}},
		Temperature: e.Temperature,
		MaxTokens:   e.MaxTokens,
	})
	if err != nil {
		e.logger.Error("compliance analysis failed", zap.Error(err))
		return fmt.Sprintf("Соответствие: %d%% | %s", DefaultCompliance, ratingDetails("")), FallbackReport
	}

	report = strings.TrimSpace(report)
	rating = fmt.Sprintf("Соответствие: %d%% | %s", ExtractComplianceScore(report), ratingDetails(report))
	return rating, report
}

// QuickMatch is the pre-screen run before any invitation: one short
// completion comparing resume and vacancy. The returned percent is 0
// when the reply does not carry the expected marker.
func (e *Engine) QuickMatch(ctx context.Context, resume, vacancy string) (int, string, error) {
	body := fmt.Sprintf("Вакансия:\n%s\n\nРезюме:\n%s", vacancy, resume)

	analysis, err := e.completer.Complete(ctx, ai.Request{
		System:      quickMatchSystemPrompt,
		Turns:       []transcript.Turn{{Role: transcript.RoleCandidate, Text: body}},
		Temperature: quickMatchTemperature,
		MaxTokens:   quickMatchMaxTokens,
	})
	if err != nil {
		return 0, "", fmt.Errorf("quick match: %w", err)
	}

	return ExtractMatchPercent(analysis), analysis, nil
}

// ExtractComplianceScore pulls the compliance percentage out of the
// free-text report. Probe order: a bare percentage, then a
// "соответствие N/10" grade scaled to percent, then the default.
func ExtractComplianceScore(report string) int {
	if m := percentPattern.FindStringSubmatch(report); m != nil {
		if score, err := strconv.Atoi(m[1]); err == nil {
			return score
		}
	}

	if m := compliancePattern.FindStringSubmatch(strings.ToLower(report)); m != nil {
		if score, err := strconv.Atoi(m[1]); err == nil {
			return score * 10
		}
	}

	return DefaultCompliance
}

// ExtractMatchPercent reads the "Процент соответствия: X%" marker of a
// quick-match reply.
func ExtractMatchPercent(analysis string) int {
	if m := quickMatchPattern.FindStringSubmatch(analysis); m != nil {
		if percent, err := strconv.Atoi(m[1]); err == nil {
			return percent
		}
	}
	return 0
}

// ratingDetails probes the report for the three named sub-scores. Each
// probe falls back to a fixed placeholder grade independently.
func ratingDetails(report string) string {
	lowered := strings.ToLower(report)

	details := []string{
		"Технические навыки: " + subScore(techPattern, lowered, "7"),
		"Soft Skills: " + subScore(softPattern, lowered, "8"),
		"Опыт: " + subScore(expPattern, lowered, "7"),
	}

	return strings.Join(details, " | ")
}

func subScore(pattern *regexp.Regexp, lowered, fallback string) string {
	if m := pattern.FindStringSubmatch(lowered); m != nil {
		return m[1] + "/10"
	}
	return fallback + "/10"
}
