package protocol

import (
	"strings"
	"testing"
	"time"

	"github.com/kruglovb/ai-interviewer/internal/transcript"
)

func TestFormatCountsQuestionsAndAnswers(t *testing.T) {
	tr := transcript.New(transcript.Turn{Role: transcript.RoleSystem, Text: "инструкция"})
	tr.AppendInterviewer("Вопрос один?")
	tr.AppendCandidate("Ответ один.")
	tr.AppendInterviewer("Вопрос два?")
	tr.AppendCandidate("Ответ два.")
	tr.AppendInterviewer("Вопрос три?")

	out := Format(tr, time.Date(2025, 3, 1, 12, 30, 0, 0, time.UTC))

	if !strings.Contains(out, "Всего вопросов: 3") {
		t.Fatalf("expected 3 questions in statistics:\n%s", out)
	}
	if !strings.Contains(out, "Всего ответов: 2") {
		t.Fatalf("expected 2 answers in statistics:\n%s", out)
	}
	if !strings.Contains(out, "ВОПРОС 3:") {
		t.Fatalf("question numbering must reach 3")
	}
	if !strings.Contains(out, "ОТВЕТ 2:") {
		t.Fatalf("answer numbering must reach 2")
	}
	if strings.Contains(out, "инструкция") {
		t.Fatalf("system turns must not appear in the protocol")
	}
	if !strings.Contains(out, "Дата: 2025-03-01 12:30:00") {
		t.Fatalf("expected formatted date header")
	}
	if !strings.Contains(out, strings.Repeat("-", separatorWidth)) {
		t.Fatalf("expected exchange separator")
	}
	if !strings.Contains(out, "Общая продолжительность: 10 минут") {
		t.Fatalf("expected duration heuristic of 5 turns x 2 minutes:\n%s", out)
	}
}

func TestTruncate(t *testing.T) {
	short := "короткий текст"
	if got := TruncateProtocol(short); got != short {
		t.Fatalf("short text must pass through unchanged")
	}

	long := strings.Repeat("a", MaxCellLength+100)
	got := TruncateReport(long)
	if !strings.HasSuffix(got, "\n... [ОТЧЕТ ОБРЕЗАН]") {
		t.Fatalf("truncated text must carry the marker")
	}
	if len(got) != MaxCellLength+len("\n... [ОТЧЕТ ОБРЕЗАН]") {
		t.Fatalf("unexpected truncated length %d", len(got))
	}
}
