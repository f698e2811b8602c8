package transcript

import "testing"

func seeded() *Transcript {
	return New(
		Turn{Role: RoleSystem, Text: "инструкции"},
		Turn{Role: RoleCandidate, Text: "Вакансия и резюме. Начни собеседование."},
	)
}

func TestValidateAlternation(t *testing.T) {
	tr := seeded()
	tr.AppendInterviewer("Расскажите о себе.")
	tr.AppendCandidate("Я инженер.")
	tr.AppendInterviewer("Какой у вас опыт с Go?")

	if err := tr.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateRejectsAdjacentSameRole(t *testing.T) {
	tr := seeded()
	tr.AppendInterviewer("Вопрос один.")
	tr.AppendInterviewer("Вопрос два.")

	if err := tr.Validate(); err == nil {
		t.Fatalf("expected error for adjacent interviewer turns")
	}
}

func TestValidateRejectsMisplacedSystemTurn(t *testing.T) {
	tr := seeded()
	tr.AppendInterviewer("Вопрос.")
	tr.Turns = append(tr.Turns, Turn{Role: RoleSystem, Text: "late"})

	if err := tr.Validate(); err == nil {
		t.Fatalf("expected error for system turn after head")
	}
}

func TestCounters(t *testing.T) {
	tr := New(Turn{Role: RoleSystem, Text: "инструкции"})
	tr.AppendInterviewer("q1")
	tr.AppendCandidate("a1")
	tr.AppendInterviewer("q2")

	if got := tr.Questions(); got != 2 {
		t.Fatalf("expected 2 questions, got %d", got)
	}
	if got := tr.Answers(); got != 1 {
		t.Fatalf("expected 1 answer, got %d", got)
	}
	if tr.Last().Text != "q2" {
		t.Fatalf("unexpected last turn: %+v", tr.Last())
	}
}
