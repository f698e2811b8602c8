package interview

import (
	"context"
	"errors"
	"testing"

	"github.com/kruglovb/ai-interviewer/internal/ai"
	"github.com/kruglovb/ai-interviewer/internal/transcript"

	"go.uber.org/zap"
)

type stubCompleter struct {
	responses []string
	err       error
	calls     int
	lastReq   ai.Request
}

func (s *stubCompleter) Complete(_ context.Context, req ai.Request) (string, error) {
	s.lastReq = req
	if s.err != nil {
		return "", s.err
	}
	resp := s.responses[s.calls%len(s.responses)]
	s.calls++
	return resp, nil
}

func TestNextQuestionAppendsInterviewerTurn(t *testing.T) {
	stub := &stubCompleter{responses: []string{"Расскажите о вашем опыте."}}
	engine := NewEngine(stub, zap.NewNop())

	tr := engine.Seed("вакансия", "резюме")
	before := tr.Len()

	outcome, err := engine.NextQuestion(context.Background(), tr)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if outcome.Terminated {
		t.Fatalf("expected non-terminal outcome")
	}
	if outcome.Question != "Расскажите о вашем опыте." {
		t.Fatalf("unexpected question: %s", outcome.Question)
	}
	if tr.Len() != before+1 {
		t.Fatalf("expected %d turns, got %d", before+1, tr.Len())
	}
	if tr.Last().Role != transcript.RoleInterviewer {
		t.Fatalf("expected interviewer turn, got %s", tr.Last().Role)
	}

	if stub.lastReq.System == "" {
		t.Fatalf("expected system prompt to be sent")
	}
	if len(stub.lastReq.Turns) != 1 {
		t.Fatalf("expected system turn stripped from body, got %d turns", len(stub.lastReq.Turns))
	}
}

func TestNextQuestionTerminationNeverAppends(t *testing.T) {
	cases := []string{"Конец", "конец", "КОНЕЦ.", "Спасибо, на этом конец собеседования."}

	for _, response := range cases {
		stub := &stubCompleter{responses: []string{response}}
		engine := NewEngine(stub, zap.NewNop())

		tr := engine.Seed("вакансия", "резюме")
		before := tr.Len()

		outcome, err := engine.NextQuestion(context.Background(), tr)
		if err != nil {
			t.Fatalf("%q: unexpected error: %v", response, err)
		}
		if !outcome.Terminated {
			t.Fatalf("%q: expected terminal outcome", response)
		}
		if tr.Len() != before {
			t.Fatalf("%q: terminal reply must not be appended", response)
		}
	}
}

func TestNextQuestionPropagatesCompleterError(t *testing.T) {
	stub := &stubCompleter{err: errors.New("network down")}
	engine := NewEngine(stub, zap.NewNop())

	tr := engine.Seed("вакансия", "резюме")
	if _, err := engine.NextQuestion(context.Background(), tr); err == nil {
		t.Fatalf("expected error")
	}
	if tr.Len() != 2 {
		t.Fatalf("failed call must not mutate transcript")
	}
}

func TestRecordAnswerAcceptsAnything(t *testing.T) {
	engine := NewEngine(&stubCompleter{responses: []string{"q"}}, zap.NewNop())

	tr := engine.Seed("вакансия", "резюме")
	tr.AppendInterviewer("Вопрос?")

	engine.RecordAnswer(tr, "")
	if tr.Last().Role != transcript.RoleCandidate {
		t.Fatalf("expected candidate turn")
	}

	if err := tr.Validate(); err != nil {
		t.Fatalf("transcript invariant broken: %v", err)
	}
}

func TestSeedTranscriptShape(t *testing.T) {
	engine := NewEngine(&stubCompleter{responses: []string{"q"}}, zap.NewNop())

	tr := engine.Seed("текст вакансии", "текст резюме")
	if tr.Len() != 2 {
		t.Fatalf("expected 2 seed turns, got %d", tr.Len())
	}
	if tr.Turns[0].Role != transcript.RoleSystem {
		t.Fatalf("expected system head turn")
	}
	if err := tr.Validate(); err != nil {
		t.Fatalf("seed transcript invalid: %v", err)
	}
}

func TestIsTerminationSignal(t *testing.T) {
	if !IsTerminationSignal("Конец") {
		t.Fatalf("expected exact keyword to terminate")
	}
	if IsTerminationSignal("Какой фреймворк вы предпочитаете?") {
		t.Fatalf("unrelated question must not terminate")
	}
}
