package interview

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	_ "embed"

	"github.com/kruglovb/ai-interviewer/internal/ai"
	"github.com/kruglovb/ai-interviewer/internal/transcript"
	"github.com/kruglovb/ai-interviewer/internal/utils"

	"go.uber.org/zap"
)

//go:embed system_prompt.md
var systemPromptTemplate string

const (
	// terminationKeyword ends the interview when the model's reply
	// contains it, case-insensitively. Only interviewer replies are
	// checked, so a candidate answer cannot trigger termination.
	terminationKeyword = "конец"

	defaultMaxQuestions = 30
	defaultTemperature  = 0.6
	defaultMaxTokens    = 500

	// FallbackAnswer substitutes a candidate reply when transcription
	// fails; the turn itself never aborts.
	FallbackAnswer = "Я вас понял, спасибо за ответ."
)

// Outcome is the result of asking the model for the next question.
type Outcome struct {
	Terminated bool
	Question   string
}

// Engine drives one interviewer/candidate exchange at a time.
type Engine struct {
	completer ai.Completer
	logger    *zap.Logger

	MaxQuestions int
	Temperature  float64
	MaxTokens    int
}

func NewEngine(completer ai.Completer, logger *zap.Logger) *Engine {
	return &Engine{
		completer:    completer,
		logger:       logger,
		MaxQuestions: defaultMaxQuestions,
		Temperature:  defaultTemperature,
		MaxTokens:    defaultMaxTokens,
	}
}

// SystemPrompt renders the interviewer instructions with the question
// budget filled in.
func (e *Engine) SystemPrompt() string {
	return strings.ReplaceAll(systemPromptTemplate, "{{MAX_QUESTIONS}}", strconv.Itoa(e.MaxQuestions))
}

// Seed builds the initial transcript for a new session: the system
// instructions plus a candidate-role context turn carrying the vacancy
// and resume text.
func (e *Engine) Seed(vacancyText, candidateText string) *transcript.Transcript {
	return transcript.New(
		transcript.Turn{Role: transcript.RoleSystem, Text: e.SystemPrompt()},
		transcript.Turn{
			Role: transcript.RoleCandidate,
			Text: fmt.Sprintf("Вакансия:\n%s\n\nРезюме кандидата:\n%s\n\nНачни собеседование.", vacancyText, candidateText),
		},
	)
}

// IsTerminationSignal reports whether the model reply asks to end the
// interview. The matching rule lives here so the keyword, language and
// case policy stay a single swappable decision.
func IsTerminationSignal(text string) bool {
	return strings.Contains(strings.ToLower(text), terminationKeyword)
}

// NextQuestion sends the transcript to the completion service. A
// terminating reply is never appended; callers must finalize the
// session. A regular reply is appended as an interviewer turn and
// returned for delivery.
func (e *Engine) NextQuestion(ctx context.Context, tr *transcript.Transcript) (Outcome, error) {
	system, turns := splitSystem(tr)

	reply, err := e.completer.Complete(ctx, ai.Request{
		System:      system,
		Turns:       turns,
		Temperature: e.Temperature,
		MaxTokens:   e.MaxTokens,
	})
	if err != nil {
		return Outcome{}, fmt.Errorf("next question: %w", err)
	}

	reply = strings.TrimSpace(reply)

	if IsTerminationSignal(reply) {
		e.logger.Info("interview terminated by model",
			zap.Int("questions", tr.Questions()),
		)
		return Outcome{Terminated: true}, nil
	}

	tr.AppendInterviewer(reply)

	e.logger.Debug("next question generated",
		zap.Int("turns", tr.Len()),
		zap.String("question_preview", utils.TruncateForLog(reply, 120)),
	)

	return Outcome{Question: reply}, nil
}

// RecordAnswer appends the candidate reply as-is. Empty or nonsensical
// answers are accepted; the only contract is append order.
func (e *Engine) RecordAnswer(tr *transcript.Transcript, answer string) {
	tr.AppendCandidate(answer)
}

func splitSystem(tr *transcript.Transcript) (string, []transcript.Turn) {
	turns := tr.Turns
	if len(turns) > 0 && turns[0].Role == transcript.RoleSystem {
		return turns[0].Text, turns[1:]
	}
	return "", turns
}
