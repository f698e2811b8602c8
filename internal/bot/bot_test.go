package bot

import (
	"context"
	"strings"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/kruglovb/ai-interviewer/internal/ai"
	"github.com/kruglovb/ai-interviewer/internal/interview"
	"github.com/kruglovb/ai-interviewer/internal/scoring"
	"github.com/kruglovb/ai-interviewer/internal/sheets"
)

// scriptedCompleter replays responses in order, sticking on the last.
type scriptedCompleter struct {
	responses []string
	calls     int
}

func (s *scriptedCompleter) Complete(_ context.Context, _ ai.Request) (string, error) {
	resp := s.responses[s.calls]
	if s.calls < len(s.responses)-1 {
		s.calls++
	}
	return resp, nil
}

type fakeAPI struct {
	sent []tgbotapi.Chattable
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, nil
}

func (f *fakeAPI) Request(_ tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeAPI) GetFileDirectURL(_ string) (string, error) {
	return "", nil
}

func (f *fakeAPI) lastText(t *testing.T) string {
	t.Helper()
	for i := len(f.sent) - 1; i >= 0; i-- {
		if msg, ok := f.sent[i].(tgbotapi.MessageConfig); ok {
			return msg.Text
		}
	}
	t.Fatalf("no text message sent")
	return ""
}

func newTestBot(t *testing.T, completer ai.Completer) (*Bot, *fakeAPI, *sheets.Memory, *VacancyStore) {
	t.Helper()

	api := &fakeAPI{}
	log := sheets.NewMemory(LogHeaders())
	vacancies := OpenVacancyStore("", zap.NewNop())

	b := New(
		api,
		interview.NewEngine(completer, zap.NewNop()),
		scoring.NewEngine(completer, zap.NewNop()),
		nil,
		vacancies,
		log,
		zap.NewNop(),
	)
	return b, api, log, vacancies
}

func commandMessage(chatID int64, text string) *tgbotapi.Message {
	length := len(text)
	if i := strings.Index(text, " "); i != -1 {
		length = i
	}
	return &tgbotapi.Message{
		Chat: &tgbotapi.Chat{ID: chatID},
		From: &tgbotapi.User{ID: chatID, FirstName: "Иван", LastName: "Петров"},
		Text: text,
		Entities: []tgbotapi.MessageEntity{
			{Type: "bot_command", Offset: 0, Length: length},
		},
	}
}

func textMessage(chatID int64, text string) *tgbotapi.Message {
	return &tgbotapi.Message{
		Chat: &tgbotapi.Chat{ID: chatID},
		From: &tgbotapi.User{ID: chatID, FirstName: "Иван", LastName: "Петров"},
		Text: text,
	}
}

func selectVacancyUpdate(chatID int64, vacancyID string) tgbotapi.Update {
	return tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cb-1",
		From:    &tgbotapi.User{ID: chatID},
		Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: chatID}},
		Data:    "vacancy_" + vacancyID,
	}}
}

func TestResumeFlowInvitesAndInterviews(t *testing.T) {
	completer := &scriptedCompleter{responses: []string{
		"Процент соответствия: 85%\n\nАнализ: сильный кандидат",
		"Расскажите о вашем опыте работы с Go.",
		"Конец",
		"Итог: 80%. Технические навыки: 8/10.",
	}}

	b, api, log, vacancies := newTestBot(t, completer)
	v := vacancies.Add("Backend разработчик", "Ищем Go разработчика")

	ctx := context.Background()
	const chatID = int64(42)

	b.HandleUpdate(ctx, tgbotapi.Update{Message: commandMessage(chatID, "/start")})
	if last, ok := api.sent[len(api.sent)-1].(tgbotapi.MessageConfig); !ok || last.ReplyMarkup == nil {
		t.Fatalf("start must offer a vacancy keyboard")
	}

	b.HandleUpdate(ctx, selectVacancyUpdate(chatID, v.ID))
	if !strings.Contains(api.lastText(t), "резюме") {
		t.Fatalf("vacancy selection must ask for a resume, got %q", api.lastText(t))
	}

	b.HandleUpdate(ctx, tgbotapi.Update{Message: textMessage(chatID, "Опыт Go 5 лет, PostgreSQL")})
	invitation := api.lastText(t)
	if !strings.Contains(invitation, "85%") || !strings.Contains(invitation, "/access 42") {
		t.Fatalf("expected invitation with access code, got %q", invitation)
	}

	row, err := log.FindRowByColumn("ID", "42")
	if err != nil {
		t.Fatalf("candidate row not logged: %v", err)
	}
	if status, _ := log.Cell(row, logColStatus); status != StatusInvited {
		t.Fatalf("expected status %q, got %q", StatusInvited, status)
	}
	if name, _ := log.Cell(row, logColName); name != "Иван Петров" {
		t.Fatalf("unexpected candidate name %q", name)
	}

	b.HandleUpdate(ctx, tgbotapi.Update{Message: commandMessage(chatID, "/access 42")})
	if api.lastText(t) != "Расскажите о вашем опыте работы с Go." {
		t.Fatalf("expected first question, got %q", api.lastText(t))
	}
	if status, _ := log.Cell(row, logColStatus); status != StatusInProgress {
		t.Fatalf("access must mark the row in progress, got %q", status)
	}

	b.HandleUpdate(ctx, tgbotapi.Update{Message: textMessage(chatID, "Работал над высоконагруженными сервисами.")})
	if !strings.Contains(api.lastText(t), "Собеседование завершено") {
		t.Fatalf("expected completion message, got %q", api.lastText(t))
	}

	if protocolText, _ := log.Cell(row, logColProtocol); !strings.Contains(protocolText, "ВОПРОС 1:") {
		t.Fatalf("protocol not persisted:\n%s", protocolText)
	}
	if rating, _ := log.Cell(row, logColRating); !strings.HasPrefix(rating, "Соответствие: 80%") {
		t.Fatalf("final rating not persisted, got %q", rating)
	}
	if status, _ := log.Cell(row, logColStatus); status != StatusDone {
		t.Fatalf("expected status %q, got %q", StatusDone, status)
	}
}

func TestResumeBelowThresholdRejected(t *testing.T) {
	completer := &scriptedCompleter{responses: []string{
		"Процент соответствия: 40%\n\nАнализ: слабое соответствие",
	}}

	b, api, log, vacancies := newTestBot(t, completer)
	v := vacancies.Add("Backend разработчик", "Ищем Go разработчика")

	ctx := context.Background()
	const chatID = int64(7)

	b.HandleUpdate(ctx, selectVacancyUpdate(chatID, v.ID))
	b.HandleUpdate(ctx, tgbotapi.Update{Message: textMessage(chatID, "Продавец-консультант")})

	if !strings.Contains(api.lastText(t), "недостаточно") {
		t.Fatalf("expected rejection, got %q", api.lastText(t))
	}

	row, err := log.FindRowByColumn("ID", "7")
	if err != nil {
		t.Fatalf("rejected candidate must still be logged: %v", err)
	}
	if status, _ := log.Cell(row, logColStatus); status != StatusRejected {
		t.Fatalf("expected status %q, got %q", StatusRejected, status)
	}
}

func TestAccessUnknownCode(t *testing.T) {
	b, api, _, _ := newTestBot(t, &scriptedCompleter{responses: []string{"q"}})

	b.HandleUpdate(context.Background(), tgbotapi.Update{Message: commandMessage(1, "/access 999")})
	if api.lastText(t) != "Код доступа не найден." {
		t.Fatalf("unexpected reply: %q", api.lastText(t))
	}
}

func TestAccessSingleUse(t *testing.T) {
	completer := &scriptedCompleter{responses: []string{
		"Процент соответствия: 90%\n\nАнализ: отлично",
		"Первый вопрос?",
	}}

	b, api, _, vacancies := newTestBot(t, completer)
	v := vacancies.Add("Backend разработчик", "Ищем Go разработчика")

	ctx := context.Background()
	const chatID = int64(9)

	b.HandleUpdate(ctx, selectVacancyUpdate(chatID, v.ID))
	b.HandleUpdate(ctx, tgbotapi.Update{Message: textMessage(chatID, "Резюме")})
	b.HandleUpdate(ctx, tgbotapi.Update{Message: commandMessage(chatID, "/access 9")})

	// A second redemption from another chat must be refused.
	b.HandleUpdate(ctx, tgbotapi.Update{Message: commandMessage(100, "/access 9")})
	if !strings.Contains(api.lastText(t), "уже началось или завершено") {
		t.Fatalf("expected single-use refusal, got %q", api.lastText(t))
	}
}

func TestVacancyAdminCommands(t *testing.T) {
	b, api, _, vacancies := newTestBot(t, &scriptedCompleter{responses: []string{"q"}})
	b.AdminID = 50

	ctx := context.Background()

	// Non-admin is refused.
	b.HandleUpdate(ctx, tgbotapi.Update{Message: commandMessage(1, "/add_vacancy Тест")})
	if !strings.Contains(api.lastText(t), "администратору") {
		t.Fatalf("non-admin must be refused, got %q", api.lastText(t))
	}

	// Admin adds a vacancy: title from the command, text from the next message.
	b.HandleUpdate(ctx, tgbotapi.Update{Message: commandMessage(50, "/add_vacancy Go разработчик")})
	if !strings.Contains(api.lastText(t), "текст вакансии") {
		t.Fatalf("expected prompt for vacancy text, got %q", api.lastText(t))
	}
	b.HandleUpdate(ctx, tgbotapi.Update{Message: textMessage(50, "Ищем сильного бекендера")})
	if !strings.Contains(api.lastText(t), "добавлена") {
		t.Fatalf("expected confirmation, got %q", api.lastText(t))
	}
	if vacancies.Len() != 1 {
		t.Fatalf("vacancy not stored")
	}

	b.HandleUpdate(ctx, tgbotapi.Update{Message: commandMessage(50, "/list_vacancies")})
	if !strings.Contains(api.lastText(t), "Go разработчик") {
		t.Fatalf("listing must show the vacancy, got %q", api.lastText(t))
	}
}
