// Package bot is the Telegram surface of the interview flow: vacancy
// selection, resume pre-screening and the chat-based interview itself.
package bot

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/kruglovb/ai-interviewer/internal/interview"
	"github.com/kruglovb/ai-interviewer/internal/protocol"
	"github.com/kruglovb/ai-interviewer/internal/scoring"
	"github.com/kruglovb/ai-interviewer/internal/scraper"
	"github.com/kruglovb/ai-interviewer/internal/sheets"
	"github.com/kruglovb/ai-interviewer/internal/speech"
	"github.com/kruglovb/ai-interviewer/internal/transcript"
)

// DefaultMinimumFit is the pre-screen threshold in percent. Candidates
// below it are logged as rejected and not invited.
const DefaultMinimumFit = 70

// API is the slice of the Telegram client the bot uses. *tgbotapi.BotAPI
// satisfies it; tests substitute a recorder.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetFileDirectURL(fileID string) (string, error)
}

type stage int

const (
	stageIdle stage = iota
	stageAwaitResume
	stageInterview
	stageAwaitVacancyText
)

// conversation is the per-chat state machine.
type conversation struct {
	stage       stage
	vacancy     Vacancy
	vacancyText string
	resume      string
	draftTitle  string
	transcript  *transcript.Transcript
	logRow      int
}

type Bot struct {
	api       API
	engine    *interview.Engine
	scorer    *scoring.Engine
	synth     speech.Synthesizer
	vacancies *VacancyStore
	log       sheets.RowStore
	logger    *zap.Logger

	// AdminID is the only chat allowed to manage vacancies. Zero
	// disables the admin commands entirely.
	AdminID    int64
	MinimumFit int
	HTTPClient *http.Client

	mu    sync.Mutex
	convs map[int64]*conversation

	now func() time.Time
}

func New(
	api API,
	engine *interview.Engine,
	scorer *scoring.Engine,
	synth speech.Synthesizer,
	vacancies *VacancyStore,
	log sheets.RowStore,
	logger *zap.Logger,
) *Bot {
	return &Bot{
		api:        api,
		engine:     engine,
		scorer:     scorer,
		synth:      synth,
		vacancies:  vacancies,
		log:        log,
		logger:     logger,
		MinimumFit: DefaultMinimumFit,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
		convs:      make(map[int64]*conversation),
		now:        time.Now,
	}
}

// Run consumes updates until the channel closes or the context ends.
func (b *Bot) Run(ctx context.Context, updates tgbotapi.UpdatesChannel) error {
	b.logger.Info("bot started")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.HandleUpdate(ctx, update)
		}
	}
}

// HandleUpdate dispatches a single Telegram update.
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		b.handleCallback(update.CallbackQuery)
	case update.Message != nil:
		if update.Message.IsCommand() {
			b.handleCommand(ctx, update.Message)
			return
		}
		b.handleMessage(ctx, update.Message)
	}
}

func (b *Bot) conversation(chatID int64) *conversation {
	b.mu.Lock()
	defer b.mu.Unlock()

	conv, ok := b.convs[chatID]
	if !ok {
		conv = &conversation{}
		b.convs[chatID] = conv
	}
	return conv
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	switch msg.Command() {
	case "start":
		b.handleStart(chatID)
	case "access":
		b.handleAccess(ctx, msg)
	case "stop":
		b.handleStop(ctx, chatID)
	case "help":
		b.handleHelp(msg)
	case "add_vacancy":
		b.handleAddVacancy(msg)
	case "delete_vacancy":
		b.handleDeleteVacancy(msg)
	case "list_vacancies":
		b.handleListVacancies(msg)
	default:
		b.sendText(chatID, "Неизвестная команда. Отправьте /help для списка команд.")
	}
}

func (b *Bot) handleStart(chatID int64) {
	*b.conversation(chatID) = conversation{}

	vacancies := b.vacancies.List()
	if len(vacancies) == 0 {
		b.sendText(chatID, "Здравствуйте! Открытых вакансий пока нет, загляните позже.")
		return
	}

	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(vacancies))
	for _, v := range vacancies {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(v.Title, "vacancy_"+v.ID),
		))
	}

	reply := tgbotapi.NewMessage(chatID, "Здравствуйте! Я провожу первичные собеседования. Выберите вакансию:")
	reply.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	b.send(reply)
}

func (b *Bot) handleCallback(cb *tgbotapi.CallbackQuery) {
	if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		b.logger.Warn("answering callback", zap.Error(err))
	}

	if cb.Message == nil {
		return
	}
	chatID := cb.Message.Chat.ID

	switch {
	case strings.HasPrefix(cb.Data, "vacancy_"):
		b.selectVacancy(chatID, strings.TrimPrefix(cb.Data, "vacancy_"))
	case strings.HasPrefix(cb.Data, "delete_"):
		if !b.isAdmin(cb.From) {
			return
		}
		id := strings.TrimPrefix(cb.Data, "delete_")
		if b.vacancies.Delete(id) {
			b.sendText(chatID, "Вакансия удалена.")
		} else {
			b.sendText(chatID, "Вакансия не найдена.")
		}
	}
}

func (b *Bot) selectVacancy(chatID int64, id string) {
	v, ok := b.vacancies.Get(id)
	if !ok {
		b.sendText(chatID, "Эта вакансия больше не доступна. Отправьте /start.")
		return
	}

	conv := b.conversation(chatID)
	conv.stage = stageAwaitResume
	conv.vacancy = v
	conv.vacancyText = v.Text

	b.sendText(chatID, fmt.Sprintf(
		"Вакансия «%s». Отправьте ваше резюме текстом или файлом (.docx или .txt).", v.Title))
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	conv := b.conversation(chatID)

	switch conv.stage {
	case stageAwaitVacancyText:
		text := strings.TrimSpace(msg.Text)
		if text == "" {
			b.sendText(chatID, "Отправьте текст вакансии одним сообщением.")
			return
		}
		v := b.vacancies.Add(conv.draftTitle, text)
		conv.stage = stageIdle
		conv.draftTitle = ""
		b.sendText(chatID, fmt.Sprintf("Вакансия «%s» добавлена.", v.Title))

	case stageAwaitResume:
		resume, err := b.resumeText(ctx, msg)
		if err != nil {
			b.logger.Warn("reading resume failed", zap.Int64("chat_id", chatID), zap.Error(err))
			b.sendText(chatID, "Не удалось прочитать резюме. Отправьте его текстом или файлом .docx/.txt.")
			return
		}
		if resume == "" {
			b.sendText(chatID, "Резюме пустое. Отправьте его текстом или файлом .docx/.txt.")
			return
		}
		b.screenResume(ctx, msg, conv, resume)

	case stageInterview:
		answer := strings.TrimSpace(msg.Text)
		if answer == "" {
			b.sendText(chatID, "Ответьте, пожалуйста, текстом.")
			return
		}
		b.engine.RecordAnswer(conv.transcript, answer)
		b.askNextQuestion(ctx, chatID, conv)

	default:
		b.sendText(chatID, "Отправьте /start чтобы начать.")
	}
}

// resumeText extracts the resume from a plain message or an attached
// document.
func (b *Bot) resumeText(ctx context.Context, msg *tgbotapi.Message) (string, error) {
	if msg.Document == nil {
		return strings.TrimSpace(msg.Text), nil
	}

	url, err := b.api.GetFileDirectURL(msg.Document.FileID)
	if err != nil {
		return "", fmt.Errorf("resolve document url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := b.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("download document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download document: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	if strings.ToLower(filepath.Ext(msg.Document.FileName)) == ".docx" {
		return scraper.DocxText(bytes.NewReader(data), int64(len(data)))
	}
	return strings.TrimSpace(string(data)), nil
}

// screenResume runs the pre-screen and either invites the candidate
// with an access id or logs the rejection.
func (b *Bot) screenResume(ctx context.Context, msg *tgbotapi.Message, conv *conversation, resume string) {
	chatID := msg.Chat.ID

	percent, analysis, err := b.scorer.QuickMatch(ctx, resume, conv.vacancyText)
	if err != nil {
		b.logger.Error("resume pre-screen failed", zap.Int64("chat_id", chatID), zap.Error(err))
		b.sendText(chatID, "Не удалось оценить резюме. Попробуйте позже.")
		return
	}

	accessID := strconv.FormatInt(chatID, 10)
	status := StatusInvited
	if percent < b.MinimumFit {
		status = StatusRejected
	}

	if err := b.log.AppendRow([]string{
		accessID,
		candidateName(msg.From),
		conv.vacancy.Title,
		conv.vacancyText,
		resume,
		fmt.Sprintf("%d%%", percent),
		analysis,
		status,
		"", "", "",
	}); err != nil {
		b.logger.Error("appending candidate log row", zap.Int64("chat_id", chatID), zap.Error(err))
	}

	conv.stage = stageIdle

	b.logger.Info("resume screened",
		zap.Int64("chat_id", chatID),
		zap.String("vacancy", conv.vacancy.Title),
		zap.Int("match_percent", percent),
		zap.String("status", status),
	)

	if status == StatusRejected {
		b.sendText(chatID, fmt.Sprintf(
			"К сожалению, ваше резюме набрало %d%% соответствия, этого недостаточно для приглашения.\n\n%s",
			percent, analysis))
		return
	}

	b.sendText(chatID, fmt.Sprintf(
		"Поздравляем! Ваше резюме набрало %d%% соответствия.\n\nВаш код доступа: %s\nОтправьте /access %s чтобы начать собеседование.",
		percent, accessID, accessID))
}

func (b *Bot) handleAccess(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	id := strings.TrimSpace(msg.CommandArguments())
	if id == "" {
		b.sendText(chatID, "Использование: /access <код доступа>")
		return
	}

	row, err := b.log.FindRowByColumn(logColID, id)
	if err != nil {
		b.sendText(chatID, "Код доступа не найден.")
		return
	}

	status, err := b.log.Cell(row, logColStatus)
	if err != nil {
		b.logger.Error("reading candidate status", zap.Int("row", row), zap.Error(err))
		b.sendText(chatID, "Не удалось начать собеседование. Попробуйте позже.")
		return
	}
	if status != StatusInvited {
		b.sendText(chatID, "Собеседование по этому коду уже началось или завершено.")
		return
	}

	vacancyTitle, _ := b.log.Cell(row, logColVacancy)
	vacancyText, err1 := b.log.Cell(row, logColVacancyText)
	resume, err2 := b.log.Cell(row, logColResume)
	if err1 != nil || err2 != nil || vacancyText == "" || resume == "" {
		b.sendText(chatID, "Данные кандидата неполны. Пройдите отбор заново через /start.")
		return
	}

	if err := b.log.UpdateCell(row, logColStatus, StatusInProgress); err != nil {
		b.logger.Error("updating candidate status", zap.Int("row", row), zap.Error(err))
	}

	conv := b.conversation(chatID)
	*conv = conversation{
		stage:       stageInterview,
		vacancy:     Vacancy{Title: vacancyTitle},
		vacancyText: vacancyText,
		resume:      resume,
		transcript:  b.engine.Seed(vacancyText, resume),
		logRow:      row,
	}

	b.sendText(chatID, "Начинаем собеседование. Отвечайте на вопросы текстом; /stop завершит собеседование досрочно.")
	b.askNextQuestion(ctx, chatID, conv)
}

func (b *Bot) askNextQuestion(ctx context.Context, chatID int64, conv *conversation) {
	outcome, err := b.engine.NextQuestion(ctx, conv.transcript)
	if err != nil {
		b.logger.Error("generating question failed", zap.Int64("chat_id", chatID), zap.Error(err))
		b.sendText(chatID, "Ошибка генерации вопроса. Отправьте любое сообщение, чтобы попробовать еще раз.")
		return
	}

	if outcome.Terminated {
		b.finishInterview(ctx, chatID, conv)
		return
	}

	b.sendQuestion(ctx, chatID, outcome.Question)
}

// sendQuestion delivers the question as a voice message when synthesis
// succeeds, falling back to plain text.
func (b *Bot) sendQuestion(ctx context.Context, chatID int64, question string) {
	if b.synth != nil {
		if pcm, err := b.synth.Synthesize(ctx, question); err == nil {
			wav := speech.WrapWAV(pcm, speech.SampleRate, speech.Channels, speech.SampleWidth)
			voice := tgbotapi.NewVoice(chatID, tgbotapi.FileBytes{Name: "question.wav", Bytes: wav})
			voice.Caption = question
			if _, err := b.api.Send(voice); err == nil {
				return
			}
			b.logger.Warn("sending voice question failed, falling back to text", zap.Int64("chat_id", chatID))
		}
	}

	b.sendText(chatID, question)
}

// finishInterview formats the protocol, scores the interview and
// persists everything to the candidate log.
func (b *Bot) finishInterview(ctx context.Context, chatID int64, conv *conversation) {
	protocolText := protocol.Format(conv.transcript, b.now())

	rating, report := b.scorer.Score(ctx, conv.resume, conv.vacancyText, protocolText)

	updates := []struct {
		column string
		value  string
	}{
		{logColProtocol, protocol.TruncateProtocol(protocolText)},
		{logColRating, rating},
		{logColReport, protocol.TruncateReport(report)},
		{logColStatus, StatusDone},
	}
	for _, u := range updates {
		if err := b.log.UpdateCell(conv.logRow, u.column, u.value); err != nil {
			b.logger.Error("persisting interview result failed",
				zap.Int("row", conv.logRow),
				zap.String("column", u.column),
				zap.Error(err),
			)
		}
	}

	b.logger.Info("interview finalized",
		zap.Int64("chat_id", chatID),
		zap.Int("row", conv.logRow),
		zap.String("final_rating", rating),
	)

	*conv = conversation{}

	b.sendText(chatID, "Собеседование завершено. Спасибо за уделенное время!\n\n"+rating)
}

func (b *Bot) handleStop(ctx context.Context, chatID int64) {
	conv := b.conversation(chatID)
	if conv.stage != stageInterview {
		b.sendText(chatID, "Сейчас нет активного собеседования.")
		return
	}
	b.finishInterview(ctx, chatID, conv)
}

func (b *Bot) handleHelp(msg *tgbotapi.Message) {
	lines := []string{
		"/start — выбрать вакансию и отправить резюме",
		"/access <код> — начать собеседование по коду доступа",
		"/stop — завершить собеседование досрочно",
		"/help — эта справка",
	}
	if b.isAdmin(msg.From) {
		lines = append(lines,
			"/add_vacancy <название> — добавить вакансию",
			"/delete_vacancy — удалить вакансию",
			"/list_vacancies — список вакансий",
		)
	}
	b.sendText(msg.Chat.ID, strings.Join(lines, "\n"))
}

func (b *Bot) handleAddVacancy(msg *tgbotapi.Message) {
	if !b.requireAdmin(msg) {
		return
	}

	title := strings.TrimSpace(msg.CommandArguments())
	if title == "" {
		b.sendText(msg.Chat.ID, "Использование: /add_vacancy <название>")
		return
	}

	conv := b.conversation(msg.Chat.ID)
	conv.stage = stageAwaitVacancyText
	conv.draftTitle = title

	b.sendText(msg.Chat.ID, "Отправьте текст вакансии одним сообщением.")
}

func (b *Bot) handleDeleteVacancy(msg *tgbotapi.Message) {
	if !b.requireAdmin(msg) {
		return
	}

	vacancies := b.vacancies.List()
	if len(vacancies) == 0 {
		b.sendText(msg.Chat.ID, "Вакансий нет.")
		return
	}

	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(vacancies))
	for _, v := range vacancies {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(v.Title, "delete_"+v.ID),
		))
	}

	reply := tgbotapi.NewMessage(msg.Chat.ID, "Какую вакансию удалить?")
	reply.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	b.send(reply)
}

func (b *Bot) handleListVacancies(msg *tgbotapi.Message) {
	if !b.requireAdmin(msg) {
		return
	}

	vacancies := b.vacancies.List()
	if len(vacancies) == 0 {
		b.sendText(msg.Chat.ID, "Вакансий нет.")
		return
	}

	lines := make([]string, 0, len(vacancies))
	for _, v := range vacancies {
		lines = append(lines, fmt.Sprintf("• %s (%s)", v.Title, v.ID))
	}
	b.sendText(msg.Chat.ID, strings.Join(lines, "\n"))
}

func (b *Bot) isAdmin(user *tgbotapi.User) bool {
	return user != nil && b.AdminID != 0 && user.ID == b.AdminID
}

func (b *Bot) requireAdmin(msg *tgbotapi.Message) bool {
	if b.isAdmin(msg.From) {
		return true
	}
	b.sendText(msg.Chat.ID, "Команда доступна только администратору.")
	return false
}

func (b *Bot) sendText(chatID int64, text string) {
	b.send(tgbotapi.NewMessage(chatID, text))
}

func (b *Bot) send(c tgbotapi.Chattable) {
	if _, err := b.api.Send(c); err != nil {
		b.logger.Error("sending telegram message", zap.Error(err))
	}
}

func candidateName(user *tgbotapi.User) string {
	if user == nil {
		return "Кандидат"
	}
	name := strings.TrimSpace(user.FirstName + " " + user.LastName)
	if name == "" {
		name = user.UserName
	}
	if name == "" {
		name = "Кандидат"
	}
	return name
}
