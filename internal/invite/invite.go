// Package invite sends SMS invitations to screened candidates from the
// candidate table.
package invite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kruglovb/ai-interviewer/internal/sheets"
	"github.com/kruglovb/ai-interviewer/internal/utils"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"go.uber.org/zap"
)

const (
	defaultPause = time.Second

	// vacancyPreviewLength bounds the vacancy snippet embedded in the SMS.
	vacancyPreviewLength = 50
)

// Sender delivers one SMS. Delivery is fire-and-forget: the returned id
// is only logged.
type Sender interface {
	SendSMS(ctx context.Context, to, body string) (string, error)
}

// TwilioSender sends SMS through the Twilio REST API.
type TwilioSender struct {
	client *twilio.RestClient
	from   string
}

func NewTwilioSender(accountSID, authToken, from string) *TwilioSender {
	return &TwilioSender{
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: accountSID,
			Password: authToken,
		}),
		from: from,
	}
}

func (s *TwilioSender) SendSMS(_ context.Context, to, body string) (string, error) {
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(s.from)
	params.SetBody(body)

	message, err := s.client.Api.CreateMessage(params)
	if err != nil {
		return "", fmt.Errorf("create message: %w", err)
	}

	if message.Sid == nil {
		return "", nil
	}
	return *message.Sid, nil
}

// Stats summarizes one invitation run.
type Stats struct {
	Candidates int
	Sent       int
	Failed     int
	Skipped    int
}

// Inviter walks the candidate table and sends an invitation to every
// row with a phone and an access code that was not invited yet.
type Inviter struct {
	table  sheets.RowStore
	sender Sender
	logger *zap.Logger

	SiteLink string
	Pause    time.Duration

	now func() time.Time
}

func New(table sheets.RowStore, sender Sender, siteLink string, logger *zap.Logger) *Inviter {
	return &Inviter{
		table:    table,
		sender:   sender,
		logger:   logger,
		SiteLink: siteLink,
		Pause:    defaultPause,
		now:      time.Now,
	}
}

func (inv *Inviter) Run(ctx context.Context) (*Stats, error) {
	count, err := inv.table.RowCount()
	if err != nil {
		return nil, fmt.Errorf("row count: %w", err)
	}

	stats := &Stats{}

	for row := 2; row <= count; row++ {
		phone, _ := inv.table.Cell(row, sheets.ColPhone)
		code, _ := inv.table.Cell(row, sheets.ColCode)
		if phone == "" || code == "" {
			continue
		}

		stats.Candidates++

		if sent, _ := inv.table.Cell(row, sheets.ColSMSSent); sent != "" {
			stats.Skipped++
			continue
		}

		normalized, err := NormalizePhone(phone)
		if err != nil {
			inv.logger.Warn("skipping candidate with unusable phone",
				zap.Int("row", row),
				zap.String("phone", phone),
				zap.Error(err),
			)
			stats.Failed++
			continue
		}

		name, _ := inv.table.Cell(row, sheets.ColName)
		vacancy, _ := inv.table.Cell(row, sheets.ColVacancyText)

		body := SMSText(name, vacancy, code, inv.SiteLink)

		sid, err := inv.sender.SendSMS(ctx, normalized, body)
		if err != nil {
			inv.logger.Error("sending SMS failed",
				zap.Int("row", row),
				zap.String("phone", normalized),
				zap.Error(err),
			)
			stats.Failed++
			continue
		}

		inv.logger.Info("SMS sent",
			zap.Int("row", row),
			zap.String("phone", normalized),
			zap.String("message_sid", sid),
		)

		mark := fmt.Sprintf("Отправлено %s", inv.now().Format("2006-01-02 15:04:05"))
		if err := inv.table.UpdateCell(row, sheets.ColSMSSent, mark); err != nil {
			inv.logger.Error("marking candidate as invited failed", zap.Int("row", row), zap.Error(err))
		}

		stats.Sent++

		if row < count {
			utils.WaitFor(ctx, inv.Pause)
		}
	}

	inv.logger.Info("invitation run finished",
		zap.Int("candidates", stats.Candidates),
		zap.Int("sent", stats.Sent),
		zap.Int("failed", stats.Failed),
		zap.Int("skipped", stats.Skipped),
	)

	return stats, nil
}

// NormalizePhone strips formatting and converts Russian local notation
// to international form.
func NormalizePhone(raw string) (string, error) {
	var digits strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}

	cleaned := digits.String()

	if strings.HasPrefix(cleaned, "8") && len(cleaned) == 11 {
		cleaned = "7" + cleaned[1:]
	}
	if len(cleaned) == 10 {
		cleaned = "7" + cleaned
	}

	if len(cleaned) < 11 {
		return "", fmt.Errorf("phone number too short: %q", raw)
	}

	return "+" + cleaned, nil
}

// SMSText renders the invitation message.
func SMSText(name, vacancy, code, siteLink string) string {
	if name == "" {
		name = "Кандидат"
	}

	var vacancyText string
	if vacancy != "" {
		preview := vacancy
		suffix := ""
		if len([]rune(preview)) > vacancyPreviewLength {
			preview = string([]rune(preview)[:vacancyPreviewLength])
			suffix = "..."
		}
		vacancyText = fmt.Sprintf("по вакансии '%s%s'", preview, suffix)
	} else {
		vacancyText = "в нашу компанию"
	}

	return fmt.Sprintf(`Добрый день, %s! Приглашаем Вас пройти онлайн-собеседование на вакансию %s.

Ваш код доступа: %s
Сайт для прохождения: %s

Собеседование займет 15-20 минут. Желаем успехов!`, name, vacancyText, code, siteLink)
}
