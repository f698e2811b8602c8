// Package protocol renders a completed interview transcript as the
// archival text block stored alongside the candidate row.
package protocol

import (
	"fmt"
	"strings"
	"time"

	"github.com/kruglovb/ai-interviewer/internal/transcript"
)

const (
	separatorWidth = 50

	// minutesPerTurn is the duration heuristic: the protocol reports an
	// approximate length of two minutes per recorded turn.
	minutesPerTurn = 2

	// MaxCellLength bounds protocol and report texts before they are
	// written to a spreadsheet cell.
	MaxCellLength = 40000
)

// Format renders the transcript into a human-readable protocol with
// numbered question/answer pairs and a trailing statistics section.
// System turns are omitted. The output is one-directional: nothing
// parses it back.
func Format(tr *transcript.Transcript, now time.Time) string {
	var b strings.Builder

	b.WriteString(" ПРОТОКОЛ СОБЕСЕДОВАНИЯ \n")
	fmt.Fprintf(&b, "Дата: %s\n\n", now.Format("2006-01-02 15:04:05"))

	questions := 0
	answers := 0
	counted := 0

	for _, turn := range tr.Turns {
		switch turn.Role {
		case transcript.RoleInterviewer:
			questions++
			counted++
			fmt.Fprintf(&b, "ВОПРОС %d:\n", questions)
			fmt.Fprintf(&b, "Интервьюер: %s\n\n", turn.Text)
		case transcript.RoleCandidate:
			answers++
			counted++
			fmt.Fprintf(&b, "ОТВЕТ %d:\n", answers)
			fmt.Fprintf(&b, "Кандидат: %s\n\n", turn.Text)
			b.WriteString(strings.Repeat("-", separatorWidth))
			b.WriteString("\n\n")
		}
	}

	b.WriteString(" СТАТИСТИКА \n")
	fmt.Fprintf(&b, "Всего вопросов: %d\n", questions)
	fmt.Fprintf(&b, "Всего ответов: %d\n", answers)
	fmt.Fprintf(&b, "Общая продолжительность: %d минут (примерно)", counted*minutesPerTurn)

	return b.String()
}

// Truncate bounds text to MaxCellLength, appending the given marker
// when the text was cut.
func Truncate(text, marker string) string {
	if len(text) <= MaxCellLength {
		return text
	}
	return text[:MaxCellLength] + "\n... [" + marker + "]"
}

// TruncateProtocol bounds a protocol text for cell storage.
func TruncateProtocol(text string) string {
	return Truncate(text, "ПРОТОКОЛ ОБРЕЗАН")
}

// TruncateReport bounds a report text for cell storage.
func TruncateReport(text string) string {
	return Truncate(text, "ОТЧЕТ ОБРЕЗАН")
}
