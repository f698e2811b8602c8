package bot

// Column names of the bot candidate log. The log is a separate workbook
// from the scraped-candidate table: rows are keyed by the access id the
// candidate redeems with /access.
const (
	logColID          = "ID"
	logColName        = "ФИО"
	logColVacancy     = "Вакансия"
	logColVacancyText = "Текст вакансии"
	logColResume      = "Резюме"
	logColMatch       = "Соответствие"
	logColAnalysis    = "Анализ"
	logColStatus      = "Статус"
	logColProtocol    = "Протокол"
	logColRating      = "Финальный отчёт"
	logColReport      = "Глубинный анализ"
)

// Candidate lifecycle statuses in the log.
const (
	StatusInvited    = "Приглашён"
	StatusRejected   = "Отклонён"
	StatusInProgress = "Проходит собеседование"
	StatusDone       = "Завершено"
)

// LogHeaders is the header row of the bot candidate log workbook.
func LogHeaders() []string {
	return []string{
		logColID,
		logColName,
		logColVacancy,
		logColVacancyText,
		logColResume,
		logColMatch,
		logColAnalysis,
		logColStatus,
		logColProtocol,
		logColRating,
		logColReport,
	}
}
