package httpapi

import (
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/kruglovb/ai-interviewer/internal/interview"
	"github.com/kruglovb/ai-interviewer/internal/protocol"
	"github.com/kruglovb/ai-interviewer/internal/session"
	"github.com/kruglovb/ai-interviewer/internal/sheets"
)

type checkCodeResponse struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message"`
}

type messageResponse struct {
	HasMessage bool   `json:"has_message"`
	Message    string `json:"message,omitempty"`
	AudioURL   string `json:"audio_url,omitempty"`
}

type statusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Text    string `json:"text,omitempty"`
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

// handleIndex drops any existing session so a reload always starts the
// flow from code entry.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if sess, ok := s.sessionFromRequest(r); ok {
		s.manager.Destroy(sess.ID)
	}
	s.clearSessionCookie(w)

	if s.StaticDir != "" {
		http.ServeFile(w, r, filepath.Join(s.StaticDir, "index.html"))
		return
	}

	writeJSON(w, statusResponse{Status: "ok", Message: "Введите код доступа."})
}

func (s *Server) handleCheckCode(w http.ResponseWriter, r *http.Request) {
	code := r.FormValue("code")

	row, ok := s.manager.ValidateCode(code)
	if !ok {
		writeJSON(w, checkCodeResponse{
			Valid:   false,
			Message: "Вы уже прошли собеседование или неверный код.",
		})
		return
	}

	sess, err := s.manager.CreateSession(row, s.engine.Seed)
	if err != nil {
		s.logger.Error("creating session failed", zap.Int("row", row), zap.Error(err))
		writeJSON(w, statusResponse{Status: "error", Message: "Не удалось начать собеседование."})
		return
	}

	s.setSessionCookie(w, sess.ID)

	writeJSON(w, checkCodeResponse{
		Valid:   true,
		Message: "Код принят. Собеседование начинается.",
	})
}

func (s *Server) handleGetMessage(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionFromRequest(r)
	if !ok {
		writeJSON(w, messageResponse{HasMessage: false, Message: "Сессия не найдена."})
		return
	}

	s.manager.Touch(sess)

	outcome, err := s.engine.NextQuestion(r.Context(), sess.Transcript)
	if err != nil {
		s.logger.Error("generating question failed", zap.String("session_id", sess.ID), zap.Error(err))
		writeJSON(w, messageResponse{HasMessage: false, Message: "Ошибка генерации вопроса. Попробуйте еще раз."})
		return
	}

	if outcome.Terminated {
		s.finalize(r, sess)
		s.clearSessionCookie(w)
		writeJSON(w, messageResponse{
			HasMessage: false,
			Message:    "Собеседование завершено. Результаты проанализированы и сохранены.",
		})
		return
	}

	s.manager.Save(sess)

	if err := interview.SpeakQuestion(r.Context(), s.synth, s.QuestionAudioPath, outcome.Question); err != nil {
		s.logger.Error("question synthesis failed", zap.String("session_id", sess.ID), zap.Error(err))
		writeJSON(w, messageResponse{HasMessage: false, Message: "Ошибка генерации аудио."})
		return
	}

	// Random query parameter defeats browser caching of the artifact.
	writeJSON(w, messageResponse{
		HasMessage: true,
		AudioURL:   fmt.Sprintf("/get_audio?%d", rand.Intn(1000000)),
	})
}

// finalize formats the protocol, scores the interview and persists all
// three results before destroying the session.
func (s *Server) finalize(r *http.Request, sess *session.Session) {
	protocolText := protocol.Format(sess.Transcript, s.now())

	rating, report := s.scorer.Score(r.Context(), sess.CandidateData, sess.VacancyData, protocolText)

	updates := []struct {
		column string
		value  string
	}{
		{sheets.ColProtocol, protocol.TruncateProtocol(protocolText)},
		{sheets.ColFinalRating, rating},
		{sheets.ColReport, protocol.TruncateReport(report)},
	}

	for _, u := range updates {
		if err := s.table.UpdateCell(sess.Row, u.column, u.value); err != nil {
			s.logger.Error("persisting interview result failed",
				zap.Int("row", sess.Row),
				zap.String("column", u.column),
				zap.Error(err),
			)
		}
	}

	s.logger.Info("interview finalized",
		zap.String("session_id", sess.ID),
		zap.Int("row", sess.Row),
		zap.String("final_rating", rating),
	)

	s.manager.Destroy(sess.ID)
}

func (s *Server) handleGetAudio(w http.ResponseWriter, r *http.Request) {
	http.ServeFile(w, r, s.QuestionAudioPath)
}

func (s *Server) handleSaveResponse(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionFromRequest(r)
	if !ok {
		writeJSON(w, statusResponse{Status: "error", Message: "Сессия не найдена"})
		return
	}

	s.manager.Touch(sess)

	file, _, err := r.FormFile("audio_data")
	if err != nil {
		writeJSON(w, statusResponse{Status: "error", Message: "No audio file provided"})
		return
	}
	defer file.Close()

	audio, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, statusResponse{Status: "error", Message: "Не удалось прочитать аудио"})
		return
	}

	text := interview.TranscribeAnswer(r.Context(), s.stt, audio, s.logger)

	s.engine.RecordAnswer(sess.Transcript, text)
	s.manager.Save(sess)

	writeJSON(w, statusResponse{
		Status:  "success",
		Message: "Ответ сохранен и обработан",
		Text:    text,
	})
}

func (s *Server) handleResetCodes(w http.ResponseWriter, _ *http.Request) {
	if err := s.manager.ResetCodes(); err != nil {
		writeJSON(w, statusResponse{Status: "error", Message: err.Error()})
		return
	}
	writeJSON(w, statusResponse{Status: "success", Message: "Коды сброшены"})
}
