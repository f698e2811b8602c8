package session

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kruglovb/ai-interviewer/internal/transcript"

	"go.uber.org/zap"
)

func TestStorePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.json")

	store := OpenStore(path, zap.NewNop())
	tr := transcript.New(transcript.Turn{Role: transcript.RoleInterviewer, Text: "Вопрос?"})
	store.Put(&Session{
		ID:           "abc",
		Row:          2,
		Transcript:   tr,
		LastActivity: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
		Status:       StatusActive,
	})

	reopened := OpenStore(path, zap.NewNop())
	sess, ok := reopened.Get("abc")
	if !ok {
		t.Fatalf("session missing after reopen")
	}
	if sess.Row != 2 || sess.Status != StatusActive {
		t.Fatalf("unexpected session after reopen: %+v", sess)
	}
	if sess.Transcript.Len() != 1 || sess.Transcript.Last().Text != "Вопрос?" {
		t.Fatalf("transcript lost in persistence round trip")
	}
}

func TestStoreCorruptFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("writing corrupt file: %v", err)
	}

	store := OpenStore(path, zap.NewNop())
	if store.Len() != 0 {
		t.Fatalf("corrupt store must start empty")
	}
}

func TestUsedCodesPersistAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "codes.json")

	codes := OpenUsedCodes(path, zap.NewNop())
	if !codes.Consume("C-1") {
		t.Fatalf("first consume must succeed")
	}
	if codes.Consume("C-1") {
		t.Fatalf("second consume must fail")
	}

	reopened := OpenUsedCodes(path, zap.NewNop())
	if !reopened.IsUsed("C-1") {
		t.Fatalf("used code lost after reopen")
	}
	if reopened.Consume("C-1") {
		t.Fatalf("reopened set must reject the consumed code")
	}
}
