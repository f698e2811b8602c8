package interview

import (
	"context"
	"fmt"

	"github.com/kruglovb/ai-interviewer/internal/speech"

	"go.uber.org/zap"
)

// SpeakQuestion synthesizes the question and writes it to the fixed
// artifact path, unconditionally replacing the previous question audio.
// There is a single in-flight question at a time, so no playback state
// is kept.
func SpeakQuestion(ctx context.Context, synth speech.Synthesizer, path, question string) error {
	pcm, err := synth.Synthesize(ctx, question)
	if err != nil {
		return fmt.Errorf("synthesize question: %w", err)
	}

	return speech.WriteWAVFile(path, pcm)
}

// TranscribeAnswer converts recorded audio to text. Transcription
// failure degrades to a neutral acknowledgment so the turn is never
// aborted on a recognition error.
func TranscribeAnswer(ctx context.Context, tr speech.Transcriber, audio []byte, logger *zap.Logger) string {
	text, err := tr.Transcribe(ctx, audio)
	if err != nil {
		logger.Warn("transcription failed, using fallback answer", zap.Error(err))
		return FallbackAnswer
	}
	return text
}
