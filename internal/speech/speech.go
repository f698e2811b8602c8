package speech

import (
	"context"
	"errors"
)

// ErrUnrecognized is returned by a Transcriber when the audio contains no
// recognizable speech. Callers substitute a neutral acknowledgment
// instead of failing the turn.
var ErrUnrecognized = errors.New("speech not recognized")

// Synthesizer converts text to raw LPCM audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// Transcriber converts a WAV recording to text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte) (string, error)
}
