package speech

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
)

// Fixed waveform parameters used by the synthesis pipeline: mono LPCM,
// 16-bit samples at 48 kHz.
const (
	SampleRate  = 48000
	Channels    = 1
	SampleWidth = 2
)

// WrapWAV prefixes raw LPCM data with a RIFF/WAVE header.
func WrapWAV(pcm []byte, sampleRate, channels, sampleWidth int) []byte {
	var buf bytes.Buffer

	byteRate := sampleRate * channels * sampleWidth
	blockAlign := channels * sampleWidth

	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+len(pcm)))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(&buf, binary.LittleEndian, uint16(channels))
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(&buf, binary.LittleEndian, uint32(byteRate))
	binary.Write(&buf, binary.LittleEndian, uint16(blockAlign))
	binary.Write(&buf, binary.LittleEndian, uint16(sampleWidth*8))

	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(len(pcm)))
	buf.Write(pcm)

	return buf.Bytes()
}

// WriteWAVFile converts LPCM to WAV and writes it to path, replacing any
// previous artifact at that location.
func WriteWAVFile(path string, pcm []byte) error {
	wav := WrapWAV(pcm, SampleRate, Channels, SampleWidth)
	if err := os.WriteFile(path, wav, 0o644); err != nil {
		return fmt.Errorf("write wav file: %w", err)
	}
	return nil
}
