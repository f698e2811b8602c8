package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	ttsURL = "https://tts.api.cloud.yandex.net/speech/v1/tts:synthesize"
	sttURL = "https://stt.api.cloud.yandex.net/speech/v1/stt:recognize"

	defaultVoice = "ermil"
	defaultLang  = "ru-RU"
)

// YandexClient talks to the Yandex SpeechKit HTTP API for both synthesis
// and transcription.
type YandexClient struct {
	apiKey   string
	folderID string
	logger   *zap.Logger

	HTTPClient *http.Client
	TTSURL     string
	STTURL     string
	Voice      string
	Lang       string
}

func NewYandexClient(apiKey, folderID string, logger *zap.Logger) *YandexClient {
	return &YandexClient{
		apiKey:   apiKey,
		folderID: folderID,
		logger:   logger,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		TTSURL: ttsURL,
		STTURL: sttURL,
		Voice:  defaultVoice,
		Lang:   defaultLang,
	}
}

// Synthesize converts text to raw LPCM at the fixed sample rate.
func (c *YandexClient) Synthesize(ctx context.Context, text string) ([]byte, error) {
	form := url.Values{}
	form.Set("text", text)
	form.Set("lang", c.Lang)
	form.Set("voice", c.Voice)
	form.Set("format", "lpcm")
	form.Set("sampleRateHertz", strconv.Itoa(SampleRate))
	form.Set("folderId", c.folderID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.TTSURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", fmt.Sprintf("Api-Key %s", c.apiKey))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tts request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tts bad status: %s", resp.Status)
	}

	pcm, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("tts read body: %w", err)
	}

	c.logger.Debug("synthesized speech", zap.Int("pcm_bytes", len(pcm)))

	return pcm, nil
}

type recognizeResponse struct {
	Result string `json:"result"`
}

// Transcribe sends a recording to the recognition endpoint. An empty
// recognition result maps to ErrUnrecognized.
func (c *YandexClient) Transcribe(ctx context.Context, audio []byte) (string, error) {
	q := url.Values{}
	q.Set("lang", c.Lang)
	q.Set("folderId", c.folderID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.STTURL, bytes.NewReader(audio))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", fmt.Sprintf("Api-Key %s", c.apiKey))
	req.URL.RawQuery = q.Encode()

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("stt request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("stt bad status: %s", resp.Status)
	}

	var parsed recognizeResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("stt decode response: %w", err)
	}

	text := strings.TrimSpace(parsed.Result)
	if text == "" {
		return "", ErrUnrecognized
	}

	c.logger.Debug("transcribed speech", zap.Int("chars", len(text)))

	return text, nil
}
