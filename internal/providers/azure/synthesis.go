package azure

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"parley/internal/domain"
)

// Synthesize renders req as SSML and returns the audio in the configured output format.
func (c *Client) Synthesize(ctx context.Context, req domain.SynthesisRequest) ([]byte, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, errors.New("nothing to synthesize")
	}

	ssml, err := buildSSML(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.ttsURL, bytes.NewReader(ssml))
	if err != nil {
		return nil, fmt.Errorf("invalid Azure TTS endpoint: %w", err)
	}
	httpReq.Header.Set(subscriptionKeyHeader, c.key)
	httpReq.Header.Set("Content-Type", "application/ssml+xml")
	httpReq.Header.Set("X-Microsoft-OutputFormat", c.outputFormat)
	httpReq.Header.Set("User-Agent", "parley")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("tts request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("tts failed (%d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read tts audio: %w", err)
	}
	c.log.Debug("synthesized speech",
		zap.String("language", req.LanguageCode),
		zap.String("voice", req.VoiceName),
		zap.Int("bytes", len(audio)),
	)
	return audio, nil
}

func buildSSML(req domain.SynthesisRequest) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("<speak version='1.0' xml:lang='")
	if err := xml.EscapeText(&buf, []byte(req.LanguageCode)); err != nil {
		return nil, err
	}
	buf.WriteString("'><voice name='")
	if err := xml.EscapeText(&buf, []byte(req.VoiceName)); err != nil {
		return nil, err
	}
	buf.WriteString("'>")
	if err := xml.EscapeText(&buf, []byte(req.Text)); err != nil {
		return nil, err
	}
	buf.WriteString("</voice></speak>")
	return buf.Bytes(), nil
}
