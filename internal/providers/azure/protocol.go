package azure

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	subscriptionKeyHeader = "Ocp-Apim-Subscription-Key"

	pathSpeechConfig  = "speech.config"
	pathSpeechContext = "speech.context"
	pathAudio         = "audio"

	pathTurnStart          = "turn.start"
	pathTurnEnd            = "turn.end"
	pathTranslationHypo    = "translation.hypothesis"
	pathTranslationPhrase  = "translation.phrase"
	recognitionStatusMatch = "Success"
)

// newID returns the dash-free form the service expects for request and connection IDs.
func newID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

func timestamp() string {
	return time.Now().UTC().Format("2006-01-02T15:04:05.000Z")
}

func textFrame(path, requestID, contentType string, body []byte) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Path: %s\r\n", path)
	fmt.Fprintf(&buf, "X-RequestId: %s\r\n", requestID)
	fmt.Fprintf(&buf, "X-Timestamp: %s\r\n", timestamp())
	fmt.Fprintf(&buf, "Content-Type: %s\r\n\r\n", contentType)
	buf.Write(body)
	return buf.Bytes()
}

// audioFrame prefixes the headers with their big-endian 16-bit length.
// An empty chunk marks the end of the audio stream.
func audioFrame(requestID string, chunk []byte) []byte {
	headers := fmt.Sprintf("Path: %s\r\nX-RequestId: %s\r\nX-Timestamp: %s\r\nContent-Type: audio/x-wav\r\n",
		pathAudio, requestID, timestamp())

	frame := make([]byte, 2, 2+len(headers)+len(chunk))
	binary.BigEndian.PutUint16(frame, uint16(len(headers)))
	frame = append(frame, headers...)
	return append(frame, chunk...)
}

// wavHeader describes an open-ended PCM stream; sizes are left at zero.
func wavHeader(sampleRate, channels int) []byte {
	const bitsPerSample = 16
	blockAlign := channels * bitsPerSample / 8

	buf := make([]byte, 44)
	copy(buf[0:], "RIFF")
	copy(buf[8:], "WAVE")
	copy(buf[12:], "fmt ")
	binary.LittleEndian.PutUint32(buf[16:], 16)
	binary.LittleEndian.PutUint16(buf[20:], 1)
	binary.LittleEndian.PutUint16(buf[22:], uint16(channels))
	binary.LittleEndian.PutUint32(buf[24:], uint32(sampleRate))
	binary.LittleEndian.PutUint32(buf[28:], uint32(sampleRate*blockAlign))
	binary.LittleEndian.PutUint16(buf[32:], uint16(blockAlign))
	binary.LittleEndian.PutUint16(buf[34:], bitsPerSample)
	copy(buf[36:], "data")
	return buf
}

type message struct {
	headers map[string]string
	body    []byte
}

func (m message) path() string {
	return strings.ToLower(m.headers["path"])
}

func parseTextFrame(payload []byte) (message, error) {
	head, body, found := bytes.Cut(payload, []byte("\r\n\r\n"))
	if !found {
		return message{}, errors.New("malformed service message: missing header terminator")
	}

	headers := map[string]string{}
	for _, line := range strings.Split(string(head), "\r\n") {
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		headers[strings.ToLower(strings.TrimSpace(name))] = strings.TrimSpace(value)
	}
	return message{headers: headers, body: body}, nil
}

type speechConfigPayload struct {
	Context struct {
		System struct {
			Name    string `json:"name"`
			Version string `json:"version"`
			Build   string `json:"build"`
			Lang    string `json:"lang"`
		} `json:"system"`
		OS struct {
			Platform string `json:"platform"`
			Name     string `json:"name"`
		} `json:"os"`
		Audio struct {
			Source struct {
				Type  string `json:"type"`
				Model string `json:"model"`
			} `json:"source"`
		} `json:"audio"`
	} `json:"context"`
	Recognition string `json:"recognition"`
}

func buildSpeechConfig() ([]byte, error) {
	var payload speechConfigPayload
	payload.Context.System.Name = "parley"
	payload.Context.System.Version = "1.0.0"
	payload.Context.System.Build = "Go"
	payload.Context.System.Lang = "Go"
	payload.Context.OS.Platform = runtime.GOOS
	payload.Context.OS.Name = runtime.GOARCH
	payload.Context.Audio.Source.Type = "Microphones"
	payload.Context.Audio.Source.Model = "ffmpeg"
	payload.Recognition = "conversation"
	return json.Marshal(payload)
}

type languageIDContext struct {
	Languages []string `json:"languages"`
	OnSuccess struct {
		Action string `json:"action"`
	} `json:"onSuccess"`
	OnUnknown struct {
		Action string `json:"action"`
	} `json:"onUnknown"`
	Mode     string `json:"mode"`
	Priority string `json:"priority"`
}

type translationContext struct {
	TargetLanguages []string `json:"targetLanguages"`
	Output          struct {
		IncludePassThroughResults bool `json:"includePassThroughResults"`
		InterimResults            struct {
			Mode string `json:"mode"`
		} `json:"interimResults"`
	} `json:"output"`
	OnSuccess struct {
		Action string `json:"action"`
	} `json:"onSuccess"`
}

type speechContextPayload struct {
	LanguageID  languageIDContext  `json:"languageId"`
	Translation translationContext `json:"translation"`
}

// buildSpeechContext enables continuous language identification over sources
// and translation into every target.
func buildSpeechContext(sources, targets []string) ([]byte, error) {
	if len(sources) == 0 {
		return nil, errors.New("at least one source language is required")
	}
	if len(targets) == 0 {
		return nil, errors.New("at least one target language is required")
	}

	var payload speechContextPayload
	payload.LanguageID.Languages = sources
	payload.LanguageID.OnSuccess.Action = "Recognize"
	payload.LanguageID.OnUnknown.Action = "None"
	payload.LanguageID.Mode = "DetectContinuous"
	payload.LanguageID.Priority = "PrioritizeLatency"
	payload.Translation.TargetLanguages = targets
	payload.Translation.Output.IncludePassThroughResults = true
	payload.Translation.Output.InterimResults.Mode = "Always"
	payload.Translation.OnSuccess.Action = "None"
	return json.Marshal(payload)
}

type translationResult struct {
	RecognitionStatus string `json:"RecognitionStatus"`
	Text              string `json:"Text"`
	PrimaryLanguage   struct {
		Language   string `json:"Language"`
		Confidence string `json:"Confidence"`
	} `json:"PrimaryLanguage"`
	Translation struct {
		TranslationStatus string `json:"TranslationStatus"`
		FailureReason     string `json:"FailureReason"`
		Translations      []struct {
			Language string `json:"Language"`
			Text     string `json:"Text"`
		} `json:"Translations"`
	} `json:"Translation"`
}

func (r translationResult) translations() map[string]string {
	out := make(map[string]string, len(r.Translation.Translations))
	for _, t := range r.Translation.Translations {
		out[t.Language] = t.Text
	}
	return out
}
