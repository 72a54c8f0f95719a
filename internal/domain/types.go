package domain

import (
	"time"

	"github.com/google/uuid"
)

// SessionState models the listening lifecycle.
type SessionState string

const (
	SessionStateUnconfigured SessionState = "unconfigured"
	SessionStateIdle         SessionState = "idle"
	SessionStateListening    SessionState = "listening"
	SessionStateStopping     SessionState = "stopping"
	SessionStateError        SessionState = "error"
)

// SessionStateReason provides a structured reason for state transitions.
type SessionStateReason string

const (
	SessionReasonConfigured        SessionStateReason = "configured"
	SessionReasonNotConfigured     SessionStateReason = "not_configured"
	SessionReasonListeningStarted  SessionStateReason = "listening_started"
	SessionReasonListeningRestart  SessionStateReason = "listening_restarted"
	SessionReasonRecognizing       SessionStateReason = "recognizing"
	SessionReasonServiceStarted    SessionStateReason = "service_session_started"
	SessionReasonServiceStopped    SessionStateReason = "service_session_stopped"
	SessionReasonProcessing        SessionStateReason = "processing"
	SessionReasonListeningStopped  SessionStateReason = "listening_stopped"
	SessionReasonListeningDiscard  SessionStateReason = "listening_discarded"
	SessionReasonRecognitionFailed SessionStateReason = "recognition_failed"
	SessionReasonConversationReset SessionStateReason = "conversation_reset"
)

// ErrorCode identifies non-fatal and fatal backend errors.
type ErrorCode string

const (
	ErrorCodeStartup       ErrorCode = "startup"
	ErrorCodeConfiguration ErrorCode = "configuration"
	ErrorCodeAudioStop     ErrorCode = "audio_stop"
	ErrorCodeAudioStream   ErrorCode = "audio_stream"
	ErrorCodeRecognition   ErrorCode = "recognition"
	ErrorCodeSynthesis     ErrorCode = "synthesis"
)

// RecognitionKind tags a RecognitionEvent.
type RecognitionKind string

const (
	RecognitionInterim        RecognitionKind = "interim"
	RecognitionFinal          RecognitionKind = "final"
	RecognitionError          RecognitionKind = "error"
	RecognitionSessionStarted RecognitionKind = "session_started"
	RecognitionSessionStopped RecognitionKind = "session_stopped"
)

// RecognitionEvent is one event delivered by a streaming translation session.
// DetectedLanguage, Text and Translations are set for interim and final events;
// Message is set for error events.
type RecognitionEvent struct {
	Kind             RecognitionKind   `json:"kind"`
	DetectedLanguage string            `json:"detectedLanguage,omitempty"`
	Text             string            `json:"text,omitempty"`
	Translations     map[string]string `json:"translations,omitempty"`
	Message          string            `json:"message,omitempty"`
}

// ChatMessage is one routed turn of the conversation.
type ChatMessage struct {
	ID             string    `json:"id"`
	OriginalText   string    `json:"originalText"`
	TranslatedText string    `json:"translatedText"`
	SourceLabel    string    `json:"sourceLabel"`
	TargetLabel    string    `json:"targetLabel"`
	IsHomeSide     bool      `json:"isHomeSide"`
	CreatedAt      time.Time `json:"createdAt"`
}

// NewChatMessage stamps a message with a fresh ID and creation time.
func NewChatMessage(original, translated, sourceLabel, targetLabel string, isHomeSide bool) ChatMessage {
	return ChatMessage{
		ID:             uuid.NewString(),
		OriginalText:   original,
		TranslatedText: translated,
		SourceLabel:    sourceLabel,
		TargetLabel:    targetLabel,
		IsHomeSide:     isHomeSide,
		CreatedAt:      time.Now().UTC(),
	}
}

// SynthesisRequest asks the speech output to speak Text.
type SynthesisRequest struct {
	Text         string `json:"text"`
	LanguageCode string `json:"languageCode"`
	VoiceName    string `json:"voiceName"`
}

// Credentials identify the cloud speech resource.
type Credentials struct {
	Key    string
	Region string
}

// Status summarizes the current runtime status.
type Status struct {
	State         SessionState `json:"state"`
	Active        bool         `json:"active"`
	ForeignTarget string       `json:"foreignTarget"`
	Message       string       `json:"message,omitempty"`
}
