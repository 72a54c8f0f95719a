package ports

import (
	"context"
	"io"

	"parley/internal/domain"
)

// AudioConfig describes how the microphone should be captured.
type AudioConfig struct {
	SampleRate  int
	Channels    int
	InputFormat string
	InputDevice string
}

// AudioSession is a live capture session.
type AudioSession interface {
	io.ReadCloser
	Stop() error
}

// AudioCapture creates microphone capture sessions.
type AudioCapture interface {
	Start(ctx context.Context, cfg AudioConfig) (AudioSession, error)
}

// StreamingConfig describes the auto-detect candidates and translation outputs of a session.
type StreamingConfig struct {
	SampleRate      int
	Channels        int
	SourceLanguages []string
	TargetLanguages []string
}

// StreamingSession is an active translation session.
type StreamingSession interface {
	SendAudio(chunk []byte) error
	CloseSend() error
	Events() <-chan domain.RecognitionEvent
	Wait() error
	Close() error
}

// TranslationProvider starts streaming speech-translation sessions.
type TranslationProvider interface {
	StartStreaming(ctx context.Context, cfg StreamingConfig) (StreamingSession, error)
}

// Synthesizer turns text into playable audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, req domain.SynthesisRequest) ([]byte, error)
}

// SpeechBackend is a configured connection to the speech service.
type SpeechBackend interface {
	TranslationProvider
	Synthesizer
}

// BackendFactory builds a SpeechBackend from credentials.
type BackendFactory interface {
	Open(ctx context.Context, creds domain.Credentials) (SpeechBackend, error)
}

// Player plays synthesized audio and returns once playback has finished.
type Player interface {
	Play(ctx context.Context, audio []byte) error
}

// EventSink emits backend state/events to the UI.
type EventSink interface {
	SessionStateChanged(state domain.SessionState, reason domain.SessionStateReason)
	PartialTranscript(text string)
	ChatMessage(msg domain.ChatMessage)
	PlaybackChanged(languageCode string, playing bool)
	SessionError(code domain.ErrorCode, detail string)
}
