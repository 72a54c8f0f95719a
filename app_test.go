package main

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"parley/internal/domain"
	"parley/internal/languages"
)

func TestSessionReasonMessage(t *testing.T) {
	t.Parallel()

	cases := map[domain.SessionStateReason]string{
		domain.SessionReasonConfigured:        "Ready",
		domain.SessionReasonNotConfigured:     "Enter a speech key and region",
		domain.SessionReasonListeningStarted:  "Listening...",
		domain.SessionReasonListeningRestart:  "Listening again; previous capture discarded",
		domain.SessionReasonRecognizing:       "Recognizing...",
		domain.SessionReasonServiceStarted:    "Session started",
		domain.SessionReasonServiceStopped:    "Session stopped",
		domain.SessionReasonProcessing:        "Processing...",
		domain.SessionReasonListeningStopped:  "Idle",
		domain.SessionReasonListeningDiscard:  "Listening discarded",
		domain.SessionReasonRecognitionFailed: "Recognition failed",
		domain.SessionReasonConversationReset: "Conversation cleared",
	}

	for reason, want := range cases {
		reason, want := reason, want
		t.Run(string(reason), func(t *testing.T) {
			t.Parallel()
			if got := sessionReasonMessage(reason); got != want {
				t.Fatalf("unexpected message: %q", got)
			}
		})
	}

	if got := sessionReasonMessage("unknown"); got != "" {
		t.Fatalf("expected empty unknown reason message, got %q", got)
	}
}

func TestErrorMessage(t *testing.T) {
	t.Parallel()

	cases := map[domain.ErrorCode]string{
		domain.ErrorCodeStartup:       "Startup failed",
		domain.ErrorCodeConfiguration: "Speech service configuration failed",
		domain.ErrorCodeAudioStop:     "Audio stop issue",
		domain.ErrorCodeAudioStream:   "Audio streaming issue",
		domain.ErrorCodeRecognition:   "Recognition error",
		domain.ErrorCodeSynthesis:     "Speech playback failed",
	}
	for code, want := range cases {
		code, want := code, want
		t.Run(string(code), func(t *testing.T) {
			t.Parallel()
			if got := errorMessage(code, "ignored"); got != want {
				t.Fatalf("unexpected message: %q", got)
			}
		})
	}

	if got := errorMessage("unknown", "detail"); got != "detail" {
		t.Fatalf("expected detail fallback, got %q", got)
	}
	if got := errorMessage("unknown", ""); got != "Unknown error" {
		t.Fatalf("expected unknown fallback, got %q", got)
	}
}

func TestPlaybackMessage(t *testing.T) {
	t.Parallel()

	if got := playbackMessage("ja", true); got != "Playing (ja)" {
		t.Fatalf("unexpected playing message: %q", got)
	}
	if got := playbackMessage("ja", false); got != "Idle" {
		t.Fatalf("unexpected idle message: %q", got)
	}
}

func TestRequireReady(t *testing.T) {
	t.Parallel()

	app := &App{}
	if err := app.requireReady(); err == nil {
		t.Fatalf("expected uninitialized error")
	}

	bootErr := errors.New("boot")
	app.bootErr = bootErr
	if err := app.requireReady(); !errors.Is(err, bootErr) {
		t.Fatalf("expected boot error, got %v", err)
	}
	if _, err := app.StartTalking(); !errors.Is(err, bootErr) {
		t.Fatalf("expected boot error from StartTalking, got %v", err)
	}
}

func TestGetStatusWhenNotInitialized(t *testing.T) {
	t.Parallel()

	app := &App{}
	status := app.GetStatus()
	if status.State != domain.SessionStateUnconfigured || status.Active {
		t.Fatalf("unexpected status: %+v", status)
	}

	app.bootErr = errors.New("boot")
	status = app.GetStatus()
	if status.State != domain.SessionStateError || status.Active != false || status.Message != "boot" {
		t.Fatalf("unexpected boot status: %+v", status)
	}
}

func TestGetLanguages(t *testing.T) {
	t.Parallel()

	app := &App{}
	if got := app.GetLanguages(); got != nil {
		t.Fatalf("expected no languages before startup, got %v", got)
	}

	app.languages = languages.Default()
	if got := app.GetLanguages(); len(got) != 10 || got[0].TargetCode != "zh-Hans" {
		t.Fatalf("unexpected languages: %v", got)
	}
}

func TestEventSinkIgnoresEventsBeforeStartup(t *testing.T) {
	t.Parallel()

	app := NewApp()
	app.SessionStateChanged(domain.SessionStateIdle, domain.SessionReasonConfigured)
	app.PartialTranscript("hi")
	app.ChatMessage(domain.NewChatMessage("hi", "你好", "en", "中文", false))
	app.PlaybackChanged("zh-Hans", true)
	app.SessionError(domain.ErrorCodeSynthesis, "boom")
}

func TestServeUI(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	serveUI(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Hold to talk") {
		t.Fatalf("unexpected index response: %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	serveUI(rec, httptest.NewRequest(http.MethodGet, "/missing.js", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected not found, got %d", rec.Code)
	}
}
