package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/wailsapp/wails/v2/pkg/runtime"
	"go.uber.org/zap"

	"parley/internal/bootstrap"
	"parley/internal/config"
	"parley/internal/domain"
	"parley/internal/languages"
	"parley/internal/usecase"
)

const (
	eventSession  = "parley:session"
	eventPartial  = "parley:partial"
	eventMessage  = "parley:message"
	eventPlayback = "parley:playback"
	eventError    = "parley:error"
)

// App is the Wails application root.
type App struct {
	ctx context.Context

	controller *usecase.ConversationController
	languages  *languages.Table
	cfg        config.Config
	log        *zap.Logger
	bootErr    error
}

func NewApp() *App {
	return &App{log: zap.NewNop()}
}

func (a *App) startup(ctx context.Context) {
	a.ctx = ctx

	services, err := bootstrap.Build(a)
	if err != nil {
		a.bootErr = err
		a.SessionError(domain.ErrorCodeStartup, err.Error())
		return
	}

	a.cfg = services.Config
	a.controller = services.Controller
	a.languages = services.Languages
	a.log = services.Logger

	if a.cfg.Azure.Key == "" {
		a.SessionStateChanged(domain.SessionStateUnconfigured, domain.SessionReasonNotConfigured)
		return
	}
	go func() {
		if err := a.controller.Configure(ctx, domain.Credentials{Key: a.cfg.Azure.Key, Region: a.cfg.Azure.Region}); err != nil {
			a.log.Warn("configuration from environment failed", zap.Error(err))
		}
	}()
}

func (a *App) shutdown(_ context.Context) {
	if a.controller != nil {
		a.controller.Close()
	}
	if a.log != nil {
		_ = a.log.Sync()
	}
}

// Configure connects to the speech service with the given key and region.
func (a *App) Configure(key string, region string) (domain.Status, error) {
	if err := a.requireReady(); err != nil {
		return domain.Status{}, err
	}
	region = strings.TrimSpace(region)
	if region == "" {
		region = a.cfg.Azure.Region
	}
	if err := a.controller.Configure(a.ctx, domain.Credentials{Key: key, Region: region}); err != nil {
		return a.controller.Status(), err
	}
	return a.controller.Status(), nil
}

// StartTalking starts hold-to-talk listening.
func (a *App) StartTalking() (domain.Status, error) {
	if err := a.requireReady(); err != nil {
		return domain.Status{}, err
	}
	if err := a.controller.Start(a.ctx); err != nil {
		if errors.Is(err, usecase.ErrNotConfigured) {
			a.SessionError(domain.ErrorCodeConfiguration, err.Error())
		}
		return a.controller.Status(), err
	}
	return a.controller.Status(), nil
}

// StopTalking releases hold-to-talk; pending results are still delivered.
func (a *App) StopTalking() (domain.Status, error) {
	if err := a.requireReady(); err != nil {
		return domain.Status{}, err
	}
	if err := a.controller.Stop(a.ctx); err != nil {
		if errors.Is(err, usecase.ErrNoActiveSession) {
			return a.controller.Status(), nil
		}
		return a.controller.Status(), err
	}
	return a.controller.Status(), nil
}

// ResetConversation forgets the last foreign language.
func (a *App) ResetConversation() error {
	if err := a.requireReady(); err != nil {
		return err
	}
	a.controller.Reset()
	return nil
}

// GetStatus returns current backend status.
func (a *App) GetStatus() domain.Status {
	if a.controller == nil {
		if a.bootErr != nil {
			return domain.Status{State: domain.SessionStateError, Active: false, Message: a.bootErr.Error()}
		}
		return domain.Status{State: domain.SessionStateUnconfigured, Active: false}
	}
	return a.controller.Status()
}

// GetLanguages returns the configured language table.
func (a *App) GetLanguages() []languages.Entry {
	if a.languages == nil {
		return nil
	}
	return a.languages.Entries()
}

// GetRuntimeInfo returns non-sensitive config for the UI.
func (a *App) GetRuntimeInfo() map[string]string {
	if a.bootErr != nil {
		return map[string]string{"error": a.bootErr.Error()}
	}

	return map[string]string{
		"provider":         "Azure Speech",
		"region":           a.cfg.Azure.Region,
		"keyConfigured":    fmt.Sprintf("%t", a.cfg.Azure.Key != ""),
		"homeLanguage":     a.cfg.Conversation.HomeTarget,
		"homeLabel":        a.cfg.Conversation.HomeLabel,
		"languagesFile":    a.cfg.Conversation.LanguagesFile,
		"audioInput":       a.cfg.Audio.InputDevice,
		"audioInputFormat": a.cfg.Audio.InputFormat,
		"player":           a.cfg.Audio.PlayerCommand,
	}
}

func (a *App) requireReady() error {
	if a.bootErr != nil {
		return a.bootErr
	}
	if a.controller == nil {
		return fmt.Errorf("application is not initialized")
	}
	return nil
}

// SessionStateChanged emits session lifecycle updates to the frontend.
func (a *App) SessionStateChanged(state domain.SessionState, reason domain.SessionStateReason) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventSession, map[string]string{
		"state":   string(state),
		"reason":  string(reason),
		"message": sessionReasonMessage(reason),
	})
}

// PartialTranscript emits live recognition text.
func (a *App) PartialTranscript(text string) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventPartial, map[string]string{"text": text})
}

// ChatMessage appends a routed turn to the conversation view.
func (a *App) ChatMessage(msg domain.ChatMessage) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventMessage, msg)
}

// PlaybackChanged reports when translated speech starts and stops playing.
func (a *App) PlaybackChanged(languageCode string, playing bool) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventPlayback, map[string]any{
		"language": languageCode,
		"playing":  playing,
		"message":  playbackMessage(languageCode, playing),
	})
}

// SessionError emits backend errors to the UI.
func (a *App) SessionError(code domain.ErrorCode, detail string) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventError, map[string]string{
		"code":    string(code),
		"message": errorMessage(code, detail),
		"detail":  detail,
	})
}

func sessionReasonMessage(reason domain.SessionStateReason) string {
	switch reason {
	case domain.SessionReasonConfigured:
		return "Ready"
	case domain.SessionReasonNotConfigured:
		return "Enter a speech key and region"
	case domain.SessionReasonListeningStarted:
		return "Listening..."
	case domain.SessionReasonListeningRestart:
		return "Listening again; previous capture discarded"
	case domain.SessionReasonRecognizing:
		return "Recognizing..."
	case domain.SessionReasonServiceStarted:
		return "Session started"
	case domain.SessionReasonServiceStopped:
		return "Session stopped"
	case domain.SessionReasonProcessing:
		return "Processing..."
	case domain.SessionReasonListeningStopped:
		return "Idle"
	case domain.SessionReasonListeningDiscard:
		return "Listening discarded"
	case domain.SessionReasonRecognitionFailed:
		return "Recognition failed"
	case domain.SessionReasonConversationReset:
		return "Conversation cleared"
	default:
		return ""
	}
}

func playbackMessage(languageCode string, playing bool) string {
	if !playing {
		return "Idle"
	}
	return "Playing (" + languageCode + ")"
}

func errorMessage(code domain.ErrorCode, detail string) string {
	switch code {
	case domain.ErrorCodeStartup:
		return "Startup failed"
	case domain.ErrorCodeConfiguration:
		return "Speech service configuration failed"
	case domain.ErrorCodeAudioStop:
		return "Audio stop issue"
	case domain.ErrorCodeAudioStream:
		return "Audio streaming issue"
	case domain.ErrorCodeRecognition:
		return "Recognition error"
	case domain.ErrorCodeSynthesis:
		return "Speech playback failed"
	default:
		if detail == "" {
			return "Unknown error"
		}
		return detail
	}
}
