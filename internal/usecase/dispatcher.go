package usecase

import (
	"strings"

	"go.uber.org/zap"

	"parley/internal/domain"
	"parley/internal/ports"
	"parley/internal/turn"
)

// dispatcher handles the recognition events of one session, in arrival order.
type dispatcher struct {
	session *activeSession
	router  *turn.Router
	speaker *speaker
	events  ports.EventSink
	log     *zap.Logger

	recognizing bool
}

func (d *dispatcher) dispatch(event domain.RecognitionEvent) {
	switch event.Kind {
	case domain.RecognitionInterim:
		d.handleInterim(event)
	case domain.RecognitionFinal:
		d.handleFinal(event)
	case domain.RecognitionError:
		d.handleError(event)
	case domain.RecognitionSessionStarted:
		d.events.SessionStateChanged(d.session.getState(), domain.SessionReasonServiceStarted)
	case domain.RecognitionSessionStopped:
		d.recognizing = false
		d.events.SessionStateChanged(d.session.getState(), domain.SessionReasonServiceStopped)
	default:
		d.log.Debug("ignoring recognition event", zap.String("kind", string(event.Kind)))
	}
}

func (d *dispatcher) handleInterim(event domain.RecognitionEvent) {
	text := strings.TrimSpace(event.Text)
	if text == "" {
		return
	}
	if !d.recognizing {
		d.recognizing = true
		d.events.SessionStateChanged(d.session.getState(), domain.SessionReasonRecognizing)
	}
	d.events.PartialTranscript(text)
}

func (d *dispatcher) handleFinal(event domain.RecognitionEvent) {
	d.recognizing = false

	outcome := d.router.Route(event.DetectedLanguage, strings.TrimSpace(event.Text), event.Translations)
	if !outcome.Routed {
		return
	}

	d.log.Info("routed turn",
		zap.String("detected", event.DetectedLanguage),
		zap.String("side", outcome.Classification.Side.String()),
		zap.String("target", outcome.Speech.LanguageCode),
	)
	d.events.ChatMessage(outcome.Message)
	if d.speaker != nil {
		d.speaker.Enqueue(outcome.Speech)
	}
}

func (d *dispatcher) handleError(event domain.RecognitionEvent) {
	detail := strings.TrimSpace(event.Message)
	if detail == "" {
		detail = "speech recognition failed"
	}
	d.log.Warn("recognition error", zap.String("detail", detail))
	d.events.SessionError(domain.ErrorCodeRecognition, detail)
}

func consumeRecognitionEvents(stream ports.StreamingSession, d *dispatcher, done chan struct{}) {
	defer close(done)

	for event := range stream.Events() {
		d.dispatch(event)
	}
}
