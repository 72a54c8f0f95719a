package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"parley/internal/domain"
	"parley/internal/languages"
	"parley/internal/ports"
	"parley/internal/turn"
)

const (
	minChunkSize      = 256
	defaultChunkSize  = 3200
	defaultStreamWait = 4 * time.Second
)

var (
	ErrNoActiveSession = errors.New("no active listening session")
	ErrNotConfigured   = errors.New("speech service is not configured")
)

// Config controls capture and streaming behavior of a conversation.
type Config struct {
	Audio          ports.AudioConfig
	Streaming      ports.StreamingConfig
	ChunkSize      int
	StreamingGrace time.Duration
	StreamWait     time.Duration
}

// ConversationController owns the speech backend, the listening session and
// the playback queue of one two-party conversation.
type ConversationController struct {
	audio   ports.AudioCapture
	factory ports.BackendFactory
	player  ports.Player
	table   *languages.Table
	router  *turn.Router
	events  ports.EventSink
	log     *zap.Logger
	cfg     Config

	// lifecycle serializes Configure, Start, Stop and Close.
	lifecycle sync.Mutex

	mu      sync.Mutex
	backend ports.SpeechBackend
	speaker *speaker
	current *activeSession
	state   domain.SessionState
	message string
}

func NewConversationController(
	audio ports.AudioCapture,
	factory ports.BackendFactory,
	player ports.Player,
	table *languages.Table,
	router *turn.Router,
	events ports.EventSink,
	log *zap.Logger,
	cfg Config,
) *ConversationController {
	if cfg.ChunkSize < minChunkSize {
		cfg.ChunkSize = defaultChunkSize
	}
	if cfg.StreamWait <= 0 {
		cfg.StreamWait = defaultStreamWait
	}
	if cfg.Streaming.SampleRate <= 0 {
		cfg.Streaming.SampleRate = cfg.Audio.SampleRate
	}
	if cfg.Streaming.Channels <= 0 {
		cfg.Streaming.Channels = cfg.Audio.Channels
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &ConversationController{
		audio:   audio,
		factory: factory,
		player:  player,
		table:   table,
		router:  router,
		events:  events,
		log:     log,
		cfg:     cfg,
		state:   domain.SessionStateUnconfigured,
	}
}

// Configure connects to the speech service with creds. Any active session and
// pending playback are torn down first; on failure the controller stays unconfigured.
func (c *ConversationController) Configure(ctx context.Context, creds domain.Credentials) error {
	c.lifecycle.Lock()
	defer c.lifecycle.Unlock()

	c.teardown(domain.SessionReasonListeningDiscard)

	backend, err := c.factory.Open(ctx, creds)
	if err != nil {
		err = fmt.Errorf("configure speech service: %w", err)
		c.log.Warn("configuration failed", zap.String("region", creds.Region), zap.Error(err))
		c.setIdleState(domain.SessionStateUnconfigured, err.Error())
		c.events.SessionError(domain.ErrorCodeConfiguration, err.Error())
		c.events.SessionStateChanged(domain.SessionStateUnconfigured, domain.SessionReasonNotConfigured)
		return err
	}

	c.mu.Lock()
	c.backend = backend
	c.speaker = newSpeaker(backend, c.player, c.events, c.log.Named("speaker"))
	c.state = domain.SessionStateIdle
	c.message = ""
	c.mu.Unlock()

	c.log.Info("speech service configured", zap.String("region", creds.Region))
	c.events.SessionStateChanged(domain.SessionStateIdle, domain.SessionReasonConfigured)
	return nil
}

// Start begins listening. A running session is stopped and replaced.
func (c *ConversationController) Start(ctx context.Context) error {
	c.lifecycle.Lock()
	defer c.lifecycle.Unlock()

	c.mu.Lock()
	backend, spk := c.backend, c.speaker
	previous := c.current
	c.current = nil
	c.mu.Unlock()

	if backend == nil {
		return ErrNotConfigured
	}
	if previous != nil {
		c.stopSession(previous)
	}

	streaming := c.cfg.Streaming
	streaming.SourceLanguages = c.table.SourceCodes()
	streaming.TargetLanguages = c.table.TargetCodes()

	sessionCtx, cancel := context.WithCancel(ctx)
	stream, err := backend.StartStreaming(sessionCtx, streaming)
	if err != nil {
		cancel()
		err = fmt.Errorf("start translation session: %w", err)
		c.failStart(err)
		return err
	}

	audioSession, err := c.audio.Start(sessionCtx, c.cfg.Audio)
	if err != nil {
		_ = stream.Close()
		cancel()
		err = fmt.Errorf("start audio capture: %w", err)
		c.failStart(err)
		return err
	}

	active := &activeSession{
		cancel:     cancel,
		audio:      audioSession,
		stream:     stream,
		state:      domain.SessionStateListening,
		eventsDone: make(chan struct{}),
		audioDone:  make(chan struct{}),
	}
	d := &dispatcher{
		session: active,
		router:  c.router,
		speaker: spk,
		events:  c.events,
		log:     c.log.Named("dispatcher"),
	}

	c.mu.Lock()
	c.current = active
	c.message = ""
	c.mu.Unlock()

	reason := domain.SessionReasonListeningStarted
	if previous != nil {
		reason = domain.SessionReasonListeningRestart
	}
	c.log.Debug("listening", zap.Strings("sources", streaming.SourceLanguages))
	c.events.SessionStateChanged(domain.SessionStateListening, reason)

	go consumeRecognitionEvents(active.stream, d, active.eventsDone)
	go pumpAudioChunks(active.audio, active.stream, c.cfg.ChunkSize, c.events, active.audioDone)
	return nil
}

// Stop ends capture and waits for the service to deliver the remaining
// results; finals that arrive while stopping are still routed.
func (c *ConversationController) Stop(ctx context.Context) error {
	c.lifecycle.Lock()
	defer c.lifecycle.Unlock()

	active, err := c.getCurrent()
	if err != nil {
		return err
	}

	active.setState(domain.SessionStateStopping)
	c.events.SessionStateChanged(domain.SessionStateStopping, domain.SessionReasonProcessing)

	if err := active.audio.Stop(); err != nil {
		c.log.Warn("audio stop failed", zap.Error(err))
		c.events.SessionError(domain.ErrorCodeAudioStop, "failed to stop audio capture cleanly")
	}

	if c.cfg.StreamingGrace > 0 {
		timer := time.NewTimer(c.cfg.StreamingGrace)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
		}
	}

	_ = active.stream.CloseSend()
	streamErr := waitForStream(active.stream, c.cfg.StreamWait)
	<-active.eventsDone
	<-active.audioDone

	if streamErr != nil {
		c.log.Warn("translation session failed", zap.Error(streamErr))
		c.events.SessionError(domain.ErrorCodeRecognition, streamErr.Error())
		c.finishSession(active, domain.SessionStateError, domain.SessionReasonRecognitionFailed, streamErr.Error())
		return streamErr
	}

	c.finishSession(active, domain.SessionStateIdle, domain.SessionReasonListeningStopped, "")
	return nil
}

// Reset forgets the conversation so the next home turn goes to the default foreign language.
func (c *ConversationController) Reset() {
	c.router.Reset()
	c.events.SessionStateChanged(c.Status().State, domain.SessionReasonConversationReset)
}

// Close discards any active session and stops playback.
func (c *ConversationController) Close() {
	c.lifecycle.Lock()
	defer c.lifecycle.Unlock()

	c.teardown(domain.SessionReasonListeningDiscard)
}

// Status returns the current backend status.
func (c *ConversationController) Status() domain.Status {
	c.mu.Lock()
	state, message := c.state, c.message
	if c.current != nil {
		state = c.current.getState()
	}
	c.mu.Unlock()

	return domain.Status{
		State:         state,
		Active:        state == domain.SessionStateListening || state == domain.SessionStateStopping,
		ForeignTarget: c.router.LastForeignTarget(),
		Message:       message,
	}
}

func (c *ConversationController) getCurrent() (*activeSession, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return nil, ErrNoActiveSession
	}
	return c.current, nil
}

// teardown stops the active session and the speaker and drops the backend.
// Callers hold the lifecycle lock.
func (c *ConversationController) teardown(reason domain.SessionStateReason) {
	c.mu.Lock()
	active, spk := c.current, c.speaker
	c.current = nil
	c.speaker = nil
	c.backend = nil
	c.state = domain.SessionStateUnconfigured
	c.mu.Unlock()

	if active != nil {
		c.stopSession(active)
		c.events.SessionStateChanged(domain.SessionStateUnconfigured, reason)
	}
	if spk != nil {
		spk.Close()
	}
}

func (c *ConversationController) stopSession(active *activeSession) {
	active.cancel()
	_ = active.audio.Stop()
	_ = active.stream.Close()
	<-active.eventsDone
	<-active.audioDone
}

func (c *ConversationController) failStart(err error) {
	c.log.Warn("listening failed to start", zap.Error(err))
	c.setIdleState(domain.SessionStateError, err.Error())
	c.events.SessionError(domain.ErrorCodeStartup, err.Error())
	c.events.SessionStateChanged(domain.SessionStateError, domain.SessionReasonRecognitionFailed)
}

func (c *ConversationController) finishSession(active *activeSession, state domain.SessionState, reason domain.SessionStateReason, message string) {
	active.cancel()
	active.setState(state)

	c.mu.Lock()
	if c.current == active {
		c.current = nil
	}
	c.state = state
	c.message = message
	c.mu.Unlock()

	c.events.SessionStateChanged(state, reason)
}

func (c *ConversationController) setIdleState(state domain.SessionState, message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = state
	c.message = message
}
