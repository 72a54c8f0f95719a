package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"parley/internal/domain"
	"parley/internal/ports"
)

// speaker plays synthesized turns strictly one at a time in arrival order.
// The queue is unbounded so Enqueue never blocks the recognition consumer.
type speaker struct {
	synth  ports.Synthesizer
	player ports.Player
	events ports.EventSink
	log    *zap.Logger

	mu     sync.Mutex
	queue  []domain.SynthesisRequest
	closed bool

	wake   chan struct{}
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

func newSpeaker(synth ports.Synthesizer, player ports.Player, events ports.EventSink, log *zap.Logger) *speaker {
	if log == nil {
		log = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &speaker{
		synth:  synth,
		player: player,
		events: events,
		log:    log,
		wake:   make(chan struct{}, 1),
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go s.run()
	return s
}

// Enqueue schedules req for playback. Empty text and a closed speaker are no-ops.
func (s *speaker) Enqueue(req domain.SynthesisRequest) bool {
	if strings.TrimSpace(req.Text) == "" {
		s.log.Debug("skipping empty synthesis", zap.String("language", req.LanguageCode))
		return false
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false
	}
	s.queue = append(s.queue, req)
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
	return true
}

// Pending reports queued requests not yet picked up by the worker.
func (s *speaker) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

// Close drops queued requests, interrupts the one in flight and waits for the worker.
func (s *speaker) Close() {
	s.mu.Lock()
	s.closed = true
	s.queue = nil
	s.mu.Unlock()

	s.cancel()
	<-s.done
}

func (s *speaker) run() {
	defer close(s.done)
	for {
		req, ok := s.next()
		if !ok {
			return
		}
		s.speak(req)
	}
}

func (s *speaker) next() (domain.SynthesisRequest, bool) {
	for {
		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			return domain.SynthesisRequest{}, false
		}
		if len(s.queue) > 0 {
			req := s.queue[0]
			s.queue[0] = domain.SynthesisRequest{}
			s.queue = s.queue[1:]
			s.mu.Unlock()
			return req, true
		}
		s.mu.Unlock()

		select {
		case <-s.wake:
		case <-s.ctx.Done():
			return domain.SynthesisRequest{}, false
		}
	}
}

func (s *speaker) speak(req domain.SynthesisRequest) {
	audio, err := s.synth.Synthesize(s.ctx, req)
	if err != nil {
		if s.ctx.Err() != nil {
			return
		}
		s.log.Warn("synthesis failed", zap.String("language", req.LanguageCode), zap.Error(err))
		s.events.SessionError(domain.ErrorCodeSynthesis, fmt.Sprintf("failed to synthesize speech: %v", err))
		return
	}

	s.events.PlaybackChanged(req.LanguageCode, true)
	err = s.player.Play(s.ctx, audio)
	s.events.PlaybackChanged(req.LanguageCode, false)
	if err != nil && s.ctx.Err() == nil {
		s.log.Warn("playback failed", zap.String("language", req.LanguageCode), zap.Error(err))
		s.events.SessionError(domain.ErrorCodeSynthesis, fmt.Sprintf("failed to play speech: %v", err))
	}
}
