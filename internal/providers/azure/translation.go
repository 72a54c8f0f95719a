package azure

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"parley/internal/domain"
	"parley/internal/ports"
)

// StartStreaming opens a continuous speech-translation session.
func (c *Client) StartStreaming(ctx context.Context, cfg ports.StreamingConfig) (ports.StreamingSession, error) {
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = 16000
	}
	if cfg.Channels <= 0 {
		cfg.Channels = 1
	}

	speechContext, err := buildSpeechContext(cfg.SourceLanguages, cfg.TargetLanguages)
	if err != nil {
		return nil, err
	}
	speechConfig, err := buildSpeechConfig()
	if err != nil {
		return nil, err
	}

	connectionID := newID()
	wsURL, err := buildTranslationURL(c.speechURL, connectionID)
	if err != nil {
		return nil, err
	}

	headers := http.Header{}
	headers.Set(subscriptionKeyHeader, c.key)
	headers.Set("X-ConnectionId", connectionID)

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, headers)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Azure speech websocket: %w", err)
	}

	requestID := newID()
	for _, frame := range [][]byte{
		textFrame(pathSpeechConfig, requestID, "application/json", speechConfig),
		textFrame(pathSpeechContext, requestID, "application/json", speechContext),
	} {
		if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("failed to configure translation session: %w", err)
		}
	}

	session := &streamingSession{
		conn:      conn,
		requestID: requestID,
		header:    wavHeader(cfg.SampleRate, cfg.Channels),
		events:    make(chan domain.RecognitionEvent, 64),
		audio:     make(chan []byte, 32),
		stopSend:  make(chan struct{}),
		closed:    make(chan struct{}),
		done:      make(chan struct{}),
		log:       c.log.With(zap.String("connection_id", connectionID)),
	}

	session.wg.Add(2)
	go session.readLoop()
	go session.writeLoop()
	go func() {
		session.wg.Wait()
		close(session.events)
		close(session.done)
		_ = conn.Close()
	}()

	go func() {
		select {
		case <-ctx.Done():
			_ = session.Close()
		case <-session.done:
		}
	}()

	return session, nil
}

type streamingSession struct {
	conn      *websocket.Conn
	requestID string
	header    []byte

	events   chan domain.RecognitionEvent
	audio    chan []byte
	stopSend chan struct{}
	closed   chan struct{}
	done     chan struct{}

	wg  sync.WaitGroup
	log *zap.Logger

	errMu sync.Mutex
	err   error

	closeSendOnce sync.Once
	closeOnce     sync.Once
}

func (s *streamingSession) SendAudio(chunk []byte) error {
	if len(chunk) == 0 {
		return nil
	}
	if s.sendClosed() {
		return errors.New("audio stream is already closed")
	}

	copied := append([]byte(nil), chunk...)
	select {
	case s.audio <- copied:
		return nil
	case <-s.stopSend:
		return errors.New("audio stream is already closed")
	case <-s.done:
		if err := s.waitErr(); err != nil {
			return err
		}
		return errors.New("session closed")
	}
}

func (s *streamingSession) CloseSend() error {
	s.closeSendOnce.Do(func() {
		close(s.stopSend)
	})
	return nil
}

func (s *streamingSession) sendClosed() bool {
	select {
	case <-s.stopSend:
		return true
	default:
		return false
	}
}

func (s *streamingSession) Events() <-chan domain.RecognitionEvent {
	return s.events
}

func (s *streamingSession) Wait() error {
	<-s.done
	return s.waitErr()
}

func (s *streamingSession) Close() error {
	s.closeOnce.Do(func() {
		close(s.closed)
		_ = s.CloseSend()
		_ = s.conn.Close()
	})
	<-s.done
	return s.waitErr()
}

func (s *streamingSession) waitErr() error {
	s.errMu.Lock()
	defer s.errMu.Unlock()
	return s.err
}

func (s *streamingSession) setErr(err error) {
	if err == nil {
		return
	}
	if websocket.IsCloseError(err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway,
		websocket.CloseNoStatusReceived,
	) {
		return
	}

	s.errMu.Lock()
	defer s.errMu.Unlock()
	if s.err == nil {
		s.err = err
	}
}

func (s *streamingSession) isClosed() bool {
	select {
	case <-s.closed:
		return true
	default:
		return false
	}
}

func (s *streamingSession) writeLoop() {
	defer s.wg.Done()

	if !s.write(s.header) {
		return
	}

	for {
		select {
		case chunk := <-s.audio:
			if !s.write(chunk) {
				return
			}
		case <-s.stopSend:
			for drained := false; !drained; {
				select {
				case chunk := <-s.audio:
					if !s.write(chunk) {
						return
					}
				default:
					drained = true
				}
			}
			if !s.isClosed() {
				s.write(nil)
			}
			return
		}
	}
}

// write sends one audio frame; a nil chunk ends the stream. On failure the
// connection is closed so the read loop unblocks too.
func (s *streamingSession) write(chunk []byte) bool {
	if err := s.conn.WriteMessage(websocket.BinaryMessage, audioFrame(s.requestID, chunk)); err != nil {
		s.setErr(fmt.Errorf("failed to send audio: %w", err))
		_ = s.conn.Close()
		return false
	}
	return true
}

func (s *streamingSession) readLoop() {
	defer s.wg.Done()
	defer func() { _ = s.CloseSend() }()

	for {
		messageType, payload, err := s.conn.ReadMessage()
		if err != nil {
			if s.isClosed() {
				return
			}
			var closeErr *websocket.CloseError
			if errors.As(err, &closeErr) && closeErr.Code != websocket.CloseNormalClosure {
				s.emit(domain.RecognitionEvent{Kind: domain.RecognitionError, Message: closeMessage(closeErr)})
			}
			s.setErr(fmt.Errorf("failed to read service event: %w", err))
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}

		msg, err := parseTextFrame(payload)
		if err != nil {
			s.log.Debug("skipping malformed service message", zap.Error(err))
			continue
		}

		event, ok := decodeEvent(msg)
		if !ok {
			continue
		}
		s.emit(event)
		if event.Kind == domain.RecognitionSessionStopped && s.sendClosed() {
			return
		}
	}
}

// emit blocks until the consumer takes the event so finals are never dropped;
// a Close releases it.
func (s *streamingSession) emit(event domain.RecognitionEvent) {
	select {
	case s.events <- event:
	case <-s.closed:
	}
}

func decodeEvent(msg message) (domain.RecognitionEvent, bool) {
	switch msg.path() {
	case pathTurnStart:
		return domain.RecognitionEvent{Kind: domain.RecognitionSessionStarted}, true
	case pathTurnEnd:
		return domain.RecognitionEvent{Kind: domain.RecognitionSessionStopped}, true
	case pathTranslationHypo, pathTranslationPhrase:
		var result translationResult
		if err := json.Unmarshal(msg.body, &result); err != nil {
			return domain.RecognitionEvent{}, false
		}
		event := domain.RecognitionEvent{
			Kind:             domain.RecognitionInterim,
			DetectedLanguage: result.PrimaryLanguage.Language,
			Text:             strings.TrimSpace(result.Text),
			Translations:     result.translations(),
		}
		if msg.path() == pathTranslationPhrase {
			if result.RecognitionStatus != recognitionStatusMatch {
				return domain.RecognitionEvent{}, false
			}
			event.Kind = domain.RecognitionFinal
		}
		return event, true
	default:
		return domain.RecognitionEvent{}, false
	}
}

func closeMessage(err *websocket.CloseError) string {
	text := strings.TrimSpace(err.Text)
	if text == "" {
		return fmt.Sprintf("speech service closed the connection (%d)", err.Code)
	}
	return text
}

func buildTranslationURL(base, connectionID string) (string, error) {
	base = strings.TrimSpace(base)
	if strings.HasPrefix(base, "https://") {
		base = "wss://" + strings.TrimPrefix(base, "https://")
	} else if strings.HasPrefix(base, "http://") {
		base = "ws://" + strings.TrimPrefix(base, "http://")
	}

	parsed, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid Azure speech endpoint: %w", err)
	}
	if parsed.Scheme != "wss" && parsed.Scheme != "ws" {
		return "", fmt.Errorf("invalid Azure speech endpoint scheme %q", parsed.Scheme)
	}

	query := parsed.Query()
	query.Set("X-ConnectionId", connectionID)
	query.Set("format", "detailed")
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}
