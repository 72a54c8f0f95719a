package usecase

import (
	"errors"
	"testing"
	"time"

	"parley/internal/domain"
)

func TestSpeakerPlaysInOrderOneAtATime(t *testing.T) {
	t.Parallel()

	backend := &fakeBackend{}
	player := &fakePlayer{delay: 5 * time.Millisecond}
	events := &fakeEventSink{}
	s := newSpeaker(backend, player, events, nil)
	defer s.Close()

	for _, text := range []string{"one", "two", "three"} {
		if !s.Enqueue(domain.SynthesisRequest{Text: text, LanguageCode: "en", VoiceName: "en-US-AvaNeural"}) {
			t.Fatalf("enqueue %q rejected", text)
		}
	}

	waitFor(t, func() bool { return len(events.snapshotPlayback()) == 6 })

	played := player.snapshotPlayed()
	if len(played) != 3 || played[0] != "one" || played[1] != "two" || played[2] != "three" {
		t.Fatalf("unexpected playback order: %v", played)
	}
	if peak := player.snapshotMaxActive(); peak != 1 {
		t.Fatalf("expected playback to never overlap, max concurrent=%d", peak)
	}

	playback := events.snapshotPlayback()
	for i, event := range playback {
		if event.playing != (i%2 == 0) || event.language != "en" {
			t.Fatalf("unexpected playback events: %+v", playback)
		}
	}
}

func TestSpeakerSkipsEmptyText(t *testing.T) {
	t.Parallel()

	backend := &fakeBackend{}
	s := newSpeaker(backend, &fakePlayer{}, &fakeEventSink{}, nil)
	defer s.Close()

	if s.Enqueue(domain.SynthesisRequest{Text: "  ", LanguageCode: "en"}) {
		t.Fatalf("expected empty text to be skipped")
	}
	if s.Pending() != 0 {
		t.Fatalf("expected empty queue")
	}
}

func TestSpeakerSynthesisFailureIsNonFatal(t *testing.T) {
	t.Parallel()

	backend := &fakeBackend{synthErr: errors.New("quota exceeded")}
	player := &fakePlayer{}
	events := &fakeEventSink{}
	s := newSpeaker(backend, player, events, nil)
	defer s.Close()

	s.Enqueue(domain.SynthesisRequest{Text: "one", LanguageCode: "en"})
	s.Enqueue(domain.SynthesisRequest{Text: "two", LanguageCode: "en"})

	waitFor(t, func() bool { return len(events.snapshotErrors()) == 2 })

	for _, e := range events.snapshotErrors() {
		if e.code != domain.ErrorCodeSynthesis {
			t.Fatalf("unexpected error code: %s", e.code)
		}
	}
	if played := player.snapshotPlayed(); len(played) != 0 {
		t.Fatalf("expected nothing played, got %v", played)
	}
}

func TestSpeakerPlaybackFailureIsReported(t *testing.T) {
	t.Parallel()

	events := &fakeEventSink{}
	s := newSpeaker(&fakeBackend{}, &fakePlayer{err: errors.New("device busy")}, events, nil)
	defer s.Close()

	s.Enqueue(domain.SynthesisRequest{Text: "hello", LanguageCode: "en"})

	waitFor(t, func() bool { return len(events.snapshotErrors()) == 1 })
	if playback := events.snapshotPlayback(); len(playback) != 2 || playback[1].playing {
		t.Fatalf("expected playback to be marked finished, got %+v", playback)
	}
}

func TestSpeakerCloseInterruptsAndDiscards(t *testing.T) {
	t.Parallel()

	player := &fakePlayer{block: true, started: make(chan struct{}, 1)}
	events := &fakeEventSink{}
	s := newSpeaker(&fakeBackend{}, player, events, nil)

	s.Enqueue(domain.SynthesisRequest{Text: "first", LanguageCode: "en"})
	s.Enqueue(domain.SynthesisRequest{Text: "second", LanguageCode: "en"})

	select {
	case <-player.started:
	case <-time.After(2 * time.Second):
		t.Fatalf("playback never started")
	}

	s.Close()

	if s.Enqueue(domain.SynthesisRequest{Text: "late", LanguageCode: "en"}) {
		t.Fatalf("expected enqueue after close to be rejected")
	}
	if played := player.snapshotPlayed(); len(played) != 1 || played[0] != "first" {
		t.Fatalf("expected only the first request to play, got %v", played)
	}
	if errs := events.snapshotErrors(); len(errs) != 0 {
		t.Fatalf("interrupted playback must not be reported, got %+v", errs)
	}
}
