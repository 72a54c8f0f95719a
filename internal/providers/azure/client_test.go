package azure

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"parley/internal/domain"
)

func TestNewFactoryDefaults(t *testing.T) {
	t.Parallel()

	f := NewFactory(Config{})
	if f.cfg.SpeechEndpoint != speechEndpointTemplate || f.cfg.TTSEndpoint != ttsEndpointTemplate {
		t.Fatalf("unexpected endpoints: %+v", f.cfg)
	}
	if f.cfg.OutputFormat != DefaultOutputFormat {
		t.Fatalf("unexpected output format: %q", f.cfg.OutputFormat)
	}
	if f.cfg.HTTPClient == nil || f.cfg.Logger == nil {
		t.Fatalf("expected http client and logger defaults")
	}
}

func TestFactoryOpenRequiresKeyAndRegion(t *testing.T) {
	t.Parallel()

	f := NewFactory(Config{})
	if _, err := f.Open(context.Background(), domain.Credentials{Region: "eastus"}); !errors.Is(err, ErrMissingKey) {
		t.Fatalf("expected missing key, got %v", err)
	}
	if _, err := f.Open(context.Background(), domain.Credentials{Key: "k", Region: "  "}); !errors.Is(err, ErrMissingRegion) {
		t.Fatalf("expected missing region, got %v", err)
	}
}

func TestFactoryOpenBuildsRegionURLs(t *testing.T) {
	t.Parallel()

	backend, err := NewFactory(Config{}).Open(context.Background(), domain.Credentials{Key: "k", Region: "westeurope"})
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	client := backend.(*Client)
	if client.speechURL != "wss://westeurope.stt.speech.microsoft.com/speech/universal/v2" {
		t.Fatalf("unexpected speech url: %s", client.speechURL)
	}
	if client.ttsURL != "https://westeurope.tts.speech.microsoft.com/cognitiveservices/v1" {
		t.Fatalf("unexpected tts url: %s", client.ttsURL)
	}
}

func TestFactoryOpenVerifiesCredentials(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method: %s", r.Method)
		}
		if r.Header.Get(subscriptionKeyHeader) != "good" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, "invalid subscription key")
			return
		}
		_, _ = io.WriteString(w, "token")
	}))
	defer server.Close()

	f := NewFactory(Config{TokenEndpoint: server.URL, VerifyCredentials: true})

	if _, err := f.Open(context.Background(), domain.Credentials{Key: "good", Region: "eastus"}); err != nil {
		t.Fatalf("expected verification to pass: %v", err)
	}

	_, err := f.Open(context.Background(), domain.Credentials{Key: "bad", Region: "eastus"})
	if err == nil || !strings.Contains(err.Error(), "401") {
		t.Fatalf("expected credential failure, got %v", err)
	}
}

func TestRegionURL(t *testing.T) {
	t.Parallel()

	if got := regionURL("https://%s.example.com", "eastus"); got != "https://eastus.example.com" {
		t.Fatalf("unexpected url: %s", got)
	}
	if got := regionURL("http://localhost:1234", "eastus"); got != "http://localhost:1234" {
		t.Fatalf("unexpected url: %s", got)
	}
}

func TestSynthesize(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Content-Type") != "application/ssml+xml" {
			t.Errorf("unexpected content type: %s", r.Header.Get("Content-Type"))
		}
		if r.Header.Get("X-Microsoft-OutputFormat") != DefaultOutputFormat {
			t.Errorf("unexpected output format: %s", r.Header.Get("X-Microsoft-OutputFormat"))
		}
		body, _ := io.ReadAll(r.Body)
		if !strings.Contains(string(body), "<voice name='ja-JP-NanamiNeural'>") {
			t.Errorf("unexpected ssml: %s", body)
		}
		_, _ = w.Write([]byte("RIFFaudio"))
	}))
	defer server.Close()

	backend, err := NewFactory(Config{TTSEndpoint: server.URL}).Open(context.Background(), domain.Credentials{Key: "k", Region: "eastus"})
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}

	audio, err := backend.Synthesize(context.Background(), domain.SynthesisRequest{
		Text:         "こんにちは",
		LanguageCode: "ja",
		VoiceName:    "ja-JP-NanamiNeural",
	})
	if err != nil {
		t.Fatalf("synthesize failed: %v", err)
	}
	if string(audio) != "RIFFaudio" {
		t.Fatalf("unexpected audio: %q", audio)
	}
}

func TestSynthesizeErrors(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, "bad ssml")
	}))
	defer server.Close()

	backend, err := NewFactory(Config{TTSEndpoint: server.URL}).Open(context.Background(), domain.Credentials{Key: "k", Region: "eastus"})
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}

	if _, err := backend.Synthesize(context.Background(), domain.SynthesisRequest{Text: "  "}); err == nil {
		t.Fatalf("expected empty text error")
	}

	_, err = backend.Synthesize(context.Background(), domain.SynthesisRequest{Text: "hi", LanguageCode: "en", VoiceName: "v"})
	if err == nil || !strings.Contains(err.Error(), "bad ssml") {
		t.Fatalf("expected tts failure, got %v", err)
	}
}

func TestBuildSSMLEscapesText(t *testing.T) {
	t.Parallel()

	ssml, err := buildSSML(domain.SynthesisRequest{Text: "a < b & 'c'", LanguageCode: "en", VoiceName: "en-US-AvaNeural"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := string(ssml)
	want := "<speak version='1.0' xml:lang='en'><voice name='en-US-AvaNeural'>a &lt; b &amp; &#39;c&#39;</voice></speak>"
	if got != want {
		t.Fatalf("unexpected ssml:\n got %s\nwant %s", got, want)
	}
}
