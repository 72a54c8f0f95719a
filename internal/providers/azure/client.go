package azure

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"parley/internal/domain"
	"parley/internal/ports"
)

const (
	DefaultOutputFormat = "riff-24khz-16bit-mono-pcm"

	speechEndpointTemplate = "wss://%s.stt.speech.microsoft.com/speech/universal/v2"
	ttsEndpointTemplate    = "https://%s.tts.speech.microsoft.com/cognitiveservices/v1"
	tokenEndpointTemplate  = "https://%s.api.cognitive.microsoft.com/sts/v1.0/issueToken"
)

var (
	ErrMissingKey    = errors.New("AZURE_SPEECH_KEY is not configured")
	ErrMissingRegion = errors.New("AZURE_SPEECH_REGION is not configured")
)

// Config controls endpoints and behavior shared by every backend the factory opens.
// Endpoint overrides may contain a single %s which is replaced by the region.
type Config struct {
	SpeechEndpoint    string
	TTSEndpoint       string
	TokenEndpoint     string
	OutputFormat      string
	VerifyCredentials bool
	HTTPClient        *http.Client
	Logger            *zap.Logger
}

// Factory implements ports.BackendFactory for Azure Speech.
type Factory struct {
	cfg Config
}

func NewFactory(cfg Config) *Factory {
	if cfg.SpeechEndpoint == "" {
		cfg.SpeechEndpoint = speechEndpointTemplate
	}
	if cfg.TTSEndpoint == "" {
		cfg.TTSEndpoint = ttsEndpointTemplate
	}
	if cfg.TokenEndpoint == "" {
		cfg.TokenEndpoint = tokenEndpointTemplate
	}
	if cfg.OutputFormat == "" {
		cfg.OutputFormat = DefaultOutputFormat
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Factory{cfg: cfg}
}

// Open validates the credentials and returns a client bound to them.
func (f *Factory) Open(ctx context.Context, creds domain.Credentials) (ports.SpeechBackend, error) {
	key := strings.TrimSpace(creds.Key)
	region := strings.TrimSpace(creds.Region)
	if key == "" {
		return nil, ErrMissingKey
	}
	if region == "" {
		return nil, ErrMissingRegion
	}

	client := &Client{
		key:          key,
		region:       region,
		speechURL:    regionURL(f.cfg.SpeechEndpoint, region),
		ttsURL:       regionURL(f.cfg.TTSEndpoint, region),
		tokenURL:     regionURL(f.cfg.TokenEndpoint, region),
		outputFormat: f.cfg.OutputFormat,
		http:         f.cfg.HTTPClient,
		log:          f.cfg.Logger.With(zap.String("region", region)),
	}

	if f.cfg.VerifyCredentials {
		if err := client.Verify(ctx); err != nil {
			return nil, err
		}
	}
	return client, nil
}

// Client talks to one Azure Speech resource.
type Client struct {
	key          string
	region       string
	speechURL    string
	ttsURL       string
	tokenURL     string
	outputFormat string
	http         *http.Client
	log          *zap.Logger
}

var _ ports.SpeechBackend = (*Client)(nil)

// Verify exchanges the subscription key for a short-lived token, which fails
// fast on a wrong key or region.
func (c *Client) Verify(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, nil)
	if err != nil {
		return fmt.Errorf("invalid token endpoint: %w", err)
	}
	req.Header.Set(subscriptionKeyHeader, c.key)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach Azure token endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("credential check failed (%d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}

func regionURL(template, region string) string {
	if strings.Contains(template, "%s") {
		return fmt.Sprintf(template, region)
	}
	return template
}
