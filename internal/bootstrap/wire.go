package bootstrap

import (
	"fmt"

	"go.uber.org/zap"

	"parley/internal/audio"
	"parley/internal/config"
	"parley/internal/languages"
	"parley/internal/logging"
	"parley/internal/ports"
	"parley/internal/providers/azure"
	"parley/internal/turn"
	"parley/internal/usecase"
)

// Services is the assembled runtime graph.
type Services struct {
	Controller *usecase.ConversationController
	Languages  *languages.Table
	Config     config.Config
	Logger     *zap.Logger
}

// Build wires all backend dependencies for the current runtime.
func Build(eventSink ports.EventSink) (Services, error) {
	cfg, err := config.Load()
	if err != nil {
		return Services{}, err
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		return Services{}, err
	}

	table, err := loadLanguages(cfg.Conversation)
	if err != nil {
		return Services{}, err
	}

	router := turn.NewRouter(table, nil, turn.Config{
		HomeTarget:     cfg.Conversation.HomeTarget,
		HomeLabel:      cfg.Conversation.HomeLabel,
		DefaultForeign: cfg.Conversation.DefaultForeign,
	}, logger.Named("router"))

	factory := azure.NewFactory(azure.Config{
		SpeechEndpoint:    cfg.Azure.SpeechEndpoint,
		TTSEndpoint:       cfg.Azure.TTSEndpoint,
		TokenEndpoint:     cfg.Azure.TokenEndpoint,
		OutputFormat:      cfg.Azure.OutputFormat,
		VerifyCredentials: cfg.Azure.VerifyCredentials,
		Logger:            logger.Named("azure"),
	})

	controller := usecase.NewConversationController(
		audio.NewCapture(cfg.Audio.RecorderCommand, logger.Named("capture")),
		factory,
		audio.NewPlayer(cfg.Audio.PlayerCommand, logger.Named("player")),
		table,
		router,
		eventSink,
		logger.Named("conversation"),
		usecase.Config{
			Audio: ports.AudioConfig{
				SampleRate:  cfg.Audio.SampleRate,
				Channels:    cfg.Audio.Channels,
				InputFormat: cfg.Audio.InputFormat,
				InputDevice: cfg.Audio.InputDevice,
			},
			Streaming: ports.StreamingConfig{
				SampleRate: cfg.Audio.SampleRate,
				Channels:   cfg.Audio.Channels,
			},
			ChunkSize:      cfg.Session.ChunkSize,
			StreamingGrace: cfg.Session.StreamingGrace,
		},
	)

	logger.Info("services ready",
		zap.Int("languages", len(table.Entries())),
		zap.String("home", cfg.Conversation.HomeTarget),
		zap.String("region", cfg.Azure.Region),
	)
	return Services{Controller: controller, Languages: table, Config: cfg, Logger: logger}, nil
}

func loadLanguages(cfg config.ConversationConfig) (*languages.Table, error) {
	table := languages.Default()
	if cfg.LanguagesFile != "" {
		loaded, err := languages.Load(cfg.LanguagesFile)
		if err != nil {
			return nil, err
		}
		table = loaded
	}
	table = table.WithFallbackVoice(cfg.FallbackVoice)

	if !table.HasTarget(cfg.HomeTarget) {
		return nil, fmt.Errorf("home language %q is not in the language table", cfg.HomeTarget)
	}
	if !table.HasTarget(cfg.DefaultForeign) {
		return nil, fmt.Errorf("default foreign language %q is not in the language table", cfg.DefaultForeign)
	}
	return table, nil
}
