// Package turn decides, for each recognized utterance, which side of the
// conversation spoke and what it should be translated into.
package turn

import (
	"sync"

	"go.uber.org/zap"

	"parley/internal/domain"
	"parley/internal/languages"
)

const (
	DefaultHomeTarget    = "zh-Hans"
	DefaultHomeLabel     = "中文"
	DefaultForeignTarget = "en"
)

// Config controls the home side and the initial foreign target.
type Config struct {
	HomeTarget     string
	HomeLabel      string
	DefaultForeign string
}

func (c Config) withDefaults() Config {
	if c.HomeTarget == "" {
		c.HomeTarget = DefaultHomeTarget
	}
	if c.HomeLabel == "" {
		c.HomeLabel = DefaultHomeLabel
	}
	if c.DefaultForeign == "" {
		c.DefaultForeign = DefaultForeignTarget
	}
	return c
}

// Outcome is the result of routing one final recognition.
// When Routed is false nothing must be shown or spoken.
type Outcome struct {
	Routed         bool
	Classification Classification
	Message        domain.ChatMessage
	Speech         domain.SynthesisRequest
}

// Router holds the last foreign language heard and routes utterances.
// Safe for concurrent use; each Route call is applied atomically.
type Router struct {
	table      *languages.Table
	classifier *Classifier
	cfg        Config
	log        *zap.Logger

	mu                sync.Mutex
	lastForeignTarget string
}

// NewRouter builds a router in its initial state.
func NewRouter(table *languages.Table, classifier *Classifier, cfg Config, log *zap.Logger) *Router {
	cfg = cfg.withDefaults()
	if classifier == nil {
		classifier = NewClassifier(table, cfg.HomeTarget, nil)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Router{
		table:             table,
		classifier:        classifier,
		cfg:               cfg,
		log:               log,
		lastForeignTarget: cfg.DefaultForeign,
	}
}

// Route classifies a final recognition and, unless it is dropped, builds the
// chat message and synthesis request for it. Foreign utterances become the
// reply target for later home utterances.
func (r *Router) Route(detected, text string, translations map[string]string) Outcome {
	r.mu.Lock()
	defer r.mu.Unlock()

	result := r.classifier.Classify(detected, text)
	switch result.Side {
	case SideForeign:
		r.lastForeignTarget = result.TargetCode
		translated := translations[r.cfg.HomeTarget]
		return Outcome{
			Routed:         true,
			Classification: result,
			Message:        domain.NewChatMessage(text, translated, result.TargetCode, r.cfg.HomeLabel, false),
			Speech: domain.SynthesisRequest{
				Text:         translated,
				LanguageCode: r.cfg.HomeTarget,
				VoiceName:    r.table.VoiceFor(r.cfg.HomeTarget),
			},
		}
	case SideHome:
		target := r.lastForeignTarget
		translated := translations[target]
		return Outcome{
			Routed:         true,
			Classification: result,
			Message:        domain.NewChatMessage(text, translated, r.cfg.HomeLabel, target, true),
			Speech: domain.SynthesisRequest{
				Text:         translated,
				LanguageCode: target,
				VoiceName:    r.table.VoiceFor(target),
			},
		}
	default:
		if result.Drop == DropMisrecognition {
			r.log.Warn("ignored likely misrecognition", zap.String("detected", detected), zap.String("text", text))
		} else {
			r.log.Debug("unknown language code", zap.String("detected", detected))
		}
		return Outcome{Classification: result}
	}
}

// Reset restores the default foreign target.
func (r *Router) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastForeignTarget = r.cfg.DefaultForeign
}

// LastForeignTarget returns the current reply target for home utterances.
func (r *Router) LastForeignTarget() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastForeignTarget
}

// HomeLabel is the label shown for the home side.
func (r *Router) HomeLabel() string {
	return r.cfg.HomeLabel
}
