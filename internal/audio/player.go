package audio

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// Player pipes synthesized audio into an external player and waits for it to finish.
type Player struct {
	command string
	args    []string
	log     *zap.Logger
}

func NewPlayer(command string, log *zap.Logger) *Player {
	if command == "" {
		command = "ffplay"
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Player{command: command, args: playerArgs(command), log: log}
}

func (p *Player) Play(ctx context.Context, audio []byte) error {
	if len(audio) == 0 {
		return nil
	}

	cmd := exec.CommandContext(ctx, p.command, p.args...)
	cmd.WaitDelay = waitDelay
	cmd.Stdin = bytes.NewReader(audio)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	p.log.Debug("playing audio", zap.Int("bytes", len(audio)))
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return withStderr(fmt.Errorf("%s failed: %w", filepath.Base(p.command), err), &stderr)
	}
	return nil
}

// playerArgs makes the known players read a single clip from stdin and exit.
func playerArgs(command string) []string {
	switch strings.TrimSuffix(filepath.Base(command), ".exe") {
	case "ffplay":
		return []string{"-nodisp", "-autoexit", "-hide_banner", "-loglevel", "warning", "-i", "-"}
	case "aplay":
		return []string{"-q", "-"}
	default:
		return nil
	}
}
