// Package audio drives the microphone and the speaker through external
// ffmpeg tools, exchanging raw PCM and WAV over pipes.
package audio

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"
)

const (
	startupProbe = 250 * time.Millisecond
	stopTimeout  = 1200 * time.Millisecond
	waitDelay    = 500 * time.Millisecond
)

// interruptProcess asks process to exit, kills it after timeout and returns
// its exit status. waitErr must deliver the result of cmd.Wait.
func interruptProcess(process *os.Process, waitErr <-chan error, timeout time.Duration) error {
	if process != nil {
		_ = process.Signal(os.Interrupt)
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case err, ok := <-waitErr:
		if ok {
			return ignoreExitStatus(err)
		}
		return nil
	case <-timer.C:
		if process != nil {
			_ = process.Kill()
		}
		if err, ok := <-waitErr; ok {
			return ignoreExitStatus(err)
		}
		return nil
	}
}

// ignoreExitStatus treats a non-zero exit after an interrupt as a clean stop.
func ignoreExitStatus(err error) error {
	if err == nil {
		return nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return nil
	}
	return err
}

func withStderr(err error, stderr *bytes.Buffer) error {
	if err == nil || stderr == nil {
		return err
	}
	detail := bytes.TrimSpace(stderr.Bytes())
	if len(detail) == 0 {
		return err
	}
	return fmt.Errorf("%w: %s", err, detail)
}
