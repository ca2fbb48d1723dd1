package ingest

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// waitDelay bounds how long Fetch waits for stderr to drain after the process is
// killed. yt-dlp children (ffmpeg) can otherwise hold the pipe open.
const waitDelay = 2 * time.Second

// YTDLP runs the yt-dlp binary as the extractor.
type YTDLP struct {
	Binary    string
	ExtraArgs []string
}

func NewYTDLP(binary string, extraArgs []string) *YTDLP {
	if binary == "" {
		binary = "yt-dlp"
	}
	return &YTDLP{Binary: binary, ExtraArgs: extraArgs}
}

// Args builds the yt-dlp command line for req. The URL always comes after "--"
// so that user input is never parsed as an option.
func (y *YTDLP) Args(req Request) []string {
	args := []string{
		"--no-playlist",
		"--no-progress",
		"--format", req.Format,
		"--output", req.Output,
	}
	args = append(args, y.ExtraArgs...)
	return append(args, "--", req.URL)
}

// Fetch runs yt-dlp to completion. Cancelling ctx kills the process.
func (y *YTDLP) Fetch(ctx context.Context, req Request) error {
	cmd := exec.CommandContext(ctx, y.Binary, y.Args(req)...)
	cmd.WaitDelay = waitDelay

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("yt-dlp interrupted: %w", ctx.Err())
		}
		return &ExtractionError{Message: errorMessage(stderr.String(), err), Err: err}
	}
	return nil
}

// LookPath reports whether the yt-dlp binary can be resolved.
func (y *YTDLP) LookPath() error {
	if _, err := exec.LookPath(y.Binary); err != nil {
		return fmt.Errorf("yt-dlp not found: %w", err)
	}
	return nil
}

// errorMessage picks the extractor's own error text out of stderr: the last
// "ERROR:" line, else the last non-empty line, else the process error.
func errorMessage(stderr string, runErr error) string {
	lines := strings.Split(strings.TrimSpace(stderr), "\n")

	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if strings.HasPrefix(line, "ERROR:") {
			return line
		}
	}
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return fmt.Sprintf("yt-dlp failed: %v", runErr)
}
