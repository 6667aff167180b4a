// Package video muxes a still image and an audio clip into an MP4 with ffmpeg.
package video

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
)

// Encoding settings for still-image videos.
const (
	VideoCodec   = "libx264"
	AudioCodec   = "aac"
	AudioBitrate = "192k"
	PixelFormat  = "yuv420p"

	DefaultTimeout = 5 * time.Minute
)

// Compositor renders still image + audio videos.
type Compositor interface {
	Compose(ctx context.Context, imagePath, audioPath, outputPath string) error
}

// FFmpeg runs the ffmpeg binary. Path defaults to "ffmpeg" on PATH.
type FFmpeg struct {
	Path    string
	Timeout time.Duration
}

// CheckFFmpegAvailable reports whether the ffmpeg binary can be found.
func CheckFFmpegAvailable(path string) error {
	if path == "" {
		path = "ffmpeg"
	}
	resolved, err := exec.LookPath(path)
	if err != nil {
		return fmt.Errorf("ffmpeg not found (%s): install FFmpeg with brew install ffmpeg (macOS) or apt install ffmpeg (Linux)", path)
	}
	log.Debug().Str("path", resolved).Msg("ffmpeg found")
	return nil
}

// BuildArgs returns the ffmpeg arguments that loop imagePath for the
// length of audioPath and write outputPath, overwriting it.
func BuildArgs(imagePath, audioPath, outputPath string) []string {
	return []string{
		"-y",
		"-loop", "1",
		"-i", imagePath,
		"-i", audioPath,
		"-c:v", VideoCodec,
		"-tune", "stillimage",
		"-c:a", AudioCodec,
		"-b:a", AudioBitrate,
		"-pix_fmt", PixelFormat,
		"-shortest",
		outputPath,
	}
}

// Compose implements Compositor. A non-zero exit is returned as an error
// carrying ffmpeg's combined output.
func (f *FFmpeg) Compose(ctx context.Context, imagePath, audioPath, outputPath string) error {
	bin := f.Path
	if bin == "" {
		bin = "ffmpeg"
	}
	timeout := f.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	for _, in := range []string{imagePath, audioPath} {
		if _, err := os.Stat(in); err != nil {
			return fmt.Errorf("video input: %w", err)
		}
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	args := BuildArgs(imagePath, audioPath, outputPath)
	log.Debug().Strs("args", args).Msg("Running ffmpeg")

	start := time.Now()
	output, err := exec.CommandContext(ctx, bin, args...).CombinedOutput()
	elapsed := time.Since(start)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("ffmpeg timed out after %s", timeout)
		}
		log.Error().
			Err(err).
			Str("output_path", outputPath).
			Str("ffmpeg_output", tail(string(output), 2000)).
			Dur("duration", elapsed).
			Msg("ffmpeg failed")
		return fmt.Errorf("ffmpeg failed: %w\nOutput: %s", err, tail(string(output), 500))
	}

	log.Info().
		Str("path", outputPath).
		Dur("duration", elapsed).
		Msg("Video created")
	return nil
}

// tail keeps the end of ffmpeg's output, where the error usually is.
func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return "..." + s[len(s)-n:]
}
