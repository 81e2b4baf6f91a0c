package ingestion

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-audio/wav"
)

// DefaultMaxAudioDuration is the longest audio upload accepted for transcription
const DefaultMaxAudioDuration = 30 * time.Second

// ErrAudioTooLong is returned when an audio upload exceeds the allowed duration
var ErrAudioTooLong = errors.New("audio is too long")

// IsAudioFile reports whether the file name has a supported audio extension
func IsAudioFile(name string) bool {
	return strings.ToLower(filepath.Ext(name)) == ".wav"
}

// AudioDuration reads the WAV header of a file and returns its play time
func AudioDuration(filePath string) (time.Duration, error) {
	if !IsAudioFile(filePath) {
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedFile, filepath.Ext(filePath))
	}

	f, err := os.Open(filePath)
	if err != nil {
		return 0, fmt.Errorf("failed to open audio: %w", err)
	}
	defer f.Close()

	if !wav.NewDecoder(f).IsValidFile() {
		return 0, fmt.Errorf("%w: %s is not a valid wav file", ErrUnsupportedFile, filepath.Base(filePath))
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return 0, fmt.Errorf("failed to rewind audio: %w", err)
	}

	d, err := wav.NewDecoder(f).Duration()
	if err != nil {
		return 0, fmt.Errorf("failed to read audio duration: %w", err)
	}

	return d, nil
}

// CheckAudio rejects audio longer than limit. A zero limit uses
// DefaultMaxAudioDuration.
func CheckAudio(filePath string, limit time.Duration) error {
	if limit <= 0 {
		limit = DefaultMaxAudioDuration
	}

	d, err := AudioDuration(filePath)
	if err != nil {
		return err
	}

	if d > limit {
		return fmt.Errorf("%w: %s exceeds the %s limit", ErrAudioTooLong, d.Round(time.Millisecond), limit)
	}

	return nil
}
