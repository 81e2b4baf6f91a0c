// Package transcription turns short interview recordings into transcript text
// through an external speech-to-text service.
package transcription

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"

	"github.com/fmuoria/interview-analyzer/internal/ingestion"
)

const (
	httpTimeout  = 60 * time.Second
	maxRetryTime = 2 * time.Minute
)

// Transcriber converts an audio file into transcript text
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
}

// Segment is one timed piece of recognized speech
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Response is the body returned by the ASR service
type Response struct {
	Text     string    `json:"text"`
	Segments []Segment `json:"segments"`
	Language string    `json:"language"`
}

// Transcript returns the full text, one segment per line when segments are present
func (r *Response) Transcript() string {
	if len(r.Segments) == 0 {
		return strings.TrimSpace(r.Text)
	}

	lines := make([]string, 0, len(r.Segments))
	for _, seg := range r.Segments {
		if text := strings.TrimSpace(seg.Text); text != "" {
			lines = append(lines, text)
		}
	}
	return strings.Join(lines, "\n")
}

// Client posts audio to an ASR service at baseURL+"/transcribe"
type Client struct {
	baseURL    string
	http       *http.Client
	log        *logrus.Entry
	newBackOff func() backoff.BackOff
}

// NewClient creates an ASR client
func NewClient(baseURL string, log *logrus.Entry) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: httpTimeout},
		log:     log.WithField("component", "asr"),
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.MaxElapsedTime = maxRetryTime
			return b
		},
	}
}

// Transcribe implements Transcriber. Transport errors and 5xx responses are
// retried with exponential backoff; 4xx responses fail immediately.
func (c *Client) Transcribe(ctx context.Context, audioPath string) (string, error) {
	body, contentType, err := multipartAudio(audioPath)
	if err != nil {
		return "", err
	}

	var out Response
	attempt := 0

	op := func() error {
		attempt++
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/transcribe", bytes.NewReader(body))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", contentType)

		resp, err := c.http.Do(req)
		if err != nil {
			c.log.WithError(err).WithField("attempt", attempt).Warn("asr request failed")
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			msg, _ := io.ReadAll(resp.Body)
			err := fmt.Errorf("asr %s: %s", resp.Status, strings.TrimSpace(string(msg)))
			if resp.StatusCode >= 400 && resp.StatusCode < 500 {
				return backoff.Permanent(err)
			}
			c.log.WithError(err).WithField("attempt", attempt).Warn("asr request failed")
			return err
		}

		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			return backoff.Permanent(fmt.Errorf("asr decode: %w", err))
		}
		return nil
	}

	if err := backoff.Retry(op, backoff.WithContext(c.newBackOff(), ctx)); err != nil {
		return "", fmt.Errorf("failed to transcribe %s: %w", filepath.Base(audioPath), err)
	}

	c.log.WithFields(logrus.Fields{
		"file":     filepath.Base(audioPath),
		"segments": len(out.Segments),
		"language": out.Language,
	}).Info("audio transcribed")

	return out.Transcript(), nil
}

// multipartAudio builds the request body once so retries can resend it
func multipartAudio(audioPath string) ([]byte, string, error) {
	var b bytes.Buffer
	w := multipart.NewWriter(&b)

	fw, err := w.CreateFormFile("file", filepath.Base(audioPath))
	if err != nil {
		return nil, "", err
	}
	fd, err := os.Open(audioPath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open audio: %w", err)
	}
	defer fd.Close()

	if _, err = io.Copy(fw, fd); err != nil {
		return nil, "", err
	}
	if err = w.Close(); err != nil {
		return nil, "", err
	}

	return b.Bytes(), w.FormDataContentType(), nil
}

// Guarded rejects recordings longer than a limit before handing them on
type Guarded struct {
	next  Transcriber
	limit time.Duration
}

// NewGuarded wraps a transcriber with the audio length check. A zero limit
// uses ingestion.DefaultMaxAudioDuration.
func NewGuarded(next Transcriber, limit time.Duration) *Guarded {
	return &Guarded{next: next, limit: limit}
}

// Transcribe implements Transcriber
func (g *Guarded) Transcribe(ctx context.Context, audioPath string) (string, error) {
	if err := ingestion.CheckAudio(audioPath, g.limit); err != nil {
		return "", err
	}
	return g.next.Transcribe(ctx, audioPath)
}
