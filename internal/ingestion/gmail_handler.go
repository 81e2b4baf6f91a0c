package ingestion

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// GmailHandler downloads interview transcripts and recordings sent as email attachments
type GmailHandler struct {
	service    *gmail.Service
	uploadsDir string
	log        *logrus.Entry
}

// GmailOptions locate the OAuth files used by the Gmail client
type GmailOptions struct {
	CredentialsPath string
	TokenPath       string
	UploadsDir      string
	// Prompt receives the authorization URL on first use
	Prompt io.Writer
	// Input supplies the authorization code on first use
	Input io.Reader
}

// NewGmailHandler creates a new Gmail handler
func NewGmailHandler(ctx context.Context, opts GmailOptions, log *logrus.Entry) (*GmailHandler, error) {
	b, err := os.ReadFile(opts.CredentialsPath)
	if err != nil {
		return nil, fmt.Errorf("unable to read credentials file: %w", err)
	}

	config, err := google.ConfigFromJSON(b, gmail.GmailReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse credentials: %w", err)
	}

	client, err := getClient(ctx, config, opts)
	if err != nil {
		return nil, err
	}

	srv, err := gmail.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("unable to create Gmail client: %w", err)
	}

	return &GmailHandler{
		service:    srv,
		uploadsDir: opts.UploadsDir,
		log:        log.WithField("component", "gmail"),
	}, nil
}

// getClient loads the cached token or runs the consent flow once
func getClient(ctx context.Context, config *oauth2.Config, opts GmailOptions) (*http.Client, error) {
	tok, err := tokenFromFile(opts.TokenPath)
	if err != nil {
		tok, err = getTokenFromWeb(ctx, config, opts.Prompt, opts.Input)
		if err != nil {
			return nil, err
		}
		if err := saveToken(opts.TokenPath, tok); err != nil {
			return nil, err
		}
	}
	return config.Client(ctx, tok), nil
}

// getTokenFromWeb asks the user to open the consent page and paste the code
func getTokenFromWeb(ctx context.Context, config *oauth2.Config, prompt io.Writer, input io.Reader) (*oauth2.Token, error) {
	if prompt == nil || input == nil {
		return nil, fmt.Errorf("no cached Gmail token and no terminal to authorize with")
	}

	authURL := config.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
	fmt.Fprintf(prompt, "Go to the following link in your browser then type the authorization code: \n%v\n", authURL)

	var authCode string
	if _, err := fmt.Fscan(input, &authCode); err != nil {
		return nil, fmt.Errorf("unable to read authorization code: %w", err)
	}

	tok, err := config.Exchange(ctx, authCode)
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve token from web: %w", err)
	}
	return tok, nil
}

// tokenFromFile retrieves a token from a local file
func tokenFromFile(file string) (*oauth2.Token, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	tok := &oauth2.Token{}
	err = json.NewDecoder(f).Decode(tok)
	return tok, err
}

// saveToken saves a token to a file path
func saveToken(path string, token *oauth2.Token) error {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("unable to cache oauth token: %w", err)
	}
	defer f.Close()
	if err := json.NewEncoder(f).Encode(token); err != nil {
		return fmt.Errorf("unable to cache oauth token: %w", err)
	}
	return nil
}

// FetchAttachments downloads the transcript and audio attachments of every
// message matching subject and returns the saved file paths. Attachments of
// other types are skipped.
func (gh *GmailHandler) FetchAttachments(ctx context.Context, subject string) ([]string, error) {
	if err := os.MkdirAll(gh.uploadsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create uploads directory: %w", err)
	}

	user := "me"
	query := fmt.Sprintf("subject:%s has:attachment", subject)

	r, err := gh.service.Users.Messages.List(user).Q(query).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve messages: %w", err)
	}

	if len(r.Messages) == 0 {
		return nil, fmt.Errorf("no messages found with subject: %s", subject)
	}

	var saved []string
	for _, msg := range r.Messages {
		message, err := gh.service.Users.Messages.Get(user, msg.Id).Context(ctx).Do()
		if err != nil {
			gh.log.WithError(err).WithField("message_id", msg.Id).Warn("unable to retrieve message")
			continue
		}

		if message.Payload == nil {
			gh.log.WithField("message_id", msg.Id).Warn("message has no payload")
			continue
		}

		senderName := extractSenderName(message)

		for _, part := range message.Payload.Parts {
			if part.Filename == "" || part.Body == nil || part.Body.AttachmentId == "" {
				continue
			}
			if !IsTranscriptFile(part.Filename) && !IsAudioFile(part.Filename) {
				gh.log.WithField("file", part.Filename).Debug("skipping attachment")
				continue
			}

			attachment, err := gh.service.Users.Messages.Attachments.Get(user, msg.Id, part.Body.AttachmentId).Context(ctx).Do()
			if err != nil {
				gh.log.WithError(err).Warn("unable to retrieve attachment")
				continue
			}

			data, err := base64.URLEncoding.DecodeString(attachment.Data)
			if err != nil {
				gh.log.WithError(err).Warn("unable to decode attachment")
				continue
			}

			filePath, err := attachmentPath(gh.uploadsDir, senderName, part.Filename)
			if err != nil {
				gh.log.WithError(err).Warn("rejecting attachment")
				continue
			}
			if err := os.WriteFile(filePath, data, 0644); err != nil {
				gh.log.WithError(err).WithField("path", filePath).Warn("unable to write attachment")
				continue
			}

			gh.log.WithField("path", filePath).Info("downloaded attachment")
			saved = append(saved, filePath)
		}
	}

	return saved, nil
}

// attachmentFilename prefixes the sender so files from different candidates never collide.
// Both parts are reduced to a single path element.
func attachmentFilename(sender, filename string) string {
	return fmt.Sprintf("%s_%s", senderSlug(sender), filepath.Base(filepath.Clean("/"+filename)))
}

// attachmentPath joins an attachment name onto dir and refuses anything that
// would land outside it
func attachmentPath(dir, sender, filename string) (string, error) {
	path := filepath.Join(dir, attachmentFilename(sender, filename))

	rel, err := filepath.Rel(dir, path)
	if err != nil || rel != filepath.Base(path) || rel == ".." {
		return "", fmt.Errorf("attachment %q from %q escapes the uploads directory", filename, sender)
	}
	return path, nil
}

// senderSlug keeps letters, digits, '-' and '_' of a sender name
func senderSlug(sender string) string {
	slug := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' {
			return r
		}
		return -1
	}, sender)
	if slug == "" {
		return "Unknown"
	}
	return slug
}

// extractSenderName extracts the sender's name from email headers
func extractSenderName(message *gmail.Message) string {
	if message.Payload == nil {
		return "Unknown"
	}
	for _, header := range message.Payload.Headers {
		if header.Name == "From" {
			// "Name <email@example.com>"
			from := header.Value
			if idx := strings.Index(from, "<"); idx > 0 {
				name := strings.TrimSpace(from[:idx])
				name = strings.ReplaceAll(name, " ", "")
				return name
			}
			if idx := strings.Index(from, "@"); idx > 0 {
				return from[:idx]
			}
			return "Unknown"
		}
	}
	return "Unknown"
}
