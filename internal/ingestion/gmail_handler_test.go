package ingestion

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

func TestExtractSenderName(t *testing.T) {
	tests := []struct {
		name    string
		headers []*gmail.MessagePartHeader
		want    string
	}{
		{
			name:    "display name",
			headers: []*gmail.MessagePartHeader{{Name: "From", Value: "Jane Doe <jane@example.com>"}},
			want:    "JaneDoe",
		},
		{
			name:    "bare address",
			headers: []*gmail.MessagePartHeader{{Name: "From", Value: "jane@example.com"}},
			want:    "jane",
		},
		{
			name:    "no from header",
			headers: []*gmail.MessagePartHeader{{Name: "Subject", Value: "Interview"}},
			want:    "Unknown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := &gmail.Message{Payload: &gmail.MessagePart{Headers: tt.headers}}
			if got := extractSenderName(msg); got != tt.want {
				t.Errorf("extractSenderName() = %q, want %q", got, tt.want)
			}
		})
	}

	if got := extractSenderName(&gmail.Message{}); got != "Unknown" {
		t.Errorf("Expected Unknown for message without payload, got %q", got)
	}
}

func TestAttachmentFilename(t *testing.T) {
	tests := []struct {
		sender, filename, want string
	}{
		{"JaneDoe", "round1.wav", "JaneDoe_round1.wav"},
		{"JaneDoe", "../../round1.txt", "JaneDoe_round1.txt"},
		{"../../../tmp/evil", "notes.txt", "tmpevil_notes.txt"},
		{`..\..\evil`, "notes.txt", "evil_notes.txt"},
		{"..", "notes.txt", "Unknown_notes.txt"},
		{"José-Luis_2", "a.docx", "José-Luis_2_a.docx"},
	}

	for _, tt := range tests {
		if got := attachmentFilename(tt.sender, tt.filename); got != tt.want {
			t.Errorf("attachmentFilename(%q, %q) = %q, want %q", tt.sender, tt.filename, got, tt.want)
		}
	}
}

func TestAttachmentPathStaysInUploadsDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")

	msg := &gmail.Message{Payload: &gmail.MessagePart{Headers: []*gmail.MessagePartHeader{
		{Name: "From", Value: "../../../tmp/evil <a@b.c>"},
	}}}
	sender := extractSenderName(msg)

	for _, filename := range []string{"notes.txt", "../../notes.txt", "/etc/notes.txt", ".."} {
		path, err := attachmentPath(dir, sender, filename)
		if err != nil {
			t.Errorf("attachmentPath(%q) returned error: %v", filename, err)
			continue
		}
		if filepath.Dir(path) != dir {
			t.Errorf("attachmentPath(%q) = %q, want a file directly under %q", filename, path, dir)
		}
	}
}

func TestGetTokenFromWebWithoutTerminal(t *testing.T) {
	_, err := getTokenFromWeb(context.Background(), &oauth2.Config{}, nil, nil)
	if err == nil || !strings.Contains(err.Error(), "no cached Gmail token") {
		t.Errorf("Expected missing terminal error, got %v", err)
	}
}

func TestTokenRoundTrip(t *testing.T) {
	path := t.TempDir() + "/token.json"
	tok := &oauth2.Token{AccessToken: "abc", TokenType: "Bearer"}

	if err := saveToken(path, tok); err != nil {
		t.Fatalf("saveToken() returned error: %v", err)
	}

	got, err := tokenFromFile(path)
	if err != nil {
		t.Fatalf("tokenFromFile() returned error: %v", err)
	}
	if got.AccessToken != "abc" {
		t.Errorf("Expected access token abc, got %q", got.AccessToken)
	}
}

func newFakeGmail(t *testing.T, uploadsDir string) *GmailHandler {
	t.Helper()

	mux := http.NewServeMux()
	writeJSON := func(w http.ResponseWriter, v any) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(v)
	}

	mux.HandleFunc("GET /gmail/v1/users/me/messages", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, map[string]any{"messages": []map[string]string{{"id": "empty"}, {"id": "m2"}}})
	})
	mux.HandleFunc("GET /gmail/v1/users/me/messages/empty", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, map[string]any{"id": "empty"})
	})
	mux.HandleFunc("GET /gmail/v1/users/me/messages/m2", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, map[string]any{
			"id": "m2",
			"payload": map[string]any{
				"headers": []map[string]string{{"name": "From", "value": "../../../tmp/evil <a@b.c>"}},
				"parts": []map[string]any{
					{"filename": "../notes.txt", "body": map[string]string{"attachmentId": "a1"}},
					{"filename": "resume.pdf", "body": map[string]string{"attachmentId": "a2"}},
				},
			},
		})
	})
	mux.HandleFunc("GET /gmail/v1/users/me/messages/m2/attachments/a1", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, map[string]string{"data": base64.URLEncoding.EncodeToString([]byte("Alice: hello there, thanks for having me."))})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	service, err := gmail.NewService(context.Background(),
		option.WithHTTPClient(srv.Client()),
		option.WithEndpoint(srv.URL+"/"),
	)
	if err != nil {
		t.Fatalf("Failed to create Gmail service: %v", err)
	}

	log := logrus.New()
	log.SetOutput(io.Discard)

	return &GmailHandler{service: service, uploadsDir: uploadsDir, log: logrus.NewEntry(log)}
}

func TestFetchAttachmentsSkipsMissingPayloadAndSanitizesNames(t *testing.T) {
	root := t.TempDir()
	uploads := filepath.Join(root, "srv", "uploads")

	paths, err := newFakeGmail(t, uploads).FetchAttachments(context.Background(), "Interview")
	if err != nil {
		t.Fatalf("FetchAttachments() returned error: %v", err)
	}

	want := filepath.Join(uploads, "tmpevil_notes.txt")
	if len(paths) != 1 || paths[0] != want {
		t.Fatalf("Expected only %q, got %v", want, paths)
	}

	data, err := os.ReadFile(want)
	if err != nil {
		t.Fatalf("Expected attachment to be written: %v", err)
	}
	if !strings.HasPrefix(string(data), "Alice:") {
		t.Errorf("Unexpected attachment content %q", data)
	}

	escaped := filepath.Join(uploads, "../../../tmp/evil_notes.txt")
	if _, err := os.Stat(escaped); !os.IsNotExist(err) {
		t.Errorf("Expected nothing at %q, stat err = %v", escaped, err)
	}
}
