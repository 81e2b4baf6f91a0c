package llm

import (
	"context"
	"testing"
)

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		Summary string  `json:"summary"`
		Score   float64 `json:"score"`
	}

	tests := []struct {
		name     string
		response string
		want     payload
		wantErr  bool
	}{
		{
			name:     "Plain object",
			response: `{"summary": "ok", "score": 0.5}`,
			want:     payload{Summary: "ok", Score: 0.5},
		},
		{
			name:     "Code fence and chatter",
			response: "Here you go:\n```json\n{\"summary\": \"fenced\", \"score\": -1}\n```",
			want:     payload{Summary: "fenced", Score: -1},
		},
		{
			name:     "No JSON",
			response: "I cannot help with that",
			wantErr:  true,
		},
		{
			name:     "Broken JSON",
			response: `{"summary": }`,
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got payload
			err := DecodeJSON(tt.response, &got)
			if (err != nil) != tt.wantErr {
				t.Fatalf("DecodeJSON() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("DecodeJSON() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestNewVertexAIClientRequiresProject(t *testing.T) {
	if _, err := NewVertexAIClient(context.Background(), "", "us-central1", ""); err == nil {
		t.Error("NewVertexAIClient() should fail without a project")
	}
}
