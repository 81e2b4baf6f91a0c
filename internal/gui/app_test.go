package gui

import (
	"image/color"
	"strings"
	"testing"

	"github.com/fmuoria/interview-analyzer/internal/models"
)

func TestHexColor(t *testing.T) {
	tests := []struct {
		in   string
		want color.NRGBA
	}{
		{"2196F3", color.NRGBA{R: 0x21, G: 0x96, B: 0xF3, A: 0xFF}},
		{"#00C853", color.NRGBA{R: 0x00, G: 0xC8, B: 0x53, A: 0xFF}},
		{"zzz", color.NRGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xFF}},
		{"FFF", color.NRGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xFF}},
	}

	for _, tt := range tests {
		if got := hexColor(tt.in); got != tt.want {
			t.Errorf("hexColor(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestCardCell(t *testing.T) {
	card := models.SpeakerScoreCard{
		Speaker:           "Alice",
		Tone:              models.TonePositive,
		Score:             7.25,
		Confidence:        0.666,
		EmpathyScore:      2,
		NumFillers:        1,
		AvgSentenceLength: 12,
		KnowledgeScore:    6,
		MatchedKeywords:   []string{"sql", "join"},
	}

	want := []string{"Alice", "Positive", "7.2", "0.67", "2", "1", "12", "6.0", "sql, join"}
	if len(want) != len(cardHeaders) {
		t.Fatalf("Expected one value per header")
	}
	for col, w := range want {
		if got := cardCell(card, col); got != w {
			t.Errorf("cardCell(col %d) = %q, want %q", col, got, w)
		}
	}
	if got := cardCell(card, 99); got != "" {
		t.Errorf("Expected empty cell for unknown column, got %q", got)
	}
}

func TestBulletText(t *testing.T) {
	if got := bulletText(nil); got != "None" {
		t.Errorf("Expected None, got %q", got)
	}
	if got := bulletText([]string{"a", "b"}); got != "• a\n• b" {
		t.Errorf("Unexpected bullets %q", got)
	}
}

func TestSessionHeadline(t *testing.T) {
	got := sessionHeadline(models.SessionResult{
		AvgScore:       7.04,
		AvgKnowledge:   8.5,
		Recommendation: models.RecommendSelect,
		Message:        "Recommended",
		KnowledgeBadge: models.KnowledgeStrong,
	})

	for _, part := range []string{"Recommended (Select)", "7.0/10", "8.5/10 (Strong)"} {
		if !strings.Contains(got, part) {
			t.Errorf("Expected headline to contain %q, got %q", part, got)
		}
	}
}

func TestReportLabel(t *testing.T) {
	got := reportLabel(models.Report{ID: "0123456789abcdef", Source: "round1.txt", Industry: "IT", Subdomain: "SQL"})
	if got != "round1.txt · IT/SQL · 01234567" {
		t.Errorf("Unexpected label %q", got)
	}
}
