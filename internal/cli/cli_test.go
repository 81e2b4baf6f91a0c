package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/fmuoria/interview-analyzer/internal/models"
	"github.com/fmuoria/interview-analyzer/internal/scoring"
)

const transcriptText = "Interviewer: Tell me about your database experience.\n" +
	"Candidate: Thank you, good question. I write SQL every day and tune each index carefully.\n" +
	"Candidate: I understand normalization and use group by with a subquery when needed."

func writeConfig(t *testing.T) string {
	t.Helper()
	return writeConfigWith(t, nil)
}

func writeConfigWith(t *testing.T, extra map[string]any) string {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	values := map[string]any{
		"uploads_dir": filepath.Join(dir, "uploads"),
		"log_level":   "error",
	}
	for k, v := range extra {
		values[k] = v
	}
	data, _ := json.Marshal(values)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	root := NewRootCommand()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append([]string{"--config", writeConfig(t)}, args...))

	err := root.Execute()
	return out.String(), err
}

func TestDomainsCommand(t *testing.T) {
	out, err := execute(t, "", "domains")
	if err != nil {
		t.Fatalf("domains failed: %v", err)
	}

	for _, want := range []string{"IT: Python, SQL", "Candidate types: Fresher, Experienced", "Round types: Interview"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected output to contain %q, got:\n%s", want, out)
		}
	}
}

func TestDomainsCommandJSON(t *testing.T) {
	out, err := execute(t, "", "domains", "--json")
	if err != nil {
		t.Fatalf("domains failed: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("Expected JSON output: %v", err)
	}
	if _, ok := decoded["industries"]; !ok {
		t.Errorf("Expected industries key, got %v", decoded)
	}
}

func TestAnalyzeStdinJSON(t *testing.T) {
	out, err := execute(t, transcriptText, "analyze", "--json", "--industry", "IT", "--subdomain", "SQL")
	if err != nil {
		t.Fatalf("analyze failed: %v", err)
	}

	var report models.Report
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("Failed to decode report: %v", err)
	}
	if report.Source != "stdin" {
		t.Errorf("Expected source stdin, got %q", report.Source)
	}
	if len(report.Cards) != 2 {
		t.Fatalf("Expected 2 cards, got %d", len(report.Cards))
	}
	if report.CandidateType != "Fresher" || report.RoundType != "Interview" {
		t.Errorf("Expected flag defaults, got %q/%q", report.CandidateType, report.RoundType)
	}
	if len(report.DomainKeys) == 0 {
		t.Error("Expected SQL keywords to be attached to the report")
	}
}

func TestAnalyzeFileWithExport(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "round1.txt")
	if err := os.WriteFile(input, []byte(transcriptText), 0644); err != nil {
		t.Fatalf("Failed to write transcript: %v", err)
	}
	xlsx := filepath.Join(dir, "out.xlsx")

	out, err := execute(t, "", "analyze", input, "--xlsx", xlsx)
	if err != nil {
		t.Fatalf("analyze failed: %v", err)
	}

	for _, want := range []string{"(round1.txt)", "Recommendation:", "SPEAKER", "Interviewer", "Candidate"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected output to contain %q, got:\n%s", want, out)
		}
	}
	if _, err := os.Stat(xlsx); err != nil {
		t.Errorf("Expected workbook to be written: %v", err)
	}
}

func TestAnalyzeInsufficientTranscript(t *testing.T) {
	_, err := execute(t, "too short", "analyze", "-")
	if !errors.Is(err, scoring.ErrInsufficientTranscript) {
		t.Errorf("Expected ErrInsufficientTranscript, got %v", err)
	}
}

func TestAnalyzeTooManyArgs(t *testing.T) {
	if _, err := execute(t, "", "analyze", "a.txt", "b.txt"); err == nil {
		t.Error("Expected an error for two positional arguments")
	}
}

func TestExtraCommandsShareRuntime(t *testing.T) {
	var got *Runtime
	factory := func(rt *Runtime) *cobra.Command {
		return &cobra.Command{
			Use: "inspect",
			RunE: func(*cobra.Command, []string) error {
				got = rt
				return nil
			},
		}
	}

	root := NewRootCommand(factory)
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"--config", writeConfig(t), "--log-level", "debug", "inspect"})
	if err := root.Execute(); err != nil {
		t.Fatalf("inspect failed: %v", err)
	}

	if got == nil || got.Agent() == nil || got.Logger() == nil {
		t.Fatal("Expected runtime to be initialized before the command runs")
	}
	if got.Config().LogLevel != "debug" {
		t.Errorf("Expected --log-level to override config, got %q", got.Config().LogLevel)
	}
}

func TestPrintReport(t *testing.T) {
	var buf bytes.Buffer
	err := printReport(&buf, &models.Report{
		ID:     "r1",
		Source: "pasted",
		Cards: []models.SpeakerScoreCard{
			{Speaker: "Alice", Tone: models.TonePositive, Score: 7.5, Confidence: 0.8, MatchedKeywords: []string{"sql"}},
		},
		Session: models.SessionResult{
			AvgScore:       7.5,
			AvgKnowledge:   6,
			Recommendation: models.RecommendSelect,
			Badge:          models.BadgeGood,
			KnowledgeBadge: models.KnowledgeBasic,
			Message:        "recommended",
			Pros:           []string{"clear"},
		},
	})
	if err != nil {
		t.Fatalf("printReport failed: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"Report r1 (pasted)", "Recommendation: Select [Good]", "7.5/10", "(Basic)", "Alice", "Pros:\n  • clear"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected output to contain %q, got:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Cons:") {
		t.Error("Expected empty cons to be omitted")
	}
	if strings.Contains(out, "Domain:") {
		t.Error("Expected domain line to be omitted without a domain")
	}
}

func TestInvalidConfigIsRejected(t *testing.T) {
	tests := map[string]map[string]any{
		"misspelled sentiment backend": {"sentiment_backend": "lexicn"},
		"unknown summarizer backend":   {"summarizer_backend": "abstractive"},
		"zero workers":                 {"workers": 0},
	}

	for name, extra := range tests {
		t.Run(name, func(t *testing.T) {
			root := NewRootCommand()
			root.SetOut(&bytes.Buffer{})
			root.SetErr(&bytes.Buffer{})
			root.SetArgs([]string{"--config", writeConfigWith(t, extra), "domains"})

			err := root.Execute()
			if err == nil || !strings.Contains(err.Error(), "invalid config") {
				t.Errorf("Expected invalid config error, got %v", err)
			}
		})
	}
}
