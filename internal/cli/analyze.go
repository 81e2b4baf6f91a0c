package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/fmuoria/interview-analyzer/internal/export"
	"github.com/fmuoria/interview-analyzer/internal/models"
)

func newAnalyzeCommand(rt *Runtime) *cobra.Command {
	var (
		req      models.AnalyzeRequest
		asJSON   bool
		xlsxPath string
	)

	cmd := &cobra.Command{
		Use:   "analyze [file|-]",
		Short: "Score a transcript file, a short .wav recording, or stdin",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				report *models.Report
				err    error
			)

			if len(args) == 0 || args[0] == "-" {
				data, readErr := io.ReadAll(cmd.InOrStdin())
				if readErr != nil {
					return fmt.Errorf("failed to read stdin: %w", readErr)
				}
				req.Transcript = string(data)
				if req.Source == "" {
					req.Source = "stdin"
				}
				report, err = rt.agent.Analyze(cmd.Context(), req)
			} else {
				report, err = rt.agent.AnalyzeFile(cmd.Context(), args[0], req)
			}
			if err != nil {
				return err
			}

			if xlsxPath != "" {
				if err := export.ExportToExcel([]models.Report{*report}, xlsxPath); err != nil {
					return fmt.Errorf("failed to export report: %w", err)
				}
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}
			return printReport(cmd.OutOrStdout(), report)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&req.Industry, "industry", "", "interview domain, e.g. IT")
	flags.StringVar(&req.Subdomain, "subdomain", "", "subdomain or role, e.g. SQL")
	flags.StringVar(&req.CandidateType, "candidate-type", "Fresher", "Fresher or Experienced")
	flags.StringVar(&req.RoundType, "round-type", "Interview", "Interview, Group Discussion or Mock")
	flags.StringVar(&req.Source, "source", "", "label stored with the report")
	flags.BoolVar(&asJSON, "json", false, "print the report as JSON")
	flags.StringVar(&xlsxPath, "xlsx", "", "also write the report to an Excel workbook")

	return cmd
}

// printReport writes a human readable report
func printReport(w io.Writer, r *models.Report) error {
	s := r.Session

	fmt.Fprintf(w, "Report %s (%s)\n", r.ID, r.Source)
	if r.Industry != "" || r.Subdomain != "" {
		fmt.Fprintf(w, "Domain: %s / %s, %s, %s\n", r.Industry, r.Subdomain, r.CandidateType, r.RoundType)
	}
	fmt.Fprintf(w, "Recommendation: %s [%s]\n", s.Recommendation, s.Badge)
	fmt.Fprintf(w, "%s\n", s.Message)
	fmt.Fprintf(w, "Average score: %.1f/10  Knowledge: %.1f/10 (%s)\n\n", s.AvgScore, s.AvgKnowledge, s.KnowledgeBadge)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SPEAKER\tTONE\tSCORE\tCONFIDENCE\tEMPATHY\tFILLERS\tKNOWLEDGE\tMATCHED")
	for _, c := range r.Cards {
		fmt.Fprintf(tw, "%s\t%s\t%.1f\t%.2f\t%d\t%d\t%.1f\t%s\n",
			c.Speaker, c.Tone, c.Score, c.Confidence, c.EmpathyScore, c.NumFillers,
			c.KnowledgeScore, strings.Join(c.MatchedKeywords, ", "))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	writeList(w, "Pros", s.Pros)
	writeList(w, "Cons", s.Cons)
	if s.Summary != "" {
		fmt.Fprintf(w, "\nSummary: %s\n", s.Summary)
	}
	return nil
}

func writeList(w io.Writer, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%s:\n", title)
	for _, item := range items {
		fmt.Fprintf(w, "  • %s\n", item)
	}
}
