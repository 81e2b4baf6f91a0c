package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newDomainsCommand(rt *Runtime) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "domains",
		Short: "List industries, subdomains, candidate and round types",
		RunE: func(cmd *cobra.Command, _ []string) error {
			table := rt.agent.Domains()
			out := cmd.OutOrStdout()

			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(table)
			}

			for _, ind := range table.Industries {
				fmt.Fprintf(out, "%s: %s\n", ind.Name, strings.Join(ind.Subdomains, ", "))
			}
			fmt.Fprintf(out, "\nCandidate types: %s\n", strings.Join(table.CandidateTypes, ", "))
			fmt.Fprintf(out, "Round types: %s\n", strings.Join(table.RoundTypes, ", "))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the catalogue as JSON")
	return cmd
}
