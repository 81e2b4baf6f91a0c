package keywords

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed domains.yaml
var defaultTable []byte

// Industry is one selectable industry and its subdomains
type Industry struct {
	Name       string   `yaml:"name" json:"name"`
	Subdomains []string `yaml:"subdomains" json:"subdomains"`
}

// Table holds the domain keyword lists and the selection catalogue
type Table struct {
	Keywords       map[string][]string `yaml:"keywords" json:"keywords"`
	Industries     []Industry          `yaml:"industries" json:"industries"`
	CandidateTypes []string            `yaml:"candidate_types" json:"candidate_types"`
	RoundTypes     []string            `yaml:"round_types" json:"round_types"`
}

// Default returns the built-in keyword table
func Default() *Table {
	t, err := Parse(defaultTable)
	if err != nil {
		// the embedded document is part of the binary
		panic(fmt.Sprintf("keywords: invalid built-in table: %v", err))
	}
	return t
}

// Parse decodes a YAML keyword table
func Parse(data []byte) (*Table, error) {
	var t Table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to parse keyword table: %w", err)
	}
	if t.Keywords == nil {
		t.Keywords = map[string][]string{}
	}
	return &t, nil
}

// Load reads a keyword table from path, or returns the built-in table when path is empty
func Load(path string) (*Table, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read keyword table: %w", err)
	}

	return Parse(data)
}

// Lookup returns the keywords for a subdomain, falling back to the industry
// and finally to an empty list
func (t *Table) Lookup(industry, subdomain string) []string {
	if kws, ok := t.Keywords[subdomain]; ok {
		return kws
	}
	if kws, ok := t.Keywords[industry]; ok {
		return kws
	}
	return []string{}
}

// Subdomains returns the subdomain options of an industry
func (t *Table) Subdomains(industry string) []string {
	for _, ind := range t.Industries {
		if ind.Name == industry {
			return ind.Subdomains
		}
	}
	return []string{"General"}
}

// IndustryNames returns the industry options in display order
func (t *Table) IndustryNames() []string {
	names := make([]string, 0, len(t.Industries))
	for _, ind := range t.Industries {
		names = append(names, ind.Name)
	}
	return names
}
