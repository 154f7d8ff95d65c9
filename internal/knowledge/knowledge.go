// Package knowledge serves remediation guides for posture finding types.
//
// The table is embedded at build time and never changes at runtime. A
// finding type without a guide is a normal answer, not an error.
package knowledge

import (
	_ "embed"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

//go:embed remediation.yaml
var remediationYAML []byte

// Guide is a remediation guide.
type Guide struct {
	// Key identifies the guide, e.g. remove_shared_links.
	Key string

	// Title is a display name derived from Key.
	Title string

	Summary string
	Body    string
}

type tableFile struct {
	Guides map[string]struct {
		Summary string `yaml:"summary"`
		Body    string `yaml:"body"`
	} `yaml:"guides"`
	FindingTypes map[string]string `yaml:"finding_types"`
}

// Table maps finding type ids to guides.
type Table struct {
	byFindingType map[string]Guide
}

var defaultTable = mustParse(remediationYAML)

// Parse builds a Table from YAML. Every finding type must reference a
// defined guide.
func Parse(data []byte) (*Table, error) {
	var f tableFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse remediation table: %w", err)
	}

	title := cases.Title(language.English)
	guides := make(map[string]Guide, len(f.Guides))
	for key, g := range f.Guides {
		guides[key] = Guide{
			Key:     key,
			Title:   title.String(strings.ReplaceAll(key, "_", " ")),
			Summary: strings.TrimSpace(g.Summary),
			Body:    strings.TrimSpace(g.Body),
		}
	}

	t := &Table{byFindingType: make(map[string]Guide, len(f.FindingTypes))}
	for findingType, key := range f.FindingTypes {
		g, ok := guides[key]
		if !ok {
			return nil, fmt.Errorf("finding type %s references unknown guide %q", findingType, key)
		}
		t.byFindingType[findingType] = g
	}
	return t, nil
}

func mustParse(data []byte) *Table {
	t, err := Parse(data)
	if err != nil {
		panic(err)
	}
	return t
}

// Lookup returns the guide for a finding type id. Ids match exactly.
func (t *Table) Lookup(findingTypeID string) (Guide, bool) {
	g, ok := t.byFindingType[findingTypeID]
	return g, ok
}

// Len returns the number of mapped finding types.
func (t *Table) Len() int {
	return len(t.byFindingType)
}

// Lookup returns the guide for a finding type id from the embedded table.
func Lookup(findingTypeID string) (Guide, bool) {
	return defaultTable.Lookup(findingTypeID)
}

// Default returns the embedded table.
func Default() *Table {
	return defaultTable
}
