// Package sarif renders check results as a SARIF 2.1.0 log.
package sarif

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/praetorian-inc/checkparens/pkg/types"
)

// SARIF 2.1.0 constants.
const (
	SchemaURI = "https://raw.githubusercontent.com/oasis-tcs/sarif-spec/master/Schemata/sarif-schema-2.1.0.json"
	Version   = "2.1.0"
	ToolName  = "checkparens"
)

// RuleBadStructure is the only rule reported.
const RuleBadStructure = "bad-structure"

// Report is the top-level SARIF report structure.
type Report struct {
	Schema  string `json:"$schema"`
	Version string `json:"version"`
	Runs    []Run  `json:"runs"`
}

// Run represents a single invocation of the tool.
type Run struct {
	Tool    Tool     `json:"tool"`
	Results []Result `json:"results"`
}

// Tool describes the analysis tool.
type Tool struct {
	Driver Driver `json:"driver"`
}

// Driver contains tool metadata.
type Driver struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Rules   []Rule `json:"rules,omitempty"`
}

// Rule describes a reportable condition.
type Rule struct {
	ID               string           `json:"id"`
	Name             string           `json:"name"`
	ShortDescription ShortDescription `json:"shortDescription"`
}

// ShortDescription contains rule description text.
type ShortDescription struct {
	Text string `json:"text"`
}

// Result represents a single rejected file.
type Result struct {
	RuleID    string     `json:"ruleId"`
	Level     string     `json:"level"`
	Message   Message    `json:"message"`
	Locations []Location `json:"locations"`
}

// Message contains the result message.
type Message struct {
	Text string `json:"text"`
}

// Location describes where a result was found.
type Location struct {
	PhysicalLocation PhysicalLocation `json:"physicalLocation"`
}

// PhysicalLocation specifies the file. No region is given: a verdict
// applies to the whole file.
type PhysicalLocation struct {
	ArtifactLocation ArtifactLocation `json:"artifactLocation"`
}

// ArtifactLocation identifies the file.
type ArtifactLocation struct {
	URI string `json:"uri"`
}

// NewReport creates a report for the given tool version with the
// bad-structure rule registered.
func NewReport(toolVersion string) *Report {
	return &Report{
		Schema:  SchemaURI,
		Version: Version,
		Runs: []Run{
			{
				Tool: Tool{
					Driver: Driver{
						Name:    ToolName,
						Version: toolVersion,
						Rules: []Rule{
							{
								ID:   RuleBadStructure,
								Name: "BadStructure",
								ShortDescription: ShortDescription{
									Text: "Brackets are mismatched, unterminated or closed without an opener",
								},
							},
						},
					},
				},
				Results: []Result{},
			},
		},
	}
}

// AddResults adds every Invalid result; Valid ones are skipped. An archive
// member is located at its archive, with the member named in the message.
func (r *Report) AddResults(results []*types.Result) {
	for _, res := range results {
		if res.Verdict.OK() {
			continue
		}

		uri := formatFileURI(res.Path)
		text := "bad structure"
		if member := res.Member(); member != "" {
			uri = formatFileURI(res.Container)
			text = fmt.Sprintf("bad structure in archive member %s", member)
		}

		r.Runs[0].Results = append(r.Runs[0].Results, Result{
			RuleID: RuleBadStructure,
			Level:  "error",
			Message: Message{
				Text: text,
			},
			Locations: []Location{
				{
					PhysicalLocation: PhysicalLocation{
						ArtifactLocation: ArtifactLocation{
							URI: uri,
						},
					},
				},
			},
		})
	}
}

// ToJSON serializes the report to JSON bytes.
func (r *Report) ToJSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// formatFileURI converts a file path to SARIF URI format
// Absolute paths get file:// prefix, relative paths stay as-is.
func formatFileURI(path string) string {
	if filepath.IsAbs(path) {
		path = filepath.ToSlash(path)
		if !strings.HasPrefix(path, "/") {
			path = "/" + path
		}
		return "file://" + path
	}
	return filepath.ToSlash(path)
}
