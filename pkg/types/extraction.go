// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// ExtractedInfo holds the structured fields pulled from one artifact.
// All fields are optional: an empty field means the information was not
// found, not that extraction failed.
type ExtractedInfo struct {
	// Title is the paper title as detected in the artifact.
	Title string `json:"title,omitempty" yaml:"title,omitempty"`

	// Authors lists detected author names.
	Authors []string `json:"authors,omitempty" yaml:"authors,omitempty"`

	// Abstract is the paper abstract.
	Abstract string `json:"abstract,omitempty" yaml:"abstract,omitempty"`

	// Objectives states the research objectives or problem.
	Objectives string `json:"objectives,omitempty" yaml:"objectives,omitempty"`

	// Methodology describes the research methodology.
	Methodology string `json:"methodology,omitempty" yaml:"methodology,omitempty"`

	// Datasets lists datasets used in the paper.
	Datasets []string `json:"datasets,omitempty" yaml:"datasets,omitempty"`

	// Models lists models or systems evaluated.
	Models []string `json:"models,omitempty" yaml:"models,omitempty"`

	// Evaluation describes the evaluation setup and metrics.
	Evaluation string `json:"evaluation,omitempty" yaml:"evaluation,omitempty"`

	// Results summarizes the main results.
	Results string `json:"results,omitempty" yaml:"results,omitempty"`

	// Contributions summarizes the key contributions.
	Contributions string `json:"contributions,omitempty" yaml:"contributions,omitempty"`

	// Limitations summarizes stated limitations.
	Limitations string `json:"limitations,omitempty" yaml:"limitations,omitempty"`
}

// IsEmpty reports whether no field was populated.
func (e *ExtractedInfo) IsEmpty() bool {
	if e == nil {
		return true
	}
	return e.Title == "" && len(e.Authors) == 0 && e.Abstract == "" &&
		e.Objectives == "" && e.Methodology == "" && len(e.Datasets) == 0 &&
		len(e.Models) == 0 && e.Evaluation == "" && e.Results == "" &&
		e.Contributions == "" && e.Limitations == ""
}
