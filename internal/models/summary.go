package models

import (
	"encoding/json"
	"sort"
)

// SummaryEntry describes one written report
type SummaryEntry struct {
	Algorithm     string `json:"algorithm"`
	Architecture  string `json:"architecture"`
	Path          string `json:"path"`
	MismatchCount int    `json:"mismatch_count"`
	Digest        string `json:"digest"`
}

// Summary is the manifest of a comparison run
type Summary struct {
	Left          string         `json:"left"`
	Right         string         `json:"right"`
	VersionOrder  string         `json:"version_order"`
	Architectures []string       `json:"architectures"`
	Reports       []SummaryEntry `json:"reports"`
}

// Sort orders the entries by architecture, then by algorithm folder
func (s *Summary) Sort() {
	sort.Slice(s.Reports, func(i, j int) bool {
		a, b := s.Reports[i], s.Reports[j]
		if a.Architecture != b.Architecture {
			return a.Architecture < b.Architecture
		}
		return a.Path < b.Path
	})
}

// Encode returns the JSON document written for the summary
func (s *Summary) Encode() ([]byte, error) {
	return json.MarshalIndent(s, "", "    ")
}
