package models

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Algorithm identifies one of the comparison algorithms
type Algorithm int

const (
	LeftOnly Algorithm = iota
	RightOnly
	NewerInLeft
)

// Algorithms lists every algorithm in the order a run emits them
var Algorithms = []Algorithm{LeftOnly, RightOnly, NewerInLeft}

// String returns the string representation of Algorithm
func (a Algorithm) String() string {
	switch a {
	case LeftOnly:
		return "left-only"
	case RightOnly:
		return "right-only"
	case NewerInLeft:
		return "newer-version"
	default:
		return "unknown"
	}
}

// index is the 1-based number used in destination names
func (a Algorithm) index() int {
	return int(a) + 1
}

// Folder returns the category folder reports of this algorithm are stored in
func (a Algorithm) Folder() string {
	return fmt.Sprintf("Comparison%d", a.index())
}

// FileName returns the report file name for an architecture
func (a Algorithm) FileName(arch string) string {
	return fmt.Sprintf("comparison%d_%s.json", a.index(), arch)
}

// Label identifies the destination of one report
type Label struct {
	Algorithm    Algorithm
	Architecture string
}

// Path returns the slash separated destination of the report, relative to
// the output root.
func (l Label) Path() string {
	return l.Algorithm.Folder() + "/" + l.Algorithm.FileName(l.Architecture)
}

// String returns a human readable form of the label
func (l Label) String() string {
	return fmt.Sprintf("%s/%s", l.Algorithm, l.Architecture)
}

// Report is the result of one comparison algorithm for one architecture
type Report struct {
	MismatchCount      int      `json:"mismatch_count"`
	MismatchedPackages []string `json:"mismatched_packages"`
}

// NewReport builds a report from a list of package names. Duplicates are
// dropped and the names are sorted so encoding is deterministic.
func NewReport(names []string) *Report {
	seen := make(map[string]struct{}, len(names))
	unique := make([]string, 0, len(names))
	for _, name := range names {
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		unique = append(unique, name)
	}
	sort.Strings(unique)

	return &Report{
		MismatchCount:      len(unique),
		MismatchedPackages: unique,
	}
}

// NewReportFromPackages builds a report from the names of a package mapping
func NewReportFromPackages(packages map[string]Package) *Report {
	names := make([]string, 0, len(packages))
	for name := range packages {
		names = append(names, name)
	}
	return NewReport(names)
}

// Encode returns the JSON document written for the report
func (r *Report) Encode() ([]byte, error) {
	return json.MarshalIndent(r, "", "    ")
}
