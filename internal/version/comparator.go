// Package version decides whether one package version is newer than another.
package version

import (
	"fmt"

	rpmutils "github.com/sassoftware/go-rpmutils"
)

// Order names accepted by ForName
const (
	OrderLexicographic = "lexicographic"
	OrderRPM           = "rpm"
)

// Comparator orders version strings
type Comparator interface {
	// IsNewer reports whether a is strictly greater than b
	IsNewer(a, b string) bool

	// Name returns the order name used in configuration and run summaries
	Name() string
}

// Lexicographic compares versions as plain strings, so "10" sorts before "9".
// This is the ordering existing comparison reports were produced with.
type Lexicographic struct{}

// IsNewer implements Comparator
func (Lexicographic) IsNewer(a, b string) bool {
	return a > b
}

// Name implements Comparator
func (Lexicographic) Name() string {
	return OrderLexicographic
}

// RPM compares versions with rpm's segment-wise algorithm (rpmvercmp)
type RPM struct{}

// IsNewer implements Comparator
func (RPM) IsNewer(a, b string) bool {
	return rpmutils.Vercmp(a, b) > 0
}

// Name implements Comparator
func (RPM) Name() string {
	return OrderRPM
}

// ForName returns the comparator for an order name. An empty name selects the
// lexicographic order.
func ForName(name string) (Comparator, error) {
	switch name {
	case "", OrderLexicographic:
		return Lexicographic{}, nil
	case OrderRPM:
		return RPM{}, nil
	default:
		return nil, fmt.Errorf("unknown version order %q (want %s or %s)", name, OrderLexicographic, OrderRPM)
	}
}
