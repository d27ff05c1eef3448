// Package differ implements the three package comparisons run for every
// architecture: packages only in the left repository, packages only in the
// right repository, and packages whose left version is newer.
//
// All functions take architecture-filtered name -> package maps and never
// modify them, so callers may run them concurrently on shared snapshots.
package differ

import (
	"sort"

	"github.com/ralt/repodiff/internal/models"
	"github.com/ralt/repodiff/internal/version"
)

// Observer is notified after each scanned package with the number of packages
// scanned so far and the total to scan.
type Observer func(done, total int)

type options struct {
	observer Observer
}

// Option customizes a comparison
type Option func(*options)

// WithObserver reports scan progress to fn
func WithObserver(fn Observer) Option {
	return func(o *options) { o.observer = fn }
}

func buildOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o options) notify(done, total int) {
	if o.observer != nil {
		o.observer(done, total)
	}
}

// OnlyInLeft returns the sorted names present in left and absent from right.
// Only names are compared; package contents are ignored.
func OnlyInLeft(left, right map[string]models.Package, opts ...Option) []string {
	return missingFrom(left, right, buildOptions(opts))
}

// OnlyInRight returns the sorted names present in right and absent from left
func OnlyInRight(left, right map[string]models.Package, opts ...Option) []string {
	return missingFrom(right, left, buildOptions(opts))
}

func missingFrom(scan, other map[string]models.Package, o options) []string {
	total := len(scan)
	done := 0
	diff := make([]string, 0)
	for name := range scan {
		if _, ok := other[name]; !ok {
			diff = append(diff, name)
		}
		done++
		o.notify(done, total)
	}
	sort.Strings(diff)
	return diff
}

// NewerInLeft returns the left packages whose name also exists in right and
// whose version cmp considers strictly newer than the right one. The result
// holds the left records.
func NewerInLeft(left, right map[string]models.Package, cmp version.Comparator, opts ...Option) map[string]models.Package {
	o := buildOptions(opts)
	total := len(left)
	done := 0
	diff := make(map[string]models.Package)
	for name, pkg := range left {
		if counterpart, ok := right[name]; ok && cmp.IsNewer(pkg.Version, counterpart.Version) {
			diff[name] = pkg
		}
		done++
		o.notify(done, total)
	}
	return diff
}
