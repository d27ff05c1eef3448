package models

import "sort"

// Snapshot is an immutable capture of one repository's package listing,
// keyed by package name.
type Snapshot struct {
	repository string
	packages   map[string]Package
}

// NewSnapshot creates a snapshot for a repository. The map is copied, so later
// changes by the caller are not visible through the snapshot.
func NewSnapshot(repository string, packages map[string]Package) *Snapshot {
	copied := make(map[string]Package, len(packages))
	for name, pkg := range packages {
		copied[name] = pkg
	}
	return &Snapshot{
		repository: repository,
		packages:   copied,
	}
}

// Repository returns the identifier the snapshot was fetched for
func (s *Snapshot) Repository() string {
	return s.repository
}

// Len returns the number of packages in the snapshot
func (s *Snapshot) Len() int {
	return len(s.packages)
}

// Get looks up a package by name
func (s *Snapshot) Get(name string) (Package, bool) {
	pkg, ok := s.packages[name]
	return pkg, ok
}

// ByArchitecture returns a fresh name -> package view holding only packages
// built for arch. The result is empty, not nil, when nothing matches.
func (s *Snapshot) ByArchitecture(arch string) map[string]Package {
	view := make(map[string]Package)
	for name, pkg := range s.packages {
		if pkg.Architecture == arch {
			view[name] = pkg
		}
	}
	return view
}

// Architectures returns the sorted distinct architecture values of the snapshot
func (s *Snapshot) Architectures() []string {
	seen := make(map[string]struct{})
	for _, pkg := range s.packages {
		seen[pkg.Architecture] = struct{}{}
	}
	return sortedKeys(seen)
}

// UnionArchitectures returns the sorted union of the architectures found in
// the given snapshots.
func UnionArchitectures(snapshots ...*Snapshot) []string {
	seen := make(map[string]struct{})
	for _, s := range snapshots {
		for _, pkg := range s.packages {
			seen[pkg.Architecture] = struct{}{}
		}
	}
	return sortedKeys(seen)
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
