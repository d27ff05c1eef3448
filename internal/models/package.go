package models

// Package represents a binary package entry of a repository snapshot
type Package struct {
	// Core metadata
	Name         string
	Version      string
	Architecture string

	// Informational fields, carried when the export document provides them.
	// The comparison engine never looks at these.
	Epoch     int64
	Release   string
	Disttag   string
	Source    string
	BuildTime int64
}
