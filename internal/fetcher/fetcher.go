// Package fetcher retrieves raw package list documents for a repository.
package fetcher

import (
	"context"
	"errors"
)

// ErrUnexpectedStatus is returned when the export API answers with a non-200 status
var ErrUnexpectedStatus = errors.New("unexpected response status")

// Fetcher retrieves the raw export document of a repository:
// {"packages": [{"name": ..., "version": ..., "arch": ...}, ...]}
type Fetcher interface {
	// Fetch returns the raw JSON document for repositoryID
	Fetch(ctx context.Context, repositoryID string) ([]byte, error)
}
