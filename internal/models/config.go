package models

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"go.trai.ch/zerr"
)

// KnownRepositories are the branches the export API serves binary package
// lists for.
var KnownRepositories = []string{"sisyphus", "p10", "p9"}

// IsKnownRepository reports whether id is in the allow-list
func IsKnownRepository(id string) bool {
	return slices.Contains(KnownRepositories, id)
}

// CheckRepositories returns an InvalidRepository error for the first id
// missing from allowed.
func CheckRepositories(allowed []string, ids ...string) error {
	for _, id := range ids {
		if slices.Contains(allowed, id) {
			continue
		}
		msg := fmt.Sprintf("%q: only the %s repositories can be used with this API request", id, quoteList(allowed))
		return &CompareError{
			Type:       ErrInvalidRepository,
			Repository: id,
			Err:        zerr.With(zerr.Wrap(ErrUnknownRepository, msg), "allowed", allowed),
		}
	}
	return nil
}

// quoteList renders ids as 'a', 'b' and 'c'
func quoteList(ids []string) string {
	quoted := make([]string, len(ids))
	for i, id := range ids {
		quoted[i] = "'" + id + "'"
	}
	switch len(quoted) {
	case 0:
		return "no"
	case 1:
		return quoted[0]
	default:
		return strings.Join(quoted[:len(quoted)-1], ", ") + " and " + quoted[len(quoted)-1]
	}
}

// CompareConfig contains configuration for a comparison run
type CompareConfig struct {
	// Repositories
	Left  string
	Right string

	// Input/Output
	OutputDir     string
	APIURL        string
	Timeout       time.Duration
	DumpDir       string // Raw export documents are saved here when set
	CompressDumps bool   // Save dumps gzip-compressed
	Offline       bool   // Read dumps from DumpDir instead of calling the API

	// Comparison
	VersionOrder string // lexicographic or rpm
	Workers      int    // Architectures diffed in parallel

	// Output extras
	Manifest      bool
	GPGKeyPath    string
	GPGPassphrase string

	// S3 sink, used instead of OutputDir when S3Bucket is set
	S3Bucket   string
	S3Prefix   string
	S3Region   string
	AWSProfile string
}
