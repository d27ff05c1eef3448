// Package ingest turns raw export documents into repository snapshots.
package ingest

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
	"go.trai.ch/zerr"

	"github.com/ralt/repodiff/internal/models"
)

var (
	// ErrInvalidJSON is returned when the document is not valid JSON
	ErrInvalidJSON = errors.New("document is not valid JSON")

	// ErrInvalidDocument is returned when the document envelope does not match
	// {"packages": [ {...}, ... ]}
	ErrInvalidDocument = errors.New("document does not match the package list schema")

	// ErrMissingField is returned when a package entry lacks a required field
	ErrMissingField = errors.New("missing field")

	// ErrFieldType is returned when a required field is not a string
	ErrFieldType = errors.New("field is not a string")

	// ErrEmptyName is returned for package entries with an empty name
	ErrEmptyName = errors.New("empty package name")

	// ErrInvalidArch is returned for architectures that cannot be used as a
	// report file name component
	ErrInvalidArch = errors.New("invalid architecture")
)

// requiredFields must be present as strings on every package entry
var requiredFields = []string{"name", "version", "arch"}

// Parse validates an export document and builds the snapshot of repository.
// Any malformed entry aborts ingestion. When a name repeats, the later entry
// replaces the earlier one.
func Parse(repository string, raw []byte) (*models.Snapshot, error) {
	logrus.Infof("Loading packages from %s...", repository)

	if !gjson.ValidBytes(raw) {
		return nil, malformed(repository, ErrInvalidJSON)
	}
	if err := validateDocument(raw); err != nil {
		return nil, malformed(repository, err)
	}

	entries := gjson.GetBytes(raw, "packages").Array()
	packages := make(map[string]models.Package, len(entries))
	overwritten := 0

	for i, entry := range entries {
		pkg, err := parseEntry(i, entry)
		if err != nil {
			return nil, malformed(repository, err)
		}
		if _, dup := packages[pkg.Name]; dup {
			overwritten++
			logrus.Debugf("Duplicate entry for %s in %s, keeping the later one (%s %s)",
				pkg.Name, repository, pkg.Version, pkg.Architecture)
		}
		packages[pkg.Name] = pkg
	}

	if overwritten > 0 {
		logrus.Warnf("%d duplicate package names in %s were overwritten by later entries", overwritten, repository)
	}

	logrus.Infof("Packages loaded: %d unique names from %s", len(packages), repository)
	return models.NewSnapshot(repository, packages), nil
}

func parseEntry(index int, entry gjson.Result) (models.Package, error) {
	values := make(map[string]string, len(requiredFields))
	for _, field := range requiredFields {
		v := entry.Get(field)
		if !v.Exists() {
			return models.Package{}, entryError(ErrMissingField, index, field)
		}
		if v.Type != gjson.String {
			return models.Package{}, entryError(ErrFieldType, index, field)
		}
		values[field] = v.Str
	}

	if values["name"] == "" {
		return models.Package{}, entryError(ErrEmptyName, index, "name")
	}
	if strings.ContainsAny(values["arch"], `/\`) || strings.Contains(values["arch"], "..") {
		return models.Package{}, entryError(ErrInvalidArch, index, "arch")
	}

	return models.Package{
		Name:         values["name"],
		Version:      values["version"],
		Architecture: values["arch"],
		Epoch:        entry.Get("epoch").Int(),
		Release:      entry.Get("release").String(),
		Disttag:      entry.Get("disttag").String(),
		Source:       entry.Get("source").String(),
		BuildTime:    entry.Get("buildtime").Int(),
	}, nil
}

func entryError(sentinel error, index int, field string) error {
	err := zerr.Wrap(sentinel, fmt.Sprintf("package entry %d: field %q", index, field))
	err = zerr.With(err, "index", index)
	return zerr.With(err, "field", field)
}

func malformed(repository string, err error) error {
	return &models.CompareError{
		Type:       models.ErrMalformedRecord,
		Repository: repository,
		Err:        err,
	}
}
