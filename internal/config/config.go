// Package config loads the optional YAML settings file and merges it under
// the command line flags.
package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"

	"github.com/ralt/repodiff/internal/models"
)

// ErrInvalidFile is returned when the settings file cannot be decoded
var ErrInvalidFile = errors.New("invalid config file")

// File mirrors the settings file. Pointer fields distinguish an absent key
// from a zero value.
type File struct {
	APIURL        *string `yaml:"api_url"`
	OutputDir     *string `yaml:"output_dir"`
	DumpDir       *string `yaml:"dump_dir"`
	CompressDumps *bool   `yaml:"compress_dumps"`
	VersionOrder  *string `yaml:"version_order"`
	Workers       *int    `yaml:"workers"`
	Timeout       *string `yaml:"timeout"`
	Manifest      *bool   `yaml:"manifest"`
	GPGKey        *string `yaml:"gpg_key"`
	S3            S3File  `yaml:"s3"`
}

// S3File holds the s3 section of the settings file
type S3File struct {
	Bucket  *string `yaml:"bucket"`
	Prefix  *string `yaml:"prefix"`
	Region  *string `yaml:"region"`
	Profile *string `yaml:"profile"`
}

// Load reads the settings file at path. Unknown keys are rejected so typos
// do not go unnoticed. An empty file yields an empty File.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "read config file"), "path", path)
	}
	if strings.TrimSpace(string(data)) == "" {
		return &File{}, nil
	}

	var f File
	dec := yaml.NewDecoder(strings.NewReader(string(data)))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, zerr.With(zerr.Wrap(ErrInvalidFile, err.Error()), "path", path)
	}
	if f.Timeout != nil {
		if _, err := time.ParseDuration(*f.Timeout); err != nil {
			return nil, zerr.With(zerr.Wrap(ErrInvalidFile, "timeout: "+err.Error()), "path", path)
		}
	}
	return &f, nil
}

// Apply copies the file settings into cfg for every setting whose flag was
// not given explicitly on the command line.
func (f *File) Apply(cfg *models.CompareConfig, flags *pflag.FlagSet) {
	unset := func(name string) bool {
		fl := flags.Lookup(name)
		return fl == nil || !fl.Changed
	}

	setString(&cfg.APIURL, f.APIURL, unset("api-url"))
	setString(&cfg.OutputDir, f.OutputDir, unset("output-dir"))
	setString(&cfg.DumpDir, f.DumpDir, unset("dump-dir"))
	setString(&cfg.VersionOrder, f.VersionOrder, unset("version-order"))
	setString(&cfg.GPGKeyPath, f.GPGKey, unset("gpg-key"))
	setString(&cfg.S3Bucket, f.S3.Bucket, unset("s3-bucket"))
	setString(&cfg.S3Prefix, f.S3.Prefix, unset("s3-prefix"))
	setString(&cfg.S3Region, f.S3.Region, unset("s3-region"))
	setString(&cfg.AWSProfile, f.S3.Profile, unset("aws-profile"))

	if f.CompressDumps != nil && unset("compress-dumps") {
		cfg.CompressDumps = *f.CompressDumps
	}
	if f.Manifest != nil && unset("manifest") {
		cfg.Manifest = *f.Manifest
	}
	if f.Workers != nil && unset("workers") {
		cfg.Workers = *f.Workers
	}
	if f.Timeout != nil && unset("timeout") {
		// Load already checked the value
		cfg.Timeout, _ = time.ParseDuration(*f.Timeout)
	}
}

func setString(dst *string, src *string, apply bool) {
	if src != nil && apply {
		*dst = *src
	}
}
