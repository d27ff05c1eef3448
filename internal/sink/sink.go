// Package sink persists comparison reports and run summaries.
//
// Reports land under <root>/Comparison{1,2,3}/comparison{1,2,3}_<arch>.json,
// the layout consumers of the original comparison script expect. Every
// label maps to its own destination, so a Sink may be shared by goroutines
// working on different architectures.
package sink

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"
	"go.trai.ch/zerr"

	"github.com/ralt/repodiff/internal/models"
	"github.com/ralt/repodiff/internal/signer"
)

const (
	// SummaryKey is where the run manifest is stored
	SummaryKey = "manifest.json"

	// PublicKeyKey is where the signing key is published when reports are signed
	PublicKeyKey = "signing-key.asc"

	signatureSuffix = ".asc"
)

// ErrUnsafeKey is returned for keys that would resolve outside the store root
var ErrUnsafeKey = errors.New("key escapes the output root")

// Sink receives the reports of a comparison run
type Sink interface {
	// WriteReport persists one report under its label
	WriteReport(ctx context.Context, label models.Label, report *models.Report) error

	// WriteSummary persists the run manifest
	WriteSummary(ctx context.Context, summary *models.Summary) error
}

// Store stores named blobs. Keys are slash separated paths relative to the
// store root.
type Store interface {
	Put(ctx context.Context, key string, data []byte) error

	// Location describes where key ends up, for logging
	Location(key string) string
}

// BlobSink implements Sink on top of a Store
type BlobSink struct {
	store  Store
	signer signer.Signer

	keyOnce sync.Once
	keyErr  error
}

// Option customizes a BlobSink
type Option func(*BlobSink)

// WithSigner adds a detached signature next to every written document
func WithSigner(s signer.Signer) Option {
	return func(b *BlobSink) { b.signer = s }
}

// New creates a sink writing to store
func New(store Store, opts ...Option) *BlobSink {
	b := &BlobSink{store: store}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// WriteReport implements Sink
func (b *BlobSink) WriteReport(ctx context.Context, label models.Label, report *models.Report) error {
	data, err := report.Encode()
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to encode report"), "label", label.String())
	}

	key := label.Path()
	logrus.Infof("Saving comparison results to %s...", b.store.Location(key))
	if err := b.put(ctx, key, data); err != nil {
		return err
	}

	logrus.Debugf("Comparison results saved (%d packages)", report.MismatchCount)
	return nil
}

// WriteSummary implements Sink
func (b *BlobSink) WriteSummary(ctx context.Context, summary *models.Summary) error {
	data, err := summary.Encode()
	if err != nil {
		return zerr.Wrap(err, "failed to encode summary")
	}

	logrus.Infof("Writing run manifest to %s", b.store.Location(SummaryKey))
	return b.put(ctx, SummaryKey, data)
}

// put stores data under key and, with a signer, its detached signature
func (b *BlobSink) put(ctx context.Context, key string, data []byte) error {
	if !filepath.IsLocal(filepath.FromSlash(key)) {
		return zerr.With(ErrUnsafeKey, "key", key)
	}
	if err := b.store.Put(ctx, key, data); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to store document"), "location", b.store.Location(key))
	}

	if b.signer == nil {
		return nil
	}

	signature, err := b.signer.SignDetached(data)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to sign document"), "location", b.store.Location(key))
	}
	if err := b.store.Put(ctx, key+signatureSuffix, signature); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to store signature"), "location", b.store.Location(key+signatureSuffix))
	}

	return b.publishKey(ctx)
}

// publishKey stores the public half of the signing key once per sink
func (b *BlobSink) publishKey(ctx context.Context) error {
	b.keyOnce.Do(func() {
		pub, err := b.signer.GetPublicKey()
		if err != nil {
			b.keyErr = fmt.Errorf("failed to export public key: %w", err)
			return
		}
		if err := b.store.Put(ctx, PublicKeyKey, pub); err != nil {
			b.keyErr = zerr.With(zerr.Wrap(err, "failed to store public key"), "location", b.store.Location(PublicKeyKey))
			return
		}
		logrus.Infof("Published signing key to %s", b.store.Location(PublicKeyKey))
	})
	return b.keyErr
}
