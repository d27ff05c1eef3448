// Package orchestrator runs a repository comparison end to end: it fetches
// both package lists, diffs every architecture found in either of them and
// hands each report to a sink.
package orchestrator

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/ralt/repodiff/internal/differ"
	"github.com/ralt/repodiff/internal/fetcher"
	"github.com/ralt/repodiff/internal/ingest"
	"github.com/ralt/repodiff/internal/models"
	"github.com/ralt/repodiff/internal/sink"
	"github.com/ralt/repodiff/internal/utils"
	"github.com/ralt/repodiff/internal/version"
)

// ProgressFactory returns the observer used while computing one report
type ProgressFactory func(label models.Label) differ.Observer

// Orchestrator sequences fetch, ingestion, comparison and output
type Orchestrator struct {
	fetcher    fetcher.Fetcher
	sink       sink.Sink
	comparator version.Comparator
	workers    int
	allowed    []string
	manifest   bool
	progress   ProgressFactory
}

// Option customizes an Orchestrator
type Option func(*Orchestrator)

// WithComparator sets the version order used by the newer-version comparison
func WithComparator(cmp version.Comparator) Option {
	return func(o *Orchestrator) { o.comparator = cmp }
}

// WithWorkers sets how many architectures are compared in parallel
func WithWorkers(n int) Option {
	return func(o *Orchestrator) { o.workers = n }
}

// WithAllowedRepositories replaces the repository allow-list
func WithAllowedRepositories(ids ...string) Option {
	return func(o *Orchestrator) { o.allowed = ids }
}

// WithManifest makes Run hand the summary to the sink
func WithManifest(enabled bool) Option {
	return func(o *Orchestrator) { o.manifest = enabled }
}

// WithProgress replaces the default debug-log progress reporting. A nil
// factory disables progress reporting.
func WithProgress(factory ProgressFactory) Option {
	return func(o *Orchestrator) { o.progress = factory }
}

// New creates an orchestrator. Defaults: lexicographic version order, one
// worker, the known ALT branches as allow-list, progress logged at debug level.
func New(f fetcher.Fetcher, s sink.Sink, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		fetcher:    f,
		sink:       s,
		comparator: version.Lexicographic{},
		workers:    1,
		allowed:    models.KnownRepositories,
		progress:   LogProgress,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.workers < 1 {
		o.workers = 1
	}
	return o
}

// Run compares repository left against repository right. Fetch and ingestion
// failures abort the run before any report is written. Report write failures
// are collected and returned together once every architecture has been
// processed; reports already written stay in place.
func (o *Orchestrator) Run(ctx context.Context, left, right string) (*models.Summary, error) {
	if err := o.validate(left, right); err != nil {
		return nil, err
	}

	leftSnap, err := o.load(ctx, left)
	if err != nil {
		return nil, err
	}
	rightSnap, err := o.load(ctx, right)
	if err != nil {
		return nil, err
	}

	archs := models.UnionArchitectures(leftSnap, rightSnap)
	logrus.Infof("Comparing %s against %s across %d architectures: %s",
		left, right, len(archs), strings.Join(archs, ", "))

	c := &collector{}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.workers)
	for _, arch := range archs {
		g.Go(func() error {
			return o.compareArchitecture(gctx, arch, leftSnap, rightSnap, c)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	summary := &models.Summary{
		Left:          left,
		Right:         right,
		VersionOrder:  o.comparator.Name(),
		Architectures: archs,
		Reports:       append([]models.SummaryEntry{}, c.entries...),
	}
	summary.Sort()

	if o.manifest {
		if err := o.sink.WriteSummary(ctx, summary); err != nil {
			logrus.WithError(err).Error("Failed to save run manifest")
			c.fail(&models.CompareError{Type: models.ErrSinkWrite, Err: err})
		}
	}

	if len(c.errs) > 0 {
		return summary, errors.Join(c.errs...)
	}

	logrus.Infof("Comparison completed: %d reports", len(summary.Reports))
	return summary, nil
}

// validate rejects identifiers outside the allow-list before anything is fetched
func (o *Orchestrator) validate(ids ...string) error {
	return models.CheckRepositories(o.allowed, ids...)
}

// load fetches and ingests one repository
func (o *Orchestrator) load(ctx context.Context, id string) (*models.Snapshot, error) {
	raw, err := o.fetcher.Fetch(ctx, id)
	if err != nil {
		return nil, &models.CompareError{
			Type:       models.ErrFetch,
			Repository: id,
			Err:        err,
		}
	}

	snap, err := ingest.Parse(id, raw)
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// compareArchitecture runs the three comparisons for one architecture and
// emits each report as soon as it is computed.
func (o *Orchestrator) compareArchitecture(ctx context.Context, arch string, left, right *models.Snapshot, c *collector) error {
	leftView := left.ByArchitecture(arch)
	rightView := right.ByArchitecture(arch)
	logrus.Infof("Comparing %s: %s packages in %s, %s packages in %s", arch,
		humanize.Comma(int64(len(leftView))), left.Repository(),
		humanize.Comma(int64(len(rightView))), right.Repository())

	for _, alg := range models.Algorithms {
		if err := ctx.Err(); err != nil {
			return err
		}

		label := models.Label{Algorithm: alg, Architecture: arch}
		opts := o.differOptions(label)

		var report *models.Report
		switch alg {
		case models.LeftOnly:
			report = models.NewReport(differ.OnlyInLeft(leftView, rightView, opts...))
		case models.RightOnly:
			report = models.NewReport(differ.OnlyInRight(leftView, rightView, opts...))
		case models.NewerInLeft:
			report = models.NewReportFromPackages(differ.NewerInLeft(leftView, rightView, o.comparator, opts...))
		}

		o.emit(ctx, label, report, c)
	}
	return nil
}

func (o *Orchestrator) differOptions(label models.Label) []differ.Option {
	if o.progress == nil {
		return nil
	}
	return []differ.Option{differ.WithObserver(o.progress(label))}
}

// emit writes a report and records its outcome
func (o *Orchestrator) emit(ctx context.Context, label models.Label, report *models.Report, c *collector) {
	logrus.Debugf("%s: %d mismatches", label, report.MismatchCount)

	fail := func(err error) {
		logrus.WithError(err).Errorf("Failed to save %s report", label)
		c.fail(&models.CompareError{
			Type:         models.ErrSinkWrite,
			Architecture: label.Architecture,
			Algorithm:    label.Algorithm.String(),
			Err:          err,
		})
	}

	data, err := report.Encode()
	if err != nil {
		fail(err)
		return
	}
	digest, err := utils.DigestJSON(data)
	if err != nil {
		fail(err)
		return
	}

	if err := o.sink.WriteReport(ctx, label, report); err != nil {
		fail(err)
		return
	}

	c.add(models.SummaryEntry{
		Algorithm:     label.Algorithm.String(),
		Architecture:  label.Architecture,
		Path:          label.Path(),
		MismatchCount: report.MismatchCount,
		Digest:        digest,
	})
}

// collector gathers per-report outcomes from concurrent workers
type collector struct {
	mu      sync.Mutex
	entries []models.SummaryEntry
	errs    []error
}

func (c *collector) add(e models.SummaryEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = append(c.entries, e)
}

func (c *collector) fail(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errs = append(c.errs, err)
}
