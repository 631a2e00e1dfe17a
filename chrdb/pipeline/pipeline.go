// Package pipeline drives a full database build: fetch, parse, annotate, store
// and package, strictly in that order. The first failing stage stops the build.
package pipeline

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	internal "github.com/ZanzyTHEbar/chrdb/chrdb"
	"github.com/ZanzyTHEbar/chrdb/chrdb/common"
	"github.com/ZanzyTHEbar/chrdb/chrdb/config"
	"github.com/ZanzyTHEbar/chrdb/chrdb/db"
	"github.com/ZanzyTHEbar/chrdb/chrdb/fetch"
	"github.com/ZanzyTHEbar/chrdb/chrdb/pack"
	"github.com/ZanzyTHEbar/chrdb/chrdb/ucd"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc/panics"
)

// StoreOpener opens the character store at path.
type StoreOpener func(path string, logger zerolog.Logger) (db.CharacterStore, error)

func openLibSQL(path string, logger zerolog.Logger) (db.CharacterStore, error) {
	store, err := db.Open(path, db.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	return store, nil
}

// Report summarizes a finished build.
type Report struct {
	BuildID     string
	Downloaded  int
	Records     int
	Blocks      ucd.AnnotationStats
	Ages        ucd.AnnotationStats
	Entities    ucd.EntityStats
	Inserted    int
	StorePath   string
	ArchivePath string
	Metrics     *common.StageMetrics
}

// Builder runs the build stages against one configuration.
type Builder struct {
	cfg       *config.Config
	logger    zerolog.Logger
	client    *http.Client
	openStore StoreOpener
}

// Option configures a Builder.
type Option func(*Builder)

// WithHTTPClient sets the client used to download sources.
func WithHTTPClient(client *http.Client) Option {
	return func(b *Builder) {
		b.client = client
	}
}

// WithStoreOpener replaces the libsql store.
func WithStoreOpener(open StoreOpener) Option {
	return func(b *Builder) {
		b.openStore = open
	}
}

// New returns a Builder for cfg.
func New(cfg *config.Config, logger zerolog.Logger, opts ...Option) *Builder {
	b := &Builder{
		cfg:       cfg,
		logger:    logger,
		openStore: openLibSQL,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Run builds the store and archive described by cfg.
func Run(ctx context.Context, cfg *config.Config, logger zerolog.Logger) error {
	_, err := New(cfg, logger).Run(ctx)
	return err
}

// Sources returns the configured remote sources.
func (b *Builder) Sources() []fetch.Source {
	return fetch.DefaultSources(b.cfg.Sources.UCDBaseURL, b.cfg.Sources.EntitiesBaseURL)
}

// Fetch only ensures that every source is cached.
func (b *Builder) Fetch(ctx context.Context) (int, error) {
	var n int
	err := b.stage(b.logger, &common.StageMetrics{}, common.StageFetch, func(log zerolog.Logger) error {
		var err error
		n, err = fetch.NewFetcher(b.client, log).Ensure(ctx, b.cfg.Build.CacheDir, b.Sources())
		return err
	})
	return n, err
}

// Run executes every stage in order and returns the build report.
func (b *Builder) Run(ctx context.Context) (*Report, error) {
	report := &Report{
		BuildID:     uuid.New().String(),
		StorePath:   b.cfg.StorePath(),
		ArchivePath: b.cfg.ArchivePath(),
		Metrics:     &common.StageMetrics{},
	}
	logger := b.logger.With().Str("build_id", report.BuildID).Logger()
	logger.Info().
		Str("cache_dir", b.cfg.Build.CacheDir).
		Str("output_dir", b.cfg.Build.OutputDir).
		Msg("starting build")
	start := time.Now()

	cache := func(name string) string { return fetch.Path(b.cfg.Build.CacheDir, name) }
	var records *ucd.RecordMap

	stages := []struct {
		name string
		run  func(log zerolog.Logger) error
	}{
		{common.StageFetch, func(log zerolog.Logger) (err error) {
			report.Downloaded, err = fetch.NewFetcher(b.client, log).Ensure(ctx, b.cfg.Build.CacheDir, b.Sources())
			return err
		}},
		{common.StageParse, func(log zerolog.Logger) (err error) {
			records, err = ucd.ParseUnicodeDataFile(cache(internal.UnicodeDataFileName))
			if err == nil {
				report.Records = records.Len()
				log.Info().Int("records", report.Records).Msg("base records parsed")
			}
			return err
		}},
		{common.StageBlocks, func(log zerolog.Logger) (err error) {
			report.Blocks, err = ucd.AnnotateBlocksFile(cache(internal.BlocksFileName), records)
			logAnnotation(log, report.Blocks, err)
			return err
		}},
		{common.StageAges, func(log zerolog.Logger) (err error) {
			report.Ages, err = ucd.AnnotateAgesFile(cache(internal.DerivedAgeFileName), records)
			logAnnotation(log, report.Ages, err)
			return err
		}},
		{common.StageEntities, func(log zerolog.Logger) (err error) {
			report.Entities, err = ucd.AnnotateEntitiesFile(cache(internal.HTMLEntitiesFileName), records)
			if err == nil {
				log.Info().
					Int("entities", report.Entities.Entities).
					Int("single", report.Entities.SingleCodes).
					Int("matched", report.Entities.Matched).
					Int("dropped", report.Entities.MultiCodeDrop).
					Msg("entities applied")
			}
			return err
		}},
		{common.StageStore, func(log zerolog.Logger) (err error) {
			report.Inserted, err = b.writeStore(ctx, log, records)
			return err
		}},
		{common.StagePackage, func(log zerolog.Logger) error {
			if err := pack.Package(report.StorePath, report.ArchivePath); err != nil {
				return err
			}
			log.Info().Str("archive", report.ArchivePath).Msg("store packaged")
			return nil
		}},
	}

	for _, s := range stages {
		if err := ctx.Err(); err != nil {
			return report, &common.StageError{Stage: s.name, Err: err}
		}
		if err := b.stage(logger, report.Metrics, s.name, s.run); err != nil {
			return report, err
		}
	}

	logger.Info().
		Int("records", report.Records).
		Int("inserted", report.Inserted).
		Dur("elapsed", time.Since(start)).
		Fields(report.Metrics.GetMetrics()).
		Msg("build complete")
	return report, nil
}

// stage runs fn with a stage-scoped logger and records its outcome in metrics.
// A panic inside fn is recovered and returned as the stage's error.
func (b *Builder) stage(logger zerolog.Logger, metrics *common.StageMetrics, name string, fn func(log zerolog.Logger) error) error {
	log := logger.With().Str("stage", name).Logger()
	log.Debug().Msg("stage started")
	start := time.Now()

	var err error
	if recovered := panics.Try(func() { err = fn(log) }); recovered != nil {
		err = fmt.Errorf("panic: %w", recovered.AsError())
	}
	metrics.UpdateMetrics(name, start, err == nil)
	if err != nil {
		err = common.WithStage(name, "", err)
		log.Error().Err(err).Msg("stage failed")
		return err
	}

	log.Debug().Dur("elapsed", time.Since(start)).Msg("stage finished")
	return nil
}

func (b *Builder) writeStore(ctx context.Context, log zerolog.Logger, records *ucd.RecordMap) (int, error) {
	if err := os.MkdirAll(b.cfg.Build.OutputDir, 0o755); err != nil {
		return 0, fmt.Errorf("%w: could not create output directory: %v", common.ErrStore, err)
	}

	store, err := b.openStore(b.cfg.StorePath(), log)
	if err != nil {
		return 0, err
	}

	n, err := store.WriteRecords(ctx, records)
	if cerr := store.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("%w: failed to close store: %v", common.ErrStore, cerr)
	}
	if err != nil {
		return 0, err
	}

	if n > 0 {
		log.Info().Int("rows", n).Str("path", b.cfg.StorePath()).Msg("records stored")
	}
	return n, nil
}

func logAnnotation(log zerolog.Logger, stats ucd.AnnotationStats, err error) {
	if err != nil {
		return
	}
	log.Info().
		Int("rows", stats.Rows).
		Int("skipped", stats.Skipped).
		Int("matched", stats.Matched).
		Msg("ranges applied")
}
