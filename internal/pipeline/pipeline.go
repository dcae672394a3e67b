// Package pipeline wires the unification stages: aggregate, date
// normalization, participant-count normalization, filter/dedup, export.
package pipeline

import (
	"fmt"

	"github.com/google/uuid"

	"protestunify/internal/aggregate"
	"protestunify/internal/cache"
	"protestunify/internal/config"
	"protestunify/internal/export"
	"protestunify/internal/filter"
	"protestunify/internal/logger"
	"protestunify/internal/models"
	"protestunify/internal/normalize"
)

// Stage names used in cache keys. Renaming one invalidates its entries.
const (
	stageDates        = "dates/v1"
	stageParticipants = "participants/v1"
)

// Pipeline owns the normalization stages and their result cache.
type Pipeline struct {
	cfg          *config.Config
	cache        *cache.Cache
	log          *logger.Logger
	dates        *normalize.DateNormalizer
	participants *normalize.ParticipantNormalizer
}

// New creates a pipeline. The cache store is injected so tests can run
// against memory and production runs against the persistent store.
func New(cfg *config.Config, store cache.Store, log *logger.Logger) *Pipeline {
	return &Pipeline{
		cfg:          cfg,
		cache:        cache.New(store),
		log:          log,
		dates:        normalize.NewDateNormalizer(cfg.Pipeline.Workers),
		participants: normalize.NewParticipantNormalizer(),
	}
}

// Run executes the full flow over the adapters' output and writes the
// canonical table to the configured output path. Recoverable conditions end
// up in the summary; structural failures return an error.
func (p *Pipeline) Run(adapters []aggregate.Adapter) ([]models.NormalizedEventRecord, *models.RunSummary, error) {
	summary := &models.RunSummary{RunID: uuid.NewString()}
	log := p.log.With("run", summary.RunID)

	overrides, err := normalize.LoadOverrides(p.cfg.Overrides.Dates, p.cfg.Overrides.Participants)
	if err != nil {
		return nil, nil, err
	}

	raw, err := aggregate.Collect(adapters)
	if err != nil {
		return nil, nil, err
	}

	summary.RowsIn = len(raw)
	log.Info("aggregated adapter output", "adapters", len(adapters), "rows", len(raw))

	dated, err := p.normalizeDates(raw, overrides, summary)
	if err != nil {
		return nil, nil, err
	}

	counted, err := p.normalizeParticipants(dated, overrides, summary)
	if err != nil {
		return nil, nil, err
	}

	earliest, latest := p.cfg.Window()
	filtered := filter.Apply(counted.Rows, filter.Config{
		CityFloors: p.cfg.CityFloors(),
		Earliest:   earliest,
		Latest:     latest,
	})

	summary.DroppedBelowFloor = filtered.DroppedBelowFloor
	summary.DroppedOutsideRange = filtered.DroppedOutsideRange
	summary.ExactDuplicates = filtered.ExactDuplicates
	summary.NearDuplicates = filtered.NearDuplicates
	summary.RowsOut = len(filtered.Rows)

	if err := export.WriteCSV(p.cfg.Pipeline.OutputPath, filtered.Rows); err != nil {
		return nil, nil, err
	}

	log.Info("wrote canonical table",
		"path", p.cfg.Pipeline.OutputPath,
		"rows", summary.RowsOut,
		"exactDuplicates", summary.ExactDuplicates,
		"nearDuplicates", summary.NearDuplicates)

	return filtered.Rows, summary, nil
}

// stageInput binds a stage's table to the override content, so editing an
// override file invalidates the cached result it would change.
type stageInput struct {
	Rows      any `json:"rows"`
	Overrides any `json:"overrides"`
}

func (p *Pipeline) normalizeDates(raw []models.RawEventRecord, ov *normalize.Overrides, summary *models.RunSummary) (normalize.DateOutcome, error) {
	var outcome normalize.DateOutcome

	key, err := cache.Key(stageDates, stageInput{Rows: raw, Overrides: ov.Dates})
	if err != nil {
		return outcome, err
	}

	hit, err := p.cache.Get(key, &outcome)
	if err != nil {
		return outcome, err
	}

	if !hit {
		outcome = p.dates.Normalize(raw, ov)
		if err := p.cache.Put(key, outcome); err != nil {
			return outcome, err
		}
	}

	summary.DateCacheHit = hit
	summary.DroppedCancelled = outcome.DroppedCancelled
	summary.DroppedUnresolved = outcome.DroppedUnresolved
	summary.UnresolvedDates = outcome.Unresolved

	p.log.Debug("date stage complete",
		"cacheHit", hit,
		"rows", len(outcome.Rows),
		"cancelled", outcome.DroppedCancelled,
		"unresolved", outcome.DroppedUnresolved)

	return outcome, nil
}

func (p *Pipeline) normalizeParticipants(dated normalize.DateOutcome, ov *normalize.Overrides, summary *models.RunSummary) (normalize.ParticipantOutcome, error) {
	var outcome normalize.ParticipantOutcome

	key, err := cache.Key(stageParticipants, stageInput{Rows: dated.Rows, Overrides: ov.Counts})
	if err != nil {
		return outcome, err
	}

	hit, err := p.cache.Get(key, &outcome)
	if err != nil {
		return outcome, err
	}

	if !hit {
		outcome = p.participants.Apply(dated.Rows, ov)
		if err := p.cache.Put(key, outcome); err != nil {
			return outcome, err
		}
	}

	summary.ParticipantCacheHit = hit
	summary.UnresolvedCounts = outcome.Unresolved

	p.log.Debug("participant stage complete",
		"cacheHit", hit,
		"rows", len(outcome.Rows),
		"unresolved", len(outcome.Unresolved))

	return outcome, nil
}

// OpenStore builds the configured cache store.
func OpenStore(cfg *config.Config) (cache.Store, error) {
	switch cfg.Cache.Store {
	case "sqlite":
		store, err := cache.OpenSQLite(cfg.Cache.Path)
		if err != nil {
			return nil, fmt.Errorf("cache store: %w", err)
		}

		return store, nil
	default:
		return cache.NewMemory(), nil
	}
}
