// Package pipeline implements the lead enrichment pipeline: multi-source
// validation, weighted scoring, and outreach drafting.
package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/enrich-cli/internal/config"
	"github.com/sells-group/enrich-cli/internal/model"
	"github.com/sells-group/enrich-cli/internal/resilience"
	"github.com/sells-group/enrich-cli/pkg/anthropic"
	"github.com/sells-group/enrich-cli/pkg/builtwith"
	"github.com/sells-group/enrich-cli/pkg/clearbit"
	"github.com/sells-group/enrich-cli/pkg/hunter"
)

// Pipeline orchestrates validate → score → generate for a lead.
type Pipeline struct {
	cfg       *config.Config
	hunter    hunter.Client
	clearbit  clearbit.Client
	builtwith builtwith.Client
	anthropic anthropic.Client
	fit       IndustryFit
	breaker   *resilience.CircuitBreaker
	now       func() time.Time
}

// New creates a new Pipeline with all dependencies. The drafting client sits
// behind a circuit breaker so a hard-down provider fails fast to the
// template path.
func New(
	cfg *config.Config,
	hunterClient hunter.Client,
	clearbitClient clearbit.Client,
	builtwithClient builtwith.Client,
	aiClient anthropic.Client,
) *Pipeline {
	fit := DefaultIndustryFit()
	if cfg.Pipeline.IndustryFitPath != "" {
		loaded, err := LoadIndustryFit(cfg.Pipeline.IndustryFitPath)
		if err != nil {
			zap.L().Warn("pipeline: failed to load industry fit table, using defaults",
				zap.String("path", cfg.Pipeline.IndustryFitPath),
				zap.Error(err),
			)
		} else {
			fit = loaded
		}
	}

	return &Pipeline{
		cfg:       cfg,
		hunter:    hunterClient,
		clearbit:  clearbitClient,
		builtwith: builtwithClient,
		anthropic: aiClient,
		fit:       fit,
		breaker: resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
			OnStateChange: func(from, to resilience.CircuitState) {
				zap.L().Warn("pipeline: draft circuit state change",
					zap.Stringer("from", from),
					zap.Stringer("to", to),
				)
			},
		}),
		now: time.Now,
	}
}

// WithNow sets a fixed clock for testing.
func (p *Pipeline) WithNow(fn func() time.Time) *Pipeline {
	p.now = fn
	return p
}

// Enrich runs the full pipeline for a single lead. The only error it can
// return is a malformed lead; every external failure degrades the result
// instead.
func (p *Pipeline) Enrich(ctx context.Context, lead model.Lead) (*model.EnrichedLead, error) {
	if err := lead.Validate(); err != nil {
		return nil, err
	}

	log := zap.L().With(zap.String("company", lead.Company), zap.String("website", lead.Website))
	log.Info("pipeline: starting enrichment")
	start := p.now()

	validation := p.validate(ctx, lead)
	score := p.Score(lead, validation)
	draft := p.generate(ctx, lead, validation, score)

	enriched := &model.EnrichedLead{
		ID:         uuid.NewString(),
		Lead:       lead,
		Validation: validation,
		Score:      score,
		Draft:      draft,
		EnrichedAt: p.now(),
	}

	log.Info("pipeline: enrichment complete",
		zap.String("id", enriched.ID),
		zap.Int("confidence", validation.Confidence),
		zap.Int("score", score.Total),
		zap.String("tier", string(score.Tier)),
		zap.String("draft_provenance", string(draft.Provenance)),
		zap.Duration("duration", p.now().Sub(start)),
	)

	return enriched, nil
}

// EnrichBatch enriches many leads with bounded concurrency. The result has
// one item per input lead in input order regardless of completion order; a
// malformed lead yields an error item without affecting its neighbors.
func (p *Pipeline) EnrichBatch(ctx context.Context, leads []model.Lead) []model.BatchItem {
	items := make([]model.BatchItem, len(leads))

	concurrency := p.cfg.Batch.MaxConcurrentLeads
	if concurrency <= 0 {
		concurrency = 8
	}

	zap.L().Info("pipeline: processing batch",
		zap.Int("leads", len(leads)),
		zap.Int("concurrency", concurrency),
	)

	// Plain errgroup: one lead's outcome must never cancel another's run.
	var g errgroup.Group
	g.SetLimit(concurrency)

	for i, lead := range leads {
		g.Go(func() error {
			enriched, err := p.Enrich(ctx, lead)
			if err != nil {
				zap.L().Warn("pipeline: lead rejected",
					zap.String("company", lead.Company),
					zap.Error(err),
				)
				items[i] = model.BatchItem{Lead: lead, Error: err.Error()}
				return nil
			}
			items[i] = model.BatchItem{Lead: lead, Enriched: enriched}
			return nil
		})
	}

	_ = g.Wait()
	return items
}
