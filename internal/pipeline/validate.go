package pipeline

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/enrich-cli/internal/model"
	"github.com/sells-group/enrich-cli/internal/resilience"
	"github.com/sells-group/enrich-cli/pkg/builtwith"
	"github.com/sells-group/enrich-cli/pkg/clearbit"
	"github.com/sells-group/enrich-cli/pkg/hunter"
)

// Source names as they appear in SourceOutcome records.
const (
	sourceEmail   = "hunter"
	sourceCompany = "clearbit"
	sourceTech    = "builtwith"
)

// validate fans out to the three validation sources concurrently and merges
// their answers. Each field of the result is owned by exactly one source; a
// failed source contributes explicit unknown/false defaults and a confidence
// penalty, never an error. validate itself cannot fail.
func (p *Pipeline) validate(ctx context.Context, lead model.Lead) model.ValidationResult {
	timeout := time.Duration(p.cfg.Pipeline.SourceTimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	var (
		verification *hunter.Verification
		company      *clearbit.Company
		tech         *builtwith.TechProfile
	)
	outcomes := make([]model.SourceOutcome, 3)

	// Plain errgroup: one source failing must not cancel the others.
	var g errgroup.Group

	g.Go(func() error {
		vctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		v, err := p.hunter.Verify(vctx, lead.Email)
		verification = v
		outcomes[0] = sourceOutcome(sourceEmail, err)
		return nil
	})

	g.Go(func() error {
		cctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		c, err := p.clearbit.Lookup(cctx, lead.Domain())
		company = c
		outcomes[1] = sourceOutcome(sourceCompany, err)
		return nil
	})

	g.Go(func() error {
		tctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		t, err := p.builtwith.Detect(tctx, lead.Domain())
		tech = t
		outcomes[2] = sourceOutcome(sourceTech, err)
		return nil
	})

	_ = g.Wait()

	// Merge. Fields are partitioned by source, so order is irrelevant.
	result := model.ValidationResult{
		TechStack: []string{},
		Sources:   outcomes,
	}

	failed := 0
	unresolved := 0

	if outcomes[0].Failed() || verification == nil {
		failed++
	} else {
		result.EmailDeliverable = verification.Deliverable
	}

	if outcomes[1].Failed() || company == nil {
		failed++
	} else {
		result.CompanyExists = company.Exists
		result.RecentActivity = company.RecentlyActive(p.now())
		result.FundingRound = company.FundingRound()
		if result.FundingRound == "" {
			unresolved++
		}
	}

	if outcomes[2].Failed() || tech == nil {
		failed++
	} else {
		result.TechStack = append(result.TechStack, tech.Technologies...)
		if len(result.TechStack) == 0 {
			unresolved++
		}
	}

	result.Confidence = confidence(failed, unresolved, p.cfg.Pipeline.SourcePenalty, p.cfg.Pipeline.FieldPenalty)

	if failed > 0 {
		zap.L().Warn("validate: degraded result",
			zap.String("company", lead.Company),
			zap.Int("failed_sources", failed),
			zap.Int("unresolved_fields", unresolved),
			zap.Int("confidence", result.Confidence),
		)
	}

	return result
}

// confidence starts at 100 and subtracts a fixed penalty per failed source
// and per unresolved field, floored at 0. Fewer independent confirmations
// means lower trust.
func confidence(failedSources, unresolvedFields, sourcePenalty, fieldPenalty int) int {
	c := 100 - sourcePenalty*failedSources - fieldPenalty*unresolvedFields
	if c < 0 {
		c = 0
	}
	return c
}

// sourceOutcome classifies an adapter error. Timeouts and transient network
// conditions count as unavailable; everything else is a source error.
func sourceOutcome(source string, err error) model.SourceOutcome {
	if err == nil {
		return model.SourceOutcome{Source: source, Status: model.SourceSuccess}
	}
	status := model.SourceError
	if errors.Is(err, context.DeadlineExceeded) || resilience.IsTransient(err) {
		status = model.SourceUnavailable
	}
	return model.SourceOutcome{
		Source: source,
		Status: status,
		Reason: err.Error(),
	}
}
