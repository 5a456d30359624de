package model

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// Lead is the raw sales-lead record submitted for enrichment. It is created
// by the caller and never mutated by the pipeline.
type Lead struct {
	Company   string `json:"company"`
	Contact   string `json:"contact"`
	Title     string `json:"title"`
	Email     string `json:"email"`
	Website   string `json:"website"`
	Industry  string `json:"industry,omitempty"`
	Employees string `json:"employees,omitempty"`
	Revenue   string `json:"revenue,omitempty"`
}

// Validate checks that the identifying fields required to enrich a lead are
// present. This is the only condition that fails an enrichment call; it is
// checked before any external source is contacted.
func (l Lead) Validate() error {
	var missing []string
	if strings.TrimSpace(l.Company) == "" {
		missing = append(missing, "company")
	}
	if strings.TrimSpace(l.Contact) == "" {
		missing = append(missing, "contact")
	}
	if strings.TrimSpace(l.Email) == "" {
		missing = append(missing, "email")
	}
	if strings.TrimSpace(l.Website) == "" {
		missing = append(missing, "website")
	}
	if len(missing) > 0 {
		return eris.Errorf("lead: missing required fields: %s", strings.Join(missing, ", "))
	}
	if !strings.Contains(l.Email, "@") {
		return eris.Errorf("lead: invalid email %q", l.Email)
	}
	return nil
}

// Domain returns the bare domain of the lead's website, stripping scheme,
// www prefix, path, and port.
func (l Lead) Domain() string {
	d := strings.TrimSpace(l.Website)
	d = strings.TrimPrefix(d, "https://")
	d = strings.TrimPrefix(d, "http://")
	d = strings.TrimPrefix(d, "www.")
	if i := strings.IndexAny(d, "/:"); i >= 0 {
		d = d[:i]
	}
	return strings.ToLower(d)
}

// EmailDomain returns the domain part of the lead's email address.
func (l Lead) EmailDomain() string {
	if i := strings.LastIndex(l.Email, "@"); i >= 0 {
		return strings.ToLower(l.Email[i+1:])
	}
	return ""
}

// SourceStatus tags the outcome of a single external source call.
type SourceStatus string

const (
	SourceSuccess     SourceStatus = "success"
	SourceUnavailable SourceStatus = "unavailable"
	SourceError       SourceStatus = "error"
)

// SourceOutcome records how a single validation source responded. Outcomes
// are consumed immediately by the aggregator and kept on the result for
// auditability only.
type SourceOutcome struct {
	Source string       `json:"source"`
	Status SourceStatus `json:"status"`
	Reason string       `json:"reason,omitempty"`
}

// Failed reports whether the source contributed nothing.
func (o SourceOutcome) Failed() bool {
	return o.Status != SourceSuccess
}

// ValidationResult is the merged output of the validation sources. Every
// field is always populated; a failed source contributes explicit
// unknown/false defaults rather than leaving gaps.
type ValidationResult struct {
	EmailDeliverable bool            `json:"email_deliverable"`
	CompanyExists    bool            `json:"company_exists"`
	RecentActivity   bool            `json:"recent_activity"`
	TechStack        []string        `json:"tech_stack"`
	FundingRound     string          `json:"funding_round,omitempty"`
	Confidence       int             `json:"confidence"`
	Sources          []SourceOutcome `json:"sources"`
}

// Tier is the qualitative lead bucket derived from the numeric score.
type Tier string

const (
	TierHot  Tier = "hot"
	TierWarm Tier = "warm"
	TierCold Tier = "cold"
)

// Tier thresholds. Boundaries are inclusive: exactly 80 is hot, exactly 50
// is warm.
const (
	HotThreshold  = 80
	WarmThreshold = 50
)

// TierFor maps a total score to its tier.
func TierFor(total int) Tier {
	switch {
	case total >= HotThreshold:
		return TierHot
	case total >= WarmThreshold:
		return TierWarm
	default:
		return TierCold
	}
}

// FactorScore is one factor's contribution to the lead score, kept for
// auditability.
type FactorScore struct {
	Factor   string  `json:"factor"`
	Raw      float64 `json:"raw"`
	Weight   int     `json:"weight"`
	Weighted float64 `json:"weighted"`
}

// ScoreResult is the weighted lead score with its per-factor breakdown.
type ScoreResult struct {
	Total   int           `json:"total"`
	Tier    Tier          `json:"tier"`
	Factors []FactorScore `json:"factors"`
}

// Provenance records how an email draft was produced.
type Provenance string

const (
	ProvenanceGenerated Provenance = "generated"
	ProvenanceFallback  Provenance = "fallback"
)

// EmailDraft is the outreach email produced for a lead.
type EmailDraft struct {
	Subject                string     `json:"subject"`
	Body                   string     `json:"body"`
	PersonalizationFactors []string   `json:"personalization_factors"`
	Provenance             Provenance `json:"provenance"`
}

// EnrichedLead is the terminal output of the pipeline. The pipeline holds no
// reference to it after return; the caller owns anything that happens next.
type EnrichedLead struct {
	ID         string           `json:"id"`
	Lead       Lead             `json:"lead"`
	Validation ValidationResult `json:"validation"`
	Score      ScoreResult      `json:"score"`
	Draft      EmailDraft       `json:"email_draft"`
	EnrichedAt time.Time        `json:"enriched_at"`
}

// BatchItem pairs one input lead with its enrichment outcome. Error is set
// only for malformed input; source failures degrade the enriched record
// instead.
type BatchItem struct {
	Lead     Lead          `json:"lead"`
	Enriched *EnrichedLead `json:"enriched,omitempty"`
	Error    string        `json:"error,omitempty"`
}
