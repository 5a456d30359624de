package pipeline

import (
	"math"
	"strings"

	"github.com/sells-group/enrich-cli/internal/model"
)

// Factor names as they appear in the score breakdown.
const (
	FactorCompanySize    = "company_size"
	FactorRevenue        = "revenue"
	FactorDataQuality    = "data_quality"
	FactorIndustryFit    = "industry_fit"
	FactorTechStack      = "tech_stack"
	FactorRecentActivity = "recent_activity"
)

// relevantTech lists technologies that signal fit with our product. Matches
// are counted case-insensitively.
var relevantTech = map[string]bool{
	"react":      true,
	"salesforce": true,
	"hubspot":    true,
	"aws":        true,
	"python":     true,
	"next.js":    true,
	"segment":    true,
}

// Score computes the weighted lead score from the lead and its validation
// result. It is pure and deterministic: no I/O, no clock, and identical
// inputs always produce the identical breakdown. Out-of-domain inputs
// degrade to a factor's neutral default rather than erroring.
func (p *Pipeline) Score(lead model.Lead, validation model.ValidationResult) model.ScoreResult {
	w := p.cfg.Pipeline.Weights

	factors := []model.FactorScore{
		{Factor: FactorCompanySize, Raw: scoreCompanySize(lead.Employees), Weight: w.CompanySize},
		{Factor: FactorRevenue, Raw: scoreRevenue(lead.Revenue), Weight: w.Revenue},
		{Factor: FactorDataQuality, Raw: float64(validation.Confidence), Weight: w.DataQuality},
		{Factor: FactorIndustryFit, Raw: p.fit.Score(lead.Industry), Weight: w.IndustryFit},
		{Factor: FactorTechStack, Raw: scoreTechStack(validation.TechStack), Weight: w.TechStack},
		{Factor: FactorRecentActivity, Raw: scoreActivity(validation.RecentActivity), Weight: w.RecentActivity},
	}

	total := 0.0
	for i := range factors {
		factors[i].Weighted = factors[i].Raw * float64(factors[i].Weight) / 100
		total += factors[i].Weighted
	}

	rounded := int(math.Round(total))
	if rounded < 0 {
		rounded = 0
	}
	if rounded > 100 {
		rounded = 100
	}

	return model.ScoreResult{
		Total:   rounded,
		Tier:    model.TierFor(rounded),
		Factors: factors,
	}
}

// employeeScores maps employee-count buckets to a 0-100 sub-score. Larger
// companies score higher, capped at 100.
var employeeScores = map[string]float64{
	"1-10":    40,
	"10-50":   60,
	"50-200":  80,
	"200-500": 100,
	"500+":    100,
}

func scoreCompanySize(employees string) float64 {
	if s, ok := employeeScores[strings.TrimSpace(employees)]; ok {
		return s
	}
	return 40 // unknown bucket
}

// revenueScores maps revenue buckets to a 0-100 sub-score.
var revenueScores = map[string]float64{
	"<$1M":      40,
	"$1M-$5M":   60,
	"$5M-$10M":  80,
	"$10M-$50M": 90,
	"$50M+":     100,
}

func scoreRevenue(revenue string) float64 {
	if s, ok := revenueScores[strings.TrimSpace(revenue)]; ok {
		return s
	}
	return 40 // unknown bucket
}

// scoreTechStack scores the detected stack against the relevant-technology
// list: three or more recognized technologies saturate the factor. An empty
// stack scores zero.
func scoreTechStack(stack []string) float64 {
	if len(stack) == 0 {
		return 0
	}
	matches := 0
	for _, t := range stack {
		if relevantTech[strings.ToLower(t)] {
			matches++
		}
	}
	if matches > 3 {
		matches = 3
	}
	return float64(matches) / 3 * 100
}

func scoreActivity(active bool) float64 {
	if active {
		return 100
	}
	return 0
}
