package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/enrich-cli/internal/model"
	"github.com/sells-group/enrich-cli/internal/resilience"
	"github.com/sells-group/enrich-cli/pkg/anthropic"
)

const draftSystemPrompt = "You are an expert B2B sales email writer. Create highly personalized, " +
	"concise emails that reference company details, lead with value, include a clear CTA, " +
	"are under 150 words, and feel human. Start your reply with a line of the form " +
	"\"Subject: ...\" followed by the email body."

// generate produces an outreach draft for the lead. It calls the generative
// provider through a circuit breaker with a bounded timeout; any failure or
// malformed response falls back to the deterministic template, so a draft is
// always returned.
func (p *Pipeline) generate(ctx context.Context, lead model.Lead, validation model.ValidationResult, score model.ScoreResult) model.EmailDraft {
	timeout := time.Duration(p.cfg.Pipeline.DraftTimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	dctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	temp := 0.7
	resp, err := resilience.ExecuteVal(dctx, p.breaker, func(ctx context.Context) (*anthropic.MessageResponse, error) {
		return p.anthropic.CreateMessage(ctx, anthropic.MessageRequest{
			Model:       p.cfg.Anthropic.Model,
			MaxTokens:   p.cfg.Anthropic.MaxTokens,
			System:      []anthropic.SystemBlock{{Text: draftSystemPrompt}},
			Messages:    []anthropic.Message{{Role: "user", Content: buildDraftContext(lead, validation, score)}},
			Temperature: &temp,
		})
	})
	if err != nil {
		zap.L().Warn("generate: draft request failed, using template fallback",
			zap.String("company", lead.Company),
			zap.Error(err),
		)
		return p.fallbackDraft(lead, validation, score)
	}

	subject, body := parseDraft(resp.Text())
	if subject == "" || body == "" {
		zap.L().Warn("generate: malformed draft response, using template fallback",
			zap.String("company", lead.Company),
		)
		return p.fallbackDraft(lead, validation, score)
	}

	resp.Usage.LogCost(p.cfg.Anthropic.Model, "draft")

	return model.EmailDraft{
		Subject:                subject,
		Body:                   body,
		PersonalizationFactors: personalizationFactors(lead, validation, score),
		Provenance:             model.ProvenanceGenerated,
	}
}

// buildDraftContext assembles the context payload sent to the generative
// provider.
func buildDraftContext(lead model.Lead, validation model.ValidationResult, score model.ScoreResult) string {
	var b strings.Builder
	b.WriteString("Create a personalized sales email for:\n\n")
	fmt.Fprintf(&b, "Company: %s\n", lead.Company)
	fmt.Fprintf(&b, "Contact: %s (%s)\n", lead.Contact, lead.Title)
	if lead.Industry != "" {
		fmt.Fprintf(&b, "Industry: %s\n", lead.Industry)
	}
	if lead.Employees != "" {
		fmt.Fprintf(&b, "Company Size: %s\n", lead.Employees)
	}
	if len(validation.TechStack) > 0 {
		fmt.Fprintf(&b, "Tech Stack: %s\n", strings.Join(head(validation.TechStack, 3), ", "))
	}
	if validation.FundingRound != "" {
		fmt.Fprintf(&b, "Funding: %s\n", validation.FundingRound)
	}
	fmt.Fprintf(&b, "Lead Tier: %s (%d/100)\n", score.Tier, score.Total)
	b.WriteString("\nProduct: SaaSquatch Leads - AI-powered lead generation tool\n")
	b.WriteString("Value Prop: 40% more leads, 60% lower cost than legacy data vendors\n")
	b.WriteString("\nMake it specific to their company and tech stack.")
	return b.String()
}

// parseDraft splits a provider response into subject and body. The subject
// comes from a "Subject:" line; without one, the first non-empty line is
// used.
func parseDraft(content string) (subject, body string) {
	lines := strings.Split(strings.TrimSpace(content), "\n")

	bodyStart := 0
	for i, line := range lines {
		if s, ok := strings.CutPrefix(strings.TrimSpace(line), "Subject:"); ok {
			subject = strings.TrimSpace(s)
			bodyStart = i + 1
			break
		}
	}

	if subject == "" && len(lines) > 0 {
		subject = strings.TrimSpace(lines[0])
		bodyStart = 1
	}

	if bodyStart < len(lines) {
		body = strings.TrimSpace(strings.Join(lines[bodyStart:], "\n"))
	}
	return subject, body
}

// fallbackTemplate is a deterministic draft shape keyed by tier and industry
// fit band.
type fallbackTemplate struct {
	subject string // args: company
	opener  string // args: first name, company, tech
}

var fallbackTemplates = map[model.Tier]fallbackTemplate{
	model.TierHot: {
		subject: "%s + SaaSquatch: Boost Lead Gen by 40%%",
		opener:  "Hi %s,\n\nI noticed %s is using %s. Teams with your growth profile usually feel lead-data pain first.",
	},
	model.TierWarm: {
		subject: "A faster way to qualified leads for %s",
		opener:  "Hi %s,\n\nI came across %s and saw you're building on %s. Worth comparing notes on lead sourcing.",
	},
	model.TierCold: {
		subject: "Quick question about lead gen at %s",
		opener:  "Hi %s,\n\nI help companies like %s get more out of tools like %s without growing headcount.",
	},
}

// fallbackDraft fills the tier+industry template with pure string
// substitution. It has no external dependency and always succeeds.
func (p *Pipeline) fallbackDraft(lead model.Lead, validation model.ValidationResult, score model.ScoreResult) model.EmailDraft {
	tmpl := fallbackTemplates[score.Tier]

	first := firstName(lead.Contact)
	tech := "your current stack"
	if len(validation.TechStack) > 0 {
		tech = validation.TechStack[0]
	}
	industry := lead.Industry
	if industry == "" {
		industry = "your industry"
	}

	var body strings.Builder
	fmt.Fprintf(&body, tmpl.opener, first, lead.Company, tech)
	if validation.FundingRound != "" {
		fmt.Fprintf(&body, " Given your %s stage, you're likely scaling the sales team.", validation.FundingRound)
	}
	fmt.Fprintf(&body, "\n\nAt SaaSquatch, we help %s companies generate 40%% more qualified leads while cutting data costs by 60%%.", industry)
	body.WriteString("\n\nWorth a 15-min chat?\n\nBest,\n[Your Name]")

	return model.EmailDraft{
		Subject:                fmt.Sprintf(tmpl.subject, lead.Company),
		Body:                   body.String(),
		PersonalizationFactors: personalizationFactors(lead, validation, score),
		Provenance:             model.ProvenanceFallback,
	}
}

// personalizationFactors lists the context fields referenced in the draft,
// in a fixed order.
func personalizationFactors(lead model.Lead, validation model.ValidationResult, score model.ScoreResult) []string {
	factors := []string{
		"company: " + lead.Company,
		"contact: " + lead.Contact,
	}
	if lead.Industry != "" {
		factors = append(factors, "industry: "+lead.Industry)
	}
	if len(validation.TechStack) > 0 {
		factors = append(factors, "tech stack: "+strings.Join(head(validation.TechStack, 2), ", "))
	}
	if validation.FundingRound != "" {
		factors = append(factors, "funding round: "+validation.FundingRound)
	}
	factors = append(factors, "tier: "+string(score.Tier))
	return factors
}

func firstName(contact string) string {
	fields := strings.Fields(contact)
	if len(fields) == 0 {
		return "there"
	}
	return fields[0]
}

func head(s []string, n int) []string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
