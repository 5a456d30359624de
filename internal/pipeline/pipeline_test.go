package pipeline

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/enrich-cli/internal/model"
	"github.com/sells-group/enrich-cli/pkg/builtwith"
	"github.com/sells-group/enrich-cli/pkg/clearbit"
	"github.com/sells-group/enrich-cli/pkg/hunter"
)

func happyMocks() (*mockHunterClient, *mockClearbitClient, *mockBuiltWithClient, *mockAnthropicClient) {
	h := &mockHunterClient{}
	c := &mockClearbitClient{}
	b := &mockBuiltWithClient{}
	a := &mockAnthropicClient{}

	h.On("Verify", mock.Anything, mock.Anything).Return(&hunter.Verification{Deliverable: true}, nil)
	c.On("Lookup", mock.Anything, mock.Anything).Return(&clearbit.Company{
		Exists:    true,
		RaisedUSD: 5_000_000,
		IndexedAt: indexedRecently(),
	}, nil)
	b.On("Detect", mock.Anything, mock.Anything).Return(&builtwith.TechProfile{
		Technologies: []string{"React", "AWS"},
	}, nil)
	a.On("CreateMessage", mock.Anything, mock.Anything).Return(
		textResponse("Subject: Hello\n\nHi there."), nil)

	return h, c, b, a
}

func TestEnrich_EndToEnd(t *testing.T) {
	h, c, b, a := happyMocks()
	p := newTestPipeline(h, c, b, a).WithNow(fixedTime)

	enriched, err := p.Enrich(context.Background(), testLead)
	require.NoError(t, err)

	assert.NotEmpty(t, enriched.ID)
	assert.Equal(t, testLead, enriched.Lead)
	assert.Equal(t, 100, enriched.Validation.Confidence)
	assert.Equal(t, "Series A", enriched.Validation.FundingRound)
	assert.Equal(t, model.TierHot, enriched.Score.Tier)
	assert.Equal(t, model.ProvenanceGenerated, enriched.Draft.Provenance)
	assert.Equal(t, fixedTime(), enriched.EnrichedAt)
}

func TestEnrich_MalformedLeadFailsBeforeAnySourceCall(t *testing.T) {
	h := &mockHunterClient{}
	c := &mockClearbitClient{}
	b := &mockBuiltWithClient{}
	a := &mockAnthropicClient{}
	p := newTestPipeline(h, c, b, a)

	_, err := p.Enrich(context.Background(), model.Lead{Company: "Acme"})
	require.Error(t, err)

	h.AssertNotCalled(t, "Verify", mock.Anything, mock.Anything)
	c.AssertNotCalled(t, "Lookup", mock.Anything, mock.Anything)
	b.AssertNotCalled(t, "Detect", mock.Anything, mock.Anything)
	a.AssertNotCalled(t, "CreateMessage", mock.Anything, mock.Anything)
}

func TestEnrich_DegradedSourcesStillProduceResult(t *testing.T) {
	h := &mockHunterClient{}
	c := &mockClearbitClient{}
	b := &mockBuiltWithClient{}
	a := &mockAnthropicClient{}

	h.On("Verify", mock.Anything, mock.Anything).Return(nil, assert.AnError)
	c.On("Lookup", mock.Anything, mock.Anything).Return(nil, assert.AnError)
	b.On("Detect", mock.Anything, mock.Anything).Return(nil, assert.AnError)
	a.On("CreateMessage", mock.Anything, mock.Anything).Return(nil, assert.AnError)

	p := newTestPipeline(h, c, b, a)
	enriched, err := p.Enrich(context.Background(), testLead)
	require.NoError(t, err)

	assert.Equal(t, 40, enriched.Validation.Confidence)
	assert.Equal(t, model.ProvenanceFallback, enriched.Draft.Provenance)
	assert.NotEmpty(t, enriched.Draft.Subject)
}

func TestEnrichBatch_PreservesInputOrder(t *testing.T) {
	h := &mockHunterClient{}
	c := &mockClearbitClient{}
	b := &mockBuiltWithClient{}
	a := &mockAnthropicClient{}

	// Earlier leads sleep longer than later ones, so completion order is the
	// reverse of submission order.
	leads := make([]model.Lead, 6)
	for i := range leads {
		lead := testLead
		lead.Company = fmt.Sprintf("Company %d", i)
		lead.Email = fmt.Sprintf("jane%d@acme.io", i)
		leads[i] = lead

		delay := time.Duration(len(leads)-i) * 20 * time.Millisecond
		h.On("Verify", mock.Anything, lead.Email).
			Return(&hunter.Verification{Deliverable: true}, nil).
			After(delay)
	}
	c.On("Lookup", mock.Anything, mock.Anything).Return(&clearbit.Company{Exists: true, RaisedUSD: 5_000_000}, nil)
	b.On("Detect", mock.Anything, mock.Anything).Return(&builtwith.TechProfile{Technologies: []string{"React"}}, nil)
	a.On("CreateMessage", mock.Anything, mock.Anything).Return(textResponse("Subject: Hi\n\nBody."), nil)

	p := newTestPipeline(h, c, b, a)
	items := p.EnrichBatch(context.Background(), leads)

	require.Len(t, items, len(leads))
	for i, item := range items {
		assert.Equal(t, fmt.Sprintf("Company %d", i), item.Lead.Company)
		require.NotNil(t, item.Enriched, "item %d", i)
		assert.Empty(t, item.Error)
	}
}

func TestEnrichBatch_MalformedLeadDoesNotAffectNeighbors(t *testing.T) {
	h, c, b, a := happyMocks()
	p := newTestPipeline(h, c, b, a)

	bad := model.Lead{Company: "No Email Inc"}
	leads := []model.Lead{testLead, bad, testLead}

	items := p.EnrichBatch(context.Background(), leads)

	require.Len(t, items, 3)
	assert.NotNil(t, items[0].Enriched)
	assert.Nil(t, items[1].Enriched)
	assert.NotEmpty(t, items[1].Error)
	assert.NotNil(t, items[2].Enriched)
}

func TestEnrichBatch_Empty(t *testing.T) {
	h, c, b, a := happyMocks()
	p := newTestPipeline(h, c, b, a)

	items := p.EnrichBatch(context.Background(), nil)
	assert.Empty(t, items)
}
