package pipeline

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/sells-group/enrich-cli/internal/config"
	"github.com/sells-group/enrich-cli/pkg/anthropic"
	"github.com/sells-group/enrich-cli/pkg/builtwith"
	"github.com/sells-group/enrich-cli/pkg/clearbit"
	"github.com/sells-group/enrich-cli/pkg/hunter"
)

// --- Hunter Mock ---

type mockHunterClient struct {
	mock.Mock
}

func (m *mockHunterClient) Verify(ctx context.Context, email string) (*hunter.Verification, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*hunter.Verification), args.Error(1)
}

// --- Clearbit Mock ---

type mockClearbitClient struct {
	mock.Mock
}

func (m *mockClearbitClient) Lookup(ctx context.Context, domain string) (*clearbit.Company, error) {
	args := m.Called(ctx, domain)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*clearbit.Company), args.Error(1)
}

// --- BuiltWith Mock ---

type mockBuiltWithClient struct {
	mock.Mock
}

func (m *mockBuiltWithClient) Detect(ctx context.Context, domain string) (*builtwith.TechProfile, error) {
	args := m.Called(ctx, domain)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*builtwith.TechProfile), args.Error(1)
}

// --- Anthropic Mock ---

type mockAnthropicClient struct {
	mock.Mock
}

func (m *mockAnthropicClient) CreateMessage(ctx context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*anthropic.MessageResponse), args.Error(1)
}

// testConfig returns a config with the standard penalties and weights.
func testConfig() *config.Config {
	return &config.Config{
		Anthropic: config.AnthropicConfig{
			Model:     "claude-haiku-4-5-20251001",
			MaxTokens: 1024,
		},
		Pipeline: config.PipelineConfig{
			SourceTimeoutSecs: 1,
			DraftTimeoutSecs:  1,
			SourcePenalty:     20,
			FieldPenalty:      5,
			Weights:           config.DefaultFactorWeights(),
		},
		Batch: config.BatchConfig{
			MaxConcurrentLeads: 4,
		},
	}
}

// newTestPipeline builds a pipeline over the given mocks.
func newTestPipeline(h *mockHunterClient, c *mockClearbitClient, b *mockBuiltWithClient, a *mockAnthropicClient) *Pipeline {
	return New(testConfig(), h, c, b, a)
}

// textResponse builds a minimal message response with a single text block.
func textResponse(text string) *anthropic.MessageResponse {
	return &anthropic.MessageResponse{
		ID:      "msg_test",
		Content: []anthropic.ContentBlock{{Type: "text", Text: text}},
	}
}
