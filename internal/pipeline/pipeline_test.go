package pipeline

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/outreach-architect/internal/config"
	"github.com/jonathan/outreach-architect/internal/generation"
	"github.com/jonathan/outreach-architect/internal/quality"
	"github.com/jonathan/outreach-architect/internal/types"
)

// ---------------------------------------------------------------------------
// Fakes
// ---------------------------------------------------------------------------

type fakeStore struct {
	mu        sync.Mutex
	leads     map[uuid.UUID]*types.Lead
	campaigns []*types.OutreachCampaign
	sent      []uuid.UUID

	enrichUpdateErr   error
	analysisUpdateErr error
	createErr         error
	markSentErr       error

	analysisUpdates int
}

func newFakeStore() *fakeStore {
	return &fakeStore{leads: make(map[uuid.UUID]*types.Lead)}
}

func (s *fakeStore) GetLead(_ context.Context, id uuid.UUID) (*types.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.leads[id], nil
}

func (s *fakeStore) UpdateLeadEnrichment(_ context.Context, _ uuid.UUID, _ *types.EnrichmentResult) error {
	return s.enrichUpdateErr
}

func (s *fakeStore) UpdateLeadAnalysis(_ context.Context, _ uuid.UUID, _ *types.AnalysisResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.analysisUpdates++
	return s.analysisUpdateErr
}

func (s *fakeStore) CreateCampaign(_ context.Context, campaign *types.OutreachCampaign) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return s.createErr
	}
	campaign.ID = uuid.New()
	s.campaigns = append(s.campaigns, campaign)
	return nil
}

func (s *fakeStore) MarkCampaignSent(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.markSentErr != nil {
		return s.markSentErr
	}
	s.sent = append(s.sent, id)
	return nil
}

type fakeEnricher struct {
	mu      sync.Mutex
	result  *types.EnrichmentResult
	err     error
	calls   int
	inUse   int
	maxSeen int
	block   chan struct{}
}

func (e *fakeEnricher) EnrichLead(_ context.Context, _ *types.Lead) (*types.EnrichmentResult, error) {
	e.mu.Lock()
	e.calls++
	e.inUse++
	if e.inUse > e.maxSeen {
		e.maxSeen = e.inUse
	}
	e.mu.Unlock()

	if e.block != nil {
		<-e.block
	}

	e.mu.Lock()
	e.inUse--
	e.mu.Unlock()

	if e.err != nil {
		return nil, e.err
	}
	if e.result != nil {
		return e.result, nil
	}
	return &types.EnrichmentResult{}, nil
}

type fakeGenerator struct {
	mu          sync.Mutex
	analysis    *types.AnalysisResult
	analysisErr error
	drafts      []*types.EmailDraft
	emailErr    error
	variants    []types.EmailDraft
	variantErr  error

	analyzeCalls int
	emailCalls   int
	variantCalls int
}

func (g *fakeGenerator) AnalyzeLead(_ context.Context, _ generation.AnalysisPayload) (*types.AnalysisResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.analyzeCalls++
	return g.analysis, g.analysisErr
}

func (g *fakeGenerator) GenerateEmail(_ context.Context, _ generation.LeadIdentity, _ *types.AnalysisResult, _ generation.EmailParams) (*types.EmailDraft, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.emailCalls++
	if g.emailErr != nil {
		return nil, g.emailErr
	}
	if len(g.drafts) == 0 {
		return &types.EmailDraft{SubjectLine: "empty"}, nil
	}
	draft := g.drafts[0]
	if len(g.drafts) > 1 {
		g.drafts = g.drafts[1:]
	}
	return draft, nil
}

func (g *fakeGenerator) GenerateVariants(_ context.Context, _ *types.EmailDraft, _ generation.LeadIdentity, _ int) ([]types.EmailDraft, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.variantCalls++
	return g.variants, g.variantErr
}

func (g *fakeGenerator) GenerateFollowUp(_ context.Context, original *types.EmailDraft, _ int, _ generation.Engagement, _ int) (*types.EmailDraft, error) {
	return &types.EmailDraft{SubjectLine: "Re: " + original.SubjectLine}, nil
}

func (g *fakeGenerator) ModelName() string { return "test/model" }
func (g *fakeGenerator) Close() error      { return nil }

type fakeSender struct {
	mu    sync.Mutex
	err   error
	calls int
}

func (s *fakeSender) Send(_ context.Context, _ *types.OutreachCampaign, _ *types.Lead) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.err
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func testConfig() config.Config {
	return config.Config{
		MinRelevanceScore:      config.DefaultMinRelevanceScore,
		QualityPassThreshold:   config.DefaultQualityPassThreshold,
		QualityAcceptThreshold: config.DefaultQualityAcceptThreshold,
		MaxGenerationAttempts:  config.DefaultMaxGenerationAttempts,
		MaxConcurrent:          config.DefaultMaxConcurrent,
	}
}

func testLead() *types.Lead {
	return &types.Lead{
		ID:      uuid.New(),
		Name:    "Jane Doe",
		Email:   "jane@example.com",
		Company: "Acme",
	}
}

// goodDraft scores 0.9 plus the relevance contribution: three
// personalization elements, in-range word count, a call-to-action, no
// spam phrases.
func goodDraft() *types.EmailDraft {
	body := strings.Repeat("insight ", 55) + "Would you be open to a quick call next week?"
	return &types.EmailDraft{
		SubjectLine:             "Congrats on the launch",
		EmailBody:               body,
		PersonalizationElements: []string{"launch", "role", "funding"},
		ExpectedResponseRate:    0.25,
	}
}

// badDraft fails every check; its score is relevance * 0.1 only.
func badDraft() *types.EmailDraft {
	return &types.EmailDraft{
		SubjectLine: "Hello",
		EmailBody:   "hope this email finds you well",
	}
}

// ---------------------------------------------------------------------------
// ProcessLead
// ---------------------------------------------------------------------------

func TestProcessLead_PendingReview(t *testing.T) {
	store := newFakeStore()
	enricher := &fakeEnricher{}
	generator := &fakeGenerator{
		analysis: &types.AnalysisResult{RelevanceScore: 0.92},
		drafts:   []*types.EmailDraft{goodDraft()},
	}
	sender := &fakeSender{}
	processor := NewProcessor(store, enricher, generator, quality.NewEvaluator(config.DefaultQualityPassThreshold), sender, testConfig())

	result := processor.ProcessLead(context.Background(), testLead(), Options{})

	assert.Equal(t, types.ProcessPendingReview, result.Status)
	require.NotNil(t, result.CampaignID)
	require.Len(t, store.campaigns, 1)
	assert.Equal(t, types.StatusReady, store.campaigns[0].Status)
	assert.Equal(t, 1, store.campaigns[0].GenerationMetadata.Attempts)
	assert.Zero(t, sender.calls)
	assert.True(t, result.QualityCheck.QualityScore >= 0.8)
}

func TestProcessLead_AutoSend(t *testing.T) {
	store := newFakeStore()
	generator := &fakeGenerator{
		analysis: &types.AnalysisResult{RelevanceScore: 0.92},
		drafts:   []*types.EmailDraft{goodDraft()},
	}
	sender := &fakeSender{}
	processor := NewProcessor(store, &fakeEnricher{}, generator, quality.NewEvaluator(config.DefaultQualityPassThreshold), sender, testConfig())

	result := processor.ProcessLead(context.Background(), testLead(), Options{AutoSend: true})

	assert.Equal(t, types.ProcessSent, result.Status)
	assert.NotEmpty(t, result.SentAt)
	assert.Equal(t, 1, sender.calls)
	require.Len(t, store.sent, 1)
	assert.Equal(t, store.campaigns[0].ID, store.sent[0])
}

func TestProcessLead_AutoSendBelowThresholdGoesToReview(t *testing.T) {
	store := newFakeStore()
	generator := &fakeGenerator{
		analysis: &types.AnalysisResult{RelevanceScore: 0.92},
		drafts:   []*types.EmailDraft{badDraft()},
	}
	sender := &fakeSender{}
	processor := NewProcessor(store, &fakeEnricher{}, generator, quality.NewEvaluator(config.DefaultQualityPassThreshold), sender, testConfig())

	result := processor.ProcessLead(context.Background(), testLead(), Options{AutoSend: true})

	assert.Equal(t, types.ProcessPendingReview, result.Status)
	assert.Zero(t, sender.calls)
	// Best-effort draft is still persisted after retries are exhausted
	require.Len(t, store.campaigns, 1)
	assert.Equal(t, config.DefaultMaxGenerationAttempts, store.campaigns[0].GenerationMetadata.Attempts)
}

func TestProcessLead_LowRelevance(t *testing.T) {
	store := newFakeStore()
	generator := &fakeGenerator{
		analysis: &types.AnalysisResult{RelevanceScore: 0.4},
	}
	processor := NewProcessor(store, &fakeEnricher{}, generator, quality.NewEvaluator(config.DefaultQualityPassThreshold), &fakeSender{}, testConfig())

	result := processor.ProcessLead(context.Background(), testLead(), Options{})

	assert.Equal(t, types.ProcessLowRelevance, result.Status)
	assert.InDelta(t, 0.4, result.RelevanceScore, 0.0001)
	assert.Empty(t, store.campaigns)
	assert.Zero(t, generator.emailCalls)
	// Analysis signals are still persisted before the relevance gate
	assert.Equal(t, 1, store.analysisUpdates)
}

func TestProcessLead_EnrichmentFailed(t *testing.T) {
	store := newFakeStore()
	generator := &fakeGenerator{analysis: &types.AnalysisResult{RelevanceScore: 0.9}}
	enricher := &fakeEnricher{err: errors.New("profile blocked")}
	processor := NewProcessor(store, enricher, generator, quality.NewEvaluator(config.DefaultQualityPassThreshold), &fakeSender{}, testConfig())

	result := processor.ProcessLead(context.Background(), testLead(), Options{})

	assert.Equal(t, types.ProcessEnrichmentFailed, result.Status)
	assert.Contains(t, result.Error, "profile blocked")
	assert.Zero(t, generator.analyzeCalls)
	assert.Zero(t, generator.emailCalls)
	assert.Empty(t, store.campaigns)
}

func TestProcessLead_AnalysisErrorIsError(t *testing.T) {
	store := newFakeStore()
	generator := &fakeGenerator{analysisErr: errors.New("model unavailable")}
	processor := NewProcessor(store, &fakeEnricher{}, generator, quality.NewEvaluator(config.DefaultQualityPassThreshold), &fakeSender{}, testConfig())

	result := processor.ProcessLead(context.Background(), testLead(), Options{})

	assert.Equal(t, types.ProcessError, result.Status)
	assert.Contains(t, result.Error, "model unavailable")
	assert.Empty(t, store.campaigns)
}

func TestProcessLead_GenerationErrorIsNotRetried(t *testing.T) {
	store := newFakeStore()
	generator := &fakeGenerator{
		analysis: &types.AnalysisResult{RelevanceScore: 0.9},
		emailErr: errors.New("quota exceeded"),
	}
	processor := NewProcessor(store, &fakeEnricher{}, generator, quality.NewEvaluator(config.DefaultQualityPassThreshold), &fakeSender{}, testConfig())

	result := processor.ProcessLead(context.Background(), testLead(), Options{})

	assert.Equal(t, types.ProcessError, result.Status)
	assert.Equal(t, 1, generator.emailCalls)
	assert.Empty(t, store.campaigns)
}

func TestProcessLead_RefinementAcceptsSecondAttempt(t *testing.T) {
	store := newFakeStore()
	generator := &fakeGenerator{
		analysis: &types.AnalysisResult{RelevanceScore: 0.9},
		drafts:   []*types.EmailDraft{badDraft(), goodDraft()},
	}
	processor := NewProcessor(store, &fakeEnricher{}, generator, quality.NewEvaluator(config.DefaultQualityPassThreshold), &fakeSender{}, testConfig())

	result := processor.ProcessLead(context.Background(), testLead(), Options{})

	assert.Equal(t, types.ProcessPendingReview, result.Status)
	assert.Equal(t, 2, generator.emailCalls)
	require.Len(t, store.campaigns, 1)
	assert.Equal(t, 2, store.campaigns[0].GenerationMetadata.Attempts)
	assert.Equal(t, "Congrats on the launch", store.campaigns[0].SubjectLine)
}

func TestProcessLead_SendFailure(t *testing.T) {
	store := newFakeStore()
	generator := &fakeGenerator{
		analysis: &types.AnalysisResult{RelevanceScore: 0.92},
		drafts:   []*types.EmailDraft{goodDraft()},
	}
	sender := &fakeSender{err: errors.New("webhook down")}
	processor := NewProcessor(store, &fakeEnricher{}, generator, quality.NewEvaluator(config.DefaultQualityPassThreshold), sender, testConfig())

	result := processor.ProcessLead(context.Background(), testLead(), Options{AutoSend: true})

	assert.Equal(t, types.ProcessSendFailed, result.Status)
	// The campaign stays persisted and reviewable
	require.Len(t, store.campaigns, 1)
	assert.Equal(t, types.StatusReady, store.campaigns[0].Status)
	assert.Empty(t, store.sent)
}

func TestProcessLead_VariantsPersisted(t *testing.T) {
	store := newFakeStore()
	generator := &fakeGenerator{
		analysis: &types.AnalysisResult{RelevanceScore: 0.92},
		drafts:   []*types.EmailDraft{goodDraft()},
		variants: []types.EmailDraft{
			{SubjectLine: "Variant A", EmailBody: "a", VariantName: "direct"},
			{SubjectLine: "Variant B", EmailBody: "b", VariantName: "curious"},
		},
	}
	processor := NewProcessor(store, &fakeEnricher{}, generator, quality.NewEvaluator(config.DefaultQualityPassThreshold), &fakeSender{}, testConfig())

	result := processor.ProcessLead(context.Background(), testLead(), Options{GenerateVariants: true})

	assert.Equal(t, types.ProcessPendingReview, result.Status)
	require.Len(t, store.campaigns, 3)
	assert.Equal(t, "direct", store.campaigns[1].Variant)
	assert.Equal(t, store.campaigns[0].ID.String(), store.campaigns[1].TestGroup)
}

func TestProcessLead_VariantFailureDoesNotAffectOutcome(t *testing.T) {
	store := newFakeStore()
	generator := &fakeGenerator{
		analysis:   &types.AnalysisResult{RelevanceScore: 0.92},
		drafts:     []*types.EmailDraft{goodDraft()},
		variantErr: errors.New("variants unavailable"),
	}
	processor := NewProcessor(store, &fakeEnricher{}, generator, quality.NewEvaluator(config.DefaultQualityPassThreshold), &fakeSender{}, testConfig())

	result := processor.ProcessLead(context.Background(), testLead(), Options{GenerateVariants: true})

	assert.Equal(t, types.ProcessPendingReview, result.Status)
	require.Len(t, store.campaigns, 1)
	assert.Empty(t, result.Error)
}

// ---------------------------------------------------------------------------
// ProcessBatch
// ---------------------------------------------------------------------------

func TestProcessBatch_StatsTally(t *testing.T) {
	store := newFakeStore()
	lead1 := testLead()
	lead2 := testLead()
	lead2.Email = "second@example.com"
	store.leads[lead1.ID] = lead1
	store.leads[lead2.ID] = lead2

	generator := &fakeGenerator{
		analysis: &types.AnalysisResult{RelevanceScore: 0.92},
		drafts:   []*types.EmailDraft{goodDraft()},
	}
	processor := NewProcessor(store, &fakeEnricher{}, generator, quality.NewEvaluator(config.DefaultQualityPassThreshold), &fakeSender{}, testConfig())

	results, stats, err := processor.ProcessBatch(context.Background(), []uuid.UUID{lead1.ID, lead2.ID}, Options{AutoSend: true})
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 2, stats.Successful)
	assert.Equal(t, 2, stats.Sent)
	assert.Zero(t, stats.Failed)
}

func TestProcessBatch_SkipsUnknownLeads(t *testing.T) {
	store := newFakeStore()
	lead := testLead()
	store.leads[lead.ID] = lead

	generator := &fakeGenerator{
		analysis: &types.AnalysisResult{RelevanceScore: 0.3},
	}
	processor := NewProcessor(store, &fakeEnricher{}, generator, quality.NewEvaluator(config.DefaultQualityPassThreshold), &fakeSender{}, testConfig())

	results, stats, err := processor.ProcessBatch(context.Background(), []uuid.UUID{lead.ID, uuid.New()}, Options{})
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Equal(t, 1, stats.Total)
	assert.Equal(t, 1, stats.LowRelevance)
}

func TestProcessBatch_FailureIsolation(t *testing.T) {
	store := newFakeStore()
	lead1 := testLead()
	lead2 := testLead()
	store.leads[lead1.ID] = lead1
	store.leads[lead2.ID] = lead2

	// Enrichment fails for every lead, but the batch itself completes.
	enricher := &fakeEnricher{err: errors.New("scrape blocked")}
	generator := &fakeGenerator{analysis: &types.AnalysisResult{RelevanceScore: 0.9}}
	processor := NewProcessor(store, enricher, generator, quality.NewEvaluator(config.DefaultQualityPassThreshold), &fakeSender{}, testConfig())

	results, stats, err := processor.ProcessBatch(context.Background(), []uuid.UUID{lead1.ID, lead2.ID}, Options{})
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, 2, stats.Failed)
	assert.Zero(t, stats.Successful)
	for _, result := range results {
		assert.Equal(t, types.ProcessEnrichmentFailed, result.Status)
	}
}

func TestProcessBatch_RespectsConcurrencyLimit(t *testing.T) {
	store := newFakeStore()
	var ids []uuid.UUID
	for i := 0; i < 10; i++ {
		lead := testLead()
		lead.ID = uuid.New()
		store.leads[lead.ID] = lead
		ids = append(ids, lead.ID)
	}

	block := make(chan struct{})
	enricher := &fakeEnricher{err: errors.New("stop here"), block: block}
	generator := &fakeGenerator{analysis: &types.AnalysisResult{RelevanceScore: 0.9}}
	processor := NewProcessor(store, enricher, generator, quality.NewEvaluator(config.DefaultQualityPassThreshold), &fakeSender{}, testConfig())

	done := make(chan struct{})
	go func() {
		_, _, _ = processor.ProcessBatch(context.Background(), ids, Options{MaxConcurrent: 3})
		close(done)
	}()

	close(block)
	<-done

	enricher.mu.Lock()
	defer enricher.mu.Unlock()
	assert.Equal(t, 10, enricher.calls)
	assert.LessOrEqual(t, enricher.maxSeen, 3)
}

func TestTallyStats_UncountedStatuses(t *testing.T) {
	results := []types.ProcessResult{
		{Status: types.ProcessSent},
		{Status: types.ProcessPendingReview},
		{Status: types.ProcessSendFailed},
		{Status: types.ProcessLowRelevance},
		{Status: types.ProcessError},
		{Status: types.ProcessEnrichmentFailed},
	}

	stats := TallyStats(results)
	assert.Equal(t, 6, stats.Total)
	assert.Equal(t, 1, stats.Successful)
	assert.Equal(t, 1, stats.Sent)
	assert.Equal(t, 1, stats.LowRelevance)
	assert.Equal(t, 2, stats.Failed)
	// pending_review and send_failed appear in Total only
	assert.Equal(t, 2, stats.Total-stats.Successful-stats.LowRelevance-stats.Failed)
}
