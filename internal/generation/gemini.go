package generation

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"

	"github.com/jonathan/outreach-architect/internal/llm"
	"github.com/jonathan/outreach-architect/internal/prompts"
	"github.com/jonathan/outreach-architect/internal/schemas"
	"github.com/jonathan/outreach-architect/internal/types"
)

// Sampling temperatures per task. Analysis wants consistency, drafting
// wants variety, variants want maximum divergence.
const (
	analysisTemperature = 0.3
	emailTemperature    = 0.8
	variantTemperature  = 0.9
	followUpTemperature = 0.7
)

// fallbackRelevanceScore is used when the analysis response cannot be
// decoded. Mid-scale so an unparseable analysis neither auto-skips nor
// auto-trusts the lead.
const fallbackRelevanceScore = 0.5

// GeminiService implements Service on top of the shared LLM client.
type GeminiService struct {
	client  llm.Client
	verbose bool
}

// NewGeminiService creates the Gemini-backed generation service.
func NewGeminiService(ctx context.Context, apiKey string, verbose bool) (*GeminiService, error) {
	client, err := llm.NewClient(ctx, llm.DefaultConfig(), apiKey)
	if err != nil {
		return nil, &APICallError{Message: "failed to create LLM client", Cause: err}
	}
	return &GeminiService{client: client, verbose: verbose}, nil
}

// NewGeminiServiceWithClient wires an existing client, used by tests.
func NewGeminiServiceWithClient(client llm.Client, verbose bool) *GeminiService {
	return &GeminiService{client: client, verbose: verbose}
}

// ModelName reports the model used for email drafting.
func (s *GeminiService) ModelName() string {
	return string(llm.ProviderGemini) + "/" + s.client.GetModel(llm.TierStandard)
}

// Close releases the underlying LLM client.
func (s *GeminiService) Close() error {
	return s.client.Close()
}

// AnalyzeLead produces a structured analysis from the full lead payload.
// Unparseable responses degrade to a raw-text analysis with a default
// relevance score instead of an error.
func (s *GeminiService) AnalyzeLead(ctx context.Context, payload AnalysisPayload) (*types.AnalysisResult, error) {
	payloadJSON, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, &APICallError{Message: "failed to encode analysis payload", Cause: err}
	}

	template := prompts.MustGet("outreach.json", "analyze-lead")
	prompt := prompts.Format(template, map[string]string{
		"LeadData": string(payloadJSON),
	})

	responseText, err := s.client.GenerateJSON(ctx, prompt, llm.TierAdvanced, analysisTemperature)
	if err != nil {
		return nil, &APICallError{Message: "lead analysis failed", Cause: err}
	}

	if problems, verr := schemas.Validate(schemas.SchemaAnalysis, responseText); verr == nil && len(problems) > 0 && s.verbose {
		log.Printf("[generation] analysis response schema problems: %v", problems)
	}

	var analysis types.AnalysisResult
	if err := json.Unmarshal([]byte(responseText), &analysis); err != nil {
		log.Printf("[generation] failed to parse analysis response, using raw fallback: %v", err)
		return &types.AnalysisResult{
			RawAnalysis:    responseText,
			RelevanceScore: fallbackRelevanceScore,
		}, nil
	}

	return &analysis, nil
}

// GenerateEmail produces one personalized outreach draft. A response that
// fails to decode becomes a raw-body draft rather than an error.
func (s *GeminiService) GenerateEmail(ctx context.Context, identity LeadIdentity, analysis *types.AnalysisResult, params EmailParams) (*types.EmailDraft, error) {
	analysisJSON, err := json.MarshalIndent(analysis, "", "  ")
	if err != nil {
		return nil, &APICallError{Message: "failed to encode analysis", Cause: err}
	}

	goal := params.Goal
	if goal == "" {
		goal = "schedule_call"
	}
	style := analysis.CommunicationStyle
	if style == "" {
		style = "semi-formal"
	}

	template := prompts.MustGet("outreach.json", "generate-email")
	prompt := prompts.Format(template, map[string]string{
		"Name":               identity.Name,
		"Company":            identity.Company,
		"JobTitle":           identity.JobTitle,
		"Analysis":           string(analysisJSON),
		"CompanyContext":     params.CompanyContext,
		"ValueProposition":   params.ValueProposition,
		"Goal":               goal,
		"CommunicationStyle": style,
	})

	responseText, err := s.client.GenerateJSON(ctx, prompt, llm.TierStandard, emailTemperature)
	if err != nil {
		return nil, &APICallError{Message: "email generation failed", Cause: err}
	}

	if problems, verr := schemas.Validate(schemas.SchemaEmail, responseText); verr == nil && len(problems) > 0 && s.verbose {
		log.Printf("[generation] email response schema problems: %v", problems)
	}

	var draft types.EmailDraft
	if err := json.Unmarshal([]byte(responseText), &draft); err != nil {
		log.Printf("[generation] failed to parse email response, using raw fallback: %v", err)
		return &types.EmailDraft{
			SubjectLine: "Quick question about your work at " + identity.Company,
			EmailBody:   responseText,
		}, nil
	}

	return &draft, nil
}

// GenerateVariants produces A/B variants with different strategic
// approaches. Unparseable output yields an empty variant list.
func (s *GeminiService) GenerateVariants(ctx context.Context, original *types.EmailDraft, identity LeadIdentity, count int) ([]types.EmailDraft, error) {
	if count <= 0 {
		count = 2
	}

	template := prompts.MustGet("outreach.json", "generate-variants")
	prompt := prompts.Format(template, map[string]string{
		"NumVariants": strconv.Itoa(count),
		"SubjectLine": original.SubjectLine,
		"EmailBody":   original.EmailBody,
		"Name":        identity.Name,
		"Company":     identity.Company,
	})

	responseText, err := s.client.GenerateJSON(ctx, prompt, llm.TierStandard, variantTemperature)
	if err != nil {
		return nil, &APICallError{Message: "variant generation failed", Cause: err}
	}

	var variants []types.EmailDraft
	if err := json.Unmarshal([]byte(responseText), &variants); err != nil {
		// Some models return a single object instead of an array
		var single types.EmailDraft
		if err2 := json.Unmarshal([]byte(responseText), &single); err2 == nil {
			return []types.EmailDraft{single}, nil
		}
		log.Printf("[generation] failed to parse variants response: %v", err)
		return nil, nil
	}

	return variants, nil
}

// GenerateFollowUp produces an engagement-aware follow-up draft.
// Unparseable output degrades to "Re:" subject plus the raw body.
func (s *GeminiService) GenerateFollowUp(ctx context.Context, original *types.EmailDraft, daysSinceSent int, engagement Engagement, sequenceNumber int) (*types.EmailDraft, error) {
	template := prompts.MustGet("outreach.json", "generate-followup")
	prompt := prompts.Format(template, map[string]string{
		"SequenceNumber": strconv.Itoa(sequenceNumber),
		"SubjectLine":    original.SubjectLine,
		"EmailBody":      original.EmailBody,
		"DaysSinceSent":  strconv.Itoa(daysSinceSent),
		"Opened":         strconv.FormatBool(engagement.Opened),
		"Clicked":        strconv.FormatBool(engagement.Clicked),
	})

	responseText, err := s.client.GenerateJSON(ctx, prompt, llm.TierLite, followUpTemperature)
	if err != nil {
		return nil, &APICallError{Message: "follow-up generation failed", Cause: err}
	}

	var draft types.EmailDraft
	if err := json.Unmarshal([]byte(responseText), &draft); err != nil {
		log.Printf("[generation] failed to parse follow-up response, using raw fallback: %v", err)
		return &types.EmailDraft{
			SubjectLine: fmt.Sprintf("Re: %s", original.SubjectLine),
			EmailBody:   responseText,
		}, nil
	}

	return &draft, nil
}
