// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/outreach-architect/internal/db"
	"github.com/jonathan/outreach-architect/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintAnalysis outputs a human-readable summary of a lead analysis.
func (p *Printer) PrintAnalysis(analysis *types.AnalysisResult) {
	if analysis == nil {
		return
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Relevance:  %.2f\n", analysis.RelevanceScore))
	if analysis.CommunicationStyle != "" {
		sb.WriteString(fmt.Sprintf("Style:      %s\n", analysis.CommunicationStyle))
	}
	if analysis.RecommendedApproach != "" {
		sb.WriteString(fmt.Sprintf("Approach:   %s\n", analysis.RecommendedApproach))
	}

	if len(analysis.PainPoints) > 0 {
		sb.WriteString("\nPain Points:\n")
		appendList(&sb, analysis.PainPoints)
	}
	if len(analysis.PersonalizationHooks) > 0 {
		sb.WriteString("\nPersonalization Hooks:\n")
		appendList(&sb, analysis.PersonalizationHooks)
	}
	if analysis.RawAnalysis != "" {
		sb.WriteString("\n(unstructured analysis, see raw output)\n")
	}

	p.printBox("LEAD ANALYSIS", strings.TrimRight(sb.String(), "\n"))
}

// PrintQualityCheck outputs a human-readable summary of a quality check.
func (p *Printer) PrintQualityCheck(check *types.QualityCheck) {
	if check == nil {
		return
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Score:            %.2f\n", check.QualityScore))
	sb.WriteString(fmt.Sprintf("Passes QA:        %v\n", check.PassesQA))
	sb.WriteString(fmt.Sprintf("Word Count:       %d\n", check.WordCount))
	sb.WriteString(fmt.Sprintf("Personalization:  %d elements\n", check.PersonalizationCount))

	if len(check.Issues) > 0 {
		sb.WriteString("\nIssues:\n")
		appendList(&sb, check.Issues)
	}

	p.printBox("QUALITY CHECK", strings.TrimRight(sb.String(), "\n"))
}

// PrintDraft outputs the generated email draft.
func (p *Printer) PrintDraft(draft *types.EmailDraft) {
	if draft == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Subject: %s\n\n", draft.SubjectLine))
	sb.WriteString(draft.EmailBody)

	p.printBox("EMAIL DRAFT", sb.String())
}

// PrintOutcome outputs the terminal status of one lead's pipeline run.
func (p *Printer) PrintOutcome(result *types.ProcessResult) {
	if result == nil {
		return
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Lead:     %s\n", result.LeadName))
	sb.WriteString(fmt.Sprintf("Status:   %s\n", result.Status))
	if result.CampaignID != nil {
		sb.WriteString(fmt.Sprintf("Campaign: %s\n", result.CampaignID))
	}
	if result.QualityCheck != nil {
		sb.WriteString(fmt.Sprintf("Quality:  %.2f\n", result.QualityCheck.QualityScore))
	}
	if result.Status == types.ProcessLowRelevance {
		sb.WriteString(fmt.Sprintf("Relevance: %.2f\n", result.RelevanceScore))
	}
	if result.Error != "" {
		sb.WriteString(fmt.Sprintf("Error:    %s\n", result.Error))
	}

	p.printBox("OUTCOME", strings.TrimRight(sb.String(), "\n"))
}

// PrintBatchStats outputs aggregate statistics for a batch run.
func (p *Printer) PrintBatchStats(stats *types.BatchStats) {
	if stats == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Total:         %d\n", stats.Total))
	sb.WriteString(fmt.Sprintf("Successful:    %d\n", stats.Successful))
	sb.WriteString(fmt.Sprintf("Sent:          %d\n", stats.Sent))
	sb.WriteString(fmt.Sprintf("Low Relevance: %d\n", stats.LowRelevance))
	sb.WriteString(fmt.Sprintf("Failed:        %d", stats.Failed))

	p.printBox("BATCH RESULTS", sb.String())
}

// PrintCampaignStats outputs aggregate engagement statistics.
func (p *Printer) PrintCampaignStats(stats *db.CampaignStats) {
	if stats == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Campaigns:  %d\n", stats.Total))
	sb.WriteString(fmt.Sprintf("Ready:      %d\n", stats.Ready))
	sb.WriteString(fmt.Sprintf("Sent:       %d\n", stats.Sent))
	sb.WriteString(fmt.Sprintf("Opened:     %d (%.0f%%)\n", stats.Opened, stats.OpenRate*100))
	sb.WriteString(fmt.Sprintf("Replied:    %d (%.0f%%)", stats.Replied, stats.ReplyRate*100))

	p.printBox("ENGAGEMENT", sb.String())
}

func appendList(sb *strings.Builder, items []string) {
	count := min(len(items), maxItemsToShow)
	for i := 0; i < count; i++ {
		sb.WriteString(fmt.Sprintf("  • %s\n", items[i]))
	}
	if len(items) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(items)-maxItemsToShow))
	}
}
