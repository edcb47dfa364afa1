// Package types provides type definitions for structured data used throughout the outreach-architect system.
package types

import (
	"time"

	"github.com/google/uuid"
)

// Lead represents a prospect being processed through the outreach pipeline.
type Lead struct {
	ID uuid.UUID `json:"id"`

	// Identity
	Name     string `json:"name"`
	Email    string `json:"email"`
	Company  string `json:"company,omitempty"`
	JobTitle string `json:"job_title,omitempty"`
	Location string `json:"location,omitempty"`

	// External references
	ProfileURL     string `json:"profile_url,omitempty"`
	CompanyWebsite string `json:"company_website,omitempty"`

	// Enrichment snapshots, valid as of LastEnrichedAt
	Profile        *ProfileSnapshot `json:"profile,omitempty"`
	RecentActivity []ActivityItem   `json:"recent_activity,omitempty"`
	CompanyIntel   *OrgIntelligence `json:"company_intel,omitempty"`

	// Signals derived during analysis
	PainPoints     []string       `json:"pain_points,omitempty"`
	Interests      []string       `json:"interests,omitempty"`
	TriggerEvents  []TriggerEvent `json:"trigger_events,omitempty"`
	RelevanceScore float64        `json:"relevance_score"`

	Source string   `json:"source,omitempty"`
	Tags   []string `json:"tags,omitempty"`

	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	LastEnrichedAt *time.Time `json:"last_enriched_at,omitempty"`
}

// ProfileSnapshot holds public profile data scraped for a lead.
// Every field may be absent; scrapers fill what they can find.
type ProfileSnapshot struct {
	ProfileURL string    `json:"profile_url"`
	Name       string    `json:"name,omitempty"`
	Headline   string    `json:"headline,omitempty"`
	Location   string    `json:"location,omitempty"`
	About      string    `json:"about,omitempty"`
	JobTitle   string    `json:"job_title,omitempty"`
	Company    string    `json:"company,omitempty"`
	Skills     []string  `json:"skills,omitempty"`
	ScrapedAt  time.Time `json:"scraped_at"`
}

// ActivityItem is a single recent post or interaction on a lead's profile.
type ActivityItem struct {
	Type     string `json:"type"`
	Content  string `json:"content,omitempty"`
	PostedAt string `json:"posted_at,omitempty"`
	Likes    string `json:"likes,omitempty"`
	Comments string `json:"comments,omitempty"`
}

// OrgIntelligence aggregates company signals gathered from public sources.
type OrgIntelligence struct {
	CompanyName string         `json:"company_name"`
	Website     string         `json:"website,omitempty"`
	RecentNews  []NewsItem     `json:"recent_news,omitempty"`
	Hiring      *HiringSignals `json:"hiring,omitempty"`
	Funding     *FundingSignal `json:"funding,omitempty"`
	WebsiteInfo *WebsiteInfo   `json:"website_info,omitempty"`

	// TriggerScore is an unclamped additive sum:
	// +0.4 funding present, +0.3 more than 5 open positions,
	// +0.2 more than 5 recent news items.
	TriggerScore float64   `json:"trigger_score"`
	EnrichedAt   time.Time `json:"enriched_at"`
}

// NewsItem is one news article about a company.
type NewsItem struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	URL         string `json:"url"`
	Source      string `json:"source,omitempty"`
	PublishedAt string `json:"published_at,omitempty"`
}

// HiringSignals summarizes a company's open positions as a growth signal.
type HiringSignals struct {
	IsHiring       bool         `json:"is_hiring"`
	OpenPositions  int          `json:"open_positions"`
	RecentPostings []JobPosting `json:"recent_postings,omitempty"`
}

// JobPosting is a sampled open position.
type JobPosting struct {
	Title    string `json:"title"`
	Location string `json:"location,omitempty"`
}

// FundingSignal indicates recent funding activity, a strong outreach trigger.
type FundingSignal struct {
	Articles       []NewsItem `json:"articles,omitempty"`
	SignalStrength string     `json:"signal_strength"`
}

// WebsiteInfo holds basic scraped metadata from a company website.
type WebsiteInfo struct {
	URL         string `json:"url"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
}

// TriggerEvent is a recent event making now a good time to reach out.
type TriggerEvent struct {
	Type        string  `json:"type"`
	Description string  `json:"description"`
	Timestamp   string  `json:"timestamp,omitempty"`
	Relevance   float64 `json:"relevance,omitempty"`
}
