package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/outreach-architect/internal/fetch"
	"github.com/jonathan/outreach-architect/internal/types"
)

// Defaults for news gathering.
const (
	DefaultNewsDaysBack    = 30
	DefaultNewsMaxArticles = 10
	fundingNewsDaysBack    = 90
	fundingNewsMaxArticles = 5
	maxSampledPostings     = 5
)

// Trigger score contributions. The score is an unclamped additive sum.
const (
	TriggerWeightFunding = 0.4
	TriggerWeightHiring  = 0.3
	TriggerWeightNews    = 0.2
	hiringTriggerMin     = 5
	newsTriggerMin       = 5
)

// fundingKeywords flag a news title as funding-related.
var fundingKeywords = []string{"funding", "raise", "series", "investment", "million", "venture"}

// IntelSource gathers company intelligence for a lead's organization.
type IntelSource interface {
	// Gather collects news, hiring, funding and website signals for a
	// company and computes its trigger score.
	Gather(ctx context.Context, companyName, website string) (*types.OrgIntelligence, error)
}

// WebIntelSource gathers company intelligence from NewsAPI and public web
// pages. Individual source failures degrade to empty signals; Gather only
// errors when the context is cancelled.
type WebIntelSource struct {
	fetcher    *fetch.Fetcher
	httpClient *http.Client
	newsAPIKey string

	// Endpoint bases, overridable in tests.
	newsAPIURL    string
	googleNewsURL string
	jobsSearchURL string
}

// NewWebIntelSource creates an intelligence source. An empty newsAPIKey
// switches news gathering to the Google News scrape fallback.
func NewWebIntelSource(fetcher *fetch.Fetcher, newsAPIKey string) *WebIntelSource {
	return &WebIntelSource{
		fetcher:       fetcher,
		httpClient:    &http.Client{Timeout: fetch.DefaultTimeout},
		newsAPIKey:    newsAPIKey,
		newsAPIURL:    "https://newsapi.org/v2/everything",
		googleNewsURL: "https://news.google.com",
		jobsSearchURL: "https://www.linkedin.com/jobs/search/",
	}
}

// newsAPIResponse mirrors the NewsAPI /v2/everything response shape.
type newsAPIResponse struct {
	Articles []struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		URL         string `json:"url"`
		Source      struct {
			Name string `json:"name"`
		} `json:"source"`
		PublishedAt string `json:"publishedAt"`
	} `json:"articles"`
}

// CompanyNews returns recent news articles about a company, via NewsAPI when
// a key is configured and a Google News scrape otherwise.
func (s *WebIntelSource) CompanyNews(ctx context.Context, query string, daysBack, maxArticles int) ([]types.NewsItem, error) {
	if daysBack <= 0 {
		daysBack = DefaultNewsDaysBack
	}
	if maxArticles <= 0 {
		maxArticles = DefaultNewsMaxArticles
	}

	if s.newsAPIKey == "" {
		return s.scrapeGoogleNews(ctx, query, maxArticles)
	}

	fromDate := time.Now().AddDate(0, 0, -daysBack).Format("2006-01-02")

	params := url.Values{}
	params.Set("q", fmt.Sprintf("%q", query))
	params.Set("from", fromDate)
	params.Set("sortBy", "publishedAt")
	params.Set("language", "en")
	params.Set("pageSize", strconv.Itoa(maxArticles))
	params.Set("apiKey", s.newsAPIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.newsAPIURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create news request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("news request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("news API returned status %d", resp.StatusCode)
	}

	var decoded newsAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to decode news response: %w", err)
	}

	articles := make([]types.NewsItem, 0, len(decoded.Articles))
	for _, article := range decoded.Articles {
		articles = append(articles, types.NewsItem{
			Title:       article.Title,
			Description: article.Description,
			URL:         article.URL,
			Source:      article.Source.Name,
			PublishedAt: article.PublishedAt,
		})
	}
	return articles, nil
}

// scrapeGoogleNews is the no-API-key fallback for company news.
func (s *WebIntelSource) scrapeGoogleNews(ctx context.Context, query string, maxArticles int) ([]types.NewsItem, error) {
	searchURL := s.googleNewsURL + "/search?q=" + url.QueryEscape(query+" news") + "&hl=en-US&gl=US&ceid=US:en"

	doc, err := s.fetcher.Document(ctx, searchURL, nil)
	if err != nil {
		return nil, err
	}

	var articles []types.NewsItem
	doc.Find("article").EachWithBreak(func(_ int, article *goquery.Selection) bool {
		title := strings.TrimSpace(article.Find("h3").First().Text())
		href, _ := article.Find("a").First().Attr("href")
		if title == "" || href == "" {
			return true
		}

		item := types.NewsItem{
			Title:  title,
			URL:    s.googleNewsURL + strings.TrimPrefix(href, "."),
			Source: "Google News",
		}
		item.PublishedAt, _ = article.Find("time").First().Attr("datetime")

		articles = append(articles, item)
		return len(articles) < maxArticles
	})

	return articles, nil
}

// HiringSignals counts a company's open positions from a public jobs search.
func (s *WebIntelSource) HiringSignals(ctx context.Context, companyName string) (*types.HiringSignals, error) {
	searchURL := s.jobsSearchURL + "?keywords=" + url.QueryEscape(companyName)

	doc, err := s.fetcher.Document(ctx, searchURL, nil)
	if err != nil {
		return nil, err
	}

	cards := doc.Find(`div[class*="job-search-card"]`)
	signals := &types.HiringSignals{
		IsHiring:      cards.Length() > 0,
		OpenPositions: cards.Length(),
	}

	cards.EachWithBreak(func(_ int, card *goquery.Selection) bool {
		title := strings.TrimSpace(card.Find(`h3[class*="job-search-card__title"]`).First().Text())
		if title != "" {
			signals.RecentPostings = append(signals.RecentPostings, types.JobPosting{
				Title:    title,
				Location: strings.TrimSpace(card.Find(`span[class*="job-search-card__location"]`).First().Text()),
			})
		}
		return len(signals.RecentPostings) < maxSampledPostings
	})

	return signals, nil
}

// FundingInfo looks for recent funding announcements in company news.
// Returns nil when no funding-related articles are found.
func (s *WebIntelSource) FundingInfo(ctx context.Context, companyName string) (*types.FundingSignal, error) {
	query := companyName + " funding Series raise investment"
	news, err := s.CompanyNews(ctx, query, fundingNewsDaysBack, fundingNewsMaxArticles)
	if err != nil {
		return nil, err
	}

	var fundingNews []types.NewsItem
	for _, article := range news {
		title := strings.ToLower(article.Title)
		for _, keyword := range fundingKeywords {
			if strings.Contains(title, keyword) {
				fundingNews = append(fundingNews, article)
				break
			}
		}
	}

	if len(fundingNews) == 0 {
		return nil, nil
	}

	return &types.FundingSignal{
		Articles:       fundingNews,
		SignalStrength: "high",
	}, nil
}

// WebsiteInfo scrapes title and description metadata from a company website.
func (s *WebIntelSource) WebsiteInfo(ctx context.Context, websiteURL string) (*types.WebsiteInfo, error) {
	doc, err := s.fetcher.Document(ctx, websiteURL, nil)
	if err != nil {
		return nil, err
	}

	info := &types.WebsiteInfo{
		URL:   websiteURL,
		Title: strings.TrimSpace(doc.Find("title").First().Text()),
	}
	info.Description, _ = doc.Find(`meta[name="description"]`).First().Attr("content")

	return info, nil
}

// Gather runs all intelligence sources concurrently and combines them into
// one bundle with the trigger score computed. A source that fails logs and
// contributes nothing; only context cancellation aborts the gather.
func (s *WebIntelSource) Gather(ctx context.Context, companyName, website string) (*types.OrgIntelligence, error) {
	intel := &types.OrgIntelligence{
		CompanyName: companyName,
		Website:     website,
		EnrichedAt:  time.Now().UTC(),
	}

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		news, err := s.CompanyNews(groupCtx, companyName, DefaultNewsDaysBack, DefaultNewsMaxArticles)
		if err != nil {
			log.Printf("[enrich] company news failed for %s: %v", companyName, err)
			return nil
		}
		intel.RecentNews = news
		return nil
	})

	group.Go(func() error {
		hiring, err := s.HiringSignals(groupCtx, companyName)
		if err != nil {
			log.Printf("[enrich] hiring signals failed for %s: %v", companyName, err)
			return nil
		}
		intel.Hiring = hiring
		return nil
	})

	group.Go(func() error {
		funding, err := s.FundingInfo(groupCtx, companyName)
		if err != nil {
			log.Printf("[enrich] funding info failed for %s: %v", companyName, err)
			return nil
		}
		intel.Funding = funding
		return nil
	})

	if website != "" {
		group.Go(func() error {
			info, err := s.WebsiteInfo(groupCtx, website)
			if err != nil {
				log.Printf("[enrich] website info failed for %s: %v", website, err)
				return nil
			}
			intel.WebsiteInfo = info
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	intel.TriggerScore = ComputeTriggerScore(intel)
	return intel, nil
}

// ComputeTriggerScore sums the outreach trigger contributions: funding
// detected, more than five open positions, more than five recent news items.
func ComputeTriggerScore(intel *types.OrgIntelligence) float64 {
	score := 0.0
	if intel.Funding != nil {
		score += TriggerWeightFunding
	}
	if intel.Hiring != nil && intel.Hiring.OpenPositions > hiringTriggerMin {
		score += TriggerWeightHiring
	}
	if len(intel.RecentNews) > newsTriggerMin {
		score += TriggerWeightNews
	}
	return score
}
