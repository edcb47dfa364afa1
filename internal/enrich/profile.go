// Package enrich gathers external context for leads before generation:
// public profile data, recent activity, and company intelligence.
package enrich

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonathan/outreach-architect/internal/fetch"
	"github.com/jonathan/outreach-architect/internal/types"
)

// DefaultActivityLimit caps how many recent activity items are collected.
const DefaultActivityLimit = 10

// maxProfileSkills caps how many skills are kept from a profile page.
const maxProfileSkills = 10

// ProfileSource fetches public profile data for a lead.
type ProfileSource interface {
	// FetchProfile scrapes the lead's public profile page.
	FetchProfile(ctx context.Context, profileURL string) (*types.ProfileSnapshot, error)
	// FetchRecentActivity retrieves up to limit recent posts.
	FetchRecentActivity(ctx context.Context, profileURL string, limit int) ([]types.ActivityItem, error)
}

// WebProfileSource scrapes public profile pages over HTTP, optionally
// falling back to headless browser rendering for client-rendered pages.
type WebProfileSource struct {
	fetcher    *fetch.Fetcher
	useBrowser bool
	verbose    bool
}

// NewWebProfileSource creates a profile source backed by the shared fetcher.
func NewWebProfileSource(fetcher *fetch.Fetcher, useBrowser, verbose bool) *WebProfileSource {
	return &WebProfileSource{fetcher: fetcher, useBrowser: useBrowser, verbose: verbose}
}

// NormalizeProfileURL expands a bare profile slug into a full URL.
func NormalizeProfileURL(profileURL string) string {
	if strings.HasPrefix(profileURL, "http") {
		return profileURL
	}
	return "https://www.linkedin.com/in/" + profileURL
}

// FetchProfile scrapes a public profile page into a snapshot. Fields that
// cannot be found are left empty.
func (s *WebProfileSource) FetchProfile(ctx context.Context, profileURL string) (*types.ProfileSnapshot, error) {
	profileURL = NormalizeProfileURL(profileURL)

	doc, err := s.document(ctx, profileURL)
	if err != nil {
		return nil, err
	}

	return s.parseProfile(doc, profileURL), nil
}

// document fetches a page and parses it, switching to browser rendering when
// the plain HTTP response looks like an unrendered SPA shell.
func (s *WebProfileSource) document(ctx context.Context, urlStr string) (*goquery.Document, error) {
	result, err := s.fetcher.URL(ctx, urlStr, nil)
	if err != nil {
		return nil, err
	}

	html := result.HTML
	if s.useBrowser && fetch.ShouldUseBrowser(result.Text) {
		rendered, berr := fetch.BrowserSimple(ctx, urlStr, s.verbose)
		if berr != nil {
			log.Printf("[enrich] browser fallback failed for %s, keeping HTTP content: %v", urlStr, berr)
		} else {
			html = rendered
		}
	}

	return goquery.NewDocumentFromReader(strings.NewReader(html))
}

func (s *WebProfileSource) parseProfile(doc *goquery.Document, profileURL string) *types.ProfileSnapshot {
	snapshot := &types.ProfileSnapshot{
		ProfileURL: profileURL,
		ScrapedAt:  time.Now().UTC(),
	}

	snapshot.Name = firstText(doc, `h1[class*="text-heading-xlarge"], h1[class*="top-card-layout__title"]`)
	snapshot.Headline = firstText(doc, `div[class*="text-body-medium"], div[class*="top-card-layout__headline"]`)
	snapshot.Location = firstText(doc, `span[class*="top-card__subline-item"], span[class*="text-body-small"]`)
	snapshot.About = firstText(doc, `div[class*="core-section-container__content"], div[class*="about-section"]`)

	// Current role comes from the first experience entry
	experience := doc.Find(`section[id*="experience"] li`).First()
	if experience.Length() > 0 {
		snapshot.JobTitle = strings.TrimSpace(experience.Find(`div[class*="t-bold"]`).First().Text())
		snapshot.Company = strings.TrimSpace(experience.Find(`span[class*="t-normal"]`).First().Text())
	}

	doc.Find(`section[id*="skills"] span[class*="skill-name"]`).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		skill := strings.TrimSpace(sel.Text())
		if skill != "" {
			snapshot.Skills = append(snapshot.Skills, skill)
		}
		return len(snapshot.Skills) < maxProfileSkills
	})

	return snapshot
}

// FetchRecentActivity retrieves a lead's recent posts from the public
// activity feed. A page with no recognizable posts yields an empty slice.
func (s *WebProfileSource) FetchRecentActivity(ctx context.Context, profileURL string, limit int) ([]types.ActivityItem, error) {
	if limit <= 0 {
		limit = DefaultActivityLimit
	}

	profileURL = NormalizeProfileURL(profileURL)
	activityURL := strings.TrimSuffix(profileURL, "/") + "/recent-activity/all/"

	doc, err := s.document(ctx, activityURL)
	if err != nil {
		return nil, err
	}

	var activities []types.ActivityItem
	doc.Find(`div[class*="feed-shared-update-v2"]`).EachWithBreak(func(_ int, post *goquery.Selection) bool {
		item := types.ActivityItem{Type: "post"}
		item.Content = strings.TrimSpace(post.Find(`div[class*="feed-shared-text"]`).First().Text())
		item.PostedAt, _ = post.Find("time").First().Attr("datetime")

		item.Likes = strings.TrimSpace(post.Find(`span[class*="social-details-social-counts__reactions-count"]`).First().Text())
		if item.Likes == "" {
			item.Likes = "0"
		}
		item.Comments = strings.TrimSpace(post.Find(`button[class*="social-details-social-counts__comments"]`).First().Text())
		if item.Comments == "" {
			item.Comments = "0"
		}

		activities = append(activities, item)
		return len(activities) < limit
	})

	return activities, nil
}

// firstText returns the trimmed text of the first match for a selector.
func firstText(doc *goquery.Document, selector string) string {
	return strings.TrimSpace(doc.Find(selector).First().Text())
}
