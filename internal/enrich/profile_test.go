package enrich

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/outreach-architect/internal/fetch"
)

const profileFixture = `<html><body>
	<h1 class="text-heading-xlarge">Jane Doe</h1>
	<div class="text-body-medium">VP Engineering at Acme</div>
	<span class="top-card__subline-item">Austin, TX</span>
	<div class="core-section-container__content">Builds platforms.</div>
	<section id="experience-section">
		<li>
			<div class="t-bold">VP Engineering</div>
			<span class="t-normal">Acme Corp</span>
		</li>
	</section>
	<section id="skills-section">
		<span class="skill-name">Go</span>
		<span class="skill-name">Kubernetes</span>
	</section>
</body></html>`

func TestNormalizeProfileURL(t *testing.T) {
	assert.Equal(t, "https://example.com/in/jane", NormalizeProfileURL("https://example.com/in/jane"))
	assert.Equal(t, "https://www.linkedin.com/in/jane", NormalizeProfileURL("jane"))
}

func TestFetchProfile_ParsesFields(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(profileFixture))
	}))
	defer server.Close()

	source := NewWebProfileSource(fetch.NewFetcher(), false, false)
	profile, err := source.FetchProfile(context.Background(), server.URL)
	require.NoError(t, err)

	assert.Equal(t, "Jane Doe", profile.Name)
	assert.Equal(t, "VP Engineering at Acme", profile.Headline)
	assert.Equal(t, "Austin, TX", profile.Location)
	assert.Equal(t, "Builds platforms.", profile.About)
	assert.Equal(t, "VP Engineering", profile.JobTitle)
	assert.Equal(t, "Acme Corp", profile.Company)
	assert.Equal(t, []string{"Go", "Kubernetes"}, profile.Skills)
	assert.False(t, profile.ScrapedAt.IsZero())
}

func TestFetchProfile_EmptyPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html><body></body></html>"))
	}))
	defer server.Close()

	source := NewWebProfileSource(fetch.NewFetcher(), false, false)
	profile, err := source.FetchProfile(context.Background(), server.URL)
	require.NoError(t, err)

	assert.Empty(t, profile.Name)
	assert.Empty(t, profile.Skills)
	assert.Equal(t, server.URL, profile.ProfileURL)
}

func TestFetchProfile_FetchError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	source := NewWebProfileSource(fetch.NewFetcher(), false, false)
	_, err := source.FetchProfile(context.Background(), server.URL)
	require.Error(t, err)

	var fetchErr *fetch.Error
	assert.ErrorAs(t, err, &fetchErr)
}
