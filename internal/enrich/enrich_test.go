package enrich

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/outreach-architect/internal/types"
)

type fakeProfileSource struct {
	profile     *types.ProfileSnapshot
	activity    []types.ActivityItem
	profileErr  error
	activityErr error
	calls       int
}

func (f *fakeProfileSource) FetchProfile(_ context.Context, _ string) (*types.ProfileSnapshot, error) {
	f.calls++
	return f.profile, f.profileErr
}

func (f *fakeProfileSource) FetchRecentActivity(_ context.Context, _ string, _ int) ([]types.ActivityItem, error) {
	return f.activity, f.activityErr
}

type fakeIntelSource struct {
	intel *types.OrgIntelligence
	err   error
	calls int
}

func (f *fakeIntelSource) Gather(_ context.Context, _, _ string) (*types.OrgIntelligence, error) {
	f.calls++
	return f.intel, f.err
}

func TestEnrichLead_AllSources(t *testing.T) {
	profiles := &fakeProfileSource{
		profile:  &types.ProfileSnapshot{Name: "Jane Doe", Headline: "VP Engineering"},
		activity: []types.ActivityItem{{Type: "post", Content: "We shipped"}},
	}
	intel := &fakeIntelSource{
		intel: &types.OrgIntelligence{CompanyName: "Acme", TriggerScore: 0.4},
	}

	enricher := NewEnricher(profiles, intel)
	lead := &types.Lead{
		Name:       "Jane Doe",
		Company:    "Acme",
		ProfileURL: "https://example.com/in/janedoe",
	}

	result, err := enricher.EnrichLead(context.Background(), lead)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", result.Profile.Name)
	require.Len(t, result.RecentActivity, 1)
	assert.Equal(t, "Acme", result.CompanyIntel.CompanyName)
	assert.Equal(t, 1, profiles.calls)
	assert.Equal(t, 1, intel.calls)
}

func TestEnrichLead_NoReferences(t *testing.T) {
	profiles := &fakeProfileSource{}
	intel := &fakeIntelSource{}

	enricher := NewEnricher(profiles, intel)
	lead := &types.Lead{Name: "Nobody Known", Email: "n@example.com"}

	result, err := enricher.EnrichLead(context.Background(), lead)
	require.NoError(t, err)
	assert.Nil(t, result.Profile)
	assert.Nil(t, result.CompanyIntel)
	assert.Empty(t, result.RecentActivity)
	assert.Zero(t, profiles.calls)
	assert.Zero(t, intel.calls)
}

func TestEnrichLead_ProfileFailureIsFatal(t *testing.T) {
	profiles := &fakeProfileSource{profileErr: errors.New("blocked")}
	intel := &fakeIntelSource{intel: &types.OrgIntelligence{CompanyName: "Acme"}}

	enricher := NewEnricher(profiles, intel)
	lead := &types.Lead{Company: "Acme", ProfileURL: "https://example.com/in/x"}

	_, err := enricher.EnrichLead(context.Background(), lead)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "blocked")
}

func TestEnrichLead_ActivityFailureIsTolerated(t *testing.T) {
	profiles := &fakeProfileSource{
		profile:     &types.ProfileSnapshot{Name: "Jane Doe"},
		activityErr: errors.New("feed unavailable"),
	}
	intel := &fakeIntelSource{}

	enricher := NewEnricher(profiles, intel)
	lead := &types.Lead{ProfileURL: "https://example.com/in/janedoe"}

	result, err := enricher.EnrichLead(context.Background(), lead)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", result.Profile.Name)
	assert.Empty(t, result.RecentActivity)
}

func TestEnrichLead_IntelFailureIsFatal(t *testing.T) {
	profiles := &fakeProfileSource{}
	intel := &fakeIntelSource{err: errors.New("news api down")}

	enricher := NewEnricher(profiles, intel)
	lead := &types.Lead{Company: "Acme"}

	_, err := enricher.EnrichLead(context.Background(), lead)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "news api down")
}
