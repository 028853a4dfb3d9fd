package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codesmog/codesmog-go/internal/config"
	"github.com/codesmog/codesmog-go/internal/registry"
)

var berlin = registry.City{
	Slug: "berlin", Name: "Berlin", Country: "Germany",
	Lat: 52.52, Lng: 13.405, BaselineAQI: 40,
}

func providerConfig(baseURL string) config.ProviderConfig {
	return config.ProviderConfig{
		BaseURL:     baseURL,
		MaxRequests: 100,
		Window:      "1h",
		RetryAfter:  "1s",
		Timeout:     "5s",
		MaxRetries:  0,
	}
}

func newGitHubTestProvider(t *testing.T, handler http.HandlerFunc) *GitHubProvider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := providerConfig(srv.URL)
	exec := NewExecutor("github", Limits{MaxRequests: 100, Window: time.Hour, RetryAfter: time.Second}, quietLogger(), nil)
	p := NewGitHubProvider(cfg, exec, quietLogger())
	p.now = func() time.Time { return time.Date(2026, time.August, 7, 10, 0, 0, 0, time.UTC) }
	return p
}

func TestGitHubFetchActivity_BucketsByCreationDate(t *testing.T) {
	var gotQuery string
	p := newGitHubTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		fmt.Fprint(w, `{
			"total_count": 3,
			"items": [
				{"full_name": "a/one", "created_at": "2026-08-05T08:00:00Z", "stargazers_count": 10},
				{"full_name": "a/two", "created_at": "2026-08-05T19:30:00Z", "stargazers_count": 4},
				{"full_name": "b/three", "created_at": "2026-08-07T01:00:00Z", "stargazers_count": 0}
			]
		}`)
	})

	samples, err := p.FetchActivity(context.Background(), berlin, 7)

	require.NoError(t, err)
	require.Len(t, samples, 7)
	assert.Contains(t, gotQuery, `location:"Berlin"`)
	assert.Contains(t, gotQuery, "created:2026-08-01..2026-08-07")

	assert.Equal(t, "2026-08-01", samples[0].Date)
	assert.Equal(t, "2026-08-07", samples[6].Date)

	// two repos with 14 combined stars on the 5th
	fifth := samples[4]
	assert.Equal(t, "2026-08-05", fifth.Date)
	assert.Equal(t, 2, fifth.Repositories)
	assert.Equal(t, 14, fifth.Stars)
	assert.Equal(t, 2*12+14/2, fifth.Commits)
	assert.Equal(t, 6, fifth.Contributors)

	// empty days still yield a zeroed sample
	assert.Equal(t, 0, samples[1].Repositories)
	assert.Equal(t, 0, samples[1].Commits)
	assert.Equal(t, "berlin", samples[1].City)
}

func TestGitHubFetchActivity_SendsBearerToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		fmt.Fprint(w, `{"total_count": 0, "items": []}`)
	}))
	t.Cleanup(srv.Close)

	cfg := providerConfig(srv.URL)
	cfg.Token = "ghp_secret"
	exec := NewExecutor("github", Limits{MaxRequests: 100, Window: time.Hour, RetryAfter: time.Second}, quietLogger(), nil)
	p := NewGitHubProvider(cfg, exec, quietLogger())

	_, err := p.FetchActivity(context.Background(), berlin, 7)

	require.NoError(t, err)
	assert.Equal(t, "Bearer ghp_secret", gotAuth)
}

func TestGitHubFetchActivity_AuthFailure(t *testing.T) {
	p := newGitHubTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := p.FetchActivity(context.Background(), berlin, 7)

	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, "github", authErr.Provider)
	assert.Equal(t, http.StatusUnauthorized, authErr.StatusCode)
}

func TestGitHubFetchActivity_ServerErrorExhaustsRetries(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	cfg := providerConfig(srv.URL)
	cfg.MaxRetries = 2
	exec := NewExecutor("github", Limits{MaxRequests: 100, Window: time.Hour, RetryAfter: time.Second}, quietLogger(), nil)
	exec.sleep = func(context.Context, time.Duration) error { return nil }
	p := NewGitHubProvider(cfg, exec, quietLogger())

	_, err := p.FetchActivity(context.Background(), berlin, 7)

	assert.Equal(t, 3, calls)
	var exhausted *ExhaustedRetriesError
	require.ErrorAs(t, err, &exhausted)
	var transient *TransientError
	assert.ErrorAs(t, exhausted.Last, &transient)
}

func TestGitHubFetchActivity_UnparseableDateIsInvalidResponse(t *testing.T) {
	p := newGitHubTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"total_count": 1, "items": [{"full_name": "a/b", "created_at": "yesterday", "stargazers_count": 1}]}`)
	})

	_, err := p.FetchActivity(context.Background(), berlin, 7)

	var invalid *InvalidResponseError
	require.ErrorAs(t, err, &invalid)
	assert.Contains(t, invalid.Reason, "created_at")
}

func TestGitHubFetchActivity_MalformedJSON(t *testing.T) {
	p := newGitHubTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"total_count": `)
	})

	_, err := p.FetchActivity(context.Background(), berlin, 7)

	var invalid *InvalidResponseError
	require.ErrorAs(t, err, &invalid)
}
