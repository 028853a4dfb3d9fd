package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/codesmog/codesmog-go/internal/config"
	"github.com/codesmog/codesmog-go/internal/models"
	"github.com/codesmog/codesmog-go/internal/registry"
)

const githubProviderName = "github"

// GitHubProvider fetches repository activity for a city via the repository
// search API and shapes it into a per-day series.
type GitHubProvider struct {
	httpClient *http.Client
	baseURL    string
	token      string
	maxRetries int
	executor   *Executor
	logger     *logrus.Logger
	now        func() time.Time
}

// NewGitHubProvider creates a GitHub activity provider.
func NewGitHubProvider(cfg config.ProviderConfig, executor *Executor, logger *logrus.Logger) *GitHubProvider {
	return &GitHubProvider{
		httpClient: &http.Client{Timeout: cfg.TimeoutDuration()},
		baseURL:    cfg.BaseURL,
		token:      cfg.Token,
		maxRetries: cfg.MaxRetries,
		executor:   executor,
		logger:     logger,
		now:        time.Now,
	}
}

type repoSearchResponse struct {
	TotalCount int              `json:"total_count"`
	Items      []repoSearchItem `json:"items"`
}

type repoSearchItem struct {
	FullName        string `json:"full_name"`
	CreatedAt       string `json:"created_at"`
	StargazersCount int    `json:"stargazers_count"`
}

// FetchActivity returns exactly one ActivitySample per calendar day in the
// requested window, oldest first.
func (p *GitHubProvider) FetchActivity(ctx context.Context, city registry.City, days int) ([]models.ActivitySample, error) {
	end := p.now().UTC()
	start := end.AddDate(0, 0, -(days - 1))

	query := fmt.Sprintf("location:%q created:%s..%s",
		city.Name, start.Format("2006-01-02"), end.Format("2006-01-02"))
	params := url.Values{}
	params.Set("q", query)
	params.Set("sort", "stars")
	params.Set("per_page", "100")
	requestURL := p.baseURL + "/search/repositories?" + params.Encode()

	header := http.Header{}
	if p.token != "" {
		header.Set("Authorization", "Bearer "+p.token)
	}

	raw, err := Do(ctx, p.executor, p.maxRetries, func(ctx context.Context) (repoSearchResponse, error) {
		var out repoSearchResponse
		if err := requestJSON(ctx, p.httpClient, githubProviderName, http.MethodGet, requestURL, header, &out); err != nil {
			return repoSearchResponse{}, err
		}
		return out, nil
	})
	if err != nil {
		return nil, err
	}

	return p.transform(raw, city, start, days)
}

type dayBucket struct {
	repositories int
	stars        int
}

// transform buckets search results by creation date and emits one sample per
// day in the window.
func (p *GitHubProvider) transform(raw repoSearchResponse, city registry.City, start time.Time, days int) ([]models.ActivitySample, error) {
	buckets := make(map[string]*dayBucket, days)
	for _, item := range raw.Items {
		created, err := time.Parse(time.RFC3339, item.CreatedAt)
		if err != nil {
			return nil, &InvalidResponseError{
				Provider: githubProviderName,
				Reason:   fmt.Sprintf("unparseable created_at %q for %s", item.CreatedAt, item.FullName),
				Err:      err,
			}
		}
		day := created.UTC().Format("2006-01-02")
		b, ok := buckets[day]
		if !ok {
			b = &dayBucket{}
			buckets[day] = b
		}
		b.repositories++
		b.stars += item.StargazersCount
	}

	samples := make([]models.ActivitySample, 0, days)
	for i := 0; i < days; i++ {
		day := start.AddDate(0, 0, i).Format("2006-01-02")
		bucket := buckets[day]
		if bucket == nil {
			bucket = &dayBucket{}
		}
		samples = append(samples, models.ActivitySample{
			Date:         day,
			City:         city.Slug,
			Commits:      estimateDailyCommits(bucket.repositories, bucket.stars),
			Stars:        bucket.stars,
			Repositories: bucket.repositories,
			Contributors: estimateContributors(bucket.repositories),
		})
	}
	return samples, nil
}

// estimateDailyCommits approximates a day's commit volume from the number of
// repositories created and their stars. The search API exposes no per-day
// commit totals; this is a documented approximation, replaceable with a real
// commit-statistics endpoint without touching correlation logic.
func estimateDailyCommits(repositories, stars int) int {
	return repositories*12 + stars/2
}

// estimateContributors approximates active contributors as a fixed multiple
// of repository count.
func estimateContributors(repositories int) int {
	return repositories * 3
}
