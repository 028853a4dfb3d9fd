package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const userAgent = "codesmog-go/1.0"

// requestJSON performs one HTTP request and decodes the JSON body into
// result, classifying failures into the provider error taxonomy: network
// errors and non-auth HTTP errors are transient, 401/403 are auth failures,
// and undecodable bodies are invalid responses.
func requestJSON(ctx context.Context, client *http.Client, provider, method, url string, header http.Header, result interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", provider, err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	for key, values := range header {
		for _, v := range values {
			req.Header.Set(key, v)
		}
	}

	resp, err := client.Do(req)
	if err != nil {
		return &TransientError{Provider: provider, Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransientError{Provider: provider, StatusCode: resp.StatusCode, Err: err}
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return &AuthError{Provider: provider, StatusCode: resp.StatusCode}
	case resp.StatusCode >= 400:
		return &TransientError{
			Provider:   provider,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected response: %s", truncate(string(body), 200)),
		}
	}

	if result != nil {
		if err := json.Unmarshal(body, result); err != nil {
			return &InvalidResponseError{Provider: provider, Reason: "undecodable body", Err: err}
		}
	}

	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
