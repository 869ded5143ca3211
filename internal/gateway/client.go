// Package gateway reads the academic and evaluation REST APIs the surveys
// screen depends on. Both return JSON envelopes of the form {"data": [...]}.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"backoffice/internal/domain/models"
	"backoffice/internal/utils"
)

// UpstreamError is a non-2xx answer from an upstream API.
type UpstreamError struct {
	Status int
	Text   string
}

func (e UpstreamError) Error() string {
	return fmt.Sprintf("Error %d: %s", e.Status, e.Text)
}

type envelope[T any] struct {
	Data []T `json:"data"`
}

// Client issues authenticated GETs against one upstream API.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// NewClient returns a Client with the given request timeout.
func NewClient(baseURL string, timeout time.Duration) Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: timeout},
	}
}

func (c Client) httpClient() *http.Client {
	if c.HTTP != nil {
		return c.HTTP
	}
	return http.DefaultClient
}

// fetchList GETs path and unwraps the data envelope. The token may still
// carry the quotes it was stored with; they are stripped before use.
func fetchList[T any](ctx context.Context, c Client, path, token string) ([]T, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+utils.StripTokenQuotes(token))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, UpstreamError{Status: resp.StatusCode, Text: http.StatusText(resp.StatusCode)}
	}

	var env envelope[T]
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if env.Data == nil {
		return []T{}, nil
	}
	return env.Data, nil
}

// AcademicAPI lists the groups the caller is enrolled in.
type AcademicAPI struct {
	Client     Client
	GroupsPath string
}

func (a AcademicAPI) ListEnrolledGroups(ctx context.Context, token string) ([]models.Group, error) {
	groups, err := fetchList[models.Group](ctx, a.Client, a.GroupsPath, token)
	if err != nil {
		utils.LogError("", "gateway", "list_groups", err)
		return nil, err
	}
	return groups, nil
}

// EvaluationAPI lists the surveys available to the caller's role.
type EvaluationAPI struct {
	Client      Client
	SurveysPath string
}

func (e EvaluationAPI) ListSurveys(ctx context.Context, token string) ([]models.Survey, error) {
	surveys, err := fetchList[models.Survey](ctx, e.Client, e.SurveysPath, token)
	if err != nil {
		utils.LogError("", "gateway", "list_surveys", err)
		return nil, err
	}
	return surveys, nil
}
