// Package youtube is a typed client for the YouTube Data API v3 covering
// the two read operations this service needs: video search and video
// detail lookup. Failures are classified into transient and permanent
// upstream errors; transient ones are retried with bounded backoff.
package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"ytmcp/internal/model"
	"ytmcp/internal/retry"
)

const (
	defaultBaseURL   = "https://www.googleapis.com/youtube/v3"
	searchMaxResults = "10"
	maxResponseBytes = 4 << 20
)

// Client calls the Data API with a single static key. The embedded
// http.Client's transport pools connections; Client itself holds no
// per-call state and is safe for concurrent use.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	policy     retry.Policy
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API base URL (tests).
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithRetryPolicy sets the retry policy for transient failures.
func WithRetryPolicy(p retry.Policy) Option {
	return func(c *Client) { c.policy = p }
}

// NewClient creates a Data API client. apiKey must be non-empty; the
// config layer enforces that before the process serves anything.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:     strings.TrimSpace(apiKey),
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Search returns one page of video results for query. pageToken, when
// non-empty, is forwarded upstream verbatim; the returned tokens are
// likewise opaque.
func (c *Client) Search(ctx context.Context, query, pageToken string) (model.SearchPage, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return model.SearchPage{}, errors.New("query must not be empty")
	}

	q := url.Values{}
	q.Set("part", "snippet")
	q.Set("type", "video")
	q.Set("order", "relevance")
	q.Set("maxResults", searchMaxResults)
	q.Set("q", query)
	if pageToken != "" {
		q.Set("pageToken", pageToken)
	}

	var resp struct {
		Items []struct {
			ID struct {
				VideoID string `json:"videoId"`
			} `json:"id"`
			Snippet struct {
				Title        string `json:"title"`
				Description  string `json:"description"`
				ChannelTitle string `json:"channelTitle"`
				PublishedAt  string `json:"publishedAt"`
			} `json:"snippet"`
		} `json:"items"`
		NextPageToken string `json:"nextPageToken"`
		PrevPageToken string `json:"prevPageToken"`
	}
	if err := c.getJSON(ctx, "/search", q, &resp); err != nil {
		return model.SearchPage{}, err
	}

	page := model.SearchPage{
		Items:         make([]model.SearchItem, 0, len(resp.Items)),
		NextPageToken: resp.NextPageToken,
		PrevPageToken: resp.PrevPageToken,
	}
	for _, it := range resp.Items {
		page.Items = append(page.Items, model.SearchItem{
			VideoID:      it.ID.VideoID,
			Title:        it.Snippet.Title,
			Description:  it.Snippet.Description,
			ChannelTitle: it.Snippet.ChannelTitle,
			PublishedAt:  it.Snippet.PublishedAt,
		})
	}
	return page, nil
}

// Videos looks up the requested parts for each id. Ids unknown upstream
// are simply absent from the result map. When contentDetails is among the
// parts, its ISO-8601 duration is additionally parsed into a
// durationSeconds field.
func (c *Client) Videos(ctx context.Context, ids, parts []string) (map[string]model.Video, error) {
	if len(ids) == 0 {
		return nil, errors.New("ids must not be empty")
	}
	if len(parts) == 0 {
		parts = []string{"snippet"}
	}

	q := url.Values{}
	q.Set("part", strings.Join(parts, ","))
	q.Set("id", strings.Join(ids, ","))

	var resp struct {
		Items []map[string]any `json:"items"`
	}
	if err := c.getJSON(ctx, "/videos", q, &resp); err != nil {
		return nil, err
	}

	out := make(map[string]model.Video, len(resp.Items))
	for _, item := range resp.Items {
		id, _ := item["id"].(string)
		if id == "" {
			continue
		}
		video := make(model.Video, len(parts))
		for _, part := range parts {
			data, ok := item[part]
			if !ok {
				continue
			}
			if part == "contentDetails" {
				data = withDurationSeconds(data)
			}
			video[part] = data
		}
		out[id] = video
	}
	return out, nil
}

// withDurationSeconds adds a parsed durationSeconds field next to the
// upstream ISO-8601 duration string.
func withDurationSeconds(data any) any {
	details, ok := data.(map[string]any)
	if !ok {
		return data
	}
	iso, _ := details["duration"].(string)
	details["durationSeconds"] = ParseISODuration(iso)
	return details
}

func (c *Client) getJSON(ctx context.Context, endpoint string, q url.Values, out any) error {
	return retry.Do(ctx, c.policy, func(ctx context.Context) error {
		return c.roundTrip(ctx, endpoint, q, out)
	})
}

func (c *Client) roundTrip(ctx context.Context, endpoint string, q url.Values, out any) error {
	q = cloneValues(q)
	q.Set("key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return &model.UpstreamError{
			Code:      "NETWORK",
			Message:   "youtube api unreachable",
			Retryable: true,
			Cause:     err,
		}
	}
	defer func() { _ = res.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(res.Body, maxResponseBytes))
	if err != nil {
		return &model.UpstreamError{
			Code:      "NETWORK",
			Message:   "reading youtube api response failed",
			Retryable: true,
			Cause:     err,
		}
	}
	if res.StatusCode != http.StatusOK {
		return classifyStatus(res.StatusCode, body)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &model.UpstreamError{
			Code:       "BAD_RESPONSE",
			Message:    "youtube api returned a malformed response",
			StatusCode: res.StatusCode,
			Cause:      err,
		}
	}
	return nil
}

// classifyStatus maps an error status to the transient/permanent taxonomy.
// The message comes from the structured error body when one is present;
// raw bodies are never echoed to callers.
func classifyStatus(status int, body []byte) *model.UpstreamError {
	var apiErr struct {
		Error struct {
			Message string `json:"message"`
			Errors  []struct {
				Reason string `json:"reason"`
			} `json:"errors"`
		} `json:"error"`
	}
	_ = json.Unmarshal(body, &apiErr)

	reason := ""
	if len(apiErr.Error.Errors) > 0 {
		reason = apiErr.Error.Errors[0].Reason
	}
	message := apiErr.Error.Message

	switch {
	case status == http.StatusForbidden && (reason == "quotaExceeded" || reason == "dailyLimitExceeded"):
		return upstreamErr("QUOTA_EXCEEDED", message, "youtube api quota exceeded", status, false)
	case status == http.StatusBadRequest && reason == "keyInvalid",
		status == http.StatusUnauthorized:
		return upstreamErr("API_KEY_INVALID", message, "youtube api key rejected", status, false)
	case status == http.StatusNotFound:
		return upstreamErr("NOT_FOUND", message, "requested resource not found", status, false)
	case status == http.StatusTooManyRequests || status >= 500:
		return upstreamErr("SERVER_ERROR", message, "youtube api temporarily unavailable", status, true)
	default:
		return upstreamErr("REQUEST_REJECTED", message, fmt.Sprintf("youtube api rejected the request (status %d)", status), status, false)
	}
}

func upstreamErr(code, message, fallback string, status int, retryable bool) *model.UpstreamError {
	if message == "" {
		message = fallback
	}
	return &model.UpstreamError{
		Code:       code,
		Message:    message,
		Retryable:  retryable,
		StatusCode: status,
	}
}

func cloneValues(q url.Values) url.Values {
	out := make(url.Values, len(q)+1)
	for k, vs := range q {
		out[k] = append([]string(nil), vs...)
	}
	return out
}
