package youtube

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ytmcp/internal/model"
	"ytmcp/internal/retry"
)

func testPolicy() retry.Policy {
	return retry.Policy{MaxRetries: 2, BaseDelay: time.Millisecond}
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := NewClient("test-key", WithBaseURL(srv.URL), WithRetryPolicy(testPolicy()))
	return c, srv
}

func TestSearch_ForwardsPageTokenVerbatim(t *testing.T) {
	var gotQuery url.Values
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		_ = json.NewEncoder(w).Encode(map[string]any{
			"items": []map[string]any{{
				"id": map[string]any{"kind": "youtube#video", "videoId": "abc123"},
				"snippet": map[string]any{
					"title":        "A video",
					"description":  "About things",
					"channelTitle": "Chan",
					"publishedAt":  "2024-01-02T03:04:05Z",
				},
			}},
			"nextPageToken": "NEXT_TOKEN",
			"prevPageToken": "PREV_TOKEN",
		})
	})

	page, err := c.Search(context.Background(), "  cats  ", "CAFE==token/with+chars")
	require.NoError(t, err)

	assert.Equal(t, "CAFE==token/with+chars", gotQuery.Get("pageToken"))
	assert.Equal(t, "cats", gotQuery.Get("q"))
	assert.Equal(t, "snippet", gotQuery.Get("part"))
	assert.Equal(t, "video", gotQuery.Get("type"))
	assert.Equal(t, "10", gotQuery.Get("maxResults"))
	assert.Equal(t, "test-key", gotQuery.Get("key"))

	require.Len(t, page.Items, 1)
	assert.Equal(t, model.SearchItem{
		VideoID:      "abc123",
		Title:        "A video",
		Description:  "About things",
		ChannelTitle: "Chan",
		PublishedAt:  "2024-01-02T03:04:05Z",
	}, page.Items[0])
	assert.Equal(t, "NEXT_TOKEN", page.NextPageToken)
	assert.Equal(t, "PREV_TOKEN", page.PrevPageToken)
}

func TestSearch_EmptyQueryNotForwarded(t *testing.T) {
	calls := 0
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
	})
	_, err := c.Search(context.Background(), "   ", "")
	require.Error(t, err)
	assert.Zero(t, calls)
}

func TestSearch_QuotaExceededIsPermanent(t *testing.T) {
	calls := 0
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error": {"message": "Quota exceeded for quota metric", "errors": [{"reason": "quotaExceeded"}]}}`))
	})

	_, err := c.Search(context.Background(), "cats", "")
	require.Error(t, err)
	var ue *model.UpstreamError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, "QUOTA_EXCEEDED", ue.Code)
	assert.False(t, ue.Retryable)
	assert.Equal(t, 1, calls, "permanent failures must not be retried")
}

func TestSearch_ServerErrorRetried(t *testing.T) {
	calls := 0
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"items": []any{}})
	})

	page, err := c.Search(context.Background(), "cats", "")
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Equal(t, 3, calls)
}

func TestVideos_JoinsIDsAndParts(t *testing.T) {
	var gotQuery url.Values
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		_ = json.NewEncoder(w).Encode(map[string]any{
			"items": []map[string]any{
				{
					"id":      "vid1",
					"snippet": map[string]any{"title": "One"},
					"contentDetails": map[string]any{
						"duration": "PT1H2M30S",
					},
				},
				{
					"id":      "vid2",
					"snippet": map[string]any{"title": "Two"},
				},
			},
		})
	})

	videos, err := c.Videos(context.Background(), []string{"vid1", "vid2", "missing"}, []string{"snippet", "contentDetails"})
	require.NoError(t, err)

	assert.Equal(t, "vid1,vid2,missing", gotQuery.Get("id"))
	assert.Equal(t, "snippet,contentDetails", gotQuery.Get("part"))

	require.Len(t, videos, 2)
	assert.NotContains(t, videos, "missing", "ids unknown upstream are absent, not an error")

	details, ok := videos["vid1"]["contentDetails"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 3750, details["durationSeconds"])

	_, hasDetails := videos["vid2"]["contentDetails"]
	assert.False(t, hasDetails, "parts the upstream omitted stay absent")
}

func TestVideos_InvalidKeyIsPermanent(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error": {"message": "API key not valid", "errors": [{"reason": "keyInvalid"}]}}`))
	})

	_, err := c.Videos(context.Background(), []string{"a"}, nil)
	var ue *model.UpstreamError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, "API_KEY_INVALID", ue.Code)
	assert.False(t, ue.Retryable)
	assert.Equal(t, "API key not valid", ue.Message)
}

func TestParseISODuration(t *testing.T) {
	cases := map[string]int{
		"PT4M13S":   253,
		"PT1H2M30S": 3750,
		"PT45S":     45,
		"PT2H":      7200,
		"PT0S":      0,
		"":          0,
		"4M13S":     0,
		"bogus":     0,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseISODuration(in), in)
	}
}
