// Package transcript talks to YouTube's caption backend: it lists the
// transcript tracks a video offers and fetches a chosen track's timed
// text. No credential is needed; the track list is scraped from the watch
// page's player response, the way the common transcript extractors do it.
package transcript

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"strings"

	"ytmcp/internal/model"
	"ytmcp/internal/retry"
)

const (
	defaultWatchBaseURL = "https://www.youtube.com"
	maxPageBytes        = 8 << 20
)

// Client fetches caption data over a pooled HTTP client; it is safe for
// concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	policy     retry.Policy
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the watch-page base URL (tests).
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

// NewClient creates a caption backend client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL:    defaultWatchBaseURL,
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// captionTrack is the watch page's JSON shape for one track.
type captionTrack struct {
	BaseURL string `json:"baseUrl"`
	Name    struct {
		SimpleText string `json:"simpleText"`
	} `json:"name"`
	LanguageCode string `json:"languageCode"`
	Kind         string `json:"kind"` // "asr" marks auto-generated tracks
}

// ListTracks returns the transcript tracks available for a video. An empty
// slice means captions are disabled for the video; an unavailable video is
// a permanent upstream error.
func (c *Client) ListTracks(ctx context.Context, videoID string) ([]model.Track, error) {
	videoID = strings.TrimSpace(videoID)
	if videoID == "" {
		return nil, errors.New("videoId must not be empty")
	}

	var page []byte
	err := retry.Do(ctx, c.policy, func(ctx context.Context) error {
		var err error
		page, err = c.get(ctx, c.baseURL+"/watch?v="+videoID)
		return err
	})
	if err != nil {
		return nil, err
	}

	if unavailable(page) {
		return nil, &model.UpstreamError{
			Code:    "VIDEO_UNAVAILABLE",
			Message: fmt.Sprintf("video %s is unavailable or does not exist", videoID),
		}
	}

	raw, ok := jsonArrayAfter(page, `"captionTracks":`)
	if !ok {
		// No caption data in the player response: transcripts disabled.
		return nil, nil
	}
	var parsed []captionTrack
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, &model.UpstreamError{
			Code:    "BAD_RESPONSE",
			Message: "caption track list could not be parsed",
			Cause:   err,
		}
	}

	tracks := make([]model.Track, 0, len(parsed))
	for _, t := range parsed {
		if t.BaseURL == "" || t.LanguageCode == "" {
			continue
		}
		tracks = append(tracks, model.Track{
			Language:     t.LanguageCode,
			LanguageName: t.Name.SimpleText,
			Generated:    t.Kind == "asr",
			BaseURL:      t.BaseURL,
		})
	}
	return tracks, nil
}

// timedText is the caption endpoint's XML document.
type timedText struct {
	XMLName xml.Name `xml:"transcript"`
	Texts   []struct {
		Start float64 `xml:"start,attr"`
		Dur   float64 `xml:"dur,attr"`
		Body  string  `xml:",chardata"`
	} `xml:"text"`
}

// FetchSegments downloads and decodes the timed text behind a track's
// opaque handle. Segments come back in upstream order; callers that need
// start-offset order sort for themselves.
func (c *Client) FetchSegments(ctx context.Context, track model.Track) ([]model.Segment, error) {
	if track.BaseURL == "" {
		return nil, errors.New("track has no fetch handle")
	}

	var body []byte
	err := retry.Do(ctx, c.policy, func(ctx context.Context) error {
		var err error
		body, err = c.get(ctx, track.BaseURL)
		return err
	})
	if err != nil {
		return nil, err
	}

	var doc timedText
	if err := xml.Unmarshal(body, &doc); err != nil {
		return nil, &model.UpstreamError{
			Code:    "BAD_RESPONSE",
			Message: "timed text document could not be parsed",
			Cause:   err,
		}
	}

	segments := make([]model.Segment, 0, len(doc.Texts))
	for _, t := range doc.Texts {
		text := strings.TrimSpace(html.UnescapeString(t.Body))
		if text == "" {
			continue
		}
		segments = append(segments, model.Segment{
			Text:     text,
			Start:    t.Start,
			Duration: t.Dur,
		})
	}
	return segments, nil
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept-Language", "en-US,en")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &model.UpstreamError{
			Code:      "NETWORK",
			Message:   "caption backend unreachable",
			Retryable: true,
			Cause:     err,
		}
	}
	defer func() { _ = res.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(res.Body, maxPageBytes))
	if err != nil {
		return nil, &model.UpstreamError{
			Code:      "NETWORK",
			Message:   "reading caption backend response failed",
			Retryable: true,
			Cause:     err,
		}
	}
	switch {
	case res.StatusCode == http.StatusOK:
		return body, nil
	case res.StatusCode == http.StatusTooManyRequests || res.StatusCode >= 500:
		return nil, &model.UpstreamError{
			Code:       "SERVER_ERROR",
			Message:    "caption backend temporarily unavailable",
			Retryable:  true,
			StatusCode: res.StatusCode,
		}
	default:
		return nil, &model.UpstreamError{
			Code:       "REQUEST_REJECTED",
			Message:    fmt.Sprintf("caption backend rejected the request (status %d)", res.StatusCode),
			StatusCode: res.StatusCode,
		}
	}
}

// unavailable reports whether the player response's playabilityStatus
// object marks the video as erroring. Only that object is inspected; the
// status literal appearing elsewhere in the page (a description, say)
// must not count.
func unavailable(page []byte) bool {
	raw, ok := jsonObjectAfter(page, `"playabilityStatus":`)
	if !ok {
		return false
	}
	var ps struct {
		Status string `json:"status"`
	}
	return json.Unmarshal(raw, &ps) == nil && ps.Status == "ERROR"
}

// jsonArrayAfter extracts the JSON array that follows marker in page.
func jsonArrayAfter(page []byte, marker string) (json.RawMessage, bool) {
	return balancedAfter(page, marker, '[', ']')
}

// jsonObjectAfter extracts the JSON object that follows marker in page.
func jsonObjectAfter(page []byte, marker string) (json.RawMessage, bool) {
	return balancedAfter(page, marker, '{', '}')
}

// balancedAfter extracts the delimited JSON value that follows marker,
// balancing delimiters while skipping string literals and escapes.
func balancedAfter(page []byte, marker string, open, end byte) (json.RawMessage, bool) {
	idx := strings.Index(string(page), marker)
	if idx < 0 {
		return nil, false
	}
	rest := page[idx+len(marker):]
	if len(rest) == 0 || rest[0] != open {
		return nil, false
	}
	depth := 0
	inString := false
	escaped := false
	for i, b := range rest {
		if inString {
			switch {
			case escaped:
				escaped = false
			case b == '\\':
				escaped = true
			case b == '"':
				inString = false
			}
			continue
		}
		switch b {
		case '"':
			inString = true
		case open:
			depth++
		case end:
			depth--
			if depth == 0 {
				return json.RawMessage(rest[:i+1]), true
			}
		}
	}
	return nil, false
}
