// Package model holds the domain types shared by the adapters, the tool
// handlers, and the dispatcher, plus the error values that cross package
// boundaries.
package model

// SearchItem is one video snippet returned by a search.
type SearchItem struct {
	VideoID      string `json:"videoId"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	ChannelTitle string `json:"channelTitle"`
	PublishedAt  string `json:"publishedAt"`
}

// SearchPage is one page of search results. The pagination tokens are
// opaque upstream strings, forwarded verbatim and never parsed locally.
type SearchPage struct {
	Items         []SearchItem
	NextPageToken string
	PrevPageToken string
}

// Video is the per-part data for one video, keyed by part name
// ("snippet", "contentDetails", ...). Values hold the upstream structure
// as decoded JSON.
type Video map[string]any

// Track is one transcript track available for a video. Generated marks
// automatic speech-to-text captions as opposed to human-authored ones.
// BaseURL is the opaque handle used to fetch the track's segments.
type Track struct {
	Language     string
	LanguageName string
	Generated    bool
	BaseURL      string
}

// Segment is one unit of transcript text. Start and Duration are seconds.
type Segment struct {
	Text     string  `json:"text"`
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
}
