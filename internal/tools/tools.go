// Package tools binds the YouTube adapters to the dispatcher. Each
// handler decodes its already-validated arguments, calls the adapter,
// and shapes the result to match the tool's declared output schema.
package tools

import (
	"context"
	"fmt"
	"sort"

	"ytmcp/internal/dispatch"
	"ytmcp/internal/model"
	"ytmcp/internal/transcript"
)

// VideoAPI is the slice of the YouTube Data API the video tools need.
type VideoAPI interface {
	Search(ctx context.Context, query, pageToken string) (model.SearchPage, error)
	Videos(ctx context.Context, ids, parts []string) (map[string]model.Video, error)
}

// TranscriptAPI lists a video's caption tracks and fetches one track's
// segments.
type TranscriptAPI interface {
	ListTracks(ctx context.Context, videoID string) ([]model.Track, error)
	FetchSegments(ctx context.Context, track model.Track) ([]model.Segment, error)
}

// Register wires the three YouTube tools into the dispatcher.
func Register(d *dispatch.Dispatcher, videos VideoAPI, transcripts TranscriptAPI) error {
	if err := d.Register("search_videos", SearchVideos(videos)); err != nil {
		return err
	}
	if err := d.Register("get_videos", GetVideos(videos)); err != nil {
		return err
	}
	return d.Register("get_transcript", GetTranscript(transcripts))
}

func stringArg(args map[string]any, key string) string {
	s, _ := args[key].(string)
	return s
}

// stringSliceArg reads a JSON array of strings. Validation has already
// checked the element type, so a non-string element is a pipeline defect.
func stringSliceArg(args map[string]any, key string) ([]string, error) {
	raw, ok := args[key].([]any)
	if !ok {
		return nil, fmt.Errorf("argument %q is not an array", key)
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("argument %q contains a non-string element", key)
		}
		out = append(out, s)
	}
	return out, nil
}

type searchResult struct {
	Items         []model.SearchItem `json:"items"`
	NextPageToken string             `json:"nextPageToken,omitempty"`
	PrevPageToken string             `json:"prevPageToken,omitempty"`
}

// SearchVideos returns the handler for the search_videos tool.
func SearchVideos(api VideoAPI) dispatch.Handler {
	return func(ctx context.Context, args map[string]any) (any, error) {
		page, err := api.Search(ctx, stringArg(args, "query"), stringArg(args, "pageToken"))
		if err != nil {
			return nil, err
		}
		items := page.Items
		if items == nil {
			items = []model.SearchItem{}
		}
		return searchResult{
			Items:         items,
			NextPageToken: page.NextPageToken,
			PrevPageToken: page.PrevPageToken,
		}, nil
	}
}

type videosResult struct {
	Videos map[string]model.Video `json:"videos"`
}

// GetVideos returns the handler for the get_videos tool. IDs the upstream
// does not know are simply absent from the result map.
func GetVideos(api VideoAPI) dispatch.Handler {
	return func(ctx context.Context, args map[string]any) (any, error) {
		ids, err := stringSliceArg(args, "ids")
		if err != nil {
			return nil, err
		}
		parts, err := stringSliceArg(args, "parts")
		if err != nil {
			return nil, err
		}
		videos, err := api.Videos(ctx, ids, parts)
		if err != nil {
			return nil, err
		}
		if videos == nil {
			videos = map[string]model.Video{}
		}
		return videosResult{Videos: videos}, nil
	}
}

type transcriptResult struct {
	VideoID      string          `json:"videoId"`
	LanguageUsed string          `json:"languageUsed"`
	IsGenerated  bool            `json:"isGenerated"`
	Segments     []model.Segment `json:"segments"`
}

// GetTranscript returns the handler for the get_transcript tool. Track
// choice follows Select; a video with no usable track at all yields
// model.ErrTranscriptUnavailable.
func GetTranscript(api TranscriptAPI) dispatch.Handler {
	return func(ctx context.Context, args map[string]any) (any, error) {
		videoID := stringArg(args, "videoId")
		tracks, err := api.ListTracks(ctx, videoID)
		if err != nil {
			return nil, err
		}
		track, ok := transcript.Select(stringArg(args, "language"), tracks)
		if !ok {
			return nil, model.ErrTranscriptUnavailable
		}
		segments, err := api.FetchSegments(ctx, track)
		if err != nil {
			return nil, err
		}
		if segments == nil {
			segments = []model.Segment{}
		}
		// Upstream order is already chronological; sorting keeps the
		// contract even if a track source misbehaves.
		sort.SliceStable(segments, func(i, j int) bool {
			return segments[i].Start < segments[j].Start
		})
		return transcriptResult{
			VideoID:      videoID,
			LanguageUsed: track.Language,
			IsGenerated:  track.Generated,
			Segments:     segments,
		}, nil
	}
}
