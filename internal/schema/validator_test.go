package schema

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, raw string) any {
	t.Helper()
	var v any
	require.NoError(t, json.Unmarshal([]byte(raw), &v))
	return v
}

func paths(vs []Violation) []string {
	out := make([]string, 0, len(vs))
	for _, v := range vs {
		out = append(out, v.Path)
	}
	return out
}

func TestValidate_RequiredFieldPath(t *testing.T) {
	s, err := Load()
	require.NoError(t, err)
	search, _ := s.Get("search_videos")

	vs := Validate(search.Input, decode(t, `{"pageToken": "abc"}`))
	require.NotEmpty(t, vs)
	assert.Contains(t, paths(vs), "/query")
	assert.Contains(t, vs[0].Message, "query")
}

func TestValidate_WhitespaceOnlyStringsRejected(t *testing.T) {
	s, err := Load()
	require.NoError(t, err)

	search, _ := s.Get("search_videos")
	vs := Validate(search.Input, decode(t, `{"query": "   "}`))
	require.NotEmpty(t, vs, "whitespace-only query passes minLength but not the pattern")
	assert.Contains(t, paths(vs), "/query")

	transcript, _ := s.Get("get_transcript")
	vs = Validate(transcript.Input, decode(t, `{"videoId": " "}`))
	require.NotEmpty(t, vs)
	assert.Contains(t, paths(vs), "/videoId")

	vs = Validate(search.Input, decode(t, `{"query": " cats "}`))
	assert.Empty(t, vs, "surrounding whitespace is fine when content remains")
}

func TestValidate_TypeMismatch(t *testing.T) {
	s, err := Load()
	require.NoError(t, err)
	search, _ := s.Get("search_videos")

	vs := Validate(search.Input, decode(t, `{"query": 42}`))
	require.NotEmpty(t, vs)
	assert.Contains(t, paths(vs), "/query")
}

func TestValidate_EnumViolation(t *testing.T) {
	s, err := Load()
	require.NoError(t, err)
	videos, _ := s.Get("get_videos")

	vs := Validate(videos.Input, decode(t, `{"ids": ["a"], "parts": ["snippet", "thumbnails"]}`))
	require.NotEmpty(t, vs)
	assert.Contains(t, paths(vs), "/parts/1")
}

func TestValidate_ArrayBound(t *testing.T) {
	s, err := Load()
	require.NoError(t, err)
	videos, _ := s.Get("get_videos")

	ids := make([]string, 51)
	for i := range ids {
		ids[i] = fmt.Sprintf("vid%02d", i)
	}
	raw, err := json.Marshal(map[string]any{"ids": ids})
	require.NoError(t, err)

	vs := Validate(videos.Input, decode(t, string(raw)))
	require.NotEmpty(t, vs)
	assert.Contains(t, paths(vs), "/ids")
	assert.Contains(t, vs[0].Message, "50")
}

func TestValidate_UnknownFieldsPass(t *testing.T) {
	s, err := Load()
	require.NoError(t, err)
	search, _ := s.Get("search_videos")

	vs := Validate(search.Input, decode(t, `{"query": "cats", "debug": true, "verbosity": 3}`))
	assert.Empty(t, vs)
}

func TestValidate_MultipleViolationsReported(t *testing.T) {
	s, err := Load()
	require.NoError(t, err)
	transcript, _ := s.Get("get_transcript")

	vs := Validate(transcript.Input, decode(t, `{"language": "not a language code"}`))
	// missing videoId and a bad language pattern, both reported
	require.GreaterOrEqual(t, len(vs), 2)
	joined := strings.Join(paths(vs), " ")
	assert.Contains(t, joined, "/videoId")
	assert.Contains(t, joined, "/language")
}

func TestValidate_LanguagePattern(t *testing.T) {
	s, err := Load()
	require.NoError(t, err)
	transcript, _ := s.Get("get_transcript")

	for _, ok := range []string{"en", "es", "pt-BR", "zh-Hans"} {
		assert.Empty(t, Validate(transcript.Input, decode(t, `{"videoId": "abc", "language": "`+ok+`"}`)), ok)
	}
	for _, bad := range []string{"e", "english", "en_US"} {
		assert.NotEmpty(t, Validate(transcript.Input, decode(t, `{"videoId": "abc", "language": "`+bad+`"}`)), bad)
	}
}
