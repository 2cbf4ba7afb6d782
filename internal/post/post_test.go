package post

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(n int) *int { return &n }

func TestCategorize(t *testing.T) {
	for n := -3; n < 5; n++ {
		assert.Equal(t, Short, Categorize(n), "n=%d", n)
	}
	for n := 5; n <= 10; n++ {
		assert.Equal(t, Medium, Categorize(n), "n=%d", n)
	}
	for _, n := range []int{11, 12, 15, 100, 1 << 20} {
		assert.Equal(t, Long, Categorize(n), "n=%d", n)
	}
}

func TestCategorizeCount(t *testing.T) {
	assert.Equal(t, Medium, CategorizeCount(nil))
	assert.Equal(t, Short, CategorizeCount(intPtr(2)))
	assert.Equal(t, Long, CategorizeCount(intPtr(11)))
}

func TestParseLineCount(t *testing.T) {
	tests := []struct {
		raw  string
		want *int
	}{
		{`7`, intPtr(7)},
		{`7.9`, intPtr(7)},
		{`"12"`, intPtr(12)},
		{`" 3 "`, intPtr(3)},
		{`"seven"`, nil},
		{`"7.5"`, nil},
		{`null`, nil},
		{`[1]`, nil},
		{`true`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLineCount(json.RawMessage(tt.raw)))
		})
	}
}

func TestLengthFromNonInteger(t *testing.T) {
	meta, err := DecodeMetadata([]byte(`{"line_count": "a few", "language": "English"}`))
	require.NoError(t, err)
	assert.Equal(t, Medium, CategorizeCount(meta.LineCount))
}

func TestDecodeMetadata(t *testing.T) {
	t.Run("full object", func(t *testing.T) {
		meta, err := DecodeMetadata([]byte(`{"line_count": 2, "language": "English", "tags": ["Job Hunting", "Career"]}`))
		require.NoError(t, err)
		assert.Equal(t, intPtr(2), meta.LineCount)
		require.NotNil(t, meta.Language)
		assert.Equal(t, "English", *meta.Language)
		assert.Equal(t, []string{"Job Hunting", "Career"}, meta.Tags)
	})

	t.Run("keeps at most two tags", func(t *testing.T) {
		meta, err := DecodeMetadata([]byte(`{"tags": ["a", "", 3, "b", "c"]}`))
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, meta.Tags)
	})

	t.Run("single string tag", func(t *testing.T) {
		meta, err := DecodeMetadata([]byte(`{"tags": "Motivation"}`))
		require.NoError(t, err)
		assert.Equal(t, []string{"Motivation"}, meta.Tags)
	})

	t.Run("null fields stay absent", func(t *testing.T) {
		meta, err := DecodeMetadata([]byte(`{"line_count": null, "language": null, "tags": null}`))
		require.NoError(t, err)
		assert.True(t, meta.IsEmpty())
	})

	t.Run("not an object", func(t *testing.T) {
		_, err := DecodeMetadata([]byte(`Sure! Here is the JSON`))
		assert.Error(t, err)
	})
}

func TestMetadata_Merge(t *testing.T) {
	lang := "Hinglish"
	base := Metadata{LineCount: intPtr(4), Tags: []string{"Old"}}
	over := Metadata{Language: &lang, Tags: []string{"New"}}

	got := base.Merge(over)
	assert.Equal(t, intPtr(4), got.LineCount)
	assert.Equal(t, &lang, got.Language)
	assert.Equal(t, []string{"New"}, got.Tags)

	assert.Equal(t, base, base.Merge(Metadata{}))
}

func TestRawPost_JSON(t *testing.T) {
	var posts []RawPost
	err := json.Unmarshal([]byte(`[{"text": "Looking for a new job! #grind", "engagement": 120}, {"text": 5}]`), &posts)
	require.NoError(t, err)
	require.Len(t, posts, 2)

	assert.Equal(t, "Looking for a new job! #grind", posts[0].Text)
	assert.JSONEq(t, `120`, string(posts[0].Fields["engagement"]))
	assert.Equal(t, "", posts[1].Text)

	out, err := json.Marshal(posts[0])
	require.NoError(t, err)
	assert.JSONEq(t, `{"text": "Looking for a new job! #grind", "engagement": 120}`, string(out))
}

func TestEnrichedPost_JSON(t *testing.T) {
	t.Run("writes every field", func(t *testing.T) {
		p := EnrichedPost{
			Text:      "Looking for a new job! #grind",
			LineCount: intPtr(2),
			Language:  "English",
			Tags:      []string{"Job Search"},
			Length:    Short,
			Extra:     map[string]json.RawMessage{"engagement": json.RawMessage(`120`)},
		}
		out, err := json.Marshal(p)
		require.NoError(t, err)
		assert.JSONEq(t, `{
			"text": "Looking for a new job! #grind",
			"line_count": 2,
			"language": "English",
			"tags": ["Job Search"],
			"length": "Short",
			"engagement": 120
		}`, string(out))
	})

	t.Run("does not escape html through a plain encoder", func(t *testing.T) {
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		require.NoError(t, enc.Encode(EnrichedPost{Text: "a <b> & c"}))
		assert.Contains(t, buf.String(), `"a <b> & c"`)
		assert.Contains(t, buf.String(), `"tags":[]`)
	})

	t.Run("reads leniently", func(t *testing.T) {
		var p EnrichedPost
		err := json.Unmarshal([]byte(`{"text": "hi", "line_count": "x", "language": 3, "tags": ["A", "B", "C"], "views": 9}`), &p)
		require.NoError(t, err)
		assert.Equal(t, "hi", p.Text)
		assert.Nil(t, p.LineCount)
		assert.Equal(t, "", p.Language)
		assert.Equal(t, []string{"A", "B", "C"}, p.Tags)
		assert.JSONEq(t, `9`, string(p.Extra["views"]))
		assert.True(t, p.HasTag("C"))
		assert.False(t, p.HasTag("D"))
	})
}

func TestRequest_Validate(t *testing.T) {
	t.Run("defaults tone", func(t *testing.T) {
		req := Request{Length: Short, Language: English, Tag: "Job Search"}
		require.NoError(t, req.Validate())
		assert.Equal(t, Professional, req.Tone)
	})

	t.Run("rejects unknown values", func(t *testing.T) {
		cases := []Request{
			{Length: "Huge", Language: English, Tag: "x"},
			{Length: Short, Language: "Klingon", Tag: "x"},
			{Length: Short, Language: English},
			{Length: Short, Language: English, Tag: "x", Tone: "Angry"},
		}
		for _, req := range cases {
			err := req.Validate()
			assert.ErrorIs(t, err, ErrInvalidRequest)
		}
	})
}

func TestParseLength(t *testing.T) {
	l, ok := ParseLength("Long")
	assert.True(t, ok)
	assert.Equal(t, Long, l)

	_, ok = ParseLength("long")
	assert.False(t, ok)
}

func TestExtraFields(t *testing.T) {
	fields := map[string]json.RawMessage{
		"text":       json.RawMessage(`"hi"`),
		"tags":       json.RawMessage(`[]`),
		"engagement": json.RawMessage(`42`),
	}
	extra := ExtraFields(fields)
	assert.Equal(t, map[string]json.RawMessage{"engagement": json.RawMessage(`42`)}, extra)
	assert.Len(t, fields, 3)

	assert.Nil(t, ExtraFields(map[string]json.RawMessage{"text": json.RawMessage(`"x"`)}))
}
