// Package post holds the data model shared by preprocessing, the corpus index
// and generation.
package post

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
)

// Length is the length bucket of a post.
type Length string

const (
	Short  Length = "Short"
	Medium Length = "Medium"
	Long   Length = "Long"
)

// Lengths lists the buckets in display order.
var Lengths = []Length{Short, Medium, Long}

// Categorize maps a line count to its bucket: <5 Short, 5..10 Medium, >10 Long.
func Categorize(lineCount int) Length {
	switch {
	case lineCount < 5:
		return Short
	case lineCount <= 10:
		return Medium
	default:
		return Long
	}
}

// CategorizeCount is Categorize for an optional count. A missing or
// non-integer count is Medium.
func CategorizeCount(lineCount *int) Length {
	if lineCount == nil {
		return Medium
	}
	return Categorize(*lineCount)
}

// ParseLength parses a bucket name, reporting whether it is known.
func ParseLength(s string) (Length, bool) {
	l := Length(s)
	return l, slices.Contains(Lengths, l)
}

// Language is the language of a post.
type Language string

const (
	English  Language = "English"
	Hinglish Language = "Hinglish"
	Hindi    Language = "Hindi"
	Marathi  Language = "Marathi"
)

// Languages lists the languages a post can be generated in. The corpus itself
// only carries English and Hinglish.
var Languages = []Language{English, Hinglish, Hindi, Marathi}

// Tone is the requested writing tone.
type Tone string

const (
	Professional  Tone = "Professional"
	Casual        Tone = "Casual"
	Inspirational Tone = "Inspirational"
	Humorous      Tone = "Humorous"
	Opinionated   Tone = "Opinionated"
)

// Tones lists the supported tones; the first one is the default.
var Tones = []Tone{Professional, Casual, Inspirational, Humorous, Opinionated}

// ErrInvalidRequest is returned by Request.Validate.
var ErrInvalidRequest = errors.New("invalid generation request")

// Request describes one generation call.
type Request struct {
	Length   Length   `json:"length"`
	Language Language `json:"language"`
	Tag      string   `json:"tag"`
	Tone     Tone     `json:"tone"`
}

// Validate checks the enums and fills in the default tone.
func (r *Request) Validate() error {
	if !slices.Contains(Lengths, r.Length) {
		return fmt.Errorf("%w: unknown length %q", ErrInvalidRequest, r.Length)
	}
	if !slices.Contains(Languages, r.Language) {
		return fmt.Errorf("%w: unknown language %q", ErrInvalidRequest, r.Language)
	}
	if r.Tag == "" {
		return fmt.Errorf("%w: tag is required", ErrInvalidRequest)
	}
	if r.Tone == "" {
		r.Tone = Professional
	}
	if !slices.Contains(Tones, r.Tone) {
		return fmt.Errorf("%w: unknown tone %q", ErrInvalidRequest, r.Tone)
	}
	return nil
}

// RawPost is one entry of the input corpus. Fields keeps every key of the
// original object so extra attributes survive preprocessing.
type RawPost struct {
	Text   string
	Fields map[string]json.RawMessage
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *RawPost) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	p.Fields = fields
	p.Text = ""
	if raw, ok := fields["text"]; ok {
		// non-string text is treated as empty
		_ = json.Unmarshal(raw, &p.Text)
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (p RawPost) MarshalJSON() ([]byte, error) {
	fields := make(map[string]json.RawMessage, len(p.Fields)+1)
	for k, v := range p.Fields {
		fields[k] = v
	}
	text, err := json.Marshal(p.Text)
	if err != nil {
		return nil, err
	}
	fields["text"] = text
	return json.Marshal(fields)
}

// Keys owned by EnrichedPost; anything else goes to Extra.
var enrichedKeys = []string{"text", "line_count", "language", "tags", "length"}

// EnrichedPost is a post after metadata extraction, tag unification and text
// cleaning. It is immutable once written by the preprocessor.
type EnrichedPost struct {
	Text      string
	LineCount *int
	Language  string
	Tags      []string
	Length    Length
	Extra     map[string]json.RawMessage
}

// ExtraFields returns the keys of fields not owned by EnrichedPost, or nil
// when there are none. fields is not modified.
func ExtraFields(fields map[string]json.RawMessage) map[string]json.RawMessage {
	extra := make(map[string]json.RawMessage)
	for k, v := range fields {
		if !slices.Contains(enrichedKeys, k) {
			extra[k] = v
		}
	}
	if len(extra) == 0 {
		return nil
	}
	return extra
}

// HasTag reports whether the post carries tag.
func (p EnrichedPost) HasTag(tag string) bool {
	return slices.Contains(p.Tags, tag)
}

// MarshalJSON implements json.Marshaler.
func (p EnrichedPost) MarshalJSON() ([]byte, error) {
	fields := make(map[string]any, len(p.Extra)+len(enrichedKeys))
	for k, v := range p.Extra {
		fields[k] = v
	}
	fields["text"] = p.Text
	if p.LineCount != nil {
		fields["line_count"] = *p.LineCount
	}
	fields["language"] = p.Language
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	fields["tags"] = tags
	fields["length"] = p.Length

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(fields); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// UnmarshalJSON implements json.Unmarshaler. Field types are checked leniently:
// a malformed field is left empty instead of failing the whole corpus.
func (p *EnrichedPost) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	meta := metadataFromFields(fields)
	*p = EnrichedPost{
		LineCount: meta.LineCount,
		Tags:      meta.Tags,
	}
	if raw, ok := fields["text"]; ok {
		_ = json.Unmarshal(raw, &p.Text)
	}
	if meta.Language != nil {
		p.Language = *meta.Language
	}
	if raw, ok := fields["length"]; ok {
		var l string
		if json.Unmarshal(raw, &l) == nil {
			p.Length = Length(l)
		}
	}
	// enriched files may hold more than two canonical tags when several raw
	// tags were merged, so read the full list here
	if raw, ok := fields["tags"]; ok {
		p.Tags = decodeTags(raw, 0)
	}

	for _, k := range enrichedKeys {
		delete(fields, k)
	}
	if len(fields) > 0 {
		p.Extra = fields
	}
	return nil
}
