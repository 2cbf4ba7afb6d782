package post

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// MaxTags is the number of tags kept per post by the metadata extractor.
const MaxTags = 2

// Metadata is what the LLM extractor returns for one post. Every field is
// optional; the zero value is what a failed extraction yields.
type Metadata struct {
	LineCount *int
	Language  *string
	Tags      []string
}

// IsEmpty reports whether no field was extracted.
func (m Metadata) IsEmpty() bool {
	return m.LineCount == nil && m.Language == nil && m.Tags == nil
}

// Merge returns m with every field present in over replacing its own.
func (m Metadata) Merge(over Metadata) Metadata {
	out := m
	if over.LineCount != nil {
		out.LineCount = over.LineCount
	}
	if over.Language != nil {
		out.Language = over.Language
	}
	if over.Tags != nil {
		out.Tags = over.Tags
	}
	return out
}

// DecodeMetadata strictly parses a JSON object and then reads each known key
// leniently. The error is non-nil only when data is not a JSON object.
func DecodeMetadata(data []byte) (Metadata, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return Metadata{}, err
	}
	return metadataFromFields(fields), nil
}

// MetadataFromRaw reads whatever metadata the raw post already carries.
func MetadataFromRaw(p RawPost) Metadata {
	return metadataFromFields(p.Fields)
}

func metadataFromFields(fields map[string]json.RawMessage) Metadata {
	var m Metadata
	if raw, ok := fields["line_count"]; ok {
		m.LineCount = ParseLineCount(raw)
	}
	if raw, ok := fields["language"]; ok && !isNull(raw) {
		var lang string
		if json.Unmarshal(raw, &lang) == nil {
			lang = strings.TrimSpace(lang)
			m.Language = &lang
		}
	}
	if raw, ok := fields["tags"]; ok && !isNull(raw) {
		m.Tags = decodeTags(raw, MaxTags)
	}
	return m
}

// ParseLineCount accepts a JSON integer, a float (truncated toward zero) or a
// numeric string. Anything else yields nil.
func ParseLineCount(raw json.RawMessage) *int {
	if isNull(raw) {
		return nil
	}
	var num float64
	if err := json.Unmarshal(raw, &num); err == nil {
		if math.IsNaN(num) || math.IsInf(num, 0) || num < math.MinInt32 || num > math.MaxInt32 {
			return nil
		}
		n := int(num)
		return &n
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return nil
	}
	return &n
}

// decodeTags reads a tag list, keeping non-empty strings only. A lone string
// is treated as a one-element list. limit <= 0 keeps everything.
func decodeTags(raw json.RawMessage, limit int) []string {
	var items []any
	if err := json.Unmarshal(raw, &items); err != nil {
		var single string
		if json.Unmarshal(raw, &single) != nil {
			return nil
		}
		items = []any{single}
	}

	tags := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			continue
		}
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		tags = append(tags, s)
		if limit > 0 && len(tags) == limit {
			break
		}
	}
	return tags
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || strings.TrimSpace(string(raw)) == "null"
}
