package profile

import (
	"encoding/binary"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/kailas-cloud/profilematch/internal/domain"
)

// Hash field names.
const (
	fieldID          = "id"
	fieldSlug        = "slug"
	fieldName        = "name"
	fieldHandle      = "handle"
	fieldBio         = "bio"
	fieldDescription = "description"
	fieldTags        = "tags"
	fieldVector      = "__vector"
	statPrefix       = "stat:"
)

// buildHashFields converts a profile into a flat map for HSET.
// Tags are a JSON array to keep order and duplicates; stats become stat:<name> fields.
func buildHashFields(p *domain.Profile) map[string]string {
	m := make(map[string]string, 8+len(p.Stats))
	m[fieldID] = p.ID
	m[fieldSlug] = p.Slug
	m[fieldName] = p.Name
	m[fieldHandle] = p.Handle
	m[fieldBio] = p.Bio
	m[fieldDescription] = p.Description

	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	if data, err := json.Marshal(tags); err == nil {
		m[fieldTags] = string(data)
	}

	for k, v := range p.Stats {
		m[statPrefix+k] = strconv.FormatInt(v, 10)
	}
	if len(p.Vector) > 0 {
		m[fieldVector] = vectorToBytes(p.Vector)
	}
	return m
}

// parseHashFields converts a flat hash map back into a profile.
// Unknown fields are ignored; unparsable stats read as absent.
func parseHashFields(id string, m map[string]string) domain.Profile {
	p := domain.Profile{
		ID:          id,
		Slug:        m[fieldSlug],
		Name:        m[fieldName],
		Handle:      m[fieldHandle],
		Bio:         m[fieldBio],
		Description: m[fieldDescription],
		Tags:        parseTags(m[fieldTags]),
	}

	for k, v := range m {
		switch {
		case k == fieldVector:
			p.Vector = bytesToVector(v)
		case strings.HasPrefix(k, statPrefix):
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				continue
			}
			if p.Stats == nil {
				p.Stats = make(map[string]int64)
			}
			p.Stats[strings.TrimPrefix(k, statPrefix)] = n
		}
	}

	return p
}

// parseTags reads the JSON array form, falling back to a comma-separated list.
func parseTags(raw string) []string {
	if raw == "" {
		return nil
	}
	var tags []string
	if err := json.Unmarshal([]byte(raw), &tags); err == nil {
		return tags
	}
	parts := strings.Split(raw, ",")
	out := parts[:0]
	for _, t := range parts {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// vectorToBytes serializes []float32 to a binary string (4 bytes per float, little-endian).
func vectorToBytes(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}

// bytesToVector deserializes a binary string back to []float32.
func bytesToVector(s string) []float32 {
	b := []byte(s)
	if len(b) == 0 || len(b)%4 != 0 {
		return nil
	}
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v
}
