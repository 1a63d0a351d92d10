package store

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/arturoeanton/repolens/internal/domain"
)

// decodeContributor reads the most-active contributor column. Older rows store a bare
// JSON string (the contributor id); newer rows store {"id": ..., "commits": n}.
func decodeContributor(raw []byte) (domain.Contributor, error) {
	var c domain.Contributor
	if len(raw) == 0 || string(raw) == "null" {
		return c, nil
	}

	var id string
	if err := json.Unmarshal(raw, &id); err == nil {
		c.ID = id
		return c, nil
	}
	if err := json.Unmarshal(raw, &c); err != nil {
		return c, fmt.Errorf("decode most_active_contributor: %w", err)
	}
	return c, nil
}

// decodeMessages reads a commit-message snapshot that is either a JSON array or plain text.
func decodeMessages(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	var msgs []string
	if err := json.Unmarshal([]byte(raw), &msgs); err == nil {
		return msgs
	}
	return []string{raw}
}

func decodeJSON(raw []byte, v interface{}, column string) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode %s: %w", column, err)
	}
	return nil
}

func mustJSON(v interface{}) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		return []byte("null")
	}
	return b
}

// serializeVector converts a float32 slice to a little-endian byte blob.
func serializeVector(v []float32) []byte {
	blob := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(blob[i*4:], math.Float32bits(f))
	}
	return blob
}

// deserializeVector converts a byte blob back to a float32 slice.
func deserializeVector(blob []byte) []float32 {
	vector := make([]float32, len(blob)/4)
	for i := range vector {
		vector[i] = math.Float32frombits(binary.LittleEndian.Uint32(blob[i*4:]))
	}
	return vector
}

// cosineSimilarity computes the cosine similarity between two vectors of equal length.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
