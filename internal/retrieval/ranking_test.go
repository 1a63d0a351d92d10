package retrieval

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arturoeanton/repolens/internal/domain"
	"github.com/arturoeanton/repolens/internal/port"
)

func TestMetadata(t *testing.T) {
	tests := []struct {
		path     string
		isCode   bool
		isDoc    bool
		fileType string
		boost    float64
	}{
		{"main.go", true, false, "go", 1.2},
		{"src/App.JAVA", true, false, "JAVA", 1.2},
		{"README.md", false, true, "md", 1.1},
		{"config/settings.yaml", false, true, "yaml", 1.1},
		{"logo.png", false, false, "png", 1.0},
		{"Makefile", false, false, "", 1.0},
		{"", false, false, "", 1.0},
		{"docs/notes.gone", false, false, "gone", 1.0},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.isCode, IsCode(tt.path))
			assert.Equal(t, tt.isDoc, IsDoc(tt.path))
			assert.Equal(t, tt.fileType, FileType(tt.path))
			assert.InDelta(t, tt.boost, FileTypeBoost(tt.path), 1e-9)
		})
	}
}

func TestRecencyBoost(t *testing.T) {
	assert.InDelta(t, 1.1, RecencyBoost(0), 1e-9)
	assert.InDelta(t, 1.05, RecencyBoost(1), 1e-9)
	assert.InDelta(t, 1.01, RecencyBoost(9), 1e-9)
	assert.InDelta(t, 1.0, RecencyBoost(-1), 1e-9)
}

func TestAnnotate(t *testing.T) {
	rc := Annotate(domain.Chunk{FilePath: "pkg/server.go", ChunkIndex: 0}, 0.9)

	assert.InDelta(t, 0.9, rc.SimilarityScore, 1e-9)
	assert.InDelta(t, 0.9*1.2*1.1, rc.FinalScore, 1e-9)
	assert.True(t, rc.IsCode)
	assert.False(t, rc.IsDoc)
	assert.Equal(t, "go", rc.FileType)
	assert.GreaterOrEqual(t, rc.FinalScore, rc.SimilarityScore)
}

func TestRank(t *testing.T) {
	in := []domain.RetrievedContext{
		Annotate(domain.Chunk{FilePath: "notes", ChunkIndex: 4}, 0.95),
		Annotate(domain.Chunk{FilePath: "main.go", ChunkIndex: 0}, 0.85),
		Annotate(domain.Chunk{FilePath: "README.md", ChunkIndex: 2}, 0.80), // not strictly above threshold
		Annotate(domain.Chunk{FilePath: "old.txt", ChunkIndex: 1}, 0.5),
		Annotate(domain.Chunk{FilePath: "util.py", ChunkIndex: 3}, 0.9),
	}

	out := Rank(in, port.SearchOptions{TopK: 10, SimilarityThreshold: 0.8})
	require.Len(t, out, 3)
	assert.Equal(t, "main.go", out[0].FilePath) // 0.85 * 1.2 * 1.1
	assert.Equal(t, "util.py", out[1].FilePath) // 0.90 * 1.2 * 1.025
	assert.Equal(t, "notes", out[2].FilePath)

	for i, c := range out {
		assert.Greater(t, c.SimilarityScore, 0.8)
		assert.GreaterOrEqual(t, c.FinalScore, c.SimilarityScore)
		if i > 0 {
			assert.GreaterOrEqual(t, out[i-1].FinalScore, c.FinalScore)
		}
	}

	top := Rank(in, port.SearchOptions{TopK: 1, SimilarityThreshold: 0.8})
	require.Len(t, top, 1)
	assert.Equal(t, "main.go", top[0].FilePath)
}

type stubEmbedder struct {
	vec []float32
	err error
}

func (s stubEmbedder) Embed(context.Context, string) ([]float32, error) { return s.vec, s.err }

type recordingStore struct {
	opts port.SearchOptions
	out  []domain.RetrievedContext
}

func (r *recordingStore) InsertChunk(context.Context, domain.Chunk) error { return nil }

func (r *recordingStore) SimilaritySearch(_ context.Context, _ []float32, opts port.SearchOptions) ([]domain.RetrievedContext, error) {
	r.opts = opts
	return r.out, nil
}

func TestRetriever_Retrieve(t *testing.T) {
	st := &recordingStore{out: []domain.RetrievedContext{Annotate(domain.Chunk{FilePath: "a.go"}, 0.9)}}
	r := NewRetriever(stubEmbedder{vec: []float32{1, 0}}, st, 0.8)

	got, err := r.Retrieve(context.Background(), "how does it work?", "demo", 0)
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, port.SearchOptions{TopK: DefaultTopK, SimilarityThreshold: 0.8, Repository: "demo"}, st.opts)
}

func TestRetriever_EmbedError(t *testing.T) {
	r := NewRetriever(stubEmbedder{err: errors.New("down")}, &recordingStore{}, 0.8)

	_, err := r.Retrieve(context.Background(), "q", "", 3)
	require.Error(t, err)
}
