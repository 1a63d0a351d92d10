// Package embedding wraps a provider Embedder with dimension checks and large-text chunking.
package embedding

import (
	"context"
	"errors"
	"fmt"

	"github.com/arturoeanton/repolens/internal/chunker"
	"github.com/arturoeanton/repolens/internal/port"
)

// ErrNoVectors is returned when averaging an empty set of vectors.
var ErrNoVectors = errors.New("no vectors to average")

// Piece is one embedded window of a larger text.
type Piece struct {
	ChunkIndex int
	Text       string
	Vector     []float32
}

// Client embeds text through a provider and enforces the configured dimension.
type Client struct {
	provider  port.Embedder
	chunker   *chunker.Chunker
	dimension int
}

// NewClient creates an embedding client.
func NewClient(provider port.Embedder, ch *chunker.Chunker, dimension int) *Client {
	return &Client{provider: provider, chunker: ch, dimension: dimension}
}

// Dimension returns the vector length every embedding must have.
func (c *Client) Dimension() int {
	return c.dimension
}

// Embed calls the provider once and validates the vector length.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	vec, err := c.provider.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	if err := port.CheckDimension(vec, c.dimension); err != nil {
		return nil, fmt.Errorf("embed: %w", err)
	}
	return vec, nil
}

// EmbedLargeText chunks text and embeds every window in order, one call per window.
func (c *Client) EmbedLargeText(ctx context.Context, text string, maxTokens int) ([]Piece, error) {
	chunks, err := c.chunker.Split(text, maxTokens)
	if err != nil {
		return nil, err
	}

	pieces := make([]Piece, 0, len(chunks))
	for i, chunk := range chunks {
		vec, err := c.Embed(ctx, chunk)
		if err != nil {
			return nil, fmt.Errorf("embed chunk %d: %w", i, err)
		}
		pieces = append(pieces, Piece{ChunkIndex: i, Text: chunk, Vector: vec})
	}
	return pieces, nil
}

// Mean returns the element-wise arithmetic mean of vectors, which must all share one length.
func Mean(vectors [][]float32) ([]float32, error) {
	if len(vectors) == 0 {
		return nil, ErrNoVectors
	}

	dim := len(vectors[0])
	sum := make([]float64, dim)
	for _, v := range vectors {
		if err := port.CheckDimension(v, dim); err != nil {
			return nil, fmt.Errorf("mean: %w", err)
		}
		for i, x := range v {
			sum[i] += float64(x)
		}
	}

	out := make([]float32, dim)
	n := float64(len(vectors))
	for i, s := range sum {
		out[i] = float32(s / n)
	}
	return out, nil
}
