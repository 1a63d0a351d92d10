package service

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/arturoeanton/repolens/internal/domain"
	"github.com/arturoeanton/repolens/internal/embedding"
	"github.com/arturoeanton/repolens/internal/port"
)

// Document is an extra file indexed alongside the repository summary.
type Document struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// IndexStats reports what an indexing run wrote.
type IndexStats struct {
	Repository    string `json:"repository"`
	SummaryChunks int    `json:"summary_chunks"`
	Documents     int    `json:"documents"`
	TotalChunks   int    `json:"total_chunks"`
}

// IndexService turns extractor records into stored summaries and chunks.
type IndexService struct {
	embedder   *embedding.Client
	writer     port.IndexWriter
	maxTokens  int
	maxCommits int
}

// NewIndexService creates an indexing service.
// maxTokens bounds every chunk; maxCommits bounds the commit messages quoted in the summary text.
func NewIndexService(embedder *embedding.Client, writer port.IndexWriter, maxTokens, maxCommits int) *IndexService {
	return &IndexService{embedder: embedder, writer: writer, maxTokens: maxTokens, maxCommits: maxCommits}
}

// SummaryText renders the repository description that gets chunked and embedded.
func SummaryText(s domain.RepositorySummary, maxCommits int) string {
	defaultBranch := "N/A"
	if len(s.Branches) > 0 {
		defaultBranch = s.Branches[0]
	}

	langs := s.TopLanguages(0)
	fileTypes := make([]string, len(langs))
	for i, l := range langs {
		fileTypes[i] = fmt.Sprintf("%s(%d)", l.Language, l.Files)
	}

	mostActive := s.MostActive.ID
	if mostActive == "" {
		mostActive = "N/A"
	}

	recent := s.CommitMessages
	if maxCommits > 0 && len(recent) > maxCommits {
		recent = recent[len(recent)-maxCommits:]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Repo: %s\n", s.Name)
	fmt.Fprintf(&b, "Default branch: %s\n", defaultBranch)
	fmt.Fprintf(&b, "Branches: %s\n", strings.Join(s.Branches, ", "))
	fmt.Fprintf(&b, "Tags: %s\n", strings.Join(s.Tags, ", "))
	fmt.Fprintf(&b, "Contributors (%d total): %s\n", len(s.Contributors), strings.Join(s.Contributors, ", "))
	fmt.Fprintf(&b, "Most active contributor: %s\n", mostActive)
	fmt.Fprintf(&b, "Total commits: %d\n", s.TotalCommits)
	fmt.Fprintf(&b, "First commit date: %s\n", formatTimestamp(s.FirstCommitDate))
	fmt.Fprintf(&b, "Last commit date: %s\n", formatTimestamp(s.LastCommitDate))
	fmt.Fprintf(&b, "Top file types: %s\n", strings.Join(fileTypes, ", "))
	fmt.Fprintf(&b, "Total files: %d\n", s.FilesCount)
	fmt.Fprintf(&b, "Recent commit messages: %s\n", strings.Join(recent, " | "))
	return b.String()
}

// Index embeds the record's summary text and the documents, then replaces everything
// stored for the repository. Any embedding failure aborts the run before the store is touched.
func (s *IndexService) Index(ctx context.Context, rec *Record, docs []Document) (*IndexStats, error) {
	summary, err := rec.Summary()
	if err != nil {
		return nil, fmt.Errorf("index %s: %w", rec.Name, err)
	}
	slog.Info("indexing repository", "repo", summary.Name, "documents", len(docs))

	pieces, err := s.embedder.EmbedLargeText(ctx, SummaryText(summary, s.maxCommits), s.maxTokens)
	if err != nil {
		return nil, fmt.Errorf("index %s: embed summary: %w", summary.Name, err)
	}

	vectors := make([][]float32, len(pieces))
	chunks := make([]domain.Chunk, 0, len(pieces))
	for i, p := range pieces {
		vectors[i] = p.Vector
		chunks = append(chunks, s.chunk(summary, len(chunks), "", p))
	}

	if summary.Embedding, err = embedding.Mean(vectors); err != nil {
		return nil, fmt.Errorf("index %s: summary embedding: %w", summary.Name, err)
	}

	indexedDocs := 0
	for _, d := range docs {
		if strings.TrimSpace(d.Content) == "" {
			continue
		}
		docPieces, err := s.embedder.EmbedLargeText(ctx, d.Content, s.maxTokens)
		if err != nil {
			return nil, fmt.Errorf("index %s: embed %s: %w", summary.Name, d.Path, err)
		}
		for _, p := range docPieces {
			chunks = append(chunks, s.chunk(summary, len(chunks), d.Path, p))
		}
		indexedDocs++
	}

	if err := s.writer.ReplaceRepository(ctx, summary, chunks); err != nil {
		return nil, fmt.Errorf("index %s: %w", summary.Name, err)
	}

	stats := &IndexStats{
		Repository:    summary.Name,
		SummaryChunks: len(pieces),
		Documents:     indexedDocs,
		TotalChunks:   len(chunks),
	}
	slog.Info("repository indexed", "repo", stats.Repository, "chunks", stats.TotalChunks, "documents", stats.Documents)
	return stats, nil
}

func (s *IndexService) chunk(summary domain.RepositorySummary, index int, path string, p embedding.Piece) domain.Chunk {
	messages := summary.CommitMessages
	if s.maxCommits > 0 && len(messages) > s.maxCommits {
		messages = messages[len(messages)-s.maxCommits:]
	}
	return domain.Chunk{
		RepoName:       summary.Name,
		CommitHash:     summary.HeadCommit,
		CommitMessages: messages,
		ChunkIndex:     index,
		FilePath:       path,
		Text:           p.Text,
		Embedding:      p.Vector,
	}
}

// MaxDocumentSize is the largest file CollectDocuments reads.
const MaxDocumentSize = 1 << 20

// CollectDocuments reads text files under root, skipping .git directories,
// binary files and anything larger than MaxDocumentSize. Paths are relative to root.
func CollectDocuments(root string) ([]Document, error) {
	var docs []Document
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		if info.Size() > MaxDocumentSize {
			slog.Debug("skipping large file", "path", path, "size", info.Size())
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		if !utf8.Valid(data) {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		docs = append(docs, Document{Path: filepath.ToSlash(rel), Content: string(data)})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("collect documents: %w", err)
	}
	return docs, nil
}
