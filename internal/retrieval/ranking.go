// Package retrieval ranks chunks returned by vector search and fetches context for questions.
package retrieval

import (
	"sort"
	"strings"

	"github.com/arturoeanton/repolens/internal/domain"
	"github.com/arturoeanton/repolens/internal/port"
)

// Boost factors applied on top of raw similarity.
const (
	CodeBoost          = 1.2
	DocBoost           = 1.1
	RecencyBoostWeight = 0.1
)

// CodeExtensions and DocExtensions drive both file-type boosting and context metadata.
var (
	CodeExtensions = []string{"py", "js", "java", "cpp", "h", "cs", "go", "rs", "sql"}
	DocExtensions  = []string{"md", "txt", "rst", "yaml", "json", "xml"}
)

func hasExtension(path string, exts []string) bool {
	lower := strings.ToLower(path)
	for _, ext := range exts {
		if strings.HasSuffix(lower, "."+ext) {
			return true
		}
	}
	return false
}

// IsCode reports whether path ends in a code extension (case-insensitive).
func IsCode(path string) bool { return hasExtension(path, CodeExtensions) }

// IsDoc reports whether path ends in a documentation extension (case-insensitive).
func IsDoc(path string) bool { return hasExtension(path, DocExtensions) }

// FileType returns the text after the last dot of path, or "" when there is none.
func FileType(path string) string {
	i := strings.LastIndex(path, ".")
	if i < 0 {
		return ""
	}
	return path[i+1:]
}

// FileTypeBoost favours code over documentation over everything else.
func FileTypeBoost(path string) float64 {
	switch {
	case IsCode(path):
		return CodeBoost
	case IsDoc(path):
		return DocBoost
	default:
		return 1.0
	}
}

// RecencyBoost favours chunks that come early in a repository's sequence.
func RecencyBoost(chunkIndex int) float64 {
	if chunkIndex < 0 {
		return 1.0
	}
	return 1 + RecencyBoostWeight*(1.0/float64(chunkIndex+1))
}

// Annotate scores a chunk against its raw similarity and fills in derived metadata.
func Annotate(c domain.Chunk, similarity float64) domain.RetrievedContext {
	return domain.RetrievedContext{
		Chunk:           c,
		SimilarityScore: similarity,
		FinalScore:      similarity * FileTypeBoost(c.FilePath) * RecencyBoost(c.ChunkIndex),
		IsCode:          IsCode(c.FilePath),
		IsDoc:           IsDoc(c.FilePath),
		FileType:        FileType(c.FilePath),
	}
}

// Rank drops contexts whose raw similarity does not exceed the threshold, sorts the rest
// by final score descending and keeps at most opts.TopK of them.
func Rank(contexts []domain.RetrievedContext, opts port.SearchOptions) []domain.RetrievedContext {
	kept := make([]domain.RetrievedContext, 0, len(contexts))
	for _, c := range contexts {
		if c.SimilarityScore > opts.SimilarityThreshold {
			kept = append(kept, c)
		}
	}

	sort.SliceStable(kept, func(i, j int) bool {
		if kept[i].FinalScore != kept[j].FinalScore {
			return kept[i].FinalScore > kept[j].FinalScore
		}
		return kept[i].SimilarityScore > kept[j].SimilarityScore
	})

	if opts.TopK >= 0 && len(kept) > opts.TopK {
		kept = kept[:opts.TopK]
	}
	return kept
}
