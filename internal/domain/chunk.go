package domain

// Chunk is a bounded slice of repository text paired with its embedding.
// A repository's chunks are written in chunk_index order and replaced as a whole on re-index.
type Chunk struct {
	ID             int64     `json:"id,omitempty"`
	RepoName       string    `json:"repo_name"`
	CommitHash     string    `json:"commit_hash"`
	CommitMessages []string  `json:"commit_messages,omitempty"`
	ChunkIndex     int       `json:"chunk_index"`
	FilePath       string    `json:"file_path"`
	Text           string    `json:"text_chunk"`
	Embedding      []float32 `json:"-"`
}

// RetrievedContext is a chunk returned by similarity search, with its scores and derived metadata.
type RetrievedContext struct {
	Chunk
	SimilarityScore float64 `json:"similarity_score"`
	FinalScore      float64 `json:"final_score"`
	IsCode          bool    `json:"is_code"`
	IsDoc           bool    `json:"is_doc"`
	FileType        string  `json:"file_type"`
}
