// internal/models/knowledge.go
package models

// KnowledgeChunk is one passage of the knowledge corpus. Similarity is only
// populated by vector search.
type KnowledgeChunk struct {
	ID         string            `json:"id"`
	Content    string            `json:"content"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	Embedding  []float32         `json:"-"`
	Similarity float64           `json:"similarity,omitempty"`
}
