package types

// VectorDocument is one (id, embedding, document, metadata) tuple persisted
// in the vector index.
type VectorDocument struct {
	ID        string            `json:"id"`
	Embedding []float32         `json:"-"`
	Document  string            `json:"document"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// VectorMatch is a nearest-neighbor hit. Distance is the cosine distance
// reported by the index (0 identical, 2 opposite).
type VectorMatch struct {
	Document string            `json:"document"`
	Metadata map[string]string `json:"metadata,omitempty"`
	Distance float64           `json:"distance"`
}

// PolicyMatch is a policy-chunk hit from the policy collection.
type PolicyMatch struct {
	Content  string            `json:"content"`
	Metadata map[string]string `json:"metadata,omitempty"`
	Distance float64           `json:"distance"`
}

// CollectionStats summarizes the policy collection for the admin surface.
type CollectionStats struct {
	TotalChunks int      `json:"total_chunks"`
	PolicyTypes []string `json:"policy_types"`
	PolicyFiles []string `json:"policy_files"`
}
