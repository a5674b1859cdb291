// Package provision resolves model candidates, stages their local
// artifacts, and binds exactly one working completion session to the
// gateway. Initialization is idempotent and single-flight.
package provision

// Candidate is one named configuration of the local completion capability.
// Candidates are tried in order until one yields a usable session.
type Candidate struct {
	// ModelID names the artifact and the model requests address, e.g.
	// "qwen2.5-1.5b-instruct-q4_k_m".
	ModelID string

	// ContextSize is the context window the model is served with.
	ContextSize int

	// AssetSeed names a bundled asset that can seed the cache without a
	// network acquisition. Empty when the candidate has no bundled copy.
	AssetSeed string

	// Primary marks the preferred candidate.
	Primary bool
}

// DefaultCandidates is the ordered catalog: the primary model first, one
// smaller fallback after it.
func DefaultCandidates() []Candidate {
	return []Candidate{
		{
			ModelID:     "qwen2.5-1.5b-instruct-q4_k_m",
			ContextSize: 8192,
			AssetSeed:   "qwen2.5-1.5b-instruct-q4_k_m.gguf",
			Primary:     true,
		},
		{
			ModelID:     "smollm2-360m-instruct-q8_0",
			ContextSize: 4096,
		},
	}
}
