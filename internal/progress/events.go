package progress

// Event is the closed set of pipeline progress notifications. Every stage
// transition emits exactly one Event; consumers switch on the concrete type
// or on Kind(). Events are immutable values, never persisted.
type Event interface {
	// Kind returns the wire tag for this event.
	Kind() string

	progressEvent() // marker method
}

// ModelDownload reports artifact acquisition progress as a fraction in [0,1].
type ModelDownload struct {
	Progress float64 `json:"progress"`
}

func (ModelDownload) Kind() string   { return "model-download" }
func (ModelDownload) progressEvent() {}

// ParseStart is emitted once before the first chunk of an extraction run.
type ParseStart struct {
	Topic       string `json:"topic"`
	TotalChunks int    `json:"totalChunks"`
}

func (ParseStart) Kind() string   { return "parse-start" }
func (ParseStart) progressEvent() {}

// ParseChunkStart is emitted before each chunk is sent for extraction.
type ParseChunkStart struct {
	Topic       string `json:"topic"`
	ChunkIndex  int    `json:"chunkIndex"`
	TotalChunks int    `json:"totalChunks"`
}

func (ParseChunkStart) Kind() string   { return "parse-chunk-start" }
func (ParseChunkStart) progressEvent() {}

// ParseChunkComplete is emitted after each chunk, with the number of facts
// accepted from that chunk.
type ParseChunkComplete struct {
	Topic          string `json:"topic"`
	ChunkIndex     int    `json:"chunkIndex"`
	TotalChunks    int    `json:"totalChunks"`
	FactsGenerated int    `json:"factsGenerated"`
}

func (ParseChunkComplete) Kind() string   { return "parse-chunk-complete" }
func (ParseChunkComplete) progressEvent() {}

// ParseComplete is emitted once after the last chunk, with the run total.
type ParseComplete struct {
	Topic          string `json:"topic"`
	TotalChunks    int    `json:"totalChunks"`
	FactsGenerated int    `json:"factsGenerated"`
}

func (ParseComplete) Kind() string   { return "parse-complete" }
func (ParseComplete) progressEvent() {}

// ParseError is emitted when an extraction run fails unrecoverably.
type ParseError struct {
	Topic   string `json:"topic"`
	Message string `json:"message"`
}

func (ParseError) Kind() string   { return "parse-error" }
func (ParseError) progressEvent() {}

// StorageSaveProgress is emitted after each record insert during a save
// stage.
type StorageSaveProgress struct {
	Topic string `json:"topic"`
	Saved int    `json:"saved"`
	Total int    `json:"total"`
}

func (StorageSaveProgress) Kind() string   { return "storage-save-progress" }
func (StorageSaveProgress) progressEvent() {}

// StorageComplete is emitted once all extracted facts are persisted.
type StorageComplete struct {
	Topic string `json:"topic"`
	Total int    `json:"total"`
}

func (StorageComplete) Kind() string   { return "storage-complete" }
func (StorageComplete) progressEvent() {}

// QuizStart is emitted before the batched quiz request, with the number of
// facts selected.
type QuizStart struct {
	Topic string `json:"topic"`
	Total int    `json:"total"`
}

func (QuizStart) Kind() string   { return "quiz-start" }
func (QuizStart) progressEvent() {}

// QuizProgress is emitted per accepted quiz item, in order.
type QuizProgress struct {
	Topic   string `json:"topic"`
	Current int    `json:"current"`
	Total   int    `json:"total"`
}

func (QuizProgress) Kind() string   { return "quiz-progress" }
func (QuizProgress) progressEvent() {}

// QuizComplete is emitted after quiz generation, with the accepted count.
type QuizComplete struct {
	Topic string `json:"topic"`
	Total int    `json:"total"`
}

func (QuizComplete) Kind() string   { return "quiz-complete" }
func (QuizComplete) progressEvent() {}
