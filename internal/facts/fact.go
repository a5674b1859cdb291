package facts

import "time"

// MaxContentLen is the hard upper bound on fact content, in runes.
// Candidates longer than this are truncated before acceptance.
const MaxContentLen = 200

// Source records how a fact was derived.
type Source string

const (
	// SourcePrimary marks facts extracted by the completion model.
	SourcePrimary Source = "primary"

	// SourceFallback marks facts derived by sentence segmentation when
	// the model was unavailable or its output unusable.
	SourceFallback Source = "fallback"

	// SourceUserUpload marks facts extracted from ad-hoc user-supplied
	// text rather than a bundled topic file.
	SourceUserUpload Source = "userUpload"
)

// Fact is one short unit of content derived from source material.
type Fact struct {
	// ID is the storage-assigned identity. Zero until persisted.
	ID int64 `json:"id"`

	// Content is the fact text. Non-empty after trimming, at most
	// MaxContentLen runes.
	Content string `json:"content"`

	// Topic is the subject area this fact belongs to, e.g. "animals".
	Topic string `json:"topic"`

	// Source records the provenance of the content.
	Source Source `json:"source"`

	// CreatedAt is set by the store on insert.
	CreatedAt time.Time `json:"createdAt"`

	// IsQuiz marks records that carry a quiz payload instead of plain
	// swipeable content.
	IsQuiz bool `json:"isQuiz"`

	// Quiz is populated only when IsQuiz is true.
	Quiz *QuizQuestion `json:"quizData,omitempty"`
}

// QuizQuestion is one validated multiple-choice item.
type QuizQuestion struct {
	// Question is the prompt shown to the learner.
	Question string `json:"question"`

	// Options holds exactly 4 answer choices, in display order.
	Options []string `json:"options"`

	// CorrectIndex is the zero-based index into Options, always in [0,3].
	CorrectIndex int `json:"correctIndex"`
}
