package store

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"

	"github.com/arjun/factdeck/internal/facts"
)

// FactRecord is the persisted shape of one fact or quiz card.
type FactRecord struct {
	ID        int64          `gorm:"primaryKey"`
	Topic     string         `gorm:"index;not null"`
	Content   string         `gorm:"not null"`
	Source    string         `gorm:"not null"`
	IsQuiz    bool           `gorm:"index;not null"`
	QuizData  datatypes.JSON `gorm:"type:json"`
	CreatedAt time.Time
}

func (FactRecord) TableName() string { return "facts" }

// NewFactRecord converts an in-memory fact into its persisted shape.
func NewFactRecord(f facts.Fact) (*FactRecord, error) {
	rec := &FactRecord{
		Topic:   f.Topic,
		Content: f.Content,
		Source:  string(f.Source),
		IsQuiz:  f.IsQuiz,
	}
	if f.Quiz != nil {
		payload, err := json.Marshal(f.Quiz)
		if err != nil {
			return nil, fmt.Errorf("marshal quiz payload: %w", err)
		}
		rec.QuizData = datatypes.JSON(payload)
	}
	return rec, nil
}

// Fact converts the record back into the domain shape.
func (r FactRecord) Fact() (facts.Fact, error) {
	f := facts.Fact{
		ID:        r.ID,
		Content:   r.Content,
		Topic:     r.Topic,
		Source:    facts.Source(r.Source),
		CreatedAt: r.CreatedAt,
		IsQuiz:    r.IsQuiz,
	}
	if len(r.QuizData) > 0 {
		var q facts.QuizQuestion
		if err := json.Unmarshal(r.QuizData, &q); err != nil {
			return facts.Fact{}, fmt.Errorf("unmarshal quiz payload for fact %d: %w", r.ID, err)
		}
		f.Quiz = &q
	}
	return f, nil
}

// RequestLog is one completion round-trip, written by the gateway's
// logging decorator.
type RequestLog struct {
	ID           int64  `gorm:"primaryKey"`
	RunID        string `gorm:"index;not null"`
	Purpose      string `gorm:"index;not null"`
	Model        string
	LatencyMs    int64
	PromptChars  int
	InputTokens  int
	OutputTokens int
	CostUSD      float64
	Success      bool
	Error        string
	CreatedAt    time.Time
}

func (RequestLog) TableName() string { return "request_logs" }
