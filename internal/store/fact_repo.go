package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// FactRepo is the relational storage contract consumed by the orchestrator.
type FactRepo interface {
	// Insert persists one record and returns its assigned ID.
	Insert(ctx context.Context, rec *FactRecord) (int64, error)

	// ByTopic returns records for a topic in insertion order. limit 0
	// means unlimited.
	ByTopic(ctx context.Context, topic string, limit, offset int) ([]FactRecord, error)

	// CountByTopic counts records for a topic, optionally including quiz
	// cards.
	CountByTopic(ctx context.Context, topic string, includeQuizzes bool) (int64, error)
}

type gormFactRepo struct {
	db *gorm.DB
}

func (r *gormFactRepo) Insert(ctx context.Context, rec *FactRecord) (int64, error) {
	if err := r.db.WithContext(ctx).Create(rec).Error; err != nil {
		return 0, fmt.Errorf("insert fact: %w", err)
	}
	return rec.ID, nil
}

func (r *gormFactRepo) ByTopic(ctx context.Context, topic string, limit, offset int) ([]FactRecord, error) {
	q := r.db.WithContext(ctx).
		Where("topic = ?", topic).
		Order("id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if offset > 0 {
		q = q.Offset(offset)
	}

	var recs []FactRecord
	if err := q.Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("query facts for topic %q: %w", topic, err)
	}
	return recs, nil
}

func (r *gormFactRepo) CountByTopic(ctx context.Context, topic string, includeQuizzes bool) (int64, error) {
	q := r.db.WithContext(ctx).Model(&FactRecord{}).Where("topic = ?", topic)
	if !includeQuizzes {
		q = q.Where("is_quiz = ?", false)
	}

	var n int64
	if err := q.Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count facts for topic %q: %w", topic, err)
	}
	return n, nil
}
