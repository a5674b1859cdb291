package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// RequestLogRepo records completion round-trips for auditing.
type RequestLogRepo interface {
	// Append stores one log entry.
	Append(ctx context.Context, entry *RequestLog) error

	// Recent returns the newest entries, most recent first.
	Recent(ctx context.Context, limit int) ([]RequestLog, error)
}

type gormRequestLogRepo struct {
	db *gorm.DB
}

func (r *gormRequestLogRepo) Append(ctx context.Context, entry *RequestLog) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("append request log: %w", err)
	}
	return nil
}

func (r *gormRequestLogRepo) Recent(ctx context.Context, limit int) ([]RequestLog, error) {
	if limit <= 0 {
		limit = 20
	}
	var entries []RequestLog
	err := r.db.WithContext(ctx).
		Order("id DESC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("query request log: %w", err)
	}
	return entries, nil
}
