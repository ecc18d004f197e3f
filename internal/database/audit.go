package database

import (
	"context"

	"gira/internal/models"
)

const (
	defaultAuditLimit = 200
	maxAuditLimit     = 1000
)

// AppendAudit пишет запись журнала в текущей транзакции (если она есть).
func (s *Store) AppendAudit(ctx context.Context, entry *models.AuditLog) error {
	return wrapErr("append audit log", s.conn(ctx).Create(entry).Error)
}

func (s *Store) AuditLogs(ctx context.Context, f models.AuditFilter) ([]models.AuditLog, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = defaultAuditLimit
	}
	if limit > maxAuditLimit {
		limit = maxAuditLimit
	}

	q := s.conn(ctx).Order("created_at desc").Order("id desc").Limit(limit)
	if f.Entity != "" {
		q = q.Where("entity = ?", f.Entity)
	}
	if f.EntityID != 0 {
		q = q.Where("entity_id = ?", f.EntityID)
	}

	logs := []models.AuditLog{}
	if err := q.Find(&logs).Error; err != nil {
		return nil, wrapErr("list audit logs", err)
	}
	return logs, nil
}
