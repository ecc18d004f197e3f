package models

import "time"

type AuditLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	UserID *uint `gorm:"index" json:"user_id"`

	Entity   string `gorm:"size:50;not null;index:idx_audit_entity" json:"entity"` // "project", "sprint", "story"
	EntityID uint   `gorm:"index:idx_audit_entity" json:"entity_id"`
	Action   string `gorm:"size:50;not null" json:"action"` // "create", "start", "status_change" и т.п.
	Details  string `gorm:"type:text" json:"details"`
}

// AuditFilter narrows an audit listing; zero values match everything.
type AuditFilter struct {
	Entity   string `form:"entity"`
	EntityID uint   `form:"entity_id"`
	Limit    int    `form:"limit"`
}
