package models

import "time"

type ProjectStatus string

const (
	ProjectActive   ProjectStatus = "active"
	ProjectArchived ProjectStatus = "archived"
	ProjectDeleted  ProjectStatus = "deleted"
)

const MaxProjectKeyLen = 10

type Project struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Key         string        `gorm:"uniqueIndex;size:10;not null" json:"key"`
	Name        string        `gorm:"size:100;not null" json:"name"`
	Description string        `gorm:"type:text" json:"description"`
	Status      ProjectStatus `gorm:"type:varchar(20);not null;default:active" json:"status"`

	// владелец только для отображения, без внешнего ключа
	OwnerID *uint `json:"owner_id"`

	Sprints []Sprint `json:"-"`
	Stories []Story  `json:"-"`
}

func (p *Project) Deleted() bool {
	return p.Status == ProjectDeleted
}

// ProjectFilter narrows a project listing. Deleted projects are never listed.
type ProjectFilter struct {
	Name   string        `form:"name"`
	Status ProjectStatus `form:"status"`
}
