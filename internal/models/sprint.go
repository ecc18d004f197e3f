package models

import "time"

// SprintStatus is the sprint lifecycle state. It is a distinct type from
// StoryStatus so the two cannot be mixed up.
type SprintStatus string

const (
	SprintPlanning  SprintStatus = "planning"
	SprintActive    SprintStatus = "active"
	SprintCompleted SprintStatus = "completed"
)

// SprintLength is the fixed duration applied when a sprint starts.
const SprintLength = 14 * 24 * time.Hour

type Sprint struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// один активный спринт на проект
	ProjectID uint `gorm:"not null;index;uniqueIndex:idx_sprints_one_active,where:status = 'active'" json:"project_id"`

	Name   string       `gorm:"size:100;not null" json:"name"`
	Goal   string       `gorm:"size:255" json:"goal"`
	Status SprintStatus `gorm:"type:varchar(20);not null;default:planning" json:"status"`

	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
	CompletedAt *time.Time `json:"completed_at"`

	Stories []Story `json:"-"`
}

// SprintStats is derived from the stories linked to a sprint at call time.
type SprintStats struct {
	Total          int     `json:"total"`
	Completed      int     `json:"completed"`
	CompletionRate float64 `json:"completion_rate"`

	Todo  int `json:"todo"`
	Doing int `json:"doing"`
	Done  int `json:"done"`

	TotalPoints     int `json:"total_points"`
	CompletedPoints int `json:"completed_points"`
}

// SprintView pairs a sprint with its current statistics.
type SprintView struct {
	Sprint
	Stats SprintStats `json:"stats"`
}
