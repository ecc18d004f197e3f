package models

import "time"

// StoryStatus is the kanban column of a story.
type StoryStatus string

const (
	StoryTodo  StoryStatus = "todo"
	StoryDoing StoryStatus = "doing"
	StoryDone  StoryStatus = "done"
)

// ParseStoryStatus accepts only the three kanban columns.
func ParseStoryStatus(s string) (StoryStatus, bool) {
	switch st := StoryStatus(s); st {
	case StoryTodo, StoryDoing, StoryDone:
		return st, true
	}
	return "", false
}

type Priority int

const (
	PriorityNone Priority = iota
	PriorityLow
	PriorityMedium
	PriorityHigh
	PriorityHighest
)

type PriorityInfo struct {
	Name  string `json:"name"`
	Color string `json:"color"`
	Icon  string `json:"icon"`
}

var priorityInfo = map[Priority]PriorityInfo{
	PriorityNone:    {Name: "None", Color: "#6B778C", Icon: ""},
	PriorityLow:     {Name: "Low", Color: "#2D8738", Icon: "↓"},
	PriorityMedium:  {Name: "Medium", Color: "#0052CC", Icon: "="},
	PriorityHigh:    {Name: "High", Color: "#CD5A19", Icon: "↑"},
	PriorityHighest: {Name: "Highest", Color: "#CD1F1F", Icon: "↑↑"},
}

func (p Priority) Valid() bool {
	_, ok := priorityInfo[p]
	return ok
}

func (p Priority) Info() PriorityInfo {
	if info, ok := priorityInfo[p]; ok {
		return info
	}
	return priorityInfo[PriorityNone]
}

const MaxStoryTitleLen = 200

type Story struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	ProjectID  uint  `gorm:"not null;index" json:"project_id"`
	SprintID   *uint `gorm:"index" json:"sprint_id"`
	AssigneeID *uint `gorm:"index" json:"assignee_id"`

	Title       string      `gorm:"size:200;not null" json:"title"`
	Description string      `gorm:"type:text" json:"description"`
	Status      StoryStatus `gorm:"type:varchar(20);not null;default:todo" json:"status"`
	StoryPoints *int        `json:"story_points"`
	Priority    Priority    `gorm:"not null;default:0" json:"priority"`

	StartedAt   *time.Time `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at"`
}

func (s *Story) InBacklog() bool {
	return s.SprintID == nil
}

// StoryFilter selects stories of one project. Backlog and SprintID are
// mutually exclusive; Backlog wins when both are set.
type StoryFilter struct {
	ProjectID uint
	SprintID  *uint
	Backlog   bool
	Status    StoryStatus
}

// StoryPatch is a partial update. Nil pointers and unset Nullable fields
// leave the stored value untouched.
type StoryPatch struct {
	Title       *string        `json:"title"`
	Description *string        `json:"description"`
	Priority    *Priority      `json:"priority"`
	StoryPoints Nullable[int]  `json:"story_points"`
	AssigneeID  Nullable[uint] `json:"assignee_id"`
}
