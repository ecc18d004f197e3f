package tracker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"gira/internal/models"

	"github.com/sirupsen/logrus"
)

type CreateStoryInput struct {
	Title       string           `json:"title"`
	Description string           `json:"description"`
	StoryPoints *int             `json:"story_points"`
	Priority    *models.Priority `json:"priority"`
	AssigneeID  *uint            `json:"assignee_id"`
}

// StoryResult is a story together with the stats of the sprint it sits in,
// if any.
type StoryResult struct {
	Story *models.Story       `json:"story"`
	Stats *models.SprintStats `json:"stats,omitempty"`
}

// CreateStory puts a new story into the project backlog with status todo.
// Nothing is written when the project does not exist.
func (s *Service) CreateStory(ctx context.Context, projectID uint, in CreateStoryInput) (*models.Story, error) {
	var story *models.Story
	err := s.store.InTx(ctx, func(ctx context.Context) error {
		if _, err := s.liveProject(ctx, projectID); err != nil {
			return err
		}

		title, err := validTitle(in.Title)
		if err != nil {
			return err
		}
		if err := validPoints(in.StoryPoints); err != nil {
			return err
		}
		priority := models.PriorityNone
		if in.Priority != nil {
			if !in.Priority.Valid() {
				return invalidInput("priority %d is out of range", *in.Priority)
			}
			priority = *in.Priority
		}
		if err := s.checkAssignee(ctx, in.AssigneeID); err != nil {
			return err
		}

		story = &models.Story{
			ProjectID:   projectID,
			Title:       title,
			Description: in.Description,
			Status:      models.StoryTodo,
			StoryPoints: in.StoryPoints,
			Priority:    priority,
			AssigneeID:  in.AssigneeID,
		}
		if err := s.store.SaveStory(ctx, story); err != nil {
			return err
		}
		return s.audit(ctx, entityStory, story.ID, "create", "Создана история: "+story.Title)
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"story_id": story.ID, "project_id": projectID}).Info("story created")
	return story, nil
}

// UpdateStory applies a partial update. Status and sprint placement are not
// part of the patch; use SetStoryStatus and MoveStory.
func (s *Service) UpdateStory(ctx context.Context, id uint, patch models.StoryPatch) (*models.Story, error) {
	var story *models.Story
	err := s.store.InTx(ctx, func(ctx context.Context) error {
		st, err := s.store.Story(ctx, id)
		if err != nil {
			return err
		}

		var changed []string
		if patch.Title != nil {
			title, err := validTitle(*patch.Title)
			if err != nil {
				return err
			}
			st.Title = title
			changed = append(changed, "title")
		}
		if patch.Description != nil {
			st.Description = *patch.Description
			changed = append(changed, "description")
		}
		if patch.Priority != nil {
			if !patch.Priority.Valid() {
				return invalidInput("priority %d is out of range", *patch.Priority)
			}
			st.Priority = *patch.Priority
			changed = append(changed, "priority")
		}
		if patch.StoryPoints.Set {
			points := patch.StoryPoints.Ptr()
			if err := validPoints(points); err != nil {
				return err
			}
			st.StoryPoints = points
			changed = append(changed, "story_points")
		}
		if patch.AssigneeID.Set {
			assignee := patch.AssigneeID.Ptr()
			if err := s.checkAssignee(ctx, assignee); err != nil {
				return err
			}
			st.AssigneeID = assignee
			changed = append(changed, "assignee_id")
		}

		if len(changed) == 0 {
			story = st
			return nil
		}
		if err := s.store.SaveStory(ctx, st); err != nil {
			return err
		}
		story = st
		return s.audit(ctx, entityStory, id, "update", "Изменены поля: "+strings.Join(changed, ", "))
	})
	if err != nil {
		return nil, err
	}
	return story, nil
}

// MoveStory places a story into a sprint of the same project, or back into
// the backlog when sprintID is nil. Moving into a sprint resets the kanban
// status to todo; moving to the backlog keeps it.
func (s *Service) MoveStory(ctx context.Context, id uint, sprintID *uint) (*models.Story, error) {
	var story *models.Story
	err := s.store.InTx(ctx, func(ctx context.Context) error {
		st, err := s.store.Story(ctx, id)
		if err != nil {
			return err
		}

		details := "Перемещена в бэклог"
		if sprintID == nil {
			st.SprintID = nil
		} else {
			sp, err := s.store.Sprint(ctx, *sprintID)
			if err != nil {
				return fmt.Errorf("target sprint: %w", err)
			}
			if sp.ProjectID != st.ProjectID {
				return invalidInput("sprint %d belongs to another project", sp.ID)
			}
			st.SprintID = &sp.ID
			st.Status = models.StoryTodo
			details = "Перемещена в спринт: " + sp.Name
		}

		if err := s.store.SaveStory(ctx, st); err != nil {
			return err
		}
		story = st
		return s.audit(ctx, entityStory, id, "move", details)
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"story_id": id, "sprint_id": story.SprintID}).Info("story moved")
	return story, nil
}

// SetStoryStatus moves a story to another kanban column. Any column may
// follow any other; see applyStatus for the timestamp side effects.
func (s *Service) SetStoryStatus(ctx context.Context, id uint, status string) (*StoryResult, error) {
	var res *StoryResult
	err := s.store.InTx(ctx, func(ctx context.Context) error {
		st, err := s.store.Story(ctx, id)
		if err != nil {
			return err
		}

		next, ok := models.ParseStoryStatus(status)
		if !ok {
			return fmt.Errorf("story status %q: %w", status, models.ErrInvalidStatus)
		}

		prev := st.Status
		applyStatus(st, next, s.now())
		if err := s.store.SaveStory(ctx, st); err != nil {
			return err
		}
		if err := s.audit(ctx, entityStory, id, "status_change",
			fmt.Sprintf("Статус изменён: %s -> %s", prev, next)); err != nil {
			return err
		}

		res = &StoryResult{Story: st}
		if st.SprintID != nil {
			stories, err := s.store.Stories(ctx, models.StoryFilter{ProjectID: st.ProjectID, SprintID: st.SprintID})
			if err != nil {
				return err
			}
			stats := ComputeStats(stories)
			res.Stats = &stats
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"story_id": id, "status": res.Story.Status}).Info("story status changed")
	return res, nil
}

// applyStatus sets the new status and stamps timestamps. started_at is set
// on todo -> doing only if still empty; completed_at is set whenever the
// story enters done from another column. Backward moves keep both.
func applyStatus(st *models.Story, next models.StoryStatus, now time.Time) {
	prev := st.Status
	if next == models.StoryDoing && prev == models.StoryTodo && st.StartedAt == nil {
		st.StartedAt = &now
	}
	if next == models.StoryDone && prev != models.StoryDone {
		st.CompletedAt = &now
	}
	st.Status = next
}

func (s *Service) GetStory(ctx context.Context, id uint) (*models.Story, error) {
	return s.store.Story(ctx, id)
}

func (s *Service) checkAssignee(ctx context.Context, id *uint) error {
	if id == nil {
		return nil
	}
	_, err := s.store.User(ctx, *id)
	if errors.Is(err, models.ErrNotFound) {
		return invalidInput("assignee %d does not exist", *id)
	}
	return err
}

func validTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", invalidInput("story title is required")
	}
	if utf8.RuneCountInString(title) > models.MaxStoryTitleLen {
		return "", invalidInput("story title is longer than %d characters", models.MaxStoryTitleLen)
	}
	return title, nil
}

func validPoints(points *int) error {
	if points != nil && *points < 0 {
		return invalidInput("story points must not be negative")
	}
	return nil
}
