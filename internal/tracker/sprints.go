package tracker

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"gira/internal/models"

	"github.com/sirupsen/logrus"
)

const maxSprintNameLen = 100

type CreateSprintInput struct {
	Name      string     `json:"name"`
	Goal      string     `json:"goal"`
	StartDate *time.Time `json:"start_date"`
	EndDate   *time.Time `json:"end_date"`
}

// CreateSprint adds a planning sprint to a project. An empty name becomes
// "Sprint N" where N is the number of existing sprints plus one.
func (s *Service) CreateSprint(ctx context.Context, projectID uint, in CreateSprintInput) (*models.Sprint, error) {
	name := strings.TrimSpace(in.Name)
	if utf8.RuneCountInString(name) > maxSprintNameLen {
		return nil, invalidInput("sprint name is longer than %d characters", maxSprintNameLen)
	}
	if in.StartDate != nil && in.EndDate != nil && in.EndDate.Before(*in.StartDate) {
		return nil, invalidInput("sprint end date is before its start date")
	}

	var sprint *models.Sprint
	err := s.store.InTx(ctx, func(ctx context.Context) error {
		if _, err := s.liveProject(ctx, projectID); err != nil {
			return err
		}

		if name == "" {
			n, err := s.store.CountSprints(ctx, projectID)
			if err != nil {
				return err
			}
			name = fmt.Sprintf("Sprint %d", n+1)
		}

		sprint = &models.Sprint{
			ProjectID: projectID,
			Name:      name,
			Goal:      strings.TrimSpace(in.Goal),
			Status:    models.SprintPlanning,
			StartDate: in.StartDate,
			EndDate:   in.EndDate,
		}
		if err := s.store.SaveSprint(ctx, sprint); err != nil {
			return err
		}
		return s.audit(ctx, entitySprint, sprint.ID, "create", "Создан спринт: "+sprint.Name)
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"sprint_id": sprint.ID, "project_id": projectID, "name": sprint.Name}).
		Info("sprint created")
	return sprint, nil
}

// StartSprint moves a sprint from planning to active. The project must have
// no other active sprint, and no other planning sprint of the project may
// have a smaller name. Names compare as plain strings, so "Sprint 10" sorts
// before "Sprint 2".
func (s *Service) StartSprint(ctx context.Context, id uint) (*models.Sprint, error) {
	var sprint *models.Sprint
	err := s.store.InTx(ctx, func(ctx context.Context) error {
		sp, err := s.store.Sprint(ctx, id)
		if err != nil {
			return err
		}
		if sp.Status != models.SprintPlanning {
			return fmt.Errorf("start sprint %d in status %s: %w", id, sp.Status, models.ErrInvalidTransition)
		}

		open, err := s.store.Sprints(ctx, sp.ProjectID, models.SprintPlanning, models.SprintActive)
		if err != nil {
			return err
		}
		if err := checkStartOrder(sp, open); err != nil {
			return err
		}

		start := s.now()
		end := start.Add(models.SprintLength)
		if err := s.store.ActivateSprint(ctx, id, start, end); err != nil {
			return err
		}
		if err := s.audit(ctx, entitySprint, id, "start", "Спринт начат: "+sp.Name); err != nil {
			return err
		}

		sprint, err = s.store.Sprint(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"sprint_id": sprint.ID, "project_id": sprint.ProjectID}).Info("sprint started")
	return sprint, nil
}

// checkStartOrder applies the project-wide start rules to sp given the
// project's planning and active sprints.
func checkStartOrder(sp *models.Sprint, open []models.Sprint) error {
	for _, other := range open {
		if other.ID != sp.ID && other.Status == models.SprintActive {
			return fmt.Errorf("start sprint %d: %q is active: %w", sp.ID, other.Name, models.ErrConflictingActiveSprint)
		}
	}
	for _, other := range open {
		if other.ID != sp.ID && other.Status == models.SprintPlanning && other.Name < sp.Name {
			return fmt.Errorf("start sprint %q: %q must start first: %w", sp.Name, other.Name, models.ErrOutOfOrderStart)
		}
	}
	return nil
}

// CompleteSprint closes an active sprint and returns it with the statistics
// at the moment of completion. Unfinished stories stay where they are.
func (s *Service) CompleteSprint(ctx context.Context, id uint) (*models.SprintView, error) {
	var view *models.SprintView
	err := s.store.InTx(ctx, func(ctx context.Context) error {
		sp, err := s.store.Sprint(ctx, id)
		if err != nil {
			return err
		}
		if sp.Status != models.SprintActive {
			return fmt.Errorf("complete sprint %d in status %s: %w", id, sp.Status, models.ErrInvalidTransition)
		}

		now := s.now()
		sp.Status = models.SprintCompleted
		sp.CompletedAt = &now
		if err := s.store.SaveSprint(ctx, sp); err != nil {
			return err
		}

		view, _, err = s.sprintView(ctx, sp)
		if err != nil {
			return err
		}
		details := fmt.Sprintf("Спринт завершён: %s (%d/%d)", sp.Name, view.Stats.Completed, view.Stats.Total)
		return s.audit(ctx, entitySprint, id, "complete", details)
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"sprint_id":       id,
		"completion_rate": view.Stats.CompletionRate,
	}).Info("sprint completed")
	return view, nil
}

func (s *Service) GetSprint(ctx context.Context, id uint) (*models.SprintView, error) {
	sp, err := s.store.Sprint(ctx, id)
	if err != nil {
		return nil, err
	}
	view, _, err := s.sprintView(ctx, sp)
	return view, err
}

// ListSprints returns every sprint of a project in creation order. Deleted
// projects are reported as not found.
func (s *Service) ListSprints(ctx context.Context, projectID uint) ([]models.SprintView, error) {
	if _, err := s.GetProject(ctx, projectID); err != nil {
		return nil, err
	}
	sprints, err := s.store.Sprints(ctx, projectID)
	if err != nil {
		return nil, err
	}

	views := make([]models.SprintView, 0, len(sprints))
	for i := range sprints {
		v, _, err := s.sprintView(ctx, &sprints[i])
		if err != nil {
			return nil, err
		}
		views = append(views, *v)
	}
	return views, nil
}
