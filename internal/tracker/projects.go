package tracker

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"gira/internal/models"

	"github.com/sirupsen/logrus"
)

const maxProjectNameLen = 100

type CreateProjectInput struct {
	Name        string               `json:"name"`
	Key         string               `json:"key"`
	Description string               `json:"description"`
	Status      models.ProjectStatus `json:"status"`
	OwnerID     *uint                `json:"owner_id"`
}

type UpdateProjectInput struct {
	Name        *string               `json:"name"`
	Description *string               `json:"description"`
	Status      *models.ProjectStatus `json:"status"`
}

// CreateProject stores a new project. Without an explicit key one is
// generated as PRJ-NNNN from the number of projects ever created.
func (s *Service) CreateProject(ctx context.Context, in CreateProjectInput) (*models.Project, error) {
	name, err := validProjectName(in.Name)
	if err != nil {
		return nil, err
	}
	status := in.Status
	if status == "" {
		status = models.ProjectActive
	}
	if !settableProjectStatus(status) {
		return nil, invalidInput("project status %q", status)
	}

	key := strings.ToUpper(strings.TrimSpace(in.Key))
	if len(key) > models.MaxProjectKeyLen {
		return nil, invalidInput("project key is longer than %d characters", models.MaxProjectKeyLen)
	}

	var project *models.Project
	err = s.store.InTx(ctx, func(ctx context.Context) error {
		if key == "" {
			n, err := s.store.CountProjects(ctx)
			if err != nil {
				return err
			}
			key = fmt.Sprintf("PRJ-%04d", n+1)
		}

		project = &models.Project{
			Key:         key,
			Name:        name,
			Description: strings.TrimSpace(in.Description),
			Status:      status,
			OwnerID:     in.OwnerID,
		}
		if err := s.store.SaveProject(ctx, project); err != nil {
			return err
		}
		return s.audit(ctx, entityProject, project.ID, "create", "Создан проект: "+project.Name)
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"project_id": project.ID, "key": project.Key}).Info("project created")
	return project, nil
}

func (s *Service) ListProjects(ctx context.Context, f models.ProjectFilter) ([]models.Project, error) {
	return s.store.Projects(ctx, f)
}

// GetProject treats soft-deleted projects as missing.
func (s *Service) GetProject(ctx context.Context, id uint) (*models.Project, error) {
	p, err := s.store.Project(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Deleted() {
		return nil, fmt.Errorf("project %d: %w", id, models.ErrNotFound)
	}
	return p, nil
}

func (s *Service) UpdateProject(ctx context.Context, id uint, in UpdateProjectInput) (*models.Project, error) {
	var project *models.Project
	err := s.store.InTx(ctx, func(ctx context.Context) error {
		p, err := s.GetProject(ctx, id)
		if err != nil {
			return err
		}

		if in.Name != nil {
			name, err := validProjectName(*in.Name)
			if err != nil {
				return err
			}
			p.Name = name
		}
		if in.Description != nil {
			p.Description = strings.TrimSpace(*in.Description)
		}
		if in.Status != nil {
			if !settableProjectStatus(*in.Status) {
				return invalidInput("project status %q", *in.Status)
			}
			p.Status = *in.Status
		}

		if err := s.store.SaveProject(ctx, p); err != nil {
			return err
		}
		project = p
		return s.audit(ctx, entityProject, id, "update", "Проект обновлён: "+p.Name)
	})
	if err != nil {
		return nil, err
	}
	return project, nil
}

// DeleteProject flips the status to deleted. Sprints and stories are kept.
func (s *Service) DeleteProject(ctx context.Context, id uint) error {
	err := s.store.InTx(ctx, func(ctx context.Context) error {
		p, err := s.GetProject(ctx, id)
		if err != nil {
			return err
		}
		p.Status = models.ProjectDeleted
		if err := s.store.SaveProject(ctx, p); err != nil {
			return err
		}
		return s.audit(ctx, entityProject, id, "delete", "Удалён проект: "+p.Name)
	})
	if err != nil {
		return err
	}

	s.log.WithField("project_id", id).Info("project deleted")
	return nil
}

func validProjectName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", invalidInput("project name is required")
	}
	if utf8.RuneCountInString(name) > maxProjectNameLen {
		return "", invalidInput("project name is longer than %d characters", maxProjectNameLen)
	}
	return name, nil
}

// deleted is reachable only through DeleteProject.
func settableProjectStatus(st models.ProjectStatus) bool {
	return st == models.ProjectActive || st == models.ProjectArchived
}
