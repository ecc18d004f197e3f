// Package tracker holds the sprint and story lifecycle rules and the
// statistics derived from them. It reads and writes through Store and never
// talks to HTTP or the database driver directly.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gira/internal/models"

	"github.com/sirupsen/logrus"
)

// Store is the entity store the tracker consumes. Every method called from
// inside InTx must receive the ctx passed to the callback.
type Store interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error

	Project(ctx context.Context, id uint) (*models.Project, error)
	Projects(ctx context.Context, f models.ProjectFilter) ([]models.Project, error)
	CountProjects(ctx context.Context) (int64, error)
	SaveProject(ctx context.Context, p *models.Project) error

	User(ctx context.Context, id uint) (*models.User, error)

	Sprint(ctx context.Context, id uint) (*models.Sprint, error)
	Sprints(ctx context.Context, projectID uint, statuses ...models.SprintStatus) ([]models.Sprint, error)
	CountSprints(ctx context.Context, projectID uint) (int64, error)
	SaveSprint(ctx context.Context, sp *models.Sprint) error
	ActivateSprint(ctx context.Context, id uint, start, end time.Time) error

	Story(ctx context.Context, id uint) (*models.Story, error)
	Stories(ctx context.Context, f models.StoryFilter) ([]models.Story, error)
	SaveStory(ctx context.Context, st *models.Story) error

	AppendAudit(ctx context.Context, entry *models.AuditLog) error
	AuditLogs(ctx context.Context, f models.AuditFilter) ([]models.AuditLog, error)
}

type Service struct {
	store Store
	log   logrus.FieldLogger
	now   func() time.Time
}

func NewService(store Store, log logrus.FieldLogger) *Service {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Service{
		store: store,
		log:   log,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

const (
	entityProject = "project"
	entitySprint  = "sprint"
	entityStory   = "story"
)

type actorKey struct{}

// WithActor attaches the acting user to ctx so audit records can name them.
func WithActor(ctx context.Context, userID uint) context.Context {
	return context.WithValue(ctx, actorKey{}, userID)
}

func actorFrom(ctx context.Context) *uint {
	if id, ok := ctx.Value(actorKey{}).(uint); ok && id > 0 {
		return &id
	}
	return nil
}

func (s *Service) audit(ctx context.Context, entity string, id uint, action, details string) error {
	return s.store.AppendAudit(ctx, &models.AuditLog{
		UserID:   actorFrom(ctx),
		Entity:   entity,
		EntityID: id,
		Action:   action,
		Details:  details,
	})
}

func (s *Service) AuditLog(ctx context.Context, f models.AuditFilter) ([]models.AuditLog, error) {
	return s.store.AuditLogs(ctx, f)
}

// liveProject loads a project that can still receive sprints and stories.
// Missing and soft-deleted projects both report ErrMissingProject.
func (s *Service) liveProject(ctx context.Context, id uint) (*models.Project, error) {
	if id == 0 {
		return nil, fmt.Errorf("project id is required: %w", models.ErrMissingProject)
	}
	p, err := s.store.Project(ctx, id)
	if errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("project %d: %w", id, models.ErrMissingProject)
	}
	if err != nil {
		return nil, err
	}
	if p.Deleted() {
		return nil, fmt.Errorf("project %d is deleted: %w", id, models.ErrMissingProject)
	}
	return p, nil
}

func invalidInput(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), models.ErrInvalidInput)
}
